package customers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/remodel-leadbot/pkg/logging"
)

// Handler serves customer registration endpoints.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a customers handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Routes returns a chi router mounted at /customers.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListCustomers)
	r.Post("/", h.CreateCustomer)
	r.Get("/{customerID}", h.GetCustomer)
	return r
}

// ListCustomersResponse is the body of GET /customers.
type ListCustomersResponse struct {
	Customers []*Profile `json:"customers"`
	Count     int        `json:"count"`
}

// ListCustomers handles GET /customers.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list customers", "error", err)
		http.Error(w, "failed to list customers", http.StatusInternalServerError)
		return
	}
	if profiles == nil {
		profiles = []*Profile{}
	}
	writeJSON(w, http.StatusOK, ListCustomersResponse{Customers: profiles, Count: len(profiles)})
}

// GetCustomer handles GET /customers/{customerID}.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")
	if customerID == "" {
		http.Error(w, "missing customer_id", http.StatusBadRequest)
		return
	}

	profile, err := h.repo.GetByID(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			http.Error(w, "customer not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get customer", "customer_id", customerID, "error", err)
		http.Error(w, "failed to get customer", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// CreateCustomer handles POST /customers.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.repo.Create(r.Context(), &req)
	switch {
	case errors.Is(err, ErrInvalidCustomer):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, ErrCustomerExists):
		http.Error(w, "customer already exists", http.StatusConflict)
		return
	case err != nil:
		h.logger.Error("failed to create customer", "error", err)
		http.Error(w, "failed to create customer", http.StatusInternalServerError)
		return
	}

	h.logger.Info("customer created", "customer_id", profile.CustomerID, "company", profile.CompanyName)
	writeJSON(w, http.StatusCreated, profile)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
