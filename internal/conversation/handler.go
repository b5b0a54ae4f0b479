package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wolfman30/remodel-leadbot/internal/qualification"
	"github.com/wolfman30/remodel-leadbot/pkg/logging"
)

// Service is the orchestrator surface the HTTP handler needs.
type Service interface {
	ProcessMessage(ctx context.Context, req MessageRequest) (*Response, error)
	GetHistory(ctx context.Context, conversationID string) ([]Turn, error)
}

// Handler wires HTTP requests to the conversation service.
type Handler struct {
	service Service
	logger  *logging.Logger
}

// NewHandler creates a conversation handler.
func NewHandler(service Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Routes returns a chi router mounted at /conversations.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/{customerID}/message", h.Message)
	r.Get("/{customerID}/history/{conversationID}", h.History)
	return r
}

// Message handles POST /conversations/{customerID}/message. The chat user
// never sees an internal error: failures degrade to the generic greeting.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode message request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.CustomerID = chi.URLParam(r, "customerID")

	resp, err := h.service.ProcessMessage(r.Context(), req)
	if errors.Is(err, ErrEmptyMessage) {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		var perr *PersistenceError
		if errors.As(err, &perr) {
			h.logger.Error("conversation state not saved", "conversation_id", perr.ConversationID, "op", perr.Op, "error", perr.Err)
		} else {
			h.logger.Error("failed to process message", "customer_id", req.CustomerID, "error", err)
		}
	}
	if resp == nil {
		conversationID := req.ConversationID
		if conversationID == "" {
			conversationID = uuid.NewString()
		}
		resp = &Response{
			ConversationID: conversationID,
			Message:        qualification.GenericGreeting,
			LeadStatus:     qualification.StatusInProgress,
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// HistoryResponse is the body of the history endpoint.
type HistoryResponse struct {
	ConversationID string `json:"conversation_id"`
	Turns          []Turn `json:"turns"`
}

// History handles GET /conversations/{customerID}/history/{conversationID}.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	turns, err := h.service.GetHistory(r.Context(), conversationID)
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			http.Error(w, "conversation not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load history", "conversation_id", conversationID, "error", err)
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}
	if turns == nil {
		turns = []Turn{}
	}
	h.writeJSON(w, http.StatusOK, HistoryResponse{ConversationID: conversationID, Turns: turns})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
