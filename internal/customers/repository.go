package customers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository stores customer profiles.
type Repository interface {
	Create(ctx context.Context, req *CreateCustomerRequest) (*Profile, error)
	GetByID(ctx context.Context, customerID string) (*Profile, error)
	List(ctx context.Context) ([]*Profile, error)
}

// InMemoryRepository is a Repository backed by a map. It is used in tests and
// when no database is configured.
type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{profiles: make(map[string]*Profile)}
}

// Create validates and stores a new profile.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateCustomerRequest) (*Profile, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	profile := newProfile(req)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.profiles[profile.CustomerID]; exists {
		return nil, ErrCustomerExists
	}
	stored := *profile
	r.profiles[profile.CustomerID] = &stored
	return profile, nil
}

// GetByID returns a copy of the stored profile.
func (r *InMemoryRepository) GetByID(ctx context.Context, customerID string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[customerID]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	out := *profile
	return &out, nil
}

// List returns all profiles, newest first.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Profile, error) {
	r.mu.RLock()
	out := make([]*Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		cp := *p
		out = append(out, &cp)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CustomerID < out[j].CustomerID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func newProfile(req *CreateCustomerRequest) *Profile {
	id := req.CustomerID
	if id == "" {
		id = uuid.New().String()
	}
	return &Profile{
		CustomerID:        id,
		CompanyName:       req.CompanyName,
		ContactEmail:      req.ContactEmail,
		ServiceAreas:      req.ServiceAreas,
		MinimumBudget:     req.MinimumBudget,
		TimelineThreshold: req.TimelineThreshold,
		CreatedAt:         time.Now().UTC(),
	}
}
