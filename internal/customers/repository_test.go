package customers

import (
	"context"
	"errors"
	"testing"
)

func TestInMemoryRepositoryCreateAndGet(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	req := validRequest()
	created, err := repo.Create(ctx, &req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.CustomerID == "" {
		t.Fatal("expected generated customer id")
	}

	got, err := repo.GetByID(ctx, created.CustomerID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CompanyName != "Elite Remodeling" || got.MinimumBudget != 75000 {
		t.Fatalf("unexpected profile %+v", got)
	}

	got.CompanyName = "mutated"
	again, _ := repo.GetByID(ctx, created.CustomerID)
	if again.CompanyName != "Elite Remodeling" {
		t.Fatal("GetByID must return a copy")
	}
}

func TestInMemoryRepositoryNotFound(t *testing.T) {
	_, err := NewInMemoryRepository().GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestInMemoryRepositoryDuplicateID(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	req := validRequest()
	req.CustomerID = "elite"
	if _, err := repo.Create(ctx, &req); err != nil {
		t.Fatalf("Create: %v", err)
	}
	dup := validRequest()
	dup.CustomerID = "elite"
	if _, err := repo.Create(ctx, &dup); !errors.Is(err, ErrCustomerExists) {
		t.Fatalf("expected ErrCustomerExists, got %v", err)
	}
}

func TestInMemoryRepositoryRejectsInvalid(t *testing.T) {
	req := validRequest()
	req.ContactEmail = ""
	if _, err := NewInMemoryRepository().Create(context.Background(), &req); !errors.Is(err, ErrInvalidCustomer) {
		t.Fatalf("expected ErrInvalidCustomer, got %v", err)
	}
}

func TestInMemoryRepositoryList(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	for _, id := range []string{"a", "b"} {
		req := validRequest()
		req.CustomerID = id
		if _, err := repo.Create(ctx, &req); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(list))
	}
}
