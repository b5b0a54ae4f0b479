package customers

import "errors"

var (
	// ErrCustomerNotFound is returned when no profile exists for a customer ID.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrCustomerExists is returned when creating a profile whose ID is taken.
	ErrCustomerExists = errors.New("customer already exists")
)
