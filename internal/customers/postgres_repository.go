package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool used by PostgresRepository.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores customer profiles in the customers table.
type PostgresRepository struct {
	db Querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(db Querier) *PostgresRepository {
	if db == nil {
		panic("customers: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

const selectCustomerColumns = `customer_id, company_name, contact_email, service_areas, minimum_budget, timeline_threshold, created_at`

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateCustomerRequest) (*Profile, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	profile := newProfile(req)

	query := `
		INSERT INTO customers (customer_id, company_name, contact_email, service_areas, minimum_budget, timeline_threshold)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query,
		profile.CustomerID,
		profile.CompanyName,
		profile.ContactEmail,
		profile.ServiceAreas,
		profile.MinimumBudget,
		profile.TimelineThreshold,
	).Scan(&profile.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrCustomerExists
		}
		return nil, fmt.Errorf("customers: insert failed: %w", err)
	}
	return profile, nil
}

// GetByID fetches one profile.
func (r *PostgresRepository) GetByID(ctx context.Context, customerID string) (*Profile, error) {
	query := `SELECT ` + selectCustomerColumns + ` FROM customers WHERE customer_id = $1`
	profile, err := scanProfile(r.db.QueryRow(ctx, query, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("customers: select failed: %w", err)
	}
	return profile, nil
}

// List returns all profiles, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*Profile, error) {
	query := `SELECT ` + selectCustomerColumns + ` FROM customers ORDER BY created_at DESC, customer_id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("customers: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("customers: scan failed: %w", err)
		}
		out = append(out, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("customers: list failed: %w", err)
	}
	return out, nil
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	if err := row.Scan(
		&p.CustomerID,
		&p.CompanyName,
		&p.ContactEmail,
		&p.ServiceAreas,
		&p.MinimumBudget,
		&p.TimelineThreshold,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
