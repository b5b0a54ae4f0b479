package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/wolfman30/remodel-leadbot/internal/qualification"
)

// Querier is the subset of pgxpool.Pool used by PostgresRepository.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository reads leads straight from the conversations table.
type PostgresRepository struct {
	db Querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(db Querier) *PostgresRepository {
	if db == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

const leadColumns = `
	c.conversation_id, c.customer_id, c.lead_status, c.fields,
	(SELECT count(*) FROM conversation_turns t WHERE t.conversation_id = c.conversation_id),
	c.qualified_notified_at, c.created_at, c.updated_at`

// List returns matching leads, most recently active first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Lead, error) {
	filter = filter.normalized()
	query := `SELECT ` + leadColumns + `
		FROM conversations c
		WHERE ($1 = '' OR c.customer_id = $1)
		  AND ($2 = '' OR c.lead_status = $2)
		ORDER BY c.updated_at DESC, c.conversation_id
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, filter.CustomerID, string(filter.Status), filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("leads: list: %w", err)
	}
	defer rows.Close()

	leads := []*Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list rows: %w", err)
	}
	return leads, nil
}

// GetByID returns the lead for one conversation.
func (r *PostgresRepository) GetByID(ctx context.Context, conversationID string) (*Lead, error) {
	query := `SELECT ` + leadColumns + `
		FROM conversations c
		WHERE c.conversation_id = $1
	`
	lead, err := scanLead(r.db.QueryRow(ctx, query, conversationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return lead, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*Lead, error) {
	var (
		lead       Lead
		status     string
		fieldsJSON []byte
		turnCount  int64
	)
	if err := row.Scan(
		&lead.ConversationID,
		&lead.CustomerID,
		&status,
		&fieldsJSON,
		&turnCount,
		&lead.QualifiedNotifiedAt,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("leads: scan: %w", err)
	}
	lead.Status = qualification.ParseStatus(status)
	lead.TurnCount = int(turnCount)

	var fields qualification.LeadFields
	if len(fieldsJSON) > 0 {
		if err := json.Unmarshal(fieldsJSON, &fields); err != nil {
			return nil, fmt.Errorf("leads: decode fields: %w", err)
		}
	}
	lead.Name = fields.Name
	lead.Email = fields.Email
	lead.Phone = fields.Phone
	lead.ProjectType = fields.ProjectType
	lead.Budget = fields.Budget
	lead.TimelineMonths = fields.TimelineMonths
	lead.ZipCode = fields.ZipCode
	return &lead, nil
}

var _ Repository = (*PostgresRepository)(nil)
