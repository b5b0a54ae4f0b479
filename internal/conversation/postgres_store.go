package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wolfman30/remodel-leadbot/internal/qualification"
)

// Querier is the subset of pgxpool.Pool used by PostgresStore.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists conversations to the conversations and
// conversation_turns tables.
type PostgresStore struct {
	db Querier
}

// NewPostgresStore builds a Postgres-backed Store.
func NewPostgresStore(db Querier) *PostgresStore {
	if db == nil {
		panic("conversation: pgx pool cannot be nil")
	}
	return &PostgresStore{db: db}
}

var _ Store = (*PostgresStore)(nil)

func (s *PostgresStore) GetConversation(ctx context.Context, conversationID string) (*State, error) {
	var (
		st         State
		fieldsJSON []byte
		status     string
	)
	err := s.db.QueryRow(ctx, `
		SELECT conversation_id, customer_id, fields, lead_status, qualified_notified_at, created_at, updated_at
		FROM conversations
		WHERE conversation_id = $1
	`, conversationID).Scan(
		&st.ConversationID,
		&st.CustomerID,
		&fieldsJSON,
		&status,
		&st.QualifiedNotifiedAt,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("conversation: load conversation: %w", err)
	}
	st.LeadStatus = qualification.ParseStatus(status)
	if len(fieldsJSON) > 0 {
		if err := json.Unmarshal(fieldsJSON, &st.Fields); err != nil {
			return nil, fmt.Errorf("conversation: decode fields: %w", err)
		}
	}

	rows, err := s.db.Query(ctx, `
		SELECT role, message, created_at
		FROM conversation_turns
		WHERE conversation_id = $1
		ORDER BY id
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("conversation: load turns: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Role, &t.Message, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("conversation: scan turn: %w", err)
		}
		st.Turns = append(st.Turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("conversation: load turns: %w", err)
	}
	return &st, nil
}

func (s *PostgresStore) EnsureConversation(ctx context.Context, conversationID, customerID string) error {
	if _, err := s.db.Exec(ctx, `
		INSERT INTO conversations (conversation_id, customer_id, lead_status)
		VALUES ($1, $2, $3)
		ON CONFLICT (conversation_id) DO NOTHING
	`, conversationID, customerID, string(qualification.StatusInProgress)); err != nil {
		return fmt.Errorf("conversation: ensure conversation: %w", err)
	}
	return nil
}

func (s *PostgresStore) AppendTurn(ctx context.Context, conversationID string, turn Turn) error {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}
	if _, err := s.db.Exec(ctx, `
		INSERT INTO conversation_turns (conversation_id, role, message, created_at)
		VALUES ($1, $2, $3, $4)
	`, conversationID, turn.Role, turn.Message, turn.Timestamp); err != nil {
		return fmt.Errorf("conversation: append turn: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveFields(ctx context.Context, conversationID string, fields qualification.LeadFields, status qualification.Status) error {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("conversation: encode fields: %w", err)
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE conversations
		SET fields = $2,
		    lead_status = $3,
		    updated_at = now()
		WHERE conversation_id = $1
	`, conversationID, fieldsJSON, string(status))
	if err != nil {
		return fmt.Errorf("conversation: save fields: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (s *PostgresStore) MarkQualifiedNotified(ctx context.Context, conversationID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE conversations
		SET qualified_notified_at = now()
		WHERE conversation_id = $1 AND qualified_notified_at IS NULL
	`, conversationID)
	if err != nil {
		return false, fmt.Errorf("conversation: mark notified: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
