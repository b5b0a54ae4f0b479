package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/wolfman30/remodel-leadbot/internal/qualification"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewPostgresStore(mock), mock
}

func TestPostgresStoreGetConversation(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT conversation_id, customer_id, fields").
		WithArgs("c1").
		WillReturnRows(pgxmock.NewRows([]string{"conversation_id", "customer_id", "fields", "lead_status", "qualified_notified_at", "created_at", "updated_at"}).
			AddRow("c1", "cust", []byte(`{"project_type":"kitchen","budget":80000}`), "in_progress", (*time.Time)(nil), now, now))
	mock.ExpectQuery("SELECT role, message, created_at").
		WithArgs("c1").
		WillReturnRows(pgxmock.NewRows([]string{"role", "message", "created_at"}).
			AddRow("user", "kitchen remodel, $80k", now).
			AddRow("assistant", "What's your zip code?", now))

	st, err := store.GetConversation(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if st.Fields.ProjectType != "kitchen" || st.Fields.Budget != 80000 {
		t.Fatalf("unexpected fields %+v", st.Fields)
	}
	if st.LeadStatus != qualification.StatusInProgress || st.Notified() {
		t.Fatalf("unexpected status %s notified=%v", st.LeadStatus, st.Notified())
	}
	if len(st.Turns) != 2 || st.Turns[1].Role != ChatRoleAssistant {
		t.Fatalf("unexpected turns %+v", st.Turns)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStoreGetConversationNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT conversation_id").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	if _, err := store.GetConversation(context.Background(), "missing"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestPostgresStoreWrites(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO conversations").
		WithArgs("c1", "cust", "in_progress").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO conversation_turns").
		WithArgs("c1", "user", "hello", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE conversations").
		WithArgs("c1", pgxmock.AnyArg(), "qualified").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := store.EnsureConversation(ctx, "c1", "cust"); err != nil {
		t.Fatalf("EnsureConversation: %v", err)
	}
	if err := store.AppendTurn(ctx, "c1", Turn{Role: ChatRoleUser, Message: "hello"}); err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}
	if err := store.SaveFields(ctx, "c1", qualification.LeadFields{ZipCode: "90210"}, qualification.StatusQualified); err != nil {
		t.Fatalf("SaveFields: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStoreSaveFieldsMissingRow(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("UPDATE conversations").
		WithArgs("ghost", pgxmock.AnyArg(), "in_progress").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := store.SaveFields(context.Background(), "ghost", qualification.LeadFields{}, qualification.StatusInProgress)
	if !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestPostgresStoreMarkQualifiedNotified(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectExec("qualified_notified_at IS NULL").
		WithArgs("c1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("qualified_notified_at IS NULL").
		WithArgs("c1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	first, err := store.MarkQualifiedNotified(ctx, "c1")
	if err != nil || !first {
		t.Fatalf("first claim = %v, %v", first, err)
	}
	second, err := store.MarkQualifiedNotified(ctx, "c1")
	if err != nil || second {
		t.Fatalf("second claim = %v, %v", second, err)
	}
}
