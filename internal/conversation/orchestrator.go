package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/remodel-leadbot/internal/customers"
	"github.com/wolfman30/remodel-leadbot/internal/observability/metrics"
	"github.com/wolfman30/remodel-leadbot/internal/qualification"
	"github.com/wolfman30/remodel-leadbot/pkg/logging"
	"github.com/wolfman30/remodel-leadbot/pkg/redact"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrEmptyMessage is returned when a turn carries no text.
var ErrEmptyMessage = errors.New("conversation: message is required")

// ProfileSource resolves the customer a conversation belongs to.
type ProfileSource interface {
	GetByID(ctx context.Context, customerID string) (*customers.Profile, error)
}

// Notifier is told once per conversation when a lead first qualifies.
type Notifier interface {
	NotifyQualified(ctx context.Context, profile *customers.Profile, fields qualification.LeadFields, conversationID string) error
}

// MessageRequest is one inbound chat message.
type MessageRequest struct {
	CustomerID     string `json:"-"`
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// Response is the assistant's reply to one turn.
type Response struct {
	ConversationID string                   `json:"conversation_id"`
	Message        string                   `json:"response"`
	LeadStatus     qualification.Status     `json:"lead_status"`
	Fields         qualification.LeadFields `json:"-"`
	Learned        []string                 `json:"-"`
	Notified       bool                     `json:"-"`
}

// Orchestrator runs the per-turn qualification flow.
type Orchestrator struct {
	profiles  ProfileSource
	store     Store
	locker    Locker
	responder Responder
	notifier  Notifier
	policy    *qualification.Policy
	metrics   *metrics.ConversationMetrics
	logger    *logging.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// OrchestratorOption configures optional collaborators.
type OrchestratorOption func(*Orchestrator)

// WithLocker replaces the default in-process KeyedMutex.
func WithLocker(l Locker) OrchestratorOption {
	return func(o *Orchestrator) {
		if l != nil {
			o.locker = l
		}
	}
}

// WithResponder enables generative replies.
func WithResponder(r Responder) OrchestratorOption {
	return func(o *Orchestrator) {
		o.responder = r
	}
}

// WithNotifier sets the qualified-lead notification sink.
func WithNotifier(n Notifier) OrchestratorOption {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

// WithPolicy sets the deterministic dialogue policy.
func WithPolicy(p *qualification.Policy) OrchestratorOption {
	return func(o *Orchestrator) {
		if p != nil {
			o.policy = p
		}
	}
}

func WithMetrics(m *metrics.ConversationMetrics) OrchestratorOption {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func withClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// NewOrchestrator wires the turn flow. profiles and store are required.
func NewOrchestrator(profiles ProfileSource, store Store, logger *logging.Logger, opts ...OrchestratorOption) *Orchestrator {
	if profiles == nil {
		panic("conversation: profile source cannot be nil")
	}
	if store == nil {
		panic("conversation: store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	o := &Orchestrator{
		profiles: profiles,
		store:    store,
		locker:   NewKeyedMutex(),
		policy:   qualification.NewPolicy(""),
		logger:   logger,
		tracer:   otel.Tracer("leadbot.internal.conversation"),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ProcessMessage handles one turn. When the store fails after the reply was
// computed, the reply is returned together with a *PersistenceError.
func (o *Orchestrator) ProcessMessage(ctx context.Context, req MessageRequest) (*Response, error) {
	started := time.Now()
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	conversationID := strings.TrimSpace(req.ConversationID)
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	ctx, span := o.tracer.Start(ctx, "conversation.process_message")
	defer span.End()
	span.SetAttributes(
		attribute.String("conversation.id", conversationID),
		attribute.String("customer.id", req.CustomerID),
	)

	unlock, err := o.locker.Lock(ctx, conversationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lock")
		return nil, fmt.Errorf("conversation: lock %s: %w", conversationID, err)
	}
	defer func() { unlock() }()

	log := o.logger.With("conversation_id", conversationID, "customer_id", req.CustomerID)
	log.Debug("message received", "message", redact.Text(message))
	profile := o.loadProfile(ctx, req.CustomerID, log)

	state, loadErr := o.store.GetConversation(ctx, conversationID)
	persist := true
	switch {
	case loadErr == nil && state.CustomerID != "" && state.CustomerID != req.CustomerID:
		// Conversation ids are scoped to their customer. Another customer's
		// conversation is never read or written; the turn starts a new one.
		log.Warn("conversation belongs to a different customer, starting a new one")
		unlock()
		conversationID = uuid.NewString()
		if unlock, err = o.locker.Lock(ctx, conversationID); err != nil {
			unlock = func() {}
			span.RecordError(err)
			span.SetStatus(codes.Error, "lock")
			return nil, fmt.Errorf("conversation: lock %s: %w", conversationID, err)
		}
		span.SetAttributes(attribute.String("conversation.id", conversationID))
		log = o.logger.With("conversation_id", conversationID, "customer_id", req.CustomerID)
		state = NewState(conversationID, req.CustomerID)
	case loadErr == nil:
	case errors.Is(loadErr, ErrConversationNotFound):
		state = NewState(conversationID, req.CustomerID)
	default:
		// Saving now would overwrite fields we could not read.
		log.Error("failed to load conversation, reply will not be persisted", "error", loadErr)
		o.metrics.ObservePersistError("load")
		state = NewState(conversationID, req.CustomerID)
		persist = false
	}

	previous := qualification.ParseStatus(string(state.LeadStatus))
	extracted := qualification.Extract(message)
	fields := qualification.Merge(state.Fields, extracted)
	criteria := profile.Criteria()
	assessment := qualification.Assess(fields, criteria)
	status := assessment.Status

	learned := qualification.Learned(state.Fields, extracted)
	if len(learned) > 0 {
		log.Debug("fields learned", "fields", learned)
	}
	if previous == qualification.StatusQualified && status == qualification.StatusDisqualified {
		log.Info("qualified lead regressed to disqualified", "reason", string(assessment.Reason))
	}

	reply := o.reply(ctx, message, fields, status, profile, state.Turns, log)

	resp := &Response{
		ConversationID: conversationID,
		Message:        reply,
		LeadStatus:     status,
		Fields:         fields,
		Learned:        learned,
	}

	var persistErr error
	if persist {
		persistErr = o.persist(ctx, conversationID, req.CustomerID, message, reply, fields, status)
	} else {
		persistErr = &PersistenceError{Op: "load", ConversationID: conversationID, Err: loadErr}
	}

	if persistErr == nil && status == qualification.StatusQualified && !state.Notified() {
		resp.Notified = o.notifyOnce(ctx, profile, fields, conversationID, log)
	}

	o.metrics.ObserveTurn(string(status), time.Since(started).Seconds())
	o.metrics.ObserveTransition(string(previous), string(status))
	span.SetAttributes(attribute.String("lead.status", string(status)))

	if persistErr != nil {
		span.RecordError(persistErr)
		span.SetStatus(codes.Error, "persist")
		return resp, persistErr
	}
	log.Info("turn processed", "lead_status", status, "previous_status", previous)
	return resp, nil
}

// GetHistory returns the stored transcript for a conversation.
func (o *Orchestrator) GetHistory(ctx context.Context, conversationID string) ([]Turn, error) {
	state, err := o.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return state.Turns, nil
}

func (o *Orchestrator) loadProfile(ctx context.Context, customerID string, log *logging.Logger) *customers.Profile {
	profile, err := o.profiles.GetByID(ctx, customerID)
	switch {
	case err == nil && profile != nil:
		return profile
	case err == nil, errors.Is(err, customers.ErrCustomerNotFound):
		log.Debug("customer not found, using default profile")
	default:
		log.Error("failed to load customer profile, using default", "error", err)
	}
	return customers.DefaultProfile(customerID)
}

func (o *Orchestrator) reply(ctx context.Context, message string, fields qualification.LeadFields, status qualification.Status, profile *customers.Profile, history []Turn, log *logging.Logger) string {
	criteria := profile.Criteria()
	if status == qualification.StatusDisqualified || o.responder == nil {
		o.metrics.ObserveResponder("deterministic")
		return o.policy.Reply(message, fields, status, criteria)
	}

	text, err := o.responder.Generate(ctx, ResponderRequest{
		Message: message,
		Fields:  fields,
		Status:  status,
		Profile: profile,
		History: history,
	})
	if err == nil && strings.TrimSpace(text) != "" {
		o.metrics.ObserveResponder("generated")
		return strings.TrimSpace(text)
	}
	if err == nil {
		err = errors.New("empty reply")
	}
	log.Warn("responder failed, using dialogue policy", "error", err)
	o.metrics.ObserveResponder("fallback")
	return o.policy.Reply(message, fields, status, criteria)
}

func (o *Orchestrator) persist(ctx context.Context, conversationID, customerID, message, reply string, fields qualification.LeadFields, status qualification.Status) error {
	now := o.now()
	if err := o.store.EnsureConversation(ctx, conversationID, customerID); err != nil {
		return o.persistError("ensure_conversation", conversationID, err)
	}
	if err := o.store.AppendTurn(ctx, conversationID, Turn{Role: ChatRoleUser, Message: message, Timestamp: now}); err != nil {
		return o.persistError("append_turn", conversationID, err)
	}
	if err := o.store.AppendTurn(ctx, conversationID, Turn{Role: ChatRoleAssistant, Message: reply, Timestamp: now}); err != nil {
		return o.persistError("append_turn", conversationID, err)
	}
	if err := o.store.SaveFields(ctx, conversationID, fields, status); err != nil {
		return o.persistError("save_fields", conversationID, err)
	}
	return nil
}

func (o *Orchestrator) persistError(op, conversationID string, err error) error {
	o.metrics.ObservePersistError(op)
	return &PersistenceError{Op: op, ConversationID: conversationID, Err: err}
}

// notifyOnce claims the notification in the store and calls the notifier
// only when this turn won the claim.
func (o *Orchestrator) notifyOnce(ctx context.Context, profile *customers.Profile, fields qualification.LeadFields, conversationID string, log *logging.Logger) bool {
	claimed, err := o.store.MarkQualifiedNotified(ctx, conversationID)
	if err != nil {
		log.Error("failed to claim qualified notification", "error", err)
		o.metrics.ObserveNotify("claim_failed")
		return false
	}
	if !claimed {
		return false
	}
	if o.notifier == nil {
		log.Warn("lead qualified but no notifier configured")
		o.metrics.ObserveNotify("skipped")
		return false
	}
	if err := o.notifier.NotifyQualified(ctx, profile, fields, conversationID); err != nil {
		log.Error("qualified lead notification failed", "error", err)
		o.metrics.ObserveNotify("failed")
		return false
	}
	log.Info("qualified lead notification sent",
		"contact_email", redact.Email(profile.ContactEmail),
		"lead_fingerprint", redact.Fingerprint(fields.Email),
	)
	o.metrics.ObserveNotify("sent")
	return true
}
