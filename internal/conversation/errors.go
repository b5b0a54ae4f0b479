package conversation

import (
	"errors"
	"fmt"
)

var (
	// ErrConversationNotFound is returned when no state exists for an ID.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrResponderUnavailable is returned by a Responder with no backing model.
	ErrResponderUnavailable = errors.New("conversation: responder unavailable")
)

// PersistenceError reports a store failure after the reply was computed.
// The reply returned with it is still valid; the stored state may be stale.
type PersistenceError struct {
	Op             string
	ConversationID string
	Err            error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("conversation: %s %s: %v", e.Op, e.ConversationID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
