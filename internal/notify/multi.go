package notify

import (
	"context"
	"errors"

	"github.com/wolfman30/remodel-leadbot/internal/customers"
	"github.com/wolfman30/remodel-leadbot/internal/qualification"
	"golang.org/x/sync/errgroup"
)

// QualifiedNotifier is anything told about a newly qualified lead.
type QualifiedNotifier interface {
	NotifyQualified(ctx context.Context, profile *customers.Profile, fields qualification.LeadFields, conversationID string) error
}

// MultiNotifier fans a qualified lead out to every sink concurrently.
type MultiNotifier struct {
	sinks []QualifiedNotifier
}

// NewMultiNotifier skips nil sinks.
func NewMultiNotifier(sinks ...QualifiedNotifier) *MultiNotifier {
	m := &MultiNotifier{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Len returns the number of sinks.
func (m *MultiNotifier) Len() int {
	return len(m.sinks)
}

// NotifyQualified calls every sink and joins their errors. One failing sink
// does not stop the others.
func (m *MultiNotifier) NotifyQualified(ctx context.Context, profile *customers.Profile, fields qualification.LeadFields, conversationID string) error {
	errs := make([]error, len(m.sinks))
	var g errgroup.Group
	for i, sink := range m.sinks {
		g.Go(func() error {
			errs[i] = sink.NotifyQualified(ctx, profile, fields, conversationID)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
