package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfman30/remodel-leadbot/pkg/logging"
)

// FallbackLLMClient tries each client in order until one succeeds.
type FallbackLLMClient struct {
	clients []LLMClient
	logger  *logging.Logger
}

// NewFallbackLLMClient builds a chain from the non-nil clients.
func NewFallbackLLMClient(logger *logging.Logger, clients ...LLMClient) *FallbackLLMClient {
	if logger == nil {
		logger = logging.Default()
	}
	chain := make([]LLMClient, 0, len(clients))
	for _, c := range clients {
		if c != nil {
			chain = append(chain, c)
		}
	}
	return &FallbackLLMClient{clients: chain, logger: logger}
}

// Len reports how many providers are configured.
func (c *FallbackLLMClient) Len() int {
	return len(c.clients)
}

func (c *FallbackLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	if len(c.clients) == 0 {
		return LLMResponse{}, ErrResponderUnavailable
	}
	var errs []error
	for i, client := range c.clients {
		resp, err := client.Complete(ctx, req)
		if err == nil {
			if i > 0 {
				c.logger.Info("fallback LLM succeeded", "provider_index", i)
			}
			return resp, nil
		}
		errs = append(errs, fmt.Errorf("provider %d: %w", i, err))
		if ctx.Err() != nil {
			break
		}
		c.logger.Warn("LLM provider failed", "provider_index", i, "error", err, "remaining", len(c.clients)-i-1)
	}
	return LLMResponse{}, errors.Join(errs...)
}
