package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/wolfman30/remodel-leadbot/internal/config"
	"github.com/wolfman30/remodel-leadbot/internal/conversation"
	"github.com/wolfman30/remodel-leadbot/internal/observability/metrics"
	"github.com/wolfman30/remodel-leadbot/internal/qualification"
	"github.com/wolfman30/remodel-leadbot/pkg/logging"
)

// Supported LLM_PROVIDER values.
const (
	ProviderNone    = "none"
	ProviderGemini  = "gemini"
	ProviderBedrock = "bedrock"
)

// NeedsAWS reports whether any configured integration talks to AWS.
func NeedsAWS(cfg *appconfig.Config) bool {
	if cfg == nil {
		return false
	}
	return cfg.LLMProvider == ProviderBedrock ||
		(cfg.LLMProvider == ProviderGemini && cfg.BedrockModelID != "") ||
		cfg.EmailProvider == EmailProviderSES ||
		strings.TrimSpace(cfg.LeadEventsQueueURL) != ""
}

// BuildLLMClient returns the generative client chain for cfg.LLMProvider, or
// nil when replies should stay deterministic. With gemini as the primary
// and a Bedrock model configured, Bedrock is used as a fallback.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (conversation.LLMClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var clients []conversation.LLMClient
	switch cfg.LLMProvider {
	case "", ProviderNone:
		logger.Info("no LLM provider configured; replies use the dialogue policy")
		return nil, nil
	case ProviderGemini:
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			return nil, fmt.Errorf("bootstrap: GEMINI_API_KEY is required for the gemini provider")
		}
		gemini, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: gemini client: %w", err)
		}
		clients = append(clients, gemini)
		if cfg.BedrockModelID != "" && awsCfg != nil {
			clients = append(clients, conversation.NewBedrockLLMClient(bedrockruntime.NewFromConfig(*awsCfg), cfg.BedrockModelID))
		}
	case ProviderBedrock:
		if cfg.BedrockModelID == "" {
			return nil, fmt.Errorf("bootstrap: BEDROCK_MODEL_ID is required for the bedrock provider")
		}
		if awsCfg == nil {
			return nil, fmt.Errorf("bootstrap: aws config is required for the bedrock provider")
		}
		clients = append(clients, conversation.NewBedrockLLMClient(bedrockruntime.NewFromConfig(*awsCfg), cfg.BedrockModelID))
	default:
		return nil, fmt.Errorf("bootstrap: unknown LLM provider %q", cfg.LLMProvider)
	}

	logger.Info("LLM responder enabled", "provider", cfg.LLMProvider, "clients", len(clients))
	if len(clients) == 1 {
		return clients[0], nil
	}
	return conversation.NewFallbackLLMClient(logger, clients...), nil
}

// BuildOrchestrator wires the per-turn flow from the chosen stores and
// optional collaborators. llm and notifier may be nil.
func BuildOrchestrator(cfg *appconfig.Config, stores Stores, llm conversation.LLMClient, notifier conversation.Notifier, m *metrics.ConversationMetrics, logger *logging.Logger) *conversation.Orchestrator {
	policy := qualification.NewPolicy(cfg.AssistantName)
	opts := []conversation.OrchestratorOption{
		conversation.WithPolicy(policy),
		conversation.WithLocker(stores.Locker),
		conversation.WithMetrics(m),
	}
	if llm != nil {
		opts = append(opts, conversation.WithResponder(conversation.NewLLMResponder(llm, policy)))
	}
	if notifier != nil {
		opts = append(opts, conversation.WithNotifier(notifier))
	}
	return conversation.NewOrchestrator(stores.Customers, stores.Conversations, logger, opts...)
}
