package bootstrap

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	appconfig "github.com/wolfman30/remodel-leadbot/internal/config"
	"github.com/wolfman30/remodel-leadbot/internal/events"
	"github.com/wolfman30/remodel-leadbot/internal/notify"
	"github.com/wolfman30/remodel-leadbot/pkg/logging"
)

// Supported EMAIL_PROVIDER values.
const (
	EmailProviderStub     = "stub"
	EmailProviderSendGrid = "sendgrid"
	EmailProviderSES      = "ses"
	EmailProviderSMTP     = "smtp"
)

// BuildEmailSender selects the EmailSender for cfg.EmailProvider. A provider
// missing its credentials falls back to the stub sender.
func BuildEmailSender(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (notify.EmailSender, error) {
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.EmailProvider {
	case "", EmailProviderStub:
		return notify.NewStubEmailSender(logger), nil
	case EmailProviderSendGrid:
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger); sender != nil {
			return sender, nil
		}
		logger.Warn("SENDGRID_API_KEY not set; qualified lead emails will only be logged")
		return notify.NewStubEmailSender(logger), nil
	case EmailProviderSES:
		if awsCfg == nil {
			return nil, fmt.Errorf("bootstrap: aws config is required for the ses email provider")
		}
		return notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger), nil
	case EmailProviderSMTP:
		if sender := notify.NewSMTPSender(notify.SMTPConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger); sender != nil {
			return sender, nil
		}
		logger.Warn("SMTP_HOST not set; qualified lead emails will only be logged")
		return notify.NewStubEmailSender(logger), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown email provider %q", cfg.EmailProvider)
	}
}

// BuildNotifier combines the qualified-lead email with the optional SQS
// lead event publisher.
func BuildNotifier(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (*notify.MultiNotifier, error) {
	if logger == nil {
		logger = logging.Default()
	}
	sender, err := BuildEmailSender(cfg, awsCfg, logger)
	if err != nil {
		return nil, err
	}
	sinks := []notify.QualifiedNotifier{notify.NewLeadNotifier(sender, cfg.DashboardURL, logger)}

	if queueURL := strings.TrimSpace(cfg.LeadEventsQueueURL); queueURL != "" {
		if awsCfg == nil {
			return nil, fmt.Errorf("bootstrap: aws config is required for LEAD_EVENTS_QUEUE_URL")
		}
		sinks = append(sinks, events.NewQualifiedPublisher(sqs.NewFromConfig(*awsCfg), queueURL, logger))
		logger.Info("lead qualified events enabled", "queue_url", queueURL)
	}
	return notify.NewMultiNotifier(sinks...), nil
}
