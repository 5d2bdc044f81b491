// Package reportnotify delivers generated reports and alerts to notification
// channels. The webhook channel formats the report into a JSON envelope and
// POSTs it once to the URL stored on the recipient.
//
// Basic usage:
//
//	hub, err := reportnotify.New(nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer hub.Close(context.Background())
//
//	content := &reportnotify.Content{
//		Name:        "Q1 Sales",
//		URL:         "https://bi.example.com/dashboard/7",
//		Description: reportnotify.Some("Quarterly numbers"),
//	}
//	result, err := hub.Send(ctx, content, reportnotify.WebhookRecipient("https://example.com/hook"))
package reportnotify

import (
	"context"
	"fmt"

	"golang.org/x/text/language"

	"github.com/kart-io/reportnotify/observability"
	"github.com/kart-io/reportnotify/pkg/config"
	"github.com/kart-io/reportnotify/pkg/i18n"
	"github.com/kart-io/reportnotify/pkg/logger"
	"github.com/kart-io/reportnotify/pkg/platform"
	"github.com/kart-io/reportnotify/pkg/platforms/webhook"
	"github.com/kart-io/reportnotify/pkg/recipient"
	"github.com/kart-io/reportnotify/pkg/report"
	"github.com/kart-io/reportnotify/pkg/utils/sanitize"
)

type (
	// Content is a generated report or alert
	Content = report.Content

	// HeaderData is opaque notification metadata
	HeaderData = report.HeaderData

	// Recipient is a configured notification recipient
	Recipient = recipient.Recipient

	// SendResult describes a delivery attempt
	SendResult = platform.SendResult

	// Channel is a notification delivery channel
	Channel = platform.Channel
)

// Some marks an optional content field as present.
func Some[T any](v T) report.Optional[T] {
	return report.Some(v)
}

// WebhookRecipient returns a recipient delivering to target.
func WebhookRecipient(target string) Recipient {
	return recipient.Webhook(target)
}

// Hub owns the registered channels and their shared collaborators.
type Hub struct {
	config    *config.Config
	logger    logger.Logger
	registry  *platform.Registry
	catalog   *i18n.Catalog
	telemetry *observability.TelemetryProvider
	webhook   *webhook.Platform
}

// New builds a hub from cfg. A nil cfg uses config.Default.
func New(cfg *config.Config) (*Hub, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := cfg.BuildLogger()
	if err != nil {
		return nil, err
	}

	telemetry, err := observability.NewTelemetryProvider(&cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	catalog := i18n.NewCatalog(language.English)
	catalog.SetLanguage(cfg.Language)

	wh := webhook.NewWebhookPlatform(log,
		webhook.WithFormatter(webhook.NewFormatter(catalog, sanitize.NewStrict())),
	)

	registry := platform.NewRegistry(log)
	if err := registry.Register(recipient.TypeWebhook, observability.Instrument(wh, telemetry)); err != nil {
		return nil, err
	}

	return &Hub{
		config:    cfg,
		logger:    log,
		registry:  registry,
		catalog:   catalog,
		telemetry: telemetry,
		webhook:   wh,
	}, nil
}

// Send delivers content to rcpt through the channel registered for its type.
func (h *Hub) Send(ctx context.Context, content *Content, rcpt Recipient) (*SendResult, error) {
	return h.registry.Dispatch(ctx, content, rcpt)
}

// Register adds a sibling channel (email, Slack, ...) for a recipient type.
func (h *Hub) Register(typ recipient.Type, ch Channel) error {
	return h.registry.Register(typ, observability.Instrument(ch, h.telemetry))
}

// Registry exposes the channel registry, e.g. for queue workers.
func (h *Hub) Registry() *platform.Registry {
	return h.registry
}

// Catalog exposes the translation catalog so callers can add translations.
func (h *Hub) Catalog() *i18n.Catalog {
	return h.catalog
}

// Logger returns the hub logger.
func (h *Hub) Logger() logger.Logger {
	return h.logger
}

// Close releases connections and flushes telemetry.
func (h *Hub) Close(ctx context.Context) error {
	_ = h.webhook.Close()
	if err := h.telemetry.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown telemetry: %w", err)
	}
	if z, ok := h.logger.(*logger.ZapLogger); ok {
		_ = z.Sync()
	}
	return nil
}
