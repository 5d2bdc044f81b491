// Package platform defines the notification channel abstraction shared by
// webhook, email, Slack and other delivery channels.
package platform

import (
	"context"
	"time"

	"github.com/kart-io/reportnotify/pkg/recipient"
	"github.com/kart-io/reportnotify/pkg/report"
)

// Channel delivers report content to one recipient.
type Channel interface {
	// Name identifies the channel, e.g. "webhook".
	Name() string

	// Subject returns the subject line for content.
	Subject(content *report.Content) string

	// Send performs exactly one delivery attempt. On failure the returned
	// error is a *errors.NotifyError and the result, when non-nil, is Failed.
	Send(ctx context.Context, content *report.Content, rcpt recipient.Recipient) (*SendResult, error)
}

// State is the outcome of a single delivery.
type State string

const (
	StatePending   State = "pending"
	StateDelivered State = "delivered"
	StateFailed    State = "failed"
)

// SendResult describes a delivery attempt.
type SendResult struct {
	DeliveryID string        `json:"delivery_id"`
	Platform   string        `json:"platform"`
	Target     string        `json:"target,omitempty"`
	State      State         `json:"state"`
	StatusCode int           `json:"status_code,omitempty"`
	Duration   time.Duration `json:"duration"`
	Error      error         `json:"-"`
}

// Delivered reports whether the attempt succeeded.
func (r *SendResult) Delivered() bool {
	return r != nil && r.State == StateDelivered
}
