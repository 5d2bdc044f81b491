package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kart-io/reportnotify/pkg/errors"
	"github.com/kart-io/reportnotify/pkg/platform"
	"github.com/kart-io/reportnotify/pkg/recipient"
	"github.com/kart-io/reportnotify/pkg/report"
)

// instrumentedChannel records a span, an outcome counter and a duration for
// every Send of the wrapped channel. It does not alter results or errors.
type instrumentedChannel struct {
	platform.Channel
	telemetry *TelemetryProvider
}

// Instrument wraps ch so each Send is observable.
func Instrument(ch platform.Channel, tp *TelemetryProvider) platform.Channel {
	if tp == nil {
		return ch
	}
	return &instrumentedChannel{Channel: ch, telemetry: tp}
}

func (c *instrumentedChannel) Send(ctx context.Context, content *report.Content, rcpt recipient.Recipient) (*platform.SendResult, error) {
	start := time.Now()
	ctx, span := c.telemetry.TraceSend(ctx, c.Name(), string(rcpt.Type))
	defer span.End()

	result, err := c.Channel.Send(ctx, content, rcpt)
	duration := time.Since(start)

	if result != nil {
		span.SetAttributes(
			attribute.String("reports.delivery_id", result.DeliveryID),
			attribute.Int("http.response.status_code", result.StatusCode),
		)
	}

	if err != nil {
		c.telemetry.RecordSend(ctx, c.Name(), duration, string(errors.GetErrorCode(err)))
		c.telemetry.SetSpanError(span, err)
		return result, err
	}

	c.telemetry.RecordSend(ctx, c.Name(), duration, "")
	c.telemetry.SetSpanSuccess(span)
	return result, nil
}
