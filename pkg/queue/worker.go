package queue

import (
	"context"
	"errors"
	"time"

	notifyerrors "github.com/kart-io/reportnotify/pkg/errors"
	"github.com/kart-io/reportnotify/pkg/logger"
	"github.com/kart-io/reportnotify/pkg/platform"
	"github.com/kart-io/reportnotify/pkg/recipient"
	"github.com/kart-io/reportnotify/pkg/report"
)

// Source yields queued jobs. Pop returns (nil, nil) when no job is available yet.
type Source interface {
	Pop(ctx context.Context) (*Job, error)
}

// Dispatcher delivers content to a recipient; *platform.Registry implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, content *report.Content, rcpt recipient.Recipient) (*platform.SendResult, error)
}

// Worker consumes jobs from a Source and dispatches each one once.
type Worker struct {
	source     Source
	dispatcher Dispatcher
	logger     logger.Logger
	backoff    time.Duration
}

// NewWorker creates a worker.
func NewWorker(source Source, dispatcher Dispatcher, log logger.Logger) *Worker {
	if log == nil {
		log = logger.Discard
	}
	return &Worker{
		source:     source,
		dispatcher: dispatcher,
		logger:     log,
		backoff:    time.Second,
	}
}

// Run processes jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Delivery worker started")
	defer w.logger.Info("Delivery worker stopped")

	for {
		if ctx.Err() != nil {
			return nil
		}

		job, err := w.source.Pop(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil
		case errors.Is(err, ErrMalformedJob):
			w.logger.Error("Dropping malformed delivery job", "error", err)
			continue
		case err != nil:
			w.logger.Warn("Failed to read delivery job", "error", err)
			if !sleep(ctx, w.backoff) {
				return nil
			}
			continue
		case job == nil:
			continue
		}

		w.Process(ctx, job)
	}
}

// Process performs the single delivery attempt for job.
func (w *Worker) Process(ctx context.Context, job *Job) *platform.SendResult {
	result, err := w.dispatcher.Dispatch(ctx, &job.Content, job.Recipient)
	if err != nil {
		fields := []any{
			"job_id", job.ID,
			"recipient_type", string(job.Recipient.Type),
			"code", string(notifyerrors.GetErrorCode(err)),
			"error", notifyerrors.GetErrorMessage(err),
		}
		var notifyErr *notifyerrors.NotifyError
		if errors.As(err, &notifyErr) {
			fields = append(fields, "detail", notifyErr.Detail())
			if notifyerrors.IsHTTPError(err) {
				fields = append(fields, "status_code", notifyErr.StatusCode)
			}
		}
		w.logger.Error("Report delivery failed", fields...)
		return result
	}

	w.logger.Debug("Report delivery completed",
		"job_id", job.ID,
		"delivery_id", result.DeliveryID,
		"duration", result.Duration)
	return result
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
