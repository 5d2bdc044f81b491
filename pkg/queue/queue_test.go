package queue

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	notifyerrors "github.com/kart-io/reportnotify/pkg/errors"
	"github.com/kart-io/reportnotify/pkg/logger"
	"github.com/kart-io/reportnotify/pkg/platform"
	"github.com/kart-io/reportnotify/pkg/recipient"
	"github.com/kart-io/reportnotify/pkg/report"
)

func TestJobEncoding(t *testing.T) {
	content := report.Content{
		Name:        "Q1 Sales",
		URL:         "https://bi.example.com/r/1",
		Description: report.Some("quarterly"),
		CSV:         report.Some([]byte("a,b\n")),
	}
	job := NewJob(content, recipient.Webhook("https://example.com/hook"))

	data, err := job.Encode()
	if err != nil {
		t.Fatalf("Failed to encode job: %v", err)
	}

	decoded, err := DecodeJob(data)
	if err != nil {
		t.Fatalf("Failed to decode job: %v", err)
	}
	if decoded.ID != job.ID {
		t.Errorf("Expected ID %s, got %s", job.ID, decoded.ID)
	}
	if decoded.Recipient != job.Recipient {
		t.Errorf("Expected recipient %+v, got %+v", job.Recipient, decoded.Recipient)
	}
	if decoded.Content.Name != "Q1 Sales" {
		t.Errorf("Expected content name Q1 Sales, got %s", decoded.Content.Name)
	}
	if got := string(decoded.Content.CSV.OrElse(nil)); got != "a,b\n" {
		t.Errorf("Expected csv to survive encoding, got %q", got)
	}
	if decoded.Content.Text.IsSet() {
		t.Error("Absent error text should stay absent")
	}
}

func TestDecodeJob_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":       "{",
		"missing type":   `{"id":"1","recipient":{"recipient_config_json":"{}"}}`,
		"wrong shape":    `[]`,
		"bad screenshot": `{"recipient":{"type":"Webhook"},"content":{"screenshots":[42]}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeJob([]byte(raw))
			if !errors.Is(err, ErrMalformedJob) {
				t.Errorf("Expected ErrMalformedJob, got %v", err)
			}
		})
	}
}

func TestDecodeJob_AssignsID(t *testing.T) {
	job, err := DecodeJob([]byte(`{"recipient":{"type":"Webhook","recipient_config_json":"{}"}}`))
	if err != nil {
		t.Fatalf("Failed to decode job: %v", err)
	}
	if job.ID == "" {
		t.Error("Expected a generated job ID")
	}
}

type sliceSource struct {
	mu    sync.Mutex
	items []interface{} // *Job or error
	done  chan struct{}
}

func (s *sliceSource) Pop(ctx context.Context) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		select {
		case <-s.done:
		default:
			close(s.done)
		}
		return nil, nil
	}
	item := s.items[0]
	s.items = s.items[1:]
	if err, ok := item.(error); ok {
		return nil, err
	}
	return item.(*Job), nil
}

type countingDispatcher struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
}

func (d *countingDispatcher) Dispatch(_ context.Context, content *report.Content, _ recipient.Recipient) (*platform.SendResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls[content.Name]++
	if d.fail[content.Name] {
		err := notifyerrors.New(notifyerrors.ErrHTTPStatus, "500 Server Error").
			WithPlatform("webhook").
			WithStatusCode(500)
		return &platform.SendResult{State: platform.StateFailed}, err
	}
	return &platform.SendResult{DeliveryID: "d", State: platform.StateDelivered}, nil
}

func TestWorker_Run(t *testing.T) {
	source := &sliceSource{
		items: []interface{}{
			NewJob(report.Content{Name: "first"}, recipient.Webhook("https://example.com")),
			ErrMalformedJob,
			NewJob(report.Content{Name: "failing"}, recipient.Webhook("https://example.com")),
			NewJob(report.Content{Name: "last"}, recipient.Webhook("https://example.com")),
		},
		done: make(chan struct{}),
	}
	dispatcher := &countingDispatcher{
		calls: make(map[string]int),
		fail:  map[string]bool{"failing": true},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWorker(source, dispatcher, logger.Discard)
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	select {
	case <-source.done:
	case <-time.After(2 * time.Second):
		t.Fatal("Worker did not drain the source")
	}
	cancel()

	if err := <-errCh; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	for _, name := range []string{"first", "failing", "last"} {
		if got := dispatcher.calls[name]; got != 1 {
			t.Errorf("Expected exactly one attempt for %s, got %d", name, got)
		}
	}
}

func TestWorker_Process(t *testing.T) {
	dispatcher := &countingDispatcher{calls: make(map[string]int), fail: map[string]bool{"bad": true}}
	w := NewWorker(nil, dispatcher, nil)

	result := w.Process(context.Background(), NewJob(report.Content{Name: "bad"}, recipient.Webhook("x")))
	if result == nil || result.State != platform.StateFailed {
		t.Errorf("Expected failed result, got %+v", result)
	}

	result = w.Process(context.Background(), NewJob(report.Content{Name: "good"}, recipient.Webhook("x")))
	if !result.Delivered() {
		t.Errorf("Expected delivered result, got %+v", result)
	}
}

func TestWorker_Process_LogsFailure(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	dispatcher := &countingDispatcher{calls: make(map[string]int), fail: map[string]bool{"bad": true}}
	w := NewWorker(nil, dispatcher, logger.NewZapLogger(zap.New(core), logger.Debug))

	job := NewJob(report.Content{Name: "bad"}, recipient.Webhook("x"))
	w.Process(context.Background(), job)

	entries := logs.FilterMessage("Report delivery failed").All()
	if len(entries) != 1 {
		t.Fatalf("Expected one failure log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["job_id"] != job.ID {
		t.Errorf("Expected job_id %s, got %v", job.ID, fields["job_id"])
	}
	if fields["code"] != "HTTP_STATUS_ERROR" {
		t.Errorf("Expected code HTTP_STATUS_ERROR, got %v", fields["code"])
	}
	if fields["error"] != "500 Server Error" {
		t.Errorf("Expected error message, got %v", fields["error"])
	}
	if fields["detail"] != "HTTP_STATUS_ERROR: 500 Server Error (platform: webhook)" {
		t.Errorf("Unexpected detail %v", fields["detail"])
	}
	if fields["status_code"] != int64(500) {
		t.Errorf("Expected status_code 500, got %#v", fields["status_code"])
	}
}

func TestWorker_Process_LogsUnsupportedRecipient(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	registry := platform.NewRegistry(logger.Discard)
	w := NewWorker(nil, registry, logger.NewZapLogger(zap.New(core), logger.Debug))

	result := w.Process(context.Background(), NewJob(report.Content{}, recipient.New(recipient.TypeEmail, "{}")))
	if result != nil {
		t.Errorf("Expected no result, got %+v", result)
	}

	entries := logs.FilterMessage("Report delivery failed").All()
	if len(entries) != 1 {
		t.Fatalf("Expected one failure log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["code"] != "UNSUPPORTED_RECIPIENT" {
		t.Errorf("Expected code UNSUPPORTED_RECIPIENT, got %v", fields["code"])
	}
	if _, ok := fields["status_code"]; ok {
		t.Error("Non-HTTP failures should not log a status code")
	}
}

// Set REPORTNOTIFY_TEST_REDIS_ADDR to run against a live Redis.
func TestRedisSource(t *testing.T) {
	addr := os.Getenv("REPORTNOTIFY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("REPORTNOTIFY_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	key := "reportnotify:test:" + time.Now().Format("150405.000000")
	t.Cleanup(func() {
		client.Del(ctx, key)
	})

	source := NewRedisSourceWithClient(client, key, 200*time.Millisecond, logger.Discard)
	defer source.Close()

	first := NewJob(report.Content{Name: "one"}, recipient.Webhook("https://example.com"))
	second := NewJob(report.Content{Name: "two"}, recipient.Webhook("https://example.com"))
	for _, job := range []*Job{first, second} {
		if err := source.Push(ctx, job); err != nil {
			t.Fatalf("Failed to push: %v", err)
		}
	}

	if n, err := source.Len(ctx); err != nil || n != 2 {
		t.Fatalf("Expected 2 queued jobs, got %d (%v)", n, err)
	}

	got, err := source.Pop(ctx)
	if err != nil {
		t.Fatalf("Failed to pop: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("Expected FIFO order, got %s first", got.Content.Name)
	}

	if _, err := source.Pop(ctx); err != nil {
		t.Fatalf("Failed to pop: %v", err)
	}

	empty, err := source.Pop(ctx)
	if err != nil || empty != nil {
		t.Errorf("Expected (nil, nil) on empty queue, got (%v, %v)", empty, err)
	}
}
