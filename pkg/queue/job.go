// Package queue feeds delivery jobs from Redis to notification channels.
// Each job is attempted exactly once; a failed delivery is logged and dropped,
// leaving retry policy to whoever enqueued it.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kart-io/reportnotify/pkg/recipient"
	"github.com/kart-io/reportnotify/pkg/report"
)

// ErrMalformedJob is returned when a queued entry cannot be decoded.
var ErrMalformedJob = errors.New("malformed delivery job")

// Job is a queued delivery request.
type Job struct {
	ID        string              `json:"id"`
	Recipient recipient.Recipient `json:"recipient"`
	Content   report.Content      `json:"content"`
	CreatedAt time.Time           `json:"created_at"`
}

// NewJob creates a job with a fresh ID.
func NewJob(content report.Content, rcpt recipient.Recipient) *Job {
	return &Job{
		ID:        uuid.NewString(),
		Recipient: rcpt,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// Encode serializes the job for the queue.
func (j *Job) Encode() ([]byte, error) {
	return json.Marshal(j)
}

// DecodeJob parses a queued entry.
func DecodeJob(data []byte) (*Job, error) {
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJob, err)
	}
	if job.Recipient.Type == "" {
		return nil, fmt.Errorf("%w: recipient type is empty", ErrMalformedJob)
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	return &job, nil
}
