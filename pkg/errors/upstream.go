package errors

import (
	"errors"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ReportError is a structured error reported by the report/alert generation
// pipeline in place of content.
type ReportError struct {
	Message   string                 `json:"message"`
	ErrorType string                 `json:"error_type,omitempty"`
	Level     string                 `json:"level,omitempty"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// Error implements the error interface
func (e *ReportError) Error() string {
	return e.Message
}

// JoinReportErrors aggregates upstream errors into a single error whose text is
// the messages joined by ";" in order. It returns nil when there is nothing to join.
func JoinReportErrors(errs []*ReportError) error {
	var result *multierror.Error
	for _, e := range errs {
		if e != nil {
			result = multierror.Append(result, e)
		}
	}
	if result == nil {
		return nil
	}
	result.ErrorFormat = joinMessages
	return result
}

// FromUpstream converts an aggregated upstream fault into a NotifyError.
// ok is false when err does not carry aggregated errors.
func FromUpstream(err error) (notifyErr *NotifyError, ok bool) {
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		return nil, false
	}
	return New(ErrReportGeneration, joinMessages(merr.WrappedErrors())).WithCause(err), true
}

func joinMessages(errs []error) string {
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, ";")
}
