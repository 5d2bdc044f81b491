// Package report defines the report/alert content handed to notification channels.
package report

import (
	"github.com/kart-io/reportnotify/pkg/errors"
)

// HeaderData is opaque metadata describing where a notification came from
// (owners, chart or dashboard ids, execution id). Channels log it but never
// transmit it.
type HeaderData map[string]interface{}

// Content is a generated report or alert. Either Text carries the error that
// stopped generation, or the remaining fields carry the report itself.
// Screenshots are raw image bytes in display order.
type Content struct {
	Text        Optional[string]      `json:"text"`
	Description Optional[string]      `json:"description"`
	URL         string                `json:"url"`
	Screenshots [][]byte              `json:"screenshots,omitempty"`
	CSV         Optional[[]byte]      `json:"csv"`
	Name        string                `json:"name"`
	HeaderData  Optional[HeaderData]  `json:"header_data"`
	Errors      []*errors.ReportError `json:"errors,omitempty"`
}

// HasError reports whether the content describes a failed generation.
func (c *Content) HasError() bool {
	return c.Text.OrElse("") != ""
}

// Err returns the aggregated upstream errors, or nil when there are none.
func (c *Content) Err() error {
	return errors.JoinReportErrors(c.Errors)
}
