// Package sanitize strips markup from user-supplied text before it leaves the system.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// quotes undoes the escaping of quote characters, which cannot form markup on
// their own. &amp;, &lt; and &gt; stay escaped.
var quotes = strings.NewReplacer("&#39;", "'", "&#34;", `"`)

// Sanitizer returns text with markup removed.
type Sanitizer interface {
	Sanitize(text string) string
}

// Strict removes every HTML element and attribute, keeping only text content.
// Content of script and style elements is dropped entirely. Quotes and
// apostrophes pass through unchanged; &, < and > in the remaining text are
// HTML-escaped.
type Strict struct {
	policy *bluemonday.Policy
}

// NewStrict returns a Strict sanitizer. Policies are safe for concurrent use.
func NewStrict() *Strict {
	return &Strict{policy: bluemonday.StrictPolicy()}
}

// Sanitize implements Sanitizer.
func (s *Strict) Sanitize(text string) string {
	if text == "" {
		return ""
	}
	return quotes.Replace(s.policy.Sanitize(text))
}
