package webhook

import (
	"encoding/base64"

	"github.com/kart-io/reportnotify/pkg/i18n"
	"github.com/kart-io/reportnotify/pkg/report"
	"github.com/kart-io/reportnotify/pkg/utils/sanitize"
)

// Templates passed through the translator. Placeholders use %(name)s.
const (
	ErrorTemplate   = "Your report/alert was unable to be generated because of the following error: %(text)s\nPlease check your dashboard/chart for errors.\n\"%(url)s\""
	SubjectTemplate = "%(title)s"
	CSVNameTemplate = "%(name)s.csv"
)

// Body is the "body" field of a webhook payload: either ErrorBody or StructuredBody.
type Body interface {
	isBody()
}

// ErrorBody is sent when report generation failed. It encodes as a JSON string.
type ErrorBody string

func (ErrorBody) isBody() {}

// StructuredBody is sent for a successfully generated report.
type StructuredBody struct {
	Description string `json:"description"`
	URL         string `json:"url"`
}

func (StructuredBody) isBody() {}

// Payload is report content ready for transport.
type Payload struct {
	Body       Body
	Images     report.Optional[[]string]
	Data       report.Optional[map[string][]byte]
	HeaderData report.Optional[report.HeaderData]
}

// Envelope is the JSON document POSTed to the webhook.
type Envelope struct {
	Subject string          `json:"subject"`
	Content EnvelopeContent `json:"content"`
}

// EnvelopeContent carries the transmitted part of a Payload. Header data is
// never sent.
type EnvelopeContent struct {
	Body   Body                               `json:"body"`
	Data   report.Optional[map[string][]byte] `json:"data"`
	Images report.Optional[[]string]          `json:"images"`
}

// Envelope wraps the payload with subject for the wire.
func (p *Payload) Envelope(subject string) Envelope {
	return Envelope{
		Subject: subject,
		Content: EnvelopeContent{
			Body:   p.Body,
			Data:   p.Data,
			Images: p.Images,
		},
	}
}

// Formatter turns report content into a Payload. It performs no I/O and never fails.
type Formatter struct {
	translator i18n.Translator
	sanitizer  sanitize.Sanitizer
}

// NewFormatter creates a formatter. Nil collaborators fall back to
// i18n.Passthrough and sanitize.NewStrict.
func NewFormatter(translator i18n.Translator, sanitizer sanitize.Sanitizer) *Formatter {
	if translator == nil {
		translator = i18n.Passthrough{}
	}
	if sanitizer == nil {
		sanitizer = sanitize.NewStrict()
	}
	return &Formatter{translator: translator, sanitizer: sanitizer}
}

// Subject returns the localized content name.
func (f *Formatter) Subject(content *report.Content) string {
	return f.translator.Translate(SubjectTemplate, map[string]interface{}{
		"title": content.Name,
	})
}

// Format builds the payload for content. Error content produces an ErrorBody
// with no images or data regardless of the other fields.
func (f *Formatter) Format(content *report.Content) *Payload {
	if content.HasError() {
		return &Payload{Body: f.errorBody(content)}
	}

	images := make([]string, 0, len(content.Screenshots))
	for _, screenshot := range content.Screenshots {
		images = append(images, base64.StdEncoding.EncodeToString(screenshot))
	}

	payload := &Payload{
		Body: StructuredBody{
			Description: f.sanitizer.Sanitize(content.Description.OrElse("")),
			URL:         content.URL,
		},
		Images:     report.Some(images),
		HeaderData: content.HeaderData,
	}

	if csv, ok := content.CSV.Get(); ok && len(csv) > 0 {
		filename := f.translator.Translate(CSVNameTemplate, map[string]interface{}{
			"name": content.Name,
		})
		payload.Data = report.Some(map[string][]byte{filename: csv})
	}

	return payload
}

func (f *Formatter) errorBody(content *report.Content) ErrorBody {
	return ErrorBody(f.translator.Translate(ErrorTemplate, map[string]interface{}{
		"text": content.Text.OrElse(""),
		"url":  content.URL,
	}))
}
