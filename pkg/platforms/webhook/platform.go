// Package webhook delivers report notifications to an HTTP endpoint configured
// on the recipient. Each Send performs exactly one POST.
package webhook

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kart-io/reportnotify/pkg/errors"
	"github.com/kart-io/reportnotify/pkg/logger"
	"github.com/kart-io/reportnotify/pkg/platform"
	"github.com/kart-io/reportnotify/pkg/recipient"
	"github.com/kart-io/reportnotify/pkg/report"
)

const (
	// Name is the channel name.
	Name = "webhook"

	// SendTimeout bounds each POST, including reading the response headers.
	SendTimeout = 30 * time.Second

	// response bodies are drained up to this size so connections can be reused
	maxDrainBytes = 64 << 10
)

// Platform is the webhook notification channel. It holds no per-delivery
// state and is safe for concurrent use.
type Platform struct {
	client    *http.Client
	formatter *Formatter
	logger    logger.Logger
}

var _ platform.Channel = (*Platform)(nil)

// Option configures a Platform.
type Option func(*Platform)

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Platform) {
		if client != nil {
			p.client = client
		}
	}
}

// WithFormatter replaces the default formatter.
func WithFormatter(formatter *Formatter) Option {
	return func(p *Platform) {
		if formatter != nil {
			p.formatter = formatter
		}
	}
}

// NewWebhookPlatform creates the webhook channel.
func NewWebhookPlatform(log logger.Logger, opts ...Option) *Platform {
	if log == nil {
		log = logger.Discard
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.IdleConnTimeout = 30 * time.Second

	p := &Platform{
		client: &http.Client{
			Transport: transport,
			Timeout:   SendTimeout,
		},
		formatter: NewFormatter(nil, nil),
		logger:    log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the platform name
func (p *Platform) Name() string {
	return Name
}

// Subject returns the subject line for content.
func (p *Platform) Subject(content *report.Content) string {
	return p.formatter.Subject(orEmpty(content))
}

// Send formats content and POSTs it to the recipient's target. Every failure
// is returned as *errors.NotifyError together with a Failed result.
func (p *Platform) Send(ctx context.Context, content *report.Content, rcpt recipient.Recipient) (*platform.SendResult, error) {
	start := time.Now()
	content = orEmpty(content)
	result := &platform.SendResult{
		DeliveryID: uuid.NewString(),
		Platform:   Name,
		State:      platform.StatePending,
	}

	fail := func(err *errors.NotifyError) (*platform.SendResult, error) {
		err.WithPlatform(Name).WithTarget(result.Target)
		result.State = platform.StateFailed
		result.StatusCode = err.StatusCode
		result.Error = err
		result.Duration = time.Since(start)
		return result, err
	}

	subject := p.formatter.Subject(content)
	payload := p.formatter.Format(content)

	target, err := rcpt.Target()
	if err != nil {
		return fail(asNotifyError(err, errors.ErrInvalidRecipientConfig))
	}
	result.Target = target

	if upstream := content.Err(); upstream != nil {
		notifyErr, ok := errors.FromUpstream(upstream)
		if !ok {
			notifyErr = errors.Wrap(upstream, errors.ErrReportGeneration)
		}
		return fail(notifyErr)
	}

	body, err := json.Marshal(payload.Envelope(subject))
	if err != nil {
		return fail(errors.Wrap(err, errors.ErrPayloadEncoding))
	}

	p.logger.Debug("Sending webhook request",
		"delivery_id", result.DeliveryID,
		"url", target,
		"payload_size", len(body))

	statusCode, notifyErr := p.post(ctx, target, body)
	if notifyErr != nil {
		return fail(notifyErr)
	}

	result.State = platform.StateDelivered
	result.StatusCode = statusCode
	result.Duration = time.Since(start)

	p.logger.Info("Report sent to webhook",
		"header_data", payload.HeaderData.OrElse(nil),
		"url", target,
		"status_code", statusCode,
		"delivery_id", result.DeliveryID)

	return result, nil
}

// Close releases idle connections.
func (p *Platform) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func (p *Platform) post(ctx context.Context, target string, body []byte) (int, *errors.NotifyError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrTransport)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, statusError(resp, target)
	}
	return resp.StatusCode, nil
}

// statusError mirrors the familiar "<code> Server Error: <reason> for url: <url>" text.
func statusError(resp *http.Response, target string) *errors.NotifyError {
	code := resp.StatusCode
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(code)))
	if reason == "" {
		reason = http.StatusText(code)
	}

	var kind string
	switch {
	case code >= 400 && code < 500:
		kind = "Client Error"
	case code >= 500 && code < 600:
		kind = "Server Error"
	default:
		kind = "Unexpected Status"
	}

	return errors.Newf(errors.ErrHTTPStatus, "%d %s: %s for url: %s", code, kind, reason, target).
		WithStatusCode(code)
}

func classifyTransportError(err error) *errors.NotifyError {
	var (
		dnsErr     *net.DNSError
		certErr    *tls.CertificateVerificationError
		authErr    x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
		recordErr  tls.RecordHeaderError
		netErr     net.Error
		opErr      *net.OpError
	)

	code := errors.ErrTransport
	switch {
	case stderrors.Is(err, context.DeadlineExceeded),
		stderrors.As(err, &netErr) && netErr.Timeout():
		code = errors.ErrNetworkTimeout
	case stderrors.Is(err, context.Canceled):
		code = errors.ErrCancelled
	case stderrors.As(err, &dnsErr):
		code = errors.ErrDNSResolutionFailed
	case stderrors.As(err, &certErr), stderrors.As(err, &authErr), stderrors.As(err, &hostErr),
		stderrors.As(err, &invalidErr), stderrors.As(err, &recordErr):
		code = errors.ErrSSLError
	case stderrors.As(err, &opErr) && opErr.Op == "dial":
		code = errors.ErrConnectionFailed
	}

	return errors.Wrap(err, code)
}

func asNotifyError(err error, fallback errors.ErrorCode) *errors.NotifyError {
	var notifyErr *errors.NotifyError
	if stderrors.As(err, &notifyErr) {
		return notifyErr
	}
	return errors.Wrap(err, fallback)
}

func orEmpty(content *report.Content) *report.Content {
	if content == nil {
		return &report.Content{}
	}
	return content
}
