// Package observability wires OpenTelemetry tracing and metrics around
// notification delivery.
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kart-io/reportnotify/pkg/config"
)

const instrumentationName = "github.com/kart-io/reportnotify"

// TelemetryProvider provides observability features
type TelemetryProvider struct {
	config        *config.TelemetryConfig
	tracer        trace.Tracer
	meter         metric.Meter
	traceProvider *sdktrace.TracerProvider

	sends        metric.Int64Counter
	sendDuration metric.Float64Histogram
}

// NewTelemetryProvider creates a telemetry provider. A nil or disabled config
// yields a provider backed by the global (by default no-op) tracer and meter.
func NewTelemetryProvider(cfg *config.TelemetryConfig) (*TelemetryProvider, error) {
	if cfg == nil {
		cfg = &config.Default().Telemetry
	}

	tp := &TelemetryProvider{config: cfg}

	if !cfg.Enabled {
		return tp, tp.init(otel.Tracer(instrumentationName), meterFor(cfg))
	}

	tracer := otel.Tracer(instrumentationName)
	if cfg.TracingEnabled {
		var err error
		if tracer, err = tp.initTracing(); err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
	}

	meter := meterFor(cfg,
		metric.WithInstrumentationVersion(cfg.ServiceVersion),
		metric.WithSchemaURL(semconv.SchemaURL),
	)
	return tp, tp.init(tracer, meter)
}

// meterFor returns the global meter, or a no-op meter when metrics are disabled.
func meterFor(cfg *config.TelemetryConfig, opts ...metric.MeterOption) metric.Meter {
	if !cfg.MetricsEnabled {
		return noop.NewMeterProvider().Meter(instrumentationName)
	}
	return otel.Meter(instrumentationName, opts...)
}

// NewTelemetryProviderWith builds a provider around an existing tracer and meter.
func NewTelemetryProviderWith(tracer trace.Tracer, meter metric.Meter) (*TelemetryProvider, error) {
	tp := &TelemetryProvider{config: &config.TelemetryConfig{Enabled: true}}
	return tp, tp.init(tracer, meter)
}

func (tp *TelemetryProvider) initTracing() (trace.Tracer, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(tp.config.ServiceName),
			semconv.ServiceVersion(tp.config.ServiceVersion),
			semconv.DeploymentEnvironment(tp.config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	exporter, err := otlptrace.New(context.Background(),
		otlptracehttp.NewClient(
			otlptracehttp.WithEndpointURL(tp.config.OTLPEndpoint),
			otlptracehttp.WithHeaders(tp.config.OTLPHeaders),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}

	tp.traceProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(tp.config.SampleRate))),
	)

	otel.SetTracerProvider(tp.traceProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.traceProvider.Tracer(instrumentationName,
		trace.WithInstrumentationVersion(tp.config.ServiceVersion),
		trace.WithSchemaURL(semconv.SchemaURL),
	), nil
}

func (tp *TelemetryProvider) init(tracer trace.Tracer, meter metric.Meter) error {
	tp.tracer = tracer
	tp.meter = meter

	var err error
	tp.sends, err = meter.Int64Counter(
		"reports.send",
		metric.WithDescription("Report notification delivery attempts by channel and outcome"),
	)
	if err != nil {
		return fmt.Errorf("create reports.send counter: %w", err)
	}

	tp.sendDuration, err = meter.Float64Histogram(
		"reports.send.duration",
		metric.WithDescription("Duration of report notification deliveries"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("create reports.send.duration histogram: %w", err)
	}

	return nil
}

// TraceOperation creates a new span for an operation
func (tp *TelemetryProvider) TraceOperation(ctx context.Context, operationName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	if tp.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}

	return tp.tracer.Start(ctx, operationName,
		trace.WithAttributes(attributes...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// TraceSend creates a span for one delivery through channel
func (tp *TelemetryProvider) TraceSend(ctx context.Context, channel, recipientType string) (context.Context, trace.Span) {
	return tp.TraceOperation(ctx, "reports."+channel+".send",
		attribute.String("reports.channel", channel),
		attribute.String("reports.recipient_type", recipientType),
	)
}

// RecordSend records the outcome of one delivery. errorCode is empty on success.
func (tp *TelemetryProvider) RecordSend(ctx context.Context, channel string, duration time.Duration, errorCode string) {
	status := "ok"
	attrs := []attribute.KeyValue{attribute.String("channel", channel)}
	if errorCode != "" {
		status = "error"
		attrs = append(attrs, attribute.String("error_code", errorCode))
	}
	attrs = append(attrs, attribute.String("status", status))

	if tp.sends != nil {
		tp.sends.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if tp.sendDuration != nil {
		tp.sendDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
			attribute.String("channel", channel),
			attribute.String("status", status),
		))
	}
}

// SetSpanError sets an error on the span
func (tp *TelemetryProvider) SetSpanError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks the span as successful
func (tp *TelemetryProvider) SetSpanSuccess(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// Shutdown flushes and stops the trace exporter
func (tp *TelemetryProvider) Shutdown(ctx context.Context) error {
	if tp.traceProvider != nil {
		return tp.traceProvider.Shutdown(ctx)
	}
	return nil
}
