package xmetrics

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultInstrumentationName = "github.com/omeyang/xflake/xmetrics"
	unknownComponent           = "unknown"
	unknownOperation           = "unknown"

	// MetricOperationTotal 操作计数指标名
	MetricOperationTotal = "xflake.operation.total"
	// MetricOperationDuration 操作耗时指标名
	MetricOperationDuration = "xflake.operation.duration"
	// MetricEventTotal 事件计数指标名
	MetricEventTotal = "xflake.event.total"
)

type otelConfig struct {
	instrumentationName string
	tracerProvider      trace.TracerProvider
	meterProvider       metric.MeterProvider
}

// Option 定义 OTel Observer 的配置选项。
type Option func(*otelConfig)

// WithInstrumentationName 设置 OTel instrumentation 名称。空字符串被忽略。
func WithInstrumentationName(name string) Option {
	return func(cfg *otelConfig) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithTracerProvider 设置 TracerProvider。nil 被忽略。
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.tracerProvider = provider
		}
	}
}

// WithMeterProvider 设置 MeterProvider。nil 被忽略。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

// OTelObserver 基于 OpenTelemetry 的 Observer，同时实现 [EventRecorder]。
type OTelObserver struct {
	tracer   trace.Tracer
	total    metric.Int64Counter
	duration metric.Float64Histogram
	events   metric.Int64Counter
}

var (
	_ Observer      = (*OTelObserver)(nil)
	_ EventRecorder = (*OTelObserver)(nil)
)

// NewOTelObserver 创建基于 OpenTelemetry 的 Observer。
// 未指定 provider 时使用 otel 全局 provider。
func NewOTelObserver(opts ...Option) (*OTelObserver, error) {
	cfg := &otelConfig{
		instrumentationName: defaultInstrumentationName,
		tracerProvider:      otel.GetTracerProvider(),
		meterProvider:       otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	meter := cfg.meterProvider.Meter(cfg.instrumentationName)

	total, err := meter.Int64Counter(
		MetricOperationTotal,
		metric.WithDescription("total operations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateCounter, err)
	}
	duration, err := meter.Float64Histogram(
		MetricOperationDuration,
		metric.WithDescription("operation duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateHistogram, err)
	}
	events, err := meter.Int64Counter(
		MetricEventTotal,
		metric.WithDescription("discrete events such as lock contention"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateCounter, err)
	}

	return &OTelObserver{
		tracer:   cfg.tracerProvider.Tracer(cfg.instrumentationName),
		total:    total,
		duration: duration,
		events:   events,
	}, nil
}

// Start 开始一次观测跨度。
func (o *OTelObserver) Start(ctx context.Context, opts SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	component := orUnknown(opts.Component, unknownComponent)
	operation := orUnknown(opts.Operation, unknownOperation)

	labels := attrsToOTel(opts.Labels)
	spanAttrs := make([]attribute.KeyValue, 0, 2+len(labels)+len(opts.Attrs))
	spanAttrs = append(spanAttrs,
		attribute.String("component", component),
		attribute.String("operation", operation),
	)
	spanAttrs = append(spanAttrs, labels...)
	spanAttrs = append(spanAttrs, attrsToOTel(opts.Attrs)...)

	ctx, span := o.tracer.Start(
		ctx,
		component+"."+operation,
		trace.WithSpanKind(mapSpanKind(opts.Kind)),
		trace.WithAttributes(spanAttrs...),
	)
	return ctx, &otelSpan{
		span:      span,
		observer:  o,
		ctx:       ctx,
		component: component,
		operation: operation,
		labels:    labels,
		start:     time.Now(),
	}
}

// RecordEvent 记录一次离散事件。
func (o *OTelObserver) RecordEvent(ctx context.Context, component, event string, attrs ...Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	kv := make([]attribute.KeyValue, 0, 2+len(attrs))
	kv = append(kv,
		attribute.String("component", orUnknown(component, unknownComponent)),
		attribute.String("event", orUnknown(event, unknownOperation)),
	)
	kv = append(kv, attrsToOTel(attrs)...)
	o.events.Add(context.WithoutCancel(ctx), 1, metric.WithAttributes(kv...))
}

type otelSpan struct {
	span      trace.Span
	observer  *OTelObserver
	ctx       context.Context
	component string
	operation string
	labels    []attribute.KeyValue
	start     time.Time
	endOnce   sync.Once // 保证 End 幂等，多次调用只记录一次指标
}

// End 结束观测并记录结果。End 是幂等的。
func (s *otelSpan) End(result Result) {
	s.endOnce.Do(func() {
		status := resolveStatus(result)
		if result.Err != nil {
			s.span.RecordError(result.Err)
		}
		if status == StatusError {
			msg := "operation failed"
			if result.Err != nil {
				msg = result.Err.Error()
			}
			s.span.SetStatus(codes.Error, msg)
		} else {
			s.span.SetStatus(codes.Ok, "")
		}
		if len(result.Attrs) > 0 {
			s.span.SetAttributes(attrsToOTel(result.Attrs)...)
		}
		s.span.End()

		// 使用不可取消的 context 记录指标，请求已取消时指标仍能记录。
		metricsCtx := context.WithoutCancel(s.ctx)
		attrs := make([]attribute.KeyValue, 0, 3+len(s.labels))
		attrs = append(attrs,
			attribute.String("component", s.component),
			attribute.String("operation", s.operation),
			attribute.String("status", string(status)),
		)
		attrs = append(attrs, s.labels...)
		set := metric.WithAttributes(attrs...)
		s.observer.total.Add(metricsCtx, 1, set)
		s.observer.duration.Record(metricsCtx, time.Since(s.start).Seconds(), set)
	})
}

func resolveStatus(result Result) Status {
	if result.Status != "" {
		return result.Status
	}
	if result.Err != nil {
		return StatusError
	}
	return StatusOK
}

func mapSpanKind(kind Kind) trace.SpanKind {
	switch kind {
	case KindServer:
		return trace.SpanKindServer
	case KindClient:
		return trace.SpanKindClient
	default:
		return trace.SpanKindInternal
	}
}

func orUnknown(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func attrsToOTel(attrs []Attr) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	converted := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if attr.Key == "" || attr.Value == nil {
			continue
		}
		converted = append(converted, toKeyValue(attr))
	}
	return converted
}

func toKeyValue(attr Attr) attribute.KeyValue {
	switch v := attr.Value.(type) {
	case string:
		return attribute.String(attr.Key, v)
	case bool:
		return attribute.Bool(attr.Key, v)
	case int:
		return attribute.Int(attr.Key, v)
	case int64:
		return attribute.Int64(attr.Key, v)
	case uint64:
		if v <= math.MaxInt64 {
			return attribute.Int64(attr.Key, int64(v))
		}
		return attribute.String(attr.Key, fmt.Sprint(v))
	case time.Duration:
		return attribute.Int64(attr.Key, v.Nanoseconds())
	default:
		return attribute.String(attr.Key, fmt.Sprint(v))
	}
}
