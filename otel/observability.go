// Package otel bridges stator's Observer callbacks to OpenTelemetry
// traces and metrics.
package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/statorhq/stator/pkg/api"
)

const instrumentationName = "github.com/statorhq/stator"

// Observer implements api.Observer using OpenTelemetry.
type Observer[S any] struct {
	tracer trace.Tracer
	meter  metric.Meter

	// Metrics
	dispatched   metric.Int64Counter
	commits      metric.Int64Counter
	completed    metric.Int64Counter
	failed       metric.Int64Counter
	callDuration metric.Float64Histogram
}

// Option configures the Observer.
type Option func(*providers)

type providers struct {
	tracer trace.Tracer
	meter  metric.Meter
}

// WithTracerProvider sets a custom tracer provider.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(p *providers) {
		p.tracer = provider.Tracer(instrumentationName)
	}
}

// WithMeterProvider sets a custom meter provider.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(p *providers) {
		p.meter = provider.Meter(instrumentationName)
	}
}

// New creates an OpenTelemetry-backed Observer. Without options the global
// tracer and meter providers are used.
func New[S any](opts ...Option) (*Observer[S], error) {
	p := providers{
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.Meter(instrumentationName),
	}
	for _, opt := range opts {
		opt(&p)
	}

	o := &Observer[S]{tracer: p.tracer, meter: p.meter}

	var err error

	o.dispatched, err = o.meter.Int64Counter(
		"stator.action.dispatched",
		metric.WithDescription("Number of action invocations promoted to active"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, err
	}

	o.commits, err = o.meter.Int64Counter(
		"stator.commit.count",
		metric.WithDescription("Number of state commits applied"),
		metric.WithUnit("{commit}"),
	)
	if err != nil {
		return nil, err
	}

	o.completed, err = o.meter.Int64Counter(
		"stator.action.completed",
		metric.WithDescription("Number of invocations settled successfully"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, err
	}

	o.failed, err = o.meter.Int64Counter(
		"stator.action.failed",
		metric.WithDescription("Number of invocations settled with an error"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, err
	}

	o.callDuration, err = o.meter.Float64Histogram(
		"stator.action.duration",
		metric.WithDescription("Invocation duration from promotion to settlement"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return o, nil
}

// OnActionStart counts the invocation's promotion to active.
func (o *Observer[S]) OnActionStart(ctx context.Context, call api.CallInfo) {
	o.dispatched.Add(ctx, 1, metric.WithAttributes(actionAttr(call)))
}

// OnCommit counts one applied state commit.
func (o *Observer[S]) OnCommit(ctx context.Context, call api.CallInfo, seq int, state S) {
	o.commits.Add(ctx, 1, metric.WithAttributes(actionAttr(call)))
}

// OnActionCompleted records metrics and a retrospective span covering the
// invocation. The span is created at settlement because observers never
// hold per-call state between callbacks.
func (o *Observer[S]) OnActionCompleted(ctx context.Context, call api.CallInfo, state S, d time.Duration) {
	o.completed.Add(ctx, 1, metric.WithAttributes(actionAttr(call)))
	o.callDuration.Record(ctx, float64(d)/float64(time.Millisecond),
		metric.WithAttributes(actionAttr(call)))

	_, span := o.tracer.Start(ctx, "stator.action: "+call.Action,
		trace.WithTimestamp(time.Now().Add(-d)),
		trace.WithAttributes(
			actionAttr(call),
			attribute.String("call.id", call.ID),
		),
	)
	span.SetStatus(codes.Ok, "")
	span.End()
}

// OnActionFailed records metrics and an error span for the invocation.
func (o *Observer[S]) OnActionFailed(ctx context.Context, call api.CallInfo, err error, d time.Duration) {
	o.failed.Add(ctx, 1, metric.WithAttributes(actionAttr(call)))
	o.callDuration.Record(ctx, float64(d)/float64(time.Millisecond),
		metric.WithAttributes(actionAttr(call)))

	_, span := o.tracer.Start(ctx, "stator.action: "+call.Action,
		trace.WithTimestamp(time.Now().Add(-d)),
		trace.WithAttributes(
			actionAttr(call),
			attribute.String("call.id", call.ID),
		),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

func actionAttr(call api.CallInfo) attribute.KeyValue {
	return attribute.String("action.name", call.Action)
}
