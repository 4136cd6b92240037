// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName identifies every span and instrument this
// module emits, regardless of which package created it.
const instrumentationName = "hostrpc"

var (
	// Tracer is the shared tracer every package in this module uses to
	// start spans.
	Tracer = otel.Tracer(instrumentationName)

	// Meter is the shared meter every package in this module uses to
	// create counters and histograms.
	Meter = otel.Meter(instrumentationName)
)

// ShutdownFunc flushes and releases the resources a Configure* call
// set up.
type ShutdownFunc func(context.Context) error

// ConfigureStdout points the global tracer provider at a stdout trace
// exporter, for local development, and installs a meter provider
// backed by a manual reader, so metric points are collected but not
// printed. It is not suitable for production use (every span is
// printed).
func ConfigureStdout(ctx context.Context) (ShutdownFunc, error) {
	traceExp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("telemetry: new stdout trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExp))
	otel.SetTracerProvider(tp)
	Tracer = tp.Tracer(instrumentationName)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	Meter = mp.Meter(instrumentationName)

	return func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return err
		}
		return mp.Shutdown(ctx)
	}, nil
}

// ConfigurePrometheus registers a Prometheus-compatible metrics
// exporter against reg (pass prometheus.DefaultRegisterer to publish
// on the process-wide /metrics endpoint) and installs it as the
// global meter provider.
func ConfigurePrometheus(reg prometheus.Registerer) (ShutdownFunc, error) {
	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("telemetry: new prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp))
	otel.SetMeterProvider(mp)
	Meter = mp.Meter(instrumentationName)

	return func(ctx context.Context) error {
		return mp.Shutdown(ctx)
	}, nil
}

// StartSpan is a convenience wrapper over Tracer.Start for callers
// that do not need span options.
func StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return Tracer.Start(ctx, name)
}

// Float64Histogram creates (or looks up) a histogram instrument on the
// shared meter, logging nothing on error — callers decide how to
// degrade, matching the lazy graceful-degradation pattern used
// elsewhere in this module.
func Float64Histogram(name, description, unit string) (metric.Float64Histogram, error) {
	return Meter.Float64Histogram(name, metric.WithDescription(description), metric.WithUnit(unit))
}

// Int64Counter creates (or looks up) a counter instrument on the
// shared meter.
func Int64Counter(name, description string) (metric.Int64Counter, error) {
	return Meter.Int64Counter(name, metric.WithDescription(description))
}
