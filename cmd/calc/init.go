package main

import (
	"context"

	"calc-editor/internal/calculator"
	"calc-editor/internal/observability"
)

// initMetrics initialises all metric providers and application-specific
// metric instruments. Add new domain InitMetrics calls here as the project grows.
func initMetrics(ctx context.Context) (func(context.Context) error, error) {
	shutdown, err := observability.InitMetrics(ctx)
	if err != nil {
		return nil, err
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, err
	}

	return shutdown, nil
}

// initTelemetry starts the OTLP trace, metric and log exporters. The returned
// function flushes and stops all of them.
func initTelemetry(ctx context.Context, serviceName string) (func(context.Context), error) {
	var shutdowns []func(context.Context) error
	stop := func(ctx context.Context) {
		for i := len(shutdowns) - 1; i >= 0; i-- {
			_ = shutdowns[i](ctx)
		}
	}

	// Tracing
	traceShutdown, err := observability.InitTracing(ctx, serviceName)
	if err != nil {
		return nil, err
	}
	shutdowns = append(shutdowns, traceShutdown)

	// Metrics
	metricShutdown, err := initMetrics(ctx)
	if err != nil {
		stop(ctx)
		return nil, err
	}
	shutdowns = append(shutdowns, metricShutdown)

	// Logs
	logShutdown, err := observability.InitLogging(ctx, serviceName)
	if err != nil {
		stop(ctx)
		return nil, err
	}
	shutdowns = append(shutdowns, logShutdown)

	return stop, nil
}
