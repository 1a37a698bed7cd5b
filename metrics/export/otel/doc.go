// Package otel bridges goSession metrics to an OpenTelemetry [metric.Meter]
// through observable instruments read on each collection.
//
// # What this package must NOT do
//
//   - Create or own a MeterProvider.
//   - Mutate engine state.
package otel
