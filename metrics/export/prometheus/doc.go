// Package prometheus renders goSession metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] accepts a [goSession.Engine] and exposes an
// [http.Handler]. Counter names are prefixed gosession_*_total; the two
// histograms are gosession_validate_latency_seconds and
// gosession_sweep_latency_seconds. Live session gauges are labelled by class.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate engine state.
package prometheus
