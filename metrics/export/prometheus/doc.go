// Package prometheus provides Prometheus collectors for goLink metrics.
//
// [NewPrometheusExporter] accepts an [goLink.Engine] and exposes an [http.Handler]
// that renders all goLink counters and histograms in Prometheus text exposition format.
// Counter names are prefixed golink_*_total; the single histogram is
// golink_login_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
