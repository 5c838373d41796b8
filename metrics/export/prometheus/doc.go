// Package prometheus renders goSocial client metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] wraps a [goSocial.Client] and exposes an [http.Handler] for
// a metrics endpoint. Counters are named gosocial_*_total; the one histogram is
// gosocial_request_latency_seconds.
//
// Nothing is registered globally. Callers mount the Handler themselves.
package prometheus
