// Package metrics records build and preview metrics.
//
// Components receive a Recorder and default to NoopRecorder, so nil checks
// are not needed at call sites:
//
//	builder := site.NewBuilder(cfg).WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// The preview server registers a PrometheusRecorder and exposes it through
// HTTPHandler on /metrics. One-shot builds use NoopRecorder.
package metrics
