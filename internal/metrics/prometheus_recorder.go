package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "puggle"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration   *prom.HistogramVec
	buildDuration   prom.Histogram
	buildOutcome    *prom.CounterVec
	entriesRendered *prom.CounterVec
	aliasesWritten  *prom.CounterVec
	feedsWritten    *prom.CounterVec
	rebuildTriggers *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		entriesRendered: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "entries_rendered_total",
			Help:      "Entry pages written, by page",
		}, []string{"page"}),
		aliasesWritten: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "aliases_written_total",
			Help:      "Alias redirect stubs written, by page",
		}, []string{"page"}),
		feedsWritten: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "feeds_written_total",
			Help:      "RSS feeds written, by page",
		}, []string{"page"}),
		rebuildTriggers: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rebuild_triggers_total",
			Help:      "Preview rebuilds by trigger",
		}, []string{"reason"}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.buildOutcome,
		pr.entriesRendered, pr.aliasesWritten, pr.feedsWritten, pr.rebuildTriggers)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncEntryRendered(page string) {
	if p == nil {
		return
	}
	p.entriesRendered.WithLabelValues(page).Inc()
}

func (p *PrometheusRecorder) IncAliasWritten(page string) {
	if p == nil {
		return
	}
	p.aliasesWritten.WithLabelValues(page).Inc()
}

func (p *PrometheusRecorder) IncFeedWritten(page string) {
	if p == nil {
		return
	}
	p.feedsWritten.WithLabelValues(page).Inc()
}

func (p *PrometheusRecorder) IncRebuildTrigger(reason string) {
	if p == nil {
		return
	}
	p.rebuildTriggers.WithLabelValues(reason).Inc()
}
