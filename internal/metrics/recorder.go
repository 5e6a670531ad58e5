package metrics

import "time"

// BuildOutcomeLabel is the final status of a build.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess BuildOutcomeLabel = "success"
	BuildOutcomeFailed  BuildOutcomeLabel = "failed"
)

// Build stages timed by ObserveStageDuration.
const (
	StageEntries  = "entries"
	StageListings = "listings"
	StageFeeds    = "feeds"
)

// Recorder defines observability hooks for site builds and preview rebuilds.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	IncEntryRendered(page string)
	IncAliasWritten(page string)
	IncFeedWritten(page string)
	IncRebuildTrigger(reason string) // reason: initial|watch|poll
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)          {}
func (NoopRecorder) IncEntryRendered(string)                    {}
func (NoopRecorder) IncAliasWritten(string)                     {}
func (NoopRecorder) IncFeedWritten(string)                      {}
func (NoopRecorder) IncRebuildTrigger(string)                   {}
