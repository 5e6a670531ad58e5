package preview

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Poller runs a task at a fixed interval.
type Poller struct {
	scheduler gocron.Scheduler
}

// NewPoller schedules task every interval. Call Start to begin.
func NewPoller(interval time.Duration, task func()) (*Poller, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if _, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName("poll-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create poll job: %w", err)
	}
	return &Poller{scheduler: s}, nil
}

// Start begins running the job.
func (p *Poller) Start() {
	p.scheduler.Start()
}

// Stop shuts the scheduler down.
func (p *Poller) Stop() error {
	return p.scheduler.Shutdown()
}
