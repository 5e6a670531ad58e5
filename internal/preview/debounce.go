package preview

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a rebuild starts.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer collapses bursts of triggers into one signal on C after a
// quiet period.
type Debouncer struct {
	delay time.Duration
	mu    sync.Mutex
	timer *time.Timer
	c     chan struct{}
}

// NewDebouncer returns a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, c: make(chan struct{}, 1)}
}

// Trigger restarts the quiet period.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		select {
		case d.c <- struct{}{}:
		default:
		}
	})
}

// C delivers one value per settled burst.
func (d *Debouncer) C() <-chan struct{} {
	return d.c
}

// Stop cancels a pending signal.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
