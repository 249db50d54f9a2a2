// Package ticker drives the fixed-interval data tick. Cron fires on its own goroutine; ticks are
// coalesced into a one-slot channel that the main loop drains between frames.
package ticker

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultSpec fires about once per second.
const DefaultSpec = "@every 1s"

// Ticker owns a cron schedule with a single job.
type Ticker struct {
	C <-chan struct{}

	c       chan struct{}
	cron    *cron.Cron
	log     zerolog.Logger
	dropped int
}

// New registers spec. An empty spec means DefaultSpec. The schedule does not run until Start.
func New(spec string, log zerolog.Logger) (*Ticker, error) {
	if spec == "" {
		spec = DefaultSpec
	}
	c := make(chan struct{}, 1)
	t := &Ticker{
		C:    c,
		c:    c,
		cron: cron.New(cron.WithSeconds()),
		log:  log.With().Str("component", "ticker").Logger(),
	}
	if _, err := t.cron.AddFunc(spec, t.fire); err != nil {
		return nil, err
	}
	t.log.Info().Str("schedule", spec).Msg("Tick registered")
	return t, nil
}

// Start starts the schedule.
func (t *Ticker) Start() {
	t.cron.Start()
	t.log.Debug().Msg("Ticker started")
}

// Stop cancels the schedule and waits for a running job to return. A pending tick stays in C.
func (t *Ticker) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	t.log.Debug().Int("coalesced", t.dropped).Msg("Ticker stopped")
}

// Poll reports whether a tick is pending and consumes it.
func (t *Ticker) Poll() bool {
	select {
	case <-t.c:
		return true
	default:
		return false
	}
}

func (t *Ticker) fire() {
	select {
	case t.c <- struct{}{}:
	default:
		// main loop has not consumed the previous tick yet
		t.dropped++
	}
}
