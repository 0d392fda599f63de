package book

import (
	"sync"
	"time"

	"github.com/erain9/limitbook/pkg/config"
)

// pruner is the background worker that cancels every live GoodForDay
// order at session close (spec.md §4.6). The C++ source's
// condition-variable-plus-atomic-shutdown-flag wait is expressed here as
// a select over a time.Timer and a done channel that stop() closes,
// guarded by stopOnce so repeated Close calls are safe: closing a
// channel is both the wakeup and, from then on, an always-ready
// receive, giving the same "whichever comes first" semantics without a
// separate atomic flag.
type pruner struct {
	book     *Book
	cfg      config.PrunerConfig
	now      func() time.Time
	done     chan struct{}
	closed   chan struct{}
	stopOnce sync.Once
}

func newPruner(b *Book, cfg config.PrunerConfig, now func() time.Time) *pruner {
	if now == nil {
		now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &pruner{
		book:   b,
		cfg:    cfg,
		now:    now,
		done:   make(chan struct{}),
		closed: make(chan struct{}),
	}
}

// run is the worker loop. It is launched as a goroutine by NewBook and
// exits once stop() has been called and the loop observes it.
func (p *pruner) run() {
	defer close(p.closed)
	for {
		target := p.nextCloseTime()
		wait := target.Sub(p.now())
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)

		select {
		case <-p.done:
			timer.Stop()
			return
		case <-timer.C:
		}

		p.book.cancelAllGoodForDay()
	}
}

// nextCloseTime computes the next occurrence of the configured
// close-of-session wall-clock time, advancing to the following day if
// that time has already passed today, plus the configured slack so the
// worker never wakes a hair before the boundary.
func (p *pruner) nextCloseTime() time.Time {
	now := p.now().In(p.cfg.Location)
	target := time.Date(now.Year(), now.Month(), now.Day(), p.cfg.CloseHour, p.cfg.CloseMinute, 0, 0, p.cfg.Location)
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}
	return target.Add(p.cfg.Slack)
}

// stop signals the worker to exit and blocks until it has, bounded by
// the worker's own select — it never waits for a full session-close
// interval. Safe to call more than once: the second and later calls
// still block until the worker has exited, but do not attempt to close
// done again.
func (p *pruner) stop() {
	p.stopOnce.Do(func() {
		close(p.done)
	})
	<-p.closed
}
