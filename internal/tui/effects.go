package tui

import (
	"sync"
	"time"

	"github.com/studiowebux/relaydash/internal/view"
)

// scheduledFunc is a deferred callback requested by the coordinator
type scheduledFunc struct {
	delay time.Duration
	fn    func()
}

// effectBatch is everything the coordinator asked for during one action
type effectBatch struct {
	alerts  []string
	refresh []view.Region
	timers  []scheduledFunc
}

// effectSink collects coordinator callbacks so Update can apply them on the
// event loop. It implements dashboard.Notifier and dashboard.Scheduler.
type effectSink struct {
	mu      sync.Mutex
	pending effectBatch
}

func newEffectSink() *effectSink {
	return &effectSink{}
}

// Alert records a notice for the footer
func (s *effectSink) Alert(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.alerts = append(s.pending.alerts, message)
}

// AfterFunc records a timer; Update turns it into a tea.Tick
func (s *effectSink) AfterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.timers = append(s.pending.timers, scheduledFunc{delay: d, fn: f})
}

// Refresh records a region reload request
func (s *effectSink) Refresh(region view.Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.refresh = append(s.pending.refresh, region)
}

// drain returns and clears everything collected so far
func (s *effectSink) drain() effectBatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := s.pending
	s.pending = effectBatch{}
	return batch
}
