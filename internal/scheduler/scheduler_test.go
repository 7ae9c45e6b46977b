package scheduler

import (
	"sync/atomic"
	"testing"
	"time"
)

type countingPurger struct {
	calls atomic.Int32
	done  chan struct{}
}

func (p *countingPurger) Purge(time.Time) int {
	if p.calls.Add(1) == 1 {
		close(p.done)
	}
	return 1
}

func TestSchedulerRunsPurge(t *testing.T) {
	p := &countingPurger{done: make(chan struct{})}
	s := New(p, time.Hour)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	select {
	case <-p.done:
	case <-time.After(5 * time.Second):
		t.Fatal("purge job did not run")
	}
}

func TestSchedulerWithoutPurger(t *testing.T) {
	s := New(nil, time.Minute)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Stop()
}
