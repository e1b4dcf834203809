package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestScheduler_InvalidSpec(t *testing.T) {
	s := New("not a spec", time.UTC)
	s.SetReportFunction(func(ctx context.Context) error { return nil })
	if err := s.Start(); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
	if s.IsRunning() {
		t.Fatalf("no job should be registered")
	}
}

func TestScheduler_WithoutReportFunction(t *testing.T) {
	s := New("0 21 * * *", time.UTC)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.IsRunning() {
		t.Fatalf("nothing should be scheduled")
	}
	s.Stop()
}

func TestScheduler_RunsJob(t *testing.T) {
	s := New("@every 1s", time.UTC)
	done := make(chan struct{}, 1)
	s.SetReportFunction(func(ctx context.Context) error {
		select {
		case done <- struct{}{}:
		default:
		}
		return nil
	})
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()
	if !s.IsRunning() {
		t.Fatalf("job not registered")
	}
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("report job did not run")
	}
}
