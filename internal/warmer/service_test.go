package warmer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/pulse-analytics/pkg/logger"
	"github.com/angelmondragon/pulse-analytics/pkg/metrics"
)

type fakeLock struct {
	held       bool
	acquireErr error
	releases   int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.acquireErr != nil {
		return false, f.acquireErr
	}
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.releases++
	return nil
}

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func TestRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	ok := &testJob{name: "refresh:user_by_brand"}
	bad := &testJob{name: "refresh:user_by_district", err: errors.New("boom")}
	lock := &fakeLock{}
	reg := prometheus.NewRegistry()
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(ok, bad),
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(reg),
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	if err := service.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected failed job to be reported")
	}
	if ok.runs != 1 || bad.runs != 1 {
		t.Fatalf("expected each job to run once, got %d and %d", ok.runs, bad.runs)
	}
	if lock.held || lock.releases != 1 {
		t.Fatalf("expected lock released once, held=%v releases=%d", lock.held, lock.releases)
	}
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "refresh:user_by_brand"}
	lock := &fakeLock{held: true}
	service, err := NewService(ServiceParams{Logger: logger.Nop(), Registry: NewRegistry(job), Lock: lock})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("skipped cycle should not error, got %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job must not run without the lock")
	}
	if lock.releases != 0 {
		t.Fatalf("lock not owned must not be released")
	}
}

func TestRunOnceLockError(t *testing.T) {
	service, _ := NewService(ServiceParams{Logger: logger.Nop(), Lock: &fakeLock{acquireErr: errors.New("redis down")}})
	if err := service.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected lock error")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "refresh:user_by_brand"}
	service, _ := NewService(ServiceParams{Logger: logger.Nop(), Registry: NewRegistry(job), Lock: &fakeLock{}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := service.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type blockingJob struct{}

func (blockingJob) Name() string { return "refresh:stuck" }

func (blockingJob) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRunOnceBoundsEachJob(t *testing.T) {
	after := &testJob{name: "refresh:user_by_brand"}
	service, _ := NewService(ServiceParams{
		Logger:     logger.Nop(),
		Registry:   NewRegistry(blockingJob{}, after),
		Lock:       &fakeLock{},
		JobTimeout: 10 * time.Millisecond,
	})
	if err := service.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected timed out job to be reported")
	}
	if after.runs != 1 {
		t.Fatalf("jobs after a timeout must still run")
	}
}

func TestJobTimeoutDefaultsToIntervalShare(t *testing.T) {
	service, _ := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(&testJob{name: "a"}, &testJob{name: "b"}),
		Lock:     &fakeLock{},
		Interval: 4 * time.Minute,
	})
	if service.jobTimeout != 2*time.Minute {
		t.Fatalf("expected 2m per job, got %s", service.jobTimeout)
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{Lock: &fakeLock{}}); err == nil {
		t.Fatalf("expected logger error")
	}
	if _, err := NewService(ServiceParams{Logger: logger.Nop()}); err == nil {
		t.Fatalf("expected lock error")
	}
}
