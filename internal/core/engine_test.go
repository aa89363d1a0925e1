package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/janekbaraniewski/co2meter/internal/fuel"
	"github.com/janekbaraniewski/co2meter/internal/intangles"
)

func okRunner(metric float64) Runner {
	return func(context.Context) (fuel.Result, error) {
		return fuel.Result{Walk: fuel.Walk{FieldKey: "total_fuel_consumed", Rows: 3, Pages: 1}, Metric: metric}, nil
	}
}

func TestRefresh_PublishesReading(t *testing.T) {
	e := NewEngine(okRunner(0.417), time.Hour)

	var got []Reading
	e.OnUpdate(func(r Reading) { got = append(got, r) })

	r, err := e.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if !r.OK() {
		t.Fatalf("status = %s, want OK (%s)", r.Status, r.Message)
	}
	if m, ok := r.Metric(); !ok || m != 0.417 {
		t.Errorf("metric = %v (%v), want 0.417", m, ok)
	}
	if len(got) != 1 {
		t.Fatalf("updates = %d, want 1", len(got))
	}
	if e.Latest().Result.FieldKey != "total_fuel_consumed" {
		t.Errorf("latest field = %q", e.Latest().Result.FieldKey)
	}
}

func TestRefresh_FailureKeepsNoMetric(t *testing.T) {
	e := NewEngine(func(context.Context) (fuel.Result, error) {
		return fuel.Result{Metric: 99}, fuel.ErrFieldNotDetected
	}, time.Hour)

	r, err := e.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if r.Status != StatusError {
		t.Errorf("status = %s, want ERROR", r.Status)
	}
	if _, ok := r.Metric(); ok {
		t.Error("failed reading must not expose a metric")
	}
	if r.Result.Metric != 0 {
		t.Errorf("partial result leaked: %v", r.Result.Metric)
	}
	if !errors.Is(r.Err, fuel.ErrFieldNotDetected) {
		t.Errorf("err = %v", r.Err)
	}
}

func TestRefresh_RejectsConcurrentRun(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	e := NewEngine(func(context.Context) (fuel.Result, error) {
		close(started)
		<-release
		return fuel.Result{}, nil
	}, time.Hour)

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Refresh(context.Background())
	}()

	<-started
	if _, err := e.Refresh(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("err = %v, want ErrRunInProgress", err)
	}
	close(release)
	<-done
}

func TestRefresh_Timeout(t *testing.T) {
	e := NewEngine(func(ctx context.Context) (fuel.Result, error) {
		<-ctx.Done()
		return fuel.Result{}, ctx.Err()
	}, time.Hour)
	e.SetTimeout(20 * time.Millisecond)

	r, err := e.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if r.Status != StatusError || !errors.Is(r.Err, context.DeadlineExceeded) {
		t.Errorf("reading = %+v, want deadline error", r)
	}
}

func TestRun_DelayMeasuredFromCompletion(t *testing.T) {
	const (
		runTime  = 40 * time.Millisecond
		interval = 30 * time.Millisecond
	)

	var (
		mu       sync.Mutex
		starts   []time.Time
		ends     []time.Time
		inFlight atomic.Int32
		overlap  atomic.Bool
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := NewEngine(func(context.Context) (fuel.Result, error) {
		if inFlight.Add(1) > 1 {
			overlap.Store(true)
		}
		defer inFlight.Add(-1)

		mu.Lock()
		starts = append(starts, time.Now())
		n := len(starts)
		mu.Unlock()

		time.Sleep(runTime)

		mu.Lock()
		ends = append(ends, time.Now())
		mu.Unlock()
		if n == 3 {
			cancel()
		}
		return fuel.Result{}, nil
	}, interval)

	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}

	if overlap.Load() {
		t.Error("runs overlapped")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(starts) < 3 {
		t.Fatalf("runs = %d, want 3", len(starts))
	}
	for i := 1; i < len(starts); i++ {
		if gap := starts[i].Sub(ends[i-1]); gap < interval-5*time.Millisecond {
			t.Errorf("run %d started %s after previous end, want >= %s", i, gap, interval)
		}
	}
}

func TestRun_TriggerStartsNextRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := make(chan struct{}, 4)
	e := NewEngine(func(context.Context) (fuel.Result, error) {
		runs <- struct{}{}
		return fuel.Result{}, nil
	}, time.Hour)

	go e.Run(ctx)

	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatal("first run did not happen")
	}

	e.Trigger()
	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatal("triggered run did not happen")
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want Status
	}{
		{nil, StatusOK},
		{&intangles.StatusError{Code: 401}, StatusAuth},
		{fmt.Errorf("wrapped: %w", &intangles.StatusError{Code: 403}), StatusAuth},
		{&intangles.StatusError{Code: 500}, StatusError},
		{fmt.Errorf("%w: unknown unit", fuel.ErrInvalidUnit), StatusConfig},
		{fuel.ErrInvalidPageSize, StatusConfig},
		{fuel.ErrNoData, StatusNoData},
		{fuel.ErrFieldNotDetected, StatusError},
		{errors.New("dial tcp: refused"), StatusError},
	}
	for _, tt := range tests {
		if got := ClassifyError(tt.err); got != tt.want {
			t.Errorf("ClassifyError(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
