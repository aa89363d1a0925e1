package core

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/janekbaraniewski/co2meter/internal/fuel"
)

var ErrRunInProgress = errors.New("engine: a run is already in progress")

// Runner performs one complete aggregation run.
type Runner func(ctx context.Context) (fuel.Result, error)

// Engine runs the aggregation on a fixed delay measured from the end of the
// previous run. Runs never overlap.
type Engine struct {
	mu       sync.RWMutex
	runner   Runner
	interval time.Duration
	timeout  time.Duration
	latest   Reading

	onUpdate func(Reading)

	running atomic.Bool
	trigger chan struct{}
}

func NewEngine(runner Runner, interval time.Duration) *Engine {
	return &Engine{
		runner:   runner,
		interval: interval,
		timeout:  60 * time.Second,
		latest:   Reading{Status: StatusUnknown},
		trigger:  make(chan struct{}, 1),
	}
}

func (e *Engine) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interval = d
}

func (e *Engine) SetTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timeout = d
}

func (e *Engine) OnUpdate(fn func(Reading)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onUpdate = fn
}

// Latest returns the most recent reading, successful or not.
func (e *Engine) Latest() Reading {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.latest
}

// Trigger asks Run to start the next run now instead of waiting out the
// interval. It never blocks and never starts a second concurrent run.
func (e *Engine) Trigger() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

// Refresh performs one run synchronously. It returns ErrRunInProgress when
// another run has not finished yet.
func (e *Engine) Refresh(ctx context.Context) (Reading, error) {
	if !e.running.CompareAndSwap(false, true) {
		return Reading{}, ErrRunInProgress
	}
	defer e.running.Store(false)

	e.mu.RLock()
	runner := e.runner
	timeout := e.timeout
	e.mu.RUnlock()

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	res, err := runner(runCtx)
	reading := NewReading(res, err, started, time.Since(started))

	if ctx.Err() != nil {
		return reading, ctx.Err()
	}
	if err != nil {
		log.Printf("engine: run failed after %s: %v", reading.Duration.Round(time.Millisecond), err)
	}

	e.mu.Lock()
	e.latest = reading
	fn := e.onUpdate
	e.mu.Unlock()

	if fn != nil {
		fn(reading)
	}
	return reading, nil
}

func (e *Engine) Run(ctx context.Context) {
	for {
		if _, err := e.Refresh(ctx); errors.Is(err, ErrRunInProgress) {
			log.Println("engine: skipping tick, previous run still in progress")
		}

		e.mu.RLock()
		interval := e.interval
		e.mu.RUnlock()

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Println("engine: context cancelled, stopping refresh loop")
			return
		case <-timer.C:
		case <-e.trigger:
			timer.Stop()
		}
	}
}
