// Package worker runs deferred jobs (status list re-signing) on a small
// pool of goroutines. Pool size comes from the WORKERS setting.
package worker

import (
	"context"
	"log"
	"sync"
	"time"

	xe "github.com/idtrace/traceability-controller/pkg/errors"
)

var ErrStopped = xe.New("worker pool is stopped")

// jobTimeout bounds a single job. Jobs deliberately do not inherit the
// server's shutdown context: queued work has to finish during the drain.
const jobTimeout = 5 * time.Minute

type Job func(ctx context.Context) error

type queued struct {
	name string
	run  Job
}

type Pool struct {
	size    int
	timeout time.Duration
	jobs    chan queued
	wg      sync.WaitGroup
	logger  *log.Logger

	mu      sync.RWMutex
	stopped bool
}

func New(size int, logger *log.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Pool{
		size:    size,
		timeout: jobTimeout,
		jobs:    make(chan queued, size*16),
		logger:  logger,
	}
}

// Start spawns the workers. Each job runs under its own timeout-bounded
// context, so jobs queued before a shutdown still complete while the
// pool drains.
func (p *Pool) Start() {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
				if err := j.run(ctx); err != nil {
					p.logger.Printf("job %s failed: %s", j.name, err)
				}
				cancel()
			}
		}()
	}
}

// Enqueue schedules a job. It blocks while the queue is full and returns
// ErrStopped after Shutdown has begun.
func (p *Pool) Enqueue(name string, j Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	p.jobs <- queued{name: name, run: j}
	return nil
}

// Shutdown stops intake and drains queued jobs. It returns early with
// ctx.Err() when ctx is done first; workers then finish their current
// job in the background.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.jobs)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
