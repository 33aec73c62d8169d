package worker

import (
	"context"
	"sync"
)

// Job is a unit of work executed by the pool.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of a job execution.
type Result interface {
	GetError() error
}

// Pool runs jobs concurrently on a fixed number of workers. Results are
// collected as they arrive, so workers never block on a full results channel
// and callers may submit any number of jobs before calling Wait.
type Pool struct {
	workers   int
	jobs      chan Job
	collector *resultCollector
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewPool creates a pool with the given number of workers, defaulting to one.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers:   workers,
		jobs:      make(chan Job, workers*2),
		collector: newResultCollector(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.collector.add(job.Execute(p.ctx))
		}
	}
}

// Submit queues a job for execution. Submissions after Shutdown are dropped.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
	case p.jobs <- job:
	}
}

// Wait closes the queue, waits for the workers to drain it and returns all
// results. Results arrive in arbitrary order.
func (p *Pool) Wait() []Result {
	close(p.jobs)
	p.wg.Wait()
	return p.collector.results()
}

// Shutdown cancels outstanding work and releases the workers.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

// resultCollector accumulates results from concurrent workers.
type resultCollector struct {
	mu    sync.Mutex
	items []Result
}

func newResultCollector() *resultCollector {
	return &resultCollector{items: make([]Result, 0)}
}

func (c *resultCollector) add(result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, result)
}

func (c *resultCollector) results() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items
}
