package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

type indexedJob struct {
	index int
	job   Job
}

// Pool runs jobs on a fixed number of workers.
// Results are returned in submission order regardless of completion order.
type Pool struct {
	workers    int
	jobQueue   chan indexedJob
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once

	mu        sync.Mutex
	submitted int
	results   map[int]Result
}

// NewPool creates a pool bound to ctx; canceling ctx stops the workers
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan indexedJob, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
		results:    make(map[int]Result),
	}
}

// Start starts the worker goroutines
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
		case ij, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := ij.job.Execute(p.ctx)
			p.mu.Lock()
			p.results[ij.index] = result
			p.mu.Unlock()
		}
	}
}

// Submit queues a job. It returns false when the pool is shut down.
// Submit must not be called after Wait.
func (p *Pool) Submit(job Job) bool {
	p.mu.Lock()
	index := p.submitted
	p.submitted++
	p.mu.Unlock()

	if p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- indexedJob{index: index, job: job}:
		return true
	}
}

// Wait waits for all submitted jobs and returns one slot per submission.
// A slot is nil when its job never ran because the pool was canceled.
func (p *Pool) Wait() []Result {
	p.closeQueue()
	p.wg.Wait()
	p.cancelFunc()

	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Result, p.submitted)
	for i := range out {
		out[i] = p.results[i]
	}
	return out
}

// Shutdown cancels running jobs and stops the workers
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
}

func (p *Pool) closeQueue() {
	p.closeOnce.Do(func() {
		close(p.jobQueue)
	})
}
