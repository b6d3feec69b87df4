package tasks

import (
	"context"
	"log/slog"
	"sync"
)

type Task = func()

// Pool runs tasks on a fixed set of workers. Session change notifications go
// through it so a slow listener never blocks a write.
type Pool struct {
	log        *slog.Logger
	tasks      chan Task
	maxWorkers int
	wg         *sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func New(log *slog.Logger, maxWorkers int, maxTasksQueueSize int) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	wg := &sync.WaitGroup{}
	wg.Add(maxWorkers)
	return &Pool{
		log:        log,
		maxWorkers: maxWorkers,
		wg:         wg,
		tasks:      make(chan Task, maxTasksQueueSize),
	}
}

func (p *Pool) Run() {
	for i := 0; i < p.maxWorkers; i++ {
		go func() {
			log := p.log.With("worker", i)
			defer p.wg.Done()
			for task := range p.tasks {
				p.exec(log, task)
			}
		}()
	}
}

func (p *Pool) exec(log *slog.Logger, task Task) {
	defer func() {
		if err := recover(); err != nil {
			log.Error("panic", "err", err)
		}
	}()
	task()
	log.Debug("task done")
}

// Add queues task. Tasks added after Shutdown are dropped.
func (p *Pool) Add(task Task) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.log.Warn("pool is shut down, dropping task", "op", "tasks.Pool.Add")
		return
	}
	p.tasks <- task
}

func (p *Pool) IsEmpty() bool {
	return len(p.tasks) == 0
}

func (p *Pool) Shutdown(ctx context.Context) error {
	const op = "tasks.Pool.Shutdown"
	log := p.log.With("op", op)
	log.Debug("shutting down background tasks")
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		log.Warn("graceful shutdown timed out.. forcing exit", "timeout", ctx.Err())
		return ctx.Err()
	case <-done:
		log.Debug("background tasks successfully stopped")
		return nil
	}
}

// Inline runs every task on the caller's goroutine.
type Inline struct{}

func (Inline) Add(task Task) { task() }
