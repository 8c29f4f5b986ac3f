// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"tgbot-adapter/internal/domain"
	"tgbot-adapter/internal/infra/logging"
	"tgbot-adapter/internal/infra/metrics"
)

// A small worker pool running update-handling tasks off the request path.

type Task func(ctx context.Context) error

// ErrStopped is returned by Submit once Stop has been called.
var ErrStopped = errors.New("worker pool stopped")

type Pool struct {
	wg       sync.WaitGroup
	mu       sync.RWMutex
	jobs     chan Task
	stopped  bool
	stopOnce sync.Once
	n        int
	log      *zerolog.Logger
}

func NewPool(workers int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Pool{jobs: make(chan Task, workers*4), n: workers, log: logger}
}

// Start launches the workers. ctx is handed to every task; cancelling it
// does not stop the workers, Stop does.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for task := range p.jobs {
				if err := task(ctx); err != nil {
					metrics.IncUpdateJob("failed")
					p.log.Warn().Err(err).Int("worker", id).Msg("task error")
					continue
				}
				metrics.IncUpdateJob("completed")
			}
		}(i)
	}
}

// Stop rejects new tasks, then waits until the workers have run everything
// already queued.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.jobs)
		p.mu.Unlock()
	})
	p.wg.Wait()
}

func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	select {
	case p.jobs <- task:
		return nil
	default:
		return domain.ErrQueueFull
	}
}
