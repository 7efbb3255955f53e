package payroll

import (
	"context"
	"log/slog"
	"sync"
)

type employeeJob struct {
	index      int
	employeeID string
}

type employeeOutcome struct {
	index      int
	employeeID string
	salary     *CalculatedSalary
	err        error
	// skipped marks a job that was handed out but never started because the
	// batch was cancelled first.
	skipped bool
}

type worker struct {
	id     int
	pool   chan chan employeeJob
	jobs   chan employeeJob
	logger *slog.Logger
}

func newWorker(id int, pool chan chan employeeJob, logger *slog.Logger) *worker {
	return &worker{
		id:     id,
		pool:   pool,
		jobs:   make(chan employeeJob),
		logger: logger,
	}
}

// start registers the worker's job channel with the pool until ctx is done.
func (w *worker) start(ctx context.Context, wg *sync.WaitGroup, process func(employeeJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.pool <- w.jobs

			select {
			case job := <-w.jobs:
				w.logger.Debug("worker processing employee", "worker_id", w.id, "employee_id", job.employeeID)
				process(job)
			case <-ctx.Done():
				w.logger.Debug("worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}
