package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// JobFunc is one background task, such as the absentee sweep or the
// expired-session cleanup.
type JobFunc func(ctx context.Context) error

type job struct {
	name  string
	every time.Duration
	run   JobFunc
}

// Scheduler runs the registered jobs on fixed intervals, one goroutine
// per job.
type Scheduler struct {
	mu     sync.Mutex
	jobs   []job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers a job. Jobs run once immediately on Start and then
// on every interval tick.
func (s *Scheduler) AddJob(name string, every time.Duration, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, job{name: name, every: every, run: fn})
	slog.Info("Background job registered", "job", name, "every", every)
}

// Start launches one loop per registered job.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(j)
	}
	slog.Info("Background jobs started", "count", len(s.jobs))
}

// Stop cancels all job loops and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	slog.Info("Background jobs stopped")
}

func (s *Scheduler) loop(j job) {
	defer s.wg.Done()

	// First run happens right away so a restarted server never waits a
	// full interval for the absentee sweep.
	s.execute(j)

	ticker := time.NewTicker(j.every)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.execute(j)
		}
	}
}

func (s *Scheduler) execute(j job) {
	start := time.Now()
	if err := j.run(s.ctx); err != nil {
		slog.Error("Background job failed", "job", j.name, "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("Background job finished", "job", j.name, "duration", time.Since(start))
}

// RunOnce executes every registered job a single time with the given
// context. A failing job does not stop the rest.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		if err := j.run(ctx); err != nil {
			slog.Error("Background job failed", "job", j.name, "error", err)
		}
	}
}
