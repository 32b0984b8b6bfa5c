// Package scheduler runs named periodic maintenance tasks such as the
// pending test sweep and the audit purge.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is a periodic job. Returned errors are logged; the task keeps running.
type Task func(ctx context.Context) error

// Scheduler manages periodic tasks. Every task runs in its own goroutine
// and receives a context that is cancelled by Stop.
type Scheduler struct {
	mu     sync.Mutex
	tasks  map[string]*entry
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

type entry struct {
	task     Task
	interval time.Duration
	stopCh   chan struct{}
}

// New creates a new Scheduler.
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		tasks:  make(map[string]*entry),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Every registers task to run on a fixed interval.
// If a task with the same name exists, it is replaced.
func (s *Scheduler) Every(name string, interval time.Duration, task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start(name, &entry{task: task, interval: interval})
}

// Reschedule changes the interval of a registered task. It reports whether
// the task exists.
func (s *Scheduler) Reschedule(name string, interval time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.tasks[name]
	if !ok {
		return false
	}
	if old.interval == interval {
		return true
	}
	s.start(name, &entry{task: old.task, interval: interval})
	return true
}

// start replaces any task registered under name. Callers hold s.mu.
func (s *Scheduler) start(name string, e *entry) {
	if old, ok := s.tasks[name]; ok {
		close(old.stopCh)
		delete(s.tasks, name)
	}
	if s.ctx.Err() != nil {
		return
	}
	if e.interval <= 0 {
		s.logger.Warn("scheduler task not started: interval must be positive",
			zap.String("name", name), zap.Duration("interval", e.interval))
		return
	}
	e.stopCh = make(chan struct{})
	s.tasks[name] = e

	go func() {
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.run(name, e.task)
			case <-e.stopCh:
				return
			case <-s.ctx.Done():
				return
			}
		}
	}()
	s.logger.Info("scheduler task registered", zap.String("name", name), zap.Duration("interval", e.interval))
}

func (s *Scheduler) run(name string, task Task) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduler task panicked",
				zap.String("task", name),
				zap.Any("recover", r))
		}
	}()
	if err := task(s.ctx); err != nil {
		s.logger.Warn("scheduler task failed", zap.String("task", name), zap.Error(err))
	}
}

// Remove stops and removes a task by name.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.tasks[name]; ok {
		close(e.stopCh)
		delete(s.tasks, name)
	}
}

// Stop stops all tasks. Tasks registered afterwards never run.
func (s *Scheduler) Stop() {
	s.cancel()
}

// Tasks returns the sorted names of all registered tasks.
func (s *Scheduler) Tasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
