// Package scheduler runs the time-driven monitor: recurring background
// tasks that sweep the store and emit notifications without any user
// action. Tasks are independent, never re-entrant, and isolated from each
// other's failures.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/workdesk/internal/observability"
)

// Task is one recurring monitor job. Due is evaluated once per minute
// against a single wall-clock snapshot; Run receives that same snapshot so
// every query inside one run agrees on what "now" is.
type Task interface {
	Name() string
	Due(now time.Time) bool
	Run(ctx context.Context, now time.Time) error
}

// Monitor drives the task set off one minute-aligned timer. A tick that
// finds a task still running from the previous tick is dropped for that
// task, not queued.
type Monitor struct {
	tasks   []*managedTask
	lock    RunLock
	logger  *zap.Logger
	metrics *observability.Metrics
}

type managedTask struct {
	task      Task
	running   atomic.Bool
	lastFired time.Time
}

// NewMonitor builds the monitor around the given tasks.
func NewMonitor(lock RunLock, logger *zap.Logger, metrics *observability.Metrics, tasks ...Task) *Monitor {
	m := &Monitor{lock: lock, logger: logger, metrics: metrics}
	for _, task := range tasks {
		m.tasks = append(m.tasks, &managedTask{task: task})
	}
	return m
}

// Run blocks until the context is canceled, waking on each minute boundary.
func (m *Monitor) Run(ctx context.Context) {
	m.logger.Info("monitor started", zap.Int("tasks", len(m.tasks)))
	timer := time.NewTimer(untilNextMinute(time.Now()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopped")
			return
		case <-timer.C:
		}
		m.Tick(ctx, time.Now().UTC())
		timer.Reset(untilNextMinute(time.Now()))
	}
}

// Tick evaluates every task against one shared snapshot and launches the
// due ones.
func (m *Monitor) Tick(ctx context.Context, now time.Time) {
	minute := now.Truncate(time.Minute)
	for _, mt := range m.tasks {
		if !mt.task.Due(now) || mt.lastFired.Equal(minute) {
			continue
		}
		if !mt.running.CompareAndSwap(false, true) {
			m.logger.Warn("previous run still executing, dropping tick",
				zap.String("task", mt.task.Name()))
			continue
		}
		mt.lastFired = minute
		go m.runTask(ctx, mt, now)
	}
}

func (m *Monitor) runTask(ctx context.Context, mt *managedTask, now time.Time) {
	defer mt.running.Store(false)
	name := mt.task.Name()

	acquired, err := m.lock.Acquire(ctx, name)
	if err != nil {
		m.logger.Warn("run lock unavailable, skipping cycle",
			zap.String("task", name), zap.Error(err))
		return
	}
	if !acquired {
		m.logger.Info("another instance holds the run lock, skipping cycle",
			zap.String("task", name))
		return
	}
	defer func() {
		if err := m.lock.Release(ctx, name); err != nil {
			m.logger.Warn("run lock release failed",
				zap.String("task", name), zap.Error(err))
		}
	}()

	start := time.Now()
	failed := false
	func() {
		defer func() {
			if r := recover(); r != nil {
				failed = true
				m.logger.Error("task panicked",
					zap.String("task", name), zap.Any("panic", r))
			}
		}()
		if err := mt.task.Run(ctx, now); err != nil {
			failed = true
			m.logger.Error("task failed", zap.String("task", name), zap.Error(err))
		}
	}()
	m.metrics.RecordTaskRun(name, failed)
	m.logger.Info("task completed",
		zap.String("task", name),
		zap.Bool("failed", failed),
		zap.Duration("duration", time.Since(start)))
}

func untilNextMinute(now time.Time) time.Duration {
	next := now.Truncate(time.Minute).Add(time.Minute)
	return time.Until(next)
}
