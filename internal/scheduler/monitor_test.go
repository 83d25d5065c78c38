package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/spec-kit/workdesk/internal/observability"
)

type stubTask struct {
	name    string
	due     bool
	runs    atomic.Int32
	started chan struct{}
	block   chan struct{}
	panics  bool
}

func (s *stubTask) Name() string       { return s.name }
func (s *stubTask) Due(time.Time) bool { return s.due }
func (s *stubTask) Run(context.Context, time.Time) error {
	s.runs.Add(1)
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	if s.panics {
		panic("boom")
	}
	return nil
}

func newTestMonitor(lock RunLock, tasks ...Task) *Monitor {
	return NewMonitor(lock, zap.NewNop(), observability.NewMetrics(), tasks...)
}

func waitIdle(t *testing.T, m *Monitor) {
	t.Helper()
	assert.Eventually(t, func() bool {
		for _, mt := range m.tasks {
			if mt.running.Load() {
				return false
			}
		}
		return true
	}, time.Second, 5*time.Millisecond)
}

func TestTickIgnoresTasksNotDue(t *testing.T) {
	task := &stubTask{name: "idle", due: false}
	m := newTestMonitor(NoopRunLock{}, task)

	m.Tick(context.Background(), time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC))
	waitIdle(t, m)

	assert.Equal(t, int32(0), task.runs.Load())
}

func TestTickFiresOncePerMinute(t *testing.T) {
	task := &stubTask{name: "hourly", due: true}
	m := newTestMonitor(NoopRunLock{}, task)

	tick := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	m.Tick(context.Background(), tick)
	waitIdle(t, m)
	m.Tick(context.Background(), tick.Add(10*time.Second))
	waitIdle(t, m)

	assert.Equal(t, int32(1), task.runs.Load(), "same minute must not fire twice")

	m.Tick(context.Background(), tick.Add(time.Minute))
	waitIdle(t, m)
	assert.Equal(t, int32(2), task.runs.Load())
}

func TestTickDropsWhileStillRunning(t *testing.T) {
	task := &stubTask{
		name:    "slow",
		due:     true,
		started: make(chan struct{}, 1),
		block:   make(chan struct{}),
	}
	m := newTestMonitor(NoopRunLock{}, task)

	tick := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	m.Tick(context.Background(), tick)
	<-task.started

	m.Tick(context.Background(), tick.Add(time.Minute))
	assert.Equal(t, int32(1), task.runs.Load(), "overlapping tick must be dropped, not queued")

	close(task.block)
	waitIdle(t, m)
}

func TestRunLockDeniedSkipsRun(t *testing.T) {
	task := &stubTask{name: "locked", due: true}
	m := newTestMonitor(deniedLock{}, task)

	m.Tick(context.Background(), time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC))
	waitIdle(t, m)

	assert.Equal(t, int32(0), task.runs.Load())
}

func TestPanickingTaskDoesNotWedgeSchedule(t *testing.T) {
	task := &stubTask{name: "flaky", due: true, panics: true}
	m := newTestMonitor(NoopRunLock{}, task)

	tick := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	m.Tick(context.Background(), tick)
	waitIdle(t, m)
	m.Tick(context.Background(), tick.Add(time.Minute))
	waitIdle(t, m)

	assert.Equal(t, int32(2), task.runs.Load(), "a panic must not block later ticks")
}
