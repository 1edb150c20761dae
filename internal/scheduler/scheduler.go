// Package scheduler runs periodic in-process tasks such as the publication sweep.
package scheduler

import (
	"context"
	"sync"
	"time"

	pkglogger "github.com/modvault/modvault-backend/pkg/logger"
)

// DefaultResolution how often due tasks are checked
const DefaultResolution = 10 * time.Second

// TaskFunc receives the tick time so runs are reproducible in tests
type TaskFunc func(ctx context.Context, now time.Time) error

// Task 등록된 주기적 작업
type Task struct {
	Name      string
	Interval  time.Duration
	Handler   TaskFunc
	LastRun   time.Time
	NextRun   time.Time
	RunCount  int64
	LastError error
}

// Scheduler in-process 주기 작업 실행기
type Scheduler struct {
	tasks      []*Task
	mu         sync.RWMutex
	resolution time.Duration
	stop       chan struct{}
	wg         sync.WaitGroup
	now        func() time.Time
}

// New resolution <= 0 uses DefaultResolution
func New(resolution time.Duration) *Scheduler {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	return &Scheduler{
		tasks:      make([]*Task, 0),
		resolution: resolution,
		stop:       make(chan struct{}),
		now:        time.Now,
	}
}

// Register 주기적 작업 등록 (첫 실행은 interval 이후)
func (s *Scheduler) Register(name string, interval time.Duration, handler TaskFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append(s.tasks, &Task{
		Name:     name,
		Interval: interval,
		Handler:  handler,
		NextRun:  s.now().Add(interval),
	})

	pkglogger.Info("Scheduled task registered: %s (every %s)", name, interval)
}

// Start 스케줄러 시작 (백그라운드 goroutine). ctx is handed to every task run.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.resolution)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.tick(ctx, now)
			}
		}
	}()
	pkglogger.Info("Scheduler started (resolution %s)", s.resolution)
}

// Stop 스케줄러 중지, 실행 중인 작업이 끝날 때까지 대기
func (s *Scheduler) Stop() {
	close(s.stop)
	s.wg.Wait()
	pkglogger.Info("Scheduler stopped")
}

// tick 실행 대상 작업 체크 및 실행
func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	s.mu.RLock()
	tasks := make([]*Task, len(s.tasks))
	copy(tasks, s.tasks)
	s.mu.RUnlock()

	for _, task := range tasks {
		if now.Before(task.NextRun) {
			continue
		}

		err := s.run(ctx, task, now)

		s.mu.Lock()
		task.LastError = err
		task.LastRun = now
		task.NextRun = now.Add(task.Interval)
		task.RunCount++
		s.mu.Unlock()
	}
}

// run recovers a panicking task so one bad run does not stop the loop
func (s *Scheduler) run(ctx context.Context, task *Task, now time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			pkglogger.Error("Scheduled task panic [%s]: %v", task.Name, r)
			err = &PanicError{Task: task.Name, Value: r}
		}
	}()

	if err = task.Handler(ctx, now); err != nil {
		pkglogger.Error("Scheduled task error [%s]: %v", task.Name, err)
	}
	return err
}

// Tasks 등록된 작업 목록 조회 (모니터링용)
func (s *Scheduler) Tasks() []TaskInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]TaskInfo, 0, len(s.tasks))
	for _, t := range s.tasks {
		info := TaskInfo{
			Name:     t.Name,
			Interval: t.Interval.String(),
			LastRun:  t.LastRun,
			NextRun:  t.NextRun,
			RunCount: t.RunCount,
		}
		if t.LastError != nil {
			errMsg := t.LastError.Error()
			info.LastError = &errMsg
		}
		result = append(result, info)
	}
	return result
}

// TaskInfo 작업 정보 (JSON 응답용)
type TaskInfo struct {
	Name      string    `json:"name"`
	Interval  string    `json:"interval"`
	LastRun   time.Time `json:"last_run"`
	NextRun   time.Time `json:"next_run"`
	RunCount  int64     `json:"run_count"`
	LastError *string   `json:"last_error,omitempty"`
}
