package service

import (
	"context"
	"log/slog"
	"time"
)

// HousekeepingTask is one periodic maintenance job. Run reports how many
// items it touched, for logging.
type HousekeepingTask struct {
	Name string
	Run  func(ctx context.Context, now time.Time) (int, error)
}

// PruneTask adapts a cache's Prune method.
func PruneTask(name string, prune func(now time.Time) int) HousekeepingTask {
	return HousekeepingTask{
		Name: name,
		Run: func(_ context.Context, now time.Time) (int, error) {
			return prune(now), nil
		},
	}
}

// HousekeepingService runs its tasks on a fixed interval until stopped.
// Tasks run sequentially; a failing task does not stop the others.
type HousekeepingService struct {
	Logger   *slog.Logger
	Interval time.Duration
	Tasks    []HousekeepingTask

	now    func() time.Time
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to five minutes.
func NewHousekeepingService(logger *slog.Logger, interval time.Duration, tasks ...HousekeepingTask) *HousekeepingService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &HousekeepingService{
		Logger:   logger,
		Interval: interval,
		Tasks:    tasks,
		now:      time.Now,
	}
}

// Start runs the tasks in the background until Stop is called.
func (s *HousekeepingService) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(ctx)

	names := make([]string, len(s.Tasks))
	for i, t := range s.Tasks {
		names[i] = t.Name
	}
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "tasks", names)
}

// Stop cancels the loop and waits for an in-progress pass to return.
func (s *HousekeepingService) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce runs every task once.
func (s *HousekeepingService) RunOnce(ctx context.Context) {
	now := s.now()
	for _, t := range s.Tasks {
		if ctx.Err() != nil {
			return
		}
		n, err := t.Run(ctx, now)
		switch {
		case err != nil:
			s.Logger.Warn("housekeeping task failed", "task", t.Name, "err", err)
		case n > 0:
			s.Logger.Debug("housekeeping task done", "task", t.Name, "affected", n)
		}
	}
}
