// Package worker provides background loop and bounded concurrency helpers.
// The loop runs periodic maintenance (cache purges); the pool keeps classification
// work off the request goroutines' critical path with a fixed concurrency cap.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/sentiment-scope/internal/platform/observability"
)

const (
	logFieldWorker = "worker"
	logFieldTask   = "task"

	taskStatusOK    = "ok"
	taskStatusPanic = "panic"
)

// PeriodicTask represents a task that runs at regular intervals.
type PeriodicTask struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context)
	lastRun  time.Time
}

// Config configures the worker loop behavior.
type Config struct {
	// Name identifies the worker for logging.
	Name string

	// PollInterval is the time between iterations.
	PollInterval time.Duration

	// PeriodicTasks are run at their configured intervals.
	PeriodicTasks []PeriodicTask

	// Logger for the worker.
	Logger *zerolog.Logger
}

// Loop runs periodic tasks until the context is canceled.
// Returns a wrapped ctx.Err() when the context is canceled.
func Loop(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	logger.Info().Str(logFieldWorker, cfg.Name).Msg("starting worker loop")
	defer logger.Info().Str(logFieldWorker, cfg.Name).Msg("worker loop stopped")

	tasks := make([]PeriodicTask, len(cfg.PeriodicTasks))
	copy(tasks, cfg.PeriodicTasks)

	for {
		if err := checkCanceled(ctx, cfg.Name); err != nil {
			return err
		}

		runPeriodicTasks(ctx, tasks, logger)

		if err := Wait(ctx, cfg.PollInterval); err != nil {
			return err
		}
	}
}

// runPeriodicTasks runs any periodic tasks that are due.
func runPeriodicTasks(ctx context.Context, tasks []PeriodicTask, logger *zerolog.Logger) {
	now := time.Now()

	for i := range tasks {
		task := &tasks[i]
		if task.Interval <= 0 || task.Run == nil {
			continue
		}

		if now.Sub(task.lastRun) >= task.Interval {
			logger.Debug().Str(logFieldTask, task.Name).Msg("running periodic task")
			runTask(ctx, task, logger)
			task.lastRun = now
		}
	}
}

func runTask(ctx context.Context, task *PeriodicTask, logger *zerolog.Logger) {
	start := time.Now()
	status := taskStatusOK

	defer func() {
		if r := recover(); r != nil {
			status = taskStatusPanic

			logger.Error().
				Interface("panic", r).
				Str(logFieldTask, task.Name).
				Msg("periodic task panicked")
		}

		observability.PeriodicTaskRuns.WithLabelValues(task.Name, status).Inc()
		observability.PeriodicTaskDuration.WithLabelValues(task.Name).Observe(time.Since(start).Seconds())
	}()

	task.Run(ctx)
}

func checkCanceled(ctx context.Context, name string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("worker loop %s: %w", name, ctx.Err())
	default:
		return nil
	}
}

// Wait blocks until duration elapses or context is canceled.
// Returns a wrapped context error if context is canceled.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("wait interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// RunWithTimeout runs fn with a timeout derived from the parent context.
// A non-positive timeout runs fn with the parent context unchanged.
func RunWithTimeout(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return fn(timeoutCtx)
}
