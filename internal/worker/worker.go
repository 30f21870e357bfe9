package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/cloud-integration/internal/core/ports/driven"
)

// DefaultInterval is how often expired OAuth sessions are purged.
const DefaultInterval = 5 * time.Minute

// ErrNotRunning is returned by Ping before Start or after Stop.
var ErrNotRunning = errors.New("session cleanup worker is not running")

// Worker periodically purges expired OAuth sessions so abandoned
// authorization attempts do not accumulate in the session store.
type Worker struct {
	sessions driven.OAuthSessionStore
	logger   *slog.Logger

	// Configuration
	interval time.Duration
	timeout  time.Duration

	// Internal state
	mu      sync.RWMutex
	running bool
	lastErr error
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// WorkerConfig holds configuration for the worker.
type WorkerConfig struct {
	Sessions driven.OAuthSessionStore
	Logger   *slog.Logger
	Interval time.Duration // Time between cleanup passes
	Timeout  time.Duration // Upper bound for a single pass
}

// NewWorker creates a new session cleanup worker.
func NewWorker(cfg WorkerConfig) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	timeout := cfg.Timeout
	if timeout <= 0 || timeout > interval {
		timeout = interval
	}

	return &Worker{
		sessions: cfg.Sessions,
		logger:   logger.With("component", "session_cleanup"),
		interval: interval,
		timeout:  timeout,
	}
}

// Start begins the cleanup loop.
// It runs until Stop is called or context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("worker starting", "interval", w.interval)

	go func() {
		defer close(w.doneCh)
		w.loop(ctx)
	}()

	return nil
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("worker stopped")
}

// Wait blocks until the worker stops.
func (w *Worker) Wait() {
	<-w.doneCh
}

func (w *Worker) loop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker context cancelled")
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single cleanup pass.
func (w *Worker) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	err := w.sessions.Cleanup(ctx)

	w.mu.Lock()
	w.lastErr = err
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("session cleanup failed", "error", err)
		return
	}
	w.logger.Debug("session cleanup completed", "duration", time.Since(start))
}

// Health reports the worker state.
type Health struct {
	Running      bool   `json:"running"`
	StoreHealthy bool   `json:"store_healthy"`
	Error        string `json:"error,omitempty"`
}

// Health returns the health status of the worker.
func (w *Worker) Health(ctx context.Context) Health {
	w.mu.RLock()
	running := w.running
	lastErr := w.lastErr
	w.mu.RUnlock()

	health := Health{Running: running, StoreHealthy: true}

	if err := w.sessions.Ping(ctx); err != nil {
		health.StoreHealthy = false
		health.Error = err.Error()
	} else if lastErr != nil {
		health.Error = lastErr.Error()
	}

	return health
}

// Ping fails when the worker is stopped, its store is unreachable or the
// last cleanup pass failed.
func (w *Worker) Ping(ctx context.Context) error {
	health := w.Health(ctx)
	switch {
	case !health.Running:
		return ErrNotRunning
	case !health.StoreHealthy:
		return fmt.Errorf("session store: %s", health.Error)
	case health.Error != "":
		return fmt.Errorf("last cleanup: %s", health.Error)
	}
	return nil
}
