package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/glefebvre/moviesearch/internal/logger"
)

type hook struct {
	name string
	fn   func(context.Context) error
}

// Handler drains the API server, in-flight OMDb requests and the blob store
// when the process is asked to stop
type Handler struct {
	mu             sync.Mutex
	hooks          []hook
	timeout        time.Duration
	logger         *logger.Logger
	signalChan     chan os.Signal
	shutdownChan   chan struct{}
	isShuttingDown bool
}

// New creates a new shutdown handler
func New(timeout time.Duration, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.AppLogger()
	}
	return &Handler{
		timeout:      timeout,
		logger:       log,
		signalChan:   make(chan os.Signal, 1),
		shutdownChan: make(chan struct{}),
	}
}

// Register adds a named shutdown function. Hooks are started in reverse
// order of registration and run concurrently.
func (h *Handler) Register(name string, fn func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook{name: name, fn: fn})
}

// Wait blocks until SIGINT, SIGTERM or TriggerShutdown, then shuts down
func (h *Handler) Wait() error {
	signal.Notify(h.signalChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(h.signalChan)

	sig := <-h.signalChan
	h.logger.WithFields(map[string]interface{}{
		"signal": sig.String(),
	}).Info("shutdown requested")
	return h.Shutdown()
}

// Shutdown runs every hook under the handler's timeout and returns the
// first hook error, or the context error when the timeout wins
func (h *Handler) Shutdown() error {
	h.mu.Lock()
	if h.isShuttingDown {
		h.mu.Unlock()
		return nil
	}
	h.isShuttingDown = true
	hooks := append([]hook(nil), h.hooks...)
	h.mu.Unlock()

	close(h.shutdownChan)

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	p := pool.New().WithErrors().WithFirstError()
	for i := len(hooks) - 1; i >= 0; i-- {
		hk := hooks[i]
		p.Go(func() error {
			if err := hk.fn(ctx); err != nil {
				h.logger.WithFields(map[string]interface{}{
					"hook": hk.name,
				}).Error("shutdown hook failed", err)
				return fmt.Errorf("%s: %w", hk.name, err)
			}
			h.logger.Debug(fmt.Sprintf("shutdown hook %s done", hk.name))
			return nil
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- p.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		h.logger.Warn("shutdown timed out, abandoning remaining hooks")
		return ctx.Err()
	}
}

// IsShuttingDown returns true if shutdown has been initiated
func (h *Handler) IsShuttingDown() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.isShuttingDown
}

// ShutdownChan returns a channel that is closed when shutdown is initiated
func (h *Handler) ShutdownChan() <-chan struct{} {
	return h.shutdownChan
}

// TriggerShutdown makes a pending Wait return as if SIGTERM was received
func (h *Handler) TriggerShutdown() {
	select {
	case h.signalChan <- syscall.SIGTERM:
	default:
	}
}
