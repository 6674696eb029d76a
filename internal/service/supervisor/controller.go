package supervisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/mc-updater/internal/config"
	"github.com/oshokin/mc-updater/internal/logger"
)

var (
	// ErrProcessControl wraps failures of the session manager. The controller
	// logs them and carries on.
	ErrProcessControl = errors.New("process control failed")
	// ErrShutdownTimeout is returned when the session outlives the shutdown timeout.
	ErrShutdownTimeout = errors.New("server did not shut down in time")
)

// State is the server lifecycle as observed by the controller.
type State int

const (
	// StateRunning is assumed before the controller acts.
	StateRunning State = iota
	// StateStopRequested follows a stop command.
	StateStopRequested
	// StateStopped is reached once the session disappears.
	StateStopped
	// StateStarting follows a start command; reaching Running is not verified.
	StateStarting
)

// String returns a lowercase label suitable for logs.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopRequested:
		return "stop-requested"
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	default:
		return "unknown"
	}
}

// Controller applies the update run policy on top of a Supervisor.
type Controller struct {
	// supervisor issues the session commands.
	supervisor Supervisor
	// pollInterval is the delay between session checks.
	pollInterval time.Duration
	// shutdownTimeout bounds WaitForShutdown.
	shutdownTimeout time.Duration
	// state is the last observed lifecycle state.
	state State
}

// Option configures the controller.
type Option func(*Controller)

// WithPollInterval sets the delay between session checks.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Controller) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// WithShutdownTimeout sets the upper bound of WaitForShutdown.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(c *Controller) {
		if timeout > 0 {
			c.shutdownTimeout = timeout
		}
	}
}

// NewController wraps supervisor with the default poll interval and timeout.
func NewController(supervisor Supervisor, opts ...Option) *Controller {
	controller := &Controller{
		supervisor:      supervisor,
		pollInterval:    config.DefaultPollInterval,
		shutdownTimeout: config.DefaultShutdownTimeout,
		state:           StateRunning,
	}

	for _, opt := range opts {
		opt(controller)
	}

	return controller
}

// State returns the last observed lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Stop requests a shutdown. Failures are logged, not returned.
func (c *Controller) Stop(ctx context.Context) {
	c.transition(ctx, StateStopRequested)

	if err := c.supervisor.Stop(ctx); err != nil {
		logger.WarnKV(ctx, "Stop command failed, continuing", "error", fmt.Errorf("%w: %w", ErrProcessControl, err))
	}
}

// Start launches the server without waiting for it to come up. Failures are
// logged, not returned.
func (c *Controller) Start(ctx context.Context) {
	c.transition(ctx, StateStarting)

	if err := c.supervisor.Start(ctx); err != nil {
		logger.WarnKV(ctx, "Start command failed, continuing", "error", fmt.Errorf("%w: %w", ErrProcessControl, err))
	}
}

// WaitForShutdown polls the session list until the session is gone. It
// returns ErrShutdownTimeout once the shutdown timeout elapses and the
// context error when ctx is cancelled. A failing session check is logged and
// treated as stopped.
func (c *Controller) WaitForShutdown(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, c.shutdownTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		running, err := c.supervisor.IsRunning(waitCtx)

		switch {
		case waitCtx.Err() != nil:
			return c.waitError(ctx)
		case err != nil:
			logger.WarnKV(ctx, "Unable to list sessions, assuming the server is stopped",
				"error", fmt.Errorf("%w: %w", ErrProcessControl, err))
			c.transition(ctx, StateStopped)

			return nil
		case !running:
			c.transition(ctx, StateStopped)

			return nil
		}

		logger.DebugKV(ctx, "Server still running, waiting", "interval", c.pollInterval.String())

		select {
		case <-waitCtx.Done():
			return c.waitError(ctx)
		case <-ticker.C:
		}
	}
}

func (c *Controller) waitError(parent context.Context) error {
	if err := parent.Err(); err != nil {
		return fmt.Errorf("wait for shutdown: %w", err)
	}

	return fmt.Errorf("after %s: %w", c.shutdownTimeout, ErrShutdownTimeout)
}

func (c *Controller) transition(ctx context.Context, next State) {
	logger.DebugKV(ctx, "Server state changed", "from", c.state.String(), "to", next.String())
	c.state = next
}
