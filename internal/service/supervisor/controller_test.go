package supervisor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/mc-updater/internal/config"
)

// fakeSupervisor reports running for a fixed number of checks.
type fakeSupervisor struct {
	mu          sync.Mutex
	runningFor  int
	checks      int
	stops       int
	starts      int
	stopErr     error
	startErr    error
	isRunningFn func(ctx context.Context) (bool, error)
}

func (f *fakeSupervisor) Stop(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stops++

	return f.stopErr
}

func (f *fakeSupervisor) Start(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.starts++

	return f.startErr
}

func (f *fakeSupervisor) IsRunning(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.checks++

	if f.isRunningFn != nil {
		return f.isRunningFn(ctx)
	}

	return f.checks <= f.runningFor, nil
}

// TestController_StopStartSwallowErrors verifies failures do not propagate.
func TestController_StopStartSwallowErrors(t *testing.T) {
	t.Parallel()

	fake := &fakeSupervisor{
		stopErr:  errors.New("no screen session found"),
		startErr: errors.New("screen: not found"),
	}
	controller := NewController(fake)
	require.Equal(t, StateRunning, controller.State())

	controller.Stop(context.Background())
	require.Equal(t, StateStopRequested, controller.State())

	controller.Start(context.Background())
	require.Equal(t, StateStarting, controller.State())

	require.Equal(t, 1, fake.stops)
	require.Equal(t, 1, fake.starts)
}

// TestController_WaitForShutdown polls until the session disappears.
func TestController_WaitForShutdown(t *testing.T) {
	t.Parallel()

	fake := &fakeSupervisor{runningFor: 3}
	controller := NewController(fake, WithPollInterval(time.Millisecond), WithShutdownTimeout(time.Second))

	controller.Stop(context.Background())
	require.NoError(t, controller.WaitForShutdown(context.Background()))
	require.Equal(t, 4, fake.checks)
	require.Equal(t, StateStopped, controller.State())
}

// TestController_WaitForShutdown_Timeout bounds the wait.
func TestController_WaitForShutdown_Timeout(t *testing.T) {
	t.Parallel()

	fake := &fakeSupervisor{runningFor: 1 << 30}
	controller := NewController(fake,
		WithPollInterval(5*time.Millisecond),
		WithShutdownTimeout(30*time.Millisecond))

	err := controller.WaitForShutdown(context.Background())
	require.ErrorIs(t, err, ErrShutdownTimeout)
	require.NotEqual(t, StateStopped, controller.State())
}

// TestController_WaitForShutdown_Cancelled returns the context error, not a timeout.
func TestController_WaitForShutdown_Cancelled(t *testing.T) {
	t.Parallel()

	fake := &fakeSupervisor{runningFor: 1 << 30}
	controller := NewController(fake, WithPollInterval(5*time.Millisecond), WithShutdownTimeout(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	err := controller.WaitForShutdown(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, ErrShutdownTimeout)
}

// TestController_WaitForShutdown_CheckFails treats a failing session list as stopped.
func TestController_WaitForShutdown_CheckFails(t *testing.T) {
	t.Parallel()

	fake := &fakeSupervisor{
		isRunningFn: func(context.Context) (bool, error) {
			return false, errors.New("screen: not found")
		},
	}
	controller := NewController(fake, WithPollInterval(time.Millisecond))

	require.NoError(t, controller.WaitForShutdown(context.Background()))
	require.Equal(t, StateStopped, controller.State())
}

// TestNew selects the implementation from settings.
func TestNew(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	sup, err := New(cfg, newFakeRunner())
	require.NoError(t, err)
	require.IsType(t, &Screen{}, sup)

	cfg.Supervisor = config.SupervisorTmux
	sup, err = New(cfg, newFakeRunner())
	require.NoError(t, err)
	require.IsType(t, &Tmux{}, sup)

	cfg.Supervisor = "systemd"
	_, err = New(cfg, newFakeRunner())
	require.ErrorIs(t, err, errUnknownSupervisor)
}

// TestStateString checks the log labels.
func TestStateString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "running", StateRunning.String())
	require.Equal(t, "stop-requested", StateStopRequested.String())
	require.Equal(t, "stopped", StateStopped.String())
	require.Equal(t, "starting", StateStarting.String())
	require.Equal(t, "unknown", State(9).String())
}

// TestExecRunner runs a real command to check output and exit status mapping.
func TestExecRunner(t *testing.T) {
	t.Parallel()

	output, err := ExecRunner{}.Run(context.Background(), "sh", "-c", "echo hi")
	if err != nil && !errors.Is(err, ErrExitStatus) {
		t.Skipf("sh unavailable: %v", err)
	}

	require.NoError(t, err)
	require.Equal(t, "hi\n", string(output))

	output, err = ExecRunner{}.Run(context.Background(), "sh", "-c", "echo nope; exit 3")
	require.ErrorIs(t, err, ErrExitStatus)
	require.Equal(t, "nope\n", string(output))
}
