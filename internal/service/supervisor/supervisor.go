package supervisor

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/mc-updater/internal/config"
)

// Supervisor controls the server process hosted in a named session.
type Supervisor interface {
	// Stop asks the server to shut down.
	Stop(ctx context.Context) error
	// Start launches the server in a new detached session.
	Start(ctx context.Context) error
	// IsRunning reports whether the named session still exists.
	IsRunning(ctx context.Context) (bool, error)
}

// stopCommand is typed into the server console to request a clean shutdown.
const stopCommand = "stop"

// errUnknownSupervisor is returned by New for unsupported session managers.
var errUnknownSupervisor = errors.New("unknown supervisor")

// Launch describes how the server is started.
type Launch struct {
	// JavaPath is the Java executable.
	JavaPath string
	// MinMemory and MaxMemory become -Xms and -Xmx.
	MinMemory string
	MaxMemory string
	// ArtifactPath is the server jar.
	ArtifactPath string
}

// LaunchFromConfig builds a Launch from settings.
func LaunchFromConfig(cfg *config.Config) Launch {
	return Launch{
		JavaPath:     cfg.JavaPath,
		MinMemory:    cfg.MinMemory,
		MaxMemory:    cfg.MaxMemory,
		ArtifactPath: cfg.ArtifactPath,
	}
}

// Args returns the server command line.
func (l Launch) Args() []string {
	return []string{
		l.JavaPath,
		"-Xms" + l.MinMemory,
		"-Xmx" + l.MaxMemory,
		"-jar", l.ArtifactPath,
		"nogui",
	}
}

// New returns the Supervisor selected in settings.
//
//nolint:ireturn // Callers only need the capability interface.
func New(cfg *config.Config, runner CommandRunner) (Supervisor, error) {
	launch := LaunchFromConfig(cfg)

	switch cfg.Supervisor {
	case config.SupervisorScreen:
		return NewScreen(runner, cfg.SessionName, launch), nil
	case config.SupervisorTmux:
		return NewTmux(runner, cfg.SessionName, launch), nil
	default:
		return nil, fmt.Errorf("%q: %w", cfg.Supervisor, errUnknownSupervisor)
	}
}
