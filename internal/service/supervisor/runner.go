package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrExitStatus marks a command that ran but exited with a non-zero status.
// The combined output is still returned alongside it.
var ErrExitStatus = errors.New("command exited with non-zero status")

// CommandRunner executes an external program and returns its combined output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Dir is the working directory of started commands; empty means the current one.
	Dir string
}

// Run implements CommandRunner.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir

	output, err := cmd.CombinedOutput()
	if err == nil {
		return output, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return output, fmt.Errorf("%s %s: %w (%d): %s",
			name, strings.Join(args, " "), ErrExitStatus, exitErr.ExitCode(), strings.TrimSpace(string(output)))
	}

	return output, fmt.Errorf("%s: %w", name, err)
}
