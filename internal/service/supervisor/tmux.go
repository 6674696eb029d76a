package supervisor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

const tmuxExecutable = "tmux"

// Tmux drives the server through a tmux session.
type Tmux struct {
	runner  CommandRunner
	session string
	launch  Launch
}

// NewTmux creates a Tmux supervisor for the named session.
func NewTmux(runner CommandRunner, session string, launch Launch) *Tmux {
	return &Tmux{
		runner:  runner,
		session: session,
		launch:  launch,
	}
}

// Stop sends the stop command followed by Enter to the session.
func (t *Tmux) Stop(ctx context.Context) error {
	_, err := t.runner.Run(ctx, tmuxExecutable, "send-keys", "-t", t.session, stopCommand, "Enter")

	return err
}

// Start creates a detached session. tmux hands the command to a shell, so
// every argument is quoted.
func (t *Tmux) Start(ctx context.Context) error {
	command, err := shellCommand(t.launch.Args())
	if err != nil {
		return err
	}

	_, err = t.runner.Run(ctx, tmuxExecutable, "new-session", "-d", "-s", t.session, command)

	return err
}

// IsRunning lists session names. A missing tmux server means no session.
func (t *Tmux) IsRunning(ctx context.Context) (bool, error) {
	output, err := t.runner.Run(ctx, tmuxExecutable, "list-sessions", "-F", "#{session_name}")
	if err != nil {
		if errors.Is(err, ErrExitStatus) && tmuxServerAbsent(output) {
			return false, nil
		}

		return false, fmt.Errorf("list tmux sessions: %w", err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == t.session {
			return true, nil
		}
	}

	return false, nil
}

func tmuxServerAbsent(output []byte) bool {
	text := string(output)

	return strings.Contains(text, "no server running") ||
		strings.Contains(text, "error connecting to") ||
		strings.Contains(text, "no sessions")
}

// shellCommand joins args into a POSIX shell command line.
func shellCommand(args []string) (string, error) {
	quoted := make([]string, 0, len(args))

	for _, arg := range args {
		q, err := syntax.Quote(arg, syntax.LangPOSIX)
		if err != nil {
			return "", fmt.Errorf("quote %q: %w", arg, err)
		}

		quoted = append(quoted, q)
	}

	return strings.Join(quoted, " "), nil
}
