package supervisor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
)

const screenExecutable = "screen"

// Screen drives the server through a GNU screen session.
type Screen struct {
	runner  CommandRunner
	session string
	launch  Launch
}

// NewScreen creates a Screen supervisor for the named session.
func NewScreen(runner CommandRunner, session string, launch Launch) *Screen {
	return &Screen{
		runner:  runner,
		session: session,
		launch:  launch,
	}
}

// Stop types the stop command into the first window of the session.
func (s *Screen) Stop(ctx context.Context) error {
	_, err := s.runner.Run(ctx, screenExecutable, "-S", s.session, "-p", "0", "-X", "stuff", stopCommand+"\n")

	return err
}

// Start creates a detached session running the server.
func (s *Screen) Start(ctx context.Context) error {
	args := append([]string{"-dmS", s.session}, s.launch.Args()...)

	_, err := s.runner.Run(ctx, screenExecutable, args...)

	return err
}

// IsRunning lists sessions with `screen -ls`. screen exits non-zero both
// when no session exists and, on some builds, when sessions do exist, so
// the output is parsed regardless of the exit status.
func (s *Screen) IsRunning(ctx context.Context) (bool, error) {
	output, err := s.runner.Run(ctx, screenExecutable, "-ls")
	if err != nil && !errors.Is(err, ErrExitStatus) {
		return false, err
	}

	if hasScreenSession(output, s.session) {
		return true, nil
	}

	if err != nil && !bytes.Contains(output, []byte("No Sockets found")) {
		return false, fmt.Errorf("list screen sessions: %w", err)
	}

	return false, nil
}

// hasScreenSession looks for a "<pid>.<session>" entry in `screen -ls` output.
func hasScreenSession(output []byte, session string) bool {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		pid, name, found := strings.Cut(fields[0], ".")
		if !found || pid == "" || strings.Trim(pid, "0123456789") != "" {
			continue
		}

		if name == session {
			return true
		}
	}

	return false
}
