package supervisor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestTmux_Commands checks the stop and start invocations, including quoting.
func TestTmux_Commands(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner()
	launch := testLaunch
	launch.ArtifactPath = "/srv/my server/server.jar"

	tmux := NewTmux(runner, "minecraft", launch)

	require.NoError(t, tmux.Stop(context.Background()))
	require.NoError(t, tmux.Start(context.Background()))

	require.Equal(t, []string{
		"tmux send-keys -t minecraft stop Enter",
		"tmux new-session -d -s minecraft java -Xms1G -Xmx4G -jar '/srv/my server/server.jar' nogui",
	}, runner.recorded())
}

// TestTmux_IsRunning parses session names and handles an absent tmux server.
func TestTmux_IsRunning(t *testing.T) {
	t.Parallel()

	exitErr := fmt.Errorf("tmux list-sessions: %w (1)", ErrExitStatus)

	cases := map[string]struct {
		resp    response
		want    bool
		wantErr bool
	}{
		"listed":         {resp: response{output: "survival\nminecraft\n"}, want: true},
		"not listed":     {resp: response{output: "survival\n"}},
		"no server":      {resp: response{output: "no server running on /tmp/tmux-1000/default\n", err: exitErr}},
		"other failure":  {resp: response{output: "protocol version mismatch", err: exitErr}, wantErr: true},
		"tmux not found": {resp: response{err: errors.New("executable file not found")}, wantErr: true},
	}

	for name, tc := range cases {
		runner := newFakeRunner()
		runner.script("list-sessions", tc.resp)

		running, err := NewTmux(runner, "minecraft", testLaunch).IsRunning(context.Background())
		if tc.wantErr {
			require.Error(t, err, name)
			continue
		}

		require.NoError(t, err, name)
		require.Equal(t, tc.want, running, name)
	}
}

// TestShellCommand leaves plain words alone and quotes the rest.
func TestShellCommand(t *testing.T) {
	t.Parallel()

	got, err := shellCommand([]string{"java", "-Xmx4G", "-jar", "a b.jar", "nogui"})
	require.NoError(t, err)
	require.Equal(t, "java -Xmx4G -jar 'a b.jar' nogui", got)
}
