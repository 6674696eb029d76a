package release

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStatusString checks the log labels of every status.
func TestStatusString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "up-to-date", StatusUpToDate.String())
	require.Equal(t, "update-available", StatusUpdateAvailable.String())
	require.Equal(t, "updated", StatusUpdated.String())
	require.Equal(t, "unknown", Status(42).String())
}

// TestActorString covers nil and populated actors.
func TestActorString(t *testing.T) {
	t.Parallel()

	var actor *Actor
	require.Equal(t, "unknown", actor.String())

	actor = &Actor{Hostname: "mc-host", Username: "steve"}
	require.Equal(t, "steve@mc-host", actor.String())
}

// TestIsUpToDate compares versions verbatim.
func TestIsUpToDate(t *testing.T) {
	t.Parallel()

	require.True(t, IsUpToDate("1.20.2", "1.20.2"))
	require.False(t, IsUpToDate("1.20.1", "1.20.2"))
	require.False(t, IsUpToDate("", "1.21.0"))
}
