package artifact

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/mc-updater/internal/service/common"
)

func serveArtifact(t *testing.T, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

// TestInstaller_ReplacesExisting swaps the artifact contents.
func TestInstaller_ReplacesExisting(t *testing.T) {
	t.Parallel()

	srv := serveArtifact(t, "new-jar")

	target := filepath.Join(t.TempDir(), "server.jar")
	require.NoError(t, os.WriteFile(target, []byte("old-jar"), 0o600))

	installer := NewInstaller(common.NewClient(), target, time.Minute)
	require.NoError(t, installer.Install(context.Background(), srv.URL+"/server.jar"))

	contents, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "new-jar", string(contents))

	_, err = os.Stat(filepath.Join(filepath.Dir(target), ".server.jar.old"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestInstaller_KeepsUnrelatedOldFile leaves an operator's own copy alone.
func TestInstaller_KeepsUnrelatedOldFile(t *testing.T) {
	t.Parallel()

	srv := serveArtifact(t, "new-jar")

	dir := t.TempDir()
	target := filepath.Join(dir, "server.jar")
	manualCopy := filepath.Join(dir, "server.jar.old")

	require.NoError(t, os.WriteFile(target, []byte("old-jar"), 0o600))
	require.NoError(t, os.WriteFile(manualCopy, []byte("kept-by-hand"), 0o600))

	require.NoError(t, NewInstaller(common.NewClient(), target, time.Minute).Install(context.Background(), srv.URL))

	contents, err := os.ReadFile(manualCopy)
	require.NoError(t, err)
	require.Equal(t, "kept-by-hand", string(contents))
}

// TestInstaller_CreatesMissing installs when no artifact exists yet.
func TestInstaller_CreatesMissing(t *testing.T) {
	t.Parallel()

	srv := serveArtifact(t, "first-jar")

	target := filepath.Join(t.TempDir(), "server.jar")

	require.NoError(t, NewInstaller(common.NewClient(), target, 0).Install(context.Background(), srv.URL))

	contents, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "first-jar", string(contents))
}

// TestInstaller_DownloadFails leaves the artifact untouched.
func TestInstaller_DownloadFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	target := filepath.Join(t.TempDir(), "server.jar")
	require.NoError(t, os.WriteFile(target, []byte("old-jar"), 0o600))

	err := NewInstaller(common.NewClient(), target, time.Minute).Install(context.Background(), srv.URL)
	require.ErrorIs(t, err, common.ErrBadHTTPStatus)

	contents, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "old-jar", string(contents))
}

type brokenOpener struct{}

func (brokenOpener) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(iotest.ErrReader(errors.New("connection reset"))), nil
}

// TestInstaller_BrokenStreamOnFreshInstall leaves no empty artifact behind.
func TestInstaller_BrokenStreamOnFreshInstall(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "server.jar")

	err := NewInstaller(brokenOpener{}, target, 0).Install(context.Background(), "http://unused/server.jar")
	require.ErrorIs(t, err, ErrIO)
	require.NoFileExists(t, target)
}

// TestInstaller_BrokenStreamKeepsExisting leaves the current artifact in place.
func TestInstaller_BrokenStreamKeepsExisting(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "server.jar")
	require.NoError(t, os.WriteFile(target, []byte("old-jar"), 0o600))

	err := NewInstaller(brokenOpener{}, target, 0).Install(context.Background(), "http://unused/server.jar")
	require.ErrorIs(t, err, ErrIO)

	contents, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "old-jar", string(contents))
}
