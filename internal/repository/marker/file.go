package marker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/oshokin/mc-updater/internal/config"
	"github.com/oshokin/mc-updater/internal/logger"
)

// Repository defines persistence operations for the version marker.
type Repository interface {
	Read(ctx context.Context) string
	Write(ctx context.Context, version string) error
}

// FileRepository stores the version marker in a single file on disk.
type FileRepository struct {
	// path is the filesystem location of the marker file.
	path string
	// mu serialises access to the marker file.
	mu sync.Mutex
}

// ErrIO is returned when the marker file cannot be written.
var ErrIO = errors.New("version marker io")

// NewFileRepository creates a repository backed by the file at path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Read returns the trimmed marker contents. A missing or unreadable file
// yields an empty string.
func (r *FileRepository) Read(ctx context.Context) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.WarnKV(ctx, "Unable to read version marker, assuming no version", "path", r.path, "error", err)
		}

		return ""
	}

	return strings.TrimSpace(string(contents))
}

// Write replaces the marker contents with version.
func (r *FileRepository) Write(_ context.Context, version string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.WriteFile(r.path, []byte(version), config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write %s: %w: %w", r.path, ErrIO, err)
	}

	return nil
}
