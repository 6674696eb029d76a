package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/mc-updater/internal/config"
	"github.com/oshokin/mc-updater/internal/logger"
)

// ErrIO is returned for filesystem failures while handling the artifact.
var ErrIO = errors.New("artifact io")

// fallbackSuffix names the backup when the previous version is unknown.
const fallbackSuffix = "old"

// BackupPath returns where the artifact is copied before being replaced:
// <dir>/<stem>_<previous><ext>, or <dir>/<stem>_old<ext> when previous is empty.
func BackupPath(dir, artifactPath, previous string) string {
	base := filepath.Base(artifactPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	suffix := strings.TrimSpace(previous)
	if suffix == "" {
		suffix = fallbackSuffix
	}

	// A version must not escape the backup directory.
	suffix = strings.NewReplacer("/", "_", `\`, "_").Replace(suffix)

	return filepath.Join(dir, stem+"_"+suffix+ext)
}

// Backup copies artifactPath to backupPath. A missing artifact is not an
// error: it is logged and an empty path is returned.
func Backup(ctx context.Context, artifactPath, backupPath string) (string, error) {
	source, err := os.Open(filepath.Clean(artifactPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.InfoKV(ctx, "No existing artifact to back up", "path", artifactPath)
			return "", nil
		}

		return "", fmt.Errorf("open %s: %w: %w", artifactPath, ErrIO, err)
	}

	defer func() {
		_ = source.Close()
	}()

	if err = os.MkdirAll(filepath.Dir(backupPath), config.DefaultDirPermissions); err != nil {
		return "", fmt.Errorf("create backup directory: %w: %w", ErrIO, err)
	}

	target, err := os.OpenFile(filepath.Clean(backupPath), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, config.DefaultFilePermissions)
	if err != nil {
		return "", fmt.Errorf("create %s: %w: %w", backupPath, ErrIO, err)
	}

	if _, err = io.Copy(target, source); err != nil {
		_ = target.Close()

		return "", fmt.Errorf("copy to %s: %w: %w", backupPath, ErrIO, err)
	}

	if err = target.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w: %w", backupPath, ErrIO, err)
	}

	logger.InfoKV(ctx, "Artifact backed up", "from", artifactPath, "to", backupPath)

	return backupPath, nil
}
