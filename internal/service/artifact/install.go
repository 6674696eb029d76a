package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/mc-updater/internal/config"
	"github.com/oshokin/mc-updater/internal/logger"
)

// Opener starts a download and returns the body to stream from.
type Opener interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// Installer downloads the artifact and swaps it in place.
type Installer struct {
	// opener fetches the artifact body.
	opener Opener
	// targetPath is where the artifact lives.
	targetPath string
	// timeout bounds the whole transfer; zero means no extra bound.
	timeout time.Duration
}

// NewInstaller creates an Installer writing to targetPath.
func NewInstaller(opener Opener, targetPath string, timeout time.Duration) *Installer {
	return &Installer{
		opener:     opener,
		targetPath: filepath.Clean(targetPath),
		timeout:    timeout,
	}
}

// Install downloads url and replaces the artifact with the response body.
func (i *Installer) Install(ctx context.Context, url string) error {
	if i.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	logger.InfoKV(ctx, "Downloading artifact", "url", url)

	body, err := i.opener.Open(ctx, url)
	if err != nil {
		return fmt.Errorf("download artifact: %w", err)
	}

	defer func() {
		_ = body.Close()
	}()

	if err = i.apply(body); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Artifact installed", "path", i.targetPath)

	return nil
}

// apply writes data next to the target and renames it over the old file.
// go-update keeps the previous file as a hidden ".<name>.old" during the swap
// and removes it on success.
func (i *Installer) apply(data io.Reader) error {
	// go-update renames the current file away first, so it must exist.
	placeholder, err := i.ensureTarget()
	if err != nil {
		return err
	}

	options := goupdate.Options{
		TargetPath: i.targetPath,
		TargetMode: config.DefaultFilePermissions,
	}

	if err = goupdate.Apply(data, options); err != nil {
		if placeholder {
			_ = os.Remove(i.targetPath)
		}

		return fmt.Errorf("replace %s: %w: %w", i.targetPath, ErrIO, err)
	}

	return nil
}

// ensureTarget creates an empty target when none exists and reports whether it did.
func (i *Installer) ensureTarget() (bool, error) {
	if _, err := os.Stat(i.targetPath); !errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	file, err := os.OpenFile(i.targetPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, config.DefaultFilePermissions)
	if err != nil {
		return false, fmt.Errorf("create %s: %w: %w", i.targetPath, ErrIO, err)
	}

	_ = file.Close()

	return true, nil
}
