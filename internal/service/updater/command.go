package updater

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/oshokin/mc-updater/internal/config"
	"github.com/oshokin/mc-updater/internal/domain/release"
	"github.com/oshokin/mc-updater/internal/logger"
	"github.com/oshokin/mc-updater/internal/repository/marker"
	"github.com/oshokin/mc-updater/internal/service/artifact"
	"github.com/oshokin/mc-updater/internal/service/common"
	"github.com/oshokin/mc-updater/internal/service/manifest"
	"github.com/oshokin/mc-updater/internal/service/scrape"
	"github.com/oshokin/mc-updater/internal/service/supervisor"
)

// Options are inputs accepted by the updater entry point.
type Options struct {
	// ConfigPath is the path to the optional settings YAML file.
	ConfigPath string
	// ConfigRequired makes a missing settings file an error.
	ConfigRequired bool
	// CheckOnly reports whether an update is available without changing anything.
	CheckOnly bool
	// Commands executes the session manager; nil means os/exec.
	Commands supervisor.CommandRunner
}

// VersionResolver returns the latest upstream release name.
type VersionResolver interface {
	LatestVersion(ctx context.Context) (string, error)
}

// LinkSource returns the artifact download URL.
type LinkSource interface {
	DownloadURL(ctx context.Context) (string, error)
}

// ProcessController stops and starts the server.
type ProcessController interface {
	Stop(ctx context.Context)
	Start(ctx context.Context)
	WaitForShutdown(ctx context.Context) error
}

// ArtifactInstaller downloads and installs the artifact.
type ArtifactInstaller interface {
	Install(ctx context.Context, url string) error
}

// runner holds the collaborators of a single update execution.
type runner struct {
	cfg       *config.Config
	resolver  VersionResolver
	links     LinkSource
	store     marker.Repository
	process   ProcessController
	installer ArtifactInstaller
}

// Run executes an update (or a check) and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) (*release.Outcome, error) {
	ctx = logger.WithName(ctx, "mc-updater")
	ctx = logger.WithKV(ctx, "run_id", uuid.NewString())

	cfg, err := config.Load(opts.ConfigPath, opts.ConfigRequired)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	ctx = logger.WithFields(ctx, "supervisor", cfg.Supervisor, "session", cfg.SessionName)

	commands := opts.Commands
	if commands == nil {
		commands = supervisor.ExecRunner{}
	}

	u, err := newRunner(cfg, commands)
	if err != nil {
		return nil, err
	}

	if opts.CheckOnly {
		return u.Check(ctx)
	}

	lock := newRunLock(cfg.LockFile, cfg.LockLifetime)
	if err = lock.Acquire(ctx); err != nil {
		return nil, err
	}

	defer lock.Release(ctx)

	outcome, err := u.Update(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Updater run failed", "error", err)
		return nil, err
	}

	logger.InfoKV(ctx, "Updater completed", "status", outcome.Status.String())

	return outcome, nil
}

// newRunner wires the production collaborators from settings.
func newRunner(cfg *config.Config, commands supervisor.CommandRunner) (*runner, error) {
	pageClient := common.NewClient(common.WithCallTimeout(cfg.HTTPTimeout))
	downloadClient := common.NewClient()

	sup, err := supervisor.New(cfg, commands)
	if err != nil {
		return nil, err
	}

	extractor := scrape.SubstringExtractor{
		Extension: cfg.LinkExtension,
		Attribute: cfg.LinkAttribute,
	}

	return &runner{
		cfg:      cfg,
		resolver: manifest.NewResolver(pageClient, cfg.ManifestURL, cfg.ManifestField),
		links:    scrape.NewPage(pageClient, cfg.DownloadPageURL, extractor),
		store:    marker.NewFileRepository(cfg.VersionFile),
		process: supervisor.NewController(sup,
			supervisor.WithPollInterval(cfg.PollInterval),
			supervisor.WithShutdownTimeout(cfg.ShutdownTimeout)),
		installer: artifact.NewInstaller(downloadClient, cfg.ArtifactPath, cfg.DownloadTimeout),
	}, nil
}

// Check resolves the latest release and compares it with the stored version.
// It never changes anything on disk or in the process table.
func (u *runner) Check(ctx context.Context) (*release.Outcome, error) {
	logger.Info(ctx, "Resolving the latest version from the manifest")

	latest, err := u.resolver.LatestVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve latest version: %w", err)
	}

	logger.Info(ctx, "Resolving the download URL")

	downloadURL, err := u.links.DownloadURL(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve download url: %w", err)
	}

	stored := u.store.Read(ctx)
	logger.InfoKV(ctx, "Stored version read", "version", stored)

	outcome := &release.Outcome{
		Previous: stored,
		Latest: release.Release{
			Version:     latest,
			DownloadURL: downloadURL,
		},
	}

	if release.IsUpToDate(stored, latest) {
		outcome.Status = release.StatusUpToDate
		logger.InfoKV(ctx, "Server is already up to date", "version", latest)

		return outcome, nil
	}

	outcome.Status = release.StatusUpdateAvailable
	logger.InfoKV(ctx, "Update available", "current", stored, "latest", latest)

	return outcome, nil
}

// Update runs Check and, when stale, replaces the artifact:
// 1) Stop the server and wait for the session to end.
// 2) Back up the current artifact.
// 3) Record the new version.
// 4) Download and install the new artifact.
// 5) Start the server.
// The steps are not transactional: a failure after 3) leaves the marker
// ahead of the installed artifact.
func (u *runner) Update(ctx context.Context) (*release.Outcome, error) {
	outcome, err := u.Check(ctx)
	if err != nil || outcome.Status == release.StatusUpToDate {
		return outcome, err
	}

	u.logActor(ctx)

	logger.InfoKV(ctx, "Stopping the server", "session", u.cfg.SessionName)
	u.process.Stop(ctx)

	if err = u.process.WaitForShutdown(ctx); err != nil {
		return nil, fmt.Errorf("wait for shutdown: %w", err)
	}

	backupPath := artifact.BackupPath(u.cfg.BackupDir, u.cfg.ArtifactPath, outcome.Previous)

	outcome.BackupPath, err = artifact.Backup(ctx, u.cfg.ArtifactPath, backupPath)
	if err != nil {
		return nil, fmt.Errorf("back up artifact: %w", err)
	}

	if err = u.store.Write(ctx, outcome.Latest.Version); err != nil {
		return nil, fmt.Errorf("record version: %w", err)
	}

	if err = u.installer.Install(ctx, outcome.Latest.DownloadURL); err != nil {
		return nil, fmt.Errorf("install artifact: %w", err)
	}

	logger.InfoKV(ctx, "Starting the server", "session", u.cfg.SessionName)
	u.process.Start(ctx)

	outcome.Status = release.StatusUpdated

	return outcome, nil
}

func (u *runner) logActor(ctx context.Context) {
	actor, err := common.DetectActor()
	if err != nil {
		logger.WarnKV(ctx, "Unable to detect the current user", "error", err)
		return
	}

	logger.InfoKV(ctx, "Update started", "actor", actor.String())
}
