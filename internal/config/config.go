package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of an update run. Zero values are replaced by
// the compiled-in defaults during validation.
type Config struct {
	// ManifestURL is the JSON document listing released versions.
	ManifestURL string `yaml:"manifest_url"`
	// ManifestField is the dotted path to the latest release name inside the manifest.
	ManifestField string `yaml:"manifest_field"`
	// DownloadPageURL is the HTML page that links the server artifact.
	DownloadPageURL string `yaml:"download_page_url"`
	// LinkExtension is the token a line must contain to be considered a download link.
	LinkExtension string `yaml:"link_extension"`
	// LinkAttribute is the hyperlink attribute holding the URL.
	LinkAttribute string `yaml:"link_attribute"`

	// ArtifactPath is where the server artifact lives.
	ArtifactPath string `yaml:"artifact_path"`
	// VersionFile is the plain-text marker with the last applied version.
	VersionFile string `yaml:"version_file"`
	// BackupDir receives a copy of the artifact before it is replaced.
	BackupDir string `yaml:"backup_dir"`
	// LockFile prevents two runs from overlapping.
	LockFile string `yaml:"lock_file"`

	// Supervisor selects the session manager: "screen" or "tmux".
	Supervisor string `yaml:"supervisor"`
	// SessionName is the named session hosting the server.
	SessionName string `yaml:"session_name"`
	// JavaPath is the Java executable used to start the server.
	JavaPath string `yaml:"java_path"`
	// MinMemory and MaxMemory become the -Xms and -Xmx flags.
	MinMemory string `yaml:"min_memory"`
	MaxMemory string `yaml:"max_memory"`

	// PollInterval is the delay between session list checks while waiting for shutdown.
	PollInterval time.Duration `yaml:"poll_interval"`
	// ShutdownTimeout bounds the wait for the server to stop.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// HTTPTimeout bounds the manifest and download page requests.
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	// DownloadTimeout bounds the artifact download.
	DownloadTimeout time.Duration `yaml:"download_timeout"`
	// LockLifetime is the age after which a leftover lock file is considered stale.
	LockLifetime time.Duration `yaml:"lock_lifetime"`
}

const (
	// DefaultConfigFilename is the optional settings file looked up in the working directory.
	DefaultConfigFilename = "mc-updater.yaml"

	DefaultManifestURL     = "https://launchermeta.mojang.com/mc/game/version_manifest.json"
	DefaultManifestField   = "latest.release"
	DefaultDownloadPageURL = "https://www.minecraft.net/en-us/download/server"
	DefaultLinkExtension   = "jar"
	DefaultLinkAttribute   = "href"

	DefaultArtifactPath = "server.jar"
	DefaultVersionFile  = "mc_version.txt"
	DefaultBackupDir    = "backup"
	DefaultLockFile     = "mc-updater.lock"

	SupervisorScreen = "screen"
	SupervisorTmux   = "tmux"

	DefaultSessionName = "minecraft"
	DefaultJavaPath    = "java"
	DefaultMinMemory   = "1G"
	DefaultMaxMemory   = "4G"

	DefaultPollInterval    = 5 * time.Second
	DefaultShutdownTimeout = 5 * time.Minute
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultDownloadTimeout = 10 * time.Minute
	DefaultLockLifetime    = 30 * time.Minute

	// DefaultFilePermissions is used for files written by the updater.
	DefaultFilePermissions = 0o644
	// DefaultDirPermissions is used for the backup directory.
	DefaultDirPermissions = 0o755
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownSupervisor is returned for an unsupported session manager.
	errUnknownSupervisor = errors.New("unknown supervisor")
	// errInvalidURL is returned when an endpoint is not an absolute http(s) URL.
	errInvalidURL = errors.New("invalid url")
	// errInvalidDuration is returned for negative durations.
	errInvalidDuration = errors.New("duration must not be negative")
)

// Default returns a configuration populated with the compiled-in defaults.
func Default() *Config {
	return &Config{
		ManifestURL:     DefaultManifestURL,
		ManifestField:   DefaultManifestField,
		DownloadPageURL: DefaultDownloadPageURL,
		LinkExtension:   DefaultLinkExtension,
		LinkAttribute:   DefaultLinkAttribute,
		ArtifactPath:    DefaultArtifactPath,
		VersionFile:     DefaultVersionFile,
		BackupDir:       DefaultBackupDir,
		LockFile:        DefaultLockFile,
		Supervisor:      SupervisorScreen,
		SessionName:     DefaultSessionName,
		JavaPath:        DefaultJavaPath,
		MinMemory:       DefaultMinMemory,
		MaxMemory:       DefaultMaxMemory,
		PollInterval:    DefaultPollInterval,
		ShutdownTimeout: DefaultShutdownTimeout,
		HTTPTimeout:     DefaultHTTPTimeout,
		DownloadTimeout: DefaultDownloadTimeout,
		LockLifetime:    DefaultLockLifetime,
	}
}

// Load reads configuration from path. When the file does not exist and
// required is false, the defaults are returned instead.
func Load(path string, required bool) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to path as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills empty fields with defaults and checks the rest.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	applyDefaults(cfg)

	for _, endpoint := range []string{cfg.ManifestURL, cfg.DownloadPageURL} {
		if err := validateURL(endpoint); err != nil {
			return err
		}
	}

	cfg.Supervisor = strings.ToLower(strings.TrimSpace(cfg.Supervisor))
	switch cfg.Supervisor {
	case SupervisorScreen, SupervisorTmux:
	default:
		return fmt.Errorf("%q: %w", cfg.Supervisor, errUnknownSupervisor)
	}

	durations := map[string]time.Duration{
		"poll_interval":    cfg.PollInterval,
		"shutdown_timeout": cfg.ShutdownTimeout,
		"http_timeout":     cfg.HTTPTimeout,
		"download_timeout": cfg.DownloadTimeout,
		"lock_lifetime":    cfg.LockLifetime,
	}
	for name, value := range durations {
		if value < 0 {
			return fmt.Errorf("%s: %w", name, errInvalidDuration)
		}
	}

	return nil
}

func applyDefaults(cfg *Config) {
	defaults := Default()

	setString := func(value *string, fallback string) {
		if strings.TrimSpace(*value) == "" {
			*value = fallback
		}
	}

	setDuration := func(value *time.Duration, fallback time.Duration) {
		if *value == 0 {
			*value = fallback
		}
	}

	setString(&cfg.ManifestURL, defaults.ManifestURL)
	setString(&cfg.ManifestField, defaults.ManifestField)
	setString(&cfg.DownloadPageURL, defaults.DownloadPageURL)
	setString(&cfg.LinkExtension, defaults.LinkExtension)
	setString(&cfg.LinkAttribute, defaults.LinkAttribute)
	setString(&cfg.ArtifactPath, defaults.ArtifactPath)
	setString(&cfg.VersionFile, defaults.VersionFile)
	setString(&cfg.BackupDir, defaults.BackupDir)
	setString(&cfg.LockFile, defaults.LockFile)
	setString(&cfg.Supervisor, defaults.Supervisor)
	setString(&cfg.SessionName, defaults.SessionName)
	setString(&cfg.JavaPath, defaults.JavaPath)
	setString(&cfg.MinMemory, defaults.MinMemory)
	setString(&cfg.MaxMemory, defaults.MaxMemory)

	setDuration(&cfg.PollInterval, defaults.PollInterval)
	setDuration(&cfg.ShutdownTimeout, defaults.ShutdownTimeout)
	setDuration(&cfg.HTTPTimeout, defaults.HTTPTimeout)
	setDuration(&cfg.DownloadTimeout, defaults.DownloadTimeout)
	setDuration(&cfg.LockLifetime, defaults.LockLifetime)
}

func validateURL(raw string) error {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("%q: %w", raw, errInvalidURL)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%q: unsupported scheme: %w", raw, errInvalidURL)
	}

	return nil
}
