package release

// Release is the newest upstream build together with the artifact location.
type Release struct {
	// Version is the release identifier as published in the manifest.
	Version string
	// DownloadURL points to the server artifact of this release.
	DownloadURL string
}

// Actor identifies who started the update.
type Actor struct {
	// Hostname is the machine name where the run happens.
	Hostname string
	// Username is the system user running the updater.
	Username string
}

// String renders the actor as user@host.
func (a *Actor) String() string {
	if a == nil {
		return "unknown"
	}

	return a.Username + "@" + a.Hostname
}

// Status describes what a run did.
type Status int

const (
	// StatusUpToDate means the stored version already matched the latest release.
	StatusUpToDate Status = iota
	// StatusUpdateAvailable means a newer release exists but nothing was changed.
	StatusUpdateAvailable
	// StatusUpdated means the artifact was replaced and the server restarted.
	StatusUpdated
)

// String returns a lowercase label suitable for logs.
func (s Status) String() string {
	switch s {
	case StatusUpToDate:
		return "up-to-date"
	case StatusUpdateAvailable:
		return "update-available"
	case StatusUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// Outcome summarises a finished run.
type Outcome struct {
	// Status is the result of the run.
	Status Status
	// Previous is the version read from the marker file, possibly empty.
	Previous string
	// Latest is the release resolved from the manifest.
	Latest Release
	// BackupPath is the copy of the old artifact, empty when none was made.
	BackupPath string
}

// IsUpToDate compares the stored version with the latest one.
func IsUpToDate(stored, latest string) bool {
	return stored == latest
}
