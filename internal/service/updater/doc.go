// Package updater keeps the server artifact at the latest upstream release.
//
// A run resolves the latest version and its download URL, compares it with
// the version marker and, when stale, stops the server, backs up the current
// artifact, records the new version, installs the new artifact and starts
// the server again. A lock file prevents overlapping runs.
package updater
