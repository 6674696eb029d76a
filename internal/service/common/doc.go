// Package common holds helpers shared by several services.
//
// It provides a small HTTP client wrapper with per-call timeouts and status
// checking, and detection of the current system actor (hostname/username)
// for the audit trail of an update run.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
