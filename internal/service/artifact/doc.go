// Package artifact backs up and replaces the server artifact.
//
// Backups are plain copies named after the replaced version; the new
// artifact is streamed from the download URL and swapped in atomically with
// go-update.
package artifact
