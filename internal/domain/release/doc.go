// Package release contains the domain model of an update run: the release
// advertised upstream, the operator that triggered the run and the outcome.
package release
