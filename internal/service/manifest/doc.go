// Package manifest resolves the latest release name from the upstream
// version manifest, a JSON document walked along a dotted field path.
package manifest
