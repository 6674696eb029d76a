// Package marker persists the version marker: a plain-text file holding the
// release identifier of the artifact currently in place.
//
// The FileRepository implements the Repository interface the updater
// depends on.
package marker
