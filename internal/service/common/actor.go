//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"fmt"
	"os"
	"os/user"

	"github.com/oshokin/mc-updater/internal/domain/release"
)

// errUnknownUser is returned when neither the user database nor the
// environment names the current user.
var errUnknownUser = errors.New("unable to determine the current user")

// lookupFunc resolves the current user; replaced in tests.
type lookupFunc func() (*user.User, error)

// DetectActor reports which host and account started the run. Cron jobs in
// minimal containers often have no passwd entry, so $USER and $LOGNAME are
// consulted when the lookup fails.
func DetectActor() (*release.Actor, error) {
	return detectActor(user.Current, os.Getenv)
}

func detectActor(lookup lookupFunc, getenv func(string) string) (*release.Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	actor := &release.Actor{Hostname: hostname}

	if current, lookupErr := lookup(); lookupErr == nil && current.Username != "" {
		actor.Username = current.Username
		return actor, nil
	}

	for _, key := range []string{"USER", "LOGNAME"} {
		if name := getenv(key); name != "" {
			actor.Username = name
			return actor, nil
		}
	}

	return nil, errUnknownUser
}
