package manifest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/mc-updater/internal/logger"
)

var (
	// ErrNetwork is returned when the manifest cannot be fetched.
	ErrNetwork = errors.New("fetch manifest")
	// ErrParse is returned when the manifest is not a JSON object.
	ErrParse = errors.New("parse manifest")
	// ErrMissingField is returned when the field path does not lead to a non-empty string.
	ErrMissingField = errors.New("manifest field missing")
)

// Fetcher downloads a document in full.
type Fetcher interface {
	GetBytes(ctx context.Context, url string) ([]byte, error)
}

// Resolver reads the latest release name from a remote manifest.
type Resolver struct {
	// fetcher performs the HTTP request.
	fetcher Fetcher
	// url is the manifest location.
	url string
	// fieldPath is the dotted path to the release name, e.g. "latest.release".
	fieldPath string
}

// NewResolver creates a Resolver for the manifest at url.
func NewResolver(fetcher Fetcher, url, fieldPath string) *Resolver {
	return &Resolver{
		fetcher:   fetcher,
		url:       url,
		fieldPath: fieldPath,
	}
}

// LatestVersion downloads the manifest and returns the value at the field path.
func (r *Resolver) LatestVersion(ctx context.Context) (string, error) {
	data, err := r.fetcher.GetBytes(ctx, r.url)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	latest, err := ExtractField(data, r.fieldPath)
	if err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Latest version resolved", "version", latest)

	return latest, nil
}

// ExtractField parses data as a JSON object and returns the string found at
// the dotted path, unchanged.
func ExtractField(data []byte, path string) (string, error) {
	var document structpb.Struct
	if err := protojson.Unmarshal(data, &document); err != nil {
		return "", fmt.Errorf("%w: %w", ErrParse, err)
	}

	current := structpb.NewStructValue(&document)

	for _, segment := range strings.Split(path, ".") {
		fields := current.GetStructValue().GetFields()

		next, found := fields[segment]
		if !found {
			return "", fmt.Errorf("%q: %w", path, ErrMissingField)
		}

		current = next
	}

	value, ok := current.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%q is not a string: %w", path, ErrMissingField)
	}

	if strings.TrimSpace(value.StringValue) == "" {
		return "", fmt.Errorf("%q is empty: %w", path, ErrMissingField)
	}

	return value.StringValue, nil
}
