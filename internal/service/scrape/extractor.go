package scrape

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oshokin/mc-updater/internal/logger"
)

// ErrNotFound is returned when no download link can be located.
var ErrNotFound = errors.New("download link not found")

// LinkExtractor turns a downloaded page into the artifact URL.
type LinkExtractor interface {
	ResolveDownloadURL(html string) (string, error)
}

// SubstringExtractor picks the first line containing both Extension and
// Attribute and returns the quoted value following Attribute.
type SubstringExtractor struct {
	// Extension is the token identifying the artifact, e.g. "jar".
	Extension string
	// Attribute is the hyperlink attribute, e.g. "href".
	Attribute string
}

// ResolveDownloadURL implements LinkExtractor.
func (e SubstringExtractor) ResolveDownloadURL(html string) (string, error) {
	scanner := bufio.NewScanner(strings.NewReader(html))
	// Minified pages can put the whole document on one line.
	scanner.Buffer(make([]byte, 0, 64*1024), len(html)+1)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, e.Extension) || !strings.Contains(line, e.Attribute) {
			continue
		}

		return e.quotedValue(line)
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan page: %w", err)
	}

	return "", fmt.Errorf("no line with %q and %q: %w", e.Extension, e.Attribute, ErrNotFound)
}

// quotedValue returns the text between `attribute="` and the next quote.
// Only the first matching line is considered, as the page lists a single server link.
func (e SubstringExtractor) quotedValue(line string) (string, error) {
	marker := e.Attribute + `="`

	_, rest, found := strings.Cut(line, marker)
	if !found {
		return "", fmt.Errorf("no %s attribute in matching line: %w", marker, ErrNotFound)
	}

	value, _, found := strings.Cut(rest, `"`)
	if !found {
		return "", fmt.Errorf("unterminated %s attribute: %w", e.Attribute, ErrNotFound)
	}

	return value, nil
}

// Fetcher downloads a page as text.
type Fetcher interface {
	GetText(ctx context.Context, url string) (string, error)
}

// Page resolves the download URL from a remote HTML page.
type Page struct {
	// fetcher performs the HTTP request.
	fetcher Fetcher
	// url is the download page location.
	url string
	// extractor scans the page body.
	extractor LinkExtractor
}

// NewPage creates a Page that scans url with extractor.
func NewPage(fetcher Fetcher, url string, extractor LinkExtractor) *Page {
	return &Page{
		fetcher:   fetcher,
		url:       url,
		extractor: extractor,
	}
}

// DownloadURL fetches the page and extracts the artifact URL.
func (p *Page) DownloadURL(ctx context.Context) (string, error) {
	html, err := p.fetcher.GetText(ctx, p.url)
	if err != nil {
		return "", fmt.Errorf("fetch download page: %w", err)
	}

	downloadURL, err := p.extractor.ResolveDownloadURL(html)
	if err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Download URL resolved", "url", downloadURL)

	return downloadURL, nil
}
