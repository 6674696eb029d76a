// Package scrape locates the server artifact URL on the upstream download
// page. The page is scanned with plain substring search; the strategy sits
// behind LinkExtractor so it can be swapped without touching the updater.
package scrape
