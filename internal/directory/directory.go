// Package directory imports stations from web pages that list stream links.
// Pages are parsed as DOM with goquery; nothing from them is executed.
package directory

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"

	"tuner/internal/httputil"
	"tuner/internal/station"
)

// Directory fetches station listing pages.
type Directory struct {
	client *http.Client
}

// New creates a directory importer with the hardened client.
func New() *Directory {
	return &Directory{client: httputil.NewClient()}
}

// Fetch downloads pageURL and returns the stations it links to, in page order.
func (d *Directory) Fetch(ctx context.Context, pageURL string) ([]station.Station, error) {
	body, err := httputil.GetPage(ctx, d.client, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", pageURL, err)
	}

	stations := parseStations(doc, pageURL)
	if len(stations) == 0 {
		return nil, fmt.Errorf("no stream links found on %s", pageURL)
	}
	return stations, nil
}
