package directory

import (
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tuner/internal/httputil"
	"tuner/internal/station"
)

// streamExtensions are link suffixes treated as playable streams or playlists.
var streamExtensions = map[string]bool{
	".mp3": true, ".aac": true, ".ogg": true, ".opus": true, ".flac": true,
	".m3u": true, ".m3u8": true, ".pls": true,
}

// parseStations extracts stream links from a page: anchors pointing at
// stream files, elements carrying data-stream, and audio sources.
// Relative links are resolved against base; duplicates keep the first.
func parseStations(doc *goquery.Document, base string) []station.Station {
	var stations []station.Station
	seen := make(map[string]bool)

	add := func(name, href string) {
		if href == "" {
			return
		}
		abs, err := httputil.ResolveURL(base, href)
		if err != nil || httputil.ValidateURL(abs) != nil || seen[abs] {
			return
		}
		seen[abs] = true

		if name == "" {
			name = nameFromURL(abs)
		}
		stations = append(stations, station.Station{
			ID:   httputil.Slug(name),
			Name: name,
			URL:  abs,
		})
	}

	doc.Find("a[href], [data-stream], audio[src], audio source[src]").Each(func(_ int, s *goquery.Selection) {
		switch {
		case s.Is("[data-stream]"):
			add(label(s), s.AttrOr("data-stream", ""))
		case s.Is("a"):
			href := s.AttrOr("href", "")
			if isStreamLink(href) {
				add(label(s), href)
			}
		case s.Is("source"):
			add(label(s.Closest("audio")), s.AttrOr("src", ""))
		default:
			add(label(s), s.AttrOr("src", ""))
		}
	})

	return uniqueIDs(stations)
}

// label picks a display name: title attribute, then aria-label, then text.
func label(s *goquery.Selection) string {
	for _, attr := range []string{"title", "aria-label"} {
		if v := strings.TrimSpace(s.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	return strings.Join(strings.Fields(s.Text()), " ")
}

func isStreamLink(href string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	return streamExtensions[strings.ToLower(path.Ext(u.Path))]
}

// nameFromURL falls back to the last path segment, or the host.
func nameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if base := path.Base(u.Path); base != "/" && base != "." {
		return strings.TrimSuffix(base, path.Ext(base))
	}
	return u.Host
}

// uniqueIDs suffixes repeated slugs so every ID in the import is distinct,
// including against slugs that already end in a number.
func uniqueIDs(stations []station.Station) []station.Station {
	taken := make(map[string]bool, len(stations))
	for _, s := range stations {
		taken[s.ID] = true
	}
	used := make(map[string]bool, len(stations))
	for i := range stations {
		id := stations[i].ID
		if used[id] {
			for n := 2; ; n++ {
				candidate := id + "-" + strconv.Itoa(n)
				if !taken[candidate] {
					id = candidate
					break
				}
			}
		}
		taken[id] = true
		used[id] = true
		stations[i].ID = id
	}
	return stations
}
