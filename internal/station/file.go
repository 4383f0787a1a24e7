package station

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// file is the on-disk layout of stations.toml:
//
//	[[station]]
//	id = "groove-salad"
//	name = "SomaFM Groove Salad"
//	url = "https://ice1.somafm.com/groovesalad-128-mp3"
type file struct {
	Stations []Station `toml:"station"`
}

// Defaults is the catalog used when no stations file exists.
var Defaults = []Station{
	{ID: "groove-salad", Name: "SomaFM Groove Salad", URL: "https://ice1.somafm.com/groovesalad-128-mp3"},
	{ID: "drone-zone", Name: "SomaFM Drone Zone", URL: "https://ice1.somafm.com/dronezone-128-mp3"},
	{ID: "radio-paradise", Name: "Radio Paradise", URL: "https://stream.radioparadise.com/mp3-192"},
	{ID: "nightride", Name: "Nightride FM", URL: "https://stream.nightride.fm/nightride.mp3"},
	{ID: "fip", Name: "FIP", URL: "https://icecast.radiofrance.fr/fip-midfi.mp3"},
}

// Load reads a stations file. A missing file yields the default catalog.
func Load(path string) (*Catalog, error) {
	stations, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if stations == nil {
		return NewCatalog(Defaults)
	}
	c, err := NewCatalog(stations)
	if err != nil {
		return nil, fmt.Errorf("invalid stations file %s: %w", path, err)
	}
	return c, nil
}

// readFile returns nil, nil when the file does not exist.
func readFile(path string) ([]Station, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading stations: %w", err)
	}

	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing stations %s: %w", path, err)
	}
	if f.Stations == nil {
		f.Stations = []Station{}
	}
	return f.Stations, nil
}

// Merge appends incoming stations to the file at path, skipping any whose ID
// or URL is already present. When the file does not exist yet it is seeded
// with the defaults first. Returns the stations actually added.
func Merge(path string, incoming []Station) ([]Station, error) {
	existing, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		existing = append([]Station(nil), Defaults...)
	}

	ids := make(map[string]bool, len(existing))
	urls := make(map[string]bool, len(existing))
	for _, s := range existing {
		ids[s.ID] = true
		urls[s.URL] = true
	}

	var added []Station
	for _, s := range incoming {
		if urls[s.URL] {
			continue
		}
		s.ID = uniqueID(s.ID, ids)
		if err := s.Validate(); err != nil {
			return nil, err
		}
		ids[s.ID] = true
		urls[s.URL] = true
		added = append(added, s)
	}

	if len(added) == 0 {
		return nil, nil
	}
	if err := Save(path, append(existing, added...)); err != nil {
		return nil, err
	}
	return added, nil
}

func uniqueID(id string, taken map[string]bool) string {
	if !taken[id] {
		return id
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if !taken[candidate] {
			return candidate
		}
	}
}

// Save writes stations to path atomically (temp file + rename).
func Save(path string, stations []Station) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating stations dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "stations-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	writer := bufio.NewWriter(tmpFile)
	if err := toml.NewEncoder(writer).Encode(file{Stations: stations}); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encoding stations: %w", err)
	}

	if err := writer.Flush(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flushing stations: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming stations file: %w", err)
	}

	return nil
}
