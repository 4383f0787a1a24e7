package ui

import (
	"tuner/internal/station"
)

var testStations = []station.Station{
	{ID: "groove-salad", Name: "Groove Salad", URL: "https://ice1.somafm.com/groovesalad-128-mp3"},
	{ID: "fip", Name: "FIP", URL: "https://icecast.radiofrance.fr/fip-midfi.mp3"},
	{ID: "nightride", Name: "Nightride FM", URL: "https://stream.nightride.fm/nightride.mp3"},
}

// fakeControls records what the adapters ask of the controller.
type fakeControls struct {
	selected []string
	toggles  int
	volumes  []int
	texts    []string
	textErr  error
}

func (f *fakeControls) SelectStation(s station.Station) { f.selected = append(f.selected, s.ID) }

func (f *fakeControls) TogglePlay() error {
	f.toggles++
	return nil
}

func (f *fakeControls) SetVolume(raw int) { f.volumes = append(f.volumes, raw) }

func (f *fakeControls) SetVolumeText(raw string) error {
	f.texts = append(f.texts, raw)
	return f.textErr
}
