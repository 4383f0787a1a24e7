package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tuner/internal/station"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var (
	paradise = station.Station{ID: "radio-paradise", Name: "Radio Paradise", URL: "https://stream.radioparadise.com/mp3-192"}
	fip      = station.Station{ID: "fip", Name: "FIP", URL: "https://icecast.radiofrance.fr/fip-midfi.mp3"}
)

func TestSaveAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	if err := s.Save(ctx, paradise, base); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := s.Save(ctx, fip, base.Add(time.Hour)); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	entries, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].StationID != "fip" || entries[1].StationID != "radio-paradise" {
		t.Errorf("order = %s, %s; want newest first", entries[0].StationID, entries[1].StationID)
	}
	if !entries[1].StartedAt.Equal(base) {
		t.Errorf("StartedAt = %v, want %v", entries[1].StartedAt, base)
	}
	if entries[1].URL != paradise.URL || entries[1].Name != paradise.Name {
		t.Errorf("entry = %+v", entries[1])
	}
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Now()
	for i := 0; i < 5; i++ {
		s.Save(ctx, paradise, base.Add(time.Duration(i)*time.Minute))
	}

	entries, err := s.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("expected 3 entries, got %d", len(entries))
	}
}

func TestSavePrunes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < maxEntries+5; i++ {
		if err := s.Save(ctx, fip, base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("Save() error: %v", err)
		}
	}

	entries, err := s.Recent(ctx, maxEntries*2)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(entries) != maxEntries {
		t.Fatalf("expected %d entries after pruning, got %d", maxEntries, len(entries))
	}
	oldest := entries[len(entries)-1].StartedAt
	if want := base.Add(5 * time.Second); !oldest.Equal(want) {
		t.Errorf("oldest kept = %v, want %v", oldest, want)
	}
}

func TestRemoveAndClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	s.Save(ctx, paradise, now)
	s.Save(ctx, fip, now)
	s.Save(ctx, paradise, now)

	if err := s.Remove(ctx, "radio-paradise"); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	entries, _ := s.Recent(ctx, 10)
	if len(entries) != 1 || entries[0].StationID != "fip" {
		t.Fatalf("after remove: %+v", entries)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	entries, _ = s.Recent(ctx, 10)
	if len(entries) != 0 {
		t.Errorf("after clear: %d entries", len(entries))
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Save(context.Background(), fip, time.Now())
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s.Close()
	entries, _ := s.Recent(context.Background(), 10)
	if len(entries) != 1 {
		t.Errorf("expected 1 entry after reopen, got %d", len(entries))
	}
}

func TestFormatForDisplay(t *testing.T) {
	at := time.Date(2026, 3, 1, 20, 5, 0, 0, time.Local)
	items := FormatForDisplay([]Entry{{StationID: "fip", Name: "FIP", StartedAt: at}})
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if !strings.HasPrefix(items[0], "2026-03-01 20:05  FIP") || !strings.HasSuffix(items[0], " fip") {
		t.Errorf("display = %q", items[0])
	}
}
