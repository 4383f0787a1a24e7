package station

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewCatalogPreservesOrder(t *testing.T) {
	in := []Station{
		{ID: "b", Name: "B", URL: "https://example.com/b.mp3"},
		{ID: "a", Name: "A", URL: "https://example.com/a.mp3"},
		{ID: "c", Name: "C", URL: "http://example.com:8000/c"},
	}
	c, err := NewCatalog(in)
	if err != nil {
		t.Fatalf("NewCatalog() error: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	for i, s := range c.Stations() {
		if s != in[i] {
			t.Errorf("station[%d] = %+v, want %+v", i, s, in[i])
		}
	}

	got, ok := c.Lookup("a")
	if !ok || got.Name != "A" {
		t.Errorf("Lookup(a) = %+v, %v", got, ok)
	}
	if _, ok := c.Lookup("zzz"); ok {
		t.Error("Lookup of unknown ID should fail")
	}
	if s, ok := c.At(2); !ok || s.ID != "c" {
		t.Errorf("At(2) = %+v, %v", s, ok)
	}
	if _, ok := c.At(3); ok {
		t.Error("At(3) should be out of range")
	}
}

func TestNewCatalogEmpty(t *testing.T) {
	c, err := NewCatalog(nil)
	if err != nil {
		t.Fatalf("NewCatalog(nil) error: %v", err)
	}
	if c.Len() != 0 || len(c.Stations()) != 0 {
		t.Errorf("empty catalog has %d stations", c.Len())
	}
}

func TestNewCatalogRejects(t *testing.T) {
	tests := []struct {
		name     string
		stations []Station
	}{
		{"duplicate id", []Station{
			{ID: "a", Name: "A", URL: "https://example.com/1"},
			{ID: "a", Name: "A2", URL: "https://example.com/2"},
		}},
		{"empty id", []Station{{Name: "A", URL: "https://example.com/1"}}},
		{"empty name", []Station{{ID: "a", URL: "https://example.com/1"}}},
		{"bad scheme", []Station{{ID: "a", Name: "A", URL: "file:///etc/passwd"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCatalog(tt.stations); err == nil {
				t.Error("NewCatalog() should fail")
			}
		})
	}

	_, err := NewCatalog([]Station{
		{ID: "a", Name: "A", URL: "https://example.com/1"},
		{ID: "a", Name: "A", URL: "https://example.com/1"},
	})
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate error = %v, want ErrDuplicateID", err)
	}
}

func TestStationsReturnsCopy(t *testing.T) {
	c, _ := NewCatalog([]Station{{ID: "a", Name: "A", URL: "https://example.com/a"}})
	list := c.Stations()
	list[0].Name = "mutated"
	if s, _ := c.Lookup("a"); s.Name != "A" {
		t.Errorf("catalog mutated through Stations(): %q", s.Name)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Len() != len(Defaults) {
		t.Errorf("Len() = %d, want %d", c.Len(), len(Defaults))
	}
}

func TestLoadFromTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.toml")
	content := `
[[station]]
id = "one"
name = "One"
url = "https://example.com/one.mp3"

[[station]]
id = "two"
name = "Two"
url = "http://example.com:8000/two"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	list := c.Stations()
	if len(list) != 2 || list[0].ID != "one" || list[1].URL != "http://example.com:8000/two" {
		t.Errorf("unexpected stations: %+v", list)
	}
}

func TestLoadRejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.toml")
	content := `
[[station]]
id = "x"
name = "X"
url = "https://example.com/1"

[[station]]
id = "x"
name = "Y"
url = "https://example.com/2"
`
	os.WriteFile(path, []byte(content), 0644)
	if _, err := Load(path); err == nil {
		t.Fatal("Load() should fail on duplicate IDs")
	}
}

func TestMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "stations.toml")
	seed := []Station{{ID: "a", Name: "A", URL: "https://example.com/a"}}
	if err := Save(path, seed); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	added, err := Merge(path, []Station{
		{ID: "a", Name: "Another A", URL: "https://example.com/a2"},
		{ID: "dup", Name: "Dup URL", URL: "https://example.com/a"},
		{ID: "b", Name: "B", URL: "https://example.com/b"},
	})
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("added %d stations, want 2: %+v", len(added), added)
	}
	if added[0].ID != "a-2" {
		t.Errorf("colliding ID = %q, want a-2", added[0].ID)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	ids := []string{}
	for _, s := range c.Stations() {
		ids = append(ids, s.ID)
	}
	want := []string{"a", "a-2", "b"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids = %v, want %v", ids, want)
			break
		}
	}
}

func TestMergeSeedsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.toml")
	added, err := Merge(path, []Station{{ID: "new", Name: "New", URL: "https://example.com/new"}})
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	if len(added) != 1 {
		t.Fatalf("added = %d, want 1", len(added))
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Len() != len(Defaults)+1 {
		t.Errorf("Len() = %d, want %d", c.Len(), len(Defaults)+1)
	}
}

func TestMergeNothingNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.toml")
	added, err := Merge(path, []Station{Defaults[0]})
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	if len(added) != 0 {
		t.Errorf("added = %+v, want none", added)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should not be written when nothing was added")
	}
}
