package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func TestFetch(t *testing.T) {
	page, err := os.ReadFile("testdata/stations.html")
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/list/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write(page)
	}))
	defer srv.Close()

	stations, err := New().Fetch(context.Background(), srv.URL+"/list/")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(stations) != 5 {
		t.Fatalf("expected 5 stations, got %d", len(stations))
	}
	if want := srv.URL + "/listen/drone.pls"; stations[1].URL != want {
		t.Errorf("relative link resolved to %q, want %q", stations[1].URL, want)
	}
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/empty":
			w.Write([]byte("<html><body><p>nothing here</p></body></html>"))
		default:
			http.Error(w, "gone", http.StatusGone)
		}
	}))
	defer srv.Close()

	d := New()
	for _, u := range []string{srv.URL + "/empty", srv.URL + "/missing", "ftp://example.com/list"} {
		if _, err := d.Fetch(context.Background(), u); err == nil {
			t.Errorf("Fetch(%s) should fail", u)
		}
	}
}
