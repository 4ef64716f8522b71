package meta

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWatchURL(t *testing.T) {
	got := WatchURL("abc123")
	want := "https://www.youtube.com/watch?v=abc123"
	if got != want {
		t.Errorf("WatchURL = %q, want %q", got, want)
	}
}

func TestTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Learn Go in 10 Minutes - YouTube</title></head>
<body>
<article>
<h1>Learn Go in 10 Minutes</h1>
<p>A quick introduction to the Go programming language covering syntax,
types, and the standard toolchain in a compact tutorial format.</p>
</article>
</body>
</html>`))
	}))
	defer srv.Close()

	title, err := Title(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title != "Learn Go in 10 Minutes" {
		t.Errorf("title = %q, want suffix stripped", title)
	}
}

func TestTitle_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
	}))
	defer srv.Close()

	if _, err := Title(srv.URL); err == nil {
		t.Error("expected error for 404 page")
	}
}
