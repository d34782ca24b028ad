// Package testutil provides a fake catalog and CDN for command level tests.
package testutil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestServer answers catalog download links with a redirect to a CDN path
// that serves the registered files with range support.
type TestServer struct {
	Server *httptest.Server
	URL    string

	mu       sync.Mutex
	files    map[string][]byte
	ranges   []string
	requests map[string]int
	broken   map[string]bool
}

// NewTestServer starts a server for files, keyed by file name. The server
// is closed when the test ends.
func NewTestServer(t *testing.T, files map[string][]byte) *TestServer {
	t.Helper()
	ts := &TestServer{files: files, requests: map[string]int{}, broken: map[string]bool{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/downlink/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/downlink/")
		if _, ok := ts.file(name); !ok {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/files/"+name, http.StatusFound)
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/files/")
		data, ok := ts.file(name)
		if !ok {
			http.NotFound(w, r)
			return
		}
		ts.record(name, r.Header.Get("Range"))
		if ts.isBroken(name) {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(data))
	})

	ts.Server = httptest.NewServer(mux)
	ts.URL = ts.Server.URL
	t.Cleanup(ts.Server.Close)
	return ts
}

func (ts *TestServer) file(name string) ([]byte, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	data, ok := ts.files[name]
	return data, ok
}

func (ts *TestServer) record(name, rangeHeader string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.requests[name]++
	if rangeHeader != "" {
		ts.ranges = append(ts.ranges, rangeHeader)
	}
}

// Break makes every content request for name fail.
func (ts *TestServer) Break(name string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.broken[name] = true
}

func (ts *TestServer) isBroken(name string) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.broken[name]
}

// EntryURL is the catalog relative link of the file called name.
func (ts *TestServer) EntryURL(name string) string {
	return "/downlink/" + name
}

// Requests returns how often the content of name was fetched.
func (ts *TestServer) Requests(name string) int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.requests[name]
}

// Ranges returns the Range headers received so far.
func (ts *TestServer) Ranges() []string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]string(nil), ts.ranges...)
}

// SetupTestConfig writes a configuration pointing at baseURL, with the
// catalog database and download directory inside dir.
func SetupTestConfig(t *testing.T, dir, baseURL string) string {
	t.Helper()
	quote := func(s string) string { return strings.ReplaceAll(s, "\\", "\\\\") }

	content := "catalog:\n" +
		"  base_url: " + baseURL + "\n" +
		"  database_path: " + quote(filepath.Join(dir, "catalog.db")) + "\n" +
		"settings:\n" +
		"  download_dir: " + quote(filepath.Join(dir, "games")) + "\n" +
		"  retry: 2\n" +
		"  retry_delay: 10ms\n" +
		"  idle_timeout: 2s\n" +
		"  chunk_size_mb: 5\n" +
		"  log_level: info\n" +
		"  log_format: text\n"

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// WriteManifest writes a manifest file into dir and returns its path.
func WriteManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
