package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glorpus-work/shelfsync/pkg/catalog"
	cmocks "github.com/glorpus-work/shelfsync/pkg/catalog/mocks"
	pkgerrors "github.com/glorpus-work/shelfsync/pkg/errors"
	"github.com/glorpus-work/shelfsync/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testToken = "secret-token"

type fileServer struct {
	content []byte

	mu     sync.Mutex
	ranges []string
	auth   []string
}

func newFileServer(t *testing.T, content []byte) (*fileServer, *httptest.Server) {
	t.Helper()
	fs := &fileServer{content: content}
	mux := http.NewServeMux()
	mux.HandleFunc("/downlink/installer/1", func(w http.ResponseWriter, r *http.Request) {
		fs.record(r)
		http.Redirect(w, r, "/files/Setup%20Game%2B1.exe?token=abc", http.StatusFound)
	})
	mux.HandleFunc("/api/extra/7", func(w http.ResponseWriter, r *http.Request) {
		fs.record(r)
		_, _ = io.WriteString(w, `{"downlink":"`+"http://"+r.Host+`/files/manual.pdf"}`)
	})
	mux.HandleFunc("/api/extra/404", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		fs.record(r)
		http.ServeContent(w, r, "file", time.Time{}, bytes.NewReader(fs.content))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return fs, srv
}

func (fs *fileServer) record(r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.auth = append(fs.auth, r.Header.Get("Authorization"))
	if strings.HasPrefix(r.URL.Path, "/files/") {
		fs.ranges = append(fs.ranges, r.Header.Get("Range"))
	}
}

func readAll(t *testing.T, s *Stream) []byte {
	t.Helper()
	defer func() { _ = s.Close() }()
	var out []byte
	for {
		chunk, err := s.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, chunk...)
	}
}

func TestClient_ResolveURL(t *testing.T) {
	_, srv := newFileServer(t, []byte("data"))
	c := NewClient(srv.URL, catalog.StaticAuthorizer{Token: testToken})

	tests := []struct {
		name   string
		url    string
		want   string
		wantOK bool
	}{
		{name: "relative link follows redirect header", url: "/downlink/installer/1", want: srv.URL + "/files/Setup%20Game%2B1.exe?token=abc", wantOK: true},
		{name: "absolute link reads downlink", url: srv.URL + "/api/extra/7", want: srv.URL + "/files/manual.pdf", wantOK: true},
		{name: "missing link", url: srv.URL + "/api/extra/404", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := c.ResolveURL(context.Background(), model.NewExtra("x", tt.url))
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Filename(t *testing.T) {
	_, srv := newFileServer(t, []byte("data"))
	c := NewClient(srv.URL, catalog.StaticAuthorizer{Token: testToken})

	name, ok, err := c.Filename(context.Background(), model.NewInstaller("Game", "/downlink/installer/1", "en", "windows"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Setup Game+1.exe", name)

	_, ok, err = c.Filename(context.Background(), model.NewExtra("x", srv.URL+"/api/extra/404"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFilenameFromURL(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{link: "https://cdn.example/a/b/setup_game_1.0.exe", want: "setup_game_1.0.exe"},
		{link: "https://cdn.example/a/My%20Manual.pdf?sig=1", want: "My Manual.pdf"},
		{link: "https://cdn.example/a/sound+track.zip", want: "sound track.zip"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, ok, err := FilenameFromURL(tt.link)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_DownloadFull(t *testing.T) {
	content := bytes.Repeat([]byte("0123456789"), 100_000)
	fs, srv := newFileServer(t, content)
	c := NewClient(srv.URL, catalog.StaticAuthorizer{Token: testToken})

	var lastCurrent, lastTotal int64
	stream, err := c.Download(context.Background(), model.NewInstaller("Game", "/downlink/installer/1", "en", "windows"),
		func(current, total int64) { lastCurrent, lastTotal = current, total }, nil, Options{})
	require.NoError(t, err)

	assert.Equal(t, content, readAll(t, stream))
	assert.Equal(t, int64(len(content)), lastCurrent)
	assert.Equal(t, int64(len(content)), lastTotal)
	assert.Equal(t, []string{""}, fs.ranges)
	for _, auth := range fs.auth {
		assert.Equal(t, "Bearer "+testToken, auth)
	}
}

func TestClient_DownloadResumesFromOffset(t *testing.T) {
	content := bytes.Repeat([]byte("abcdefghij"), 500)
	fs, srv := newFileServer(t, content)
	c := NewClient(srv.URL, catalog.StaticAuthorizer{Token: testToken})
	startAt := int64(1000)

	var lastCurrent, lastTotal int64
	stream, err := c.Download(context.Background(), model.NewExtra("Manual", srv.URL+"/api/extra/7"),
		func(current, total int64) { lastCurrent, lastTotal = current, total }, &startAt, Options{})
	require.NoError(t, err)

	assert.Equal(t, content[1000:], readAll(t, stream))
	assert.Equal(t, []string{"bytes=1000-"}, fs.ranges)
	assert.Equal(t, int64(len(content)), lastCurrent, "progress counts the bytes already stored")
	assert.Equal(t, int64(len(content)), lastTotal)
}

func TestClient_DownloadRangeNotSatisfiable(t *testing.T) {
	_, srv := newFileServer(t, []byte("short"))
	c := NewClient(srv.URL, catalog.StaticAuthorizer{Token: testToken})
	startAt := int64(100)

	_, err := c.Download(context.Background(), model.NewExtra("Manual", srv.URL+"/api/extra/7"), nil, &startAt, Options{})
	require.ErrorIs(t, err, pkgerrors.ErrRangeNotSatisfiable)
	require.ErrorIs(t, err, pkgerrors.ErrTransport)
}

func TestClient_DownloadErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/broken":
			_, _ = io.WriteString(w, `{"downlink":"http://`+r.Host+`/files/broken"}`)
		case "/api/ignores-range":
			_, _ = io.WriteString(w, `{"downlink":"http://`+r.Host+`/files/plain"}`)
		case "/files/plain":
			_, _ = io.WriteString(w, "whole body")
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL, nil)
	startAt := int64(3)

	_, err := c.Download(context.Background(), model.NewExtra("x", srv.URL+"/api/broken"), nil, nil, Options{})
	require.ErrorIs(t, err, pkgerrors.ErrTransport)
	assert.NotErrorIs(t, err, pkgerrors.ErrRangeNotSatisfiable)

	_, err = c.Download(context.Background(), model.NewExtra("x", srv.URL+"/api/ignores-range"), nil, &startAt, Options{})
	require.ErrorIs(t, err, pkgerrors.ErrRangeNotSatisfiable)

	_, err = c.Download(context.Background(), model.NewExtra("x", srv.URL+"/api/missing"), nil, nil, Options{})
	require.ErrorIs(t, err, pkgerrors.ErrTransport)
}

func TestClient_DownloadWithoutLink(t *testing.T) {
	_, srv := newFileServer(t, nil)
	c := NewClient(srv.URL, nil)

	_, err := c.Download(context.Background(), model.NewExtra("x", srv.URL+"/api/extra/404"), nil, nil, Options{})
	require.ErrorIs(t, err, pkgerrors.ErrNoDownloadURL)
}

func TestClient_IdleTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/slow" {
			_, _ = io.WriteString(w, `{"downlink":"http://`+r.Host+`/files/slow"}`)
			return
		}
		w.Header().Set("Content-Length", "100")
		_, _ = w.Write([]byte("first"))
		w.(http.Flusher).Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, nil, WithIdleTimeout(50*time.Millisecond))
	stream, err := c.Download(context.Background(), model.NewExtra("x", srv.URL+"/api/slow"), nil, nil, Options{})
	require.NoError(t, err)
	defer func() { _ = stream.Close() }()

	var readErr error
	for readErr == nil {
		_, readErr = stream.Next()
	}
	require.ErrorIs(t, readErr, pkgerrors.ErrTransport)
	assert.Contains(t, readErr.Error(), "no data received")
}

func TestClient_AuthorizationFailureStopsRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fs, srv := newFileServer(t, []byte("data"))
	auth := cmocks.NewMockAuthorizer(ctrl)
	auth.EXPECT().Authorization(gomock.Any()).Return("", pkgerrors.ErrMissingToken)

	c := NewClient(srv.URL, auth)
	_, err := c.Download(context.Background(), model.NewInstaller("Game", "/downlink/installer/1", "en", "windows"), nil, nil, Options{})
	require.ErrorIs(t, err, pkgerrors.ErrMissingToken)
	assert.Empty(t, fs.auth, "no request reaches the server")
}
