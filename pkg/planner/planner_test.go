package planner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glorpus-work/shelfsync/pkg/catalog"
	pkgerrors "github.com/glorpus-work/shelfsync/pkg/errors"
	"github.com/glorpus-work/shelfsync/pkg/hashing"
	"github.com/glorpus-work/shelfsync/pkg/interrupt"
	"github.com/glorpus-work/shelfsync/pkg/model"
	pmocks "github.com/glorpus-work/shelfsync/pkg/planner/mocks"
	"github.com/glorpus-work/shelfsync/pkg/retry"
	"github.com/glorpus-work/shelfsync/pkg/storage"
	smocks "github.com/glorpus-work/shelfsync/pkg/storage/mocks"
	"github.com/glorpus-work/shelfsync/pkg/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testFilename = "setup_game.exe"

func digestOf(t *testing.T, b []byte) string {
	t.Helper()
	d, err := hashing.Of(bytes.NewReader(b))
	require.NoError(t, err)
	return d
}

func streamOf(b []byte) *transfer.Stream {
	return transfer.NewStream(context.Background(), io.NopCloser(bytes.NewReader(b)), 0, int64(len(b)))
}

func noSleep() *retry.Retrier {
	return &retry.Retrier{Sleep: func(time.Duration) {}}
}

func newLocalPlanner(dl Downloader) *Planner {
	return &Planner{
		DL:      dl,
		Locator: storage.NewLocator(storage.NewLocalWriter()),
		Retrier: noSleep(),
		Guard:   interrupt.NewGuard(),
	}
}

func defaultOptions() Options {
	return Options{Retry: 3, ChunkSize: 5 << 20, RemoveInvalid: true}
}

func TestMaterialize_FullDownload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	content := bytes.Repeat([]byte("installer"), 1000)
	entry := model.NewInstaller("Game", "/downlink/1", "en", "windows", model.WithDigest(digestOf(t, content)))
	dir := filepath.Join(t.TempDir(), "game")

	dl := pmocks.NewMockDownloader(ctrl)
	dl.EXPECT().Filename(gomock.Any(), entry).Return(testFilename, true, nil)
	dl.EXPECT().Download(gomock.Any(), entry, gomock.Any(), gomock.Nil(), gomock.Any()).Return(streamOf(content), nil)

	var phases []string
	var doneDigest string
	p := newLocalPlanner(dl)
	p.Hooks = Hooks{OnEvent: func(e Event) {
		phases = append(phases, e.Phase)
		if e.Phase == PhaseDone {
			doneDigest = e.Digest
		}
	}}

	require.NoError(t, p.Materialize(context.Background(), entry, dir, defaultOptions()))

	got, err := os.ReadFile(filepath.Join(dir, testFilename))
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, []string{PhaseDownloading, PhaseDone}, phases)
	assert.Equal(t, digestOf(t, content), doneDigest)
}

func TestMaterialize_ResumeMatchesFullDownload(t *testing.T) {
	content := make([]byte, 5000)
	for i := range content {
		content[i] = byte(i % 251)
	}

	var mu sync.Mutex
	var ranges []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Location", "/files/"+testFilename)
			w.WriteHeader(http.StatusFound)
			return
		}
		mu.Lock()
		ranges = append(ranges, r.Header.Get("Range"))
		mu.Unlock()
		http.ServeContent(w, r, testFilename, time.Time{}, bytes.NewReader(content))
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, testFilename), content[:1000], 0o644))
	entry := model.NewInstaller("Game", "/downlink/1", "en", "windows", model.WithDigest(digestOf(t, content)))

	var lastCurrent, lastTotal int64
	p := newLocalPlanner(transfer.NewClient(srv.URL, catalog.StaticAuthorizer{Token: "t"}))
	p.Hooks = Hooks{OnProgress: func(_ model.Entry, current, total int64) { lastCurrent, lastTotal = current, total }}

	require.NoError(t, p.Materialize(context.Background(), entry, dir, defaultOptions()))

	assert.Equal(t, []string{"bytes=1000-"}, ranges)
	got, err := os.ReadFile(filepath.Join(dir, testFilename))
	require.NoError(t, err)
	assert.Equal(t, digestOf(t, content), digestOf(t, got))
	assert.Equal(t, int64(5000), lastCurrent)
	assert.Equal(t, int64(5000), lastTotal)
}

func TestMaterialize_SkipsValidTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	content := []byte("already here")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, testFilename), content, 0o644))
	entry := model.NewExtra("Manual", "https://api/extra/1", model.WithDigest(digestOf(t, content)))

	dl := pmocks.NewMockDownloader(ctrl)
	dl.EXPECT().Filename(gomock.Any(), entry).Return(testFilename, true, nil)
	// no Download expectation: any transfer fails the test

	var events []Event
	p := newLocalPlanner(dl)
	p.Hooks = Hooks{OnEvent: func(e Event) { events = append(events, e) }}

	require.NoError(t, p.Materialize(context.Background(), entry, dir, defaultOptions()))
	require.Len(t, events, 1)
	assert.Equal(t, PhaseSkipped, events[0].Phase)
}

func TestMaterialize_NoVerifyNeverReadsTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entry := model.NewExtra("Manual", "https://api/extra/1", model.WithDigest("0123"))
	dl := pmocks.NewMockDownloader(ctrl)
	dl.EXPECT().Filename(gomock.Any(), entry).Return(testFilename, true, nil)

	ref := smocks.NewMockRef(ctrl)
	ref.EXPECT().String().Return("target").AnyTimes()
	ref.EXPECT().Close().Return(nil)

	// StoredDigest, DigestContext and WriteChunk have no expectations
	w := smocks.NewMockWriter(ctrl)
	w.EXPECT().Supports(gomock.Any()).Return(true)
	w.EXPECT().CreateContainer(gomock.Any(), "/games/witcher").Return(nil)
	w.EXPECT().Ref(filepath.Join("/games/witcher", testFilename)).Return(ref, nil)
	w.EXPECT().ExistsRef(gomock.Any(), ref).Return(true, nil)

	p := &Planner{DL: dl, Locator: storage.NewLocator(w), Retrier: noSleep()}
	opts := defaultOptions()
	opts.NoVerify = true

	require.NoError(t, p.Materialize(context.Background(), entry, "/games/witcher", opts))
}

func TestMaterialize_MismatchRetriedExactlyOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	wrong := []byte("corrupted content")
	entry := model.NewInstaller("Game", "/downlink/1", "en", "linux", model.WithDigest(digestOf(t, []byte("good content"))))
	dir := t.TempDir()

	dl := pmocks.NewMockDownloader(ctrl)
	dl.EXPECT().Filename(gomock.Any(), entry).Return(testFilename, true, nil).Times(2)
	dl.EXPECT().Download(gomock.Any(), entry, gomock.Any(), gomock.Nil(), gomock.Any()).
		DoAndReturn(func(context.Context, model.Entry, transfer.ProgressFunc, *int64, transfer.Options) (*transfer.Stream, error) {
			return streamOf(wrong), nil
		}).Times(2)

	var phases []string
	p := newLocalPlanner(dl)
	p.Hooks = Hooks{OnEvent: func(e Event) { phases = append(phases, e.Phase) }}
	opts := defaultOptions()
	opts.Retry = 5

	require.NoError(t, p.Materialize(context.Background(), entry, dir, opts))

	got, err := os.ReadFile(filepath.Join(dir, testFilename))
	require.NoError(t, err)
	assert.Equal(t, wrong, got, "the second download is kept as is")
	assert.Contains(t, phases, PhaseVerifyFailed)
}

func TestMaterialize_MismatchKeptWithoutRemoveInvalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entry := model.NewExtra("Manual", "https://api/extra/1", model.WithDigest("ffff"))
	dl := pmocks.NewMockDownloader(ctrl)
	dl.EXPECT().Filename(gomock.Any(), entry).Return(testFilename, true, nil)
	dl.EXPECT().Download(gomock.Any(), entry, gomock.Any(), gomock.Nil(), gomock.Any()).Return(streamOf([]byte("x")), nil).Times(1)

	opts := defaultOptions()
	opts.RemoveInvalid = false
	dir := t.TempDir()

	require.NoError(t, newLocalPlanner(dl).Materialize(context.Background(), entry, dir, opts))
	assert.FileExists(t, filepath.Join(dir, testFilename))
}

func TestMaterialize_RangeNotSatisfiableRestartsForFree(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	content := []byte("the new upstream file")
	dir := t.TempDir()
	path := filepath.Join(dir, testFilename)
	require.NoError(t, os.WriteFile(path, []byte("a much longer stale partial file from before"), 0o644))
	entry := model.NewInstaller("Game", "/downlink/1", "en", "windows", model.WithDigest(digestOf(t, content)))

	dl := pmocks.NewMockDownloader(ctrl)
	dl.EXPECT().Filename(gomock.Any(), entry).Return(testFilename, true, nil).Times(2)
	gomock.InOrder(
		dl.EXPECT().Download(gomock.Any(), entry, gomock.Any(), gomock.Not(gomock.Nil()), gomock.Any()).
			Return(nil, pkgerrors.Wrap(pkgerrors.ErrRangeNotSatisfiable, "GET")),
		dl.EXPECT().Download(gomock.Any(), entry, gomock.Any(), gomock.Nil(), gomock.Any()).
			Return(streamOf(content), nil),
	)

	opts := defaultOptions()
	opts.Retry = 1

	require.NoError(t, newLocalPlanner(dl).Materialize(context.Background(), entry, dir, opts))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestMaterialize_UnreadableTargetDownloadsFromScratch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	content := []byte("payload")
	entry := model.NewExtra("Manual", "https://api/extra/1", model.WithDigest(digestOf(t, content)))
	target := "s3://library/witcher/" + testFilename

	dl := pmocks.NewMockDownloader(ctrl)
	dl.EXPECT().Filename(gomock.Any(), entry).Return(testFilename, true, nil)
	dl.EXPECT().Download(gomock.Any(), entry, gomock.Any(), gomock.Nil(), gomock.Any()).Return(streamOf(content), nil)

	ref := smocks.NewMockRef(ctrl)
	ref.EXPECT().String().Return(target).AnyTimes()
	ref.EXPECT().Close().Return(nil)

	w := smocks.NewMockWriter(ctrl)
	w.EXPECT().Supports(gomock.Any()).Return(true)
	w.EXPECT().CreateContainer(gomock.Any(), "s3://library/witcher").Return(nil)
	w.EXPECT().Ref(target).Return(ref, nil)
	gomock.InOrder(
		w.EXPECT().ExistsRef(gomock.Any(), ref).Return(true, nil),
		w.EXPECT().StoredDigest(gomock.Any(), ref).Return("", pkgerrors.Wrap(pkgerrors.ErrUnreadableTarget, "GLACIER")),
		w.EXPECT().Remove(gomock.Any(), ref).Return(nil),
		w.EXPECT().DigestContext(gomock.Any(), ref).Return(hashing.New(), nil),
		w.EXPECT().WriteChunk(gomock.Any(), ref, content, 5<<20).Return(nil),
		w.EXPECT().Finalize(gomock.Any(), ref, digestOf(t, content)).Return(nil),
	)

	p := &Planner{DL: dl, Locator: storage.NewLocator(w), Retrier: noSleep()}
	require.NoError(t, p.Materialize(context.Background(), entry, "s3://library/witcher", defaultOptions()))
}

func TestMaterialize_ExistingTargetWithoutDigestIsReplaced(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := t.TempDir()
	path := filepath.Join(dir, testFilename)
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
	entry := model.NewExtra("Manual", "https://api/extra/1")

	dl := pmocks.NewMockDownloader(ctrl)
	dl.EXPECT().Filename(gomock.Any(), entry).Return(testFilename, true, nil)
	dl.EXPECT().Download(gomock.Any(), entry, gomock.Any(), gomock.Nil(), gomock.Any()).Return(streamOf([]byte("new")), nil)

	require.NoError(t, newLocalPlanner(dl).Materialize(context.Background(), entry, dir, defaultOptions()))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestMaterialize_NoDownloadLinkIsSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entry := model.NewExtra("Manual", "https://api/extra/1")
	dl := pmocks.NewMockDownloader(ctrl)
	dl.EXPECT().Filename(gomock.Any(), entry).Return("", false, nil)

	var phases []string
	p := newLocalPlanner(dl)
	p.Hooks = Hooks{OnEvent: func(e Event) { phases = append(phases, e.Phase) }}

	require.NoError(t, p.Materialize(context.Background(), entry, t.TempDir(), defaultOptions()))
	assert.Equal(t, []string{PhaseNoURL}, phases)
}

func TestRun_SkipErrorsIsolatesFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	broken := model.NewExtra("Broken", "https://api/extra/1")
	good := model.NewExtra("Good", "https://api/extra/2")
	transportErr := pkgerrors.Wrap(pkgerrors.ErrTransport, "connection refused")

	dl := pmocks.NewMockDownloader(ctrl)
	dl.EXPECT().Filename(gomock.Any(), broken).Return("", false, transportErr).Times(2)
	dl.EXPECT().Filename(gomock.Any(), good).Return(testFilename, true, nil)
	dl.EXPECT().Download(gomock.Any(), good, gomock.Any(), gomock.Nil(), gomock.Any()).Return(streamOf([]byte("ok")), nil)

	dir := t.TempDir()
	jobs := []Job{{Entry: broken, TargetDir: dir}, {Entry: good, TargetDir: dir}}
	opts := defaultOptions()
	opts.Retry = 2
	opts.SkipErrors = true

	summary, err := newLocalPlanner(dl).Run(context.Background(), jobs, opts)
	require.NoError(t, err)
	assert.Equal(t, Summary{Downloaded: 1, Failed: 1}, summary)
}

func TestRun_StopsOnFirstFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	broken := model.NewExtra("Broken", "https://api/extra/1")
	good := model.NewExtra("Good", "https://api/extra/2")
	boom := pkgerrors.Wrap(pkgerrors.ErrTransport, "reset")

	dl := pmocks.NewMockDownloader(ctrl)
	dl.EXPECT().Filename(gomock.Any(), broken).Return("", false, boom).Times(2)

	opts := defaultOptions()
	opts.Retry = 2
	jobs := []Job{{Entry: broken, TargetDir: t.TempDir()}, {Entry: good, TargetDir: t.TempDir()}}

	_, err := newLocalPlanner(dl).Run(context.Background(), jobs, opts)
	var tooMany *retry.TooManyRetriesError
	require.ErrorAs(t, err, &tooMany)
	assert.ErrorIs(t, tooMany.Last(), pkgerrors.ErrTransport)
}

func TestRun_HonorsExitRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	first := model.NewExtra("First", "https://api/extra/1")
	second := model.NewExtra("Second", "https://api/extra/2")

	p := newLocalPlanner(nil)
	dl := pmocks.NewMockDownloader(ctrl)
	dl.EXPECT().Filename(gomock.Any(), first).Return(testFilename, true, nil)
	dl.EXPECT().Download(gomock.Any(), first, gomock.Any(), gomock.Nil(), gomock.Any()).
		DoAndReturn(func(context.Context, model.Entry, transfer.ProgressFunc, *int64, transfer.Options) (*transfer.Stream, error) {
			// interrupt while the transfer is in flight
			p.Guard.Notify()
			return streamOf([]byte("data")), nil
		})
	p.DL = dl

	dir := t.TempDir()
	summary, err := p.Run(context.Background(), []Job{{Entry: first, TargetDir: dir}, {Entry: second, TargetDir: dir}}, defaultOptions())

	require.ErrorIs(t, err, pkgerrors.ErrExitRequested)
	assert.Equal(t, 1, summary.Downloaded, "the running transfer completes")
	assert.FileExists(t, filepath.Join(dir, testFilename))
}

func TestMaterialize_ForcedExitIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entry := model.NewExtra("Manual", "https://api/extra/1")
	p := newLocalPlanner(nil)
	dl := pmocks.NewMockDownloader(ctrl)
	dl.EXPECT().Filename(gomock.Any(), entry).Return(testFilename, true, nil).Times(1)
	dl.EXPECT().Download(gomock.Any(), entry, gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ model.Entry, _ transfer.ProgressFunc, _ *int64, _ transfer.Options) (*transfer.Stream, error) {
			p.Guard.Notify()
			p.Guard.Notify()
			return nil, ctx.Err()
		}).Times(1)
	p.DL = dl

	err := p.Materialize(context.Background(), entry, t.TempDir(), defaultOptions())
	require.ErrorIs(t, err, pkgerrors.ErrForcedExit)
	assert.False(t, errors.Is(err, pkgerrors.ErrTooManyRetries))
}
