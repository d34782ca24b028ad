//go:generate mockgen -destination=./mocks/planner.go . Downloader

package planner

import (
	"context"
	"time"

	"github.com/glorpus-work/shelfsync/pkg/model"
	"github.com/glorpus-work/shelfsync/pkg/transfer"
)

// Downloader is the subset of the transfer client used by the planner.
type Downloader interface {
	Filename(ctx context.Context, entry model.Entry) (string, bool, error)
	Download(ctx context.Context, entry model.Entry, onProgress transfer.ProgressFunc, startAt *int64, opts transfer.Options) (*transfer.Stream, error)
}

// Event phases.
const (
	PhaseSkipped      = "skipped"
	PhaseDownloading  = "downloading"
	PhaseResuming     = "resuming"
	PhaseDone         = "done"
	PhaseVerifyFailed = "verify-failed"
	PhaseNoURL        = "no-url"
	PhaseFailed       = "failed"
)

// Event represents a simple progress notification.
type Event struct {
	Phase  string
	Entry  model.Entry
	Target string
	Msg    string
	// Digest is the digest of the stored content, set on PhaseDone.
	Digest string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent    func(Event)
	OnProgress func(entry model.Entry, current, total int64)
}

// Options control how entries are materialized.
type Options struct {
	// NoVerify skips every digest check; existing targets are kept as is.
	NoVerify bool
	// RemoveInvalid deletes a target that fails verification and downloads
	// it once more.
	RemoveInvalid bool
	// ChunkSize is the write chunk size in bytes.
	ChunkSize int
	// Retry is the number of attempts per entry.
	Retry      int
	RetryDelay time.Duration
	// SkipErrors makes Run continue with the next entry when one runs out
	// of attempts.
	SkipErrors bool
	// Bandwidth caps the transfer rate in bytes per second.
	Bandwidth int64
}

// Job is one entry and the directory it is stored in.
type Job struct {
	Entry     model.Entry
	TargetDir string
}

// Summary counts the outcome of a Run.
type Summary struct {
	Downloaded int
	Skipped    int
	Failed     int
}

type outcome int

const (
	outcomeDownloaded outcome = iota
	outcomeSkipped
)
