// Package planner decides whether a catalog entry has to be downloaded,
// resumed or skipped and drives the transfer into its storage target.
package planner

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/glorpus-work/shelfsync/internal/logger"
	pkgerrors "github.com/glorpus-work/shelfsync/pkg/errors"
	"github.com/glorpus-work/shelfsync/pkg/hashing"
	"github.com/glorpus-work/shelfsync/pkg/interrupt"
	"github.com/glorpus-work/shelfsync/pkg/model"
	"github.com/glorpus-work/shelfsync/pkg/retry"
	"github.com/glorpus-work/shelfsync/pkg/storage"
	"github.com/glorpus-work/shelfsync/pkg/transfer"
)

// Planner ties the downloader, the storage writers and the retrier
// together.
type Planner struct {
	DL      Downloader
	Locator *storage.Locator
	Retrier *retry.Retrier
	Guard   *interrupt.Guard
	Hooks   Hooks // Hooks for progress and event notifications
}

type decision int

const (
	decideFull decision = iota
	decideResume
	decideSkip
)

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// Run materializes jobs one after another. With SkipErrors set an entry
// that runs out of attempts is reported and the run goes on; otherwise the
// first failure stops it.
func (p *Planner) Run(ctx context.Context, jobs []Job, opts Options) (Summary, error) {
	var summary Summary
	for _, job := range jobs {
		if err := p.Guard.Check(); err != nil {
			return summary, err
		}

		result, err := p.materialize(ctx, job.Entry, job.TargetDir, opts)
		if err == nil {
			if result == outcomeSkipped {
				summary.Skipped++
			} else {
				summary.Downloaded++
			}
			continue
		}

		var tooMany *retry.TooManyRetriesError
		if opts.SkipErrors && errors.As(err, &tooMany) {
			summary.Failed++
			logger.Warn(fmt.Sprintf("%s couldn't be downloaded", job.Entry.Describe()), logger.Fields{"error": tooMany.Last()})
			emit(p.Hooks, Event{Phase: PhaseFailed, Entry: job.Entry, Msg: err.Error()})
			continue
		}
		return summary, err
	}
	return summary, nil
}

// Materialize stores entry in targetDir unless a valid copy is already
// there. Every attempt runs as one unit the guard will not interrupt.
func (p *Planner) Materialize(ctx context.Context, entry model.Entry, targetDir string, opts Options) error {
	_, err := p.materialize(ctx, entry, targetDir, opts)
	return err
}

func (p *Planner) materialize(ctx context.Context, entry model.Entry, targetDir string, opts Options) (outcome, error) {
	if p.DL == nil || p.Locator == nil {
		return 0, fmt.Errorf("planner is not configured")
	}
	retrier := p.Retrier
	if retrier == nil {
		retrier = retry.New(false)
	}

	var result outcome
	err := retrier.Retry(ctx, func(ctx context.Context, previous error) error {
		return p.Guard.Unsafe(ctx, func(ctx context.Context) error {
			var err error
			result, err = p.attempt(ctx, entry, targetDir, opts, previous)
			return err
		})
	}, opts.Retry, opts.RetryDelay,
		retry.Fatal(pkgerrors.ErrExitRequested, pkgerrors.ErrForcedExit, context.Canceled))
	return result, err
}

func (p *Planner) attempt(ctx context.Context, entry model.Entry, targetDir string, opts Options, previous error) (outcome, error) {
	writer, err := p.Locator.Writer(targetDir)
	if err != nil {
		return 0, err
	}
	if err := writer.CreateContainer(ctx, targetDir); err != nil {
		return 0, err
	}

	filename, ok, err := p.DL.Filename(ctx, entry)
	if err != nil {
		return 0, err
	}
	if !ok {
		logger.Warn(fmt.Sprintf("%s: no download link available, skipping", entry.Describe()))
		emit(p.Hooks, Event{Phase: PhaseNoURL, Entry: entry})
		return outcomeSkipped, nil
	}

	target := storage.JoinPath(targetDir, filename)
	ref, err := writer.Ref(target)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := ref.Close(); err != nil {
			logger.Warn("Failed to release target", logger.Fields{"target": target, "error": err})
		}
	}()

	next, startAt, err := p.plan(ctx, writer, ref, entry, opts)
	if err != nil {
		return 0, err
	}
	if next == decideSkip {
		return outcomeSkipped, nil
	}

	phase := PhaseDownloading
	if next == decideResume {
		phase = PhaseResuming
	}
	emit(p.Hooks, Event{Phase: phase, Entry: entry, Target: target})

	digest, err := p.drive(ctx, writer, ref, entry, startAt, opts)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrRangeNotSatisfiable) {
			logger.Debug("Range not satisfiable, dropping partial target", logger.Fields{"target": target})
			if rmErr := writer.Remove(ctx, ref); rmErr != nil {
				return 0, errors.Join(err, rmErr)
			}
			return 0, retry.ForceRetry(err)
		}
		return 0, err
	}

	if err := p.verify(ctx, writer, ref, entry, digest, opts, previous); err != nil {
		return 0, err
	}
	emit(p.Hooks, Event{Phase: PhaseDone, Entry: entry, Target: target, Digest: digest})
	return outcomeDownloaded, nil
}

// plan inspects the target and decides how to proceed. startAt is set when
// the transfer resumes.
func (p *Planner) plan(ctx context.Context, writer storage.Writer, ref storage.Ref, entry model.Entry, opts Options) (decision, *int64, error) {
	exists, err := writer.ExistsRef(ctx, ref)
	if err != nil {
		return 0, nil, err
	}
	if !exists {
		return decideFull, nil, nil
	}

	if opts.NoVerify {
		logger.Debug(fmt.Sprintf("%s: skipping because it exists (no verification requested)", entry.Describe()))
		emit(p.Hooks, Event{Phase: PhaseSkipped, Entry: entry, Target: ref.String(), Msg: "exists"})
		return decideSkip, nil, nil
	}

	expected, ok := entry.Digest()
	if !ok || expected == "" {
		logger.Debug(fmt.Sprintf("%s: no expected digest, downloading again", entry.Describe()))
		return decideFull, nil, writer.Remove(ctx, ref)
	}

	stored, err := writer.StoredDigest(ctx, ref)
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrUnreadableTarget) {
			return 0, nil, err
		}
		logger.Warn(fmt.Sprintf("%s: re-downloading, stored content unreadable", entry.Describe()), logger.Fields{"error": err})
		return decideFull, nil, writer.Remove(ctx, ref)
	}
	if hashing.Equal(stored, expected) {
		logger.Debug(fmt.Sprintf("%s: skipping because it exists and is valid", entry.Describe()))
		emit(p.Hooks, Event{Phase: PhaseSkipped, Entry: entry, Target: ref.String(), Msg: "valid"})
		return decideSkip, nil, nil
	}

	readable, err := writer.IsReadable(ctx, ref)
	if err != nil {
		return 0, nil, err
	}
	if !readable {
		logger.Warn(fmt.Sprintf("%s: re-downloading, stored content unreadable", entry.Describe()))
		return decideFull, nil, writer.Remove(ctx, ref)
	}

	size, err := writer.Size(ctx, ref)
	if err != nil {
		return 0, nil, err
	}
	return decideResume, &size, nil
}

// drive streams the entry into the target and returns the digest of the
// complete content.
func (p *Planner) drive(ctx context.Context, writer storage.Writer, ref storage.Ref, entry model.Entry, startAt *int64, opts Options) (string, error) {
	var onProgress transfer.ProgressFunc
	if p.Hooks.OnProgress != nil {
		onProgress = func(current, total int64) {
			if total > 0 {
				p.Hooks.OnProgress(entry, current, total)
			}
		}
	}

	stream, err := p.DL.Download(ctx, entry, onProgress, startAt, transfer.Options{MaxBytesPerSecond: opts.Bandwidth})
	if err != nil {
		return "", err
	}
	defer func() { _ = stream.Close() }()

	sink, err := writer.DigestContext(ctx, ref)
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrUnreadableTarget) {
			return "", err
		}
		sink = hashing.New()
	}

	for {
		chunk, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		sink.Update(chunk)
		if err := writer.WriteChunk(ctx, ref, chunk, opts.ChunkSize); err != nil {
			return "", err
		}
	}

	digest := sink.Sum()
	if err := writer.Finalize(ctx, ref, digest); err != nil {
		return "", err
	}
	return digest, nil
}

// verify compares the streamed digest with the expected one. A mismatch is
// retried once when invalid targets are removed, otherwise it only warns.
func (p *Planner) verify(ctx context.Context, writer storage.Writer, ref storage.Ref, entry model.Entry, digest string, opts Options, previous error) error {
	if opts.NoVerify {
		return nil
	}
	expected, ok := entry.Digest()
	if !ok || expected == "" || hashing.Equal(digest, expected) {
		return nil
	}

	if opts.RemoveInvalid && !retry.IsMismatchRetry(previous) {
		if err := writer.Remove(ctx, ref); err != nil {
			return err
		}
		logger.Warn(fmt.Sprintf("%s failed hash check, removed it and retrying", entry.Describe()))
		return &retry.MismatchRetryError{Name: entry.Describe(), Expected: expected, Actual: digest}
	}

	logger.Warn(fmt.Sprintf("%s failed hash check", entry.Describe()), logger.Fields{"expected": expected, "actual": digest})
	emit(p.Hooks, Event{Phase: PhaseVerifyFailed, Entry: entry, Target: ref.String()})
	return nil
}
