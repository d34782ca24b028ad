package cli

import (
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/glorpus-work/shelfsync/internal/logger"
	"github.com/glorpus-work/shelfsync/pkg/model"
	"github.com/pterm/pterm"
)

// bar units are KiB so large files fit an int on every platform
const barUnit = 1024

// progressRenderer draws one pterm progress bar per transfer.
type progressRenderer struct {
	mu      sync.Mutex
	bar     *pterm.ProgressbarPrinter
	entry   model.Entry
	shown   int
	started func(title string, total int) (*pterm.ProgressbarPrinter, error)
}

func newProgressRenderer() *progressRenderer {
	return &progressRenderer{
		started: func(title string, total int) (*pterm.ProgressbarPrinter, error) {
			return pterm.DefaultProgressbar.
				WithTitle(title).
				WithTotal(total).
				WithRemoveWhenDone(true).
				Start()
		},
	}
}

// update moves the bar of entry to current out of total bytes.
func (r *progressRenderer) update(entry model.Entry, current, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entry != entry {
		r.stopLocked()
		title := fmt.Sprintf("%s (%s)", entry.Describe(), humanize.IBytes(uint64(total)))
		bar, err := r.started(title, int(total/barUnit)+1)
		if err != nil {
			logger.Debug("Failed to start progress bar", logger.Fields{"error": err})
			r.entry = entry
			return
		}
		r.bar, r.entry, r.shown = bar, entry, 0
	}
	if r.bar == nil {
		return
	}

	next := int(current / barUnit)
	if next > r.shown {
		r.bar.Add(next - r.shown)
		r.shown = next
	}
}

// stop removes the current bar, if any.
func (r *progressRenderer) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *progressRenderer) stopLocked() {
	if r.bar != nil {
		_, _ = r.bar.Stop()
	}
	r.bar, r.entry, r.shown = nil, nil, 0
}
