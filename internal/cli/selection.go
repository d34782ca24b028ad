package cli

import (
	"strings"

	"github.com/glorpus-work/shelfsync/internal/logger"
	"github.com/glorpus-work/shelfsync/pkg/catalog"
	"github.com/glorpus-work/shelfsync/pkg/planner"
	"github.com/glorpus-work/shelfsync/pkg/platform"
	"github.com/glorpus-work/shelfsync/pkg/storage"
)

// selection turns catalog games into planner jobs.
type selection struct {
	filter  platform.Filter
	only    []string
	without []string
	extras  bool
	root    string
}

// wantsGame matches titles case-insensitively and exactly.
func (s selection) wantsGame(title string) bool {
	if len(s.only) > 0 && !containsFold(s.only, title) {
		return false
	}
	return !containsFold(s.without, title)
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}

// jobs returns one job per selected entry, installers first.
func (s selection) jobs(games []*catalog.Game) []planner.Job {
	var jobs []planner.Job
	for _, game := range games {
		if !s.wantsGame(game.Title) {
			logger.Debugf("%s: skipping because of title filter", game.Title)
			continue
		}

		accepted, rejected, excluded := s.filter.Select(game.Installers)
		if excluded {
			logger.Debugf("%s: skipping because it supports language %s", game.Title, s.filter.ExcludeLanguage)
			continue
		}
		for _, r := range rejected {
			logger.Debugf("%s: skipping because of %s", r.Installer.Describe(), r.Reason)
		}

		dir := storage.JoinPath(s.root, game.DirectoryName())
		for _, inst := range accepted {
			jobs = append(jobs, planner.Job{Entry: inst, TargetDir: dir})
		}
		if s.extras {
			for _, extra := range game.Extras {
				jobs = append(jobs, planner.Job{Entry: extra, TargetDir: dir})
			}
		}
	}
	return jobs
}
