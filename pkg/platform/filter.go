package platform

import (
	"slices"

	"github.com/glorpus-work/shelfsync/pkg/model"
)

// Filter selects the installers of a game. Extras are never filtered.
type Filter struct {
	// OS lists the accepted operating systems; empty accepts all.
	OS []string
	// Languages lists the accepted languages; empty accepts all.
	Languages []string
	// EnglishFallback accepts English installers when none of a game's
	// installers is in one of Languages.
	EnglishFallback bool
	// ExcludeLanguage skips the whole game when one of its installers is in
	// this language.
	ExcludeLanguage string
}

// Rejection says why an installer was left out.
type Rejection struct {
	Installer *model.Installer
	Reason    string
}

// Select returns the accepted installers. excluded is true when the game
// has to be skipped because of ExcludeLanguage.
func (f Filter) Select(installers []*model.Installer) (accepted []*model.Installer, rejected []Rejection, excluded bool) {
	if f.ExcludeLanguage != "" {
		for _, inst := range installers {
			if NormalizeLanguage(inst.Language()) == f.ExcludeLanguage {
				return nil, nil, true
			}
		}
	}

	fallback := f.EnglishFallback && len(f.Languages) > 0 && !f.anyInLanguages(installers)

	for _, inst := range installers {
		switch {
		case len(f.OS) > 0 && !slices.Contains(f.OS, NormalizeOS(inst.Platform())):
			rejected = append(rejected, Rejection{Installer: inst, Reason: "OS filter"})
		case !f.acceptsLanguage(NormalizeLanguage(inst.Language()), fallback):
			rejected = append(rejected, Rejection{Installer: inst, Reason: "language filter"})
		default:
			accepted = append(accepted, inst)
		}
	}
	return accepted, rejected, false
}

func (f Filter) anyInLanguages(installers []*model.Installer) bool {
	for _, inst := range installers {
		if slices.Contains(f.Languages, NormalizeLanguage(inst.Language())) {
			return true
		}
	}
	return false
}

func (f Filter) acceptsLanguage(lang string, fallback bool) bool {
	if len(f.Languages) == 0 {
		return true
	}
	if fallback {
		return lang == LanguageEnglish
	}
	return slices.Contains(f.Languages, lang)
}

// NeedsFallbackHint reports whether English installers would be dropped
// silently: a language filter without English and without the fallback.
func (f Filter) NeedsFallbackHint() bool {
	return len(f.Languages) > 0 && !f.EnglishFallback && !slices.Contains(f.Languages, LanguageEnglish)
}
