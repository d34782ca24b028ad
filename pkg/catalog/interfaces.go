//go:generate mockgen -destination=./mocks/catalog.go . Authorizer,Source

package catalog

import (
	"context"

	"github.com/glorpus-work/shelfsync/pkg/model"
)

// Authorizer supplies the bearer token sent with every catalog request.
type Authorizer interface {
	Authorization(ctx context.Context) (string, error)
}

// Source lists the games whose files can be downloaded.
type Source interface {
	Games(ctx context.Context) ([]*Game, error)
}

// Game is one owned product and its downloadable files.
type Game struct {
	ID         int64
	Title      string
	Slug       string
	Installers []*model.Installer
	Extras     []*model.Extra
}

// Entries returns installers followed by extras.
func (g *Game) Entries() []model.Entry {
	entries := make([]model.Entry, 0, len(g.Installers)+len(g.Extras))
	for _, inst := range g.Installers {
		entries = append(entries, inst)
	}
	for _, extra := range g.Extras {
		entries = append(entries, extra)
	}
	return entries
}

// DirectoryName is the per-game directory under the download root.
func (g *Game) DirectoryName() string {
	if g.Slug != "" {
		return g.Slug
	}
	return g.Title
}

// StaticAuthorizer returns a fixed token.
type StaticAuthorizer struct {
	Token string
}

// Authorization implements Authorizer.
func (a StaticAuthorizer) Authorization(context.Context) (string, error) {
	return a.Token, nil
}
