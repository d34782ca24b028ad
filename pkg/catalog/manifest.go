package catalog

import (
	"context"
	"io"
	"os"

	"github.com/glorpus-work/shelfsync/pkg/errors"
	"github.com/glorpus-work/shelfsync/pkg/model"
	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk YAML description of an offline catalog.
type Manifest struct {
	Games []ManifestGame `yaml:"games"`
}

// ManifestGame is one game in a manifest.
type ManifestGame struct {
	ID         int64           `yaml:"id"`
	Title      string          `yaml:"title"`
	Slug       string          `yaml:"slug,omitempty"`
	Installers []ManifestEntry `yaml:"installers,omitempty"`
	Extras     []ManifestEntry `yaml:"extras,omitempty"`
}

// ManifestEntry is one downloadable file in a manifest. A nil MD5 means the
// digest is unknown; an empty string is kept as reported.
type ManifestEntry struct {
	Name     string  `yaml:"name"`
	URL      string  `yaml:"url"`
	Size     int64   `yaml:"size,omitempty"`
	MD5      *string `yaml:"md5,omitempty"`
	Language string  `yaml:"language,omitempty"`
	Platform string  `yaml:"platform,omitempty"`
}

// ManifestSource reads games from a YAML manifest file.
type ManifestSource struct {
	path string
}

// NewManifestSource creates a source backed by the manifest at path.
func NewManifestSource(path string) *ManifestSource {
	return &ManifestSource{path: path}
}

// Games implements Source.
func (s *ManifestSource) Games(context.Context) ([]*Game, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open manifest %s", s.path)
	}
	defer func() { _ = file.Close() }()

	manifest, err := ParseManifest(file)
	if err != nil {
		return nil, err
	}
	return manifest.ToGames()
}

// ParseManifest decodes a manifest from r.
func ParseManifest(r io.Reader) (*Manifest, error) {
	var manifest Manifest
	if err := yaml.NewDecoder(r).Decode(&manifest); err != nil {
		if err == io.EOF {
			return &manifest, nil
		}
		return nil, errors.Wrap(errors.ErrCatalogParse, err.Error())
	}
	return &manifest, nil
}

// ToGames converts the manifest into catalog games.
func (m *Manifest) ToGames() ([]*Game, error) {
	games := make([]*Game, 0, len(m.Games))
	for _, mg := range m.Games {
		game := &Game{ID: mg.ID, Title: mg.Title, Slug: mg.Slug}
		for _, me := range mg.Installers {
			if err := me.validate(); err != nil {
				return nil, errors.Wrapf(err, "game %q", mg.Title)
			}
			game.Installers = append(game.Installers,
				model.NewInstaller(me.Name, me.URL, me.Language, me.Platform, me.options(mg.ID)...))
		}
		for _, me := range mg.Extras {
			if err := me.validate(); err != nil {
				return nil, errors.Wrapf(err, "game %q", mg.Title)
			}
			game.Extras = append(game.Extras, model.NewExtra(me.Name, me.URL, me.options(mg.ID)...))
		}
		games = append(games, game)
	}
	return games, nil
}

func (e ManifestEntry) validate() error {
	if e.Name == "" || e.URL == "" {
		return errors.Wrapf(errors.ErrEntryInvalid, "entry %q must have a name and a url", e.Name)
	}
	return nil
}

func (e ManifestEntry) options(ownerID int64) []model.EntryOption {
	opts := []model.EntryOption{model.WithSize(e.Size)}
	if e.MD5 != nil {
		opts = append(opts, model.WithDigest(*e.MD5))
	}
	if ownerID != 0 {
		opts = append(opts, model.WithOwnerID(ownerID))
	}
	return opts
}
