package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/glorpus-work/shelfsync/pkg/errors"
	"github.com/glorpus-work/shelfsync/pkg/fsutil"
	"github.com/glorpus-work/shelfsync/pkg/model"

	// sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

const (
	kindInstaller = "installer"
	kindExtra     = "extra"
)

// Store is an offline copy of the catalog kept in a SQLite database. It
// also remembers digests learned while downloading entries the catalog
// reported none for.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the database at path.
func OpenStore(path string) (*Store, error) {
	if path == "" {
		return nil, errors.ErrDatabaseMissing
	}
	if err := fsutil.EnsureFileDir(path); err != nil {
		return nil, errors.Wrapf(err, "create database directory for %s", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			slug TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS entries (
			game_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			url TEXT NOT NULL,
			size INTEGER NOT NULL DEFAULT 0,
			md5 TEXT,
			language TEXT NOT NULL DEFAULT '',
			platform TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (game_id, position),
			FOREIGN KEY(game_id) REFERENCES games(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_entries_url ON entries(url);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Import replaces the stored copy of every game in games. Games missing
// from games are left untouched.
func (s *Store) Import(ctx context.Context, games []*Game) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, game := range games {
		if _, err = tx.ExecContext(ctx, `DELETE FROM entries WHERE game_id = ?`, game.ID); err != nil {
			return fmt.Errorf("replace game %d: %w", game.ID, err)
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, game.ID); err != nil {
			return fmt.Errorf("replace game %d: %w", game.ID, err)
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO games (id, title, slug) VALUES (?, ?, ?)`,
			game.ID, game.Title, game.Slug); err != nil {
			return fmt.Errorf("insert game %d: %w", game.ID, err)
		}
		for pos, entry := range game.Entries() {
			if err = insertEntry(ctx, tx, game.ID, pos, entry); err != nil {
				return err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

func insertEntry(ctx context.Context, tx *sql.Tx, gameID int64, pos int, entry model.Entry) error {
	kind, language, platform := kindExtra, "", ""
	if inst, ok := entry.(*model.Installer); ok {
		kind, language, platform = kindInstaller, inst.Language(), inst.Platform()
	}

	var digest sql.NullString
	if d, ok := entry.Digest(); ok {
		digest = sql.NullString{String: d, Valid: true}
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO entries (game_id, position, kind, name, url, size, md5, language, platform)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		gameID, pos, kind, entry.Name(), entry.URL(), entry.Size(), digest, language, platform)
	if err != nil {
		return fmt.Errorf("insert entry %q: %w", entry.Name(), err)
	}
	return nil
}

// Games implements Source. Games are ordered by title.
func (s *Store) Games(ctx context.Context) ([]*Game, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, slug FROM games ORDER BY title COLLATE NOCASE, id`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var games []*Game
	byID := make(map[int64]*Game)
	for rows.Next() {
		game := &Game{}
		if err := rows.Scan(&game.ID, &game.Title, &game.Slug); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, game)
		byID[game.ID] = game
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	if err := s.loadEntries(ctx, byID); err != nil {
		return nil, err
	}
	return games, nil
}

func (s *Store) loadEntries(ctx context.Context, byID map[int64]*Game) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, kind, name, url, size, md5, language, platform FROM entries ORDER BY game_id, position`)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var gameID, size int64
		var kind, name, url, lang, platform string
		var digest sql.NullString
		if err := rows.Scan(&gameID, &kind, &name, &url, &size, &digest, &lang, &platform); err != nil {
			return fmt.Errorf("scan entry: %w", err)
		}
		game, ok := byID[gameID]
		if !ok {
			continue
		}

		opts := []model.EntryOption{model.WithSize(size), model.WithOwnerID(gameID)}
		if digest.Valid {
			opts = append(opts, model.WithDigest(digest.String))
		}
		if kind == kindInstaller {
			game.Installers = append(game.Installers, model.NewInstaller(name, url, lang, platform, opts...))
		} else {
			game.Extras = append(game.Extras, model.NewExtra(name, url, opts...))
		}
	}
	return rows.Err()
}

// RecordDigest stores digest for the entry of gameID served from url when
// no digest is known yet. It reports whether a row changed.
func (s *Store) RecordDigest(ctx context.Context, gameID int64, url, digest string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE entries SET md5 = ? WHERE game_id = ? AND url = ? AND (md5 IS NULL OR md5 = '')`,
		digest, gameID, url)
	if err != nil {
		return false, fmt.Errorf("record digest: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record digest: %w", err)
	}
	return n > 0, nil
}

// Game returns the stored game with the given id.
func (s *Store) Game(ctx context.Context, id int64) (*Game, error) {
	games, err := s.Games(ctx)
	if err != nil {
		return nil, err
	}
	for _, game := range games {
		if game.ID == id {
			return game, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrGameNotFound, "id %d", id)
}

var _ Source = (*Store)(nil)
