package geo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/harborview-living/directory-cli/internal/model"
)

// SQLiteGazetteer is a Gazetteer backed by a local SQLite database populated
// by `geo load-zcta`.
type SQLiteGazetteer struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the gazetteer database at the given path and
// configures WAL mode.
func OpenSQLite(dsn string) (*SQLiteGazetteer, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "gazetteer: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "gazetteer: exec %s", pragma)
		}
	}
	return &SQLiteGazetteer{db: db}, nil
}

const gazetteerMigration = `
CREATE TABLE IF NOT EXISTS zip_centroids (
	zip       TEXT PRIMARY KEY,
	lat       REAL NOT NULL,
	lng       REAL NOT NULL,
	loaded_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
CREATE TABLE IF NOT EXISTS gazetteer_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// etagKey is the gazetteer_meta row holding the ETag of the last loaded
// ZCTA archive.
const etagKey = "zcta_etag"

// Migrate creates the gazetteer tables if needed.
func (g *SQLiteGazetteer) Migrate(ctx context.Context) error {
	_, err := g.db.ExecContext(ctx, gazetteerMigration)
	return eris.Wrap(err, "gazetteer: migrate")
}

// Close closes the underlying database.
func (g *SQLiteGazetteer) Close() error {
	return g.db.Close()
}

// Resolve implements Gazetteer. A missing zip is a miss, not an error.
func (g *SQLiteGazetteer) Resolve(ctx context.Context, zip string) (model.Coordinate, bool, error) {
	var coord model.Coordinate
	err := g.db.QueryRowContext(ctx,
		`SELECT lat, lng FROM zip_centroids WHERE zip = ?`, zip,
	).Scan(&coord.Lat, &coord.Lng)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Coordinate{}, false, nil
	}
	if err != nil {
		return model.Coordinate{}, false, eris.Wrapf(err, "gazetteer: resolve %s", zip)
	}
	return coord, true, nil
}

// Upsert writes a batch of zip centroids in a single transaction.
func (g *SQLiteGazetteer) Upsert(ctx context.Context, rows map[string]model.Coordinate) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "gazetteer: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO zip_centroids (zip, lat, lng, loaded_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (zip) DO UPDATE SET
			lat = excluded.lat,
			lng = excluded.lng,
			loaded_at = excluded.loaded_at`)
	if err != nil {
		return 0, eris.Wrap(err, "gazetteer: prepare upsert")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	count := 0
	for zip, coord := range rows {
		if _, err := stmt.ExecContext(ctx, zip, coord.Lat, coord.Lng, now); err != nil {
			return count, eris.Wrapf(err, "gazetteer: upsert %s", zip)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return count, eris.Wrap(err, "gazetteer: commit")
	}
	return count, nil
}

// ETag returns the archive ETag recorded by the last load, or "" when no
// load has recorded one.
func (g *SQLiteGazetteer) ETag(ctx context.Context) (string, error) {
	var value string
	err := g.db.QueryRowContext(ctx,
		`SELECT value FROM gazetteer_meta WHERE key = ?`, etagKey,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrap(err, "gazetteer: read etag")
	}
	return value, nil
}

// SetETag records the archive ETag after a successful load.
func (g *SQLiteGazetteer) SetETag(ctx context.Context, etag string) error {
	_, err := g.db.ExecContext(ctx, `
		INSERT INTO gazetteer_meta (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		etagKey, etag)
	return eris.Wrap(err, "gazetteer: write etag")
}

// Count returns the number of loaded zip centroids.
func (g *SQLiteGazetteer) Count(ctx context.Context) (int, error) {
	var n int
	if err := g.db.QueryRowContext(ctx, `SELECT count(*) FROM zip_centroids`).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "gazetteer: count")
	}
	return n, nil
}
