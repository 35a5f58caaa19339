package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/harborview-living/directory-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It backs local
// development and single-host deployments.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS communities (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	location    TEXT NOT NULL DEFAULT '',
	zip         TEXT NOT NULL DEFAULT '',
	lat         REAL,
	lng         REAL,
	care_types  TEXT NOT NULL DEFAULT '[]',
	amenities   TEXT NOT NULL DEFAULT '[]',
	description TEXT NOT NULL DEFAULT '',
	image_url   TEXT NOT NULL DEFAULT '',
	rating      REAL,
	position    INTEGER NOT NULL DEFAULT 0,
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS leads (
	id             TEXT PRIMARY KEY,
	first_name     TEXT NOT NULL,
	last_name      TEXT NOT NULL,
	email          TEXT NOT NULL,
	phone          TEXT NOT NULL DEFAULT '',
	zip            TEXT NOT NULL DEFAULT '',
	recommendation TEXT,
	community_ids  TEXT NOT NULL DEFAULT '[]',
	status         TEXT NOT NULL DEFAULT 'new',
	created_at     DATETIME NOT NULL,
	synced_at      DATETIME
);

CREATE INDEX IF NOT EXISTS idx_communities_zip ON communities(zip);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertCommunities(ctx context.Context, communities []model.Community) (int64, error) {
	if len(communities) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO communities (id, name, location, zip, lat, lng, care_types, amenities, description, image_url, rating, position, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			location = excluded.location,
			zip = excluded.zip,
			lat = excluded.lat,
			lng = excluded.lng,
			care_types = excluded.care_types,
			amenities = excluded.amenities,
			description = excluded.description,
			image_url = excluded.image_url,
			rating = excluded.rating,
			position = excluded.position,
			updated_at = excluded.updated_at`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	var count int64
	for i, c := range communities {
		careTypes, err := json.Marshal(c.CareTypes)
		if err != nil {
			return count, eris.Wrapf(err, "sqlite: marshal care types for %s", c.ID)
		}
		amenities, err := json.Marshal(c.Amenities)
		if err != nil {
			return count, eris.Wrapf(err, "sqlite: marshal amenities for %s", c.ID)
		}

		var lat, lng *float64
		if c.Coordinate != nil {
			lat, lng = &c.Coordinate.Lat, &c.Coordinate.Lng
		}

		if _, err := stmt.ExecContext(ctx,
			c.ID, c.Name, c.Location, c.Zip, lat, lng,
			string(careTypes), string(amenities), c.Description, c.ImageURL, c.Rating, i, now,
		); err != nil {
			return count, eris.Wrapf(err, "sqlite: upsert community %s", c.ID)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return count, eris.Wrap(err, "sqlite: commit")
	}
	return count, nil
}

func (s *SQLiteStore) ListCommunities(ctx context.Context) ([]model.Community, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, location, zip, lat, lng, care_types, amenities, description, image_url, rating
		FROM communities
		ORDER BY position, id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list communities")
	}
	defer rows.Close() //nolint:errcheck

	var communities []model.Community
	for rows.Next() {
		var c model.Community
		var lat, lng *float64
		var careTypes, amenities string
		if err := rows.Scan(&c.ID, &c.Name, &c.Location, &c.Zip, &lat, &lng,
			&careTypes, &amenities, &c.Description, &c.ImageURL, &c.Rating); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan community")
		}
		if err := json.Unmarshal([]byte(careTypes), &c.CareTypes); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal care types for %s", c.ID)
		}
		if err := json.Unmarshal([]byte(amenities), &c.Amenities); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal amenities for %s", c.ID)
		}
		if c.CareTypes == nil {
			c.CareTypes = []model.CareType{}
		}
		if lat != nil && lng != nil {
			c.Coordinate = &model.Coordinate{Lat: *lat, Lng: *lng}
		}
		communities = append(communities, c)
	}
	return communities, eris.Wrap(rows.Err(), "sqlite: iterate communities")
}

func (s *SQLiteStore) CreateLead(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	lead.ID = uuid.New().String()
	lead.Status = model.LeadStatusNew
	lead.CreatedAt = time.Now().UTC()

	var recJSON *string
	if lead.Recommendation != nil {
		b, err := json.Marshal(lead.Recommendation)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: marshal recommendation")
		}
		s := string(b)
		recJSON = &s
	}
	idsJSON, err := json.Marshal(lead.CommunityIDs)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal community ids")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO leads (id, first_name, last_name, email, phone, zip, recommendation, community_ids, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.FirstName, lead.LastName, lead.Email, lead.Phone, lead.Zip,
		recJSON, string(idsJSON), string(lead.Status), lead.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert lead")
	}
	return &lead, nil
}

func (s *SQLiteStore) GetLead(ctx context.Context, leadID string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, phone, zip, recommendation, community_ids, status, created_at, synced_at
		FROM leads WHERE id = ?`, leadID)

	lead, err := scanLead(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Errorf("sqlite: lead %s not found", leadID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get lead %s", leadID)
	}
	return lead, nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, zip, recommendation, community_ids, status, created_at, synced_at
		FROM leads`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close() //nolint:errcheck

	var leads []model.Lead
	for rows.Next() {
		lead, err := scanLead(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		leads = append(leads, *lead)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: iterate leads")
}

func (s *SQLiteStore) MarkLeadSynced(ctx context.Context, leadID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET status = ?, synced_at = ? WHERE id = ?`,
		string(model.LeadStatusSynced), at.UTC(), leadID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark lead synced %s", leadID)
	}
	return checkRowsAffected(res, "lead", leadID)
}

func (s *SQLiteStore) MarkLeadFailed(ctx context.Context, leadID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET status = ? WHERE id = ?`,
		string(model.LeadStatusFailed), leadID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark lead failed %s", leadID)
	}
	return checkRowsAffected(res, "lead", leadID)
}

// scanLead decodes one lead row; the scan argument order matches every lead
// SELECT in this file.
func scanLead(scan func(dest ...any) error) (*model.Lead, error) {
	var lead model.Lead
	var recJSON *string
	var idsJSON string
	var status string
	if err := scan(&lead.ID, &lead.FirstName, &lead.LastName, &lead.Email, &lead.Phone, &lead.Zip,
		&recJSON, &idsJSON, &status, &lead.CreatedAt, &lead.SyncedAt); err != nil {
		return nil, err
	}
	lead.Status = model.LeadStatus(status)
	if recJSON != nil {
		if err := json.Unmarshal([]byte(*recJSON), &lead.Recommendation); err != nil {
			return nil, eris.Wrap(err, "unmarshal recommendation")
		}
	}
	if err := json.Unmarshal([]byte(idsJSON), &lead.CommunityIDs); err != nil {
		return nil, eris.Wrap(err, "unmarshal community ids")
	}
	return &lead, nil
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: %s %s not found", kind, id)
	}
	return nil
}
