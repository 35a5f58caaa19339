package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/harborview-living/directory-cli/internal/db"
	"github.com/harborview-living/directory-cli/internal/model"
)

// PostgresStore implements Store on top of a pgx pool. It is the production
// backend; SQLiteStore covers local development.
type PostgresStore struct {
	pool db.Pool
}

func NewPostgres(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS communities (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	location    TEXT NOT NULL DEFAULT '',
	zip         TEXT NOT NULL DEFAULT '',
	lat         DOUBLE PRECISION,
	lng         DOUBLE PRECISION,
	care_types  TEXT[] NOT NULL DEFAULT '{}',
	amenities   TEXT[] NOT NULL DEFAULT '{}',
	description TEXT NOT NULL DEFAULT '',
	image_url   TEXT NOT NULL DEFAULT '',
	rating      DOUBLE PRECISION,
	position    INTEGER NOT NULL DEFAULT 0,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS leads (
	id             TEXT PRIMARY KEY,
	first_name     TEXT NOT NULL,
	last_name      TEXT NOT NULL,
	email          TEXT NOT NULL,
	phone          TEXT NOT NULL DEFAULT '',
	zip            TEXT NOT NULL DEFAULT '',
	recommendation JSONB,
	community_ids  TEXT[] NOT NULL DEFAULT '{}',
	status         TEXT NOT NULL DEFAULT 'new',
	created_at     TIMESTAMPTZ NOT NULL,
	synced_at      TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_communities_zip ON communities(zip);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "store: migrate postgres")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var communityColumns = []string{
	"id", "name", "location", "zip", "lat", "lng",
	"care_types", "amenities", "description", "image_url", "rating", "position", "updated_at",
}

func (s *PostgresStore) UpsertCommunities(ctx context.Context, communities []model.Community) (int64, error) {
	if len(communities) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, len(communities))
	for i, c := range communities {
		var lat, lng *float64
		if c.Coordinate != nil {
			lat, lng = &c.Coordinate.Lat, &c.Coordinate.Lng
		}
		careTypes := make([]string, len(c.CareTypes))
		for j, ct := range c.CareTypes {
			careTypes[j] = string(ct)
		}

		rows[i] = []any{
			c.ID, c.Name, c.Location, c.Zip, lat, lng,
			careTypes, c.Amenities, c.Description, c.ImageURL, c.Rating, i, now,
		}
	}

	count, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "communities",
		Columns:      communityColumns,
		ConflictKeys: []string{"id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "store: upsert communities")
	}
	return count, nil
}

func (s *PostgresStore) ListCommunities(ctx context.Context) ([]model.Community, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, location, zip, lat, lng, care_types, amenities, description, image_url, rating
		FROM communities
		ORDER BY position, id`)
	if err != nil {
		return nil, eris.Wrap(err, "store: list communities")
	}
	defer rows.Close()

	var communities []model.Community
	for rows.Next() {
		var c model.Community
		var lat, lng *float64
		var careTypes []string
		if err := rows.Scan(&c.ID, &c.Name, &c.Location, &c.Zip, &lat, &lng,
			&careTypes, &c.Amenities, &c.Description, &c.ImageURL, &c.Rating); err != nil {
			return nil, eris.Wrap(err, "store: scan community")
		}
		c.CareTypes = make([]model.CareType, len(careTypes))
		for i, ct := range careTypes {
			c.CareTypes[i] = model.CareType(ct)
		}
		if lat != nil && lng != nil {
			c.Coordinate = &model.Coordinate{Lat: *lat, Lng: *lng}
		}
		communities = append(communities, c)
	}
	return communities, eris.Wrap(rows.Err(), "store: iterate communities")
}

func (s *PostgresStore) CreateLead(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	lead.ID = uuid.New().String()
	lead.Status = model.LeadStatusNew
	lead.CreatedAt = time.Now().UTC()

	var recJSON []byte
	if lead.Recommendation != nil {
		var err error
		recJSON, err = json.Marshal(lead.Recommendation)
		if err != nil {
			return nil, eris.Wrap(err, "store: marshal recommendation")
		}
	}
	if lead.CommunityIDs == nil {
		lead.CommunityIDs = []string{}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO leads (id, first_name, last_name, email, phone, zip, recommendation, community_ids, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		lead.ID, lead.FirstName, lead.LastName, lead.Email, lead.Phone, lead.Zip,
		recJSON, lead.CommunityIDs, string(lead.Status), lead.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: insert lead")
	}
	return &lead, nil
}

const selectLeadColumns = `id, first_name, last_name, email, phone, zip, recommendation, community_ids, status, created_at, synced_at`

func (s *PostgresStore) GetLead(ctx context.Context, leadID string) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+selectLeadColumns+` FROM leads WHERE id = $1`, leadID)

	lead, err := scanPgLead(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("store: lead %s not found", leadID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "store: get lead %s", leadID)
	}
	return lead, nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT ` + selectLeadColumns + ` FROM leads`
	var args []any
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(` WHERE status = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "store: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		lead, err := scanPgLead(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "store: scan lead")
		}
		leads = append(leads, *lead)
	}
	return leads, eris.Wrap(rows.Err(), "store: iterate leads")
}

func (s *PostgresStore) MarkLeadSynced(ctx context.Context, leadID string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET status = $1, synced_at = $2 WHERE id = $3`,
		string(model.LeadStatusSynced), at.UTC(), leadID,
	)
	if err != nil {
		return eris.Wrapf(err, "store: mark lead synced %s", leadID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("store: lead %s not found", leadID)
	}
	return nil
}

func (s *PostgresStore) MarkLeadFailed(ctx context.Context, leadID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET status = $1 WHERE id = $2`,
		string(model.LeadStatusFailed), leadID,
	)
	if err != nil {
		return eris.Wrapf(err, "store: mark lead failed %s", leadID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("store: lead %s not found", leadID)
	}
	return nil
}

func scanPgLead(scan func(dest ...any) error) (*model.Lead, error) {
	var lead model.Lead
	var recJSON []byte
	var status string
	if err := scan(&lead.ID, &lead.FirstName, &lead.LastName, &lead.Email, &lead.Phone, &lead.Zip,
		&recJSON, &lead.CommunityIDs, &status, &lead.CreatedAt, &lead.SyncedAt); err != nil {
		return nil, err
	}
	lead.Status = model.LeadStatus(status)
	if len(recJSON) > 0 {
		if err := json.Unmarshal(recJSON, &lead.Recommendation); err != nil {
			return nil, eris.Wrap(err, "unmarshal recommendation")
		}
	}
	return &lead, nil
}
