// Package storage holds the optional persistence backends: a Postgres store
// for extracted listings and a Redis cache for parse responses. The engine
// works without either; they are wired in only when configured.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"estateparser/internal/domain"
)

// ListingStore persists extracted listings keyed by their object URL.
type ListingStore struct {
	db *pgxpool.Pool
}

func NewListingStore(ctx context.Context, connStr string) (*ListingStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	s := &ListingStore{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *ListingStore) ensureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS listings (
			id          BIGSERIAL PRIMARY KEY,
			site_url    TEXT NOT NULL,
			object_url  TEXT NOT NULL UNIQUE,
			title       TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			address     TEXT NOT NULL DEFAULT '',
			price       TEXT NOT NULL DEFAULT '',
			rooms       TEXT NOT NULL DEFAULT '',
			floor       TEXT NOT NULL DEFAULT '',
			area        TEXT NOT NULL DEFAULT '',
			photos      JSONB NOT NULL DEFAULT '[]',
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("ensure listings schema: %w", err)
	}
	return nil
}

func (s *ListingStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// SaveListings upserts the batch; the newest extraction wins per object URL.
func (s *ListingStore) SaveListings(ctx context.Context, listings []domain.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, l := range listings {
		photos, err := json.Marshal(l.Photos)
		if err != nil {
			return fmt.Errorf("marshal photos for %s: %w", l.ObjectURL, err)
		}
		batch.Queue(`
			INSERT INTO listings
			  (site_url, object_url, title, description, address, price, rooms, floor, area, photos)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (object_url) DO UPDATE SET
			  site_url = EXCLUDED.site_url,
			  title = EXCLUDED.title,
			  description = EXCLUDED.description,
			  address = EXCLUDED.address,
			  price = EXCLUDED.price,
			  rooms = EXCLUDED.rooms,
			  floor = EXCLUDED.floor,
			  area = EXCLUDED.area,
			  photos = EXCLUDED.photos,
			  updated_at = NOW()`,
			l.SiteURL, l.ObjectURL, l.Title, l.Description, l.Address,
			l.Price, l.Rooms, l.Floor, l.Area, photos)
	}

	if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save listings: %w", err)
	}
	return nil
}

func (s *ListingStore) Close() {
	s.db.Close()
}
