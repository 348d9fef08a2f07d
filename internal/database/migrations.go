package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunMigrations creates the marketplace schema if it does not exist yet
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS dealers (
			id SERIAL PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			city VARCHAR(100),
			state VARCHAR(50),
			phone VARCHAR(50),
			email VARCHAR(200) NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS vehicles (
			id SERIAL PRIMARY KEY,
			year INTEGER NOT NULL,
			make VARCHAR(100) NOT NULL,
			model VARCHAR(100) NOT NULL,
			body_style VARCHAR(100),
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS vehicle_configs (
			id SERIAL PRIMARY KEY,
			vehicle_id INTEGER NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
			name VARCHAR(200) NOT NULL,
			curb_weight INTEGER NOT NULL DEFAULT 0,
			gvwr INTEGER NOT NULL DEFAULT 0,
			gawr_front INTEGER NOT NULL DEFAULT 0,
			gawr_rear INTEGER NOT NULL DEFAULT 0,
			front_axle_ratio DECIMAL(4,3)
		)`,
		`CREATE TABLE IF NOT EXISTS equipment_configs (
			id SERIAL PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			weight INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS listings (
			id SERIAL PRIMARY KEY,
			dealer_id INTEGER NOT NULL REFERENCES dealers(id) ON DELETE CASCADE,
			vin VARCHAR(17) NOT NULL,
			year INTEGER,
			make VARCHAR(100),
			model VARCHAR(100),
			price DECIMAL(12,2),
			mileage INTEGER,
			status VARCHAR(20) NOT NULL DEFAULT 'draft',
			image_urls JSONB NOT NULL DEFAULT '[]',
			attributes JSONB,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS enrichment_failures (
			id SERIAL PRIMARY KEY,
			listing_id INTEGER NOT NULL UNIQUE REFERENCES listings(id) ON DELETE CASCADE,
			vin VARCHAR(17) NOT NULL,
			error_kind VARCHAR(50) NOT NULL,
			error_detail TEXT,
			attempts INTEGER NOT NULL DEFAULT 1,
			last_attempt TIMESTAMP NOT NULL DEFAULT NOW(),
			next_attempt TIMESTAMP,
			resolved BOOLEAN NOT NULL DEFAULT FALSE,
			resolved_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_dealer ON listings(dealer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_vin ON listings(vin)`,
		`CREATE INDEX IF NOT EXISTS idx_enrichment_failures_unresolved
			ON enrichment_failures(resolved) WHERE resolved = FALSE`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
