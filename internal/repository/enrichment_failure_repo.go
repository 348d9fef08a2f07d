package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"truckbay-api/internal/apperr"
	"truckbay-api/internal/model"
)

// EnrichmentFailureRepo records failed enrichment attempts so the backfill
// worker can retry them later.
type EnrichmentFailureRepo struct {
	db *pgxpool.Pool
}

func NewEnrichmentFailureRepo(db *pgxpool.Pool) *EnrichmentFailureRepo {
	return &EnrichmentFailureRepo{db: db}
}

// Record inserts or updates a failure record for a listing, incrementing the
// attempt counter on conflict. The next retry time depends on the error kind:
// transport failures retry soon, terminal failures are parked.
func (r *EnrichmentFailureRepo) Record(ctx context.Context, f *model.EnrichmentFailure) error {
	var nextAttempt *time.Time
	switch apperr.Kind(f.ErrorKind) {
	case apperr.KindUpstreamTimeout, apperr.KindUpstreamConnection:
		t := time.Now().Add(5 * time.Minute)
		nextAttempt = &t
	case apperr.KindInvalidInput, apperr.KindNotFound:
		// Caller error or no registry coverage: retrying cannot help
		nextAttempt = nil
	default:
		t := time.Now().Add(30 * time.Minute)
		nextAttempt = &t
	}

	query := `
		INSERT INTO enrichment_failures (listing_id, vin, error_kind, error_detail, attempts, last_attempt, next_attempt)
		VALUES ($1, $2, $3, $4, 1, NOW(), $5)
		ON CONFLICT (listing_id) DO UPDATE SET
			error_kind = EXCLUDED.error_kind,
			error_detail = EXCLUDED.error_detail,
			attempts = enrichment_failures.attempts + 1,
			last_attempt = NOW(),
			next_attempt = EXCLUDED.next_attempt,
			resolved = FALSE,
			resolved_at = NULL
	`

	_, err := r.db.Exec(ctx, query, f.ListingID, f.VIN, f.ErrorKind, f.ErrorDetail, nextAttempt)
	if err != nil {
		return fmt.Errorf("failed to record enrichment failure: %w", err)
	}

	return nil
}

// MarkResolved marks a listing's failure as resolved after a successful retry
func (r *EnrichmentFailureRepo) MarkResolved(ctx context.Context, listingID int) error {
	query := `
		UPDATE enrichment_failures
		SET resolved = TRUE, resolved_at = NOW()
		WHERE listing_id = $1
	`

	if _, err := r.db.Exec(ctx, query, listingID); err != nil {
		return fmt.Errorf("failed to mark enrichment failure resolved: %w", err)
	}

	return nil
}

// GetPendingRetries returns failures whose retry time has come
func (r *EnrichmentFailureRepo) GetPendingRetries(ctx context.Context, limit int) ([]model.EnrichmentFailure, error) {
	query := `
		SELECT id, listing_id, vin, error_kind, COALESCE(error_detail, ''),
			attempts, last_attempt, next_attempt, resolved, resolved_at, created_at
		FROM enrichment_failures
		WHERE resolved = FALSE
		AND next_attempt IS NOT NULL AND next_attempt <= NOW()
		ORDER BY next_attempt ASC, attempts ASC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending retries: %w", err)
	}
	defer rows.Close()

	var failures []model.EnrichmentFailure
	for rows.Next() {
		var f model.EnrichmentFailure
		err := rows.Scan(
			&f.ID, &f.ListingID, &f.VIN, &f.ErrorKind, &f.ErrorDetail,
			&f.Attempts, &f.LastAttempt, &f.NextAttempt,
			&f.Resolved, &f.ResolvedAt, &f.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan failure row: %w", err)
		}
		failures = append(failures, f)
	}

	return failures, rows.Err()
}
