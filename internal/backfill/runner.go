package backfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"truckbay-api/internal/apperr"
	"truckbay-api/internal/model"
)

// ListingSource provides the listings to enrich and persists the results
type ListingSource interface {
	CountUnenriched(ctx context.Context) (int, error)
	ListUnenriched(ctx context.Context, afterID, limit int) ([]model.Listing, error)
	GetByID(ctx context.Context, id int) (*model.Listing, error)
	Update(ctx context.Context, listing *model.Listing) error
}

// FailureLog records failed attempts, clears them on success and schedules
// retries
type FailureLog interface {
	Record(ctx context.Context, failure *model.EnrichmentFailure) error
	MarkResolved(ctx context.Context, listingID int) error
	GetPendingRetries(ctx context.Context, limit int) ([]model.EnrichmentFailure, error)
}

// Enricher runs the enrichment pipeline for a VIN
type Enricher interface {
	Enrich(ctx context.Context, vin string) (*model.EnrichmentResult, error)
}

// Options tune a backfill run
type Options struct {
	BatchSize       int
	CheckpointEvery int
	ResumeFromID    int
	DryRun          bool
}

// Runner walks every listing without enrichment data and runs the pipeline
// over it, checkpointing as it goes so interrupted runs resume cleanly.
type Runner struct {
	listings    ListingSource
	enricher    Enricher
	failures    FailureLog
	checkpoints *CheckpointManager
	opts        Options
	logger      *slog.Logger

	Progress *ProgressTracker
}

// NewRunner assembles a backfill run
func NewRunner(listings ListingSource, enricher Enricher, failures FailureLog, checkpoints *CheckpointManager, opts Options) *Runner {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.CheckpointEvery <= 0 {
		opts.CheckpointEvery = 50
	}

	return &Runner{
		listings:    listings,
		enricher:    enricher,
		failures:    failures,
		checkpoints: checkpoints,
		opts:        opts,
		logger:      slog.Default(),
	}
}

// Run processes listings until done or the context is canceled. Cancellation
// saves a checkpoint and returns ctx.Err().
func (r *Runner) Run(ctx context.Context) error {
	total, err := r.listings.CountUnenriched(ctx)
	if err != nil {
		return fmt.Errorf("failed to count unenriched listings: %w", err)
	}

	r.Progress = NewProgressTracker(total)

	afterID := r.opts.ResumeFromID
	if afterID == 0 && r.checkpoints != nil {
		checkpoint, err := r.checkpoints.Load()
		if err != nil {
			return err
		}
		if checkpoint != nil {
			afterID = checkpoint.LastListingID
			r.logger.Info("resuming from checkpoint",
				"last_listing_id", afterID, "saved_at", checkpoint.SavedAt)
		}
	}

	r.logger.Info("backfill started", "unenriched_listings", total, "after_id", afterID)

	sinceCheckpoint := 0
	for {
		batch, err := r.listings.ListUnenriched(ctx, afterID, r.opts.BatchSize)
		if err != nil {
			return fmt.Errorf("failed to fetch listing batch: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			listing := &batch[i]

			if err := ctx.Err(); err != nil {
				r.saveCheckpoint(afterID)
				return err
			}

			afterID = listing.ID
			r.Progress.SetCurrentVIN(listing.VIN)

			r.processListing(ctx, listing)

			sinceCheckpoint++
			if sinceCheckpoint >= r.opts.CheckpointEvery {
				r.saveCheckpoint(afterID)
				sinceCheckpoint = 0
				r.logProgress()
			}
		}
	}

	r.logProgress()

	// A clean run leaves no checkpoint behind
	if r.checkpoints != nil {
		if err := r.checkpoints.Delete(); err != nil {
			r.logger.Warn("failed to remove checkpoint", "error", err)
		}
	}

	return nil
}

// RetryDue re-runs enrichment for recorded failures whose scheduled retry
// time has come. Failures that fail again get their next attempt pushed
// forward by the failure log, so the loop terminates.
func (r *Runner) RetryDue(ctx context.Context) error {
	if r.failures == nil {
		return nil
	}

	r.Progress = NewProgressTracker(0)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		pending, err := r.failures.GetPendingRetries(ctx, r.opts.BatchSize)
		if err != nil {
			return fmt.Errorf("failed to fetch pending retries: %w", err)
		}
		if len(pending) == 0 {
			break
		}

		for i := range pending {
			if err := ctx.Err(); err != nil {
				return err
			}

			listing, err := r.listings.GetByID(ctx, pending[i].ListingID)
			if err != nil {
				// Listing deleted since the failure was recorded
				if markErr := r.failures.MarkResolved(ctx, pending[i].ListingID); markErr != nil {
					r.logger.Warn("failed to resolve stale failure",
						"listing_id", pending[i].ListingID, "error", markErr)
				}
				r.Progress.MarkSkipped()
				continue
			}

			// Already enriched, so the failure record is stale. It has to
			// be resolved here or the next fetch returns it again.
			if listing.Attributes != nil {
				if markErr := r.failures.MarkResolved(ctx, listing.ID); markErr != nil {
					r.logger.Warn("failed to resolve stale failure",
						"listing_id", listing.ID, "error", markErr)
				}
				r.Progress.MarkSkipped()
				continue
			}

			r.Progress.SetCurrentVIN(listing.VIN)
			r.processListing(ctx, listing)
		}

		// A dry run reschedules nothing, so a second fetch would return
		// the same records
		if r.opts.DryRun {
			break
		}
	}

	r.logProgress()
	return nil
}

func (r *Runner) processListing(ctx context.Context, listing *model.Listing) {
	if listing.Attributes != nil {
		r.Progress.MarkSkipped()
		return
	}

	enrichment, err := r.enricher.Enrich(ctx, listing.VIN)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		r.Progress.MarkFailed(err.Error())
		if r.failures != nil && !r.opts.DryRun {
			failure := &model.EnrichmentFailure{
				ListingID:   listing.ID,
				VIN:         listing.VIN,
				ErrorKind:   string(apperr.KindOf(err)),
				ErrorDetail: err.Error(),
			}
			if recErr := r.failures.Record(ctx, failure); recErr != nil {
				r.logger.Error("failed to record enrichment failure",
					"listing_id", listing.ID, "error", recErr)
			}
		}
		return
	}

	if r.opts.DryRun {
		r.Progress.MarkEnriched(enrichment.Metadata.EPAAvailable)
		return
	}

	listing.Year = enrichment.Year
	listing.Make = enrichment.Make
	listing.Model = enrichment.Model
	listing.Attributes = enrichment

	if err := r.listings.Update(ctx, listing); err != nil {
		r.Progress.MarkFailed(err.Error())
		r.logger.Error("failed to persist enrichment", "listing_id", listing.ID, "error", err)
		return
	}

	if r.failures != nil {
		if err := r.failures.MarkResolved(ctx, listing.ID); err != nil {
			r.logger.Warn("failed to resolve enrichment failure",
				"listing_id", listing.ID, "error", err)
		}
	}

	r.Progress.MarkEnriched(enrichment.Metadata.EPAAvailable)
}

func (r *Runner) saveCheckpoint(lastID int) {
	if r.checkpoints == nil || r.opts.DryRun {
		return
	}
	if err := r.checkpoints.Save(lastID, r.Progress); err != nil {
		r.logger.Error("failed to save checkpoint", "error", err)
	}
}

func (r *Runner) logProgress() {
	s := r.Progress.Snapshot()
	r.logger.Info("backfill progress",
		"processed", s.Processed,
		"total", s.TotalListings,
		"percentage", fmt.Sprintf("%.1f", s.Percentage),
		"enriched", s.Enriched,
		"epa_matched", s.EPAMatched,
		"failed", s.Failed,
		"skipped", s.Skipped,
		"remaining", s.Remaining.Round(time.Second).String(),
	)
}
