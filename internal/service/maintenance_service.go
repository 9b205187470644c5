package service

import (
	"context"
	"errors"
	"log/slog"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/reaction"
	"inkwell/internal/repository"
)

const recountBatchSize = 200

// MaintenanceService rebuilds derived reaction data offline.
type MaintenanceService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
}

// Drift is one target whose stored totals disagreed with its ledger.
type Drift struct {
	// Key is the target's reaction key, e.g. "post:7".
	Key       string
	Stored    reaction.Aggregate
	Recounted reaction.Aggregate
}

// RecountReport summarizes a recount pass.
type RecountReport struct {
	Scanned int
	Drifted []Drift
	Fixed   int
	// Skipped counts fixes lost to a concurrent reaction write.
	Skipped int
}

func NewMaintenanceService(postRepo repository.PostRepository, commentRepo repository.CommentRepository) *MaintenanceService {
	return &MaintenanceService{postRepo: postRepo, commentRepo: commentRepo}
}

// Recount compares every post and comment aggregate with a recount of its ledger.
// With fix set, drifted totals are rewritten under the version guard.
func (s *MaintenanceService) Recount(ctx context.Context, fix bool) (RecountReport, error) {
	var report RecountReport

	err := s.postRepo.InBatches(ctx, recountBatchSize, func(batch []models.Post) error {
		return recountBatch(ctx, &report, batch, fix, s.postRepo.SaveReactions)
	})
	if err != nil {
		return report, err
	}
	err = s.commentRepo.InBatches(ctx, recountBatchSize, func(batch []models.Comment) error {
		return recountBatch(ctx, &report, batch, fix, s.commentRepo.SaveReactions)
	})
	if err != nil {
		return report, err
	}

	middleware.Logger.InfoContext(ctx, "reaction recount finished",
		slog.Int("scanned", report.Scanned),
		slog.Int("drifted", len(report.Drifted)),
		slog.Int("fixed", report.Fixed),
		slog.Int("skipped", report.Skipped),
	)
	return report, nil
}

func recountBatch[T any, P reactable[T]](
	ctx context.Context,
	report *RecountReport,
	batch []T,
	fix bool,
	save func(context.Context, P, bool) error,
) error {
	for i := range batch {
		target := P(&batch[i])
		state := target.ReactionState()
		report.Scanned++

		recounted := reaction.Recount(&state.Ledger)
		if recounted == state.Aggregate {
			continue
		}
		report.Drifted = append(report.Drifted, Drift{
			Key:       target.ReactionKey(),
			Stored:    state.Aggregate,
			Recounted: recounted,
		})
		if !fix {
			continue
		}

		state.Aggregate = recounted
		switch err := save(ctx, target, true); {
		case err == nil:
			report.Fixed++
		case errors.Is(err, repository.ErrVersionConflict):
			report.Skipped++
		default:
			return err
		}
	}
	return nil
}
