package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/events"
	"inkwell/internal/featureflags"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/reaction"
	"inkwell/internal/repository"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
)

// ReactionService applies like/dislike reactions to posts and comments.
//
// Writers to one target are serialized according to the configured mode.
// "lock" holds a per-target in-process mutex around the read-modify-write and
// "optimistic" relies on the version check alone. Both modes write with the
// version check and retry on a conflict, so writes from other processes or
// from a ban cascade are never overwritten. "none" lets the last write win.
// Events are published while the target is still held.
type ReactionService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	locker      reaction.Locker
	mode        string
	maxRetries  int
	publisher   events.Publisher
	flags       *featureflags.Manager
	clock       clockwork.Clock
}

// ReactionOptions configures a ReactionService. Zero values pick the defaults.
type ReactionOptions struct {
	Mode       string
	MaxRetries int
	Locker     reaction.Locker
	Publisher  events.Publisher
	Flags      *featureflags.Manager
	Clock      clockwork.Clock
}

// ReactInput is one like-status request.
type ReactInput struct {
	UserID     uint
	Login      string
	TargetID   uint
	LikeStatus string
}

func NewReactionService(postRepo repository.PostRepository, commentRepo repository.CommentRepository, opts ReactionOptions) *ReactionService {
	s := &ReactionService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		mode:        opts.Mode,
		maxRetries:  opts.MaxRetries,
		locker:      opts.Locker,
		publisher:   opts.Publisher,
		flags:       opts.Flags,
		clock:       opts.Clock,
	}
	if s.mode == "" {
		s.mode = config.ReactionConcurrencyLock
	}
	if s.maxRetries <= 0 {
		s.maxRetries = 3
	}
	switch {
	case s.mode != config.ReactionConcurrencyLock:
		s.locker = reaction.NoopLocker{}
	case s.locker == nil:
		s.locker = reaction.NewKeyedLocker()
	}
	if s.publisher == nil {
		s.publisher = events.Noop{}
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	return s
}

// ReactToPost sets the caller's reaction on a post.
func (s *ReactionService) ReactToPost(ctx context.Context, in ReactInput) error {
	return applyReaction(ctx, s, events.TargetPost, models.PostReactionKey(in.TargetID), in,
		s.postRepo.GetByID, s.postRepo.SaveReactions)
}

// ReactToComment sets the caller's reaction on a comment.
func (s *ReactionService) ReactToComment(ctx context.Context, in ReactInput) error {
	return applyReaction(ctx, s, events.TargetComment, models.CommentReactionKey(in.TargetID), in,
		s.commentRepo.GetByID, s.commentRepo.SaveReactions)
}

// Forget drops lock bookkeeping for a deleted target.
func (s *ReactionService) Forget(key string) {
	s.locker.Forget(key)
}

type reactable[T any] interface {
	*T
	reaction.Reactable
	ReactionRow() (id uint, version int64)
}

type reactionOutcome struct {
	change  reaction.Change
	changed bool
	totals  reaction.Aggregate
	version int64
}

func applyReaction[T any, P reactable[T]](
	ctx context.Context,
	s *ReactionService,
	target, key string,
	in ReactInput,
	load func(context.Context, uint) (P, error),
	save func(context.Context, P, bool) error,
) error {
	status, err := reaction.ParseStatus(in.LikeStatus)
	if err != nil {
		return models.NewFieldValidationError("likeStatus", "likeStatus must be one of None, Like, Dislike")
	}

	span, ctx := observability.NewSpan(ctx, "reaction.apply")
	defer span.End()
	span.AddAttributes(
		attribute.String("reaction.target", target),
		attribute.Int64("reaction.target_id", int64(in.TargetID)),
		attribute.String("reaction.status", status.String()),
		attribute.String("reaction.mode", s.mode),
	)

	attempt := func(checkVersion bool) (reactionOutcome, error) {
		t, err := load(ctx, in.TargetID)
		if err != nil {
			return reactionOutcome{}, err
		}
		at := utcNow(s.clock)
		change, changed := reaction.React(t, in.UserID, in.Login, status, at)
		out := reactionOutcome{change: change, changed: changed, totals: t.ReactionState().Aggregate}
		if !changed {
			return out, nil
		}
		if err := save(ctx, t, checkVersion); err != nil {
			return out, err
		}
		_, out.version = t.ReactionRow()
		return out, nil
	}

	unlock := s.locker.Lock(key)
	defer unlock()

	var out reactionOutcome
	if s.mode == config.ReactionConcurrencyNone {
		out, err = attempt(false)
	} else {
		out, err = s.retryOnConflict(ctx, target, attempt)
	}
	if err != nil {
		span.SetError(err)
		return err
	}

	observability.RecordReaction(target, out.change.From.String(), out.change.To.String(), out.changed)
	span.AddAttributes(attribute.Bool("reaction.changed", out.changed))
	if out.changed {
		s.publish(ctx, events.ReactionEvent{
			TargetType: target,
			TargetID:   in.TargetID,
			UserID:     in.UserID,
			Login:      in.Login,
			From:       out.change.From,
			To:         out.change.To,
			Likes:      out.totals.Likes,
			Dislikes:   out.totals.Dislikes,
			Version:    out.version,
			At:         utcNow(s.clock),
		})
	}
	return nil
}

// retryOnConflict reruns attempt with version checking until it lands or the retry budget runs out.
func (s *ReactionService) retryOnConflict(ctx context.Context, target string, attempt func(bool) (reactionOutcome, error)) (reactionOutcome, error) {
	for i := 0; i <= s.maxRetries; i++ {
		out, err := attempt(true)
		if !errors.Is(err, repository.ErrVersionConflict) {
			return out, err
		}
		observability.ReactionConflicts.WithLabelValues(target).Inc()
		if i == s.maxRetries {
			break
		}
		// linear backoff
		select {
		case <-s.clock.After(time.Duration(i+1) * time.Millisecond):
		case <-ctx.Done():
			return reactionOutcome{}, ctx.Err()
		}
	}
	observability.ReactionRetriesExhausted.WithLabelValues(target).Inc()
	middleware.Logger.WarnContext(ctx, "reaction retries exhausted",
		slog.String("target", target), slog.Int("retries", s.maxRetries))
	return reactionOutcome{}, models.NewConflictError("Reaction target is busy, try again")
}

// publish hands the event to the configured publisher. Failures never fail the request.
func (s *ReactionService) publish(ctx context.Context, event events.ReactionEvent) {
	if !s.flags.Enabled(featureflags.ReactionEvents, event.UserID) {
		return
	}
	if err := s.publisher.PublishReaction(ctx, event); err != nil {
		middleware.Logger.WarnContext(ctx, "reaction event publish failed",
			slog.String("key", event.Key()), slog.String("error", err.Error()))
	}
}
