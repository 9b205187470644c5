// Package events publishes reaction changes to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inkwell/internal/observability"
	"inkwell/internal/reaction"
)

// Target kinds carried by ReactionEvent.TargetType.
const (
	TargetPost    = "post"
	TargetComment = "comment"
)

// ReactionEvent describes one applied reaction transition and the totals after it.
// Version is the target's reaction version after the write; consumers order by it.
type ReactionEvent struct {
	TargetType string          `json:"targetType"`
	TargetID   uint            `json:"targetId"`
	UserID     uint            `json:"userId"`
	Login      string          `json:"login"`
	From       reaction.Status `json:"from"`
	To         reaction.Status `json:"to"`
	Likes      int             `json:"likesCount"`
	Dislikes   int             `json:"dislikesCount"`
	Version    int64           `json:"version"`
	At         time.Time       `json:"at"`
}

// Key partitions events so one target's changes stay ordered.
func (e ReactionEvent) Key() string {
	return fmt.Sprintf("%s:%d", e.TargetType, e.TargetID)
}

// Encode returns the JSON wire form.
func (e ReactionEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers reaction events.
type Publisher interface {
	PublishReaction(ctx context.Context, event ReactionEvent) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) PublishReaction(context.Context, ReactionEvent) error { return nil }

func (Noop) Close() error { return nil }

// Multi fans an event out to several publishers. Every publisher is attempted.
type Multi []Publisher

// PublishReaction publishes to each publisher and joins their errors.
func (m Multi) PublishReaction(ctx context.Context, event ReactionEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishReaction(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes each publisher and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func record(sink string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	observability.EventsPublished.WithLabelValues(sink, result).Inc()
}
