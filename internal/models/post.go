// Package models contains data structures for the application's domain models.
package models

import (
	"fmt"
	"time"

	"inkwell/internal/reaction"

	"gorm.io/gorm"
)

// Post belongs to a blog and carries its own reaction state.
type Post struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	Title            string `gorm:"size:30;not null" json:"title"`
	ShortDescription string `gorm:"size:100;not null" json:"shortDescription"`
	Content          string `gorm:"size:1000;not null" json:"content"`
	BlogID           uint   `gorm:"not null;index" json:"blogId"`
	BlogName         string `gorm:"not null" json:"blogName"`

	reaction.State `gorm:"embedded"`
	// Version guards optimistic reaction writes.
	Version int64 `gorm:"not null;default:0" json:"-"`

	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Post) ReactionState() *reaction.State { return &p.State }

func (p *Post) ReactionKey() string { return PostReactionKey(p.ID) }

// ReactionRow returns the primary key and the reaction version of the row.
func (p *Post) ReactionRow() (uint, int64) { return p.ID, p.Version }

// PostReactionKey is the lock key for a post's reactions.
func PostReactionKey(id uint) string { return fmt.Sprintf("post:%d", id) }

// LikeDetails is one entry of the newest-likes projection.
type LikeDetails struct {
	AddedAt time.Time `json:"addedAt"`
	UserID  uint      `json:"userId"`
	Login   string    `json:"login"`
}

// ExtendedLikesInfo is the reaction summary shown with a post.
type ExtendedLikesInfo struct {
	LikesCount    int             `json:"likesCount"`
	DislikesCount int             `json:"dislikesCount"`
	MyStatus      reaction.Status `json:"myStatus"`
	NewestLikes   []LikeDetails   `json:"newestLikes"`
}

// PostView is the public projection of a post.
type PostView struct {
	ID                uint              `json:"id"`
	Title             string            `json:"title"`
	ShortDescription  string            `json:"shortDescription"`
	Content           string            `json:"content"`
	BlogID            uint              `json:"blogId"`
	BlogName          string            `json:"blogName"`
	CreatedAt         time.Time         `json:"createdAt"`
	ExtendedLikesInfo ExtendedLikesInfo `json:"extendedLikesInfo"`
}

// NewestLikesFunc selects the newest-likes projection (ledger or timestamp order).
type NewestLikesFunc func(l *reaction.Ledger, n int, skip func(reaction.Record) bool) []reaction.Record

// ToView builds the public projection for viewerID (0 for anonymous).
// Reactions of banned users are left out of newestLikes.
func (p *Post) ToView(viewerID uint, newest NewestLikesFunc) PostView {
	if newest == nil {
		newest = reaction.NewestLikes
	}
	records := newest(&p.Ledger, reaction.NewestLikesLimit, reaction.SkipBanned)
	likes := make([]LikeDetails, 0, len(records))
	for _, r := range records {
		likes = append(likes, LikeDetails{AddedAt: r.AddedAt, UserID: r.UserID, Login: r.Login})
	}

	return PostView{
		ID:               p.ID,
		Title:            p.Title,
		ShortDescription: p.ShortDescription,
		Content:          p.Content,
		BlogID:           p.BlogID,
		BlogName:         p.BlogName,
		CreatedAt:        p.CreatedAt,
		ExtendedLikesInfo: ExtendedLikesInfo{
			LikesCount:    p.Aggregate.Likes,
			DislikesCount: p.Aggregate.Dislikes,
			MyStatus:      p.MyStatus(viewerID),
			NewestLikes:   likes,
		},
	}
}
