package models

import (
	"fmt"
	"time"

	"inkwell/internal/reaction"

	"gorm.io/gorm"
)

// Comment is written by a user under a post.
type Comment struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	Content          string `gorm:"size:300;not null" json:"content"`
	PostID           uint   `gorm:"not null;index" json:"postId"`
	CommentatorID    uint   `gorm:"not null;index" json:"-"`
	CommentatorLogin string `gorm:"not null" json:"-"`
	// IsBanned mirrors the commentator's ban; banned comments are hidden from readers.
	IsBanned bool `gorm:"not null;default:false;index" json:"-"`

	reaction.State `gorm:"embedded"`
	Version        int64 `gorm:"not null;default:0" json:"-"`

	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Comment) ReactionState() *reaction.State { return &c.State }

func (c *Comment) ReactionKey() string { return CommentReactionKey(c.ID) }

// ReactionRow returns the primary key and the reaction version of the row.
func (c *Comment) ReactionRow() (uint, int64) { return c.ID, c.Version }

// CommentReactionKey is the lock key for a comment's reactions.
func CommentReactionKey(id uint) string { return fmt.Sprintf("comment:%d", id) }

// CommentatorInfo identifies the author of a comment.
type CommentatorInfo struct {
	UserID    uint   `json:"userId"`
	UserLogin string `json:"userLogin"`
}

// LikesInfo is the reaction summary shown with a comment.
type LikesInfo struct {
	LikesCount    int             `json:"likesCount"`
	DislikesCount int             `json:"dislikesCount"`
	MyStatus      reaction.Status `json:"myStatus"`
}

// CommentView is the public projection of a comment.
type CommentView struct {
	ID              uint            `json:"id"`
	Content         string          `json:"content"`
	CommentatorInfo CommentatorInfo `json:"commentatorInfo"`
	CreatedAt       time.Time       `json:"createdAt"`
	LikesInfo       LikesInfo       `json:"likesInfo"`
}

// ToView builds the public projection for viewerID (0 for anonymous).
func (c *Comment) ToView(viewerID uint) CommentView {
	return CommentView{
		ID:      c.ID,
		Content: c.Content,
		CommentatorInfo: CommentatorInfo{
			UserID:    c.CommentatorID,
			UserLogin: c.CommentatorLogin,
		},
		CreatedAt: c.CreatedAt,
		LikesInfo: LikesInfo{
			LikesCount:    c.Aggregate.Likes,
			DislikesCount: c.Aggregate.Dislikes,
			MyStatus:      c.MyStatus(viewerID),
		},
	}
}
