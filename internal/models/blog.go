package models

import (
	"time"

	"gorm.io/gorm"
)

// Blog is owned by one blogger and groups posts.
type Blog struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"size:15;not null" json:"name"`
	Description     string         `gorm:"size:500;not null" json:"description"`
	WebsiteURL      string         `gorm:"size:100;not null" json:"websiteUrl"`
	IsMembership    bool           `gorm:"not null;default:false" json:"isMembership"`
	OwnerID         *uint          `gorm:"index" json:"-"`
	OwnerLogin      string         `json:"-"`
	IsBannedByAdmin bool           `gorm:"not null;default:false;index" json:"-"`
	BanDate         *time.Time     `json:"-"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"-"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// OwnedBy reports whether userID owns the blog.
func (b *Blog) OwnedBy(userID uint) bool {
	return b.OwnerID != nil && *b.OwnerID == userID
}

// BlogOwnerInfo is shown to super-admins.
type BlogOwnerInfo struct {
	UserID    *uint  `json:"userId"`
	UserLogin string `json:"userLogin"`
}

// BlogBanInfo is shown to super-admins.
type BlogBanInfo struct {
	IsBanned bool       `json:"isBanned"`
	BanDate  *time.Time `json:"banDate"`
}

// SABlogView is the super-admin projection of a blog.
type SABlogView struct {
	Blog
	BlogOwnerInfo BlogOwnerInfo `json:"blogOwnerInfo"`
	BanInfo       BlogBanInfo   `json:"banInfo"`
}

// ToSAView builds the super-admin projection.
func (b *Blog) ToSAView() SABlogView {
	return SABlogView{
		Blog:          *b,
		BlogOwnerInfo: BlogOwnerInfo{UserID: b.OwnerID, UserLogin: b.OwnerLogin},
		BanInfo:       BlogBanInfo{IsBanned: b.IsBannedByAdmin, BanDate: b.BanDate},
	}
}

// BlogUserBan records that a blogger banned a user from commenting on one blog.
type BlogUserBan struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	BlogID    uint      `gorm:"not null;uniqueIndex:idx_blog_user_ban" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_blog_user_ban" json:"id"`
	Login     string    `gorm:"not null" json:"login"`
	BanReason string    `gorm:"not null" json:"-"`
	BanDate   time.Time `json:"-"`
}

// BannedUserView is the blogger-facing projection of a ban.
type BannedUserView struct {
	ID      uint   `json:"id"`
	Login   string `json:"login"`
	BanInfo struct {
		IsBanned  bool      `json:"isBanned"`
		BanDate   time.Time `json:"banDate"`
		BanReason string    `json:"banReason"`
	} `json:"banInfo"`
}

// ToView builds the blogger-facing projection.
func (b *BlogUserBan) ToView() BannedUserView {
	v := BannedUserView{ID: b.UserID, Login: b.Login}
	v.BanInfo.IsBanned = true
	v.BanInfo.BanDate = b.BanDate
	v.BanInfo.BanReason = b.BanReason
	return v
}
