package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a registered account. Bloggers are ordinary users that own blogs.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Login     string     `gorm:"size:10;uniqueIndex;not null" json:"login"`
	Email     string     `gorm:"uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	IsBanned  bool       `gorm:"not null;default:false;index" json:"-"`
	BanReason string     `json:"-"`
	BanDate   *time.Time `json:"-"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"-"`
	// Soft delete keeps reaction records and comments resolvable after removal.
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BanInfo is the moderation status exposed to super-admins.
type BanInfo struct {
	IsBanned  bool       `json:"isBanned"`
	BanDate   *time.Time `json:"banDate"`
	BanReason *string    `json:"banReason"`
}

// SAUserView is the super-admin projection of a user.
type SAUserView struct {
	ID        uint      `json:"id"`
	Login     string    `json:"login"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	BanInfo   BanInfo   `json:"banInfo"`
}

// ToSAView builds the super-admin projection.
func (u *User) ToSAView() SAUserView {
	info := BanInfo{IsBanned: u.IsBanned, BanDate: u.BanDate}
	if u.IsBanned {
		reason := u.BanReason
		info.BanReason = &reason
	}
	return SAUserView{
		ID:        u.ID,
		Login:     u.Login,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		BanInfo:   info,
	}
}
