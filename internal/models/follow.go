package models

import "time"

// Follow links a user to a manga they track. Requesting a follow that
// already exists removes it (toggle semantics, enforced in the service).
type Follow struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_manga_follow"`
	MangaID   int64     `json:"manga_id" gorm:"not null;uniqueIndex:idx_user_manga_follow"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	User  User  `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Manga Manga `json:"manga,omitempty" gorm:"foreignKey:MangaID;constraint:OnDelete:CASCADE;"`
}

func (Follow) TableName() string {
	return "follows"
}
