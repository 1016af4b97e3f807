package models

import "time"

// Comment forms a tree via ParentID. A parent must already exist and
// belong to the same manga before a reply is accepted, so cycles cannot
// be constructed; read-side traversal is additionally depth-limited.
type Comment struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;index"`
	MangaID   int64     `json:"manga_id" gorm:"not null;index"`
	ChapterID *int64    `json:"chapter_id,omitempty" gorm:"index"`
	ParentID  *int64    `json:"parent_id,omitempty" gorm:"index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User    User      `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Manga   Manga     `json:"manga,omitempty" gorm:"foreignKey:MangaID;constraint:OnDelete:CASCADE;"`
	Chapter *Chapter  `json:"chapter,omitempty" gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE;"`
	Parent  *Comment  `json:"parent,omitempty" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE;"`
	Replies []Comment `json:"replies,omitempty" gorm:"foreignKey:ParentID"`
}

func (Comment) TableName() string {
	return "comments"
}
