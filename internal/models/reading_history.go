package models

import "time"

// ReadingHistory is upserted every time a user opens a chapter.
type ReadingHistory struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_chapter_history;index:idx_history_user_read"`
	ChapterID  int64     `json:"chapter_id" gorm:"not null;uniqueIndex:idx_user_chapter_history"`
	MangaID    int64     `json:"manga_id" gorm:"not null"`
	LastReadAt time.Time `json:"last_read_at" gorm:"autoUpdateTime;index:idx_history_user_read,sort:desc"`

	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Chapter Chapter `json:"chapter,omitempty" gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE;"`
	Manga   Manga   `json:"manga,omitempty" gorm:"foreignKey:MangaID;constraint:OnDelete:CASCADE;"`
}

func (ReadingHistory) TableName() string {
	return "reading_history"
}
