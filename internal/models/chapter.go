package models

import (
	"strconv"
	"time"
)

// Chapter numbers are floats so half-chapters like 10.5 work; the
// (manga_id, chapter_number) pair is the real identity.
type Chapter struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	MangaID       int64     `json:"manga_id" gorm:"not null;uniqueIndex:idx_manga_chapter_number;index:idx_chapter_manga"`
	ChapterNumber float64   `json:"chapter_number" gorm:"not null;uniqueIndex:idx_manga_chapter_number"`
	Title         string    `json:"title" gorm:"size:255"`
	Slug          string    `json:"slug" gorm:"size:300;index"`
	Views         int64     `json:"views" gorm:"default:0;not null"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	Manga  Manga          `json:"manga,omitempty" gorm:"foreignKey:MangaID;constraint:OnDelete:CASCADE;"`
	Images []ChapterImage `json:"images,omitempty" gorm:"foreignKey:ChapterID"`
}

func (Chapter) TableName() string {
	return "chapters"
}

// NumberString renders the chapter number without trailing zeros
// ("12", "10.5"), for slugs and page filenames.
func (c *Chapter) NumberString() string {
	return strconv.FormatFloat(c.ChapterNumber, 'f', -1, 64)
}
