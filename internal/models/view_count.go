package models

import "time"

// ViewCount holds one row per (manga, calendar day). Rows are maintained
// with a single-statement upsert so concurrent first-views of a day
// cannot race to create duplicates.
type ViewCount struct {
	ID      int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	MangaID int64     `json:"manga_id" gorm:"not null;uniqueIndex:idx_manga_date"`
	Date    time.Time `json:"date" gorm:"type:date;not null;uniqueIndex:idx_manga_date;index"`
	Count   int64     `json:"count" gorm:"default:0;not null"`

	Manga Manga `json:"manga,omitempty" gorm:"foreignKey:MangaID;constraint:OnDelete:CASCADE;"`
}

func (ViewCount) TableName() string {
	return "view_counts"
}

// DayOf buckets a moment into its calendar day as observed where the
// view happened. Two views on the same local date must land on the
// same row, so the bucket is the civil date, not a 24h-aligned instant.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
