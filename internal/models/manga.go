package models

import "time"

// Publication status values for Manga.Status.
const (
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusHiatus    = "hiatus"
)

// ValidStatus reports whether s is a recognized publication status.
func ValidStatus(s string) bool {
	return s == StatusOngoing || s == StatusCompleted || s == StatusHiatus
}

type Manga struct {
	ID               int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title            string    `json:"title" gorm:"size:255;not null"`
	Slug             string    `json:"slug" gorm:"uniqueIndex;size:280;not null"`
	AlternativeTitle string    `json:"alternative_title" gorm:"size:255"`
	AuthorID         *int64    `json:"author_id,omitempty" gorm:"index"`
	Description      string    `json:"description" gorm:"type:text"`
	CoverImage       string    `json:"cover_image"`
	Status           string    `json:"status" gorm:"size:20;default:'ongoing';not null"`
	Views            int64     `json:"views" gorm:"default:0;not null;index:idx_manga_views,sort:desc"`
	Rating           float64   `json:"rating" gorm:"type:decimal(4,2);default:0;not null"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"autoUpdateTime;index:idx_manga_updated,sort:desc"`

	// Associations
	Author     *Author    `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL;"`
	Categories []Category `json:"categories,omitempty" gorm:"many2many:manga_categories;"`
	Chapters   []Chapter  `json:"chapters,omitempty" gorm:"foreignKey:MangaID"`
}

func (Manga) TableName() string {
	return "manga"
}
