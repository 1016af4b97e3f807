package models

type ChapterImage struct {
	ID         int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	ChapterID  int64  `json:"chapter_id" gorm:"not null;uniqueIndex:idx_chapter_page"`
	PageNumber int    `json:"page_number" gorm:"not null;uniqueIndex:idx_chapter_page"`
	Image      string `json:"image" gorm:"not null"`

	Chapter Chapter `json:"chapter,omitempty" gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE;"`
}

func (ChapterImage) TableName() string {
	return "chapter_images"
}
