package models

// Category is a browsable genre grouping. Name uniqueness guarantees slug
// uniqueness, so no suffix de-duplication is applied to category slugs.
type Category struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;size:120;not null"`
	Description string `json:"description" gorm:"type:text"`

	Mangas []Manga `json:"mangas,omitempty" gorm:"many2many:manga_categories;"`
}

func (Category) TableName() string {
	return "categories"
}
