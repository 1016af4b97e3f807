package models

type Author struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:200;not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;size:220;not null"`
	Bio  string `json:"bio" gorm:"type:text"`

	Mangas []Manga `json:"mangas,omitempty" gorm:"foreignKey:AuthorID"`
}

func (Author) TableName() string {
	return "authors"
}
