package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"mangaden/internal/models"
)

type ChapterRepository interface {
	Create(ctx context.Context, c *models.Chapter) error
	Update(ctx context.Context, c *models.Chapter) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Chapter, error)
	GetBySlug(ctx context.Context, mangaSlug, chapterSlug string) (*models.Chapter, error)
	ListByManga(ctx context.Context, mangaID int64) ([]models.Chapter, error)
	Next(ctx context.Context, mangaID int64, number float64) (*models.Chapter, error)
	Previous(ctx context.Context, mangaID int64, number float64) (*models.Chapter, error)
	IncrementViews(ctx context.Context, id int64) error
	CountImages(ctx context.Context, chapterID int64) (int64, error)
	ListImages(ctx context.Context, chapterID int64) ([]models.ChapterImage, error)
	// CreateImages inserts all page rows in one transaction: either the
	// whole set persists or none of it does.
	CreateImages(ctx context.Context, images []models.ChapterImage) error
	// ReplaceImages drops a chapter's existing pages and inserts the new
	// set in the same transaction.
	ReplaceImages(ctx context.Context, chapterID int64, images []models.ChapterImage) error
}

type chapterRepository struct {
	db *gorm.DB
}

func NewChapterRepository(db *gorm.DB) ChapterRepository {
	return &chapterRepository{db: db}
}

func (r *chapterRepository) Create(ctx context.Context, c *models.Chapter) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create chapter: %w", classify(err))
	}
	return nil
}

func (r *chapterRepository) Update(ctx context.Context, c *models.Chapter) error {
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		return fmt.Errorf("update chapter: %w", classify(err))
	}
	return nil
}

func (r *chapterRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&models.Chapter{}, id).Error; err != nil {
		return fmt.Errorf("delete chapter: %w", classify(err))
	}
	return nil
}

func (r *chapterRepository) GetByID(ctx context.Context, id int64) (*models.Chapter, error) {
	var c models.Chapter
	if err := r.db.WithContext(ctx).Preload("Manga").First(&c, id).Error; err != nil {
		return nil, classify(err)
	}
	return &c, nil
}

func (r *chapterRepository) GetBySlug(ctx context.Context, mangaSlug, chapterSlug string) (*models.Chapter, error) {
	var c models.Chapter
	if err := r.db.WithContext(ctx).
		Joins("JOIN manga ON manga.id = chapters.manga_id").
		Where("chapters.slug = ? AND manga.slug = ?", chapterSlug, mangaSlug).
		Preload("Manga").
		First(&c).Error; err != nil {
		return nil, classify(err)
	}
	return &c, nil
}

func (r *chapterRepository) ListByManga(ctx context.Context, mangaID int64) ([]models.Chapter, error) {
	var list []models.Chapter
	if err := r.db.WithContext(ctx).
		Where("manga_id = ?", mangaID).
		Order("chapter_number desc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	return list, nil
}

func (r *chapterRepository) Next(ctx context.Context, mangaID int64, number float64) (*models.Chapter, error) {
	var c models.Chapter
	err := r.db.WithContext(ctx).
		Where("manga_id = ? AND chapter_number > ?", mangaID, number).
		Order("chapter_number asc").
		First(&c).Error
	if err != nil {
		return nil, classify(err)
	}
	return &c, nil
}

func (r *chapterRepository) Previous(ctx context.Context, mangaID int64, number float64) (*models.Chapter, error) {
	var c models.Chapter
	err := r.db.WithContext(ctx).
		Where("manga_id = ? AND chapter_number < ?", mangaID, number).
		Order("chapter_number desc").
		First(&c).Error
	if err != nil {
		return nil, classify(err)
	}
	return &c, nil
}

func (r *chapterRepository) IncrementViews(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Chapter{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		return fmt.Errorf("increment chapter views: %w", err)
	}
	return nil
}

func (r *chapterRepository) CountImages(ctx context.Context, chapterID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ChapterImage{}).
		Where("chapter_id = ?", chapterID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count chapter images: %w", err)
	}
	return count, nil
}

func (r *chapterRepository) ListImages(ctx context.Context, chapterID int64) ([]models.ChapterImage, error) {
	var list []models.ChapterImage
	if err := r.db.WithContext(ctx).
		Where("chapter_id = ?", chapterID).
		Order("page_number asc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list chapter images: %w", err)
	}
	return list, nil
}

func (r *chapterRepository) CreateImages(ctx context.Context, images []models.ChapterImage) error {
	if len(images) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&images).Error
	})
	if err != nil {
		return fmt.Errorf("create chapter images: %w", classify(err))
	}
	return nil
}

func (r *chapterRepository) ReplaceImages(ctx context.Context, chapterID int64, images []models.ChapterImage) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chapter_id = ?", chapterID).Delete(&models.ChapterImage{}).Error; err != nil {
			return err
		}
		if len(images) == 0 {
			return nil
		}
		return tx.Create(&images).Error
	})
	if err != nil {
		return fmt.Errorf("replace chapter images: %w", classify(err))
	}
	return nil
}
