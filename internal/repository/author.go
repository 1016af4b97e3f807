package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"mangaden/internal/models"
)

type AuthorRepository interface {
	Create(ctx context.Context, a *models.Author) error
	Update(ctx context.Context, a *models.Author) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Author, error)
	GetAll(ctx context.Context) ([]models.Author, error)
	// ExistsSlugExcept reports whether another author already holds slug,
	// excluding the record being updated. Used by slug de-duplication.
	ExistsSlugExcept(ctx context.Context, slug string, excludeID int64) (bool, error)
}

type authorRepository struct {
	db *gorm.DB
}

func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{db: db}
}

func (r *authorRepository) Create(ctx context.Context, a *models.Author) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create author: %w", classify(err))
	}
	return nil
}

func (r *authorRepository) Update(ctx context.Context, a *models.Author) error {
	if err := r.db.WithContext(ctx).Save(a).Error; err != nil {
		return fmt.Errorf("update author: %w", classify(err))
	}
	return nil
}

func (r *authorRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&models.Author{}, id).Error; err != nil {
		return fmt.Errorf("delete author: %w", classify(err))
	}
	return nil
}

func (r *authorRepository) GetByID(ctx context.Context, id int64) (*models.Author, error) {
	var a models.Author
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, classify(err)
	}
	return &a, nil
}

func (r *authorRepository) GetAll(ctx context.Context) ([]models.Author, error) {
	var list []models.Author
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	return list, nil
}

func (r *authorRepository) ExistsSlugExcept(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Author{}).
		Where("slug = ? AND id <> ?", slug, excludeID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check author slug: %w", err)
	}
	return count > 0, nil
}
