package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"mangaden/internal/models"
)

type FollowRepository interface {
	Create(ctx context.Context, userID string, mangaID int64) error
	Delete(ctx context.Context, userID string, mangaID int64) error
	Exists(ctx context.Context, userID string, mangaID int64) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]models.Follow, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, userID string, mangaID int64) error {
	follow := &models.Follow{UserID: userID, MangaID: mangaID}
	if err := r.db.WithContext(ctx).Create(follow).Error; err != nil {
		return fmt.Errorf("create follow: %w", classify(err))
	}
	return nil
}

func (r *followRepository) Delete(ctx context.Context, userID string, mangaID int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND manga_id = ?", userID, mangaID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return fmt.Errorf("delete follow: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, userID string, mangaID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ? AND manga_id = ?", userID, mangaID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return count > 0, nil
}

func (r *followRepository) ListByUser(ctx context.Context, userID string) ([]models.Follow, error) {
	var list []models.Follow
	if err := r.db.WithContext(ctx).
		Preload("Manga").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	return list, nil
}
