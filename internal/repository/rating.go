package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mangaden/internal/models"
)

type RatingRepository interface {
	// Upsert writes the user's score for a manga: a second rating from
	// the same user updates the existing row instead of adding one.
	Upsert(ctx context.Context, userID string, mangaID int64, score int) error
	GetByUserAndManga(ctx context.Context, userID string, mangaID int64) (*models.Rating, error)
	Average(ctx context.Context, mangaID int64) (float64, error)
	Count(ctx context.Context, mangaID int64) (int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Upsert(ctx context.Context, userID string, mangaID int64, score int) error {
	rating := &models.Rating{UserID: userID, MangaID: mangaID, Score: score}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "manga_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
	}).Create(rating).Error
	if err != nil {
		return fmt.Errorf("upsert rating: %w", classify(err))
	}
	return nil
}

func (r *ratingRepository) GetByUserAndManga(ctx context.Context, userID string, mangaID int64) (*models.Rating, error) {
	var rating models.Rating
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND manga_id = ?", userID, mangaID).
		First(&rating).Error; err != nil {
		return nil, classify(err)
	}
	return &rating, nil
}

func (r *ratingRepository) Average(ctx context.Context, mangaID int64) (float64, error) {
	var avg struct {
		Average float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("COALESCE(AVG(score), 0) as average").
		Where("manga_id = ?", mangaID).
		Scan(&avg).Error
	if err != nil {
		return 0, fmt.Errorf("average rating: %w", err)
	}
	return avg.Average, nil
}

func (r *ratingRepository) Count(ctx context.Context, mangaID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Where("manga_id = ?", mangaID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count ratings: %w", err)
	}
	return count, nil
}
