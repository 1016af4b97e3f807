package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mangaden/internal/models"
)

type HistoryRepository interface {
	// Upsert records that the user just read the chapter, refreshing
	// last_read_at when an entry already exists.
	Upsert(ctx context.Context, userID string, chapterID, mangaID int64) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.ReadingHistory, error)
}

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Upsert(ctx context.Context, userID string, chapterID, mangaID int64) error {
	entry := &models.ReadingHistory{
		UserID:     userID,
		ChapterID:  chapterID,
		MangaID:    mangaID,
		LastReadAt: time.Now(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "chapter_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_read_at": time.Now(),
			"manga_id":     mangaID,
		}),
	}).Create(entry).Error
	if err != nil {
		return fmt.Errorf("upsert reading history: %w", err)
	}
	return nil
}

func (r *historyRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.ReadingHistory, error) {
	var list []models.ReadingHistory
	if err := r.db.WithContext(ctx).
		Preload("Manga").
		Preload("Chapter").
		Where("user_id = ?", userID).
		Order("last_read_at desc").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list reading history: %w", err)
	}
	return list, nil
}
