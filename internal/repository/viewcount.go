package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mangaden/internal/models"
)

type ViewCountRepository interface {
	// Increment bumps the (manga, day) counter in a single upsert
	// statement, so concurrent first-views of a day cannot create
	// duplicate rows.
	Increment(ctx context.Context, mangaID int64, day time.Time) error
	GetForDay(ctx context.Context, mangaID int64, day time.Time) (*models.ViewCount, error)
}

type viewCountRepository struct {
	db *gorm.DB
}

func NewViewCountRepository(db *gorm.DB) ViewCountRepository {
	return &viewCountRepository{db: db}
}

func (r *viewCountRepository) Increment(ctx context.Context, mangaID int64, day time.Time) error {
	row := &models.ViewCount{
		MangaID: mangaID,
		Date:    models.DayOf(day),
		Count:   1,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "manga_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count": gorm.Expr("view_counts.count + 1"),
		}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("increment daily views: %w", err)
	}
	return nil
}

func (r *viewCountRepository) GetForDay(ctx context.Context, mangaID int64, day time.Time) (*models.ViewCount, error) {
	var vc models.ViewCount
	if err := r.db.WithContext(ctx).
		Where("manga_id = ? AND date = ?", mangaID, models.DayOf(day).Format("2006-01-02")).
		First(&vc).Error; err != nil {
		return nil, classify(err)
	}
	return &vc, nil
}
