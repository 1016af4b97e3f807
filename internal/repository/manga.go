package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"mangaden/internal/models"
)

// SearchFilters narrows the catalog listing. Empty fields are ignored.
type SearchFilters struct {
	Query        string
	CategorySlug string
	Status       string
	Page         int
	PageSize     int
}

type MangaRepository interface {
	Create(ctx context.Context, m *models.Manga, categoryIDs []int64) error
	Update(ctx context.Context, m *models.Manga, categoryIDs []int64) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Manga, error)
	GetBySlug(ctx context.Context, slug string) (*models.Manga, error)
	GetAll(ctx context.Context) ([]models.Manga, error)
	Latest(ctx context.Context, limit int) ([]models.Manga, error)
	Search(ctx context.Context, filters SearchFilters) ([]models.Manga, int64, error)
	ExistsSlugExcept(ctx context.Context, slug string, excludeID int64) (bool, error)
	IncrementViews(ctx context.Context, id int64) error
	UpdateRating(ctx context.Context, id int64, rating float64) error
	// TopViewedSince ranks manga by their summed daily view counts from
	// the given date onward.
	TopViewedSince(ctx context.Context, since time.Time, limit int) ([]models.Manga, error)
}

type mangaRepository struct {
	db *gorm.DB
}

func NewMangaRepository(db *gorm.DB) MangaRepository {
	return &mangaRepository{db: db}
}

func (r *mangaRepository) Create(ctx context.Context, m *models.Manga, categoryIDs []int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return replaceCategories(tx, m, categoryIDs)
	})
	if err != nil {
		return fmt.Errorf("create manga: %w", classify(err))
	}
	return nil
}

func (r *mangaRepository) Update(ctx context.Context, m *models.Manga, categoryIDs []int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(m).Error; err != nil {
			return err
		}
		return replaceCategories(tx, m, categoryIDs)
	})
	if err != nil {
		return fmt.Errorf("update manga: %w", classify(err))
	}
	return nil
}

func replaceCategories(tx *gorm.DB, m *models.Manga, categoryIDs []int64) error {
	categories := make([]models.Category, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		categories = append(categories, models.Category{ID: id})
	}
	return tx.Model(m).Association("Categories").Replace(&categories)
}

func (r *mangaRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Select("Categories").Delete(&models.Manga{ID: id}).Error; err != nil {
		return fmt.Errorf("delete manga: %w", classify(err))
	}
	return nil
}

func (r *mangaRepository) GetByID(ctx context.Context, id int64) (*models.Manga, error) {
	var m models.Manga
	if err := r.db.WithContext(ctx).
		Preload("Categories").
		Preload("Author").
		First(&m, id).Error; err != nil {
		return nil, classify(err)
	}
	return &m, nil
}

func (r *mangaRepository) GetBySlug(ctx context.Context, slug string) (*models.Manga, error) {
	var m models.Manga
	if err := r.db.WithContext(ctx).
		Preload("Categories").
		Preload("Author").
		Where("slug = ?", slug).
		First(&m).Error; err != nil {
		return nil, classify(err)
	}
	return &m, nil
}

func (r *mangaRepository) GetAll(ctx context.Context) ([]models.Manga, error) {
	var list []models.Manga
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Order("created_at desc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list manga: %w", err)
	}
	return list, nil
}

func (r *mangaRepository) Latest(ctx context.Context, limit int) ([]models.Manga, error) {
	var list []models.Manga
	if err := r.db.WithContext(ctx).
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("chapter_number desc")
		}).
		Order("updated_at desc").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("latest manga: %w", err)
	}
	return list, nil
}

// Search performs case-insensitive partial matching on title, alternative
// title and author name, combined with optional category and status
// filters. Each whitespace token of the query must appear in at least one
// of the text fields.
func (r *mangaRepository) Search(ctx context.Context, filters SearchFilters) ([]models.Manga, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.Manga{}).Distinct()

	tokens := strings.Fields(filters.Query)
	if len(tokens) > 0 {
		db = db.Joins("LEFT JOIN authors ON authors.id = manga.author_id")
		for _, t := range tokens {
			p := "%" + t + "%"
			db = db.Where(
				"(manga.title ILIKE ? OR manga.alternative_title ILIKE ? OR COALESCE(authors.name,'') ILIKE ?)",
				p, p, p,
			)
		}
	}

	if filters.CategorySlug != "" {
		db = db.
			Joins("JOIN manga_categories mc ON mc.manga_id = manga.id").
			Joins("JOIN categories ON categories.id = mc.category_id").
			Where("categories.slug = ?", filters.CategorySlug)
	}

	if filters.Status != "" {
		db = db.Where("manga.status = ?", filters.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count search results: %w", err)
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = 24
	}

	var list []models.Manga
	if err := db.
		Order("manga.updated_at desc").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("search manga: %w", err)
	}
	return list, total, nil
}

func (r *mangaRepository) ExistsSlugExcept(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Manga{}).
		Where("slug = ? AND id <> ?", slug, excludeID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check manga slug: %w", err)
	}
	return count > 0, nil
}

func (r *mangaRepository) IncrementViews(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Manga{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		return fmt.Errorf("increment manga views: %w", err)
	}
	return nil
}

func (r *mangaRepository) UpdateRating(ctx context.Context, id int64, rating float64) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Manga{}).
		Where("id = ?", id).
		UpdateColumn("rating", rating).Error; err != nil {
		return fmt.Errorf("update manga rating: %w", err)
	}
	return nil
}

func (r *mangaRepository) TopViewedSince(ctx context.Context, since time.Time, limit int) ([]models.Manga, error) {
	var list []models.Manga
	if err := r.db.WithContext(ctx).
		Joins("JOIN view_counts vc ON vc.manga_id = manga.id").
		Where("vc.date >= ?", models.DayOf(since).Format("2006-01-02")).
		Group("manga.id").
		Order("SUM(vc.count) desc").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("top viewed manga: %w", err)
	}
	return list, nil
}
