package service

import (
	"context"
	"time"

	"mangaden/internal/models"
	"mangaden/internal/repository"
)

const (
	homeLatestCount  = 20
	rankingCount     = 10
	commentPageSize  = 10
	historyPageLimit = 50
)

// Ranking cache periods, also used as cache keys.
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// rankingsCache is what BrowseService needs from the cache layer.
// *cache.RankingsCache satisfies it; a nil cache disables caching.
type rankingsCache interface {
	Get(ctx context.Context, period string) ([]models.Manga, bool)
	Set(ctx context.Context, period string, list []models.Manga)
}

// HomeData is everything the landing page shows.
type HomeData struct {
	Latest     []models.Manga
	TopToday   []models.Manga
	TopWeek    []models.Manga
	TopMonth   []models.Manga
	Categories []models.Category
}

// MangaDetail is everything the series page shows for one manga.
type MangaDetail struct {
	Manga         *models.Manga
	AverageRating float64
	RatingCount   int64
	UserScore     int
	IsFollowing   bool
	Comments      []models.Comment
}

type BrowseService interface {
	Home(ctx context.Context) (*HomeData, error)
	Search(ctx context.Context, filters repository.SearchFilters) ([]models.Manga, int64, error)
	Category(ctx context.Context, slug string, page int) (*models.Category, []models.Manga, int64, error)
	// Detail loads the series page and counts the visit, both the manga's
	// lifetime total and today's daily bucket.
	Detail(ctx context.Context, slug, userID string) (*MangaDetail, error)
}

type browseService struct {
	mangaRepo    repository.MangaRepository
	categoryRepo repository.CategoryRepository
	followRepo   repository.FollowRepository
	ratingRepo   repository.RatingRepository
	commentRepo  repository.CommentRepository
	viewRepo     repository.ViewCountRepository
	rankings     rankingsCache
}

func NewBrowseService(
	mangaRepo repository.MangaRepository,
	categoryRepo repository.CategoryRepository,
	followRepo repository.FollowRepository,
	ratingRepo repository.RatingRepository,
	commentRepo repository.CommentRepository,
	viewRepo repository.ViewCountRepository,
	rankings rankingsCache,
) BrowseService {
	return &browseService{
		mangaRepo:    mangaRepo,
		categoryRepo: categoryRepo,
		followRepo:   followRepo,
		ratingRepo:   ratingRepo,
		commentRepo:  commentRepo,
		viewRepo:     viewRepo,
		rankings:     rankings,
	}
}

func (s *browseService) Home(ctx context.Context) (*HomeData, error) {
	latest, err := s.mangaRepo.Latest(ctx, homeLatestCount)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	data := &HomeData{Latest: latest, Categories: categories}
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if data.TopToday, err = s.topSince(ctx, PeriodToday, today); err != nil {
		return nil, err
	}
	if data.TopWeek, err = s.topSince(ctx, PeriodWeek, today.AddDate(0, 0, -7)); err != nil {
		return nil, err
	}
	if data.TopMonth, err = s.topSince(ctx, PeriodMonth, today.AddDate(0, 0, -30)); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *browseService) topSince(ctx context.Context, period string, since time.Time) ([]models.Manga, error) {
	if s.rankings != nil {
		if list, ok := s.rankings.Get(ctx, period); ok {
			return list, nil
		}
	}
	list, err := s.mangaRepo.TopViewedSince(ctx, since, rankingCount)
	if err != nil {
		return nil, err
	}
	if s.rankings != nil {
		s.rankings.Set(ctx, period, list)
	}
	return list, nil
}

func (s *browseService) Search(ctx context.Context, filters repository.SearchFilters) ([]models.Manga, int64, error) {
	return s.mangaRepo.Search(ctx, filters)
}

func (s *browseService) Category(ctx context.Context, slug string, page int) (*models.Category, []models.Manga, int64, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, 0, err
	}
	list, total, err := s.mangaRepo.Search(ctx, repository.SearchFilters{
		CategorySlug: slug,
		Page:         page,
	})
	if err != nil {
		return nil, nil, 0, err
	}
	return category, list, total, nil
}

func (s *browseService) Detail(ctx context.Context, slug, userID string) (*MangaDetail, error) {
	manga, err := s.mangaRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	// View counters are best effort and never block the page.
	_ = s.mangaRepo.IncrementViews(ctx, manga.ID)
	_ = s.viewRepo.Increment(ctx, manga.ID, time.Now())

	detail := &MangaDetail{Manga: manga}

	if detail.AverageRating, err = s.ratingRepo.Average(ctx, manga.ID); err != nil {
		return nil, err
	}
	if detail.RatingCount, err = s.ratingRepo.Count(ctx, manga.ID); err != nil {
		return nil, err
	}
	if detail.Comments, err = s.commentRepo.ListRoots(ctx, manga.ID, commentPageSize); err != nil {
		return nil, err
	}

	if userID != "" {
		if detail.IsFollowing, err = s.followRepo.Exists(ctx, userID, manga.ID); err != nil {
			return nil, err
		}
		rating, err := s.ratingRepo.GetByUserAndManga(ctx, userID, manga.ID)
		if err == nil {
			detail.UserScore = rating.Score
		}
	}
	return detail, nil
}
