package service

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/mock"

	"mangaden/internal/models"
	"mangaden/internal/repository"
)

// MockMangaRepository mocks the MangaRepository interface
type MockMangaRepository struct {
	mock.Mock
}

func (m *MockMangaRepository) Create(ctx context.Context, manga *models.Manga, categoryIDs []int64) error {
	args := m.Called(ctx, manga, categoryIDs)
	return args.Error(0)
}

func (m *MockMangaRepository) Update(ctx context.Context, manga *models.Manga, categoryIDs []int64) error {
	args := m.Called(ctx, manga, categoryIDs)
	return args.Error(0)
}

func (m *MockMangaRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMangaRepository) GetByID(ctx context.Context, id int64) (*models.Manga, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Manga), args.Error(1)
}

func (m *MockMangaRepository) GetBySlug(ctx context.Context, slug string) (*models.Manga, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Manga), args.Error(1)
}

func (m *MockMangaRepository) GetAll(ctx context.Context) ([]models.Manga, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Manga), args.Error(1)
}

func (m *MockMangaRepository) Latest(ctx context.Context, limit int) ([]models.Manga, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Manga), args.Error(1)
}

func (m *MockMangaRepository) Search(ctx context.Context, filters repository.SearchFilters) ([]models.Manga, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Manga), args.Get(1).(int64), args.Error(2)
}

func (m *MockMangaRepository) ExistsSlugExcept(ctx context.Context, slug string, excludeID int64) (bool, error) {
	args := m.Called(ctx, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMangaRepository) IncrementViews(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMangaRepository) UpdateRating(ctx context.Context, id int64, rating float64) error {
	args := m.Called(ctx, id, rating)
	return args.Error(0)
}

func (m *MockMangaRepository) TopViewedSince(ctx context.Context, since time.Time, limit int) ([]models.Manga, error) {
	args := m.Called(ctx, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Manga), args.Error(1)
}

// MockChapterRepository mocks the ChapterRepository interface
type MockChapterRepository struct {
	mock.Mock
}

func (m *MockChapterRepository) Create(ctx context.Context, c *models.Chapter) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockChapterRepository) Update(ctx context.Context, c *models.Chapter) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockChapterRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockChapterRepository) GetByID(ctx context.Context, id int64) (*models.Chapter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chapter), args.Error(1)
}

func (m *MockChapterRepository) GetBySlug(ctx context.Context, mangaSlug, chapterSlug string) (*models.Chapter, error) {
	args := m.Called(ctx, mangaSlug, chapterSlug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chapter), args.Error(1)
}

func (m *MockChapterRepository) ListByManga(ctx context.Context, mangaID int64) ([]models.Chapter, error) {
	args := m.Called(ctx, mangaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Chapter), args.Error(1)
}

func (m *MockChapterRepository) Next(ctx context.Context, mangaID int64, number float64) (*models.Chapter, error) {
	args := m.Called(ctx, mangaID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chapter), args.Error(1)
}

func (m *MockChapterRepository) Previous(ctx context.Context, mangaID int64, number float64) (*models.Chapter, error) {
	args := m.Called(ctx, mangaID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chapter), args.Error(1)
}

func (m *MockChapterRepository) IncrementViews(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockChapterRepository) CountImages(ctx context.Context, chapterID int64) (int64, error) {
	args := m.Called(ctx, chapterID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChapterRepository) ListImages(ctx context.Context, chapterID int64) ([]models.ChapterImage, error) {
	args := m.Called(ctx, chapterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChapterImage), args.Error(1)
}

func (m *MockChapterRepository) CreateImages(ctx context.Context, images []models.ChapterImage) error {
	args := m.Called(ctx, images)
	return args.Error(0)
}

func (m *MockChapterRepository) ReplaceImages(ctx context.Context, chapterID int64, images []models.ChapterImage) error {
	args := m.Called(ctx, chapterID, images)
	return args.Error(0)
}

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *models.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, p *models.UserProfile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockFollowRepository mocks the FollowRepository interface
type MockFollowRepository struct {
	mock.Mock
}

func (m *MockFollowRepository) Create(ctx context.Context, userID string, mangaID int64) error {
	args := m.Called(ctx, userID, mangaID)
	return args.Error(0)
}

func (m *MockFollowRepository) Delete(ctx context.Context, userID string, mangaID int64) error {
	args := m.Called(ctx, userID, mangaID)
	return args.Error(0)
}

func (m *MockFollowRepository) Exists(ctx context.Context, userID string, mangaID int64) (bool, error) {
	args := m.Called(ctx, userID, mangaID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) ListByUser(ctx context.Context, userID string) ([]models.Follow, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Follow), args.Error(1)
}

// MockCommentRepository mocks the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, c *models.Comment) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListRoots(ctx context.Context, mangaID int64, limit int) ([]models.Comment, error) {
	args := m.Called(ctx, mangaID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

// MockRatingRepository mocks the RatingRepository interface
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) Upsert(ctx context.Context, userID string, mangaID int64, score int) error {
	args := m.Called(ctx, userID, mangaID, score)
	return args.Error(0)
}

func (m *MockRatingRepository) GetByUserAndManga(ctx context.Context, userID string, mangaID int64) (*models.Rating, error) {
	args := m.Called(ctx, userID, mangaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rating), args.Error(1)
}

func (m *MockRatingRepository) Average(ctx context.Context, mangaID int64) (float64, error) {
	args := m.Called(ctx, mangaID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockRatingRepository) Count(ctx context.Context, mangaID int64) (int64, error) {
	args := m.Called(ctx, mangaID)
	return args.Get(0).(int64), args.Error(1)
}

// MockHistoryRepository mocks the HistoryRepository interface
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Upsert(ctx context.Context, userID string, chapterID, mangaID int64) error {
	args := m.Called(ctx, userID, chapterID, mangaID)
	return args.Error(0)
}

func (m *MockHistoryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.ReadingHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReadingHistory), args.Error(1)
}

// MockAuthorRepository mocks the AuthorRepository interface
type MockAuthorRepository struct {
	mock.Mock
}

func (m *MockAuthorRepository) Create(ctx context.Context, a *models.Author) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAuthorRepository) Update(ctx context.Context, a *models.Author) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAuthorRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAuthorRepository) GetByID(ctx context.Context, id int64) (*models.Author, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Author), args.Error(1)
}

func (m *MockAuthorRepository) GetAll(ctx context.Context) ([]models.Author, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Author), args.Error(1)
}

func (m *MockAuthorRepository) ExistsSlugExcept(ctx context.Context, slug string, excludeID int64) (bool, error) {
	args := m.Called(ctx, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockCategoryRepository mocks the CategoryRepository interface
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *models.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) Update(ctx context.Context, c *models.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

// MockViewCountRepository mocks the ViewCountRepository interface
type MockViewCountRepository struct {
	mock.Mock
}

func (m *MockViewCountRepository) Increment(ctx context.Context, mangaID int64, day time.Time) error {
	args := m.Called(ctx, mangaID, day)
	return args.Error(0)
}

func (m *MockViewCountRepository) GetForDay(ctx context.Context, mangaID int64, day time.Time) (*models.ViewCount, error) {
	args := m.Called(ctx, mangaID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ViewCount), args.Error(1)
}

// fakeMedia is an in-memory MediaStore that records what was staged,
// promoted and discarded, so tests can assert on file lifecycles
// without touching disk.
type fakeMedia struct {
	staged        int
	promoted      []string
	discarded     int
	removed       []string
	stageErr      error
	promoteFailAt int // 1-based promote call that fails; 0 never fails
}

func (f *fakeMedia) Stage(data []byte) (string, error) {
	if f.stageErr != nil {
		return "", f.stageErr
	}
	f.staged++
	return fmt.Sprintf("token-%d", f.staged), nil
}

func (f *fakeMedia) Promote(token, bucket, name string) (string, error) {
	if f.promoteFailAt > 0 && len(f.promoted)+1 == f.promoteFailAt {
		return "", fmt.Errorf("promote %s: rename failed", name)
	}
	ref := bucket + "/" + name
	f.promoted = append(f.promoted, ref)
	return ref, nil
}

func (f *fakeMedia) Discard(tokens ...string) {
	for _, t := range tokens {
		if t != "" {
			f.discarded++
		}
	}
}

func (f *fakeMedia) Remove(ref string) error {
	f.removed = append(f.removed, ref)
	return nil
}
