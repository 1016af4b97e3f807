package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mangaden/internal/models"
	"mangaden/internal/repository"
	"mangaden/internal/service"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, email, password1, password2 string) (*models.User, error) {
	args := m.Called(ctx, username, email, password1, password2)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*models.User), args.Error(2)
}

// MockSocialService mocks the SocialService interface
type MockSocialService struct {
	mock.Mock
}

func (m *MockSocialService) ToggleFollow(ctx context.Context, userID string, mangaID int64) (bool, error) {
	args := m.Called(ctx, userID, mangaID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSocialService) IsFollowing(ctx context.Context, userID string, mangaID int64) (bool, error) {
	args := m.Called(ctx, userID, mangaID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSocialService) ListFollowed(ctx context.Context, userID string) ([]models.Follow, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Follow), args.Error(1)
}

func (m *MockSocialService) AddComment(ctx context.Context, userID string, mangaID int64, chapterID, parentID *int64, content string) (*models.Comment, error) {
	args := m.Called(ctx, userID, mangaID, chapterID, parentID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockSocialService) ListComments(ctx context.Context, mangaID int64, limit int) ([]models.Comment, error) {
	args := m.Called(ctx, mangaID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockSocialService) RateManga(ctx context.Context, userID string, mangaID int64, score int) error {
	args := m.Called(ctx, userID, mangaID, score)
	return args.Error(0)
}

func (m *MockSocialService) UserRating(ctx context.Context, userID string, mangaID int64) (int, error) {
	args := m.Called(ctx, userID, mangaID)
	return args.Int(0), args.Error(1)
}

// MockProfileService mocks the ProfileService interface
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockProfileService) Update(ctx context.Context, userID, bio string, avatar *service.Upload) (*models.UserProfile, error) {
	args := m.Called(ctx, userID, bio, avatar)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockProfileService) History(ctx context.Context, userID string) ([]models.ReadingHistory, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReadingHistory), args.Error(1)
}

// MockChapterService mocks the ChapterService interface
type MockChapterService struct {
	mock.Mock
}

func (m *MockChapterService) Create(ctx context.Context, in service.ChapterInput) (*models.Chapter, int, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).(*models.Chapter), args.Int(1), args.Error(2)
}

func (m *MockChapterService) Update(ctx context.Context, id int64, number float64, title string) (*models.Chapter, error) {
	args := m.Called(ctx, id, number, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chapter), args.Error(1)
}

func (m *MockChapterService) AddPages(ctx context.Context, chapterID int64, arc *service.Upload, pages []service.Upload, replace bool) (int, error) {
	args := m.Called(ctx, chapterID, arc, pages, replace)
	return args.Int(0), args.Error(1)
}

func (m *MockChapterService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockChapterService) Get(ctx context.Context, id int64) (*models.Chapter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chapter), args.Error(1)
}

func (m *MockChapterService) ListByManga(ctx context.Context, mangaID int64) ([]models.Chapter, error) {
	args := m.Called(ctx, mangaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Chapter), args.Error(1)
}

func (m *MockChapterService) Reader(ctx context.Context, mangaSlug, chapterSlug, userID string) (*service.ReaderData, error) {
	args := m.Called(ctx, mangaSlug, chapterSlug, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReaderData), args.Error(1)
}

// MockBrowseService mocks the BrowseService interface
type MockBrowseService struct {
	mock.Mock
}

func (m *MockBrowseService) Home(ctx context.Context) (*service.HomeData, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HomeData), args.Error(1)
}

func (m *MockBrowseService) Search(ctx context.Context, filters repository.SearchFilters) ([]models.Manga, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Manga), args.Get(1).(int64), args.Error(2)
}

func (m *MockBrowseService) Category(ctx context.Context, slug string, page int) (*models.Category, []models.Manga, int64, error) {
	args := m.Called(ctx, slug, page)
	if args.Get(0) == nil {
		return nil, nil, 0, args.Error(3)
	}
	return args.Get(0).(*models.Category), args.Get(1).([]models.Manga), args.Get(2).(int64), args.Error(3)
}

func (m *MockBrowseService) Detail(ctx context.Context, slug, userID string) (*service.MangaDetail, error) {
	args := m.Called(ctx, slug, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MangaDetail), args.Error(1)
}

// MockCatalogService mocks the CatalogService interface
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) CreateManga(ctx context.Context, in service.MangaInput) (*models.Manga, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Manga), args.Error(1)
}

func (m *MockCatalogService) UpdateManga(ctx context.Context, id int64, in service.MangaInput) (*models.Manga, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Manga), args.Error(1)
}

func (m *MockCatalogService) DeleteManga(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCatalogService) GetManga(ctx context.Context, id int64) (*models.Manga, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Manga), args.Error(1)
}

func (m *MockCatalogService) ListManga(ctx context.Context) ([]models.Manga, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Manga), args.Error(1)
}

func (m *MockCatalogService) CreateAuthor(ctx context.Context, name, bio string) (*models.Author, error) {
	args := m.Called(ctx, name, bio)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Author), args.Error(1)
}

func (m *MockCatalogService) UpdateAuthor(ctx context.Context, id int64, name, bio string) (*models.Author, error) {
	args := m.Called(ctx, id, name, bio)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Author), args.Error(1)
}

func (m *MockCatalogService) DeleteAuthor(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCatalogService) GetAuthor(ctx context.Context, id int64) (*models.Author, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Author), args.Error(1)
}

func (m *MockCatalogService) ListAuthors(ctx context.Context) ([]models.Author, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Author), args.Error(1)
}

func (m *MockCatalogService) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	args := m.Called(ctx, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCatalogService) UpdateCategory(ctx context.Context, id int64, name, description string) (*models.Category, error) {
	args := m.Called(ctx, id, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCatalogService) DeleteCategory(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCatalogService) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}
