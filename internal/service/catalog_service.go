package service

import (
	"context"
	"errors"
	"fmt"

	"mangaden/internal/archive"
	"mangaden/internal/models"
	"mangaden/internal/repository"
	"mangaden/internal/slug"
	"mangaden/internal/storage"
)

var ErrInvalidStatus = errors.New("invalid publication status")

// MediaStore is the slice of the storage layer the services need.
// *storage.Store satisfies it.
type MediaStore interface {
	Stage(data []byte) (string, error)
	Promote(token, bucket, name string) (string, error)
	Discard(tokens ...string)
	Remove(ref string) error
}

// Upload is a file received from a form, already read into memory.
type Upload struct {
	Name string
	Data []byte
}

// MangaInput carries the admin form fields for creating or editing a
// series. A nil Cover leaves the existing cover untouched.
type MangaInput struct {
	Title            string
	AlternativeTitle string
	Description      string
	AuthorID         *int64
	Status           string
	CategoryIDs      []int64
	Cover            *Upload
}

type CatalogService interface {
	CreateManga(ctx context.Context, in MangaInput) (*models.Manga, error)
	UpdateManga(ctx context.Context, id int64, in MangaInput) (*models.Manga, error)
	DeleteManga(ctx context.Context, id int64) error
	GetManga(ctx context.Context, id int64) (*models.Manga, error)
	ListManga(ctx context.Context) ([]models.Manga, error)

	CreateAuthor(ctx context.Context, name, bio string) (*models.Author, error)
	UpdateAuthor(ctx context.Context, id int64, name, bio string) (*models.Author, error)
	DeleteAuthor(ctx context.Context, id int64) error
	GetAuthor(ctx context.Context, id int64) (*models.Author, error)
	ListAuthors(ctx context.Context) ([]models.Author, error)

	CreateCategory(ctx context.Context, name, description string) (*models.Category, error)
	UpdateCategory(ctx context.Context, id int64, name, description string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type catalogService struct {
	mangaRepo    repository.MangaRepository
	authorRepo   repository.AuthorRepository
	categoryRepo repository.CategoryRepository
	chapterRepo  repository.ChapterRepository
	media        MediaStore
}

func NewCatalogService(
	mangaRepo repository.MangaRepository,
	authorRepo repository.AuthorRepository,
	categoryRepo repository.CategoryRepository,
	chapterRepo repository.ChapterRepository,
	media MediaStore,
) CatalogService {
	return &catalogService{
		mangaRepo:    mangaRepo,
		authorRepo:   authorRepo,
		categoryRepo: categoryRepo,
		chapterRepo:  chapterRepo,
		media:        media,
	}
}

// dedupSlug appends "-1", "-2", ... until the slug is free. excludeID
// lets an update keep its own slug.
func dedupSlug(ctx context.Context, base string, excludeID int64, taken func(context.Context, string, int64) (bool, error)) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		exists, err := taken(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *catalogService) CreateManga(ctx context.Context, in MangaInput) (*models.Manga, error) {
	if in.Title == "" {
		return nil, ErrMissingField
	}
	if in.Status == "" {
		in.Status = models.StatusOngoing
	}
	if !models.ValidStatus(in.Status) {
		return nil, ErrInvalidStatus
	}

	mangaSlug, err := dedupSlug(ctx, slug.Generate(in.Title), 0, s.mangaRepo.ExistsSlugExcept)
	if err != nil {
		return nil, err
	}

	manga := &models.Manga{
		Title:            in.Title,
		Slug:             mangaSlug,
		AlternativeTitle: in.AlternativeTitle,
		AuthorID:         in.AuthorID,
		Description:      in.Description,
		Status:           in.Status,
	}

	var coverToken string
	if in.Cover != nil {
		coverToken, err = s.media.Stage(in.Cover.Data)
		if err != nil {
			return nil, fmt.Errorf("stage cover: %w", err)
		}
		manga.CoverImage = storage.BucketCovers + "/" + mangaSlug + archive.NormalizeExt(in.Cover.Name)
	}

	if err := s.mangaRepo.Create(ctx, manga, in.CategoryIDs); err != nil {
		s.media.Discard(coverToken)
		return nil, err
	}

	if coverToken != "" {
		if _, err := s.media.Promote(coverToken, storage.BucketCovers, mangaSlug+archive.NormalizeExt(in.Cover.Name)); err != nil {
			_ = s.mangaRepo.Delete(ctx, manga.ID)
			return nil, fmt.Errorf("promote cover: %w", err)
		}
	}

	return manga, nil
}

func (s *catalogService) UpdateManga(ctx context.Context, id int64, in MangaInput) (*models.Manga, error) {
	manga, err := s.mangaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, ErrMissingField
	}
	if in.Status == "" {
		in.Status = manga.Status
	}
	if !models.ValidStatus(in.Status) {
		return nil, ErrInvalidStatus
	}

	if in.Title != manga.Title {
		manga.Slug, err = dedupSlug(ctx, slug.Generate(in.Title), id, s.mangaRepo.ExistsSlugExcept)
		if err != nil {
			return nil, err
		}
	}
	manga.Title = in.Title
	manga.AlternativeTitle = in.AlternativeTitle
	manga.Description = in.Description
	manga.AuthorID = in.AuthorID
	manga.Status = in.Status

	oldCover := manga.CoverImage
	var coverToken string
	if in.Cover != nil {
		coverToken, err = s.media.Stage(in.Cover.Data)
		if err != nil {
			return nil, fmt.Errorf("stage cover: %w", err)
		}
		manga.CoverImage = storage.BucketCovers + "/" + manga.Slug + archive.NormalizeExt(in.Cover.Name)
	}

	if err := s.mangaRepo.Update(ctx, manga, in.CategoryIDs); err != nil {
		s.media.Discard(coverToken)
		return nil, err
	}

	if coverToken != "" {
		if _, err := s.media.Promote(coverToken, storage.BucketCovers, manga.Slug+archive.NormalizeExt(in.Cover.Name)); err != nil {
			return nil, fmt.Errorf("promote cover: %w", err)
		}
		if oldCover != "" && oldCover != manga.CoverImage {
			_ = s.media.Remove(oldCover)
		}
	}

	return manga, nil
}

func (s *catalogService) DeleteManga(ctx context.Context, id int64) error {
	manga, err := s.mangaRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Collect page file refs before the rows cascade away.
	var refs []string
	chapters, err := s.chapterRepo.ListByManga(ctx, id)
	if err != nil {
		return err
	}
	for _, ch := range chapters {
		images, err := s.chapterRepo.ListImages(ctx, ch.ID)
		if err != nil {
			return err
		}
		for _, img := range images {
			refs = append(refs, img.Image)
		}
	}

	if err := s.mangaRepo.Delete(ctx, id); err != nil {
		return err
	}

	if manga.CoverImage != "" {
		_ = s.media.Remove(manga.CoverImage)
	}
	for _, ref := range refs {
		_ = s.media.Remove(ref)
	}
	return nil
}

func (s *catalogService) GetManga(ctx context.Context, id int64) (*models.Manga, error) {
	return s.mangaRepo.GetByID(ctx, id)
}

func (s *catalogService) ListManga(ctx context.Context) ([]models.Manga, error) {
	return s.mangaRepo.GetAll(ctx)
}

func (s *catalogService) CreateAuthor(ctx context.Context, name, bio string) (*models.Author, error) {
	if name == "" {
		return nil, ErrMissingField
	}
	authorSlug, err := dedupSlug(ctx, slug.Generate(name), 0, s.authorRepo.ExistsSlugExcept)
	if err != nil {
		return nil, err
	}
	author := &models.Author{Name: name, Slug: authorSlug, Bio: bio}
	if err := s.authorRepo.Create(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

func (s *catalogService) UpdateAuthor(ctx context.Context, id int64, name, bio string) (*models.Author, error) {
	author, err := s.authorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, ErrMissingField
	}
	if name != author.Name {
		author.Slug, err = dedupSlug(ctx, slug.Generate(name), id, s.authorRepo.ExistsSlugExcept)
		if err != nil {
			return nil, err
		}
	}
	author.Name = name
	author.Bio = bio
	if err := s.authorRepo.Update(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

func (s *catalogService) DeleteAuthor(ctx context.Context, id int64) error {
	return s.authorRepo.Delete(ctx, id)
}

func (s *catalogService) GetAuthor(ctx context.Context, id int64) (*models.Author, error) {
	return s.authorRepo.GetByID(ctx, id)
}

func (s *catalogService) ListAuthors(ctx context.Context) ([]models.Author, error) {
	return s.authorRepo.GetAll(ctx)
}

func (s *catalogService) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	if name == "" {
		return nil, ErrMissingField
	}
	category := &models.Category{
		Name:        name,
		Slug:        slug.Generate(name),
		Description: description,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id int64, name, description string) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, ErrMissingField
	}
	if name != category.Name {
		category.Slug = slug.Generate(name)
	}
	category.Name = name
	category.Description = description
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id int64) error {
	return s.categoryRepo.Delete(ctx, id)
}

func (s *catalogService) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}

func (s *catalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.GetAll(ctx)
}
