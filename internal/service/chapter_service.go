package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"mangaden/internal/archive"
	"mangaden/internal/models"
	"mangaden/internal/repository"
	"mangaden/internal/slug"
	"mangaden/internal/storage"
)

var (
	ErrDuplicateChapter  = errors.New("chapter number already exists for this manga")
	ErrBadArchive        = errors.New("upload is not a valid zip archive")
	ErrConflictingUpload = errors.New("provide either an archive or loose images, not both")
	ErrPagesExist        = errors.New("chapter already has pages")
)

// ChapterInput carries the admin form fields for creating a chapter.
// Pages come from either a zip archive or an ordered list of loose
// image files, never both.
type ChapterInput struct {
	MangaID int64
	Number  float64
	Title   string
	Archive *Upload
	Pages   []Upload
}

// ReaderData is everything the reader page renders for one chapter.
type ReaderData struct {
	Chapter  *models.Chapter
	Images   []models.ChapterImage
	Next     *models.Chapter
	Previous *models.Chapter
}

type ChapterService interface {
	// Create inserts the chapter and ingests its pages. Page ingestion is
	// all or none: if any page fails, the chapter row is removed again and
	// no files are kept. An upload with zero usable images still creates
	// the chapter, just without pages.
	Create(ctx context.Context, in ChapterInput) (*models.Chapter, int, error)
	Update(ctx context.Context, id int64, number float64, title string) (*models.Chapter, error)
	// AddPages ingests pages into an existing chapter. When the chapter
	// already has pages it fails with ErrPagesExist unless replace is set,
	// in which case the old set is swapped out atomically.
	AddPages(ctx context.Context, chapterID int64, arc *Upload, pages []Upload, replace bool) (int, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Chapter, error)
	ListByManga(ctx context.Context, mangaID int64) ([]models.Chapter, error)

	// Reader loads a chapter for reading, bumps its view counter and, for
	// a logged-in user, records it in the reading history.
	Reader(ctx context.Context, mangaSlug, chapterSlug, userID string) (*ReaderData, error)
}

type chapterService struct {
	chapterRepo repository.ChapterRepository
	mangaRepo   repository.MangaRepository
	historyRepo repository.HistoryRepository
	media       MediaStore
}

func NewChapterService(
	chapterRepo repository.ChapterRepository,
	mangaRepo repository.MangaRepository,
	historyRepo repository.HistoryRepository,
	media MediaStore,
) ChapterService {
	return &chapterService{
		chapterRepo: chapterRepo,
		mangaRepo:   mangaRepo,
		historyRepo: historyRepo,
		media:       media,
	}
}

func (s *chapterService) Create(ctx context.Context, in ChapterInput) (*models.Chapter, int, error) {
	if in.Archive != nil && len(in.Pages) > 0 {
		return nil, 0, ErrConflictingUpload
	}

	manga, err := s.mangaRepo.GetByID(ctx, in.MangaID)
	if err != nil {
		return nil, 0, err
	}

	chapter := &models.Chapter{
		MangaID:       in.MangaID,
		ChapterNumber: in.Number,
		Title:         in.Title,
	}
	chapter.Slug = slug.ForChapter(manga.Slug, chapter.NumberString())

	if err := s.chapterRepo.Create(ctx, chapter); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, 0, ErrDuplicateChapter
		}
		return nil, 0, err
	}

	pages, err := pagesFromInput(in.Archive, in.Pages)
	if err != nil {
		_ = s.chapterRepo.Delete(ctx, chapter.ID)
		return nil, 0, err
	}

	n, err := s.ingestPages(ctx, chapter, manga.Slug, pages)
	if err != nil {
		_ = s.chapterRepo.Delete(ctx, chapter.ID)
		return nil, 0, err
	}
	return chapter, n, nil
}

func (s *chapterService) Update(ctx context.Context, id int64, number float64, title string) (*models.Chapter, error) {
	chapter, err := s.chapterRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	manga, err := s.mangaRepo.GetByID(ctx, chapter.MangaID)
	if err != nil {
		return nil, err
	}

	chapter.ChapterNumber = number
	chapter.Title = title
	chapter.Slug = slug.ForChapter(manga.Slug, chapter.NumberString())

	if err := s.chapterRepo.Update(ctx, chapter); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateChapter
		}
		return nil, err
	}
	return chapter, nil
}

func (s *chapterService) AddPages(ctx context.Context, chapterID int64, arc *Upload, pages []Upload, replace bool) (int, error) {
	if arc != nil && len(pages) > 0 {
		return 0, ErrConflictingUpload
	}

	chapter, err := s.chapterRepo.GetByID(ctx, chapterID)
	if err != nil {
		return 0, err
	}
	manga, err := s.mangaRepo.GetByID(ctx, chapter.MangaID)
	if err != nil {
		return 0, err
	}

	count, err := s.chapterRepo.CountImages(ctx, chapterID)
	if err != nil {
		return 0, err
	}
	if count > 0 && !replace {
		return 0, ErrPagesExist
	}

	extracted, err := pagesFromInput(arc, pages)
	if err != nil {
		return 0, err
	}

	if count == 0 {
		return s.ingestPages(ctx, chapter, manga.Slug, extracted)
	}
	return s.replacePages(ctx, chapter, manga.Slug, extracted)
}

func (s *chapterService) Delete(ctx context.Context, id int64) error {
	images, err := s.chapterRepo.ListImages(ctx, id)
	if err != nil {
		return err
	}
	if err := s.chapterRepo.Delete(ctx, id); err != nil {
		return err
	}
	for _, img := range images {
		_ = s.media.Remove(img.Image)
	}
	return nil
}

func (s *chapterService) Get(ctx context.Context, id int64) (*models.Chapter, error) {
	return s.chapterRepo.GetByID(ctx, id)
}

func (s *chapterService) ListByManga(ctx context.Context, mangaID int64) ([]models.Chapter, error) {
	return s.chapterRepo.ListByManga(ctx, mangaID)
}

func (s *chapterService) Reader(ctx context.Context, mangaSlug, chapterSlug, userID string) (*ReaderData, error) {
	chapter, err := s.chapterRepo.GetBySlug(ctx, mangaSlug, chapterSlug)
	if err != nil {
		return nil, err
	}
	images, err := s.chapterRepo.ListImages(ctx, chapter.ID)
	if err != nil {
		return nil, err
	}

	data := &ReaderData{Chapter: chapter, Images: images}
	if next, err := s.chapterRepo.Next(ctx, chapter.MangaID, chapter.ChapterNumber); err == nil {
		data.Next = next
	}
	if prev, err := s.chapterRepo.Previous(ctx, chapter.MangaID, chapter.ChapterNumber); err == nil {
		data.Previous = prev
	}

	// Counters are best effort; a failed bump never blocks reading.
	_ = s.chapterRepo.IncrementViews(ctx, chapter.ID)
	if userID != "" {
		_ = s.historyRepo.Upsert(ctx, userID, chapter.ID, chapter.MangaID)
	}
	return data, nil
}

// pagesFromInput turns the upload into an ordered page list. Archive
// pages are sorted by filename; loose files keep their submitted order.
func pagesFromInput(arc *Upload, files []Upload) ([]archive.Page, error) {
	if arc != nil {
		pages, err := archive.ExtractPages(bytes.NewReader(arc.Data), int64(len(arc.Data)))
		if err != nil {
			if errors.Is(err, archive.ErrNotArchive) {
				return nil, fmt.Errorf("%w: %s", ErrBadArchive, arc.Name)
			}
			return nil, err
		}
		return pages, nil
	}

	pages := make([]archive.Page, 0, len(files))
	for _, f := range files {
		pages = append(pages, archive.Page{
			Name: f.Name,
			Ext:  archive.NormalizeExt(f.Name),
			Data: f.Data,
		})
	}
	return pages, nil
}

// ingestPages stages every page file, commits the rows in one
// transaction, then promotes the files into the chapter's directory.
// Any failure before the commit discards the staged files and reports
// the error; the caller decides what happens to the chapter row.
func (s *chapterService) ingestPages(ctx context.Context, chapter *models.Chapter, mangaSlug string, pages []archive.Page) (int, error) {
	if len(pages) == 0 {
		return 0, nil
	}

	tokens := make([]string, 0, len(pages))
	rows := make([]models.ChapterImage, 0, len(pages))
	for i, page := range pages {
		token, err := s.media.Stage(page.Data)
		if err != nil {
			s.media.Discard(tokens...)
			return 0, fmt.Errorf("stage page %d: %w", i+1, err)
		}
		tokens = append(tokens, token)
		rows = append(rows, models.ChapterImage{
			ChapterID:  chapter.ID,
			PageNumber: i + 1,
			Image:      storage.BucketChapters + "/" + s.pageName(chapter, mangaSlug, i+1, page.Ext),
		})
	}

	if err := s.chapterRepo.CreateImages(ctx, rows); err != nil {
		s.media.Discard(tokens...)
		return 0, err
	}

	return len(pages), s.promoteAll(chapter, mangaSlug, tokens, pages)
}

// replacePages swaps a chapter's page set for a new one. The row swap is
// a single transaction; old files are removed only after the new set is
// committed and promoted.
func (s *chapterService) replacePages(ctx context.Context, chapter *models.Chapter, mangaSlug string, pages []archive.Page) (int, error) {
	old, err := s.chapterRepo.ListImages(ctx, chapter.ID)
	if err != nil {
		return 0, err
	}

	tokens := make([]string, 0, len(pages))
	rows := make([]models.ChapterImage, 0, len(pages))
	for i, page := range pages {
		token, err := s.media.Stage(page.Data)
		if err != nil {
			s.media.Discard(tokens...)
			return 0, fmt.Errorf("stage page %d: %w", i+1, err)
		}
		tokens = append(tokens, token)
		rows = append(rows, models.ChapterImage{
			ChapterID:  chapter.ID,
			PageNumber: i + 1,
			Image:      storage.BucketChapters + "/" + s.pageName(chapter, mangaSlug, i+1, page.Ext),
		})
	}

	if err := s.chapterRepo.ReplaceImages(ctx, chapter.ID, rows); err != nil {
		s.media.Discard(tokens...)
		return 0, err
	}

	newRefs := make(map[string]bool, len(rows))
	for _, row := range rows {
		newRefs[row.Image] = true
	}
	if err := s.promoteAll(chapter, mangaSlug, tokens, pages); err != nil {
		return 0, err
	}
	for _, img := range old {
		// Same page count and extension means the promote already
		// overwrote the file in place.
		if !newRefs[img.Image] {
			_ = s.media.Remove(img.Image)
		}
	}
	return len(pages), nil
}

func (s *chapterService) promoteAll(chapter *models.Chapter, mangaSlug string, tokens []string, pages []archive.Page) error {
	promoted := make([]string, 0, len(tokens))
	for i, token := range tokens {
		name := s.pageName(chapter, mangaSlug, i+1, pages[i].Ext)
		ref, err := s.media.Promote(token, storage.BucketChapters, name)
		if err != nil {
			// The failed token and the unpromoted remainder are still
			// staged; pages already in the bucket get removed so the
			// caller's rollback leaves no files behind.
			s.media.Discard(tokens[i:]...)
			for _, ref := range promoted {
				_ = s.media.Remove(ref)
			}
			return fmt.Errorf("promote page %d: %w", i+1, err)
		}
		promoted = append(promoted, ref)
	}
	return nil
}

// pageName builds the on-disk name for a page,
// "one-piece/ch10.5_p003.jpg" under the chapters bucket.
func (s *chapterService) pageName(chapter *models.Chapter, mangaSlug string, page int, ext string) string {
	return fmt.Sprintf("%s/ch%s_p%03d%s", mangaSlug, chapter.NumberString(), page, ext)
}
