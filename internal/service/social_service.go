package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"mangaden/internal/models"
	"mangaden/internal/repository"
)

var (
	ErrEmptyComment = errors.New("comment is empty")
	ErrBadParent    = errors.New("parent comment belongs to a different manga")
	ErrBadScore     = errors.New("score must be between 1 and 10")
)

const maxCommentLength = 2000

type SocialService interface {
	// ToggleFollow follows the manga when not followed and unfollows it
	// otherwise, reporting the resulting state.
	ToggleFollow(ctx context.Context, userID string, mangaID int64) (bool, error)
	IsFollowing(ctx context.Context, userID string, mangaID int64) (bool, error)
	ListFollowed(ctx context.Context, userID string) ([]models.Follow, error)

	AddComment(ctx context.Context, userID string, mangaID int64, chapterID, parentID *int64, content string) (*models.Comment, error)
	ListComments(ctx context.Context, mangaID int64, limit int) ([]models.Comment, error)

	// RateManga records the user's score and refreshes the manga's
	// average rating.
	RateManga(ctx context.Context, userID string, mangaID int64, score int) error
	UserRating(ctx context.Context, userID string, mangaID int64) (int, error)
}

type socialService struct {
	followRepo  repository.FollowRepository
	commentRepo repository.CommentRepository
	ratingRepo  repository.RatingRepository
	mangaRepo   repository.MangaRepository
}

func NewSocialService(
	followRepo repository.FollowRepository,
	commentRepo repository.CommentRepository,
	ratingRepo repository.RatingRepository,
	mangaRepo repository.MangaRepository,
) SocialService {
	return &socialService{
		followRepo:  followRepo,
		commentRepo: commentRepo,
		ratingRepo:  ratingRepo,
		mangaRepo:   mangaRepo,
	}
}

func (s *socialService) ToggleFollow(ctx context.Context, userID string, mangaID int64) (bool, error) {
	following, err := s.followRepo.Exists(ctx, userID, mangaID)
	if err != nil {
		return false, err
	}
	if following {
		if err := s.followRepo.Delete(ctx, userID, mangaID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return false, err
		}
		return false, nil
	}
	if err := s.followRepo.Create(ctx, userID, mangaID); err != nil {
		// A concurrent follow already inserted the row; the state the
		// user asked for holds either way.
		if errors.Is(err, repository.ErrDuplicate) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

func (s *socialService) IsFollowing(ctx context.Context, userID string, mangaID int64) (bool, error) {
	return s.followRepo.Exists(ctx, userID, mangaID)
}

func (s *socialService) ListFollowed(ctx context.Context, userID string) ([]models.Follow, error) {
	return s.followRepo.ListByUser(ctx, userID)
}

func (s *socialService) AddComment(ctx context.Context, userID string, mangaID int64, chapterID, parentID *int64, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyComment
	}
	if len(content) > maxCommentLength {
		// Cut on a rune boundary so a multi-byte character at the limit
		// is dropped whole instead of leaving invalid UTF-8 behind.
		cut := maxCommentLength
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut]
	}

	if parentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.MangaID != mangaID {
			return nil, ErrBadParent
		}
	}

	comment := &models.Comment{
		UserID:    userID,
		MangaID:   mangaID,
		ChapterID: chapterID,
		ParentID:  parentID,
		Content:   content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *socialService) ListComments(ctx context.Context, mangaID int64, limit int) ([]models.Comment, error) {
	return s.commentRepo.ListRoots(ctx, mangaID, limit)
}

func (s *socialService) RateManga(ctx context.Context, userID string, mangaID int64, score int) error {
	if score < 1 || score > 10 {
		return ErrBadScore
	}
	if err := s.ratingRepo.Upsert(ctx, userID, mangaID, score); err != nil {
		return err
	}
	avg, err := s.ratingRepo.Average(ctx, mangaID)
	if err != nil {
		return err
	}
	return s.mangaRepo.UpdateRating(ctx, mangaID, avg)
}

func (s *socialService) UserRating(ctx context.Context, userID string, mangaID int64) (int, error) {
	rating, err := s.ratingRepo.GetByUserAndManga(ctx, userID, mangaID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return rating.Score, nil
}
