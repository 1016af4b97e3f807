package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mangaden/internal/models"
	"mangaden/internal/repository"
)

func newSocialService(followRepo *MockFollowRepository, commentRepo *MockCommentRepository, ratingRepo *MockRatingRepository, mangaRepo *MockMangaRepository) SocialService {
	if followRepo == nil {
		followRepo = new(MockFollowRepository)
	}
	if commentRepo == nil {
		commentRepo = new(MockCommentRepository)
	}
	if ratingRepo == nil {
		ratingRepo = new(MockRatingRepository)
	}
	if mangaRepo == nil {
		mangaRepo = new(MockMangaRepository)
	}
	return NewSocialService(followRepo, commentRepo, ratingRepo, mangaRepo)
}

func TestToggleFollow_FollowsWhenNotFollowing(t *testing.T) {
	followRepo := new(MockFollowRepository)
	svc := newSocialService(followRepo, nil, nil, nil)

	followRepo.On("Exists", mock.Anything, "user-1", int64(3)).Return(false, nil)
	followRepo.On("Create", mock.Anything, "user-1", int64(3)).Return(nil)

	following, err := svc.ToggleFollow(context.Background(), "user-1", 3)

	require.NoError(t, err)
	assert.True(t, following)
	followRepo.AssertExpectations(t)
}

func TestToggleFollow_UnfollowsWhenFollowing(t *testing.T) {
	followRepo := new(MockFollowRepository)
	svc := newSocialService(followRepo, nil, nil, nil)

	followRepo.On("Exists", mock.Anything, "user-1", int64(3)).Return(true, nil)
	followRepo.On("Delete", mock.Anything, "user-1", int64(3)).Return(nil)

	following, err := svc.ToggleFollow(context.Background(), "user-1", 3)

	require.NoError(t, err)
	assert.False(t, following)
}

func TestToggleFollow_ConcurrentDuplicateIsFine(t *testing.T) {
	followRepo := new(MockFollowRepository)
	svc := newSocialService(followRepo, nil, nil, nil)

	followRepo.On("Exists", mock.Anything, "user-1", int64(3)).Return(false, nil)
	followRepo.On("Create", mock.Anything, "user-1", int64(3)).Return(repository.ErrDuplicate)

	following, err := svc.ToggleFollow(context.Background(), "user-1", 3)

	require.NoError(t, err)
	assert.True(t, following)
}

func TestAddComment_Success(t *testing.T) {
	commentRepo := new(MockCommentRepository)
	svc := newSocialService(nil, commentRepo, nil, nil)

	commentRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Comment")).Return(nil)

	comment, err := svc.AddComment(context.Background(), "user-1", 3, nil, nil, "  great chapter  ")

	require.NoError(t, err)
	assert.Equal(t, "great chapter", comment.Content)
	assert.Nil(t, comment.ParentID)
}

func TestAddComment_Empty(t *testing.T) {
	svc := newSocialService(nil, nil, nil, nil)

	_, err := svc.AddComment(context.Background(), "user-1", 3, nil, nil, "   ")

	assert.ErrorIs(t, err, ErrEmptyComment)
}

func TestAddComment_TruncatesOnRuneBoundary(t *testing.T) {
	commentRepo := new(MockCommentRepository)
	svc := newSocialService(nil, commentRepo, nil, nil)

	commentRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Comment")).Return(nil)

	// 1999 ASCII bytes followed by a 3-byte rune straddling the limit.
	content := strings.Repeat("a", 1999) + "世界"
	comment, err := svc.AddComment(context.Background(), "user-1", 3, nil, nil, content)

	require.NoError(t, err)
	assert.LessOrEqual(t, len(comment.Content), 2000)
	assert.True(t, utf8.ValidString(comment.Content))
	assert.Equal(t, strings.Repeat("a", 1999), comment.Content)
}

func TestAddComment_ReplyAcrossManga(t *testing.T) {
	commentRepo := new(MockCommentRepository)
	svc := newSocialService(nil, commentRepo, nil, nil)

	parentID := int64(9)
	commentRepo.On("GetByID", mock.Anything, parentID).
		Return(&models.Comment{ID: 9, MangaID: 99}, nil)

	_, err := svc.AddComment(context.Background(), "user-1", 3, nil, &parentID, "replying")

	assert.ErrorIs(t, err, ErrBadParent)
	commentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRateManga_UpsertsAndRefreshesAverage(t *testing.T) {
	ratingRepo := new(MockRatingRepository)
	mangaRepo := new(MockMangaRepository)
	svc := newSocialService(nil, nil, ratingRepo, mangaRepo)

	ratingRepo.On("Upsert", mock.Anything, "user-1", int64(3), 8).Return(nil)
	ratingRepo.On("Average", mock.Anything, int64(3)).Return(7.5, nil)
	mangaRepo.On("UpdateRating", mock.Anything, int64(3), 7.5).Return(nil)

	err := svc.RateManga(context.Background(), "user-1", 3, 8)

	require.NoError(t, err)
	ratingRepo.AssertExpectations(t)
	mangaRepo.AssertExpectations(t)
}

func TestRateManga_ScoreOutOfRange(t *testing.T) {
	svc := newSocialService(nil, nil, nil, nil)

	assert.ErrorIs(t, svc.RateManga(context.Background(), "user-1", 3, 0), ErrBadScore)
	assert.ErrorIs(t, svc.RateManga(context.Background(), "user-1", 3, 11), ErrBadScore)
}

func TestUserRating_NoneYet(t *testing.T) {
	ratingRepo := new(MockRatingRepository)
	svc := newSocialService(nil, nil, ratingRepo, nil)

	ratingRepo.On("GetByUserAndManga", mock.Anything, "user-1", int64(3)).
		Return(nil, repository.ErrNotFound)

	score, err := svc.UserRating(context.Background(), "user-1", 3)

	require.NoError(t, err)
	assert.Zero(t, score)
}
