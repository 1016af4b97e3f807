package service

import (
	"context"
	"fmt"

	"mangaden/internal/archive"
	"mangaden/internal/models"
	"mangaden/internal/repository"
	"mangaden/internal/storage"
)

type ProfileService interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	// Update saves the bio and, when an avatar is uploaded, swaps the
	// stored avatar file for the new one.
	Update(ctx context.Context, userID, bio string, avatar *Upload) (*models.UserProfile, error)
	History(ctx context.Context, userID string) ([]models.ReadingHistory, error)
}

type profileService struct {
	userRepo    repository.UserRepository
	historyRepo repository.HistoryRepository
	media       MediaStore
}

func NewProfileService(userRepo repository.UserRepository, historyRepo repository.HistoryRepository, media MediaStore) ProfileService {
	return &profileService{userRepo: userRepo, historyRepo: historyRepo, media: media}
}

func (s *profileService) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	return s.userRepo.GetProfile(ctx, userID)
}

func (s *profileService) Update(ctx context.Context, userID, bio string, avatar *Upload) (*models.UserProfile, error) {
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Bio = bio
	oldAvatar := profile.Avatar

	var token string
	if avatar != nil {
		token, err = s.media.Stage(avatar.Data)
		if err != nil {
			return nil, fmt.Errorf("stage avatar: %w", err)
		}
		profile.Avatar = storage.BucketAvatars + "/" + userID + archive.NormalizeExt(avatar.Name)
	}

	if err := s.userRepo.UpdateProfile(ctx, profile); err != nil {
		s.media.Discard(token)
		return nil, err
	}

	if token != "" {
		if _, err := s.media.Promote(token, storage.BucketAvatars, userID+archive.NormalizeExt(avatar.Name)); err != nil {
			return nil, fmt.Errorf("promote avatar: %w", err)
		}
		if oldAvatar != "" && oldAvatar != profile.Avatar {
			_ = s.media.Remove(oldAvatar)
		}
	}
	return profile, nil
}

func (s *profileService) History(ctx context.Context, userID string) ([]models.ReadingHistory, error) {
	return s.historyRepo.ListByUser(ctx, userID, historyPageLimit)
}
