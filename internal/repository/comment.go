package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"mangaden/internal/models"
)

// replyDepth bounds how many reply levels a listing loads. The tree is
// acyclic by construction (parents must exist before children), but the
// read side stays bounded regardless.
const replyDepth = 3

type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	// ListRoots returns top-level comments for a manga, newest first,
	// with replies preloaded to a fixed depth.
	ListRoots(ctx context.Context, mangaID int64, limit int) ([]models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, c *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create comment: %w", classify(err))
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	var c models.Comment
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, classify(err)
	}
	return &c, nil
}

func (r *commentRepository) ListRoots(ctx context.Context, mangaID int64, limit int) ([]models.Comment, error) {
	db := r.db.WithContext(ctx).
		Preload("User")

	path := "Replies"
	for i := 0; i < replyDepth; i++ {
		db = db.Preload(path + ".User")
		db = db.Preload(path, func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at asc")
		})
		path += ".Replies"
	}

	var list []models.Comment
	if err := db.
		Where("manga_id = ? AND parent_id IS NULL", mangaID).
		Order("created_at desc").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return list, nil
}
