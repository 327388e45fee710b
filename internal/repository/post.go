package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines read operations for posts. All engagement writes go
// through EngagementRepository so counters and memberships move together.
type PostRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	key := cache.PostKey(id)

	err := cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
		if err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetByIDs loads the given posts and returns them in the order of ids.
// Missing IDs are skipped; a user's liked set may reference posts that
// predate a manual cleanup.
func (r *postRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var posts []*models.Post
	if err := r.db.WithContext(ctx).Preload("User").Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	byID := make(map[uint]*models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]*models.Post, 0, len(posts))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// List returns every post, newest first. Unfiltered and unpaginated to match
// the modeled read shape.
func (r *postRepository) List(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).Preload("User").Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}
