package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EngagementRepository is the transactional boundary for every mutation that
// touches denormalized engagement state. Each method runs inside a single
// transaction with the affected rows locked, so a membership change and its
// paired counter can never be observed out of sync.
type EngagementRepository interface {
	// UpdateUserPost locks the user and post rows (always in that order),
	// applies fn to both, and saves both. fn returning an error aborts the
	// transaction.
	UpdateUserPost(ctx context.Context, userID, postID uint, fn func(*models.User, *models.Post) error) error

	// UpdateUser locks a single user row, applies fn, and saves it.
	UpdateUser(ctx context.Context, userID uint, fn func(*models.User) error) error

	// CreateOwnedPost inserts the post and, in the same transaction, appends
	// its ID to the owner's authored set and bumps the owner's post counter.
	CreateOwnedPost(ctx context.Context, post *models.Post) error
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository returns the GORM-backed engagement store.
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

func lockedUser(tx *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", userID)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func lockedPost(tx *gorm.DB, postID uint) (*models.Post, error) {
	var post models.Post
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *engagementRepository) UpdateUserPost(ctx context.Context, userID, postID uint, fn func(*models.User, *models.Post) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockedUser(tx, userID)
		if err != nil {
			return err
		}
		post, err := lockedPost(tx, postID)
		if err != nil {
			return err
		}

		if err := fn(user, post); err != nil {
			return err
		}

		if err := tx.Save(user).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Save(post).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateUser(ctx, userID)
	cache.InvalidatePost(ctx, postID)
	cache.InvalidateExplore(ctx)
	return nil
}

func (r *engagementRepository) UpdateUser(ctx context.Context, userID uint, fn func(*models.User) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockedUser(tx, userID)
		if err != nil {
			return err
		}
		if err := fn(user); err != nil {
			return err
		}
		if err := tx.Save(user).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateUser(ctx, userID)
	return nil
}

func (r *engagementRepository) CreateOwnedPost(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockedUser(tx, post.UserID)
		if err != nil {
			return err
		}

		if err := tx.Create(post).Error; err != nil {
			return models.NewInternalError(err)
		}

		user.AuthoredPosts, _ = models.AddID(user.AuthoredPosts, post.ID)
		user.PostsCount = len(user.AuthoredPosts)

		if err := tx.Save(user).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateUser(ctx, post.UserID)
	cache.InvalidateExplore(ctx)
	return nil
}
