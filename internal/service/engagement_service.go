// Package service contains the application's business logic.
package service

import (
	"context"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/google/uuid"
)

const maxCommentLen = 10000

// EngagementService owns every mutation of the denormalized engagement
// state: per-user liked/saved sets, the per-user liked-comment map, and the
// matching counters on posts and comments. Each call is one atomic
// read-modify-write against the (user, post) pair it touches; counts are
// always derived from the same toggle decision that changed the membership.
type EngagementService struct {
	engRepo repository.EngagementRepository
}

// NewEngagementService returns a new EngagementService.
func NewEngagementService(engRepo repository.EngagementRepository) *EngagementService {
	return &EngagementService{engRepo: engRepo}
}

// ToggleResult reports the state of a toggle after it has been applied.
type ToggleResult struct {
	Active bool `json:"active"`
	Count  int  `json:"count"`
}

// CommentResult carries the comment a mutation created or touched plus the
// post's full comment sequence in display order.
type CommentResult struct {
	Comment  models.Comment   `json:"comment"`
	Comments []models.Comment `json:"comments"`
}

// ToggleLike flips whether the user has the post in their liked set. Exactly
// one of add/increment or remove/decrement happens per call; the decrement
// floors at zero.
func (s *EngagementService) ToggleLike(ctx context.Context, userID, postID uint) (*ToggleResult, error) {
	var res ToggleResult
	err := s.engRepo.UpdateUserPost(ctx, userID, postID, func(u *models.User, p *models.Post) error {
		if liked, removed := models.RemoveID(u.LikedPosts, postID); removed {
			u.LikedPosts = liked
			if p.LikeCount > 0 {
				p.LikeCount--
			}
			res = ToggleResult{Active: false, Count: p.LikeCount}
		} else {
			u.LikedPosts, _ = models.AddID(u.LikedPosts, postID)
			p.LikeCount++
			res = ToggleResult{Active: true, Count: p.LikeCount}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ToggleSave flips membership in the user's saved set with the same
// semantics as ToggleLike, against the post's save counter.
func (s *EngagementService) ToggleSave(ctx context.Context, userID, postID uint) (*ToggleResult, error) {
	var res ToggleResult
	err := s.engRepo.UpdateUserPost(ctx, userID, postID, func(u *models.User, p *models.Post) error {
		if saved, removed := models.RemoveID(u.SavedPosts, postID); removed {
			u.SavedPosts = saved
			if p.SaveCount > 0 {
				p.SaveCount--
			}
			res = ToggleResult{Active: false, Count: p.SaveCount}
		} else {
			u.SavedPosts, _ = models.AddID(u.SavedPosts, postID)
			p.SaveCount++
			res = ToggleResult{Active: true, Count: p.SaveCount}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// AddComment appends a new comment to the post's sequence. The comment gets
// a globally unique ID so it can be referenced by per-user like tracking.
func (s *EngagementService) AddComment(ctx context.Context, userID, postID uint, text string) (*CommentResult, error) {
	if text == "" {
		return nil, models.NewValidationError("Comment text is required")
	}
	if len(text) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	var res CommentResult
	err := s.engRepo.UpdateUserPost(ctx, userID, postID, func(u *models.User, p *models.Post) error {
		comment := models.Comment{
			ID:         uuid.New().String(),
			Content:    text,
			UserID:     u.ID,
			AuthorName: u.DisplayName(),
			LikeCount:  0,
			CreatedAt:  time.Now(),
		}
		p.Comments = append(p.Comments, comment)
		res = CommentResult{Comment: comment, Comments: p.Comments}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ToggleCommentLike flips the user's liked flag for one comment of the post,
// adjusting the comment's counter in the same direction.
func (s *EngagementService) ToggleCommentLike(ctx context.Context, userID, postID uint, commentID string) (*ToggleResult, error) {
	var res ToggleResult
	err := s.engRepo.UpdateUserPost(ctx, userID, postID, func(u *models.User, p *models.Post) error {
		comment := p.FindComment(commentID)
		if comment == nil {
			return models.NewNotFoundError("Comment", commentID)
		}

		if u.HasLikedComment(commentID) {
			u.SetCommentLiked(commentID, false)
			if comment.LikeCount > 0 {
				comment.LikeCount--
			}
			res = ToggleResult{Active: false, Count: comment.LikeCount}
		} else {
			u.SetCommentLiked(commentID, true)
			comment.LikeCount++
			res = ToggleResult{Active: true, Count: comment.LikeCount}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
