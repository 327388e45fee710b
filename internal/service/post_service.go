package service

import (
	"context"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

const (
	maxTitleLen   = 300
	maxContentLen = 100000
	wordsPerMin   = 200
)

// PostService handles post creation and the read paths over the content
// store. Creation goes through the engagement repository so the authored set
// and post counter on the owner move with the insert.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	engRepo  repository.EngagementRepository
}

// CreatePostInput carries the fields for a new article. Duration is the
// estimated reading time in minutes; when the client omits it, it is
// computed from the body's word count.
type CreatePostInput struct {
	UserID   uint
	Title    string
	Content  string
	Category string
	ImageURL string
	Duration int
}

// NewPostService returns a new PostService.
func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	engRepo repository.EngagementRepository,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		engRepo:  engRepo,
	}
}

// CreatePost validates the input and creates a post owned by the caller,
// updating the caller's authored set and post counter atomically with the
// insert.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 100000 characters)")
	}
	if strings.TrimSpace(in.Category) == "" {
		return nil, models.NewValidationError("Category is required")
	}

	duration := in.Duration
	if duration <= 0 {
		duration = estimateReadingMinutes(in.Content)
	}

	post := &models.Post{
		Title:    in.Title,
		Content:  in.Content,
		Category: in.Category,
		ImageURL: in.ImageURL,
		Duration: duration,
		UserID:   in.UserID,
		Comments: []models.Comment{},
	}
	if err := s.engRepo.CreateOwnedPost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost resolves a post together with its embedded comments.
func (s *PostService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}

// Explore returns every post for the public feed, cached briefly.
func (s *PostService) Explore(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := cache.Aside(ctx, cache.ExploreKey, &posts, cache.ExploreTTL, func() error {
		var fetchErr error
		posts, fetchErr = s.postRepo.List(ctx)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// AuthoredPosts returns the user's own posts in authoring order.
func (s *PostService) AuthoredPosts(ctx context.Context, userID uint) ([]*models.Post, error) {
	return s.postsFromSet(ctx, userID, func(u *models.User) []uint { return u.AuthoredPosts })
}

// LikedPosts returns the posts in the user's liked set.
func (s *PostService) LikedPosts(ctx context.Context, userID uint) ([]*models.Post, error) {
	return s.postsFromSet(ctx, userID, func(u *models.User) []uint { return u.LikedPosts })
}

// SavedPosts returns the posts in the user's saved set.
func (s *PostService) SavedPosts(ctx context.Context, userID uint) ([]*models.Post, error) {
	return s.postsFromSet(ctx, userID, func(u *models.User) []uint { return u.SavedPosts })
}

func (s *PostService) postsFromSet(ctx context.Context, userID uint, pick func(*models.User) []uint) ([]*models.Post, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.postRepo.GetByIDs(ctx, pick(user))
}

// estimateReadingMinutes derives reading time from word count, minimum one
// minute.
func estimateReadingMinutes(content string) int {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMin - 1) / wordsPerMin
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
