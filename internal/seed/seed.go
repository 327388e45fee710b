// Package seed populates a development database with plausible users,
// posts and engagement so the frontend has something to render.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account gets.
const DefaultPassword = "Seed-Password-123!"

var categories = []string{
	"engineering", "design", "career", "tooling", "opinion",
}

// Seeder builds domain entities with generated content and persists them
// through the same document-shaped rows the application uses, keeping
// memberships and counters consistent.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewSeeder returns a Seeder over the given connection.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// buildUser constructs a sample account without persisting it. The index
// keeps generated emails unique across a run.
func (s *Seeder) buildUser(i int, hashedPassword string) models.User {
	return models.User{
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Email:     fmt.Sprintf("%d.%s", i, gofakeit.Email()),
		Password:  hashedPassword,
		Bio:       gofakeit.Sentence(10),
		Avatar:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}
}

// buildPost constructs a sample post for the author without persisting it,
// with a created_at spread over the past 90 days.
func (s *Seeder) buildPost(author *models.User) models.Post {
	daysBack := s.rng.Intn(90)
	hoursBack := s.rng.Intn(24)
	return models.Post{
		Title:     gofakeit.Sentence(6),
		Content:   gofakeit.Paragraph(2, 4, 12, "\n\n"),
		Category:  categories[s.rng.Intn(len(categories))],
		Duration:  1 + s.rng.Intn(9),
		ImageURL:  fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
		UserID:    author.ID,
		Comments:  []models.Comment{},
		CreatedAt: time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour),
	}
}

// buildComment constructs a comment authored by the given user.
func (s *Seeder) buildComment(user *models.User) models.Comment {
	return models.Comment{
		ID:         uuid.New().String(),
		Content:    gofakeit.Sentence(12),
		UserID:     user.ID,
		AuthorName: user.DisplayName(),
		CreatedAt:  time.Now(),
	}
}

// ClearAll wipes users and posts.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	if err := s.db.Exec("DELETE FROM posts").Error; err != nil {
		return fmt.Errorf("clear posts: %w", err)
	}
	if err := s.db.Exec("DELETE FROM users").Error; err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	return nil
}

// SeedUsers creates n accounts with the shared default password.
func (s *Seeder) SeedUsers(n int) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		user := s.buildUser(i, string(hashed))
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user %d: %w", i, err)
		}
		users = append(users, user)
	}
	log.Printf("Created %d users", len(users))
	return users, nil
}

// SeedPosts creates n posts spread across the given authors, maintaining
// each author's authored set and post counter.
func (s *Seeder) SeedPosts(users []models.User, n int) ([]models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to author posts")
	}

	posts := make([]models.Post, 0, n)
	authored := make(map[uint][]uint)
	for i := 0; i < n; i++ {
		author := users[s.rng.Intn(len(users))]
		post := s.buildPost(&author)
		if err := s.db.Create(&post).Error; err != nil {
			return nil, fmt.Errorf("create post %d: %w", i, err)
		}
		posts = append(posts, post)
		authored[author.ID] = append(authored[author.ID], post.ID)
	}

	for userID, postIDs := range authored {
		err := s.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
			"authored_posts": models.User{AuthoredPosts: postIDs}.AuthoredPosts,
			"posts_count":    len(postIDs),
		}).Error
		if err != nil {
			return nil, fmt.Errorf("update authored set for user %d: %w", userID, err)
		}
	}
	log.Printf("Created %d posts", len(posts))
	return posts, nil
}

// SeedEngagement sprinkles likes, saves and comments over the posts. Sets
// and counters are written together so the seeded data obeys the same
// consistency the engagement engine maintains at runtime.
func (s *Seeder) SeedEngagement(users []models.User, posts []models.Post) error {
	likeCounts := make(map[uint]int)
	saveCounts := make(map[uint]int)
	postComments := make(map[uint][]models.Comment)

	for i := range users {
		user := &users[i]
		var liked, saved []uint
		for j := range posts {
			post := &posts[j]
			if s.rng.Intn(3) == 0 {
				liked = append(liked, post.ID)
				likeCounts[post.ID]++
			}
			if s.rng.Intn(5) == 0 {
				saved = append(saved, post.ID)
				saveCounts[post.ID]++
			}
			if s.rng.Intn(6) == 0 {
				postComments[post.ID] = append(postComments[post.ID], s.buildComment(user))
			}
		}

		err := s.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]any{
			"liked_posts": models.User{LikedPosts: liked}.LikedPosts,
			"saved_posts": models.User{SavedPosts: saved}.SavedPosts,
		}).Error
		if err != nil {
			return fmt.Errorf("update engagement sets for user %d: %w", user.ID, err)
		}
	}

	for i := range posts {
		post := &posts[i]
		err := s.db.Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]any{
			"like_count": likeCounts[post.ID],
			"save_count": saveCounts[post.ID],
			"comments":   models.Post{Comments: postComments[post.ID]}.Comments,
		}).Error
		if err != nil {
			return fmt.Errorf("update engagement for post %d: %w", post.ID, err)
		}
	}
	log.Printf("Seeded engagement across %d posts", len(posts))
	return nil
}
