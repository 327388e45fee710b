// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// User represents a registered account together with its profile and
// engagement state. The liked/saved/authored sets and the liked-comment map
// are stored as JSONB documents owned exclusively by this row; they are only
// ever mutated by the engagement engine together with the matching counters.
type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `gorm:"unique;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	Bio       string `json:"bio"`
	Avatar    string `json:"avatar"`

	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
	PostsCount     int `json:"posts_count"`

	AuthoredPosts datatypes.JSONSlice[uint]           `gorm:"type:jsonb" json:"authored_posts"`
	LikedPosts    datatypes.JSONSlice[uint]           `gorm:"type:jsonb" json:"liked_posts"`
	SavedPosts    datatypes.JSONSlice[uint]           `gorm:"type:jsonb" json:"saved_posts"`
	LikedComments datatypes.JSONType[map[string]bool] `gorm:"type:jsonb" json:"liked_comments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the user's full name for embedding in comments.
func (u *User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// PublicProfile is the view of a user exposed to other users.
type PublicProfile struct {
	ID             uint      `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Bio            string    `json:"bio"`
	Avatar         string    `json:"avatar"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
	PostsCount     int       `json:"posts_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// Public returns the profile view of the user without credential or
// engagement state.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Bio:            u.Bio,
		Avatar:         u.Avatar,
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FollowingCount,
		PostsCount:     u.PostsCount,
		CreatedAt:      u.CreatedAt,
	}
}

// HasLiked reports whether postID is in the user's liked set.
func (u *User) HasLiked(postID uint) bool {
	return containsID(u.LikedPosts, postID)
}

// HasSaved reports whether postID is in the user's saved set.
func (u *User) HasSaved(postID uint) bool {
	return containsID(u.SavedPosts, postID)
}

// HasLikedComment reports whether the user's liked-comment map has the
// comment marked true.
func (u *User) HasLikedComment(commentID string) bool {
	return u.LikedComments.Data()[commentID]
}

// SetCommentLiked flips the liked-comment entry for commentID to the given
// state, initializing the map on first use.
func (u *User) SetCommentLiked(commentID string, liked bool) {
	m := u.LikedComments.Data()
	if m == nil {
		m = make(map[string]bool)
	}
	if liked {
		m[commentID] = true
	} else {
		delete(m, commentID)
	}
	u.LikedComments = datatypes.NewJSONType(m)
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// AddID appends id to ids if absent and reports whether it was added.
func AddID(ids datatypes.JSONSlice[uint], id uint) (datatypes.JSONSlice[uint], bool) {
	if containsID(ids, id) {
		return ids, false
	}
	return append(ids, id), true
}

// RemoveID removes id from ids if present and reports whether it was removed.
func RemoveID(ids datatypes.JSONSlice[uint], id uint) (datatypes.JSONSlice[uint], bool) {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...), true
		}
	}
	return ids, false
}
