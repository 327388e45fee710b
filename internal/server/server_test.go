package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"inkwell/internal/auth"
	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// memStore is an in-memory implementation of the user, post and engagement
// repositories, enough to exercise the HTTP layer end to end without a
// database.
type memStore struct {
	mu     sync.Mutex
	users  map[uint]*models.User
	posts  map[uint]*models.Post
	nextID uint
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[uint]*models.User),
		posts:  make(map[uint]*models.Post),
		nextID: 1,
	}
}

func cloneUser(u *models.User) *models.User {
	copied := *u
	copied.AuthoredPosts = append([]uint(nil), u.AuthoredPosts...)
	copied.LikedPosts = append([]uint(nil), u.LikedPosts...)
	copied.SavedPosts = append([]uint(nil), u.SavedPosts...)
	if m := u.LikedComments.Data(); m != nil {
		cloned := make(map[string]bool, len(m))
		for k, v := range m {
			cloned[k] = v
		}
		copied.LikedComments = datatypes.NewJSONType(cloned)
	}
	return &copied
}

func clonePost(p *models.Post) *models.Post {
	copied := *p
	copied.Comments = append([]models.Comment(nil), p.Comments...)
	return &copied
}

func (s *memStore) seedUser(u models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.nextID
		s.nextID++
	}
	s.users[u.ID] = &u
	return &u
}

func (s *memStore) seedPost(p models.Post) *models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.nextID
		s.nextID++
	}
	s.posts[p.ID] = &p
	return &p
}

func (s *memStore) userState(id uint) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.users[id]
}

func (s *memStore) postState(id uint) models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.posts[id]
}

func (s *memStore) GetByID(ctx context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	return cloneUser(u), nil
}

func (s *memStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (s *memStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return models.NewConflictError("An account with this email already exists")
		}
	}
	user.ID = s.nextID
	s.nextID++
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *memStore) Update(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *memStore) List(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *cloneUser(u))
	}
	return users, nil
}

func (s *memStore) GetPostByID(id uint) (*models.Post, bool) {
	p, ok := s.posts[id]
	if !ok {
		return nil, false
	}
	return clonePost(p), true
}

func (s *memStore) GetByIDs(ctx context.Context, ids []uint) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var posts []*models.Post
	for _, id := range ids {
		if p, ok := s.posts[id]; ok {
			posts = append(posts, clonePost(p))
		}
	}
	return posts, nil
}

func (s *memStore) UpdateUserPost(ctx context.Context, userID, postID uint, fn func(*models.User, *models.Post) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return models.NewNotFoundError("User", userID)
	}
	post, ok := s.posts[postID]
	if !ok {
		return models.NewNotFoundError("Post", postID)
	}
	u, p := cloneUser(user), clonePost(post)
	if err := fn(u, p); err != nil {
		return err
	}
	s.users[userID] = u
	s.posts[postID] = p
	return nil
}

func (s *memStore) UpdateUser(ctx context.Context, userID uint, fn func(*models.User) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return models.NewNotFoundError("User", userID)
	}
	u := cloneUser(user)
	if err := fn(u); err != nil {
		return err
	}
	s.users[userID] = u
	return nil
}

func (s *memStore) CreateOwnedPost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[post.UserID]
	if !ok {
		return models.NewNotFoundError("User", post.UserID)
	}
	post.ID = s.nextID
	s.nextID++
	s.posts[post.ID] = clonePost(post)

	u := cloneUser(user)
	u.AuthoredPosts, _ = models.AddID(u.AuthoredPosts, post.ID)
	u.PostsCount = len(u.AuthoredPosts)
	s.users[post.UserID] = u
	return nil
}

// postRepoAdapter routes post reads to the memStore without the cache layer.
type postRepoAdapter struct {
	store *memStore
}

func (a *postRepoAdapter) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	if p, ok := a.store.GetPostByID(id); ok {
		return p, nil
	}
	return nil, models.NewNotFoundError("Post", id)
}

func (a *postRepoAdapter) GetByIDs(ctx context.Context, ids []uint) ([]*models.Post, error) {
	return a.store.GetByIDs(ctx, ids)
}

func (a *postRepoAdapter) List(ctx context.Context) ([]*models.Post, error) {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	var posts []*models.Post
	for _, p := range a.store.posts {
		posts = append(posts, clonePost(p))
	}
	return posts, nil
}

func newTestServer(t *testing.T) (*fiber.App, *Server, *memStore) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	store := newMemStore()
	cfg := &config.Config{
		JWTSecret: "handler-test-secret",
		Env:       "test",
	}
	srv := &Server{
		config:   cfg,
		sessions: auth.NewSessionManager(cfg.JWTSecret),
		userRepo: store,
		postRepo: &postRepoAdapter{store: store},
		engRepo:  store,
	}
	srv.userService = service.NewUserService(store, store)
	srv.postService = service.NewPostService(&postRepoAdapter{store: store}, store, store)
	srv.engService = service.NewEngagementService(store)
	srv.imageService = service.NewImageService(nil, cfg)

	app := fiber.New()
	srv.SetupRoutes(app)
	return app, srv, store
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func withSession(t *testing.T, srv *Server, req *http.Request, userID uint) *http.Request {
	t.Helper()
	token, err := srv.sessions.Issue(userID)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), "body: %s", raw)
	return body
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, ck := range resp.Cookies() {
		if ck.Name == auth.CookieName {
			return ck
		}
	}
	return nil
}

func seedAccount(t *testing.T, store *memStore, email string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("Sup3r-Secret-Pass!"), bcrypt.MinCost)
	require.NoError(t, err)
	return store.seedUser(models.User{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  string(hashed),
	})
}

func TestSignupIssuesSessionCookie(t *testing.T) {
	app, _, _ := newTestServer(t)

	resp, err := app.Test(jsonRequest(t, fiber.MethodPost, "/signup", fiber.Map{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "ada@example.com",
		"password":   "Sup3r-Secret-Pass!",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	ck := sessionCookie(resp)
	require.NotNil(t, ck, "session cookie must be set")
	assert.True(t, ck.HttpOnly)
	assert.NotEmpty(t, ck.Value)

	body := decodeBody(t, resp)
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", user["email"])
	_, hasPassword := user["password"]
	assert.False(t, hasPassword, "credential must never be serialized")
}

func TestSignupDuplicateEmail(t *testing.T) {
	app, _, store := newTestServer(t)
	seedAccount(t, store, "ada@example.com")

	resp, err := app.Test(jsonRequest(t, fiber.MethodPost, "/signup", fiber.Map{
		"first_name": "Ada",
		"email":      "ada@example.com",
		"password":   "Sup3r-Secret-Pass!",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "CONFLICT", body["code"])
}

func TestLoginAndSessionUse(t *testing.T) {
	app, _, store := newTestServer(t)
	user := seedAccount(t, store, "ada@example.com")

	resp, err := app.Test(jsonRequest(t, fiber.MethodPost, "/login", fiber.Map{
		"email":    "Ada@Example.com",
		"password": "Sup3r-Secret-Pass!",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	ck := sessionCookie(resp)
	require.NotNil(t, ck)

	// The returned cookie authenticates a protected read.
	req := jsonRequest(t, fiber.MethodGet, "/user-profile", nil)
	req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	profile, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(user.ID), profile["id"])
}

func TestLoginFailuresLookAlike(t *testing.T) {
	app, _, store := newTestServer(t)
	seedAccount(t, store, "ada@example.com")

	wrongPass, err := app.Test(jsonRequest(t, fiber.MethodPost, "/login", fiber.Map{
		"email":    "ada@example.com",
		"password": "WrongPassword1!!",
	}), -1)
	require.NoError(t, err)
	noAccount, err := app.Test(jsonRequest(t, fiber.MethodPost, "/login", fiber.Map{
		"email":    "ghost@example.com",
		"password": "Sup3r-Secret-Pass!",
	}), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, wrongPass.StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, noAccount.StatusCode)

	rawWrong, err := io.ReadAll(wrongPass.Body)
	require.NoError(t, err)
	rawMissing, err := io.ReadAll(noAccount.Body)
	require.NoError(t, err)
	assert.Equal(t, rawWrong, rawMissing)
}

func TestLogoutExpiresCookie(t *testing.T) {
	app, _, _ := newTestServer(t)

	resp, err := app.Test(jsonRequest(t, fiber.MethodPost, "/logout", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	ck := sessionCookie(resp)
	require.NotNil(t, ck)
	assert.Empty(t, ck.Value)
}

func TestProtectedRoutesRejectMissingSession(t *testing.T) {
	app, _, store := newTestServer(t)
	user := seedAccount(t, store, "ada@example.com")
	post := store.seedPost(models.Post{Title: "p", UserID: user.ID})

	routes := []struct {
		method  string
		path    string
		payload any
	}{
		{fiber.MethodGet, "/user-profile", nil},
		{fiber.MethodGet, "/explore", nil},
		{fiber.MethodGet, "/myposts", nil},
		{fiber.MethodGet, "/likedposts", nil},
		{fiber.MethodGet, "/savedposts", nil},
		{fiber.MethodGet, "/profiles", nil},
		{fiber.MethodPost, "/postarticle", fiber.Map{"title": "t", "content": "c", "category": "misc"}},
		{fiber.MethodPost, "/editprofile", fiber.Map{"bio": "new"}},
		{fiber.MethodPost, "/handle-post-like", fiber.Map{"post_id": post.ID}},
		{fiber.MethodPost, "/handle-post-save", fiber.Map{"post_id": post.ID}},
		{fiber.MethodPost, "/handle-post-comment", fiber.Map{"post_id": post.ID, "comment": "hi"}},
		{fiber.MethodPost, "/handle-comment-like", fiber.Map{"post_id": post.ID, "comment_id": "x"}},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			resp, err := app.Test(jsonRequest(t, rt.method, rt.path, rt.payload), -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

			body := decodeBody(t, resp)
			assert.Equal(t, "Invalid or expired session", body["error"])
		})
	}

	// The rejected writes left no trace.
	assert.Zero(t, store.postState(post.ID).LikeCount)
	assert.Empty(t, store.postState(post.ID).Comments)
	assert.Zero(t, store.userState(user.ID).PostsCount)
}

func TestTamperedSessionRejected(t *testing.T) {
	app, srv, store := newTestServer(t)
	user := seedAccount(t, store, "ada@example.com")

	token, err := srv.sessions.Issue(user.ID)
	require.NoError(t, err)

	req := jsonRequest(t, fiber.MethodGet, "/user-profile", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token[:len(token)-4] + "XXXX"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestPostLikeToggleOverHTTP(t *testing.T) {
	app, srv, store := newTestServer(t)
	user := seedAccount(t, store, "ada@example.com")
	post := store.seedPost(models.Post{Title: "p", UserID: user.ID})

	like := func() map[string]any {
		req := withSession(t, srv, jsonRequest(t, fiber.MethodPost, "/handle-post-like",
			fiber.Map{"post_id": post.ID}), user.ID)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		return decodeBody(t, resp)
	}

	body := like()
	assert.Equal(t, true, body["liked"])
	assert.Equal(t, float64(1), body["like_count"])
	assert.Equal(t, 1, store.postState(post.ID).LikeCount)

	body = like()
	assert.Equal(t, false, body["liked"])
	assert.Equal(t, float64(0), body["like_count"])
	assert.Equal(t, 0, store.postState(post.ID).LikeCount)
	likerState := store.userState(user.ID)
	assert.False(t, likerState.HasLiked(post.ID))
}

func TestPostSaveToggleOverHTTP(t *testing.T) {
	app, srv, store := newTestServer(t)
	user := seedAccount(t, store, "ada@example.com")
	post := store.seedPost(models.Post{Title: "p", UserID: user.ID})

	req := withSession(t, srv, jsonRequest(t, fiber.MethodPost, "/handle-post-save",
		fiber.Map{"post_id": post.ID}), user.ID)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["saved"])
	assert.Equal(t, float64(1), body["save_count"])
	saverState := store.userState(user.ID)
	assert.True(t, saverState.HasSaved(post.ID))
}

func TestLikeMissingPostReturns404(t *testing.T) {
	app, srv, store := newTestServer(t)
	user := seedAccount(t, store, "ada@example.com")

	req := withSession(t, srv, jsonRequest(t, fiber.MethodPost, "/handle-post-like",
		fiber.Map{"post_id": 404}), user.ID)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestLikeWithoutPostIDReturns400(t *testing.T) {
	app, srv, store := newTestServer(t)
	user := seedAccount(t, store, "ada@example.com")

	req := withSession(t, srv, jsonRequest(t, fiber.MethodPost, "/handle-post-like",
		fiber.Map{}), user.ID)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCommentFlowOverHTTP(t *testing.T) {
	app, srv, store := newTestServer(t)
	user := seedAccount(t, store, "ada@example.com")
	post := store.seedPost(models.Post{Title: "p", UserID: user.ID})

	req := withSession(t, srv, jsonRequest(t, fiber.MethodPost, "/handle-post-comment",
		fiber.Map{"post_id": post.ID, "comment": "first!"}), user.ID)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	comment, ok := body["comment"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "first!", comment["content"])
	assert.Equal(t, "Ada Lovelace", comment["author_name"])
	commentID, ok := comment["id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, commentID)

	comments, ok := body["comments"].([]any)
	require.True(t, ok)
	assert.Len(t, comments, 1)

	// Like the fresh comment.
	req = withSession(t, srv, jsonRequest(t, fiber.MethodPost, "/handle-comment-like",
		fiber.Map{"post_id": post.ID, "comment_id": commentID}), user.ID)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body = decodeBody(t, resp)
	assert.Equal(t, true, body["liked"])
	assert.Equal(t, float64(1), body["like_count"])
	assert.Equal(t, commentID, body["comment_id"])
	commentedPost := store.postState(post.ID)
	assert.Equal(t, 1, commentedPost.FindComment(commentID).LikeCount)
}

func TestCommentLikeUnknownCommentReturns404(t *testing.T) {
	app, srv, store := newTestServer(t)
	user := seedAccount(t, store, "ada@example.com")
	post := store.seedPost(models.Post{Title: "p", UserID: user.ID})

	req := withSession(t, srv, jsonRequest(t, fiber.MethodPost, "/handle-comment-like",
		fiber.Map{"post_id": post.ID, "comment_id": "no-such-comment"}), user.ID)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCreatePostOverHTTP(t *testing.T) {
	app, srv, store := newTestServer(t)
	user := seedAccount(t, store, "ada@example.com")

	req := withSession(t, srv, jsonRequest(t, fiber.MethodPost, "/postarticle", fiber.Map{
		"title":    "On Analytical Engines",
		"content":  "Some content about engines.",
		"category": "engineering",
	}), user.ID)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	postID, ok := body["post_id"].(float64)
	require.True(t, ok)
	require.NotZero(t, postID)

	owner := store.userState(user.ID)
	assert.Equal(t, 1, owner.PostsCount)
	assert.Contains(t, []uint(owner.AuthoredPosts), uint(postID))
}

func TestGetArticle(t *testing.T) {
	app, _, store := newTestServer(t)
	user := seedAccount(t, store, "ada@example.com")
	post := store.seedPost(models.Post{Title: "readable", UserID: user.ID})

	resp, err := app.Test(jsonRequest(t, fiber.MethodPost, "/article",
		fiber.Map{"post_id": post.ID}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	got, ok := body["post"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "readable", got["title"])

	resp, err = app.Test(jsonRequest(t, fiber.MethodPost, "/article",
		fiber.Map{"post_id": 9999}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, fiber.MethodPost, "/article", fiber.Map{}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestEditProfilePartialOverHTTP(t *testing.T) {
	app, srv, store := newTestServer(t)
	user := seedAccount(t, store, "ada@example.com")

	req := withSession(t, srv, jsonRequest(t, fiber.MethodPost, "/editprofile",
		fiber.Map{"bio": "countess of computing"}), user.ID)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	stored := store.userState(user.ID)
	assert.Equal(t, "countess of computing", stored.Bio)
	assert.Equal(t, "Ada", stored.FirstName)
	assert.Equal(t, "ada@example.com", stored.Email)
}

func TestAuthorProfileIsPublicView(t *testing.T) {
	app, _, store := newTestServer(t)
	author := seedAccount(t, store, "ada@example.com")
	post := store.seedPost(models.Post{Title: "p", UserID: author.ID})
	store.users[author.ID].AuthoredPosts = []uint{post.ID}

	resp, err := app.Test(jsonRequest(t, fiber.MethodPost, "/authorprofile",
		fiber.Map{"user_id": author.ID}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	profile, ok := body["profile"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ada", profile["first_name"])
	_, hasEmail := profile["email"]
	assert.False(t, hasEmail, "email must not leak through public profiles")

	posts, ok := body["posts"].([]any)
	require.True(t, ok)
	assert.Len(t, posts, 1)
}

func TestMyPostsListsAuthoredPosts(t *testing.T) {
	app, srv, store := newTestServer(t)
	user := seedAccount(t, store, "ada@example.com")
	p1 := store.seedPost(models.Post{Title: "first", UserID: user.ID})
	p2 := store.seedPost(models.Post{Title: "second", UserID: user.ID})
	store.users[user.ID].AuthoredPosts = []uint{p1.ID, p2.ID}

	req := withSession(t, srv, jsonRequest(t, fiber.MethodGet, "/myposts", nil), user.ID)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	posts, ok := body["posts"].([]any)
	require.True(t, ok)
	require.Len(t, posts, 2)
	assert.Equal(t, "first", posts[0].(map[string]any)["title"])
	assert.Equal(t, "second", posts[1].(map[string]any)["title"])
}

func TestUploadImageWithoutStoreReturns400(t *testing.T) {
	app, srv, store := newTestServer(t)
	user := seedAccount(t, store, "ada@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "cover.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/upload-image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = withSession(t, srv, req, user.ID)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLivenessCheck(t *testing.T) {
	app, _, _ := newTestServer(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health/live", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMapServiceError(t *testing.T) {
	app := fiber.New()
	var target error
	app.Get("/err", func(c *fiber.Ctx) error {
		return c.SendStatus(mapServiceError(c, target))
	})

	check := func(err error, want int) {
		t.Helper()
		target = err
		resp, terr := app.Test(httptest.NewRequest(fiber.MethodGet, "/err", nil), -1)
		require.NoError(t, terr)
		assert.Equal(t, want, resp.StatusCode)
	}

	check(models.NewNotFoundError("Post", 1), fiber.StatusNotFound)
	check(models.NewValidationError("bad"), fiber.StatusBadRequest)
	check(models.NewConflictError("dup"), fiber.StatusBadRequest)
	check(models.NewUnauthorizedError("no"), fiber.StatusUnauthorized)
	check(fmt.Errorf("boom"), fiber.StatusInternalServerError)
}
