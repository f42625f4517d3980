// pkg/web/router/api_test.go
package router_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/google/uuid"

	"social-blog/pkg/common/config"
	"social-blog/pkg/core/auth"
	"social-blog/pkg/core/media"
	postmodel "social-blog/pkg/core/post/model"
	usermodel "social-blog/pkg/core/user/model"
	"social-blog/pkg/web/router"
)

type testServer struct {
	h      *server.Hertz
	issuer *auth.Issuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "file:" + t.Name() + "?mode=memory&cache=shared"
	cfg.Database.LogLevel = "silent"
	cfg.Middleware.RateLimit.Rate = 0
	cfg.Middleware.JWT.PasswordCost = 4
	cfg.Media.Local.Dir = t.TempDir()

	db, err := cfg.InitDB()
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	if err := usermodel.AutoMigrate(db); err != nil {
		t.Fatal(err)
	}
	if err := postmodel.AutoMigrate(db); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	host, err := media.New(cfg.Media)
	if err != nil {
		t.Fatal(err)
	}

	h := server.New()
	if err := router.RegisterAPIs(h, cfg, db, host); err != nil {
		t.Fatalf("RegisterAPIs: %v", err)
	}

	issuer, err := auth.NewIssuer(auth.IssuerConfig{
		Secret:        cfg.Middleware.JWT.Secret,
		Issuer:        cfg.Middleware.JWT.Issuer,
		SigningMethod: cfg.Middleware.JWT.SigningMethod,
		TTL:           cfg.Middleware.JWT.ExpireDuration,
	})
	if err != nil {
		t.Fatal(err)
	}
	return &testServer{h: h, issuer: issuer}
}

type errorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body []byte, contentType string) (int, []byte) {
	t.Helper()
	headers := []ut.Header{}
	if token != "" {
		headers = append(headers, ut.Header{Key: "Authorization", Value: "Bearer " + token})
	}
	if contentType != "" {
		headers = append(headers, ut.Header{Key: "Content-Type", Value: contentType})
	}
	var reqBody *ut.Body
	if body != nil {
		reqBody = &ut.Body{Body: bytes.NewReader(body), Len: len(body)}
	}
	resp := ut.PerformRequest(s.h.Engine, method, path, reqBody, headers...).Result()
	return resp.StatusCode(), resp.Body()
}

func (s *testServer) doJSON(t *testing.T, method, path, token string, payload interface{}) (int, []byte) {
	t.Helper()
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			t.Fatal(err)
		}
	}
	return s.do(t, method, path, token, body, "application/json")
}

func expectError(t *testing.T, status int, body []byte, wantStatus int, wantMessage string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status = %d, want %d (body %s)", status, wantStatus, body)
	}
	var e errorBody
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatalf("decode error body %s: %v", body, err)
	}
	if e.Code != wantStatus || e.Message != wantMessage {
		t.Fatalf("error = %+v, want %d %q", e, wantStatus, wantMessage)
	}
}

type session struct {
	ID    string
	Token string
}

func (s *testServer) register(t *testing.T, name string) session {
	t.Helper()
	status, body := s.doJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"username": name,
		"email":    name + "@example.com",
		"password": "password123",
	})
	if status != 201 {
		t.Fatalf("register %s: status %d body %s", name, status, body)
	}
	var res struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatal(err)
	}
	return session{ID: res.User.ID, Token: res.Token}
}

func imageForm(t *testing.T, contentType string, fields map[string]string) ([]byte, string) {
	t.Helper()
	return imageFormWith(t, contentType, fields, []byte("\x89PNG fake image"))
}

func imageFormWith(t *testing.T, contentType string, fields map[string]string, payload []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if contentType != "" {
		part, err := w.CreatePart(textproto.MIMEHeader{
			"Content-Disposition": {`form-data; name="image"; filename="photo.png"`},
			"Content-Type":        {contentType},
		})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(payload); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes(), w.FormDataContentType()
}

var postFields = map[string]string{
	"title":       "hello world",
	"description": "my very first post here",
	"category":    "travel",
}

func (s *testServer) createPost(t *testing.T, token string) string {
	t.Helper()
	body, ct := imageForm(t, "image/png", postFields)
	status, res := s.do(t, "POST", "/api/posts", token, body, ct)
	if status != 201 {
		t.Fatalf("create post: status %d body %s", status, res)
	}
	var post struct {
		ID      string   `json:"id"`
		OwnerID string   `json:"ownerId"`
		Likes   []string `json:"likes"`
	}
	if err := json.Unmarshal(res, &post); err != nil {
		t.Fatal(err)
	}
	return post.ID
}

// splice 保留签名，替换载荷
func splice(t *testing.T, token, payload string) string {
	t.Helper()
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("malformed token %q", token)
	}
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(payload))
	return strings.Join(parts, ".")
}

func TestHealthCheckRoute(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, "GET", "/health", "", nil, "")
	if status != 200 {
		t.Fatalf("Expected 200, got %d", status)
	}
	var health struct {
		Status     string `json:"status"`
		Components []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"components"`
	}
	if err := json.Unmarshal(body, &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "healthy" || len(health.Components) != 1 || health.Components[0].Status != "ok" {
		t.Fatalf("health = %+v", health)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice")

	claims, err := s.issuer.Verify(alice.Token)
	if err != nil || claims.UserID != alice.ID {
		t.Fatalf("register token claims = %+v, %v", claims, err)
	}

	status, body := s.doJSON(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	if status != 200 {
		t.Fatalf("login status %d body %s", status, body)
	}
	var login struct {
		Token   string `json:"token"`
		IsAdmin bool   `json:"isAdmin"`
		Avatar  struct {
			URL string `json:"url"`
		} `json:"avatar"`
	}
	if err := json.Unmarshal(body, &login); err != nil {
		t.Fatal(err)
	}
	claims, err = s.issuer.Verify(login.Token)
	if err != nil || claims.UserID != alice.ID {
		t.Fatalf("login token claims = %+v, %v", claims, err)
	}
	if login.IsAdmin || login.Avatar.URL != usermodel.DefaultAvatarURL {
		t.Errorf("login = %+v", login)
	}

	status, body = s.doJSON(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrongpassword",
	})
	expectError(t, status, body, 400, "invalid email or password")

	status, body = s.doJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	expectError(t, status, body, 400, "user already exists")

	status, body = s.doJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"username": "x",
		"email":    "bad",
		"password": "short",
	})
	expectError(t, status, body, 400, "validation failed")
}

func TestPostOwnershipChain(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")
	postID := s.createPost(t, alice.Token)
	path := "/api/posts/" + postID
	update := map[string]string{"title": "edited title"}

	tests := []struct {
		name        string
		method      string
		path        string
		token       string
		wantStatus  int
		wantMessage string
	}{
		{"no token", "PUT", path, "", 401, "token is not provided, access denied"},
		{"garbage token", "PUT", path, "not-a-jwt", 401, "invalid token, access denied"},
		{"spliced admin payload", "DELETE", path, splice(t, bob.Token, fmt.Sprintf(`{"id":%q,"isAdmin":true}`, bob.ID)), 401, "invalid token, access denied"},
		{"malformed id before auth", "PUT", "/api/posts/123", "", 400, "invalid id"},
		{"unknown post", "PUT", "/api/posts/" + uuid.NewString(), bob.Token, 404, "post not found"},
		{"non-owner edit", "PUT", path, bob.Token, 403, "access denied, you are not allowed"},
		{"non-owner image", "PUT", "/api/posts/upload-image/" + postID, bob.Token, 403, "access denied, you are not allowed"},
		{"non-owner delete", "DELETE", path, bob.Token, 403, "access denied, forbidden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.doJSON(t, tt.method, tt.path, tt.token, update)
			expectError(t, status, body, tt.wantStatus, tt.wantMessage)
		})
	}

	status, body := s.doJSON(t, "PUT", path, alice.Token, update)
	if status != 200 || !strings.Contains(string(body), "edited title") {
		t.Fatalf("owner edit: %d %s", status, body)
	}

	// 点赞两次恢复原状
	for i, want := range []int{1, 0} {
		status, body := s.do(t, "PUT", "/api/posts/likes/"+postID, bob.Token, nil, "")
		if status != 200 {
			t.Fatalf("toggle %d: %d %s", i, status, body)
		}
		var post struct {
			Likes []string `json:"likes"`
		}
		if err := json.Unmarshal(body, &post); err != nil {
			t.Fatal(err)
		}
		if len(post.Likes) != want {
			t.Fatalf("toggle %d: likes = %v", i, post.Likes)
		}
	}

	adminToken, err := s.issuer.Issue(uuid.NewString(), true)
	if err != nil {
		t.Fatal(err)
	}
	status, body = s.do(t, "DELETE", path, adminToken, nil, "")
	if status != 200 {
		t.Fatalf("admin delete: %d %s", status, body)
	}
	status, body = s.do(t, "GET", path, "", nil, "")
	expectError(t, status, body, 404, "post not found")
}

func TestUserRouteChains(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")
	adminToken, err := s.issuer.Issue(uuid.NewString(), true)
	if err != nil {
		t.Fatal(err)
	}
	alicePath := "/api/users/profile/" + alice.ID

	status, body := s.do(t, "GET", "/api/users/profile", "", nil, "")
	expectError(t, status, body, 401, "token is not provided, access denied")
	status, body = s.do(t, "GET", "/api/users/profile", bob.Token, nil, "")
	expectError(t, status, body, 401, "not allowed to access. only admins")

	status, body = s.do(t, "GET", "/api/users/profile", adminToken, nil, "")
	if status != 200 || strings.Contains(string(body), "password") {
		t.Fatalf("admin list: %d %s", status, body)
	}
	var list struct {
		Users []struct {
			ID string `json:"id"`
		} `json:"users"`
	}
	if err := json.Unmarshal(body, &list); err != nil || len(list.Users) != 2 {
		t.Fatalf("users = %+v, %v", list, err)
	}

	status, body = s.do(t, "GET", "/api/users/profile/nope", "", nil, "")
	expectError(t, status, body, 400, "invalid id")
	status, body = s.do(t, "GET", "/api/users/profile/"+uuid.NewString(), "", nil, "")
	expectError(t, status, body, 404, "user not found")

	status, body = s.doJSON(t, "PUT", alicePath, bob.Token, map[string]string{"bio": "hacked"})
	expectError(t, status, body, 401, "not allowed to access. only user himself")
	status, body = s.doJSON(t, "PUT", alicePath, alice.Token, map[string]string{"bio": "hi"})
	if status != 200 || !strings.Contains(string(body), `"bio":"hi"`) {
		t.Fatalf("self update: %d %s", status, body)
	}

	status, body = s.do(t, "DELETE", alicePath, bob.Token, nil, "")
	expectError(t, status, body, 403, "not allowed, the user himself or admin")
	status, body = s.do(t, "DELETE", alicePath, adminToken, nil, "")
	if status != 200 {
		t.Fatalf("admin delete: %d %s", status, body)
	}
	status, body = s.do(t, "GET", alicePath, "", nil, "")
	expectError(t, status, body, 404, "user not found")
}

func TestImageValidation(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice")

	body, ct := imageForm(t, "", postFields)
	status, res := s.do(t, "POST", "/api/posts", alice.Token, body, ct)
	expectError(t, status, res, 400, "no image provided")

	body, ct = imageForm(t, "text/plain", postFields)
	status, res = s.do(t, "POST", "/api/posts", alice.Token, body, ct)
	expectError(t, status, res, 400, "unsupported file format")

	body, ct = imageFormWith(t, "image/png", postFields, bytes.Repeat([]byte{0xff}, 1<<20+1))
	status, res = s.do(t, "POST", "/api/posts", alice.Token, body, ct)
	expectError(t, status, res, 400, "image too large")

	body, ct = imageForm(t, "image/png", nil)
	status, res = s.do(t, "POST", "/api/users/profile/profile-photo-upload", "", body, ct)
	expectError(t, status, res, 401, "token is not provided, access denied")

	status, res = s.do(t, "POST", "/api/users/profile/profile-photo-upload", alice.Token, body, ct)
	if status != 200 || !strings.Contains(string(res), "publicId") {
		t.Fatalf("avatar upload: %d %s", status, res)
	}
}

func TestListPosts(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice")
	for i := 0; i < 4; i++ {
		s.createPost(t, alice.Token)
	}

	status, body := s.do(t, "GET", "/api/posts/count", "", nil, "")
	if status != 200 || strings.TrimSpace(string(body)) != "4" {
		t.Fatalf("count: %d %s", status, body)
	}

	status, body = s.do(t, "GET", "/api/posts?pageNumber=2&category=travel", "", nil, "")
	if status != 200 {
		t.Fatalf("list: %d %s", status, body)
	}
	var page []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &page); err != nil || len(page) != 1 {
		t.Fatalf("page 2 = %s, %v", body, err)
	}

	status, body = s.do(t, "GET", "/api/posts?pageNumber=zero", "", nil, "")
	expectError(t, status, body, 400, "invalid page number")
}

func TestDeletedUserTokenCannotWrite(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice")
	ghost := s.register(t, "ghost")
	postID := s.createPost(t, alice.Token)

	status, body := s.do(t, "DELETE", "/api/users/profile/"+ghost.ID, ghost.Token, nil, "")
	if status != 200 {
		t.Fatalf("delete ghost: status %d body %s", status, body)
	}

	form, ct := imageForm(t, "image/png", postFields)
	status, body = s.do(t, "POST", "/api/posts", ghost.Token, form, ct)
	expectError(t, status, body, 401, "user no longer exists")

	status, body = s.do(t, "PUT", "/api/posts/likes/"+postID, ghost.Token, nil, "")
	expectError(t, status, body, 401, "user no longer exists")

	status, body = s.do(t, "GET", "/api/posts", "", nil, "")
	if status != 200 {
		t.Fatalf("list: status %d", status)
	}
	var posts []struct {
		ID    string   `json:"id"`
		Likes []string `json:"likes"`
	}
	if err := json.Unmarshal(body, &posts); err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 || posts[0].ID != postID || len(posts[0].Likes) != 0 {
		t.Fatalf("posts = %+v, want only alice's unliked post", posts)
	}
}
