package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/perchsocial/perch/internal/api/controller"
	"github.com/perchsocial/perch/internal/config"
	"github.com/perchsocial/perch/internal/model"
	"github.com/perchsocial/perch/internal/repository"
	"github.com/perchsocial/perch/internal/service"
)

const testSecret = "test-secret"

// memRepo implements both repository interfaces in memory so the HTTP
// tests run the real router, middleware and services end to end.
type memRepo struct {
	users         map[primitive.ObjectID]*model.User
	notifications []model.Notification
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[primitive.ObjectID]*model.User)}
}

func (r *memRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memRepo) Suggested(_ context.Context, exclude []primitive.ObjectID, limit int) ([]model.User, error) {
	excluded := make(map[primitive.ObjectID]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}
	var out []model.User
	for _, u := range r.users {
		if excluded[u.ID] || len(out) >= limit {
			continue
		}
		cp := *u
		cp.Password = ""
		out = append(out, cp)
	}
	return out, nil
}

func (r *memRepo) Follow(_ context.Context, followerID, targetID primitive.ObjectID) error {
	r.users[targetID].Followers = append(r.users[targetID].Followers, followerID)
	r.users[followerID].Following = append(r.users[followerID].Following, targetID)
	r.notifications = append(r.notifications, model.Notification{
		ID: primitive.NewObjectID(), From: followerID, To: targetID, Type: model.NotificationFollow,
	})
	return nil
}

func (r *memRepo) Unfollow(_ context.Context, followerID, targetID primitive.ObjectID) error {
	r.users[targetID].Followers = remove(r.users[targetID].Followers, followerID)
	r.users[followerID].Following = remove(r.users[followerID].Following, targetID)
	return nil
}

func remove(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func (r *memRepo) ListByRecipient(_ context.Context, to primitive.ObjectID) ([]model.Notification, error) {
	var out []model.Notification
	for _, n := range r.notifications {
		if n.To == to {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memRepo) MarkRead(_ context.Context, to primitive.ObjectID) error {
	for i := range r.notifications {
		if r.notifications[i].To == to {
			r.notifications[i].Read = true
		}
	}
	return nil
}

func (r *memRepo) DeleteByRecipient(_ context.Context, to primitive.ObjectID) error {
	var kept []model.Notification
	for _, n := range r.notifications {
		if n.To != to {
			kept = append(kept, n)
		}
	}
	r.notifications = kept
	return nil
}

type nopImageStore struct{}

func (nopImageStore) Upload(_ context.Context, _ []byte, _ string) (string, error) {
	return "https://img.test/uploaded", nil
}
func (nopImageStore) Delete(_ context.Context, _ string) error { return nil }

// newTestServer builds a fresh engine per test so the auth rate limiter
// never bleeds between tests.
func newTestServer(t *testing.T) (*gin.Engine, *memRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMemRepo()
	authSvc := service.NewAuthService(repo, config.SessionConfig{Secret: testSecret, ExpireDays: 15})
	userSvc := service.NewUserService(repo, nopImageStore{})
	notifSvc := service.NewNotificationService(repo)

	r := gin.New()
	RegisterRoutes(r, testSecret,
		controller.NewAuthController(authSvc, false),
		controller.NewUserController(userSvc),
		controller.NewNotificationController(notifSvc),
	)
	return r, repo
}

func (r *memRepo) seed(t *testing.T, username, email, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		FullName:  "Test User",
		Email:     email,
		Password:  string(hash),
		Followers: []primitive.ObjectID{},
		Following: []primitive.ObjectID{},
	}
	r.users[u.ID] = u
	return u
}

func doJSON(r *gin.Engine, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(fmt.Sprintf("encoding request body: %v", err))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func jsonUnmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	return out
}

func sessionCookie(resp *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range resp.Result().Cookies() {
		if c.Name == "jwt" {
			return c
		}
	}
	return nil
}

func loginAs(t *testing.T, r *gin.Engine, username, password string) *http.Cookie {
	t.Helper()
	resp := doJSON(r, http.MethodPost, "/api/auth/login", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.Code, "login failed: %s", resp.Body.String())
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	return cookie
}
