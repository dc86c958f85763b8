package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasktrack/tasktrack-go/internal/crypto"
	"github.com/tasktrack/tasktrack-go/internal/middleware"
	"github.com/tasktrack/tasktrack-go/internal/model"
	"github.com/tasktrack/tasktrack-go/internal/repository"
	"github.com/tasktrack/tasktrack-go/internal/service"
)

type testServer struct {
	handler http.Handler
	codec   *crypto.TokenCodec
}

func newTestServer(t *testing.T, secureCookie bool) *testServer {
	t.Helper()

	store := repository.NewMemoryStore()
	codec := crypto.NewTokenCodec("test-secret")

	authSvc := service.NewAuthService(store.Users(), codec, crypto.SchemeSHA256)
	taskSvc := service.NewTaskService(store.Tasks())

	return &testServer{
		handler: NewRouter(RouterConfig{
			Auth:  NewAuthHandler(authSvc, CookieOptions{Secure: secureCookie, MaxAge: codec.TTL()}),
			Tasks: NewTaskHandler(taskSvc),
			Gate:  middleware.NewGate(codec),
		}),
		codec: codec,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) signup(t *testing.T, email string) model.AuthResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/signup", model.SignupRequest{
		Email: email, Password: "secret1", Name: "Tester",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp model.AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": {"Bearer " + token}}
}

func cookie(token string) http.Header {
	return http.Header{"Cookie": {"theme=dark; " + middleware.CookieName + "=" + token}}
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body["error"]
}

func findCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.CookieName {
			return c
		}
	}
	return nil
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)
	rec := s.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestSignup_SetsCookie(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(t, http.MethodPost, "/api/auth/signup", model.SignupRequest{
		Email: "a@b.com", Password: "secret1", Name: "Ann",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	c := findCookie(rec)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 86400, c.MaxAge)

	var resp model.AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, c.Value, resp.Token)
	assert.Equal(t, "a@b.com", resp.User.Email)

	id, ok := s.codec.Verify(resp.Token)
	require.True(t, ok)
	assert.Equal(t, resp.User.ID, id.UserID)
}

func TestLogin_SecureCookieInProduction(t *testing.T) {
	s := newTestServer(t, true)
	s.signup(t, "a@b.com")

	rec := s.do(t, http.MethodPost, "/api/auth/login", model.LoginRequest{Email: "a@b.com", Password: "secret1"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	c := findCookie(rec)
	require.NotNil(t, c)
	assert.True(t, c.Secure)
}

func TestSignup_Errors(t *testing.T) {
	s := newTestServer(t, false)
	s.signup(t, "a@b.com")

	rec := s.do(t, http.MethodPost, "/api/auth/signup", model.SignupRequest{
		Email: "a@b.com", Password: "secret1", Name: "Ann",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists", errorBody(t, rec))

	rec = s.do(t, http.MethodPost, "/api/auth/signup", "{not json", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/signup", model.SignupRequest{Email: "bad", Password: "secret1", Name: "Ann"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.ErrInvalidEmail.Error(), errorBody(t, rec))
}

func TestSignup_BodyTooLarge(t *testing.T) {
	s := newTestServer(t, false)

	huge := `{"email":"` + strings.Repeat("a", maxBodyBytes+1) + `"}`
	rec := s.do(t, http.MethodPost, "/api/auth/signup", huge, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s := newTestServer(t, false)
	s.signup(t, "a@b.com")

	rec := s.do(t, http.MethodPost, "/api/auth/login", model.LoginRequest{Email: "a@b.com", Password: "nope-nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", errorBody(t, rec))
	assert.Nil(t, findCookie(rec))
}

func TestLogout_ClearsCookie(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(t, http.MethodPost, "/api/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	c := findCookie(rec)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestMe(t *testing.T) {
	s := newTestServer(t, false)
	auth := s.signup(t, "a@b.com")

	rec := s.do(t, http.MethodGet, "/api/auth/me", nil, cookie(auth.Token))
	require.Equal(t, http.StatusOK, rec.Code)

	var user model.UserResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&user))
	assert.Equal(t, auth.User.ID, user.ID)
	assert.NotNil(t, user.CreatedAt)
}

func TestMe_UserVanished(t *testing.T) {
	s := newTestServer(t, false)

	// A validly signed credential for a user that is not in the store.
	token, err := s.codec.Issue("ghost", "ghost@b.com")
	require.NoError(t, err)

	rec := s.do(t, http.MethodGet, "/api/auth/me", nil, bearer(token))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", errorBody(t, rec))
}

func TestProtectedRoutes_Unauthorized(t *testing.T) {
	s := newTestServer(t, false)

	expired := crypto.NewTokenCodec("test-secret", crypto.WithClock(func() time.Time {
		return time.Now().Add(-48 * time.Hour)
	}))
	stale, err := expired.Issue("u1", "a@b.com")
	require.NoError(t, err)

	forged, err := crypto.NewTokenCodec("other-secret").Issue("u1", "a@b.com")
	require.NoError(t, err)

	cases := map[string]http.Header{
		"none":    nil,
		"basic":   {"Authorization": {"Basic dXNlcjpwYXNz"}},
		"garbage": bearer("garbage"),
		"expired": bearer(stale),
		"forged":  cookie(forged),
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			for _, path := range []string{"/api/auth/me", "/api/tasks", "/api/tasks/some-id"} {
				rec := s.do(t, http.MethodGet, path, nil, header)
				assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
				assert.Equal(t, "Unauthorized", errorBody(t, rec))
			}
		})
	}
}

func TestTasks_Lifecycle(t *testing.T) {
	s := newTestServer(t, false)
	auth := s.signup(t, "a@b.com")

	rec := s.do(t, http.MethodPost, "/api/tasks", model.CreateTaskRequest{Title: "Buy milk"}, bearer(auth.Token))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var task model.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&task))
	assert.Equal(t, auth.User.ID, task.UserID)
	assert.Equal(t, model.TaskPending, task.Status)

	// The cookie carrier works as well as the bearer one.
	rec = s.do(t, http.MethodGet, "/api/tasks", nil, cookie(auth.Token))
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []model.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tasks))
	require.Len(t, tasks, 1)

	rec = s.do(t, http.MethodPatch, "/api/tasks/"+task.ID, map[string]string{"status": "completed"}, bearer(auth.Token))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&task))
	assert.Equal(t, model.TaskCompleted, task.Status)
	assert.Equal(t, "Buy milk", task.Title)

	rec = s.do(t, http.MethodPatch, "/api/tasks/"+task.ID, map[string]string{"status": "archived"}, bearer(auth.Token))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/tasks/"+task.ID, nil, bearer(auth.Token))
	require.Equal(t, http.StatusOK, rec.Code)
	var msg model.MessageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&msg))
	assert.Equal(t, "Task deleted", msg.Message)

	rec = s.do(t, http.MethodGet, "/api/tasks/"+task.ID, nil, bearer(auth.Token))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTasks_EmptyListIsArray(t *testing.T) {
	s := newTestServer(t, false)
	auth := s.signup(t, "a@b.com")

	rec := s.do(t, http.MethodGet, "/api/tasks", nil, bearer(auth.Token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestTasks_ForeignOwnerGetsNotFound(t *testing.T) {
	s := newTestServer(t, false)
	alice := s.signup(t, "alice@b.com")
	bob := s.signup(t, "bob@b.com")

	rec := s.do(t, http.MethodPost, "/api/tasks", model.CreateTaskRequest{Title: "Alice secret"}, bearer(alice.Token))
	require.Equal(t, http.StatusCreated, rec.Code)
	var task model.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&task))

	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		var body any
		if method == http.MethodPatch {
			body = map[string]string{"title": "Bob was here"}
		}
		rec := s.do(t, method, "/api/tasks/"+task.ID, body, bearer(bob.Token))
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
		assert.NotContains(t, rec.Body.String(), "Alice secret", method)
		assert.Equal(t, "Task not found", errorBody(t, rec), method)
	}

	// Alice's task is untouched.
	rec = s.do(t, http.MethodGet, "/api/tasks/"+task.ID, nil, bearer(alice.Token))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&task))
	assert.Equal(t, "Alice secret", task.Title)
}
