package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NekruzRakhimov/todo-list/internal/api"
	authapi "github.com/NekruzRakhimov/todo-list/internal/api/auth"
	taskapi "github.com/NekruzRakhimov/todo-list/internal/api/task"
	"github.com/NekruzRakhimov/todo-list/internal/pkg/jwt"
	"github.com/NekruzRakhimov/todo-list/internal/repository"
	"github.com/NekruzRakhimov/todo-list/internal/service"
)

type testServer struct {
	router *gin.Engine
	tokens *jwt.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens := jwt.New("test-secret", time.Hour)
	authService := service.NewAuthService(repository.NewUserRepository(db), tokens)

	r := gin.New()
	api.SetupRouter(r,
		authapi.NewHandler(authService, nil),
		taskapi.NewHandler(repository.NewTaskRepository(db)),
	)

	return &testServer{router: r, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) signUp(t *testing.T, fullName, username, pw string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, http.MethodPost, "/auth/sign-up", "", gin.H{
		"full_name": fullName,
		"username":  username,
		"password":  pw,
	})
}

func (s *testServer) signIn(t *testing.T, username, pw string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, http.MethodPost, "/auth/sign-in", "", gin.H{
		"username": username,
		"password": pw,
	})
}

// register + login in one step, returning the bearer token
func (s *testServer) tokenFor(t *testing.T, username string) string {
	t.Helper()

	w := s.signUp(t, username+" Test", username, "pw-"+username)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.signIn(t, username, "pw-"+username)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "bearer", resp.TokenType)
	require.NotEmpty(t, resp.AccessToken)

	return resp.AccessToken
}

func validTask() gin.H {
	return gin.H{
		"title":       "A",
		"description": "d",
		"status":      "open",
		"deadline":    "2025-01-01",
	}
}

func TestPing(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ping":"pong"}`, w.Body.String())
}

func TestSignUpDuplicate(t *testing.T) {
	s := newTestServer(t)

	w := s.signUp(t, "Alice Smith", "alice", "pw1")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = s.signUp(t, "Alice Again", "alice", "pw2")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignIn(t *testing.T) {
	s := newTestServer(t)

	w := s.signUp(t, "Alice Smith", "alice", "pw1")
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.signIn(t, "alice", "pw1")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.signIn(t, "alice", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTasksRequireAuth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/tasks", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	s := newTestServer(t)
	s.tokenFor(t, "alice")

	expired, err := s.tokens.IssueWithTTL("alice", -time.Minute)
	require.NoError(t, err)

	w := s.do(t, http.MethodGet, "/tasks", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsTokenForUnknownUser(t *testing.T) {
	s := newTestServer(t)

	ghost, err := s.tokens.Issue("ghost")
	require.NoError(t, err)

	w := s.do(t, http.MethodGet, "/tasks", ghost, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTaskCreateAndList(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, "alice")

	w := s.do(t, http.MethodPost, "/tasks", token, validTask())
	assert.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/tasks", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Tasks []struct {
			ID     int    `json:"id"`
			Title  string `json:"title"`
			UserID int    `json:"user_id"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "A", resp.Tasks[0].Title)
	assert.Greater(t, resp.Tasks[0].UserID, 0)
}

func TestTaskCreateMissingField(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, "alice")

	task := validTask()
	task["status"] = ""
	w := s.do(t, http.MethodPost, "/tasks", token, task)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	delete(task, "deadline")
	w = s.do(t, http.MethodPost, "/tasks", token, task)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskCreateIgnoresClientOwner(t *testing.T) {
	s := newTestServer(t)
	tokenAlice := s.tokenFor(t, "alice")
	tokenBob := s.tokenFor(t, "bob")

	task := validTask()
	task["user_id"] = 999
	w := s.do(t, http.MethodPost, "/tasks", tokenAlice, task)
	require.Equal(t, http.StatusCreated, w.Code)

	// The task belongs to alice, not to user 999; bob sees nothing
	w = s.do(t, http.MethodGet, "/tasks", tokenBob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tasks":[]}`, w.Body.String())
}

func TestTaskListFilterAndSort(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, "alice")

	for _, tk := range []gin.H{
		{"title": "zebra", "description": "d", "status": "open", "deadline": "2026-01-01"},
		{"title": "apple", "description": "d", "status": "done", "deadline": "2026-01-01"},
		{"title": "mango", "description": "d", "status": "open", "deadline": "2026-01-01"},
	} {
		w := s.do(t, http.MethodPost, "/tasks", token, tk)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	var resp struct {
		Tasks []struct {
			Title string `json:"title"`
		} `json:"tasks"`
	}

	w := s.do(t, http.MethodGet, "/tasks?status_filter=open&sort_column=title", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Tasks, 2)
	assert.Equal(t, "mango", resp.Tasks[0].Title)
	assert.Equal(t, "zebra", resp.Tasks[1].Title)

	// Unknown sort column silently falls back to id order
	w = s.do(t, http.MethodGet, "/tasks?sort_column=%3B%20DROP%20TABLE%20tasks", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Tasks, 3)
	assert.Equal(t, "zebra", resp.Tasks[0].Title)
}

func TestTaskOwnership(t *testing.T) {
	s := newTestServer(t)
	tokenAlice := s.tokenFor(t, "alice")
	tokenBob := s.tokenFor(t, "bob")

	w := s.do(t, http.MethodPost, "/tasks", tokenAlice, validTask())
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/tasks", tokenAlice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Tasks []struct {
			ID int `json:"id"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Tasks, 1)
	id := resp.Tasks[0].ID
	path := "/tasks/" + itoa(id)

	// The owner can read details
	w = s.do(t, http.MethodGet, path+"/details", tokenAlice, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Another authenticated user is forbidden, not told "missing"
	w = s.do(t, http.MethodGet, path+"/details", tokenBob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPut, path, tokenBob, validTask())
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodDelete, path, tokenBob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Alice's task is untouched
	w = s.do(t, http.MethodGet, path+"/details", tokenAlice, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTaskUpdateAndDelete(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, "alice")

	w := s.do(t, http.MethodPost, "/tasks", token, validTask())
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/tasks", token, nil)
	var resp struct {
		Tasks []struct {
			ID int `json:"id"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Tasks, 1)
	path := "/tasks/" + itoa(resp.Tasks[0].ID)

	w = s.do(t, http.MethodPut, path, token, gin.H{
		"title":       "B",
		"description": "updated",
		"status":      "done",
		"deadline":    "2026-02-02",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var detail struct {
		Task struct {
			Title  string `json:"title"`
			Status string `json:"status"`
		} `json:"task"`
	}
	w = s.do(t, http.MethodGet, path+"/details", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "B", detail.Task.Title)
	assert.Equal(t, "done", detail.Task.Status)

	// Update with an empty field is rejected
	w = s.do(t, http.MethodPut, path, token, gin.H{
		"title": "", "description": "d", "status": "open", "deadline": "2026-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, path+"/details", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskBadID(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, "alice")

	for _, path := range []string{"/tasks/abc/details", "/tasks/0/details", "/tasks/-1/details"} {
		w := s.do(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "path %s", path)
	}

	w := s.do(t, http.MethodGet, "/tasks/12345/details", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimitOnAuthEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, err := repository.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens := jwt.New("test-secret", time.Hour)
	authService := service.NewAuthService(repository.NewUserRepository(db), tokens)
	limiter := service.NewMemoryRateLimit(time.Minute, 2)

	r := gin.New()
	api.SetupRouter(r,
		authapi.NewHandler(authService, limiter),
		taskapi.NewHandler(repository.NewTaskRepository(db)),
	)
	s := &testServer{router: r, tokens: tokens}

	w := s.signIn(t, "alice", "pw")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.signIn(t, "alice", "pw")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Third attempt within the window is throttled
	w = s.signIn(t, "alice", "pw")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
