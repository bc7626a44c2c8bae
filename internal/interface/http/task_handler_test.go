package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow-api/internal/application"
	"github.com/taskflow/taskflow-api/internal/domain/entity"
	"github.com/taskflow/taskflow-api/internal/domain/repository"
	"github.com/taskflow/taskflow-api/internal/interface/middleware"
	"github.com/taskflow/taskflow-api/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	m.Run()
}

// fakeUserRepo is an in-memory UserRepository keyed by email.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[string]*entity.User{}}
	for _, u := range users {
		f.users[u.Email] = u
	}
	return f
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.Email]; ok {
		return repository.ErrConflict
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.users[u.Email] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// fakeTaskRepo is an in-memory TaskRepository honoring the combined
// (id, userID) filter on every single-row operation.
type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*entity.Task
	seq   int
	calls int
	fail  error // when set, every method returns it
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[string]*entity.Task{}}
}

func (f *fakeTaskRepo) Create(_ context.Context, t *entity.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail != nil {
		return f.fail
	}
	f.seq++
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().Add(time.Duration(f.seq-1000) * time.Second)
	t.UpdatedAt = t.CreatedAt
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeTaskRepo) GetByOwner(_ context.Context, id, userID string) (*entity.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail != nil {
		return nil, f.fail
	}
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTaskRepo) ListByOwner(_ context.Context, userID string) ([]entity.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([]entity.Task, 0)
	for _, t := range f.tasks {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeTaskRepo) Update(_ context.Context, t *entity.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail != nil {
		return f.fail
	}
	cur, ok := f.tasks[t.ID]
	if !ok || cur.UserID != t.UserID {
		return repository.ErrNotFound
	}
	t.UpdatedAt = time.Now()
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeTaskRepo) UpdateStatus(_ context.Context, id, userID string, status entity.TaskStatus) (*entity.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail != nil {
		return nil, f.fail
	}
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	cp := *t
	return &cp, nil
}

func (f *fakeTaskRepo) Delete(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail != nil {
		return f.fail
	}
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

type taskTestEnv struct {
	router *gin.Engine
	users  *fakeUserRepo
	tasks  *fakeTaskRepo
}

// newTaskTestEnv builds a router with the task routes behind a stub session
// middleware: when email is empty the request is rejected with 401 before
// any handler runs, mirroring the real auth middleware.
func newTaskTestEnv(email string, users *fakeUserRepo, tasks *fakeTaskRepo) *taskTestEnv {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	svc := application.NewTaskService(tasks, users, logger)
	h := NewTaskHandler(svc, logger)

	r := gin.New()
	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(middleware.CtxUserEmailKey, email)
		c.Next()
	})
	api.GET("/tasks", h.List)
	api.POST("/tasks", h.Create)
	api.GET("/tasks/:id", h.Get)
	api.PUT("/tasks/:id", h.Update)
	api.PATCH("/tasks/:id", h.UpdateStatus)
	api.DELETE("/tasks/:id", h.Delete)

	return &taskTestEnv{router: r, users: users, tasks: tasks}
}

func (e *taskTestEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeTask(t *testing.T, w *httptest.ResponseRecorder) entity.Task {
	t.Helper()
	var task entity.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	return task
}

func seedUser(email string) *entity.User {
	return &entity.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  "x",
		Name:      "Test User",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestCreateTask(t *testing.T) {
	alice := seedUser("alice@example.com")
	env := newTaskTestEnv(alice.Email, newFakeUserRepo(alice), newFakeTaskRepo())

	w := env.do(t, http.MethodPost, "/api/tasks", gin.H{"title": "Buy milk", "description": "2 liters"})
	require.Equal(t, http.StatusOK, w.Code)

	task := decodeTask(t, w)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "2 liters", task.Description)
	assert.Equal(t, entity.StatusPending, task.Status)
	assert.Equal(t, alice.ID, task.UserID)
	assert.False(t, task.CreatedAt.IsZero())
	assert.False(t, task.UpdatedAt.IsZero())
}

func TestCreateTaskOwnerBoundServerSide(t *testing.T) {
	alice := seedUser("alice@example.com")
	env := newTaskTestEnv(alice.Email, newFakeUserRepo(alice), newFakeTaskRepo())

	// Client-supplied userId and status must be ignored.
	w := env.do(t, http.MethodPost, "/api/tasks", gin.H{
		"title":  "Sneaky",
		"userId": "someone-else",
		"status": "COMPLETED",
	})
	require.Equal(t, http.StatusOK, w.Code)

	task := decodeTask(t, w)
	assert.Equal(t, alice.ID, task.UserID)
	assert.Equal(t, entity.StatusPending, task.Status)
}

func TestCreateTaskValidation(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"missing title", gin.H{"description": "no title here"}},
		{"empty title", gin.H{"title": ""}},
		{"null title", gin.H{"title": nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alice := seedUser("alice@example.com")
			tasks := newFakeTaskRepo()
			env := newTaskTestEnv(alice.Email, newFakeUserRepo(alice), tasks)

			w := env.do(t, http.MethodPost, "/api/tasks", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
			assert.Empty(t, tasks.tasks, "no row may be persisted on validation failure")
		})
	}
}

func TestGetTaskRoundTrip(t *testing.T) {
	alice := seedUser("alice@example.com")
	env := newTaskTestEnv(alice.Email, newFakeUserRepo(alice), newFakeTaskRepo())

	created := decodeTask(t, env.do(t, http.MethodPost, "/api/tasks", gin.H{"title": "Buy milk"}))

	w := env.do(t, http.MethodGet, "/api/tasks/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	got := decodeTask(t, w)
	got.UpdatedAt = created.UpdatedAt // may differ, everything else must not
	assert.Equal(t, created, got)
}

func TestGetTaskNoExistenceLeakage(t *testing.T) {
	alice := seedUser("alice@example.com")
	bob := seedUser("bob@example.com")
	users := newFakeUserRepo(alice, bob)
	tasks := newFakeTaskRepo()

	aliceEnv := newTaskTestEnv(alice.Email, users, tasks)
	created := decodeTask(t, aliceEnv.do(t, http.MethodPost, "/api/tasks", gin.H{"title": "Private"}))

	bobEnv := newTaskTestEnv(bob.Email, users, tasks)
	foreign := bobEnv.do(t, http.MethodGet, "/api/tasks/"+created.ID, nil)
	missing := bobEnv.do(t, http.MethodGet, "/api/tasks/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, foreign.Code)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.JSONEq(t, missing.Body.String(), foreign.Body.String(),
		"a foreign-owned task must be indistinguishable from a nonexistent one")
}

func TestUpdateTask(t *testing.T) {
	alice := seedUser("alice@example.com")
	env := newTaskTestEnv(alice.Email, newFakeUserRepo(alice), newFakeTaskRepo())

	created := decodeTask(t, env.do(t, http.MethodPost, "/api/tasks", gin.H{"title": "Draft", "description": "v1"}))

	t.Run("without status preserves status", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/tasks/"+created.ID, gin.H{"title": "Final", "description": "v2"})
		require.Equal(t, http.StatusOK, w.Code)
		got := decodeTask(t, w)
		assert.Equal(t, "Final", got.Title)
		assert.Equal(t, "v2", got.Description)
		assert.Equal(t, entity.StatusPending, got.Status)
	})

	t.Run("with status applies it and bumps updatedAt", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/tasks/"+created.ID, gin.H{"title": "Final", "status": "COMPLETED"})
		require.Equal(t, http.StatusOK, w.Code)
		got := decodeTask(t, w)
		assert.Equal(t, entity.StatusCompleted, got.Status)
		assert.True(t, got.UpdatedAt.After(got.CreatedAt))
	})

	t.Run("missing title rejected", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/tasks/"+created.ID, gin.H{"description": "only"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/tasks/"+created.ID, gin.H{"title": "x", "status": "ARCHIVED"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/tasks/"+uuid.NewString(), gin.H{"title": "x"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPatchTaskStatus(t *testing.T) {
	alice := seedUser("alice@example.com")
	env := newTaskTestEnv(alice.Email, newFakeUserRepo(alice), newFakeTaskRepo())

	created := decodeTask(t, env.do(t, http.MethodPost, "/api/tasks", gin.H{"title": "Toggle me"}))

	w := env.do(t, http.MethodPatch, "/api/tasks/"+created.ID, gin.H{"status": "COMPLETED"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entity.StatusCompleted, decodeTask(t, w).Status)

	// The transition is reversible.
	w = env.do(t, http.MethodPatch, "/api/tasks/"+created.ID, gin.H{"status": "PENDING"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entity.StatusPending, decodeTask(t, w).Status)
}

func TestPatchTaskInvalidStatus(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"unknown value", gin.H{"status": "ARCHIVED"}},
		{"lowercase value", gin.H{"status": "pending"}},
		{"absent status", gin.H{}},
		{"empty status", gin.H{"status": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alice := seedUser("alice@example.com")
			env := newTaskTestEnv(alice.Email, newFakeUserRepo(alice), newFakeTaskRepo())
			created := decodeTask(t, env.do(t, http.MethodPost, "/api/tasks", gin.H{"title": "Keep me pending"}))

			w := env.do(t, http.MethodPatch, "/api/tasks/"+created.ID, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "Valid status is required")

			got := decodeTask(t, env.do(t, http.MethodGet, "/api/tasks/"+created.ID, nil))
			assert.Equal(t, entity.StatusPending, got.Status, "status must be unchanged after a rejected patch")
		})
	}
}

func TestDeleteTask(t *testing.T) {
	alice := seedUser("alice@example.com")
	env := newTaskTestEnv(alice.Email, newFakeUserRepo(alice), newFakeTaskRepo())

	created := decodeTask(t, env.do(t, http.MethodPost, "/api/tasks", gin.H{"title": "Doomed"}))

	w := env.do(t, http.MethodDelete, "/api/tasks/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Task deleted successfully"}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/api/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteForeignTaskLeavesRow(t *testing.T) {
	alice := seedUser("alice@example.com")
	bob := seedUser("bob@example.com")
	users := newFakeUserRepo(alice, bob)
	tasks := newFakeTaskRepo()

	aliceEnv := newTaskTestEnv(alice.Email, users, tasks)
	created := decodeTask(t, aliceEnv.do(t, http.MethodPost, "/api/tasks", gin.H{"title": "Mine"}))

	bobEnv := newTaskTestEnv(bob.Email, users, tasks)
	w := bobEnv.do(t, http.MethodDelete, "/api/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = aliceEnv.do(t, http.MethodGet, "/api/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code, "the owner must still see the task")
}

func TestListTasksOrdering(t *testing.T) {
	alice := seedUser("alice@example.com")
	env := newTaskTestEnv(alice.Email, newFakeUserRepo(alice), newFakeTaskRepo())

	for _, title := range []string{"T1", "T2", "T3"} {
		require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/tasks", gin.H{"title": title}).Code)
	}

	w := env.do(t, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tasks []entity.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	require.Len(t, tasks, 3)
	assert.Equal(t, "T3", tasks[0].Title)
	assert.Equal(t, "T2", tasks[1].Title)
	assert.Equal(t, "T1", tasks[2].Title)
}

func TestListTasksScopedToOwner(t *testing.T) {
	alice := seedUser("alice@example.com")
	bob := seedUser("bob@example.com")
	users := newFakeUserRepo(alice, bob)
	tasks := newFakeTaskRepo()

	aliceEnv := newTaskTestEnv(alice.Email, users, tasks)
	aliceEnv.do(t, http.MethodPost, "/api/tasks", gin.H{"title": "Alice's"})

	bobEnv := newTaskTestEnv(bob.Email, users, tasks)
	w := bobEnv.do(t, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestUnauthenticatedRequestsRejectedBeforeStore(t *testing.T) {
	tasks := newFakeTaskRepo()
	env := newTaskTestEnv("", newFakeUserRepo(), tasks)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodGet, "/api/tasks/" + uuid.NewString()},
		{http.MethodPut, "/api/tasks/" + uuid.NewString()},
		{http.MethodPatch, "/api/tasks/" + uuid.NewString()},
		{http.MethodDelete, "/api/tasks/" + uuid.NewString()},
	}
	for _, rt := range routes {
		w := env.do(t, rt.method, rt.path, gin.H{"title": "x", "status": "PENDING"})
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", rt.method, rt.path)
	}
	assert.Zero(t, tasks.calls, "the store must never be touched on unauthenticated requests")
}

func TestUnknownSessionUserIsOpaque404(t *testing.T) {
	env := newTaskTestEnv("ghost@example.com", newFakeUserRepo(), newFakeTaskRepo())

	w := env.do(t, http.MethodGet, "/api/tasks", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, w.Body.String())
}

func TestStoreFailureIsOpaque500(t *testing.T) {
	alice := seedUser("alice@example.com")
	tasks := newFakeTaskRepo()
	tasks.fail = errors.New("connection refused: pg://10.0.0.3:5432")
	env := newTaskTestEnv(alice.Email, newFakeUserRepo(alice), tasks)

	w := env.do(t, http.MethodGet, "/api/tasks", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String(),
		"driver detail must never leak into the response body")
}

func TestMalformedTaskIDIs404(t *testing.T) {
	alice := seedUser("alice@example.com")
	env := newTaskTestEnv(alice.Email, newFakeUserRepo(alice), newFakeTaskRepo())

	w := env.do(t, http.MethodGet, "/api/tasks/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Task not found"}`, w.Body.String())
}
