package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tasktrack/tasktrack-go/internal/model"
)

// MemoryStore keeps users and tasks in process memory. It backs local
// development runs without MySQL and the HTTP tests.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]model.User
	tasks map[string]model.Task
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]model.User),
		tasks: make(map[string]model.Task),
	}
}

// Users returns a view of the store satisfying the user repository methods.
func (m *MemoryStore) Users() *MemoryUsers { return &MemoryUsers{m} }

// Tasks returns a view of the store satisfying the task repository methods.
func (m *MemoryStore) Tasks() *MemoryTasks { return &MemoryTasks{m} }

// MemoryUsers is the user half of a MemoryStore.
type MemoryUsers struct{ m *MemoryStore }

func (u *MemoryUsers) Create(_ context.Context, user *model.User) error {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()

	for _, existing := range u.m.users {
		if existing.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	u.m.users[user.ID] = *user
	return nil
}

func (u *MemoryUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	u.m.mu.RLock()
	defer u.m.mu.RUnlock()

	user, ok := u.m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (u *MemoryUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u.m.mu.RLock()
	defer u.m.mu.RUnlock()

	for _, user := range u.m.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

// MemoryTasks is the task half of a MemoryStore.
type MemoryTasks struct{ m *MemoryStore }

func (t *MemoryTasks) Create(_ context.Context, task *model.Task) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = task.CreatedAt
	}
	t.m.tasks[task.ID] = *task
	return nil
}

func (t *MemoryTasks) GetByID(_ context.Context, id string) (*model.Task, error) {
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()

	task, ok := t.m.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return &task, nil
}

func (t *MemoryTasks) ListByUser(_ context.Context, userID string) ([]model.Task, error) {
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()

	tasks := []model.Task{}
	for _, task := range t.m.tasks {
		if task.UserID == userID {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (t *MemoryTasks) Update(_ context.Context, task *model.Task) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	if _, ok := t.m.tasks[task.ID]; !ok {
		return ErrTaskNotFound
	}
	task.UpdatedAt = time.Now().UTC()
	t.m.tasks[task.ID] = *task
	return nil
}

func (t *MemoryTasks) Delete(_ context.Context, id string) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	if _, ok := t.m.tasks[id]; !ok {
		return ErrTaskNotFound
	}
	delete(t.m.tasks, id)
	return nil
}
