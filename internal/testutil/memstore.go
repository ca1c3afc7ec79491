package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tickbox/tickbox/internal/model"
	"github.com/tickbox/tickbox/internal/repository"
)

// MemStore is an in-memory stand-in for repository.Repository.
// It returns the same sentinel errors and hands out copies so callers
// cannot mutate stored state.
type MemStore struct {
	mu    sync.Mutex
	users map[string]*model.User
	todos map[string]*model.Todo
	seq   int64
	order map[string]int64
}

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		users: make(map[string]*model.User),
		todos: make(map[string]*model.Todo),
		order: make(map[string]int64),
	}
}

// Ping always succeeds.
func (m *MemStore) Ping(ctx context.Context) error { return nil }

func (m *MemStore) CreateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	m.users[user.ID] = copyUser(user)
	return nil
}

func (m *MemStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (m *MemStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *MemStore) FindUserByToken(ctx context.Context, userID, access, token string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok || !u.HasToken(access, token) {
		return nil, repository.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (m *MemStore) AddUserToken(ctx context.Context, userID string, token model.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Tokens = append(u.Tokens, token)
	return nil
}

func (m *MemStore) RemoveUserToken(ctx context.Context, userID, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return false, nil
	}
	return u.RemoveToken(token), nil
}

// DeleteUser removes the user and cascades to its todos.
func (m *MemStore) DeleteUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	for tid, t := range m.todos {
		if t.OwnerID == id {
			delete(m.todos, tid)
			delete(m.order, tid)
		}
	}
	return nil
}

func (m *MemStore) CreateTodo(ctx context.Context, todo *model.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[todo.OwnerID]; !ok {
		return repository.ErrUserNotFound
	}
	m.seq++
	m.todos[todo.ID] = copyTodo(todo)
	m.order[todo.ID] = m.seq
	return nil
}

func (m *MemStore) ListTodosByOwner(ctx context.Context, ownerID string) ([]*model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	todos := make([]*model.Todo, 0)
	for _, t := range m.todos {
		if t.OwnerID == ownerID {
			todos = append(todos, copyTodo(t))
		}
	}
	sort.Slice(todos, func(i, j int) bool {
		return m.order[todos[i].ID] > m.order[todos[j].ID]
	})
	return todos, nil
}

func (m *MemStore) GetTodoForOwner(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.todos[id]
	if !ok || t.OwnerID != ownerID {
		return nil, repository.ErrTodoNotFound
	}
	return copyTodo(t), nil
}

func (m *MemStore) DeleteTodoForOwner(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.todos[id]
	if !ok || t.OwnerID != ownerID {
		return nil, repository.ErrTodoNotFound
	}
	delete(m.todos, id)
	delete(m.order, id)
	return t, nil
}

func (m *MemStore) UpdateTodoForOwner(ctx context.Context, id, ownerID string, patch model.TodoPatch, now time.Time) (*model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.todos[id]
	if !ok || t.OwnerID != ownerID {
		return nil, repository.ErrTodoNotFound
	}
	t.Apply(patch, now)
	return copyTodo(t), nil
}

// TodoCount returns how many todos are stored in total.
func (m *MemStore) TodoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.todos)
}

func copyUser(u *model.User) *model.User {
	c := *u
	c.Tokens = append([]model.Token(nil), u.Tokens...)
	return &c
}

func copyTodo(t *model.Todo) *model.Todo {
	c := *t
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}
