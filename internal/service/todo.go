package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tickbox/tickbox/internal/metrics"
	"github.com/tickbox/tickbox/internal/model"
	"github.com/tickbox/tickbox/internal/repository"
)

// TodoRepository is the persistence the todo service needs.
// Every lookup is scoped by owner.
type TodoRepository interface {
	CreateTodo(ctx context.Context, todo *model.Todo) error
	ListTodosByOwner(ctx context.Context, ownerID string) ([]*model.Todo, error)
	GetTodoForOwner(ctx context.Context, id, ownerID string) (*model.Todo, error)
	DeleteTodoForOwner(ctx context.Context, id, ownerID string) (*model.Todo, error)
	UpdateTodoForOwner(ctx context.Context, id, ownerID string, patch model.TodoPatch, now time.Time) (*model.Todo, error)
}

// todoText is validated after trimming.
type todoText struct {
	Text string `json:"text" validate:"required,max=1024,storable"`
}

// TodoService handles todo business logic.
type TodoService struct {
	repo    TodoRepository
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewTodoService creates a new TodoService.
func NewTodoService(repo TodoRepository, recorder metrics.Recorder, logger *slog.Logger) *TodoService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TodoService{repo: repo, metrics: recorder, logger: logger, now: time.Now}
}

// Create stores a new open todo for ownerID.
func (s *TodoService) Create(ctx context.Context, ownerID, text string) (*model.Todo, error) {
	text, err := cleanText(text)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	todo := &model.Todo{
		ID:        ulid.Make().String(),
		OwnerID:   ownerID,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateTodo(ctx, todo); err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}

	s.metrics.IncTodoCreated()
	return todo, nil
}

// List returns every todo owned by ownerID.
func (s *TodoService) List(ctx context.Context, ownerID string) ([]*model.Todo, error) {
	todos, err := s.repo.ListTodosByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

// Get returns the todo if ownerID owns it.
func (s *TodoService) Get(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	if !validID(id) {
		return nil, ErrTodoNotFound
	}
	todo, err := s.repo.GetTodoForOwner(ctx, id, ownerID)
	if err != nil {
		return nil, mapTodoErr("get todo", err)
	}
	return todo, nil
}

// Delete removes the todo and returns its last state.
func (s *TodoService) Delete(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	if !validID(id) {
		return nil, ErrTodoNotFound
	}
	todo, err := s.repo.DeleteTodoForOwner(ctx, id, ownerID)
	if err != nil {
		return nil, mapTodoErr("delete todo", err)
	}

	s.metrics.IncTodoDeleted()
	return todo, nil
}

// Update applies patch to the todo. Text is trimmed and validated like on create.
func (s *TodoService) Update(ctx context.Context, id, ownerID string, patch model.TodoPatch) (*model.Todo, error) {
	if !validID(id) {
		return nil, ErrTodoNotFound
	}
	if patch.Text != nil {
		text, err := cleanText(*patch.Text)
		if err != nil {
			return nil, err
		}
		patch.Text = &text
	}

	todo, err := s.repo.UpdateTodoForOwner(ctx, id, ownerID, patch, s.now().UTC())
	if err != nil {
		return nil, mapTodoErr("update todo", err)
	}

	s.metrics.IncTodoUpdated()
	return todo, nil
}

func cleanText(text string) (string, error) {
	in := todoText{Text: strings.TrimSpace(text)}
	if err := validateInput(in); err != nil {
		return "", err
	}
	return in.Text, nil
}

// validID rejects syntactically impossible ids before they reach the store.
func validID(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}

func mapTodoErr(op string, err error) error {
	if errors.Is(err, repository.ErrTodoNotFound) {
		return ErrTodoNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
