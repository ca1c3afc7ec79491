// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/tickbox/tickbox/internal/model"
)

// CreateTodoRequest represents the request body for creating a todo.
type CreateTodoRequest struct {
	Text string `json:"text"`
}

// UpdateTodoRequest represents the request body for updating a todo.
// Absent fields are left unchanged.
type UpdateTodoRequest struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Patch converts the request into a model patch.
func (r UpdateTodoRequest) Patch() model.TodoPatch {
	return model.TodoPatch{Text: r.Text, Completed: r.Completed}
}

// TodoResponse represents a todo in API responses.
type TodoResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	// CompletedAt is in unix milliseconds and only present on completed todos.
	CompletedAt *int64    `json:"completed_at,omitempty"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TodoEnvelope wraps a single todo.
type TodoEnvelope struct {
	Todo *TodoResponse `json:"todo"`
}

// TodoListResponse wraps every todo of the caller.
type TodoListResponse struct {
	Todos []TodoResponse `json:"todos"`
}

// ToTodoResponse converts a Todo model to TodoResponse DTO.
func ToTodoResponse(todo *model.Todo) *TodoResponse {
	resp := &TodoResponse{
		ID:        todo.ID,
		Text:      todo.Text,
		Completed: todo.Completed,
		OwnerID:   todo.OwnerID,
		CreatedAt: todo.CreatedAt,
		UpdatedAt: todo.UpdatedAt,
	}
	if todo.CompletedAt != nil {
		ms := todo.CompletedAt.UnixMilli()
		resp.CompletedAt = &ms
	}
	return resp
}

// ToTodoListResponse converts a slice of Todo models. The result is never
// nil so an empty list encodes as [].
func ToTodoListResponse(todos []*model.Todo) *TodoListResponse {
	out := make([]TodoResponse, len(todos))
	for i, t := range todos {
		out[i] = *ToTodoResponse(t)
	}
	return &TodoListResponse{Todos: out}
}
