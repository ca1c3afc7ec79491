package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tickbox/tickbox/internal/auth"
	"github.com/tickbox/tickbox/internal/handler/dto"
	"github.com/tickbox/tickbox/internal/service"
)

// TodoHandler handles HTTP requests for todo operations. Every route sits
// behind the auth middleware, so the caller is always in the context.
type TodoHandler struct {
	svc    *service.TodoService
	logger *slog.Logger
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(svc *service.TodoService, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{svc: svc, logger: logger}
}

// Create handles POST /todos.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTodoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	owner := auth.MustSessionFromContext(r.Context()).User
	todo, err := h.svc.Create(r.Context(), owner.ID, req.Text)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("todo_created",
		"todo_id", todo.ID,
		"owner_id", owner.ID,
	)

	writeJSON(w, http.StatusOK, dto.ToTodoResponse(todo))
}

// List handles GET /todos.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	owner := auth.MustSessionFromContext(r.Context()).User
	todos, err := h.svc.List(r.Context(), owner.ID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTodoListResponse(todos))
}

// Get handles GET /todos/{id}.
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner := auth.MustSessionFromContext(r.Context()).User
	todo, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), owner.ID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TodoEnvelope{Todo: dto.ToTodoResponse(todo)})
}

// Delete handles DELETE /todos/{id}. The body carries the removed todo.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner := auth.MustSessionFromContext(r.Context()).User
	todo, err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), owner.ID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("todo_deleted", "todo_id", todo.ID, "owner_id", owner.ID)

	writeJSON(w, http.StatusOK, dto.TodoEnvelope{Todo: dto.ToTodoResponse(todo)})
}

// Update handles PATCH /todos/{id}.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateTodoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	owner := auth.MustSessionFromContext(r.Context()).User
	todo, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), owner.ID, req.Patch())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("todo_updated",
		"todo_id", todo.ID,
		"completed", todo.Completed,
	)

	writeJSON(w, http.StatusOK, dto.TodoEnvelope{Todo: dto.ToTodoResponse(todo)})
}
