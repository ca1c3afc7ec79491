package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tickbox/tickbox/internal/model"
)

// ErrTodoNotFound covers both missing todos and todos owned by someone else.
var ErrTodoNotFound = errors.New("todo not found")

const todoColumns = `id, owner_id, text, completed, completed_at, created_at, updated_at`

// CreateTodo inserts a new todo.
func (r *Repository) CreateTodo(ctx context.Context, todo *model.Todo) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO todos (id, owner_id, text, completed, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		todo.ID,
		todo.OwnerID,
		todo.Text,
		todo.Completed,
		todo.CompletedAt,
		todo.CreatedAt,
		todo.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create todo: %w", err)
	}
	return nil
}

// ListTodosByOwner returns every todo owned by ownerID, newest first.
func (r *Repository) ListTodosByOwner(ctx context.Context, ownerID string) ([]*model.Todo, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+todoColumns+`
		FROM todos
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]*model.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}

	return todos, nil
}

// GetTodoForOwner returns the todo only when ownerID owns it.
func (r *Repository) GetTodoForOwner(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	todo, err := scanTodo(r.pool.QueryRow(ctx, `
		SELECT `+todoColumns+`
		FROM todos
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID))
	if err != nil {
		return nil, wrapTodoErr("get todo", err)
	}
	return todo, nil
}

// DeleteTodoForOwner removes the todo and returns it as it was.
func (r *Repository) DeleteTodoForOwner(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	todo, err := scanTodo(r.pool.QueryRow(ctx, `
		DELETE FROM todos
		WHERE id = $1 AND owner_id = $2
		RETURNING `+todoColumns, id, ownerID))
	if err != nil {
		return nil, wrapTodoErr("delete todo", err)
	}
	return todo, nil
}

// UpdateTodoForOwner applies patch under a row lock and returns the result.
func (r *Repository) UpdateTodoForOwner(ctx context.Context, id, ownerID string, patch model.TodoPatch, now time.Time) (*model.Todo, error) {
	var updated *model.Todo

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		todo, err := scanTodo(tx.QueryRow(ctx, `
			SELECT `+todoColumns+`
			FROM todos
			WHERE id = $1 AND owner_id = $2
			FOR UPDATE
		`, id, ownerID))
		if err != nil {
			return err
		}

		todo.Apply(patch, now)

		updated, err = scanTodo(tx.QueryRow(ctx, `
			UPDATE todos
			SET text = $3, completed = $4, completed_at = $5, updated_at = $6
			WHERE id = $1 AND owner_id = $2
			RETURNING `+todoColumns,
			todo.ID, todo.OwnerID, todo.Text, todo.Completed, todo.CompletedAt, todo.UpdatedAt,
		))
		return err
	})
	if err != nil {
		return nil, wrapTodoErr("update todo", err)
	}

	return updated, nil
}

func scanTodo(row pgx.Row) (*model.Todo, error) {
	var todo model.Todo
	err := row.Scan(
		&todo.ID,
		&todo.OwnerID,
		&todo.Text,
		&todo.Completed,
		&todo.CompletedAt,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func wrapTodoErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrTodoNotFound
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
