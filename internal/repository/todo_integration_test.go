//go:build integration

package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tickbox/tickbox/internal/model"
	"github.com/tickbox/tickbox/internal/repository"
	"github.com/tickbox/tickbox/internal/testutil"
)

// ============================================================================
// Todo Repository Integration Tests
// ============================================================================

func TestIntegrationTodoRepository_CreateGetList(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := createUser(t, ctx, repo)

	first := testutil.NewTestTodo(t, owner.ID, "First test todo")
	second := testutil.NewTestTodo(t, owner.ID, "Second test todo")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	for _, todo := range []*model.Todo{first, second} {
		if err := repo.CreateTodo(ctx, todo); err != nil {
			t.Fatalf("CreateTodo failed: %v", err)
		}
	}

	got, err := repo.GetTodoForOwner(ctx, first.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetTodoForOwner failed: %v", err)
	}
	if got.Text != "First test todo" || got.Completed || got.CompletedAt != nil {
		t.Errorf("unexpected todo: %+v", got)
	}

	list, err := repo.ListTodosByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListTodosByOwner failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Errorf("expected newest first, got %+v", list)
	}
}

func TestIntegrationTodoRepository_OwnerIsolation(t *testing.T) {
	ctx, repo := newTestEnv(t)
	alice := createUser(t, ctx, repo)
	bob := createUser(t, ctx, repo)

	todo := testutil.NewTestTodo(t, alice.ID, "private")
	if err := repo.CreateTodo(ctx, todo); err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}

	if _, err := repo.GetTodoForOwner(ctx, todo.ID, bob.ID); !errors.Is(err, repository.ErrTodoNotFound) {
		t.Errorf("get by non-owner: expected ErrTodoNotFound, got %v", err)
	}
	if _, err := repo.DeleteTodoForOwner(ctx, todo.ID, bob.ID); !errors.Is(err, repository.ErrTodoNotFound) {
		t.Errorf("delete by non-owner: expected ErrTodoNotFound, got %v", err)
	}
	text := "hijacked"
	if _, err := repo.UpdateTodoForOwner(ctx, todo.ID, bob.ID, model.TodoPatch{Text: &text}, time.Now()); !errors.Is(err, repository.ErrTodoNotFound) {
		t.Errorf("update by non-owner: expected ErrTodoNotFound, got %v", err)
	}

	list, err := repo.ListTodosByOwner(ctx, bob.ID)
	if err != nil {
		t.Fatalf("ListTodosByOwner failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("bob should see no todos, got %d", len(list))
	}

	got, err := repo.GetTodoForOwner(ctx, todo.ID, alice.ID)
	if err != nil || got.Text != "private" {
		t.Errorf("todo must be unchanged for its owner: %+v, %v", got, err)
	}
}

func TestIntegrationTodoRepository_UpdateCompletion(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := createUser(t, ctx, repo)

	todo := testutil.NewTestTodo(t, owner.ID, "finish me")
	if err := repo.CreateTodo(ctx, todo); err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}

	done := true
	now := time.Now().UTC().Truncate(time.Microsecond)
	updated, err := repo.UpdateTodoForOwner(ctx, todo.ID, owner.ID, model.TodoPatch{Completed: &done}, now)
	if err != nil {
		t.Fatalf("UpdateTodoForOwner failed: %v", err)
	}
	if !updated.Completed || updated.CompletedAt == nil || !updated.CompletedAt.Equal(now) {
		t.Errorf("expected completed at %v, got %+v", now, updated)
	}

	undo := false
	updated, err = repo.UpdateTodoForOwner(ctx, todo.ID, owner.ID, model.TodoPatch{Completed: &undo}, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("UpdateTodoForOwner failed: %v", err)
	}
	if updated.Completed || updated.CompletedAt != nil {
		t.Errorf("expected completion cleared, got %+v", updated)
	}
}

func TestIntegrationTodoRepository_Delete(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := createUser(t, ctx, repo)

	todo := testutil.NewTestTodo(t, owner.ID, "delete me")
	if err := repo.CreateTodo(ctx, todo); err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}

	deleted, err := repo.DeleteTodoForOwner(ctx, todo.ID, owner.ID)
	if err != nil {
		t.Fatalf("DeleteTodoForOwner failed: %v", err)
	}
	if deleted.ID != todo.ID {
		t.Errorf("deleted ID = %s, want %s", deleted.ID, todo.ID)
	}

	if _, err := repo.GetTodoForOwner(ctx, todo.ID, owner.ID); !errors.Is(err, repository.ErrTodoNotFound) {
		t.Errorf("expected ErrTodoNotFound after delete, got %v", err)
	}
	if _, err := repo.DeleteTodoForOwner(ctx, todo.ID, owner.ID); !errors.Is(err, repository.ErrTodoNotFound) {
		t.Errorf("second delete: expected ErrTodoNotFound, got %v", err)
	}
}

func createUser(t *testing.T, ctx context.Context, repo *repository.Repository) *model.User {
	t.Helper()
	user := testutil.NewTestUser(t)
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}
