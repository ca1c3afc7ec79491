package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPgErrorClassification(t *testing.T) {
	t.Parallel()

	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}
	other := errors.New("duplicate key value violates unique constraint")

	if !isUniqueViolation(unique) {
		t.Error("wrapped 23505 should be a unique violation")
	}
	if isUniqueViolation(fk) || !isForeignKeyViolation(fk) {
		t.Error("23503 should only be a foreign key violation")
	}
	if isUniqueViolation(other) {
		t.Error("plain errors must not be classified by message text")
	}
	if isUniqueViolation(nil) {
		t.Error("nil is not a violation")
	}
}

func TestWrapErrors(t *testing.T) {
	t.Parallel()

	if err := wrapUserErr("get", pgx.ErrNoRows); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("no rows should map to ErrUserNotFound, got %v", err)
	}
	if err := wrapTodoErr("get", pgx.ErrNoRows); !errors.Is(err, ErrTodoNotFound) {
		t.Errorf("no rows should map to ErrTodoNotFound, got %v", err)
	}

	boom := errors.New("boom")
	if err := wrapTodoErr("get", boom); !errors.Is(err, boom) || errors.Is(err, ErrTodoNotFound) {
		t.Errorf("other errors should be wrapped untouched, got %v", err)
	}
}
