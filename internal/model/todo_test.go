package model

import (
	"testing"
	"time"
)

func boolPtr(b bool) *bool           { return &b }
func strPtr(s string) *string        { return &s }
func timePtr(t time.Time) *time.Time { return &t }

func TestTodo_Apply_Completion(t *testing.T) {
	t.Parallel()

	earlier := time.Date(2024, 1, 1, 0, 0, 0, 333_000_000, time.UTC)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		start         Todo
		patch         TodoPatch
		wantCompleted bool
		wantAt        *time.Time
	}{
		{
			name:          "false to true stamps now",
			start:         Todo{},
			patch:         TodoPatch{Completed: boolPtr(true)},
			wantCompleted: true,
			wantAt:        timePtr(now),
		},
		{
			name:          "true to false clears",
			start:         Todo{Completed: true, CompletedAt: timePtr(earlier)},
			patch:         TodoPatch{Completed: boolPtr(false)},
			wantCompleted: false,
			wantAt:        nil,
		},
		{
			name:          "true to true keeps original stamp",
			start:         Todo{Completed: true, CompletedAt: timePtr(earlier)},
			patch:         TodoPatch{Completed: boolPtr(true)},
			wantCompleted: true,
			wantAt:        timePtr(earlier),
		},
		{
			name:          "false to false stays cleared",
			start:         Todo{},
			patch:         TodoPatch{Completed: boolPtr(false)},
			wantCompleted: false,
			wantAt:        nil,
		},
		{
			name:          "text only leaves completion alone",
			start:         Todo{Completed: true, CompletedAt: timePtr(earlier)},
			patch:         TodoPatch{Text: strPtr("renamed")},
			wantCompleted: true,
			wantAt:        timePtr(earlier),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			todo := tt.start
			todo.Apply(tt.patch, now)

			if todo.Completed != tt.wantCompleted {
				t.Errorf("Completed = %v, want %v", todo.Completed, tt.wantCompleted)
			}
			switch {
			case tt.wantAt == nil && todo.CompletedAt != nil:
				t.Errorf("CompletedAt = %v, want nil", *todo.CompletedAt)
			case tt.wantAt != nil && todo.CompletedAt == nil:
				t.Errorf("CompletedAt = nil, want %v", *tt.wantAt)
			case tt.wantAt != nil && !todo.CompletedAt.Equal(*tt.wantAt):
				t.Errorf("CompletedAt = %v, want %v", *todo.CompletedAt, *tt.wantAt)
			}
			if !todo.UpdatedAt.Equal(now) {
				t.Errorf("UpdatedAt = %v, want %v", todo.UpdatedAt, now)
			}
		})
	}
}

func TestTodo_Apply_Text(t *testing.T) {
	t.Parallel()

	todo := Todo{Text: "First test todo"}
	todo.Apply(TodoPatch{Text: strPtr("Updated text")}, time.Now())

	if todo.Text != "Updated text" {
		t.Errorf("Text = %q, want %q", todo.Text, "Updated text")
	}
}

func TestTodo_Apply_EmptyPatch(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	todo := Todo{Text: "keep", UpdatedAt: created}
	todo.Apply(TodoPatch{}, time.Now())

	if todo.Text != "keep" || !todo.UpdatedAt.Equal(created) {
		t.Error("empty patch must not modify the todo")
	}
}
