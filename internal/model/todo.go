package model

import "time"

// MaxTodoTextLength bounds the text of a todo, in characters.
const MaxTodoTextLength = 1024

// Todo is a task owned by exactly one user.
type Todo struct {
	ID          string
	Text        string
	Completed   bool
	CompletedAt *time.Time
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TodoPatch lists the fields a client may change. Nil means "leave as is".
type TodoPatch struct {
	Text      *string
	Completed *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TodoPatch) IsEmpty() bool {
	return p.Text == nil && p.Completed == nil
}

// Apply mutates t according to p.
//
// Becoming completed stamps CompletedAt with now; becoming (or staying)
// incomplete clears it. Completing an already completed todo keeps the
// original timestamp.
func (t *Todo) Apply(p TodoPatch, now time.Time) {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Completed != nil {
		switch {
		case *p.Completed && !t.Completed:
			ts := now
			t.CompletedAt = &ts
		case !*p.Completed:
			t.CompletedAt = nil
		}
		t.Completed = *p.Completed
	}
	if !p.IsEmpty() {
		t.UpdatedAt = now
	}
}
