package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/tickbox/tickbox/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

// selectUser loads a user row together with its ordered session tokens.
// The arrays are sent in their text form, which is what pq.Array parses.
const selectUser = `
	SELECT u.id, u.email, u.password_hash, u.created_at, u.updated_at,
	       COALESCE(array_agg(t.access ORDER BY t.seq) FILTER (WHERE t.seq IS NOT NULL), '{}')::text,
	       COALESCE(array_agg(t.token ORDER BY t.seq) FILTER (WHERE t.seq IS NOT NULL), '{}')::text
	FROM users u
	LEFT JOIN user_tokens t ON t.user_id = u.id
`

// CreateUser inserts a user and its initial tokens in one transaction.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, user.ID, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
		if err != nil {
			return err
		}

		for _, t := range user.Tokens {
			if _, err := tx.Exec(ctx, `
				INSERT INTO user_tokens (user_id, access, token, created_at)
				VALUES ($1, $2, $3, $4)
			`, user.ID, t.Access, t.Token, user.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user and its tokens by ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, selectUser+`WHERE u.id = $1 GROUP BY u.id`, id))
	if err != nil {
		return nil, wrapUserErr("get user by ID", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user and its tokens by normalized email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, selectUser+`WHERE u.email = $1 GROUP BY u.id`, email))
	if err != nil {
		return nil, wrapUserErr("get user by email", err)
	}
	return user, nil
}

// FindUserByToken returns the user only if token is still one of its live
// sessions for access. A revoked token yields ErrUserNotFound.
func (r *Repository) FindUserByToken(ctx context.Context, userID, access, token string) (*model.User, error) {
	query := selectUser + `
		WHERE u.id = $1 AND EXISTS (
			SELECT 1 FROM user_tokens x
			WHERE x.user_id = u.id AND x.access = $2 AND x.token = $3
		)
		GROUP BY u.id
	`
	user, err := scanUser(r.pool.QueryRow(ctx, query, userID, access, token))
	if err != nil {
		return nil, wrapUserErr("find user by token", err)
	}
	return user, nil
}

// AddUserToken appends a session token to the user's list.
func (r *Repository) AddUserToken(ctx context.Context, userID string, token model.Token) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_tokens (user_id, access, token, created_at)
		VALUES ($1, $2, $3, $4)
	`, userID, token.Access, token.Token, time.Now().UTC())
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to add user token: %w", err)
	}
	return nil
}

// RemoveUserToken deletes exactly one session token.
// It reports whether a row was removed; an absent token is not an error.
func (r *Repository) RemoveUserToken(ctx context.Context, userID, token string) (bool, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM user_tokens
		WHERE user_id = $1 AND token = $2
	`, userID, token)
	if err != nil {
		return false, fmt.Errorf("failed to remove user token: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// DeleteUser removes a user. Tokens and todos go with it through cascading keys.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		user     model.User
		accesses []string
		tokens   []string
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
		pq.Array(&accesses),
		pq.Array(&tokens),
	)
	if err != nil {
		return nil, err
	}
	if len(accesses) != len(tokens) {
		return nil, fmt.Errorf("token columns out of step: %d access, %d tokens", len(accesses), len(tokens))
	}

	user.Tokens = make([]model.Token, len(tokens))
	for i := range tokens {
		user.Tokens[i] = model.Token{Access: accesses[i], Token: tokens[i]}
	}
	return &user, nil
}

func wrapUserErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
