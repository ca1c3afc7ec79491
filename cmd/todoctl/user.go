package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tickbox/tickbox/internal/auth"
	"github.com/tickbox/tickbox/internal/config"
	"github.com/tickbox/tickbox/internal/model"
	"github.com/tickbox/tickbox/internal/repository"
	"github.com/tickbox/tickbox/internal/service"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user and print a session token for it",
	Long: `Create a user and print a session token for it.

The token is signed with TOKEN_SECRET, so it is only accepted by servers
sharing that secret. It is printed once and never stored in clear
anywhere else.

TOKEN_TTL and the ARGON2_* variables are read the same way the API server
reads them. The matching flags override them.`,
	Args: cobra.NoArgs,
	RunE: runUserCreate,
}

var (
	userCreateEmail    string
	userCreatePassword string
	userCreateSecret   string
	userCreateFormat   string
	userCreateSessions sessionFlags
)

func init() {
	flags := userCreateCmd.Flags()
	flags.StringVar(&userCreateEmail, "email", "", "email address of the new user")
	flags.StringVar(&userCreatePassword, "password", os.Getenv("TODOCTL_PASSWORD"), "password of the new user (default $TODOCTL_PASSWORD)")
	flags.StringVar(&userCreateSecret, "token-secret", os.Getenv("TOKEN_SECRET"), "HMAC secret used by the API server")
	flags.StringVar(&userCreateFormat, "format", "plain", "output format: plain or json")
	userCreateSessions.bind(userCreateCmd)
	_ = userCreateCmd.MarkFlagRequired("email")

	userCmd.AddCommand(userCreateCmd)
}

type createdUser struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(userCreateFormat)
	if format != "plain" && format != "json" {
		return fmt.Errorf("invalid format %q; use plain or json", userCreateFormat)
	}

	sessions, err := userCreateSessions.load(cmd)
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokenIssuer(userCreateSecret, sessions.TokenTTL)
	if err != nil {
		return fmt.Errorf("token secret: %w", err)
	}
	hasher := auth.NewHasher(sessions.HashParams())

	return withRepository(cmd, func(ctx context.Context, repo *repository.Repository) error {
		user, token, err := registerUser(ctx, repo, hasher, tokens, userCreateEmail, userCreatePassword)
		if err != nil {
			return err
		}
		return renderUser(cmd.OutOrStdout(), format, user, token)
	})
}

// sessionFlags override the env session settings the API server uses.
type sessionFlags struct {
	tokenTTL   time.Duration
	memoryKB   uint32
	iterations uint32
	threads    uint
}

func (f *sessionFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.DurationVar(&f.tokenTTL, "token-ttl", 0, "token lifetime, 0 for none (default $TOKEN_TTL)")
	flags.Uint32Var(&f.memoryKB, "argon2-memory-kb", 0, "argon2id memory in KiB (default $ARGON2_MEMORY_KB)")
	flags.Uint32Var(&f.iterations, "argon2-time", 0, "argon2id iterations (default $ARGON2_TIME)")
	flags.UintVar(&f.threads, "argon2-threads", 0, "argon2id parallelism (default $ARGON2_THREADS)")
}

// load reads the env settings and applies the flags set on cmd.
func (f *sessionFlags) load(cmd *cobra.Command) (config.Sessions, error) {
	s, err := config.LoadSessions()
	if err != nil {
		return config.Sessions{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("token-ttl") {
		s.TokenTTL = f.tokenTTL
	}
	if flags.Changed("argon2-memory-kb") {
		s.Argon2MemoryKB = f.memoryKB
	}
	if flags.Changed("argon2-time") {
		s.Argon2Time = f.iterations
	}
	if flags.Changed("argon2-threads") {
		s.Argon2Threads = f.threads
	}

	if err := s.Validate(); err != nil {
		return config.Sessions{}, fmt.Errorf("invalid session settings: %w", err)
	}
	return s, nil
}

// registerUser goes through the same validation and hashing as POST /users.
func registerUser(ctx context.Context, repo service.UserRepository, hasher *auth.Hasher, tokens *auth.TokenIssuer, email, password string) (*model.User, string, error) {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewUserService(repo, nil, hasher, tokens, nil, quiet)

	user, token, err := svc.Register(ctx, service.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}
	return user, token, nil
}

func renderUser(w io.Writer, format string, user *model.User, token string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(createdUser{UserID: user.ID, Email: user.Email, Token: token})
	}
	_, err := fmt.Fprintln(w, token)
	return err
}
