// Package main implements todoctl, the operator CLI for tickbox.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/tickbox/tickbox/internal/repository"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "todoctl",
	Short:        "Operate a tickbox deployment",
	SilenceUsage: true,
}

var (
	databaseURL string
	timeout     time.Duration
)

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "overall deadline for the command")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(userCmd)
}

var errNoDatabase = errors.New("database url is required (--database-url or DATABASE_URL)")

// withRepository connects, runs fn and closes the pool.
func withRepository(cmd *cobra.Command, fn func(ctx context.Context, repo *repository.Repository) error) error {
	if databaseURL == "" {
		return errNoDatabase
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	repo, err := repository.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer repo.Close()

	return fn(ctx, repo)
}

// withDB is withRepository for goose, which needs database/sql.
func withDB(cmd *cobra.Command, fn func(ctx context.Context, db *sql.DB) error) error {
	return withRepository(cmd, func(ctx context.Context, repo *repository.Repository) error {
		db := stdlib.OpenDBFromPool(repo.Pool())
		defer db.Close()
		return fn(ctx, db)
	})
}
