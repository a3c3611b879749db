package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zizouhuweidi/trivia/internal/database"
	"github.com/zizouhuweidi/trivia/internal/repository/postgres/migrations"
)

// Migrate applies the embedded migrations that have not run yet, each in its own transaction
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	list, err := database.LoadMigrations(migrations.FS)
	if err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+database.MigrationTable+` (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, m := range list {
		if err := applyMigration(ctx, pool, m); err != nil {
			return err
		}
	}

	return nil
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, m database.Migration) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration transaction %s: %w", m.Name, err)
	}
	defer tx.Rollback(ctx)

	var found int
	err = tx.QueryRow(ctx, `SELECT 1 FROM `+database.MigrationTable+` WHERE name = $1`, m.Name).Scan(&found)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check migration %s: %w", m.Name, err)
	}

	if _, err := tx.Exec(ctx, m.Up); err != nil {
		return fmt.Errorf("exec migration %s: %w", m.Name, err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO `+database.MigrationTable+` (name) VALUES ($1)`, m.Name); err != nil {
		return fmt.Errorf("record migration %s: %w", m.Name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration %s: %w", m.Name, err)
	}
	return nil
}
