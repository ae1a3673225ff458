// internal/database/migrate.go
//
// Component migrations.  Each component hands over an ordered list of SQL
// statements; statement i is recorded as "<owner>:<i>" in
// schema_migrations and never applied twice.  Statements must therefore
// only ever be appended, never edited.

package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const createLedger = `CREATE TABLE IF NOT EXISTS schema_migrations (
	id VARCHAR(191) NOT NULL PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Migrate applies the pending statements of owner, each in its own
// transaction together with its ledger row.
func Migrate(ctx context.Context, db *sqlx.DB, owner string, stmts []string) error {
	if len(stmts) == 0 {
		return nil
	}
	if _, err := db.ExecContext(ctx, createLedger); err != nil {
		return fmt.Errorf("migrate %s: ledger: %w", owner, err)
	}

	var applied []string
	if err := db.SelectContext(ctx, &applied,
		db.Rebind(`SELECT id FROM schema_migrations WHERE id LIKE ?`), owner+":%"); err != nil {
		return fmt.Errorf("migrate %s: read ledger: %w", owner, err)
	}
	done := make(map[string]bool, len(applied))
	for _, id := range applied {
		done[id] = true
	}

	for i, stmt := range stmts {
		id := fmt.Sprintf("%s:%d", owner, i)
		if done[id] {
			continue
		}
		if err := apply(ctx, db, id, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", id, err)
		}
		zap.S().Infow("migration applied", "id", id)
	}
	return nil
}

func apply(ctx context.Context, db *sqlx.DB, id, stmt string) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO schema_migrations (id) VALUES (?)`), id); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
