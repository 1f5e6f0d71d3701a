package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps every owner's ledger and the credential table in one
// SQLite database. Each Save replaces the owner's rows in a single transaction.
type SQLiteStore struct {
	db      *sql.DB
	version uint
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{db: db, version: version}, nil
}

// SchemaVersion returns the migration version the database was brought to.
func (s *SQLiteStore) SchemaVersion() uint {
	return s.version
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, owner string) (core.LedgerState, error) {
	if owner == "" {
		return nil, core.ErrEmptyOwner
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, r.amount_cents, r.description
		FROM ledger_categories c
		JOIN ledger_records r ON r.owner = c.owner AND r.category = c.name
		WHERE c.owner = ?
		ORDER BY c.position, r.position`, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: query ledger: %w", core.ErrStorage, err)
	}
	defer rows.Close()

	state := core.LedgerState{}
	for rows.Next() {
		var (
			category string
			rec      core.ExpenseRecord
		)
		if err := rows.Scan(&category, &rec.Amount.Cents, &rec.Description); err != nil {
			return nil, fmt.Errorf("%w: scan ledger row: %w", core.ErrStorage, err)
		}
		if n := len(state); n > 0 && state[n-1].Category == category {
			state[n-1].Records = append(state[n-1].Records, rec)
			continue
		}
		state = append(state, core.CategoryExpenses{Category: category, Records: []core.ExpenseRecord{rec}})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read ledger rows: %w", core.ErrStorage, err)
	}
	return state, nil
}

func (s *SQLiteStore) Save(ctx context.Context, owner string, state core.LedgerState) error {
	if owner == "" {
		return core.ErrEmptyOwner
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", core.ErrStorage, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_records WHERE owner = ?`, owner); err != nil {
		return fmt.Errorf("%w: clear records: %w", core.ErrStorage, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_categories WHERE owner = ?`, owner); err != nil {
		return fmt.Errorf("%w: clear categories: %w", core.ErrStorage, err)
	}

	insertCategory, err := tx.PrepareContext(ctx, `INSERT INTO ledger_categories (owner, name, position) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare category insert: %w", core.ErrStorage, err)
	}
	defer insertCategory.Close()

	insertRecord, err := tx.PrepareContext(ctx, `INSERT INTO ledger_records (owner, category, position, amount_cents, description) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare record insert: %w", core.ErrStorage, err)
	}
	defer insertRecord.Close()

	for ci, c := range state {
		if len(c.Records) == 0 {
			continue
		}
		if _, err := insertCategory.ExecContext(ctx, owner, c.Category, ci); err != nil {
			return fmt.Errorf("%w: insert category %q: %w", core.ErrStorage, c.Category, err)
		}
		for ri, r := range c.Records {
			if _, err := insertRecord.ExecContext(ctx, owner, c.Category, ri, r.Amount.Cents, r.Description); err != nil {
				return fmt.Errorf("%w: insert record %d of %q: %w", core.ErrStorage, ri, c.Category, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", core.ErrStorage, err)
	}
	return nil
}

func (s *SQLiteStore) LoadSecrets(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT username, secret FROM users`)
	if err != nil {
		return nil, fmt.Errorf("%w: query users: %w", core.ErrStorage, err)
	}
	defer rows.Close()

	secrets := map[string]string{}
	for rows.Next() {
		var username, secret string
		if err := rows.Scan(&username, &secret); err != nil {
			return nil, fmt.Errorf("%w: scan user row: %w", core.ErrStorage, err)
		}
		secrets[username] = secret
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read user rows: %w", core.ErrStorage, err)
	}
	return secrets, nil
}

func (s *SQLiteStore) SaveSecrets(ctx context.Context, secrets map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", core.ErrStorage, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("%w: clear users: %w", core.ErrStorage, err)
	}
	for username, secret := range secrets {
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (username, secret) VALUES (?, ?)`, username, secret); err != nil {
			return fmt.Errorf("%w: insert user %q: %w", core.ErrStorage, username, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", core.ErrStorage, err)
	}
	return nil
}
