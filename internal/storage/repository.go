// Package storage keeps the ledger snapshot in a SQLite database.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"finledger/internal/core"
	"finledger/internal/record"

	_ "modernc.org/sqlite"
)

const (
	selectAll = `SELECT occurred_at, description, category, amount, type
		FROM transactions ORDER BY position, id`
	deleteAll = `DELETE FROM transactions`
	insertOne = `INSERT INTO transactions (position, occurred_at, description, category, amount, type)
		VALUES (?, ?, ?, ?, ?, ?)`
)

// SQLiteRepository stores the full ledger as ordered rows of one table.
// Every Save replaces the table content inside a single transaction.
type SQLiteRepository struct {
	db    *sql.DB
	codec record.Codec
}

// NewSQLiteRepository opens (or creates) the database at dbPath and runs
// pending migrations.
func NewSQLiteRepository(dbPath string, codec record.Codec) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, codec: codec}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load reads every row in insertion order. Rows are decoded with the same
// rules as the CSV file, so corrupted rows are dropped rather than failing.
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.Transaction, []record.Drop, error) {
	rows, err := r.db.QueryContext(ctx, selectAll)
	if err != nil {
		return nil, nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	table := [][]string{record.Header()}
	for rows.Next() {
		var date, desc, cat, amount, typ string
		if err := rows.Scan(&date, &desc, &cat, &amount, &typ); err != nil {
			return nil, nil, fmt.Errorf("scan transaction: %w", err)
		}
		table = append(table, []string{date, desc, cat, amount, typ})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate transactions: %w", err)
	}

	txs, drops := r.codec.DecodeTable(table)
	return txs, drops, nil
}

// Save replaces the table content with txs.
func (r *SQLiteRepository) Save(ctx context.Context, txs []core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteAll); err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertOne)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range txs {
		row := r.codec.Encode(t)
		if _, err := stmt.ExecContext(ctx, i, row[0], row[1], row[2], row[3], row[4]); err != nil {
			return fmt.Errorf("insert transaction %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
