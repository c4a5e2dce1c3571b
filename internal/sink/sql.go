package sink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/spider/internal/model"
)

// Dialect names a supported SQL backend.
type Dialect string

const (
	// DialectSQLite stores rows in a local SQLite file.
	DialectSQLite Dialect = "sqlite"

	// DialectPostgres stores rows in PostgreSQL.
	DialectPostgres Dialect = "postgres"
)

// DefaultTable is used when neither the tag nor the options name a table.
const DefaultTable = "data"

// SQLOptions configures an SQL sink.
type SQLOptions struct {
	// Dialect selects the driver.
	Dialect Dialect

	// DSN is the database file path for SQLite or the connection URL for PostgreSQL.
	DSN string

	// Table is the default table.
	Table string

	// CreateTable creates a missing table with one TEXT column per header.
	CreateTable bool

	// Logger receives diagnostics.
	Logger *slog.Logger
}

// SQL inserts matrix rows into a relational table.
//
// Design decision: All rows of one matrix go into one transaction. A list
// page is either fully recorded or not at all, which keeps the engine's
// "save failed, do not mark seen" rule meaningful for SQL backends.
type SQL struct {
	db      *sql.DB
	dialect Dialect
	table   string
	create  bool
	logger  *slog.Logger
}

// NewSQL opens the database and verifies the connection.
func NewSQL(ctx context.Context, opts SQLOptions) (*SQL, error) {
	if opts.DSN == "" {
		return nil, errors.New("database DSN is required")
	}
	if opts.Table == "" {
		opts.Table = DefaultTable
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	var (
		db  *sql.DB
		err error
	)
	switch opts.Dialect {
	case DialectSQLite:
		db, err = openSQLite(ctx, opts.DSN)
	case DialectPostgres:
		db, err = sql.Open("postgres", opts.DSN)
		if err == nil {
			err = db.PingContext(ctx)
		}
	default:
		return nil, fmt.Errorf("unsupported SQL dialect %q", opts.Dialect)
	}
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("failed to open %s database: %w", opts.Dialect, err)
	}

	return &SQL{
		db:      db,
		dialect: opts.Dialect,
		table:   opts.Table,
		create:  opts.CreateTable,
		logger:  opts.Logger,
	}, nil
}

// openSQLite opens path, creating the file and its directory.
func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, err
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return db, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	return db, nil
}

// Save implements Sink. Any failure rolls the whole matrix back.
func (s *SQL) Save(ctx context.Context, matrix model.Matrix, tag string) (err error) {
	if err := checkMatrix(matrix); err != nil {
		return err
	}

	table := s.table
	if tag != "" {
		table = tag
	}
	header := matrix.Header()

	if s.create {
		if _, err := s.db.ExecContext(ctx, createTableSQL(table, header)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Warn("rollback failed", "table", table, "error", rbErr)
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertSQL(s.dialect, table, header))
	if err != nil {
		return fmt.Errorf("failed to prepare insert into %s: %w", table, err)
	}
	defer stmt.Close()

	for i, record := range matrix.Records() {
		args := make([]any, len(header))
		for j := range header {
			if j < len(record) {
				args[j] = record[j]
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row %d into %s: %w", i+1, table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", table, err)
	}
	return nil
}

// Close closes the database.
func (s *SQL) Close() error {
	return s.db.Close()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func createTableSQL(table string, header []string) string {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = quoteIdent(h) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(table), strings.Join(cols, ", "))
}

func insertSQL(dialect Dialect, table string, header []string) string {
	cols := make([]string, len(header))
	marks := make([]string, len(header))
	for i, h := range header {
		cols[i] = quoteIdent(h)
		if dialect == DialectPostgres {
			marks[i] = "$" + strconv.Itoa(i+1)
		} else {
			marks[i] = "?"
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(cols, ", "), strings.Join(marks, ", "))
}
