package backend

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// database/sql driver names registered by this package
const (
	DriverSQLite3  = "sqlite3"  // github.com/mattn/go-sqlite3 (cgo)
	DriverSQLite   = "sqlite"   // modernc.org/sqlite (pure Go)
	DriverPgx      = "pgx"      // github.com/jackc/pgx/v5/stdlib
	DriverPostgres = "postgres" // github.com/lib/pq
)

// DefaultTable is the table examples are stored in
const DefaultTable = "example_data_mapping"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLBackend stores examples in a single (key, value) table with a
// uniqueness constraint on the pair. The same statements work on SQLite
// and PostgreSQL.
type SQLBackend struct {
	db        *sql.DB
	tableName string
	ownsDB    bool
}

// SQLConfig holds SQL backend configuration
type SQLConfig struct {
	// DB is the database connection
	DB *sql.DB

	// TableName is the name of the examples table
	TableName string
}

// DefaultSQLConfig returns the default SQL configuration for db
func DefaultSQLConfig(db *sql.DB) *SQLConfig {
	return &SQLConfig{
		DB:        db,
		TableName: DefaultTable,
	}
}

// NewSQLBackend creates a backend over an existing connection. The table is
// created here, once, rather than on first use.
func NewSQLBackend(config *SQLConfig) (*SQLBackend, error) {
	if config == nil || config.DB == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	tableName := config.TableName
	if tableName == "" {
		tableName = DefaultTable
	}
	if !tableNamePattern.MatchString(tableName) {
		return nil, fmt.Errorf("invalid table name %q", tableName)
	}

	b := &SQLBackend{
		db:        config.DB,
		tableName: tableName,
	}
	if err := b.createTable(); err != nil {
		return nil, fmt.Errorf("failed to create %s table: %w", tableName, err)
	}
	return b, nil
}

// OpenSQL opens a connection with the given driver and data source and
// creates a backend that closes the connection on Close
func OpenSQL(driver, dataSource, tableName string) (*SQLBackend, error) {
	db, err := sql.Open(driver, dataSource)
	if err != nil {
		return nil, fmt.Errorf("open %s %q: %w", driver, dataSource, err)
	}

	// Each SQLite connection to ":memory:" is its own database, and SQLite
	// allows one writer at a time anyway.
	if driver == DriverSQLite3 || driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	b, err := NewSQLBackend(&SQLConfig{DB: db, TableName: tableName})
	if err != nil {
		db.Close()
		return nil, err
	}
	b.ownsDB = true
	return b, nil
}

func (b *SQLBackend) createTable() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			UNIQUE (key, value)
		)
	`, b.tableName)

	_, err := b.db.Exec(query)
	return err
}

// Save inserts the pair, ignoring it if already present
func (b *SQLBackend) Save(ctx context.Context, key, value string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (key, value)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, b.tableName)

	if _, err := b.db.ExecContext(ctx, query, key, value); err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("database insert error: %w", err)
	}
	return nil
}

// Fetch returns the values stored under key
func (b *SQLBackend) Fetch(ctx context.Context, key string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT value FROM %s
		WHERE key = $1
	`, b.tableName)

	rows, err := b.db.QueryContext(ctx, query, key)
	if err != nil {
		return nil, fmt.Errorf("database query error: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan value: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating values: %w", err)
	}
	return values, nil
}

// TableName returns the table examples are stored in
func (b *SQLBackend) TableName() string {
	return b.tableName
}

// Close closes the connection if the backend opened it
func (b *SQLBackend) Close() error {
	if b.ownsDB {
		return b.db.Close()
	}
	return nil
}
