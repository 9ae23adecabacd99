package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// duckDB publishes into a DuckDB database file.
type duckDB struct {
	target Target
	db     *sql.DB
}

func newDuckDB(target Target) *duckDB {
	return &duckDB{target: target}
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (d *duckDB) Connect(ctx context.Context) error {
	path := d.target.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	d.db = db
	return nil
}

// LoadCSV loads a CSV artifact into a table. DuckDB infers the schema from
// the file, so numeric panel columns arrive typed.
func (d *duckDB) LoadCSV(ctx context.Context, tableName string, filePath string) error {
	if d.db == nil {
		return fmt.Errorf("database connection not established")
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	query := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto('%s', header=true)",
		sanitizeIdentifier(tableName),
		absPath,
	)

	if _, err := d.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to load CSV: %w", err)
	}
	return nil
}

// Close closes the DuckDB connection.
func (d *duckDB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
