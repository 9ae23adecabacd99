// Package warehouse publishes gold artifacts into an analytical database.
// Two backends are supported: DuckDB for local analysis and PostgreSQL for
// shared deployments.
package warehouse

import (
	"context"
	"fmt"
	"strings"
)

// Target describes the destination database for published panels.
type Target struct {
	Driver   string            `koanf:"driver"` // "duckdb" or "postgres"
	Path     string            `koanf:"path"`   // duckdb file path, ":memory:" allowed
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	Database string            `koanf:"database"`
	Username string            `koanf:"username"`
	Password string            `koanf:"password"`
	Options  map[string]string `koanf:"options"`
}

// Publisher loads CSV artifacts into warehouse tables.
type Publisher interface {
	// Connect establishes the database connection.
	Connect(ctx context.Context) error

	// LoadCSV creates or replaces tableName from the CSV file at filePath.
	LoadCSV(ctx context.Context, tableName string, filePath string) error

	// Close releases the connection.
	Close() error
}

// New returns the publisher for the target's driver.
func New(target Target) (Publisher, error) {
	switch strings.ToLower(target.Driver) {
	case "duckdb":
		return newDuckDB(target), nil
	case "postgres", "postgresql":
		return newPostgres(target), nil
	default:
		return nil, fmt.Errorf("unsupported warehouse driver: %s", target.Driver)
	}
}

// TableName derives a warehouse table name from a gold artifact file name,
// e.g. "2025q1_financials.csv" becomes "financials_2025q1" and
// "financials_panel.csv" stays "financials_panel".
func TableName(fileName string) string {
	name := strings.TrimSuffix(fileName, ".csv")
	if yq, ok := strings.CutSuffix(name, "_financials"); ok {
		return "financials_" + yq
	}
	return name
}
