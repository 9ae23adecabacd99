package warehouse

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/stdlib"
)

// postgres publishes into a PostgreSQL database using COPY FROM STDIN.
type postgres struct {
	target Target
	db     *sql.DB
}

func newPostgres(target Target) *postgres {
	return &postgres{target: target}
}

// Connect establishes a connection to PostgreSQL.
func (p *postgres) Connect(ctx context.Context) error {
	dsn := buildPostgresDSN(p.target)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	p.db = db
	return nil
}

// buildPostgresDSN constructs a PostgreSQL connection string.
func buildPostgresDSN(t Target) string {
	host := t.Host
	if host == "" {
		host = "localhost"
	}

	port := t.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if t.Options != nil {
		if mode, ok := t.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, t.Database, sslmode)

	if t.Username != "" {
		dsn += fmt.Sprintf(" user=%s", t.Username)
	}
	if t.Password != "" {
		dsn += fmt.Sprintf(" password=%s", t.Password)
	}

	return dsn
}

// LoadCSV loads a CSV artifact into a table using COPY FROM STDIN.
// All columns are created as TEXT type for robustness.
func (p *postgres) LoadCSV(ctx context.Context, tableName string, filePath string) error {
	if p.db == nil {
		return fmt.Errorf("database connection not established")
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Read CSV header to get column names
	reader := csv.NewReader(file)
	headers, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	if err := p.createTextTable(ctx, tableName, headers); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	if _, err := file.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to reset file: %w", err)
	}

	if err := p.copyFromCSV(ctx, tableName, file); err != nil {
		return fmt.Errorf("failed to copy data: %w", err)
	}

	return nil
}

// createTextTable creates or replaces a table with all TEXT columns.
func (p *postgres) createTextTable(ctx context.Context, tableName string, columns []string) error {
	safeTable := sanitizeIdentifier(tableName)

	dropSQL := fmt.Sprintf("DROP TABLE IF EXISTS %s", safeTable)
	if _, err := p.db.ExecContext(ctx, dropSQL); err != nil {
		return err
	}

	var colDefs []string
	for _, col := range columns {
		colDefs = append(colDefs, fmt.Sprintf("%s TEXT", sanitizeIdentifier(col)))
	}

	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", safeTable, strings.Join(colDefs, ", "))
	_, err := p.db.ExecContext(ctx, createSQL)
	return err
}

// copyFromCSV uses PostgreSQL COPY to load CSV data.
func (p *postgres) copyFromCSV(ctx context.Context, tableName string, file *os.File) error {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// COPY needs the raw pgx connection under database/sql.
	return conn.Raw(func(driverConn any) error {
		stdlibConn, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("connection is not a pgx connection")
		}
		pgxConn := stdlibConn.Conn()

		content, err := io.ReadAll(file)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		copySQL := fmt.Sprintf("COPY %s FROM STDIN WITH (FORMAT csv, HEADER true)", sanitizeIdentifier(tableName))
		_, err = pgxConn.PgConn().CopyFrom(ctx, strings.NewReader(string(content)), copySQL)
		return err
	})
}

// Close closes the PostgreSQL connection.
func (p *postgres) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// sanitizeIdentifier makes a table or column name safe for SQL.
func sanitizeIdentifier(name string) string {
	safe := strings.ReplaceAll(name, " ", "_")
	safe = strings.ReplaceAll(safe, "-", "_")
	if strings.ContainsAny(safe, "()[]{}") || isReservedWord(safe) {
		return fmt.Sprintf(`"%s"`, safe)
	}
	return safe
}

// isReservedWord checks if a name is a PostgreSQL reserved word.
func isReservedWord(name string) bool {
	reserved := map[string]bool{
		"user": true, "order": true, "group": true, "table": true,
		"select": true, "from": true, "where": true, "index": true,
	}
	return reserved[strings.ToLower(name)]
}
