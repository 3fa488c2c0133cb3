package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/Rrens/workspace-insights/internal/connector/database"
	"github.com/Rrens/workspace-insights/internal/domain"
)

// Adapter implements database.Adapter for SQLite files, opened read-only
type Adapter struct {
	db *sql.DB
}

// NewAdapter creates a new SQLite adapter
func NewAdapter() database.Adapter {
	return &Adapter{}
}

// Engine returns the engine identifier
func (a *Adapter) Engine() string {
	return "sqlite"
}

// Connect opens the database file
func (a *Adapter) Connect(ctx context.Context, cfg domain.RelationalDBConfig) error {
	dbPath := cfg.Path
	if dbPath == "" {
		dbPath = cfg.Database
	}
	if dbPath == "" {
		return domain.NewValidationError("path", "database file path is required")
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = db
	return nil
}

// Close closes the connection
func (a *Adapter) Close() error {
	if a.db != nil {
		err := a.db.Close()
		a.db = nil
		return err
	}
	return nil
}

// HealthCheck verifies connection is alive
func (a *Adapter) HealthCheck(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("not connected")
	}
	var one int
	return a.db.QueryRowContext(ctx, "SELECT 1 FROM sqlite_master LIMIT 1").Scan(&one)
}

// ListTables returns list of table names
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

// DescribeTable returns detailed table schema
func (a *Adapter) DescribeTable(ctx context.Context, table string) (*database.TableInfo, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT cid, name, type, "notnull", dflt_value, pk FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to describe table: %w", err)
	}

	var columns []database.ColumnInfo
	for rows.Next() {
		var cid int
		var name, dataType string
		var notNull, pk int
		var dfltValue sql.NullString

		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dfltValue, &pk); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}

		columns = append(columns, database.ColumnInfo{
			Name:       name,
			DataType:   dataType,
			Nullable:   notNull == 0 && pk == 0,
			PrimaryKey: pk > 0,
		})
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to describe table: %w", err)
	}

	if len(columns) == 0 {
		return nil, nil
	}

	var rowCount int64
	err = a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(table)).Scan(&rowCount)

	var rowCountPtr *int64
	if err == nil {
		rowCountPtr = &rowCount
	}

	return &database.TableInfo{
		Name:     table,
		Columns:  columns,
		RowCount: rowCountPtr,
	}, nil
}

// SampleRows returns up to limit rows of a table
func (a *Adapter) SampleRows(ctx context.Context, table string, limit int) (*database.Sample, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", quoteIdent(table), limit)

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to sample rows: %w", err)
	}
	defer rows.Close()

	return database.ScanSample(rows)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
