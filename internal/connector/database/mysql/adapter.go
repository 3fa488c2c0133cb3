package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/Rrens/workspace-insights/internal/connector/database"
	"github.com/Rrens/workspace-insights/internal/domain"
)

// Adapter implements database.Adapter for MySQL
type Adapter struct {
	db       *sql.DB
	database string
}

// NewAdapter creates a new MySQL adapter
func NewAdapter() database.Adapter {
	return &Adapter{}
}

// Engine returns the engine identifier
func (a *Adapter) Engine() string {
	return "mysql"
}

// DSN builds the driver connection string for cfg
func DSN(cfg domain.RelationalDBConfig) string {
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, port)
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Timeout = 10 * time.Second

	if cfg.SSLMode == "require" || cfg.SSLMode == "verify-full" || cfg.SSLMode == "verify-ca" {
		mc.TLSConfig = "true"
	}

	return mc.FormatDSN()
}

// Connect establishes connection to MySQL
func (a *Adapter) Connect(ctx context.Context, cfg domain.RelationalDBConfig) error {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}

	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping: %w", err)
	}

	a.db = db
	a.database = cfg.Database
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
	return a.db.PingContext(ctx)
}

// ListTables returns list of table names
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ?
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`, a.database)
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
	rows, err := a.db.QueryContext(ctx, `
		SELECT
			column_name,
			column_type,
			is_nullable = 'YES',
			column_key = 'PRI'
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`, a.database, table)
	if err != nil {
		return nil, fmt.Errorf("failed to describe table: %w", err)
	}
	defer rows.Close()

	var columns []database.ColumnInfo
	for rows.Next() {
		var col database.ColumnInfo
		if err := rows.Scan(&col.Name, &col.DataType, &col.Nullable, &col.PrimaryKey); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to describe table: %w", err)
	}

	if len(columns) == 0 {
		return nil, nil
	}

	// Row count estimate
	var rowCount sql.NullInt64
	err = a.db.QueryRowContext(ctx, `
		SELECT table_rows
		FROM information_schema.tables
		WHERE table_schema = ? AND table_name = ?
	`, a.database, table).Scan(&rowCount)

	var rowCountPtr *int64
	if err == nil && rowCount.Valid {
		rowCountPtr = &rowCount.Int64
	}

	return &database.TableInfo{
		Name:       table,
		SchemaName: a.database,
		Columns:    columns,
		RowCount:   rowCountPtr,
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
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
