// Package database reads tables from a bound relational or document database.
package database

import (
	"context"

	"github.com/Rrens/workspace-insights/internal/domain"
)

// TableInfo contains table metadata
type TableInfo struct {
	Name       string       `json:"name"`
	SchemaName string       `json:"schema_name,omitempty"`
	Columns    []ColumnInfo `json:"columns"`
	RowCount   *int64       `json:"row_count,omitempty"`
}

// ColumnInfo contains column metadata
type ColumnInfo struct {
	Name       string `json:"name"`
	DataType   string `json:"data_type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primary_key"`
}

// Sample holds the first rows of a table
type Sample struct {
	Columns []string
	Rows    [][]any
}

// Adapter defines the interface for database engine adapters
type Adapter interface {
	// Engine returns the engine identifier (postgres, mysql, sqlite, mongodb)
	Engine() string

	// Connect establishes connection to database
	Connect(ctx context.Context, cfg domain.RelationalDBConfig) error

	// Close closes the connection
	Close() error

	// HealthCheck verifies connection is alive
	HealthCheck(ctx context.Context) error

	// ListTables returns list of table names
	ListTables(ctx context.Context) ([]string, error)

	// DescribeTable returns the table schema; nil when the table does not exist
	DescribeTable(ctx context.Context, table string) (*TableInfo, error)

	// SampleRows returns up to limit rows of a table
	SampleRows(ctx context.Context, table string, limit int) (*Sample, error)
}

// AdapterFactory creates a new adapter instance
type AdapterFactory func() Adapter
