package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/Rrens/workspace-insights/internal/config"
	"github.com/Rrens/workspace-insights/internal/domain"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn binds a querier to the SQL dialect it speaks
type conn struct {
	q       querier
	dialect string
}

// rebind rewrites ? placeholders to $n for postgres
func (c conn) rebind(query string) string {
	if c.dialect != config.DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.q.ExecContext(ctx, c.rebind(query), args...)
}

func (c conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.q.QueryContext(ctx, c.rebind(query), args...)
}

func (c conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.q.QueryRowContext(ctx, c.rebind(query), args...)
}

// repositories implements domain.Repositories over one conn
type repositories struct {
	users       *UserRepository
	sessions    *SessionRepository
	workspaces  *WorkspaceRepository
	bindings    *BindingRepository
	artifacts   *ArtifactRepository
	suggestions *SuggestionRepository
	widgets     *WidgetRepository
	tasks       *TaskRepository
}

func newRepositories(c conn) *repositories {
	return &repositories{
		users:       &UserRepository{c: c},
		sessions:    &SessionRepository{c: c},
		workspaces:  &WorkspaceRepository{c: c},
		bindings:    &BindingRepository{c: c},
		artifacts:   &ArtifactRepository{c: c},
		suggestions: &SuggestionRepository{c: c},
		widgets:     &WidgetRepository{c: c},
		tasks:       &TaskRepository{c: c},
	}
}

func (r *repositories) Users() domain.UserRepository             { return r.users }
func (r *repositories) Sessions() domain.SessionRepository       { return r.sessions }
func (r *repositories) Workspaces() domain.WorkspaceRepository   { return r.workspaces }
func (r *repositories) Bindings() domain.BindingRepository       { return r.bindings }
func (r *repositories) Artifacts() domain.ArtifactRepository     { return r.artifacts }
func (r *repositories) Suggestions() domain.SuggestionRepository { return r.suggestions }
func (r *repositories) Widgets() domain.WidgetRepository         { return r.widgets }
func (r *repositories) Tasks() domain.TaskRepository             { return r.tasks }

// Store is the relational entity store
type Store struct {
	*repositories

	db      *sql.DB
	pool    *pgxpool.Pool
	dialect string
}

var _ domain.Store = (*Store)(nil)

// Open connects to the database selected by cfg.Driver
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg)
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return newStore(stdlib.OpenDBFromPool(pool), pool, config.DriverPostgres), nil
}

// OpenSQLite opens (or creates) a SQLite database at path.
// Pass ":memory:" for a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	dsn := "file::memory:?_pragma=foreign_keys(1)&_time_format=sqlite"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// one connection: sqlite is single-writer and :memory: is per-connection
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return newStore(db, nil, config.DriverSQLite), nil
}

func newStore(db *sql.DB, pool *pgxpool.Pool, dialect string) *Store {
	return &Store{
		repositories: newRepositories(conn{q: db, dialect: dialect}),
		db:           db,
		pool:         pool,
		dialect:      dialect,
	}
}

// Dialect returns the configured driver name
func (s *Store) Dialect() string {
	return s.dialect
}

// Ping verifies database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle and pool
func (s *Store) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// WithTx runs fn with repositories bound to a single transaction
func (s *Store) WithTx(ctx context.Context, fn func(domain.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(newRepositories(conn{q: tx, dialect: s.dialect})); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
