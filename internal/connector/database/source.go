package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Rrens/workspace-insights/internal/domain"
)

const (
	collaborator = "relational_db"

	// SampleLimit is the number of rows rendered into a fetched table document
	SampleLimit = 20
)

// Source implements domain.Source for relational_db bindings
type Source struct {
	factories map[string]AdapterFactory
	mu        sync.RWMutex
}

var _ domain.Source = (*Source)(nil)

// NewSource creates a database source with no engines registered
func NewSource() *Source {
	return &Source{factories: make(map[string]AdapterFactory)}
}

// RegisterAdapter registers an adapter factory for an engine
func (s *Source) RegisterAdapter(engine string, factory AdapterFactory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factories[engine] = factory
}

// SupportedEngines returns the registered engines, sorted
func (s *Source) SupportedEngines() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	engines := make([]string, 0, len(s.factories))
	for engine := range s.factories {
		engines = append(engines, engine)
	}
	sort.Strings(engines)
	return engines
}

// Type returns the binding type served
func (s *Source) Type() domain.BindingType {
	return domain.BindingRelationalDB
}

// Check connects and pings the database
func (s *Source) Check(ctx context.Context, cfg domain.BindingConfig) error {
	return s.with(ctx, cfg, func(a Adapter) error {
		if err := a.HealthCheck(ctx); err != nil {
			return upstream(fmt.Errorf("health check failed: %w", err))
		}
		return nil
	})
}

// List returns the database's tables as items
func (s *Source) List(ctx context.Context, cfg domain.BindingConfig, limit int) ([]domain.SourceItem, error) {
	items := []domain.SourceItem{}
	err := s.with(ctx, cfg, func(a Adapter) error {
		tables, err := a.ListTables(ctx)
		if err != nil {
			return upstream(err)
		}
		for _, table := range tables {
			if limit > 0 && len(items) >= limit {
				break
			}
			items = append(items, domain.SourceItem{ExternalID: table, Name: table, Kind: "table"})
		}
		return nil
	})
	return items, err
}

// Fetch renders one table's schema and sample rows as text
func (s *Source) Fetch(ctx context.Context, cfg domain.BindingConfig, externalID string) (*domain.SourceDocument, error) {
	var doc *domain.SourceDocument
	err := s.with(ctx, cfg, func(a Adapter) error {
		var (
			info      *TableInfo
			sample    *Sample
			sampleErr error
		)

		// a missing table is reported by DescribeTable, so sampling errors wait for it
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			info, err = a.DescribeTable(gctx, externalID)
			return err
		})
		g.Go(func() error {
			sample, sampleErr = a.SampleRows(gctx, externalID, SampleLimit)
			return nil
		})
		if err := g.Wait(); err != nil {
			return upstream(err)
		}
		if info == nil {
			return fmt.Errorf("table %q: %w", externalID, domain.ErrNotFound)
		}
		if sampleErr != nil {
			return upstream(sampleErr)
		}

		metadata := map[string]any{
			"engine":  a.Engine(),
			"columns": len(info.Columns),
			"sampled": len(sample.Rows),
		}
		if info.RowCount != nil {
			metadata["row_count"] = *info.RowCount
		}

		doc = &domain.SourceDocument{
			SourceItem: domain.SourceItem{ExternalID: externalID, Name: externalID, Kind: "table"},
			Content:    Render(info, sample),
			Metadata:   metadata,
		}
		return nil
	})
	return doc, err
}

func (s *Source) with(ctx context.Context, cfg domain.BindingConfig, fn func(Adapter) error) error {
	dbCfg, ok := cfg.(domain.RelationalDBConfig)
	if !ok {
		return domain.NewValidationError("config", "relational_db binding requires a database config")
	}

	s.mu.RLock()
	factory, ok := s.factories[dbCfg.Engine]
	s.mu.RUnlock()
	if !ok {
		return domain.NewValidationError("engine", fmt.Sprintf("unsupported database engine: %s", dbCfg.Engine))
	}

	adapter := factory()
	if err := adapter.Connect(ctx, dbCfg); err != nil {
		return upstream(fmt.Errorf("failed to connect: %w", err))
	}
	defer adapter.Close()

	return fn(adapter)
}

func upstream(err error) error {
	if domain.IsValidation(err) {
		return err
	}
	var ce *domain.CollaboratorError
	if errors.As(err, &ce) {
		return err
	}
	return domain.NewCollaboratorError(collaborator, domain.CodeUpstreamError, err)
}
