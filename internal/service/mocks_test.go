package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/repository/sqlstore"
	"github.com/Rrens/workspace-insights/internal/security"
)

// MockTextGenerator mocks domain.TextGenerator
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Summarize(ctx context.Context, text, kind string) (string, error) {
	args := m.Called(ctx, text, kind)
	return args.String(0), args.Error(1)
}

func (m *MockTextGenerator) Chat(ctx context.Context, message, context string, history []domain.ChatTurn) (string, error) {
	args := m.Called(ctx, message, context, history)
	return args.String(0), args.Error(1)
}

// MockSource mocks domain.Source
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Type() domain.BindingType {
	return domain.BindingIssueTracker
}

func (m *MockSource) Check(ctx context.Context, cfg domain.BindingConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockSource) List(ctx context.Context, cfg domain.BindingConfig, limit int) ([]domain.SourceItem, error) {
	args := m.Called(ctx, cfg, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SourceItem), args.Error(1)
}

func (m *MockSource) Fetch(ctx context.Context, cfg domain.BindingConfig, externalID string) (*domain.SourceDocument, error) {
	args := m.Called(ctx, cfg, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SourceDocument), args.Error(1)
}

// MockMailbox mocks domain.Mailbox
type MockMailbox struct {
	mock.Mock
}

func (m *MockMailbox) RecentMessages(ctx context.Context, cfg domain.BindingConfig, limit int) ([]domain.MailMessage, error) {
	args := m.Called(ctx, cfg, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MailMessage), args.Error(1)
}

// MockIdentityProvider mocks domain.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) AuthCodeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockIdentityProvider) Exchange(ctx context.Context, code string) (*domain.ExternalIdentity, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExternalIdentity), args.Error(1)
}

// MockListingCache mocks ListingCache
type MockListingCache struct {
	mock.Mock
}

func (m *MockListingCache) Get(ctx context.Context, bindingID uuid.UUID) ([]domain.SourceItem, error) {
	args := m.Called(ctx, bindingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SourceItem), args.Error(1)
}

func (m *MockListingCache) Set(ctx context.Context, bindingID uuid.UUID, items []domain.SourceItem) error {
	args := m.Called(ctx, bindingID, items)
	return args.Error(0)
}

func (m *MockListingCache) Invalidate(ctx context.Context, bindingID uuid.UUID) error {
	args := m.Called(ctx, bindingID)
	return args.Error(0)
}

// fakeRegistry serves one source and one mailbox for every binding type
type fakeRegistry struct {
	source  domain.Source
	mailbox domain.Mailbox
}

func (r fakeRegistry) Source(t domain.BindingType) (domain.Source, error) {
	if r.source == nil {
		return nil, domain.NewCollaboratorError(string(t), domain.CodeNotConfigured, nil)
	}
	return r.source, nil
}

func (r fakeRegistry) Mailbox(t domain.BindingType) (domain.Mailbox, error) {
	if r.mailbox == nil || t != domain.BindingMailbox {
		return nil, domain.NewValidationError("type", "binding is not a mailbox")
	}
	return r.mailbox, nil
}

type fixture struct {
	ctx      context.Context
	store    *sqlstore.Store
	svc      *Services
	text     *MockTextGenerator
	source   *MockSource
	mailbox  *MockMailbox
	identity *MockIdentityProvider
	alice    *domain.Identity
	bob      *domain.Identity
}

type fixtureOption func(*Deps)

func withCache(cache ListingCache) fixtureOption {
	return func(d *Deps) { d.Cache = cache }
}

func withLimits(limits ArtifactLimits) fixtureOption {
	return func(d *Deps) { d.Limits = limits }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := sqlstore.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate())

	encryptor, err := security.NewEncryptor([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	f := &fixture{
		ctx:      ctx,
		store:    store,
		text:     new(MockTextGenerator),
		source:   new(MockSource),
		mailbox:  new(MockMailbox),
		identity: new(MockIdentityProvider),
	}

	deps := Deps{
		Store:      store,
		Encryptor:  encryptor,
		Sources:    fakeRegistry{source: f.source, mailbox: f.mailbox},
		Text:       f.text,
		Identity:   f.identity,
		States:     security.NewStateManager("state-secret", time.Minute),
		SessionTTL: time.Hour,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	f.svc = New(deps)

	f.alice = f.user(t, "alice")
	f.bob = f.user(t, "bob")
	return f
}

func (f *fixture) user(t *testing.T, name string) *domain.Identity {
	t.Helper()
	user, err := f.store.Users().UpsertByExternalID(f.ctx, &domain.User{
		Email:       name + "@example.com",
		DisplayName: name,
		ExternalID:  "google-" + name,
	})
	require.NoError(t, err)
	return &domain.Identity{UserID: user.ID, Email: user.Email}
}

func (f *fixture) workspace(t *testing.T, owner *domain.Identity, name string) *domain.Workspace {
	t.Helper()
	ws, err := f.svc.Workspaces.Create(f.ctx, owner, domain.WorkspaceCreate{Name: name})
	require.NoError(t, err)
	return ws
}

func (f *fixture) binding(t *testing.T, owner *domain.Identity, workspaceID uuid.UUID, typ domain.BindingType, config string) *domain.SourceBinding {
	t.Helper()
	b, err := f.svc.Bindings.Create(f.ctx, owner, workspaceID, domain.BindingCreate{
		Type:   typ,
		Name:   string(typ) + " binding",
		Config: []byte(config),
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) artifact(t *testing.T, owner *domain.Identity, bindingID uuid.UUID, kind, content string) *domain.Artifact {
	t.Helper()
	a, err := f.svc.Artifacts.Create(f.ctx, owner, bindingID, domain.ArtifactCreate{
		Name:    "Notes",
		Kind:    kind,
		Content: &content,
	})
	require.NoError(t, err)
	return a
}

const trelloConfig = `{"api_key":"key-123","token":"secret-token","board_id":"b1","board_name":"Roadmap"}`
