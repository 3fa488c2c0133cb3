package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/workspace-insights/internal/domain"
)

func (f *fixture) signIn(t *testing.T) *domain.SignIn {
	t.Helper()

	var state string
	f.identity.On("AuthCodeURL", mock.Anything).Run(func(args mock.Arguments) {
		state = args.String(0)
	}).Return("https://accounts.example/auth").Once()

	url, err := f.svc.Auth.BeginSignIn()
	require.NoError(t, err)
	assert.Equal(t, "https://accounts.example/auth", url)

	f.identity.On("Exchange", mock.Anything, "code-1").Return(&domain.ExternalIdentity{
		Subject:     "google-carol",
		Email:       "carol@example.com",
		DisplayName: "Carol",
	}, nil).Once()

	signIn, err := f.svc.Auth.CompleteSignIn(f.ctx, state, "code-1")
	require.NoError(t, err)
	return signIn
}

func TestAuthService_SignInAndAuthenticate(t *testing.T) {
	f := newFixture(t)

	signIn := f.signIn(t)
	assert.Equal(t, "carol@example.com", signIn.User.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), signIn.ExpiresAt, time.Minute)

	identity := f.svc.Auth.Authenticate(f.ctx, signIn.Token)
	require.NotNil(t, identity)
	assert.Equal(t, signIn.User.ID, identity.UserID)

	me, err := f.svc.Auth.Me(f.ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, "Carol", me.DisplayName)

	require.NoError(t, f.svc.Auth.Logout(f.ctx, signIn.Token))
	assert.Nil(t, f.svc.Auth.Authenticate(f.ctx, signIn.Token))

	f.identity.AssertExpectations(t)
}

func TestAuthService_SignInAgainKeepsUser(t *testing.T) {
	f := newFixture(t)

	first := f.signIn(t)
	second := f.signIn(t)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.NotEqual(t, first.Token, second.Token)
}

func TestAuthService_Authenticate(t *testing.T) {
	f := newFixture(t)

	assert.Nil(t, f.svc.Auth.Authenticate(f.ctx, ""))
	assert.Nil(t, f.svc.Auth.Authenticate(f.ctx, "not-a-uuid"))
	assert.Nil(t, f.svc.Auth.Authenticate(f.ctx, uuid.NewString()))

	t.Run("expired session is deleted", func(t *testing.T) {
		session := &domain.Session{
			ID:        uuid.New(),
			UserID:    f.alice.UserID,
			ExpiresAt: time.Now().Add(-time.Minute),
			CreatedAt: time.Now().Add(-time.Hour),
		}
		require.NoError(t, f.store.Sessions().Create(f.ctx, session))

		assert.Nil(t, f.svc.Auth.Authenticate(f.ctx, session.ID.String()))

		stored, err := f.store.Sessions().Get(f.ctx, session.ID)
		require.NoError(t, err)
		assert.Nil(t, stored)
	})
}

func TestAuthService_CompleteSignInErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Auth.CompleteSignIn(f.ctx, "forged", "code")
	assert.True(t, domain.IsValidation(err))

	f.identity.On("AuthCodeURL", mock.Anything).Return("https://accounts.example/auth")
	url, err := f.svc.Auth.BeginSignIn()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://"))

	state, err := f.svc.Auth.states.Issue()
	require.NoError(t, err)

	_, err = f.svc.Auth.CompleteSignIn(f.ctx, state, "")
	assert.True(t, domain.IsValidation(err))

	denied := domain.NewCollaboratorError("google_identity", domain.CodeUnauthorized, errors.New("bad code"))
	f.identity.On("Exchange", mock.Anything, "bad").Return(nil, denied).Once()

	_, err = f.svc.Auth.CompleteSignIn(f.ctx, state, "bad")
	assert.Same(t, denied, err)
}
