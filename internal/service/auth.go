package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/security"
)

const defaultSessionTTL = 30 * 24 * time.Hour

// AuthService handles sign-in and session operations
type AuthService struct {
	store      domain.Store
	identity   domain.IdentityProvider
	states     *security.StateManager
	sessionTTL time.Duration
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	store domain.Store,
	identity domain.IdentityProvider,
	states *security.StateManager,
	sessionTTL time.Duration,
) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &AuthService{
		store:      store,
		identity:   identity,
		states:     states,
		sessionTTL: sessionTTL,
		now:        now,
	}
}

// BeginSignIn returns the identity provider URL to redirect the browser to
func (s *AuthService) BeginSignIn() (string, error) {
	state, err := s.states.Issue()
	if err != nil {
		return "", fmt.Errorf("failed to issue state: %w", err)
	}
	return s.identity.AuthCodeURL(state), nil
}

// CompleteSignIn verifies the state, exchanges the code, upserts the user and
// opens a new session
func (s *AuthService) CompleteSignIn(ctx context.Context, state, code string) (*domain.SignIn, error) {
	if _, err := s.states.Verify(state); err != nil {
		return nil, domain.NewValidationError("state", "invalid or expired sign-in state")
	}
	if strings.TrimSpace(code) == "" {
		return nil, domain.NewValidationError("code", "field is required")
	}

	ext, err := s.identity.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	at := s.now()
	var signIn *domain.SignIn
	err = s.store.WithTx(ctx, func(repos domain.Repositories) error {
		user, err := repos.Users().UpsertByExternalID(ctx, &domain.User{
			ID:          uuid.New(),
			Email:       ext.Email,
			DisplayName: ext.DisplayName,
			AvatarURL:   ext.AvatarURL,
			ExternalID:  ext.Subject,
			CreatedAt:   at,
			UpdatedAt:   at,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert user: %w", err)
		}

		if n, err := repos.Sessions().DeleteExpired(ctx, at); err != nil {
			return fmt.Errorf("failed to delete expired sessions: %w", err)
		} else if n > 0 {
			log.Debug().Int64("count", n).Msg("deleted expired sessions")
		}

		session := &domain.Session{
			ID:        uuid.New(),
			UserID:    user.ID,
			ExpiresAt: at.Add(s.sessionTTL),
			CreatedAt: at,
		}
		if err := repos.Sessions().Create(ctx, session); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}

		signIn = &domain.SignIn{
			Token:     session.ID.String(),
			ExpiresAt: session.ExpiresAt,
			User:      user,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", signIn.User.ID.String()).Msg("user signed in")
	return signIn, nil
}

// Authenticate resolves a bearer token to the caller's identity. Malformed,
// unknown and expired tokens yield nil; expired sessions are deleted.
func (s *AuthService) Authenticate(ctx context.Context, token string) *domain.Identity {
	id, err := uuid.Parse(strings.TrimSpace(token))
	if err != nil {
		return nil
	}

	session, err := s.store.Sessions().Get(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to load session")
		return nil
	}
	if session == nil {
		return nil
	}

	if session.Expired(s.now()) {
		if err := s.store.Sessions().Delete(ctx, id); err != nil {
			log.Error().Err(err).Msg("failed to delete expired session")
		}
		return nil
	}

	user, err := s.store.Users().GetByID(ctx, session.UserID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load session user")
		return nil
	}
	if user == nil {
		return nil
	}

	return &domain.Identity{UserID: user.ID, Email: user.Email}
}

// Logout deletes the session behind a bearer token
func (s *AuthService) Logout(ctx context.Context, token string) error {
	id, err := uuid.Parse(strings.TrimSpace(token))
	if err != nil {
		return nil
	}
	if err := s.store.Sessions().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Me returns the signed-in user
func (s *AuthService) Me(ctx context.Context, identity *domain.Identity) (*domain.User, error) {
	if identity == nil {
		return nil, domain.ErrAccessDenied
	}

	user, err := s.store.Users().GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}
