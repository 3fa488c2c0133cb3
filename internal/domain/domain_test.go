package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeConfig(t *testing.T) {
	base := map[string]any{"a": 1}
	merged := MergeConfig(base, map[string]any{"b": 2})

	assert.Equal(t, map[string]any{"a": 1, "b": 2}, merged)
	assert.Equal(t, map[string]any{"a": 1}, base, "base must not be mutated")

	merged = MergeConfig(merged, map[string]any{"a": "x"})
	assert.Equal(t, map[string]any{"a": "x", "b": 2}, merged)

	assert.Empty(t, MergeConfig(nil, nil))
}

func TestDecodeBindingConfig(t *testing.T) {
	t.Run("issue tracker", func(t *testing.T) {
		cfg, err := DecodeBindingConfig(BindingIssueTracker, json.RawMessage(`{"board_id":"b1","board_name":"Sprint 12","token":"secret"}`))
		require.NoError(t, err)

		tracker, ok := cfg.(IssueTrackerConfig)
		require.True(t, ok)
		assert.Equal(t, "Sprint 12", tracker.DisplayName())
		assert.Equal(t, "board", tracker.DisplayField())
		assert.Equal(t, "secret", tracker.Token)
	})

	t.Run("empty config", func(t *testing.T) {
		cfg, err := DecodeBindingConfig(BindingWiki, nil)
		require.NoError(t, err)
		assert.Equal(t, WikiConfig{}, cfg)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := DecodeBindingConfig("ftp", json.RawMessage(`{}`))
		assert.True(t, IsValidation(err))
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := DecodeBindingConfig(BindingDrive, json.RawMessage(`[1,2]`))
		assert.True(t, IsValidation(err))
	})

	t.Run("relational db requires engine", func(t *testing.T) {
		_, err := DecodeBindingConfig(BindingRelationalDB, json.RawMessage(`{"host":"db"}`))
		require.Error(t, err)

		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "engine", ve.Field)
	})

	t.Run("wiki base url must be a url", func(t *testing.T) {
		_, err := DecodeBindingConfig(BindingWiki, json.RawMessage(`{"base_url":"not a url"}`))
		assert.True(t, IsValidation(err))
	})
}

func TestSourceBindingJSONRedactsSecrets(t *testing.T) {
	binding := SourceBinding{
		ID:     uuid.New(),
		Type:   BindingMailbox,
		Name:   "Inbox",
		Status: StatusConnected,
		Config: MailboxConfig{AccessToken: "ya29.token", Address: "me@example.com"},
	}

	data, err := json.Marshal(binding)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "ya29.token")
	assert.Contains(t, string(data), "me@example.com")
	assert.NotContains(t, string(data), "SealedConfig")
}

func TestWorkspaceOwnershipJSON(t *testing.T) {
	owner := uuid.New()

	owned := Workspace{ID: uuid.New(), Name: "Q3", Owner: OwnedBy{UserID: owner}}
	data, err := json.Marshal(owned)
	require.NoError(t, err)
	assert.Contains(t, string(data), owner.String())

	var decoded Workspace
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, OwnedBy{UserID: owner}, decoded.Owner)

	public := Workspace{ID: uuid.New(), Name: "Shared", Owner: PublicOwnership{}}
	data, err = json.Marshal(public)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"owner_user_id":null`)
}

func TestCollaboratorError(t *testing.T) {
	cause := errors.New("403 insufficientPermissions")
	err := NewCollaboratorError("gmail", CodeInsufficientScope, cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "gmail: 403 insufficientPermissions", err.Error())
	assert.Equal(t, CodeInsufficientScope, CodeForStatus(403))
	assert.Equal(t, CodeUnauthorized, CodeForStatus(401))
	assert.Equal(t, CodeRateLimited, CodeForStatus(429))
	assert.Equal(t, CodeUpstreamError, CodeForStatus(500))
}
