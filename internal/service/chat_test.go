package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/workspace-insights/internal/domain"
)

func TestChatService_Chat(t *testing.T) {
	f := newFixture(t)
	ws := f.workspace(t, f.alice, "Launch")
	b := f.binding(t, f.alice, ws.ID, domain.BindingIssueTracker, trelloConfig)
	f.artifact(t, f.alice, b.ID, "card", "Ship v2 on Monday")

	history := []domain.ChatTurn{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}}
	f.text.On("Chat", mock.Anything, "When do we ship?", mock.MatchedBy(func(ctx string) bool {
		return strings.Contains(ctx, "Workspace: Launch") &&
			strings.Contains(ctx, "- issue_tracker: issue_tracker binding (board: Roadmap)") &&
			strings.Contains(ctx, "Ship v2 on Monday") &&
			!strings.Contains(ctx, "secret-token")
	}), history).Return("Monday.", nil).Once()

	reply, err := f.svc.Chat.Chat(f.ctx, f.alice, ws.ID, domain.ChatRequest{Message: "When do we ship?", History: history})
	require.NoError(t, err)
	assert.Equal(t, "Monday.", reply.Reply)

	f.text.AssertExpectations(t)
}

func TestChatService_Errors(t *testing.T) {
	f := newFixture(t)
	ws := f.workspace(t, f.alice, "Launch")

	_, err := f.svc.Chat.Chat(f.ctx, f.alice, ws.ID, domain.ChatRequest{})
	assert.True(t, domain.IsValidation(err))

	_, err = f.svc.Chat.Chat(f.ctx, f.bob, ws.ID, domain.ChatRequest{Message: "hi"})
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	upstream := domain.NewCollaboratorError("llm", domain.CodeNotConfigured, errors.New("no provider"))
	f.text.On("Chat", mock.Anything, "hi", mock.Anything, mock.Anything).Return("", upstream).Once()

	_, err = f.svc.Chat.Chat(f.ctx, f.alice, ws.ID, domain.ChatRequest{Message: "hi"})
	assert.Same(t, upstream, err)
}
