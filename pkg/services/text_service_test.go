package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskvich/webchat-backend/pkg/domain"
)

type fakeCompleter struct {
	reply string
	err   error
	got   [][]domain.ChatMessage
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, messages []domain.ChatMessage) (string, error) {
	f.got = append(f.got, messages)
	return f.reply, f.err
}

func conversation(n int) []domain.ChatMessage {
	msgs := make([]domain.ChatMessage, n)
	for i := range msgs {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		msgs[i] = domain.ChatMessage{Role: role, Content: fmt.Sprintf("m%d", i)}
	}
	return msgs
}

func TestBuildPromptWindow(t *testing.T) {
	t.Run("short history keeps prompt", func(t *testing.T) {
		got := BuildPromptWindow(conversation(3), "sys")
		require.Len(t, got, 4)
		assert.Equal(t, domain.ChatMessage{Role: domain.RoleSystem, Content: "sys"}, got[0])
		assert.Equal(t, "m2", got[3].Content)
	})

	t.Run("fifteen messages keep last twelve of prompt plus history", func(t *testing.T) {
		history := conversation(15)
		got := BuildPromptWindow(history, "sys")

		full := append([]domain.ChatMessage{{Role: domain.RoleSystem, Content: "sys"}}, history...)
		assert.Equal(t, full[len(full)-12:], got)
		assert.Equal(t, "m3", got[0].Content)
	})

	t.Run("exactly eleven history messages fill the window", func(t *testing.T) {
		got := BuildPromptWindow(conversation(11), "sys")
		require.Len(t, got, 12)
		assert.Equal(t, domain.RoleSystem, got[0].Role)
	})

	t.Run("leading assistant messages dropped", func(t *testing.T) {
		history := []domain.ChatMessage{
			{Role: domain.RoleAssistant, Content: "a1"},
			{Role: domain.RoleAssistant, Content: "a2"},
			{Role: domain.RoleUser, Content: "u"},
			{Role: domain.RoleAssistant, Content: "a3"},
		}
		got := BuildPromptWindow(history, "sys")
		assert.Equal(t, []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: "sys"},
			{Role: domain.RoleUser, Content: "u"},
			{Role: domain.RoleAssistant, Content: "a3"},
		}, got)
		assert.Len(t, history, 4, "input must not be modified")
	})

	t.Run("only assistant messages", func(t *testing.T) {
		got := BuildPromptWindow([]domain.ChatMessage{{Role: domain.RoleAssistant, Content: "a"}}, "sys")
		assert.Equal(t, []domain.ChatMessage{{Role: domain.RoleSystem, Content: "sys"}}, got)
	})
}

func TestTextService_AppendsReply(t *testing.T) {
	completer := &fakeCompleter{reply: "réponse"}
	state := domain.NewChatState([]domain.ChatMessage{
		{Role: domain.RoleAssistant, Content: "stray"},
		{Role: domain.RoleUser, Content: "q"},
		{Role: domain.RoleSystem, Content: "[WEB] ..."},
	})

	require.NoError(t, NewTextService(completer, "sys").Run(context.Background(), state))

	require.Len(t, completer.got, 1)
	assert.Equal(t, []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: "sys"},
		{Role: domain.RoleUser, Content: "q"},
		{Role: domain.RoleSystem, Content: "[WEB] ..."},
	}, completer.got[0])

	require.Len(t, state.Messages, 4)
	assert.Equal(t, domain.ChatMessage{Role: domain.RoleAssistant, Content: "stray"}, state.Messages[0], "state keeps leading assistant turns")
	assert.Equal(t, domain.ChatMessage{Role: domain.RoleAssistant, Content: "réponse"}, state.Messages[3])
}

func TestTextService_PropagatesError(t *testing.T) {
	boom := errors.New("provider down")
	state := domain.NewChatState([]domain.ChatMessage{{Role: domain.RoleUser, Content: "q"}})

	err := NewTextService(&fakeCompleter{err: boom}, "sys").Run(context.Background(), state)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, state.Messages, 1)
}
