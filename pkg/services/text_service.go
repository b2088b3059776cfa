package services

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/dskvich/webchat-backend/pkg/domain"
)

// promptWindow is the number of messages sent to the model, system prompt included.
const promptWindow = 12

type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

type textService struct {
	completer    ChatCompleter
	systemPrompt string
}

func NewTextService(completer ChatCompleter, systemPrompt string) *textService {
	return &textService{
		completer:    completer,
		systemPrompt: systemPrompt,
	}
}

func (t *textService) Name() string { return "llm" }

func (t *textService) Run(ctx context.Context, state *domain.ChatState) error {
	reply, err := t.completer.CreateChatCompletion(ctx, BuildPromptWindow(state.Messages, t.systemPrompt))
	if err != nil {
		return fmt.Errorf("generating reply: %w", err)
	}

	state.Append(domain.RoleAssistant, reply)

	return nil
}

// BuildPromptWindow drops leading assistant messages, prepends the system prompt and keeps
// the last promptWindow entries of the result. The input slice is not modified.
func BuildPromptWindow(history []domain.ChatMessage, systemPrompt string) []domain.ChatMessage {
	trimmed := lo.DropWhile(history, func(m domain.ChatMessage) bool {
		return m.Role == domain.RoleAssistant
	})

	window := make([]domain.ChatMessage, 0, len(trimmed)+1)
	window = append(window, domain.ChatMessage{Role: domain.RoleSystem, Content: systemPrompt})
	window = append(window, trimmed...)

	if len(window) > promptWindow {
		window = window[len(window)-promptWindow:]
	}
	return window
}
