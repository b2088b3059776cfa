package domain

import "github.com/samber/lo"

// ChatState is the conversation owned by a single in-flight request.
// Pipeline stages mutate it in place.
type ChatState struct {
	Messages []ChatMessage
}

// NewChatState copies messages so the caller's slice is never aliased.
func NewChatState(messages []ChatMessage) *ChatState {
	return &ChatState{Messages: append(make([]ChatMessage, 0, len(messages)), messages...)}
}

// LastUserMessage returns the most recent message with the user role.
func (s *ChatState) LastUserMessage() (ChatMessage, bool) {
	msg, _, ok := lo.FindLastIndexOf(s.Messages, func(m ChatMessage) bool {
		return m.Role == RoleUser
	})
	return msg, ok
}

func (s *ChatState) Append(role Role, content string) {
	s.Messages = append(s.Messages, ChatMessage{Role: role, Content: content})
}
