package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatState_LastUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		messages []ChatMessage
		want     string
		wantOK   bool
	}{
		{"empty", nil, "", false},
		{"no user", []ChatMessage{{Role: RoleAssistant, Content: "hi"}, {Role: RoleSystem, Content: "s"}}, "", false},
		{"single", []ChatMessage{{Role: RoleUser, Content: "q"}}, "q", true},
		{"latest wins", []ChatMessage{
			{Role: RoleUser, Content: "first"},
			{Role: RoleAssistant, Content: "a"},
			{Role: RoleUser, Content: "second"},
			{Role: RoleSystem, Content: "[WEB] ..."},
		}, "second", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := NewChatState(tt.messages).LastUserMessage()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, msg.Content)
		})
	}
}

func TestNewChatState_CopiesMessages(t *testing.T) {
	in := []ChatMessage{{Role: RoleUser, Content: "q"}}
	state := NewChatState(in)
	state.Append(RoleSystem, "ctx")
	state.Messages[0].Content = "changed"

	assert.Len(t, in, 1)
	assert.Equal(t, "q", in[0].Content)
}

func TestSearchHit_Link(t *testing.T) {
	assert.Equal(t, "h", SearchHit{Href: "h", URL: "u"}.Link("none"))
	assert.Equal(t, "u", SearchHit{URL: "u"}.Link("none"))
	assert.Equal(t, "none", SearchHit{}.Link("none"))
}

func TestLocaleByName(t *testing.T) {
	l, err := LocaleByName("fr")
	assert.NoError(t, err)
	assert.Equal(t, "(lien indisponible)", l.LinkUnavailable)

	_, err = LocaleByName("de")
	assert.Error(t, err)
}
