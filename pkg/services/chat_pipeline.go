package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dskvich/webchat-backend/pkg/domain"
)

type Stage interface {
	Name() string
	Run(ctx context.Context, state *domain.ChatState) error
}

// chatPipeline runs its stages in order over one state. The first failing stage stops it.
type chatPipeline struct {
	stages []Stage
}

func NewChatPipeline(stages ...Stage) *chatPipeline {
	return &chatPipeline{stages: stages}
}

func (p *chatPipeline) Run(ctx context.Context, state *domain.ChatState) error {
	for _, s := range p.stages {
		slog.InfoContext(ctx, "Node start", "node", s.Name())

		if err := s.Run(ctx, state); err != nil {
			return fmt.Errorf("node %s: %w", s.Name(), err)
		}

		slog.InfoContext(ctx, "Node end", "node", s.Name(), "messagesCount", len(state.Messages))
	}
	return nil
}
