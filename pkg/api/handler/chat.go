package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/dskvich/webchat-backend/pkg/api/response"
	"github.com/dskvich/webchat-backend/pkg/domain"
	"github.com/dskvich/webchat-backend/pkg/logger"
)

type ChatPipeline interface {
	Run(ctx context.Context, state *domain.ChatState) error
}

type chatRequest struct {
	Messages []domain.ChatMessage `json:"messages" binding:"required,dive"`
}

type chatResponse struct {
	Messages []domain.ChatMessage `json:"messages"`
}

type chat struct {
	pipeline ChatPipeline
	writer   response.JSONResponseWriter
}

func NewChat(pipeline ChatPipeline) *chat {
	return &chat{
		pipeline: pipeline,
		writer:   response.JSONResponseWriter{},
	}
}

// Complete runs the conversation through the pipeline and answers with the updated message list.
func (h *chat) Complete(c *gin.Context) {
	ctx := c.Request.Context()

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "Invalid chat request", logger.Err(err))
		h.writer.WriteErrorResponse(c, http.StatusUnprocessableEntity, describeBindError(err))
		return
	}

	slog.InfoContext(ctx, "Chat request received", "messagesCount", len(req.Messages))

	state := domain.NewChatState(req.Messages)
	if err := h.pipeline.Run(ctx, state); err != nil {
		slog.ErrorContext(ctx, "Running chat pipeline", logger.Err(err))
		h.writer.WriteErrorResponse(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	h.writer.WriteSuccessResponse(c, chatResponse{Messages: state.Messages})
}

func describeBindError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Sprintf("invalid request body: %v", err)
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := jsonFieldPath(fe.Namespace())
		switch fe.Tag() {
		case "required":
			details = append(details, field+" field required")
		case "oneof":
			details = append(details, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		default:
			details = append(details, fmt.Sprintf("%s failed on %q", field, fe.Tag()))
		}
	}
	return strings.Join(details, "; ")
}

// jsonFieldPath turns "chatRequest.Messages[0].Role" into "messages[0].role".
func jsonFieldPath(namespace string) string {
	_, path, ok := strings.Cut(namespace, ".")
	if !ok {
		path = namespace
	}
	return strings.ToLower(path)
}
