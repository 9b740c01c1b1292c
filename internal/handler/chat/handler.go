package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/physical-ai-tutor/backend/internal/model/chat"
	chatService "github.com/zhouzirui/physical-ai-tutor/backend/internal/service/chat"
	"github.com/zhouzirui/physical-ai-tutor/backend/pkg/utils"
)

// Replier answers a single chat message.
type Replier interface {
	Reply(ctx context.Context, message string) (string, error)
}

// Handler 聊天服务的HTTP处理器
type Handler struct {
	replier Replier
}

// New 创建聊天处理器
func New(replier Replier) *Handler {
	return &Handler{replier: replier}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
}

// handleChat 处理一次问答
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(payload.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.replier.Reply(r.Context(), payload.Message)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chatService.ErrEmptyMessage) {
			status = http.StatusBadRequest
		}
		log.Printf("[chat] reply failed: %v", err)
		utils.RespondError(w, status, "failed to generate reply")
		return
	}

	utils.RespondJSON(w, http.StatusOK, chat.ChatResponse{
		Response: reply,
		Sources:  []string{},
	})
}
