package content

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/physical-ai-tutor/backend/internal/model/content"
	"github.com/zhouzirui/physical-ai-tutor/backend/pkg/utils"
)

// Handler 课程模块的HTTP处理器
type Handler struct {
	modules content.Store
}

// New 创建课程模块处理器
func New(modules content.Store) *Handler {
	return &Handler{modules: modules}
}

// RegisterRoutes 注册课程模块相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/modules", h.handleListModules)
	r.Get("/modules/{slug}", h.handleGetModule)
}

// handleListModules 按顺序列出所有模块
func (h *Handler) handleListModules(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.modules.List())
}

// handleGetModule 返回单个模块
func (h *Handler) handleGetModule(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	module, ok := h.modules.FindBySlug(slug)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "module not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, module)
}
