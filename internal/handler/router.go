package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/physical-ai-tutor/backend/internal/handler/chat"
	"github.com/zhouzirui/physical-ai-tutor/backend/internal/handler/content"
	"github.com/zhouzirui/physical-ai-tutor/backend/internal/handler/widget"
	middlewarePkg "github.com/zhouzirui/physical-ai-tutor/backend/internal/middleware"
	contentModel "github.com/zhouzirui/physical-ai-tutor/backend/internal/model/content"
	chatService "github.com/zhouzirui/physical-ai-tutor/backend/internal/service/chat"
	"github.com/zhouzirui/physical-ai-tutor/backend/pkg/utils"
)

// RouterConfig 路由层需要的外部设置
type RouterConfig struct {
	AllowedOrigin string
	Widget        widget.Options
}

// NewRouter wires HTTP routes to core services.
func NewRouter(modules contentModel.Store, chatSvc *chatService.Service, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(cfg.AllowedOrigin))

	contentHandler := content.New(modules)
	chatHandler := chat.New(chatSvc)
	// The widget host talks to the chat service in process.
	widgetOptions := cfg.Widget
	widgetOptions.AllowedOrigin = cfg.AllowedOrigin
	widgetHandler := widget.New(chatSvc, widgetOptions)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
		})

		api.Route("/v1", func(v1 chi.Router) {
			contentHandler.RegisterRoutes(v1)
			chatHandler.RegisterRoutes(v1)
			widgetHandler.RegisterRoutes(v1)
		})
	})

	return r
}
