package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/physical-ai-tutor/backend/internal/config"
	"github.com/zhouzirui/physical-ai-tutor/backend/internal/handler"
	"github.com/zhouzirui/physical-ai-tutor/backend/internal/handler/widget"
	"github.com/zhouzirui/physical-ai-tutor/backend/internal/model/content"
	"github.com/zhouzirui/physical-ai-tutor/backend/internal/service/ai"
	"github.com/zhouzirui/physical-ai-tutor/backend/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	moduleStore := content.NewMemoryStore(content.Seed())

	// The keyword responder answers whenever no model is configured.
	var generator chat.Generator
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, moduleStore, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing with keyword replies - 请检查 Ark 模型相关环境变量")
		} else {
			generator = aiService
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark 凭证未配置，使用关键词回复")
	}

	chatService := chat.NewService(generator)

	router := handler.NewRouter(moduleStore, chatService, handler.RouterConfig{
		AllowedOrigin: cfg.Server.AllowedOrigin,
		Widget: widget.Options{
			Locale:         cfg.Widget.Locale,
			SpeechRate:     cfg.Widget.SpeechRate,
			RequestTimeout: cfg.Widget.RequestTimeout,
		},
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Physical AI tutor backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
