package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/physical-ai-tutor/backend/internal/config"
	"github.com/zhouzirui/physical-ai-tutor/backend/internal/model/content"
)

// Service answers tutoring questions with a chat model.
type Service struct {
	chatModel model.ChatModel
	modules   content.Store
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService builds the tutor chain on the model described by cfg.
func NewService(ctx context.Context, modules content.Store, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, modules, chatModel)
}

// NewServiceWithModel builds the tutor chain on an existing chat model.
func NewServiceWithModel(ctx context.Context, modules content.Store, chatModel model.ChatModel) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		modules:   modules,
		chain:     runnable,
	}, nil
}

// GenerateReply answers a single question. No earlier turns are sent.
func (s *Service) GenerateReply(ctx context.Context, question string) (string, error) {
	response, err := s.chain.Invoke(ctx, map[string]any{
		"system": s.buildSystemPrompt(),
		"query":  question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	reply := strings.TrimSpace(response.Content)
	if reply == "" {
		return "", fmt.Errorf("model returned an empty reply")
	}

	log.Printf("[ai] generated reply, length=%d", len(reply))
	return reply, nil
}

// buildSystemPrompt describes the tutor role and the course outline.
func (s *Service) buildSystemPrompt() string {
	var builder strings.Builder
	builder.WriteString("You are the AI tutor of the Physical AI & Humanoid Robotics textbook. ")
	builder.WriteString("Answer in plain spoken English, in at most four sentences, because replies are read aloud. ")
	builder.WriteString("Do not use markdown, lists, or code blocks.")

	if s.modules == nil {
		return builder.String()
	}

	modules := s.modules.List()
	if len(modules) == 0 {
		return builder.String()
	}

	builder.WriteString("\n\nCourse modules:")
	for i, m := range modules {
		builder.WriteString(fmt.Sprintf("\n%d. %s: %s", i+1, m.Title, m.Description))
	}
	builder.WriteString("\nWhen a question relates to a module, mention the module by name.")
	return builder.String()
}
