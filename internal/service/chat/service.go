package chat

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/zhouzirui/physical-ai-tutor/backend/internal/analysis/topic"
)

var ErrEmptyMessage = errors.New("message is required")

// Generator produces a model-written tutor reply.
type Generator interface {
	GenerateReply(ctx context.Context, question string) (string, error)
}

// Service answers chat messages for the HTTP and WebSocket layers.
type Service struct {
	generator Generator
}

// NewService returns a service that answers with generator when it is
// non-nil and with the keyword responder otherwise.
func NewService(generator Generator) *Service {
	return &Service{generator: generator}
}

// ModelBacked reports whether replies come from a chat model.
func (s *Service) ModelBacked() bool {
	return s.generator != nil
}

// Reply answers one message. Model failures fall back to the keyword
// responder so the tutor always answers.
func (s *Service) Reply(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	if s.generator != nil {
		reply, err := s.generator.GenerateReply(ctx, message)
		if err == nil {
			return reply, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Printf("[chat] model reply failed, using keyword responder: %v", err)
	}

	return topic.Reply(message), nil
}

// Send lets the service stand in for a widget chat client inside the server.
func (s *Service) Send(ctx context.Context, message string) (string, error) {
	return s.Reply(ctx, message)
}
