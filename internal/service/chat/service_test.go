package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/zhouzirui/physical-ai-tutor/backend/internal/analysis/topic"
	chat "github.com/zhouzirui/physical-ai-tutor/backend/internal/service/chat"
)

type stubGenerator struct {
	reply string
	err   error
	calls int
}

func (g *stubGenerator) GenerateReply(_ context.Context, _ string) (string, error) {
	g.calls++
	return g.reply, g.err
}

func TestServiceReplyWithoutModel(t *testing.T) {
	svc := chat.NewService(nil)

	reply, err := svc.Reply(context.Background(), "Which sensor is best?")
	if err != nil {
		t.Fatalf("Reply err: %v", err)
	}
	if reply != topic.ReplyFor(topic.Sensors) {
		t.Fatalf("unexpected reply: %s", reply)
	}
	if svc.ModelBacked() {
		t.Fatal("service without generator should not be model backed")
	}
}

func TestServiceReplyUsesModel(t *testing.T) {
	gen := &stubGenerator{reply: "model answer"}
	svc := chat.NewService(gen)

	reply, err := svc.Reply(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Reply err: %v", err)
	}
	if reply != "model answer" {
		t.Fatalf("unexpected reply: %s", reply)
	}
}

func TestServiceReplyFallsBackOnModelError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("upstream down")}
	svc := chat.NewService(gen)

	reply, err := svc.Reply(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Reply err: %v", err)
	}
	if reply != topic.DefaultReply {
		t.Fatalf("expected default reply, got %s", reply)
	}
	if gen.calls != 1 {
		t.Fatalf("expected one model call, got %d", gen.calls)
	}
}

func TestServiceReplyRejectsBlank(t *testing.T) {
	svc := chat.NewService(nil)

	if _, err := svc.Reply(context.Background(), "  "); !errors.Is(err, chat.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}
