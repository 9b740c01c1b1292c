package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/zhouzirui/physical-ai-tutor/backend/internal/model/chat"
	"github.com/zhouzirui/physical-ai-tutor/backend/internal/model/content"
	"github.com/zhouzirui/physical-ai-tutor/backend/internal/widget"
)

type moduleLister func(ctx context.Context) ([]content.Module, error)

// terminal prints widget snapshots. Messages are printed once, and only
// while the panel is open.
type terminal struct {
	mu      sync.Mutex
	out     io.Writer
	printed int
	loading bool
}

func newTerminal(out io.Writer) *terminal {
	return &terminal{out: out}
}

func (t *terminal) render(snap widget.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !snap.PanelOpen {
		t.loading = snap.Loading
		return
	}

	for _, msg := range snap.Messages[t.printed:] {
		fmt.Fprintf(t.out, "%s: %s\n", speaker(msg.Role), msg.Content)
	}
	t.printed = len(snap.Messages)

	if snap.Loading && !t.loading {
		fmt.Fprintln(t.out, "(tutor is thinking...)")
	}
	if snap.Listening {
		fmt.Fprintln(t.out, "(listening...)")
	}
	t.loading = snap.Loading
}

func (t *terminal) println(a ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, a...)
}

func speaker(role chat.Role) string {
	if role == chat.RoleUser {
		return "you"
	}
	return "tutor"
}

const helpText = "Commands: /open, /close, /voice, /stop, /mute, /modules, /quit. Anything else is sent to the tutor."

func runTutor(ctx context.Context, w *widget.Widget, modules moduleLister, in io.Reader, t *terminal) error {
	t.println("Physical AI tutor. Type /open to start chatting.")
	t.println(helpText)
	if !w.Snapshot().SpeechAvailable {
		t.println("(spoken replies unavailable)")
	}

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		scanErr <- scanner.Err()
	}()

	for {
		var line string
		select {
		case <-ctx.Done():
			// Abandon a pending request so an unresponsive backend cannot
			// hold the terminal.
			w.Close()
			w.Wait()
			return nil
		case err := <-scanErr:
			w.Wait()
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return nil
		case line = <-lines:
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			w.Wait()
			t.println("bye")
			return nil
		}
		if strings.HasPrefix(line, "/") {
			handleCommand(ctx, line, w, modules, t)
			continue
		}

		if !w.State().PanelOpen {
			t.println("The chat panel is closed. Type /open first.")
			continue
		}
		if !w.Submit(line) {
			t.println("(still waiting for the previous reply)")
		}
	}
}

func handleCommand(ctx context.Context, line string, w *widget.Widget, modules moduleLister, t *terminal) {
	switch line {
	case "/open":
		w.SetPanelOpen(true)
	case "/close":
		w.SetPanelOpen(false)
	case "/voice":
		if !w.Snapshot().VoiceAvailable {
			t.println("(voice input unavailable)")
			return
		}
		if !w.StartVoice() {
			t.println("(cannot listen right now)")
		}
	case "/stop":
		w.StopVoice()
	case "/mute":
		w.StopSpeaking()
	case "/modules":
		list, err := modules(ctx)
		if err != nil {
			t.println("could not load modules:", err)
			return
		}
		for _, m := range list {
			t.println(fmt.Sprintf("%s %s (%d chapters)", m.Icon, m.Title, m.ChapterCount))
		}
	default:
		t.println(helpText)
	}
}
