// Package widget implements the tutor chat widget: typed and spoken input,
// one request in flight at a time, and spoken replies.
package widget

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/physical-ai-tutor/backend/internal/client"
	"github.com/zhouzirui/physical-ai-tutor/backend/internal/model/chat"
	"github.com/zhouzirui/physical-ai-tutor/backend/internal/speech"
)

// ErrorNotice is appended as the assistant reply when a request fails.
const ErrorNotice = "Error occurred. Please try again."

// Config wires a widget to its collaborators. Nil capabilities disable the
// matching modality.
type Config struct {
	Client      client.ChatClient
	Recognizer  speech.Recognizer
	Synthesizer speech.Synthesizer
	Locale      string
	SpeechRate  float64
	// RequestTimeout bounds each chat request. Zero means no limit.
	RequestTimeout time.Duration
	// OnChange receives a snapshot after every state change. It runs outside
	// the widget lock but must not call back into the widget synchronously.
	OnChange func(Snapshot)
}

// Widget is the conversation state machine for one widget instance.
type Widget struct {
	id       string
	client   client.ChatClient
	store    *Store
	input    *speech.Input
	output   *speech.Output
	timeout  time.Duration
	onChange func(Snapshot)

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    State
	version  uint64
	closed   bool
	inflight sync.WaitGroup

	notifyMu     sync.Mutex
	lastNotified uint64
}

// New creates a widget with an empty transcript and a closed panel.
func New(cfg Config) *Widget {
	chatClient := cfg.Client
	if chatClient == nil {
		chatClient = client.NewFallback()
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Widget{
		id:       uuid.NewString(),
		client:   chatClient,
		store:    NewStore(),
		timeout:  cfg.RequestTimeout,
		onChange: cfg.OnChange,
		ctx:      ctx,
		cancel:   cancel,
	}

	w.input = speech.NewInput(cfg.Recognizer, cfg.Locale, speech.InputEvents{
		OnTranscript: w.handleTranscript,
		OnError:      func(error) { w.handleCaptureEnd() },
		OnCancelled:  w.handleCaptureEnd,
	})
	w.output = speech.NewOutput(cfg.Synthesizer, cfg.SpeechRate, speech.OutputEvents{
		OnStart: func() { w.setSpeaking(true) },
		OnEnd:   func() { w.setSpeaking(false) },
	})

	return w
}

// ID identifies the widget instance in logs.
func (w *Widget) ID() string {
	return w.id
}

// Submit sends text as a user message. It returns false, changing nothing,
// when text is blank or a request is already in flight.
func (w *Widget) Submit(text string) bool {
	w.mu.Lock()
	accepted := w.submitLocked(text)
	snap := w.snapshotLocked()
	w.mu.Unlock()

	if accepted {
		w.notify(snap)
		go w.send(text)
	}
	return accepted
}

// StartVoice begins a speech capture session. It returns false when voice is
// unavailable or the widget is not idle.
func (w *Widget) StartVoice() bool {
	w.mu.Lock()
	if w.closed || w.state.Phase != Idle || !w.input.StartCapture() {
		w.mu.Unlock()
		return false
	}
	w.state.Phase = Listening
	snap := w.changedLocked()
	w.mu.Unlock()

	w.notify(snap)
	return true
}

// StopVoice abandons the active capture session without submitting.
func (w *Widget) StopVoice() {
	w.mu.Lock()
	if w.state.Phase != Listening {
		w.mu.Unlock()
		return
	}
	w.input.StopCapture()
	w.state.Phase = Idle
	snap := w.changedLocked()
	w.mu.Unlock()

	w.notify(snap)
}

// SetDraft updates the uncommitted input text. Typing is ignored while
// listening.
func (w *Widget) SetDraft(text string) bool {
	w.mu.Lock()
	if w.closed || w.state.Phase == Listening {
		w.mu.Unlock()
		return false
	}
	w.state.Draft = text
	snap := w.changedLocked()
	w.mu.Unlock()

	w.notify(snap)
	return true
}

// SetPanelOpen shows or hides the chat panel. In-flight requests and the
// transcript are unaffected.
func (w *Widget) SetPanelOpen(open bool) {
	w.mu.Lock()
	if w.state.PanelOpen == open {
		w.mu.Unlock()
		return
	}
	w.state.PanelOpen = open
	snap := w.changedLocked()
	w.mu.Unlock()

	w.notify(snap)
}

// TogglePanel flips panel visibility and returns the new value.
func (w *Widget) TogglePanel() bool {
	w.mu.Lock()
	w.state.PanelOpen = !w.state.PanelOpen
	open := w.state.PanelOpen
	snap := w.changedLocked()
	w.mu.Unlock()

	w.notify(snap)
	return open
}

// StopSpeaking silences the current reply.
func (w *Widget) StopSpeaking() {
	w.output.Stop()
}

// State returns the current flags.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Messages returns a copy of the transcript.
func (w *Widget) Messages() []chat.Message {
	return w.store.Messages()
}

// Snapshot returns the current state and transcript.
func (w *Widget) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Wait blocks until every accepted submission has its reply in the transcript.
func (w *Widget) Wait() {
	w.inflight.Wait()
}

// Close tears the widget down: capture and playback stop, a pending request
// is abandoned, and no further changes are reported.
func (w *Widget) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	w.input.StopCapture()
	w.output.Close()
	w.cancel()
}

// submitLocked records an accepted submission. The caller starts the send
// after publishing the snapshot so the reply can never be reported first.
func (w *Widget) submitLocked(text string) bool {
	if w.closed || strings.TrimSpace(text) == "" || w.state.Phase == AwaitingReply {
		return false
	}
	if w.state.Phase == Listening {
		w.input.StopCapture()
	}

	w.store.Append(chat.NewMessage(chat.RoleUser, text))
	w.state.Draft = ""
	w.state.Phase = AwaitingReply
	w.version++
	w.inflight.Add(1)
	return true
}

func (w *Widget) send(text string) {
	defer w.inflight.Done()

	ctx := w.ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	reply, err := w.client.Send(ctx, text)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	if err != nil {
		log.Printf("[widget] chat request failed for widget=%s: %v", w.id, err)
		w.store.Append(chat.NewMessage(chat.RoleAssistant, ErrorNotice))
	} else {
		w.store.Append(chat.NewMessage(chat.RoleAssistant, reply))
	}
	w.state.Phase = Idle
	snap := w.changedLocked()
	w.mu.Unlock()

	w.notify(snap)
	if err == nil {
		w.output.Speak(reply)
	}
}

// handleTranscript leaves Listening and submits in one step so no snapshot
// shows the widget listening after its result arrived.
func (w *Widget) handleTranscript(text string) {
	w.mu.Lock()
	if w.state.Phase != Listening {
		w.mu.Unlock()
		return
	}
	w.state.Phase = Idle
	accepted := w.submitLocked(text)
	if !accepted {
		w.version++
	}
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.notify(snap)
	if accepted {
		go w.send(text)
	}
}

func (w *Widget) handleCaptureEnd() {
	w.mu.Lock()
	if w.state.Phase != Listening {
		w.mu.Unlock()
		return
	}
	w.state.Phase = Idle
	snap := w.changedLocked()
	w.mu.Unlock()

	w.notify(snap)
}

func (w *Widget) setSpeaking(on bool) {
	w.mu.Lock()
	if w.state.Speaking == on {
		w.mu.Unlock()
		return
	}
	w.state.Speaking = on
	snap := w.changedLocked()
	w.mu.Unlock()

	w.notify(snap)
}

func (w *Widget) changedLocked() Snapshot {
	w.version++
	return w.snapshotLocked()
}

func (w *Widget) snapshotLocked() Snapshot {
	return Snapshot{
		Version:         w.version,
		Phase:           w.state.Phase,
		PanelOpen:       w.state.PanelOpen,
		Loading:         w.state.IsLoading(),
		Listening:       w.state.IsListening(),
		Speaking:        w.state.Speaking,
		Draft:           w.state.Draft,
		VoiceAvailable:  w.input.Available(),
		SpeechAvailable: w.output.Available(),
		Messages:        w.store.Messages(),
	}
}

// notify delivers snapshots in version order, dropping any that were
// overtaken by a newer one.
func (w *Widget) notify(snap Snapshot) {
	if w.onChange == nil {
		return
	}

	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()

	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed || snap.Version <= w.lastNotified {
		return
	}
	w.lastNotified = snap.Version
	w.onChange(snap)
}
