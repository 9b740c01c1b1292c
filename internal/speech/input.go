package speech

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
)

// InputEvents receives the outcome of a capture session. Exactly one of the
// handlers fires per session.
type InputEvents struct {
	OnTranscript func(text string)
	OnError      func(err error)
	OnCancelled  func()
}

// Input runs single-shot capture sessions on a Recognizer.
type Input struct {
	recognizer Recognizer
	locale     string
	events     InputEvents

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewInput wraps rec. A nil rec produces a permanently disabled input.
func NewInput(rec Recognizer, locale string, events InputEvents) *Input {
	if strings.TrimSpace(locale) == "" {
		locale = DefaultLocale
	}
	return &Input{recognizer: rec, locale: locale, events: events}
}

// Available reports whether a recognizer is present.
func (in *Input) Available() bool {
	return in != nil && in.recognizer != nil
}

// Locale returns the recognition locale.
func (in *Input) Locale() string {
	return in.locale
}

// Capturing reports whether a session is active.
func (in *Input) Capturing() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.cancel != nil
}

// StartCapture begins a capture session. It returns false without side
// effects when the input is disabled or a session is already active.
func (in *Input) StartCapture() bool {
	if !in.Available() {
		return false
	}

	in.mu.Lock()
	if in.cancel != nil {
		in.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	in.cancel = cancel
	in.mu.Unlock()

	go in.capture(ctx, cancel)
	return true
}

// StopCapture ends the active session, which then reports OnCancelled.
// Calling it with no active session does nothing.
func (in *Input) StopCapture() {
	if in == nil {
		return
	}
	in.mu.Lock()
	cancel := in.cancel
	in.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (in *Input) capture(ctx context.Context, cancel context.CancelFunc) {
	text, err := in.recognizer.Recognize(ctx, in.locale)

	// The session stays marked active until its event has been delivered so
	// a new session cannot interleave with the old one's outcome.
	in.deliver(ctx, text, err)

	in.mu.Lock()
	in.cancel = nil
	in.mu.Unlock()
	cancel()
}

func (in *Input) deliver(ctx context.Context, text string, err error) {
	switch {
	case err == nil && strings.TrimSpace(text) != "":
		if in.events.OnTranscript != nil {
			in.events.OnTranscript(text)
		}
	case err == nil, errors.Is(err, ErrNoSpeech), ctx.Err() != nil:
		if in.events.OnCancelled != nil {
			in.events.OnCancelled()
		}
	default:
		log.Printf("[speech] recognition failed: %v", err)
		if in.events.OnError != nil {
			in.events.OnError(err)
		}
	}
}
