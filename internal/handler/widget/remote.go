package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zhouzirui/physical-ai-tutor/backend/internal/speech"
)

// sender writes one outbound envelope to the browser.
type sender interface {
	send(msgType string, data any) error
}

type recognition struct {
	text string
	err  error
}

// remoteRecognizer runs recognition in the browser. Each Recognize call asks
// the page to listen under a fresh session id and accepts only the
// transcript or end notice that echoes that id.
type remoteRecognizer struct {
	out     sender
	results chan recognition

	mu      sync.Mutex
	session uint64
}

func newRemoteRecognizer(out sender) *remoteRecognizer {
	return &remoteRecognizer{out: out, results: make(chan recognition, 1)}
}

func (r *remoteRecognizer) Recognize(ctx context.Context, locale string) (string, error) {
	r.mu.Lock()
	r.session++
	id := r.session
	select {
	case <-r.results:
	default:
	}
	r.mu.Unlock()

	if err := r.out.send("listen", map[string]any{"id": id, "locale": locale}); err != nil {
		return "", fmt.Errorf("%w: %v", speech.ErrUnavailable, err)
	}

	select {
	case <-ctx.Done():
		if err := r.out.send("listen_abort", map[string]any{"id": id}); err != nil {
			return "", errors.Join(ctx.Err(), err)
		}
		return "", ctx.Err()
	case res := <-r.results:
		return res.text, res.err
	}
}

// deliver hands a browser result to the session it belongs to. Results for
// any other session are dropped.
func (r *remoteRecognizer) deliver(id uint64, res recognition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != r.session {
		return
	}
	select {
	case r.results <- res:
	default:
	}
}

// recognitionError maps a browser recognition error code.
func recognitionError(code string) error {
	switch code {
	case "", "no-speech", "aborted":
		return speech.ErrNoSpeech
	case "not-allowed", "service-not-allowed", "audio-capture":
		return fmt.Errorf("%w: %s", speech.ErrUnavailable, code)
	default:
		return fmt.Errorf("browser recognition error: %s", code)
	}
}

// remoteSynthesizer reads replies aloud in the browser and waits until the
// page reports that the same utterance finished.
type remoteSynthesizer struct {
	out  sender
	ends chan struct{}

	mu        sync.Mutex
	utterance uint64
}

func newRemoteSynthesizer(out sender) *remoteSynthesizer {
	return &remoteSynthesizer{out: out, ends: make(chan struct{}, 1)}
}

func (s *remoteSynthesizer) Speak(ctx context.Context, text string, rate float64) error {
	s.mu.Lock()
	s.utterance++
	id := s.utterance
	select {
	case <-s.ends:
	default:
	}
	s.mu.Unlock()

	if err := s.out.send("speak", map[string]any{"id": id, "text": text, "rate": rate}); err != nil {
		return fmt.Errorf("%w: %v", speech.ErrUnavailable, err)
	}

	select {
	case <-ctx.Done():
		if err := s.out.send("speak_cancel", map[string]any{"id": id}); err != nil {
			return errors.Join(ctx.Err(), err)
		}
		return ctx.Err()
	case <-s.ends:
		return nil
	}
}

func (s *remoteSynthesizer) utteranceEnded(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.utterance {
		return
	}
	select {
	case s.ends <- struct{}{}:
	default:
	}
}
