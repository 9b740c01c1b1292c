package widget

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zhouzirui/physical-ai-tutor/backend/internal/speech"
)

type sentMessage struct {
	msgType string
	id      uint64
}

type recordingSender struct {
	mu   sync.Mutex
	msgs []sentMessage
	sent chan sentMessage
}

func newRecordingSender() *recordingSender {
	return &recordingSender{sent: make(chan sentMessage, 8)}
}

func (s *recordingSender) send(msgType string, data any) error {
	msg := sentMessage{msgType: msgType}
	if fields, ok := data.(map[string]any); ok {
		msg.id, _ = fields["id"].(uint64)
	}

	s.mu.Lock()
	s.msgs = append(s.msgs, msg)
	s.mu.Unlock()
	s.sent <- msg
	return nil
}

func (s *recordingSender) sentTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]string, 0, len(s.msgs))
	for _, msg := range s.msgs {
		types = append(types, msg.msgType)
	}
	return types
}

func TestRemoteRecognizerReturnsTranscript(t *testing.T) {
	out := newRecordingSender()
	rec := newRemoteRecognizer(out)

	go func() {
		listen := <-out.sent
		rec.deliver(listen.id, recognition{text: "hello"})
	}()

	text, err := rec.Recognize(context.Background(), "en-US")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if text != "hello" {
		t.Fatalf("expected hello, got %s", text)
	}
}

func TestRemoteRecognizerAbortsOnCancel(t *testing.T) {
	out := newRecordingSender()
	rec := newRemoteRecognizer(out)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		<-out.sent
		cancel()
	}()

	_, err := rec.Recognize(ctx, "en-US")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	types := out.sentTypes()
	if len(types) != 2 || types[0] != "listen" || types[1] != "listen_abort" {
		t.Fatalf("unexpected messages: %v", types)
	}
}

func TestRemoteRecognizerIgnoresPreviousSessionEnd(t *testing.T) {
	out := newRecordingSender()
	rec := newRemoteRecognizer(out)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-out.sent
		cancel()
	}()
	if _, err := rec.Recognize(ctx, "en-US"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected first session cancelled, got %v", err)
	}
	abort := <-out.sent

	done := make(chan recognition, 1)
	go func() {
		text, err := rec.Recognize(context.Background(), "en-US")
		done <- recognition{text: text, err: err}
	}()
	second := <-out.sent
	if second.id == abort.id {
		t.Fatalf("expected a new session id, got %d twice", second.id)
	}

	// The browser confirms the abort of the first session late.
	rec.deliver(abort.id, recognition{err: recognitionError("aborted")})
	select {
	case res := <-done:
		t.Fatalf("second session ended by the first one's end notice: %+v", res)
	case <-time.After(20 * time.Millisecond):
	}

	rec.deliver(second.id, recognition{text: "fresh"})
	select {
	case res := <-done:
		if res.err != nil || res.text != "fresh" {
			t.Fatalf("expected fresh transcript, got %q err=%v", res.text, res.err)
		}
	case <-time.After(time.Second):
		t.Fatalf("second session did not finish")
	}
}

func TestRecognitionErrorMapping(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{code: "", want: speech.ErrNoSpeech},
		{code: "no-speech", want: speech.ErrNoSpeech},
		{code: "aborted", want: speech.ErrNoSpeech},
		{code: "not-allowed", want: speech.ErrUnavailable},
		{code: "audio-capture", want: speech.ErrUnavailable},
	}

	for _, tc := range cases {
		if err := recognitionError(tc.code); !errors.Is(err, tc.want) {
			t.Fatalf("code %q: expected %v, got %v", tc.code, tc.want, err)
		}
	}

	err := recognitionError("network")
	if errors.Is(err, speech.ErrNoSpeech) || errors.Is(err, speech.ErrUnavailable) {
		t.Fatalf("expected a plain error for network, got %v", err)
	}
}

func TestRemoteSynthesizerWaitsForUtteranceEnd(t *testing.T) {
	out := newRecordingSender()
	synth := newRemoteSynthesizer(out)

	done := make(chan error, 1)
	go func() {
		done <- synth.Speak(context.Background(), "hi", 0.9)
	}()

	speak := <-out.sent
	select {
	case err := <-done:
		t.Fatalf("speak returned before utterance end: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	synth.utteranceEnded(speak.id)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("speak did not return")
	}
}

func TestRemoteSynthesizerCancels(t *testing.T) {
	out := newRecordingSender()
	synth := newRemoteSynthesizer(out)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		<-out.sent
		cancel()
	}()

	if err := synth.Speak(ctx, "hi", 0.9); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	types := out.sentTypes()
	if len(types) != 2 || types[1] != "speak_cancel" {
		t.Fatalf("unexpected messages: %v", types)
	}
}

func TestRemoteSynthesizerIgnoresCancelledUtteranceEnd(t *testing.T) {
	out := newRecordingSender()
	synth := newRemoteSynthesizer(out)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-out.sent
		cancel()
	}()
	if err := synth.Speak(ctx, "one", 0.9); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected first utterance cancelled, got %v", err)
	}
	cancelled := <-out.sent

	done := make(chan error, 1)
	go func() {
		done <- synth.Speak(context.Background(), "two", 0.9)
	}()
	second := <-out.sent

	// speechSynthesis.cancel() fires an end event for the first utterance.
	synth.utteranceEnded(cancelled.id)
	select {
	case err := <-done:
		t.Fatalf("utterance two ended by utterance one's end event (err=%v)", err)
	case <-time.After(20 * time.Millisecond):
	}

	synth.utteranceEnded(second.id)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("utterance two did not finish")
	}
}
