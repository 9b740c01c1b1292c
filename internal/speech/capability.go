// Package speech wraps the platform speech devices used by the tutor widget.
//
// The devices themselves are capabilities that may be missing: a Recognizer
// captures one spoken utterance, a Synthesizer reads text aloud. Input and
// Output own one device each and guarantee at most one active operation.
package speech

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable reports that the platform offers no such device.
	ErrUnavailable = errors.New("speech: capability unavailable")
	// ErrNoSpeech reports a capture session that ended without an utterance.
	ErrNoSpeech = errors.New("speech: no speech detected")
)

// DefaultLocale is the single recognition locale the widget listens in.
const DefaultLocale = "en-US"

// DefaultRate is the synthesis speed multiplier used for tutor replies.
const DefaultRate = 0.9

// Recognizer is a speech-capture device in single-shot mode.
type Recognizer interface {
	// Recognize listens for one utterance and returns its final transcript.
	// It returns when ctx is cancelled.
	Recognize(ctx context.Context, locale string) (string, error)
}

// Synthesizer is a speech-synthesis device.
type Synthesizer interface {
	// Speak blocks until text has been read aloud or ctx is cancelled.
	Speak(ctx context.Context, text string, rate float64) error
}
