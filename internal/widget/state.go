package widget

import (
	"fmt"

	"github.com/zhouzirui/physical-ai-tutor/backend/internal/model/chat"
)

// Phase is the exclusive activity of the widget. Listening and AwaitingReply
// share one field so they can never hold at the same time.
type Phase int

const (
	Idle Phase = iota
	AwaitingReply
	Listening
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case AwaitingReply:
		return "awaiting_reply"
	case Listening:
		return "listening"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State holds the transient UI flags.
type State struct {
	Phase     Phase
	PanelOpen bool
	Speaking  bool
	Draft     string
}

// IsLoading reports whether a chat request is in flight.
func (s State) IsLoading() bool {
	return s.Phase == AwaitingReply
}

// IsListening reports whether speech capture is active.
func (s State) IsListening() bool {
	return s.Phase == Listening
}

// Snapshot is a consistent view of the widget for rendering.
type Snapshot struct {
	Version         uint64         `json:"version"`
	Phase           Phase          `json:"phase"`
	PanelOpen       bool           `json:"isOpen"`
	Loading         bool           `json:"isLoading"`
	Listening       bool           `json:"isListening"`
	Speaking        bool           `json:"isSpeaking"`
	Draft           string         `json:"draftInput"`
	VoiceAvailable  bool           `json:"voiceAvailable"`
	SpeechAvailable bool           `json:"speechAvailable"`
	Messages        []chat.Message `json:"messages"`
}
