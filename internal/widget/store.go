package widget

import (
	"sync"

	"github.com/zhouzirui/physical-ai-tutor/backend/internal/model/chat"
)

// Store is the append-only transcript of one widget session.
type Store struct {
	mu       sync.RWMutex
	messages []chat.Message
}

// NewStore returns an empty transcript.
func NewStore() *Store {
	return &Store{messages: make([]chat.Message, 0, 16)}
}

// Append adds message to the end of the transcript and returns the new length.
func (s *Store) Append(message chat.Message) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
	return len(s.messages)
}

// Messages returns a copy of the transcript in insertion order.
func (s *Store) Messages() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make([]chat.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

// Len returns the number of messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Last returns the most recent message.
func (s *Store) Last() (chat.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return chat.Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}
