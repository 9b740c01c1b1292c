// Package client implements the tutor chat exchange used by the widget.
package client

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/zhouzirui/physical-ai-tutor/backend/internal/analysis/topic"
)

// ErrNetworkFailure wraps every failure to obtain a reply from the backend.
var ErrNetworkFailure = errors.New("network failure")

// ChatClient sends one user message and returns the tutor's reply.
type ChatClient interface {
	Send(ctx context.Context, message string) (string, error)
}

// Config selects and tunes the chat strategy.
type Config struct {
	// BaseURL is the backend API root, e.g. http://localhost:8000/api/v1.
	// Empty selects the offline responder.
	BaseURL string
	// Offline forces the offline responder even when BaseURL is set.
	Offline bool
	// Timeout bounds each live request. Zero means no limit.
	Timeout time.Duration
}

// Live reports whether cfg selects the network strategy.
func (c Config) Live() bool {
	return !c.Offline && strings.TrimSpace(c.BaseURL) != ""
}

// New returns the strategy selected by cfg.
func New(cfg Config) ChatClient {
	if cfg.Live() {
		return NewLive(cfg.BaseURL, cfg.Timeout)
	}
	return NewFallback()
}

// Fallback answers locally from the keyword rule table.
type Fallback struct{}

// NewFallback returns the offline responder.
func NewFallback() *Fallback {
	return &Fallback{}
}

// Send never fails; unmatched messages get the default reply.
func (f *Fallback) Send(_ context.Context, message string) (string, error) {
	return topic.Reply(message), nil
}
