package speech

import (
	"context"
	"log"
	"strings"
	"sync"
)

// OutputEvents drives the speaking indicator.
type OutputEvents struct {
	OnStart func()
	OnEnd   func()
}

// Output plays one utterance at a time on a Synthesizer.
//
// Speak and Stop wait for the previous utterance to finish its OnEnd handler,
// so they must not be called while holding a lock the handlers acquire.
type Output struct {
	synth  Synthesizer
	rate   float64
	events OutputEvents

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

// NewOutput wraps synth. A nil synth makes every call a no-op.
func NewOutput(synth Synthesizer, rate float64, events OutputEvents) *Output {
	if rate <= 0 {
		rate = DefaultRate
	}
	return &Output{synth: synth, rate: rate, events: events}
}

// Available reports whether a synthesizer is present.
func (o *Output) Available() bool {
	return o != nil && o.synth != nil
}

// Speaking reports whether an utterance is in progress.
func (o *Output) Speaking() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done == nil {
		return false
	}
	select {
	case <-o.done:
		return false
	default:
		return true
	}
}

// Speak cancels any in-progress utterance, waits for it to go quiet, then
// starts reading text.
func (o *Output) Speak(text string) {
	if !o.Available() || strings.TrimSpace(text) == "" {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	o.cancel = cancel
	o.done = done

	go o.play(ctx, cancel, done, text)
}

// Stop silences the current utterance, if any.
func (o *Output) Stop() {
	if !o.Available() {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopLocked()
}

// Close stops playback and ignores later Speak calls.
func (o *Output) Close() {
	if !o.Available() {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopLocked()
	o.closed = true
}

func (o *Output) stopLocked() {
	if o.cancel == nil {
		return
	}
	o.cancel()
	<-o.done
	o.cancel = nil
	o.done = nil
}

func (o *Output) play(ctx context.Context, cancel context.CancelFunc, done chan struct{}, text string) {
	defer close(done)
	defer cancel()

	if o.events.OnStart != nil {
		o.events.OnStart()
	}
	if err := o.synth.Speak(ctx, text, o.rate); err != nil && ctx.Err() == nil {
		log.Printf("[speech] synthesis failed: %v", err)
	}
	if o.events.OnEnd != nil {
		o.events.OnEnd()
	}
}
