package speech

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type fakeSynth struct {
	log     *eventLog
	release chan struct{}

	mu        sync.Mutex
	active    int
	maxActive int
	rate      float64
}

func (f *fakeSynth) Speak(ctx context.Context, text string, rate float64) error {
	f.mu.Lock()
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	f.rate = rate
	f.mu.Unlock()
	f.log.add("speak:" + text)

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		f.log.add("cancel:" + text)
		return ctx.Err()
	case <-f.release:
		return nil
	}
}

func newOutputUnderTest() (*Output, *fakeSynth, *eventLog) {
	log := &eventLog{}
	synth := &fakeSynth{log: log, release: make(chan struct{})}
	out := NewOutput(synth, 0, OutputEvents{
		OnStart: func() { log.add("start") },
		OnEnd:   func() { log.add("end") },
	})
	return out, synth, log
}

func TestOutputWithoutSynthesizerIsNoop(t *testing.T) {
	out := NewOutput(nil, 1, OutputEvents{
		OnStart: func() { t.Fatal("unexpected start") },
	})

	require.False(t, out.Available())
	out.Speak("hello")
	out.Stop()
	out.Stop()
	out.Close()
}

func TestOutputSpeakUsesDefaultRate(t *testing.T) {
	out, synth, log := newOutputUnderTest()

	out.Speak("hello")
	require.Eventually(t, func() bool { return len(log.snapshot()) == 2 }, waitFor, 5*time.Millisecond)
	synth.release <- struct{}{}
	require.Eventually(t, func() bool { return !out.Speaking() }, waitFor, 5*time.Millisecond)

	synth.mu.Lock()
	defer synth.mu.Unlock()
	require.InDelta(t, DefaultRate, synth.rate, 1e-9)
	require.Equal(t, []string{"start", "speak:hello", "end"}, log.snapshot())
}

func TestOutputSpeakCancelsPreviousUtteranceFirst(t *testing.T) {
	out, synth, log := newOutputUnderTest()

	out.Speak("one")
	require.Eventually(t, out.Speaking, waitFor, 5*time.Millisecond)
	out.Speak("two")

	require.Eventually(t, func() bool { return len(log.snapshot()) == 6 }, waitFor, 5*time.Millisecond)
	require.Equal(t, []string{
		"start", "speak:one", "cancel:one", "end",
		"start", "speak:two",
	}, log.snapshot())

	out.Stop()
	require.False(t, out.Speaking())

	synth.mu.Lock()
	defer synth.mu.Unlock()
	require.Equal(t, 1, synth.maxActive)
}

func TestOutputStopIsIdempotent(t *testing.T) {
	out, _, log := newOutputUnderTest()

	out.Stop()
	out.Speak("hello")
	out.Stop()
	out.Stop()

	require.False(t, out.Speaking())
	events := log.snapshot()
	require.Equal(t, "end", events[len(events)-1])
}

func TestOutputCloseRejectsLaterSpeech(t *testing.T) {
	out, _, log := newOutputUnderTest()

	out.Close()
	out.Speak("late")

	require.False(t, out.Speaking())
	require.Empty(t, log.snapshot())
}

func TestCommandArgs(t *testing.T) {
	require.Equal(t, []string{"-r", "157", "hi"}, commandArgs("say", "hi", 0.9))
	require.Equal(t, []string{"-s", "175", "hi"}, commandArgs("espeak", "hi", 1))
	require.Equal(t, []string{"-s", "157", "hi"}, commandArgs("espeak-ng", "hi", 0))
}
