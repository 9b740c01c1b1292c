package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// baseWordsPerMinute is the normal speaking speed of the command-line engines.
const baseWordsPerMinute = 175

// CommandSynthesizer speaks through a local text-to-speech program.
type CommandSynthesizer struct {
	path string
	name string
}

var commandCandidates = []string{"espeak-ng", "espeak", "say"}

// DetectCommandSynthesizer looks for a supported speech program on PATH.
func DetectCommandSynthesizer() (*CommandSynthesizer, error) {
	for _, name := range commandCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return &CommandSynthesizer{path: path, name: name}, nil
		}
	}
	return nil, ErrUnavailable
}

// Name returns the program used for synthesis.
func (c *CommandSynthesizer) Name() string {
	return c.name
}

// Speak runs the speech program and waits for it to exit. Cancelling ctx
// kills the program.
func (c *CommandSynthesizer) Speak(ctx context.Context, text string, rate float64) error {
	cmd := exec.CommandContext(ctx, c.path, commandArgs(c.name, text, rate)...)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s failed: %w", c.name, err)
	}
	return nil
}

func commandArgs(name, text string, rate float64) []string {
	if rate <= 0 {
		rate = DefaultRate
	}
	wpm := strconv.Itoa(int(baseWordsPerMinute * rate))

	switch name {
	case "say":
		return []string{"-r", wpm, text}
	default:
		return []string{"-s", wpm, text}
	}
}
