package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/physical-ai-tutor/backend/internal/client"
	"github.com/zhouzirui/physical-ai-tutor/backend/internal/config"
	"github.com/zhouzirui/physical-ai-tutor/backend/internal/model/content"
	"github.com/zhouzirui/physical-ai-tutor/backend/internal/speech"
	"github.com/zhouzirui/physical-ai-tutor/backend/internal/widget"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs := flag.NewFlagSet("tutor", flag.ExitOnError)
	quiet := fs.Bool("quiet", false, "do not read replies aloud")
	_ = fs.Parse(os.Args[1:])

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tutor: %v\n", err)
		os.Exit(1)
	}

	chatClient := client.New(cfg.Widget.ClientConfig())
	modules := func(context.Context) ([]content.Module, error) {
		return content.Seed(), nil
	}
	if live, ok := chatClient.(*client.Live); ok {
		modules = live.ListModules
	}

	// A terminal has no microphone pipeline, so voice input stays disabled.
	var synthesizer speech.Synthesizer
	if !*quiet {
		if synth, err := speech.DetectCommandSynthesizer(); err == nil {
			synthesizer = synth
		}
	}

	t := newTerminal(os.Stdout)
	w := widget.New(widget.Config{
		Client:         chatClient,
		Synthesizer:    synthesizer,
		Locale:         cfg.Widget.Locale,
		SpeechRate:     cfg.Widget.SpeechRate,
		RequestTimeout: cfg.Widget.RequestTimeout,
		OnChange:       t.render,
	})
	defer w.Close()

	if err := runTutor(ctx, w, modules, os.Stdin, t); err != nil {
		fmt.Fprintf(os.Stderr, "tutor: %v\n", err)
		os.Exit(1)
	}
}
