package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/pflag"
	"github.com/sqweek/dialog"
	"golang.org/x/sync/errgroup"

	"github.com/cbegin/pcplay-go"
	"github.com/cbegin/pcplay-go/internal/mml"
	"github.com/cbegin/pcplay-go/internal/script"
)

const defaultMML = "T120 O4 L8 CDEFGAB>C"

var logger *log.Logger

type config struct {
	sampleRate int
	backend    string
	inline     string
	open       bool
	clipboard  bool
	check      bool
	dump       bool
	wavPath    string
	seconds    float64
	tone       int
	duration   float64
	beep       bool
	repl       bool
	luaPath    string
	verbose    bool
	args       []string
}

func main() {
	logger = log.New(os.Stderr, "pcplay: ", log.Ltime)

	var cfg config
	pflag.IntVar(&cfg.sampleRate, "sample-rate", 44100, "requested output sample rate")
	pflag.StringVarP(&cfg.backend, "backend", "b", "ebiten", "audio backend: ebiten|oto|headless")
	pflag.StringVarP(&cfg.inline, "mml", "e", "", "inline MML script")
	pflag.BoolVar(&cfg.open, "open", false, "choose a script file with a file dialog")
	pflag.BoolVar(&cfg.clipboard, "clipboard", false, "play the script on the clipboard")
	pflag.BoolVar(&cfg.check, "check", false, "validate the script and exit")
	pflag.BoolVar(&cfg.dump, "dump", false, "print the parsed commands and exit")
	pflag.StringVarP(&cfg.wavPath, "wav", "o", "", "render to a WAV file instead of playing")
	pflag.Float64Var(&cfg.seconds, "seconds", 10, "length of a WAV render")
	pflag.IntVar(&cfg.tone, "tone", 0, "play a single tone of this frequency in Hz")
	pflag.Float64Var(&cfg.duration, "duration", 1, "tone duration in seconds")
	pflag.BoolVar(&cfg.beep, "beep", false, "play the standard beep")
	pflag.BoolVar(&cfg.repl, "repl", false, "read scripts interactively, one per line")
	pflag.StringVar(&cfg.luaPath, "lua", "", "run a Lua script against the player")
	pflag.BoolVarP(&cfg.verbose, "verbose", "v", false, "log every playback event")
	pflag.Parse()
	cfg.args = pflag.Args()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		if errors.Is(err, dialog.ErrCancelled) {
			logger.Printf("User cancelled the file dialog")
			os.Exit(1)
		}
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg config) error {
	single := cfg.tone > 0 || cfg.beep
	interactive := cfg.repl || cfg.luaPath != ""

	var text string
	if !single && !interactive {
		var err error
		text, err = resolveScript(cfg)
		if err != nil {
			return err
		}
	}

	if cfg.check || cfg.dump {
		cmds, err := mml.Parse(text)
		if cfg.dump {
			fmt.Print(spew.Sdump(cmds))
		}
		if err != nil {
			return err
		}
		fmt.Printf("ok: %d commands\n", len(cmds))
		return nil
	}

	if cfg.wavPath != "" {
		return renderWAV(cfg, text)
	}

	pl, err := pcplay.NewPlayer(cfg.sampleRate, pcplay.WithBackend(cfg.backend), pcplay.WithLogger(logger))
	if err != nil {
		return err
	}
	defer pl.Close()
	if pl.SampleRate() != cfg.sampleRate {
		logger.Printf("device runs at %d Hz", pl.SampleRate())
	}
	events := pl.Watch()

	g, gctx := errgroup.WithContext(ctx)
	work, cancel := context.WithCancel(gctx)
	g.Go(func() error {
		defer cancel()
		switch {
		case cfg.repl:
			return runREPL(work, pl)
		case cfg.luaPath != "":
			r := script.New(work, pl, logger)
			defer r.Close()
			return r.DoFile(cfg.luaPath)
		case cfg.beep:
			if err := pl.Beep(); err != nil {
				return err
			}
		case cfg.tone > 0:
			if err := pl.PlayTone(cfg.tone, cfg.duration); err != nil {
				return err
			}
		default:
			if err := pl.Play(text); err != nil {
				return err
			}
		}
		return pl.Wait(work)
	})
	g.Go(func() error {
		for {
			select {
			case <-work.Done():
				return nil
			case ev := <-events:
				if cfg.verbose {
					logger.Printf("request %d: %v", ev.Request, ev.Kind)
				}
			}
		}
	})
	return g.Wait()
}

func renderWAV(cfg config, text string) error {
	var samples []int16
	switch {
	case cfg.beep:
		samples = pcplay.RenderTone(400, 0.2, cfg.sampleRate, 0.2)
	case cfg.tone > 0:
		samples = pcplay.RenderTone(cfg.tone, cfg.duration, cfg.sampleRate, cfg.duration)
	default:
		samples = pcplay.RenderSamples(text, cfg.sampleRate, cfg.seconds)
	}
	f, err := os.Create(cfg.wavPath)
	if err != nil {
		return err
	}
	if err := pcplay.WriteWAV(f, samples, cfg.sampleRate); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", cfg.wavPath, err)
	}
	logger.Printf("wrote %d samples to %s", len(samples), cfg.wavPath)
	return f.Close()
}
