package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"golang.org/x/term"

	"aria/internal/app"
	"aria/internal/voice"
)

var (
	promptColor = color.New(color.FgCyan, color.Bold).SprintFunc()
	infoColor   = color.New(color.FgHiBlack).SprintFunc()
	warnColor   = color.New(color.FgYellow).SprintFunc()
	errColor    = color.New(color.FgRed).SprintFunc()
	okColor     = color.New(color.FgGreen).SprintFunc()
)

type cliOptions struct {
	SessionID string
	Voice     bool
	Plain     bool
}

// CLI is the interactive terminal frontend.
type CLI struct {
	container *app.Container
	sessionID string
	voice     bool
	plain     bool
	renderer  *markdownRenderer
}

func newCLI(container *app.Container, opts cliOptions) (*CLI, error) {
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("cli-%d", time.Now().UnixMilli())
	}
	plain := opts.Plain || !isTTY()
	if plain {
		color.NoColor = true
	}

	renderer, err := newMarkdownRenderer(plain)
	if err != nil {
		return nil, err
	}
	return &CLI{
		container: container,
		sessionID: sessionID,
		voice:     opts.Voice,
		plain:     plain,
		renderer:  renderer,
	}, nil
}

func isTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// RunOnce handles a single message and exits.
func (c *CLI) RunOnce(ctx context.Context, message string) error {
	return c.turn(ctx, message)
}

// RunREPL runs the interactive loop until EOF or /quit.
func (c *CLI) RunREPL(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          promptColor("aria> "),
		HistoryFile:     filepath.Join(os.TempDir(), ".aria_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	fmt.Printf("%s session %s. Type %s for commands.\n",
		infoColor("aria ready,"), infoColor(c.sessionID), infoColor("/help"))

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if c.handleCommand(line) {
				return nil
			}
			continue
		}
		if err := c.turn(ctx, line); err != nil {
			fmt.Println(errColor("error: " + err.Error()))
		}
	}
}

// handleCommand processes slash commands; a true return exits the REPL.
func (c *CLI) handleCommand(line string) bool {
	switch strings.Fields(line)[0] {
	case "/quit", "/exit":
		return true
	case "/new":
		c.sessionID = fmt.Sprintf("cli-%d", time.Now().UnixMilli())
		fmt.Println(infoColor("started session " + c.sessionID))
	case "/session":
		fmt.Println(infoColor(c.sessionID))
	case "/help":
		fmt.Println(infoColor("/new      start a fresh session\n/session  show the current session id\n/quit     exit"))
	default:
		fmt.Println(warnColor("unknown command; try /help"))
	}
	return false
}

// turn runs one user message and, when a pending action comes back, the
// confirmation flow.
func (c *CLI) turn(ctx context.Context, message string) error {
	reply, err := c.container.Assistant.HandleMessage(ctx, c.sessionID, message)
	if err != nil {
		return err
	}

	fmt.Print(c.renderer.render(reply.Text))
	if c.voice {
		c.speak(ctx, reply.Text)
	}

	if reply.PendingActionID != "" {
		return c.reviewPendingAction(ctx, reply.PendingActionID)
	}
	return nil
}

// speak synthesizes the reply and reports where the audio landed.
func (c *CLI) speak(ctx context.Context, text string) {
	result, err := c.container.Synthesizer.Synthesize(ctx, voice.SynthesisRequest{Text: text})
	if err != nil {
		fmt.Println(warnColor("voice synthesis failed: " + err.Error()))
		return
	}
	path := filepath.Join(os.TempDir(), fmt.Sprintf("aria-reply-%d.wav", time.Now().UnixMilli()))
	if err := os.WriteFile(path, result.Audio, 0o644); err != nil {
		fmt.Println(warnColor("could not write audio: " + err.Error()))
		return
	}
	fmt.Println(infoColor("spoken reply: " + path))
}
