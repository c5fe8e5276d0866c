// Package repl runs the interactive operator shell.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/google/shlex"

	"codearena/internal/cli/command"
)

// REPL reads commands from the terminal and dispatches them.
type REPL struct {
	runtime  *command.Runtime
	registry *command.Registry
}

func New(rt *command.Runtime) *REPL {
	return &REPL{
		runtime:  rt,
		registry: command.NewRegistry(),
	}
}

// Run loops over input lines until exit or EOF.
func (r *REPL) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "codearena> ",
		HistoryFile:     historyPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("init readline failed: %w", err)
	}
	defer rl.Close()

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read line failed: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if done := r.dispatch(ctx, line); done {
			return nil
		}
	}
}

// RunOnce executes a single command line and exits.
func (r *REPL) RunOnce(ctx context.Context, args []string) error {
	return r.execute(ctx, args)
}

// dispatch runs one line and reports whether the shell should exit.
func (r *REPL) dispatch(ctx context.Context, line string) bool {
	args, err := shlex.Split(line)
	if err != nil {
		fmt.Fprintf(r.runtime.Out, "parse error: %v\n", err)
		return false
	}
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "exit", "quit":
		return true
	case "help":
		r.registry.PrintUsage(r.runtime.Out)
		return false
	}

	// Long-running commands stop on Ctrl-C without leaving the shell.
	cmdCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT)
	err = r.execute(cmdCtx, args)
	stop()
	if err != nil {
		fmt.Fprintf(r.runtime.Out, "error: %v\n", err)
	}
	return false
}

func (r *REPL) execute(ctx context.Context, args []string) error {
	cmd, ok := r.registry.Lookup(args[0])
	if !ok {
		r.registry.PrintUsage(r.runtime.Out)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return cmd.Run(ctx, r.runtime, args[1:])
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".codearena_history")
}
