package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codearena/internal/cli/command"
	"codearena/internal/cli/config"
	"codearena/internal/cli/repl"
)

func main() {
	configPath := flag.String("config", "", "path to CLI config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt := command.NewRuntime(cfg, os.Stdout)
	defer rt.Close()

	shell := repl.New(rt)
	if args := flag.Args(); len(args) > 0 {
		if err := shell.RunOnce(ctx, args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if err := shell.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
