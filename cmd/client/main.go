package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"PsyDesk/internal/cli/commands"
	"PsyDesk/internal/config"

	"go.uber.org/zap"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// Load unified config (env + flags)
	cfg := config.NewConfig()

	if cfg.Version {
		printVersion()
		return
	}

	if cfg.Verbose {
		// development-логгер пишет в stderr и не мешает выводу команд
		if logger, err := zap.NewDevelopment(); err == nil {
			defer logger.Sync()
			commands.Logger = logger.Sugar()
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// dispatcher
	exitCode := commands.Dispatch(ctx, cfg, flag.Args())
	if exitCode == 0 {
		return
	}
	os.Exit(exitCode)
}

func printVersion() {
	fmt.Printf("PsyDesk CLI\nVersion: %s\nBuild date: %s\n", version, buildDate)
}
