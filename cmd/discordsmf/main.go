// Command discordsmf bridges messages from one Discord channel into a
// rotating log file, with a periodic heartbeat meant to eventually feed an
// SMF forum board.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/smf-tools/discordsmf/internal/bot"
	"github.com/smf-tools/discordsmf/internal/config"
	"github.com/smf-tools/discordsmf/internal/logging"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s <config-file>\n", os.Args[0])
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(flag.Arg(0))
	if err != nil {
		// No logger yet.
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.Setup(cfg.LogPath)
	if err != nil {
		// Guess there's no logging: run on with the console sink only.
		logger = logging.Console()
		logger.Warn("Log file unavailable, continuing without one", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	sess, err := bot.New(cfg, logger)
	if err != nil {
		logger.Error("Startup failed", zap.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Shutting down...")
		cancel()
	}()

	logger.Info("=== STARTED ===")
	if err := sess.Run(ctx); err != nil {
		logger.Error("Session ended with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("=== STOPPED ===")
}
