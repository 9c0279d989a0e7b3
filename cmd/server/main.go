package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeusync/mazearena/internal/core/arena"
	"github.com/zeusync/mazearena/internal/core/observability/log"
	"github.com/zeusync/mazearena/internal/injector"
	"github.com/zeusync/mazearena/internal/server"
)

func main() {
	cfg := server.DefaultConfig()
	var (
		arenaPath  string
		seed       int64
		seedPhrase string
		logLevel   string
	)

	flag.StringVar(&arenaPath, "arena", "", "arena YAML file; defaults apply when empty")
	flag.StringVar(&cfg.ListenAddr, "addr", cfg.ListenAddr, "HTTP listen address")
	flag.IntVar(&cfg.TickRate, "tick-rate", cfg.TickRate, "simulation ticks per second")
	flag.IntVar(&cfg.SnapshotRate, "snapshot-rate", cfg.SnapshotRate, "spectator snapshots per second")
	flag.IntVar(&cfg.Walkers, "walkers", cfg.Walkers, "demo walkers to spawn")
	flag.Int64Var(&seed, "seed", 0, "override the arena seed")
	flag.StringVar(&seedPhrase, "seed-phrase", "", "derive the arena seed from a phrase")
	flag.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "json or console")
	flag.Parse()

	cfg.LogLevel = log.ParseLevel(logLevel)

	acfg := arena.DefaultConfig()
	if arenaPath != "" {
		var err error
		if acfg, err = arena.LoadFile(arenaPath); err != nil {
			fmt.Fprintln(os.Stderr, "load arena:", err)
			os.Exit(1)
		}
	}
	if seed != 0 {
		acfg.Seed = seed
	}
	if seedPhrase != "" {
		acfg.SeedPhrase = seedPhrase
	}

	srv, cleanup, err := injector.InitializeServer(cfg, acfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init server:", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "start server:", err)
		return
	}

	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	if err := srv.Stop(stopCtx); err != nil {
		fmt.Fprintln(os.Stderr, "stop server:", err)
	}
}
