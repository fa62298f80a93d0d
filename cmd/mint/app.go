package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/waldmeta/mint"
	"github.com/waldmeta/mint/config"
	"github.com/waldmeta/mint/counter"
)

// app is what every command needs: configuration, a logger, a store and the
// minter built on them.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  counter.Store
	minter *mint.Minter
}

type globalFlags struct {
	configPath string
	logLevel   string
	backend    string
}

func newApp(flags *globalFlags, getenv func(string) string, logOut io.Writer) (*app, error) {
	loader := &config.Loader{Getenv: getenv}
	cfg, err := loader.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.backend != "" {
		cfg.Store.Backend = flags.backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := config.NewLogger(cfg.Log, logOut)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	store, err := config.OpenStore(cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("open counter store: %w", err)
	}

	m, err := mint.New(cfg.Mint, store, mint.WithLogger(logger))
	if err != nil {
		mint.CloseWithLog(store, logger, "counter store")
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, store: store, minter: m}, nil
}

func (a *app) Close() {
	mint.CloseWithLog(a.store, a.logger, "counter store")
}
