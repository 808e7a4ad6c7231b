package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"rhystmorgan/phoneterm/internal/audit"
	"rhystmorgan/phoneterm/internal/config"
	"rhystmorgan/phoneterm/internal/contactbook"
	"rhystmorgan/phoneterm/internal/logging"
	"rhystmorgan/phoneterm/internal/storage"
)

type rootFlags struct {
	configPath string
	dataDir    string
	verbose    bool
}

// runtime is everything a command needs, wired in startup order.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	backend storage.Backend
	journal *audit.Journal
	store   *contactbook.Store
}

func (f *rootFlags) loadConfig() (*config.Config, error) {
	path := f.configPath
	if path == "" && f.dataDir != "" {
		path = config.PathIn(f.dataDir)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if f.dataDir != "" {
		cfg.SetDataDir(f.dataDir)
	}
	if f.verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// notifierFunc builds the notifier once the config, and with it the theme,
// is known.
type notifierFunc func(cfg *config.Config) contactbook.Notifier

func (f *rootFlags) open(newNotifier notifierFunc) (*runtime, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	backend, err := storage.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	var repoOpts []storage.RepositoryOption
	if cfg.Encrypted() {
		repoOpts = append(repoOpts, storage.WithSealer(storage.NewSealer(cfg.Passphrase)))
	}
	repo := storage.NewContactRepository(backend, repoOpts...)

	journal, err := audit.NewJournal(cfg.DataDir, audit.WithLogger(logger.Named("audit")))
	if err != nil {
		_ = backend.Close()
		_ = logger.Sync()
		return nil, err
	}

	store := contactbook.New(repo, newNotifier(cfg),
		contactbook.WithRecorder(journal),
		contactbook.WithLogger(logger.Named("contactbook")),
	)

	logger.Debug("runtime ready",
		zap.String("data_dir", cfg.DataDir),
		zap.String("backend", cfg.Backend),
		zap.Bool("encrypted", cfg.Encrypted()))

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		backend: backend,
		journal: journal,
		store:   store,
	}, nil
}

func (r *runtime) Close() error {
	err := errors.Join(r.journal.Close(), r.backend.Close())
	_ = r.logger.Sync()
	return err
}

// openLoaded opens the runtime and reads the stored contacts.
func (f *rootFlags) openLoaded(ctx context.Context, newNotifier notifierFunc) (*runtime, error) {
	rt, err := f.open(newNotifier)
	if err != nil {
		return nil, err
	}
	if err := rt.store.Load(ctx); err != nil {
		_ = rt.Close()
		return nil, err
	}
	return rt, nil
}
