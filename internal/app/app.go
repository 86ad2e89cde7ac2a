package app

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"parley/internal/syncer"
	"parley/pkg/banner"
	"parley/pkg/config"
	"parley/pkg/guilds"
	"parley/pkg/identity"
	"parley/pkg/logger"
	"parley/pkg/messages"
	"parley/pkg/presence"
	"parley/pkg/snapshot"
	"parley/pkg/state"
	"parley/pkg/store"
	"parley/pkg/validation"
)

// App encapsulates the daemon components and lifecycle.
type App struct {
	eff       config.Effective
	version   string
	commit    string
	buildDate string

	persister *snapshot.Persister
	cancel    context.CancelFunc

	Messages *messages.Store
	Guilds   *guilds.Store
	Users    *identity.Store
	Voice    *presence.Store
}

// New initializes resources that do not require a running context: the
// runtime directory layout, the Pebble store, validation rules, and the
// hydrated domain stores. Call Run to start background services and block
// until shutdown.
func New(eff config.Effective, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	// validate effective config early and fail fast
	if err := validateConfig(eff); err != nil {
		return nil, err
	}

	if err := state.EnsureStateDirs(eff.DBPath); err != nil {
		return nil, fmt.Errorf("cannot prepare state dirs under %s: %w", eff.DBPath, err)
	}

	initValidation(eff)

	if err := store.Open(state.StorePath(eff.DBPath)); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", eff.DBPath, err)
	}

	a := &App{eff: eff, version: version, commit: commit, buildDate: buildDate}
	a.persister = snapshot.NewPersister(eff.Config.Snapshot.RPS, eff.Config.Snapshot.Burst)

	a.Messages = messages.New(a.persister)
	a.Guilds = guilds.New(a.persister)
	a.Users = identity.New(a.persister)
	a.Voice = presence.New(a.persister)

	if err := a.hydrate(); err != nil {
		_ = store.Close()
		return nil, err
	}

	return a, nil
}

// hydrate loads each store's persisted snapshot. A missing snapshot is not
// an error; a corrupt one is, so operators notice before mutations overwrite
// the blob.
func (a *App) hydrate() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"messages", a.Messages.Hydrate},
		{"servers", a.Guilds.Hydrate},
		{"users", a.Users.Hydrate},
		{"voice", a.Voice.Hydrate},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return fmt.Errorf("hydrate %s: %w", s.name, err)
		}
	}
	logger.Info("stores_hydrated",
		zap.Int("messages", len(a.Messages.Messages())),
		zap.Int("servers", len(a.Guilds.Servers())),
		zap.Int("users", len(a.Users.AllUsers())),
	)
	return nil
}

// Run starts the snapshot syncer and the metrics listener (if configured),
// and blocks until ctx is canceled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	a.printBanner()

	cronExpr := a.eff.Config.Snapshot.Cron
	if cronExpr == "" {
		cronExpr = syncer.DefaultCron
	}
	cancel, err := syncer.Start(ctx, cronExpr, a.persister)
	if err != nil {
		return err
	}
	a.cancel = cancel

	errCh := a.startMetrics(ctx)

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Close flushes dirty snapshots and closes the store. Safe to call after a
// canceled Run.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	if err := a.persister.Flush(); err != nil {
		logger.Error("final_flush_failed", zap.Error(err))
	}
	return store.Close()
}

// printBanner prints the startup banner and build info.
func (a *App) printBanner() {
	verStr := a.version
	if a.commit != "none" && a.commit != "" {
		verStr += " (" + a.commit + ")"
	}
	if a.buildDate != "unknown" && a.buildDate != "" {
		verStr += " @ " + a.buildDate
	}
	banner.Print(a.eff, verStr)
}

// initValidation builds validation rules from config and sets them globally.
func initValidation(eff config.Effective) {
	vr := validation.Rules{
		MaxContentLen: eff.Config.Validation.MaxContentLen,
		MaxImageLen:   eff.Config.Validation.MaxImageLen,
		RequireBody:   true,
	}
	if eff.Config.Validation.RequireBody != nil {
		vr.RequireBody = *eff.Config.Validation.RequireBody
	}
	validation.SetRules(vr)
}
