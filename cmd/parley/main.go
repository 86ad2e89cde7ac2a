package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"parley/internal/app"
	"parley/pkg/config"
	"parley/pkg/logger"
	"parley/pkg/shutdown"
)

// build metadata, set via ldflags during build/release
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load(".env")

	dbVal, cfgVal, metricsVal, setFlags := config.ParseCommandFlags()

	// config file path: flag wins over env
	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])

	cfg, envUsed, err := config.LoadEffective(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	defer logger.Sync()

	// flags win over env/config when explicitly set
	dbPath := dbVal
	if !setFlags["db"] && cfg.Storage.DBPath != "" {
		dbPath = cfg.Storage.DBPath
	}
	metricsAddr := metricsVal
	if !setFlags["metrics-addr"] && cfg.Metrics.Addr != "" {
		metricsAddr = cfg.Metrics.Addr
	}

	source := "flags"
	switch {
	case envUsed:
		source = "env"
	default:
		if _, err := config.Load(cfgPath); err == nil {
			source = "config"
		}
	}

	eff := config.Effective{
		Config:      cfg,
		DBPath:      dbPath,
		MetricsAddr: metricsAddr,
		Source:      source,
	}

	a, err := app.New(eff, version, commit, buildDate)
	if err != nil {
		shutdown.Abort("startup failed", err, dbPath, 0)
	}

	ctx, stop := shutdown.SetupSignalHandler(context.Background())
	defer stop()

	if err := a.Run(ctx); err != nil {
		_ = a.Close()
		shutdown.Abort("runtime error", err, dbPath, 0)
	}
	if err := a.Close(); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
