// Command import copies the previous site's MongoDB data into MySQL.
package main

import (
	"context"
	"flag"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bhutan-travel/core/internal/config"
	"github.com/bhutan-travel/core/internal/database"
	"github.com/bhutan-travel/core/internal/modules/storage/legacyimport"
	"github.com/bhutan-travel/core/internal/pkg/nativelog"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (default "+config.DefaultConfigPath+")")
	mongoURI := flag.String("mongo", "", "MongoDB URI, overrides legacy.mongo_uri")
	mongoDB := flag.String("db", "", "MongoDB database, overrides legacy.database")
	dryRun := flag.Bool("dry-run", false, "Map every document without writing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("failed to load config", zap.Error(err))
	}
	logger, err := nativelog.NewZapLogger("", cfg.IsDev())
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	uri := firstNonEmpty(*mongoURI, cfg.Legacy.MongoURI)
	name := firstNonEmpty(*mongoDB, cfg.Legacy.Database)
	if uri == "" {
		logger.Fatal("no MongoDB URI, set legacy.mongo_uri or pass -mongo")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg, true)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	src, err := legacyimport.Dial(ctx, uri, name)
	if err != nil {
		logger.Fatal("mongo", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = src.Close(closeCtx)
	}()

	start := time.Now()
	reports, err := legacyimport.New(src, db,
		legacyimport.WithLogger(logger),
		legacyimport.WithDryRun(*dryRun),
	).Run(ctx)
	if err != nil {
		logger.Error("import aborted", zap.Error(err))
		return
	}

	imported, skipped := 0, 0
	for _, r := range reports {
		imported += r.Imported
		skipped += r.Skipped
	}
	logger.Info("import finished",
		zap.Bool("dry_run", *dryRun),
		zap.Int("imported", imported),
		zap.Int("skipped", skipped),
		zap.Duration("took", time.Since(start)),
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
