package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"lolapi/internal/scraper"
	"lolapi/pkg/database"
	"lolapi/pkg/utils"
)

func main() {
	cfg := utils.MustLoadConfig()
	logger := utils.NewLogger(cfg.Log)

	var (
		dbPath    = flag.String("db", cfg.Database.Path, "sqlite database path")
		mirrorURL = flag.String("mirror", "http://localhost:9000", "mirror server base URL, empty to skip")
		version   = flag.String("version", "", "Data Dragon patch, empty for latest")
		locale    = flag.String("locale", "en_US", "Data Dragon locale")
		timeout   = flag.Duration("timeout", 60*time.Second, "overall scrape timeout")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := database.Open(database.Config{Path: *dbPath})
	if err != nil {
		logger.Error("open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if _, err := database.Migrate(ctx, db); err != nil {
		logger.Error("migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	dd := scraper.NewDataDragonSource()
	dd.Version = *version
	dd.Locale = *locale
	sources := []scraper.Source{dd}
	if *mirrorURL != "" {
		sources = append(sources, scraper.NewMirrorSource(*mirrorURL))
	}

	champs, err := scraper.NewAggregator(logger, sources...).FetchAndMerge(ctx)
	if err != nil {
		logger.Error("scrape failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("merged champions", slog.Int("count", len(champs)))

	saved, err := scraper.SaveToDatabase(ctx, db, champs)
	if err != nil {
		logger.Error("save failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database populated", slog.String("path", *dbPath), slog.Int("saved", saved))
}
