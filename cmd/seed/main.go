// Package main provides a CLI tool for loading dashboard feeds into the database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/exec"

	"dice/internal/config"
	"dice/internal/domain/feed"
	"dice/internal/infrastructure/storage/postgres"
	"dice/internal/infrastructure/storage/postgres/feed_repo"
	"dice/pkg/logger"
)

// dataset is the layout of a seed file.
type dataset struct {
	News    []feed.NewsItem `json:"news"`
	Alerts  []feed.Alert    `json:"alerts"`
	Signals []feed.Signal   `json:"signals"`
}

func main() {
	file := flag.String("file", "db/seed/sample.json", "JSON file with news, alerts and signals")
	migrate := flag.Bool("migrate", false, "run goose migrations from db/migrations first")
	flag.Parse()

	cfg, err := config.InitSeedConfig()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if *migrate {
		if err := runMigrations(cfg.DSN); err != nil {
			log.Fatalw("migration failed", "error", err)
		}
		log.Info("migrations applied")
	}

	data, err := readDataset(ctx, *file)
	if err != nil {
		log.Fatalw("failed to read seed file", "file", *file, "error", err)
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DSN))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)

	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := feed_repo.NewNewsRepo(txm).Upsert(ctx, data.News); err != nil {
			return fmt.Errorf("news: %w", err)
		}
		if err := feed_repo.NewAlertRepo(txm).Upsert(ctx, data.Alerts); err != nil {
			return fmt.Errorf("alerts: %w", err)
		}
		if err := feed_repo.NewSignalRepo(txm).Upsert(ctx, data.Signals); err != nil {
			return fmt.Errorf("signals: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Fatalw("failed to seed feeds", "error", err)
	}

	log.Infow("seeding completed successfully",
		"news", len(data.News),
		"alerts", len(data.Alerts),
		"signals", len(data.Signals),
	)
}

func readDataset(ctx context.Context, path string) (*dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var data dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	for i := range data.News {
		if err := data.News[i].Validate(ctx); err != nil {
			return nil, fmt.Errorf("news[%d]: %w", i, err)
		}
	}
	return &data, nil
}

func runMigrations(dsn string) error {
	cmd := exec.Command("goose", "-dir", "db/migrations", "postgres", dsn, "up")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
