package main

import (
	"context"
	"flag"
	"time"

	"github.com/yaldosari/sms-expense-tracker/internal/categorize"
	"github.com/yaldosari/sms-expense-tracker/internal/config"
	"github.com/yaldosari/sms-expense-tracker/internal/domain"
	"github.com/yaldosari/sms-expense-tracker/internal/infra/bigquery"
	"github.com/yaldosari/sms-expense-tracker/internal/logger"
	"github.com/yaldosari/sms-expense-tracker/internal/merchant"
	"github.com/yaldosari/sms-expense-tracker/internal/taxonomy"
)

func main() {
	log := logger.New()

	category := flag.String("category", domain.CategoryOther, "recategorize transactions currently in this category")
	apply := flag.Bool("apply", false, "persist changes; default is a dry-run preview")
	useAI := flag.Bool("use-ai", false, "enable the AI fallback for unresolved merchants")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Loading configuration failed")
	}
	if cfg.BigQuery.ProjectID == "" {
		log.Fatal().Msg("Error: bigquery.project_id is not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	tax := taxonomy.Default()
	if cfg.Taxonomy.Path != "" {
		if tax, err = taxonomy.Load(cfg.Taxonomy.Path); err != nil {
			log.Fatal().Err(err).Msg("Loading taxonomy failed")
		}
	}
	cache, err := merchant.LoadCache(cfg.Cache.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Loading merchant cache failed")
	}

	var classifier categorize.Classifier
	if *useAI && cfg.AI.Enabled {
		gc, err := categorize.NewGeminiClassifier(ctx, cfg.AI.Model)
		if err != nil {
			log.Fatal().Err(err).Msg("Creating AI classifier failed")
		}
		classifier = gc
	}

	store, err := bigquery.NewStore(ctx, cfg.BigQuery.ProjectID, cfg.BigQuery.DatasetID, cfg.BigQuery.Table)
	if err != nil {
		log.Fatal().Err(err).Msg("Creating transaction store failed")
	}
	defer store.Close()

	r := categorize.NewRecategorizer(
		store, cache, tax, classifier,
		time.Duration(cfg.AI.TimeoutSec)*time.Second,
		int64(cfg.AI.MaxConcurrent),
		log,
	)

	mode := "preview"
	run := r.Preview
	if *apply {
		mode = "apply"
		run = r.Apply
	}
	log.Info().Str("mode", mode).Str("category", *category).Bool("use_ai", classifier != nil).Msg("Starting recategorization")

	changes, degs, err := run(ctx, *category)
	if err != nil {
		log.Fatal().Err(err).Msg("Recategorization failed")
	}

	for _, c := range changes {
		log.Info().
			Str("transaction_id", c.TransactionID).
			Str("merchant", c.MerchantKey).
			Str("from", c.OldCategory).
			Str("to", c.NewCategory).
			Str("provenance", string(c.Provenance)).
			Msg("change")
	}
	for _, d := range degs {
		log.Warn().
			Str("merchant", d.MerchantKey).
			Str("kind", string(d.Kind)).
			Msg("degraded to Other")
	}

	if *apply {
		if err := cache.Flush(); err != nil {
			log.Fatal().Err(err).Msg("Flushing merchant cache failed")
		}
	}
	log.Info().Str("mode", mode).Int("changes", len(changes)).Int("degraded", len(degs)).Msg("Recategorization complete")
}
