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

// prefill warms the merchant cache from the merchants already stored in
// BigQuery, so a later AI-assisted run only pays for genuinely new merchants.
func main() {
	log := logger.New()

	useAI := flag.Bool("use-ai", false, "classify unresolved merchants with the AI fallback")
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
	engine := categorize.NewEngine(
		cache, tax, classifier,
		time.Duration(cfg.AI.TimeoutSec)*time.Second,
		int64(cfg.AI.MaxConcurrent),
		log,
	)

	store, err := bigquery.NewStore(ctx, cfg.BigQuery.ProjectID, cfg.BigQuery.DatasetID, cfg.BigQuery.Table)
	if err != nil {
		log.Fatal().Err(err).Msg("Creating transaction store failed")
	}
	defer store.Close()

	keys, err := store.ListDistinctMerchants(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Listing merchants failed")
	}
	log.Info().Int("merchants", len(keys)).Int("cached", cache.Len()).Msg("Starting cache prefill")

	resolved := 0
	for _, key := range keys {
		asn := engine.Categorize(ctx, key)
		if asn.Category != domain.CategoryOther {
			resolved++
		}
	}

	if err := cache.Flush(); err != nil {
		log.Fatal().Err(err).Msg("Flushing merchant cache failed")
	}
	log.Info().
		Int("merchants", len(keys)).
		Int("resolved", resolved).
		Int("cached", cache.Len()).
		Int("degraded", len(engine.DrainDegradations())).
		Msg("Prefill complete")
}
