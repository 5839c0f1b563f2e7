package main

import (
	"context"
	"flag"
	"time"

	"github.com/yaldosari/sms-expense-tracker/internal/categorize"
	"github.com/yaldosari/sms-expense-tracker/internal/config"
	"github.com/yaldosari/sms-expense-tracker/internal/extract"
	"github.com/yaldosari/sms-expense-tracker/internal/infra/bigquery"
	"github.com/yaldosari/sms-expense-tracker/internal/logger"
	"github.com/yaldosari/sms-expense-tracker/internal/merchant"
	"github.com/yaldosari/sms-expense-tracker/internal/pipeline"
	"github.com/yaldosari/sms-expense-tracker/internal/senderfilter"
	"github.com/yaldosari/sms-expense-tracker/internal/source"
	"github.com/yaldosari/sms-expense-tracker/internal/taxonomy"
)

func main() {
	log := logger.New()

	input := flag.String("input", "", "SMS export to process (local path or gs://bucket/object)")
	useAI := flag.Bool("use-ai", false, "enable the AI categorization fallback (requires ai config)")
	flag.Parse()

	if *input == "" {
		log.Fatal().Msg("Error: --input is required")
	}

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

	// Malformed templates or taxonomy invalidate every result, so fail before
	// reading any message.
	tax := taxonomy.Default()
	if cfg.Taxonomy.Path != "" {
		if tax, err = taxonomy.Load(cfg.Taxonomy.Path); err != nil {
			log.Fatal().Err(err).Msg("Loading taxonomy failed")
		}
	}
	specs := extract.BuiltinTemplates()
	if cfg.Extraction.TemplatesPath != "" {
		extra, err := extract.LoadTemplates(cfg.Extraction.TemplatesPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Loading templates failed")
		}
		specs = append(specs, extra...)
	}
	lib, err := extract.NewLibrary(specs)
	if err != nil {
		log.Fatal().Err(err).Msg("Compiling template library failed")
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
	categorizer := categorize.NewEngine(
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

	filter := senderfilter.New(cfg.Senders.Allowed, cfg.Senders.Enabled, cfg.Senders.Debug, log)

	msgs, err := source.Load(ctx, *input)
	if err != nil {
		log.Fatal().Err(err).Msg("Loading SMS export failed")
	}
	log.Info().Str("input", *input).Int("messages", len(msgs)).Msg("Starting extraction run")

	runner := pipeline.NewRunner(filter, extract.NewEngine(lib, cfg.Extraction.DefaultCurrency), categorizer, cache, store, cfg.Accounts.Own, cfg.Extraction.Concurrency, log)
	manifest, err := runner.Run(ctx, msgs)
	if manifest != nil {
		manifest.Log(log)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Run failed")
	}
}
