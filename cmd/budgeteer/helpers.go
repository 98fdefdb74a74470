package main

import (
	"context"

	"github.com/spf13/viper"

	"github.com/mdejong/budgeteer/internal/classifier"
	"github.com/mdejong/budgeteer/internal/config"
	"github.com/mdejong/budgeteer/internal/engine"
	"github.com/mdejong/budgeteer/internal/scoring"
	"github.com/mdejong/budgeteer/internal/service"
	"github.com/mdejong/budgeteer/internal/storage"
)

// openStorage opens the configured SQLite database and brings the schema
// up to date. Callers own Close.
func openStorage(ctx context.Context) (service.Storage, error) {
	dbPath := config.ExpandPath(viper.GetString("database.path"))
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// automationConfig builds the sweep policy from configuration.
func automationConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.AccountAllowlist = viper.GetStringSlice("automation.account_allowlist")
	cfg.CategoryExcludelist = viper.GetIntSlice("automation.category_excludelist")
	cfg.ConfidenceThreshold = viper.GetFloat64("automation.confidence_threshold")
	cfg.SuggestionThreshold = viper.GetFloat64("scoring.suggestion_threshold")
	cfg.RetentionDays = viper.GetInt("automation.retention_days")
	return cfg
}

// trainerConfig builds training hyperparameters from configuration.
func trainerConfig() classifier.TrainerConfig {
	cfg := classifier.DefaultTrainerConfig()
	cfg.MinExamplesPerCategory = viper.GetInt("training.min_examples")
	cfg.ApprovalF1 = viper.GetFloat64("training.approval_f1")
	return cfg
}

// newOrchestrator wires the full suggestion pipeline on top of storage.
func newOrchestrator(store service.Storage) *engine.Orchestrator {
	scorer := scoring.NewEngine(store)
	predictor := classifier.NewPredictor(store)
	return engine.NewOrchestrator(store, scorer, predictor, automationConfig())
}
