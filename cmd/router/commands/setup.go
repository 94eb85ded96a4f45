package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayhangulbjk/ebs-insight/pkg/audit"
	auditstore "github.com/ayhangulbjk/ebs-insight/pkg/audit/store"
	"github.com/ayhangulbjk/ebs-insight/pkg/catalog"
	"github.com/ayhangulbjk/ebs-insight/pkg/config"
	"github.com/ayhangulbjk/ebs-insight/pkg/guard"
	"github.com/ayhangulbjk/ebs-insight/pkg/intent"
	"github.com/ayhangulbjk/ebs-insight/pkg/router"
	"github.com/ayhangulbjk/ebs-insight/pkg/service"
)

// loadConfig resolves the configuration from --config (or defaults) and
// applies the --catalog override.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	if path == "" {
		cfg = config.Default()
	} else {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}

	if dir, _ := cmd.Flags().GetString("catalog"); dir != "" {
		cfg.CatalogDir = dir
	}
	return cfg, nil
}

// buildEngine loads the catalog, trains the classifier model and assembles
// the full engine. The returned store lets callers wire a catalog watcher.
func buildEngine(cfg *config.Config) (*service.Engine, *catalog.Store, *intent.Classifier, error) {
	snap, err := catalog.Load(cfg.CatalogDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("catalog load failed: %w", err)
	}
	store := catalog.NewStore(snap)

	model := intent.TrainModel(snap, cfg.Classifier.ExtraNegativeSamples)
	classifier := intent.NewClassifier(model, cfg.Classifier)

	rtr := router.New(cfg.Router)
	chain := guard.DefaultChain(cfg.Guard.MaxPromptLength)

	as, err := auditstore.New(auditstore.Config{
		Backend:        cfg.Audit.Backend,
		MaxRecords:     cfg.Audit.MaxRecords,
		RedisAddress:   cfg.Audit.Redis.Address,
		RedisDatabase:  cfg.Audit.Redis.Database,
		RedisPassword:  cfg.Audit.Redis.Password,
		RedisKeyPrefix: cfg.Audit.Redis.KeyPrefix,
		RedisTTL:       time.Duration(cfg.Audit.Redis.TTLSeconds) * time.Second,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("audit store setup failed: %w", err)
	}
	recorder := audit.NewRecorder(as)

	engine := service.NewEngine(chain, classifier, rtr, store, recorder)
	return engine, store, classifier, nil
}
