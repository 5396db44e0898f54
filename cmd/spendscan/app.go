package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/spendscan/internal/classifier"
	"github.com/pankaj-dahiya-devops/spendscan/internal/config"
	"github.com/pankaj-dahiya-devops/spendscan/internal/engine"
	"github.com/pankaj-dahiya-devops/spendscan/internal/llm"
	"github.com/pankaj-dahiya-devops/spendscan/internal/lock"
	"github.com/pankaj-dahiya-devops/spendscan/internal/logging"
	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/policy"
	"github.com/pankaj-dahiya-devops/spendscan/internal/pricing"
	"github.com/pankaj-dahiya-devops/spendscan/internal/providers"
	"github.com/pankaj-dahiya-devops/spendscan/internal/providers/aws/inventory"
	"github.com/pankaj-dahiya-devops/spendscan/internal/providers/saas"
	"github.com/pankaj-dahiya-devops/spendscan/internal/providers/saas/github"
	"github.com/pankaj-dahiya-devops/spendscan/internal/providers/saas/sentry"
	"github.com/pankaj-dahiya-devops/spendscan/internal/providers/saas/vercel"
	"github.com/pankaj-dahiya-devops/spendscan/internal/rules"
	"github.com/pankaj-dahiya-devops/spendscan/internal/snapshot"
	"github.com/pankaj-dahiya-devops/spendscan/internal/store"
)

// app holds the components one CLI invocation needs.
type app struct {
	cfg          *config.Config
	log          *zap.Logger
	store        *store.GormStore
	orchestrator *engine.Orchestrator
	snapshots    *snapshot.Service
	redis        *redis.Client
}

// loadConfig reads the configuration selected by the root flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.NewFileLoader(path).Load()
	if err != nil {
		return nil, err
	}
	if dsn, _ := cmd.Flags().GetString("db"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	return cfg, nil
}

// newApp wires the store, collectors, classifier, lock and services.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return nil, err
	}

	st, err := store.OpenSQLite(cfg.Database.DSN, log)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, store: st}

	pol, err := loadPolicy(cfg.PolicyPath)
	if err != nil {
		a.close()
		return nil, err
	}

	locker, err := a.newLocker(cmd.Context())
	if err != nil {
		a.close()
		return nil, err
	}

	recommender := llm.NewRecommender(log)
	if cfg.LLM.Provider != "none" {
		log.Warn("no built-in backend for llm provider; using template recommendations",
			zap.String("provider", cfg.LLM.Provider))
	}

	a.orchestrator = engine.NewOrchestrator(engine.Params{
		Store:       st,
		Collectors:  newCollectors(cfg, log),
		Credentials: providers.PlaintextResolver{},
		Classifier:  classifier.New(),
		Tiers:       engine.StaticTier(models.Tier(cfg.Scan.Tier)),
		Locker:      locker,
		Annotator:   recommender,
		Options: engine.Options{
			StalenessWindow:          cfg.Scan.StalenessWindow,
			MaxConcurrentConnections: cfg.Scan.MaxConcurrentConnections,
			CollectorTimeout:         cfg.Scan.CollectorTimeout,
			LockTTL:                  cfg.Scan.LockTTL,
			Policy:                   pol,
			Converter:                pricing.Converter{Rate: cfg.Pricing.ConversionRate},
			Logger:                   log,
		},
	})
	a.snapshots = snapshot.NewService(st, nil, log)
	return a, nil
}

func (a *app) newLocker(ctx context.Context) (lock.Locker, error) {
	if a.cfg.Redis.Addr == "" {
		return lock.NewLocal(), nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	locker, rdb, err := lock.DialRedis(ctx, a.cfg.Redis.Addr)
	if err != nil {
		return nil, err
	}
	a.redis = rdb
	return locker, nil
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = a.log.Sync()
}

func newCollectors(cfg *config.Config, log *zap.Logger) *providers.Registry {
	httpClient := &http.Client{Timeout: cfg.SaaS.Timeout}
	saasOpts := func(base string) saas.Options {
		return saas.Options{
			BaseURL:    base,
			HTTPClient: httpClient,
			Logger:     log,
			RateLimit:  cfg.SaaS.RateLimit,
			Burst:      cfg.SaaS.Burst,
		}
	}
	return providers.NewRegistry(
		inventory.NewCollector(inventory.Options{
			Regions:              cfg.AWS.Regions,
			MaxConcurrentRegions: cfg.AWS.MaxConcurrentRegions,
			CostHistoryMonths:    cfg.AWS.CostHistoryMonths,
			Logger:               log,
		}),
		github.NewCollector(saasOpts(cfg.SaaS.GitHubURL)),
		vercel.NewCollector(saasOpts(cfg.SaaS.VercelURL)),
		sentry.NewCollector(saasOpts(cfg.SaaS.SentryURL)),
	)
}

// loadPolicy reads and validates the optional policy file.
func loadPolicy(path string) (*policy.PolicyConfig, error) {
	if path == "" {
		return nil, nil
	}
	pol, err := policy.LoadPolicy(path)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	if errs := policy.Validate(pol, rules.AllCheckIDs()); len(errs) > 0 {
		return nil, fmt.Errorf("invalid policy %s: %v", path, errs[0])
	}
	return pol, nil
}

// withApp builds the app, runs fn and releases resources.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}
