// Package inventory collects the AWS resource inventory and cost history of
// one account and normalises it into models.AWSData.
package inventory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/providers"
	"github.com/pankaj-dahiya-devops/spendscan/internal/providers/aws/common"
)

// DefaultCostHistoryMonths is the trailing window of the cost history.
const DefaultCostHistoryMonths = 6

// accountLoader resolves and verifies static credentials.
type accountLoader interface {
	Load(ctx context.Context, creds common.StaticCredentials) (*common.AccountConfig, error)
}

// Options configures a Collector. Zero values select the defaults.
type Options struct {
	// Regions is the candidate region list; the home region is always
	// scanned first.
	Regions []string

	MaxConcurrentRegions int
	CostHistoryMonths    int

	Logger *zap.Logger

	// Now is the clock used for lookback windows. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if len(o.Regions) == 0 {
		o.Regions = DefaultRegions
	}
	if o.MaxConcurrentRegions <= 0 {
		o.MaxConcurrentRegions = DefaultMaxConcurrentRegions
	}
	if o.CostHistoryMonths <= 0 {
		o.CostHistoryMonths = DefaultCostHistoryMonths
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Collector is the providers.Collector for AWS connections.
//
// Credentials: access_key_id and secret_access_key (required), optional
// session_token and region. The home region falls back to the connection's
// "region" metadata, then us-east-1.
type Collector struct {
	loader     accountLoader
	factory    clientFactory
	aggregator *RegionAggregator
	opts       Options
}

// NewCollector returns a collector backed by the real AWS SDK.
func NewCollector(opts Options) *Collector {
	return newCollector(common.NewLoader(), newDefaultClients, opts)
}

func newCollector(loader accountLoader, factory clientFactory, opts Options) *Collector {
	opts = opts.withDefaults()
	log := opts.Logger.Named("collector.aws")
	opts.Logger = log
	return &Collector{
		loader:     loader,
		factory:    factory,
		aggregator: newRegionAggregator(factory, opts.MaxConcurrentRegions, log),
		opts:       opts,
	}
}

// Provider implements providers.Collector.
func (c *Collector) Provider() models.Provider { return models.ProviderAWS }

// Collect verifies the credentials with STS, then gathers the regional
// inventory, the global S3 inventory and the cost history concurrently.
//
// Restricted tiers scan only the home region and skip the cost history.
func (c *Collector) Collect(
	ctx context.Context,
	conn models.Connection,
	creds providers.Credentials,
	tier models.Tier,
) (*models.ProviderData, error) {
	if err := creds.Require("access_key_id", "secret_access_key"); err != nil {
		return nil, providers.NewConnectionError(models.ProviderAWS, "invalid credentials", err)
	}

	home := creds.Get("region")
	if home == "" {
		home = conn.MetadataValue("region")
	}

	acct, err := c.loader.Load(ctx, common.StaticCredentials{
		AccessKeyID:     creds.Get("access_key_id"),
		SecretAccessKey: creds.Get("secret_access_key"),
		SessionToken:    creds.Get("session_token"),
		Region:          home,
	})
	if err != nil {
		return nil, providers.NewConnectionError(models.ProviderAWS, "identity check failed", err)
	}

	log := c.opts.Logger.With(
		zap.String("connection_id", conn.ID),
		zap.String("account_id", acct.AccountID),
	)

	data := &models.ProviderData{
		Provider: models.ProviderAWS,
		AWS: &models.AWSData{
			AccountID:  acct.AccountID,
			HomeRegion: acct.Region,
		},
	}

	var mu sync.Mutex
	warn := func(category, region string, err error) {
		msg := category
		if region != "" {
			msg += " (" + region + ")"
		}
		msg += ": " + err.Error()

		mu.Lock()
		data.Warn(msg)
		mu.Unlock()

		log.Warn("aws sub-call failed",
			zap.String("category", category),
			zap.String("region", region),
			zap.Error(err),
		)
	}

	regions := []string{acct.Region}
	if !tier.Restricted() {
		regions = RegionList(acct.Region, c.opts.Regions)
	}
	now := c.opts.Now().UTC()
	homeClients := c.factory(acct.Config)

	var g errgroup.Group
	g.Go(func() error {
		data.AWS.Regions = c.aggregator.Aggregate(ctx, acct, regions, now, warn)
		return nil
	})
	g.Go(func() error {
		buckets, err := collectBuckets(ctx, homeClients.S3, func(region string) s3Client {
			return c.factory(acct.ForRegion(region)).S3
		}, warn)
		if err != nil {
			warn("s3", "", err)
			return nil
		}
		data.AWS.Buckets = buckets
		return nil
	})
	if !tier.Restricted() {
		g.Go(func() error {
			history, err := collectCostHistory(ctx, homeClients.CE, now, c.opts.CostHistoryMonths)
			if err != nil {
				warn("cost_history", "", err)
				return nil
			}
			data.AWS.CostHistory = history
			return nil
		})
	}
	_ = g.Wait()

	log.Info("aws collection finished",
		zap.Int("regions", len(regions)),
		zap.Int("resources", data.AWS.ResourceCount()),
		zap.Bool("degraded", data.Degraded),
	)
	return data, nil
}

var _ providers.Collector = (*Collector)(nil)
