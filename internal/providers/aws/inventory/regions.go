package inventory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/providers/aws/common"
)

// DefaultRegions is the candidate list scanned in addition to the home region.
var DefaultRegions = []string{
	"us-east-1",
	"us-east-2",
	"us-west-1",
	"us-west-2",
	"eu-west-1",
	"eu-west-3",
	"eu-central-1",
	"ap-southeast-1",
	"ap-northeast-1",
}

// DefaultMaxConcurrentRegions is the number of regions collected in parallel.
const DefaultMaxConcurrentRegions = 5

// warnFunc records a failed sub-call. region is empty for global calls.
// Implementations must be safe for concurrent use.
type warnFunc func(category, region string, err error)

// RegionList returns home followed by candidates, de-duplicated, preserving
// candidate order. Empty entries are dropped.
func RegionList(home string, candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates)+1)
	var out []string
	for _, r := range append([]string{home}, candidates...) {
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// RegionAggregator fans collection out over regions and, within a region,
// over resource categories. Every failure is shielded: the failed category
// of that region comes back empty and is reported through warn while
// sibling calls continue.
type RegionAggregator struct {
	factory       clientFactory
	maxConcurrent int
	log           *zap.Logger
}

func newRegionAggregator(factory clientFactory, maxConcurrent int, log *zap.Logger) *RegionAggregator {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentRegions
	}
	return &RegionAggregator{factory: factory, maxConcurrent: maxConcurrent, log: log}
}

// Aggregate collects every region in regions and returns one entry per
// region in the same order. Regions not started before ctx is done come
// back empty with a warning.
func (a *RegionAggregator) Aggregate(
	ctx context.Context,
	acct *common.AccountConfig,
	regions []string,
	now time.Time,
	warn warnFunc,
) []models.AWSRegionData {
	results := make([]models.AWSRegionData, len(regions))
	started := make([]bool, len(regions))

	// Goroutines never return an error; errgroup is used for Wait only so a
	// failed region cannot cancel its siblings.
	sem := make(chan struct{}, a.maxConcurrent)
	var g errgroup.Group

REGIONS:
	for i, region := range regions {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break REGIONS
		}
		started[i] = true

		clients := a.factory(acct.ForRegion(region))
		g.Go(func() error {
			defer func() { <-sem }()
			results[i] = a.collectRegion(ctx, clients, region, now, warn)
			return nil
		})
	}
	_ = g.Wait()

	for i, region := range regions {
		if !started[i] {
			results[i] = models.AWSRegionData{Region: region}
			warn("region", region, fmt.Errorf("not scanned: %w", ctx.Err()))
		}
	}
	return results
}

// collectRegion gathers every category of one region concurrently.
func (a *RegionAggregator) collectRegion(
	ctx context.Context,
	clients *inventoryClients,
	region string,
	now time.Time,
	warn warnFunc,
) models.AWSRegionData {
	rd := models.AWSRegionData{Region: region}

	var g errgroup.Group
	g.Go(func() error {
		rd.EC2Instances = shield(warn, "ec2", region, func() ([]models.AWSEC2Instance, error) {
			return collectEC2Instances(ctx, clients.EC2, region)
		})
		return nil
	})
	g.Go(func() error {
		rd.ElasticIPs = shield(warn, "elastic_ip", region, func() ([]models.AWSElasticIP, error) {
			return collectElasticIPs(ctx, clients.EC2, region)
		})
		return nil
	})
	g.Go(func() error {
		rd.EBSVolumes = shield(warn, "ebs", region, func() ([]models.AWSEBSVolume, error) {
			return collectEBSVolumes(ctx, clients.EC2, region)
		})
		return nil
	})
	g.Go(func() error {
		rd.LambdaFunctions = shield(warn, "lambda", region, func() ([]models.AWSLambdaFunction, error) {
			return collectLambdaFunctions(ctx, clients.Lambda, region)
		})
		return nil
	})
	g.Go(func() error {
		rd.DynamoDBTables = shield(warn, "dynamodb", region, func() ([]models.AWSDynamoDBTable, error) {
			return collectDynamoDBTables(ctx, clients.DynamoDB, region)
		})
		return nil
	})
	g.Go(func() error {
		rd.RDSInstances = shield(warn, "rds", region, func() ([]models.AWSRDSInstance, error) {
			return collectRDSInstances(ctx, clients.RDS, region)
		})
		return nil
	})
	g.Go(func() error {
		rd.LoadBalancers = shield(warn, "elb", region, func() ([]models.AWSLoadBalancer, error) {
			return collectLoadBalancers(ctx, clients.ELB, clients.CW, region, now)
		})
		return nil
	})
	_ = g.Wait()

	a.log.Debug("region collected",
		zap.String("region", region),
		zap.Int("ec2", len(rd.EC2Instances)),
		zap.Int("ebs", len(rd.EBSVolumes)),
		zap.Int("rds", len(rd.RDSInstances)),
	)
	return rd
}

// shield runs fn and turns a failure into a warning and a nil slice.
func shield[T any](warn warnFunc, category, region string, fn func() ([]T, error)) []T {
	out, err := fn()
	if err != nil {
		warn(category, region, err)
		return nil
	}
	return out
}
