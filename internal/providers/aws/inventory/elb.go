package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	elbv2svc "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

// requestLookback is the window over which load balancer traffic is summed.
const requestLookback = 7 * 24 * time.Hour

// collectLoadBalancers pages through all ELBv2 load balancers in region.
// Application Load Balancers are enriched with their CloudWatch RequestCount
// over the lookback window ending at now. Other types report -1 (unknown).
func collectLoadBalancers(
	ctx context.Context,
	elb elbClient,
	cw cwClient,
	region string,
	now time.Time,
) ([]models.AWSLoadBalancer, error) {
	paginator := elbv2svc.NewDescribeLoadBalancersPaginator(elb, &elbv2svc.DescribeLoadBalancersInput{})

	var lbs []models.AWSLoadBalancer
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("DescribeLoadBalancers page: %w", err)
		}
		for _, lb := range page.LoadBalancers {
			lbs = append(lbs, toLoadBalancer(lb, region))
		}
	}

	start := now.Add(-requestLookback)
	for i := range lbs {
		if lbs[i].Type == string(elbv2types.LoadBalancerTypeEnumApplication) {
			lbs[i].RequestCount = fetchLBRequestCount(ctx, cw, lbs[i].LoadBalancerARN, start, now)
		}
	}
	return lbs, nil
}

func toLoadBalancer(lb elbv2types.LoadBalancer, region string) models.AWSLoadBalancer {
	var state string
	if lb.State != nil {
		state = string(lb.State.Code)
	}

	return models.AWSLoadBalancer{
		LoadBalancerARN:  aws.ToString(lb.LoadBalancerArn),
		LoadBalancerName: aws.ToString(lb.LoadBalancerName),
		Region:           region,
		Type:             string(lb.Type),
		State:            state,
		RequestCount:     -1,
	}
}

// fetchLBRequestCount sums RequestCount for an ALB over [start, end) at
// 1-day granularity. The LoadBalancer dimension is the ARN suffix after
// ":loadbalancer/" (app/<name>/<id>).
//
// A failed call returns -1. No datapoints means no traffic: CloudWatch only
// publishes RequestCount for periods with requests.
func fetchLBRequestCount(ctx context.Context, cw cwClient, lbARN string, start, end time.Time) int64 {
	const marker = ":loadbalancer/"
	idx := strings.Index(lbARN, marker)
	if idx < 0 {
		return -1
	}
	lbDim := lbARN[idx+len(marker):]

	out, err := cw.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String("AWS/ApplicationELB"),
		MetricName: aws.String("RequestCount"),
		Dimensions: []cwtypes.Dimension{
			{
				Name:  aws.String("LoadBalancer"),
				Value: aws.String(lbDim),
			},
		},
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(86400),
		Statistics: []cwtypes.Statistic{cwtypes.StatisticSum},
	})
	if err != nil {
		return -1
	}

	var total float64
	for _, dp := range out.Datapoints {
		if dp.Sum != nil {
			total += *dp.Sum
		}
	}
	return int64(total)
}
