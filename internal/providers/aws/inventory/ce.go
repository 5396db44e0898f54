package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	ce "github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/shopspring/decimal"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

const ceDateLayout = "2006-01-02"

// costHistoryRange returns the Cost Explorer window covering the current
// month and the months-1 before it. end is exclusive (tomorrow).
func costHistoryRange(now time.Time, months int) (start, end string) {
	if months < 1 {
		months = 1
	}
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -(months - 1), 0).Format(ceDateLayout),
		now.AddDate(0, 0, 1).Format(ceDateLayout)
}

// collectCostHistory calls GetCostAndUsage at MONTHLY granularity grouped by
// SERVICE and returns one entry per month, oldest first, with services
// sorted by cost descending.
func collectCostHistory(ctx context.Context, client ceClient, now time.Time, months int) ([]models.AWSMonthlyCost, error) {
	start, end := costHistoryRange(now, months)

	byPeriod := make(map[string]*models.AWSMonthlyCost)
	totals := make(map[string]decimal.Decimal)

	var nextToken *string
	for {
		out, err := client.GetCostAndUsage(ctx, &ce.GetCostAndUsageInput{
			TimePeriod: &cetypes.DateInterval{
				Start: aws.String(start),
				End:   aws.String(end),
			},
			Granularity: cetypes.GranularityMonthly,
			Metrics:     []string{"UnblendedCost"},
			GroupBy: []cetypes.GroupDefinition{
				{
					Key:  aws.String("SERVICE"),
					Type: cetypes.GroupDefinitionTypeDimension,
				},
			},
			NextPageToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("GetCostAndUsage: %w", err)
		}

		for _, result := range out.ResultsByTime {
			if result.TimePeriod == nil {
				continue
			}
			periodStart := aws.ToString(result.TimePeriod.Start)
			month, ok := byPeriod[periodStart]
			if !ok {
				month = &models.AWSMonthlyCost{
					PeriodStart: periodStart,
					PeriodEnd:   aws.ToString(result.TimePeriod.End),
				}
				byPeriod[periodStart] = month
			}
			for _, group := range result.Groups {
				if len(group.Keys) == 0 {
					continue
				}
				metric, ok := group.Metrics["UnblendedCost"]
				if !ok {
					continue
				}
				amount := parseCost(metric.Amount)
				if amount.IsZero() {
					continue
				}
				cost, _ := amount.Float64()
				month.Services = append(month.Services, models.AWSServiceCost{
					Service: group.Keys[0],
					CostUSD: cost,
				})
				totals[periodStart] = totals[periodStart].Add(amount)
			}
		}

		if out.NextPageToken == nil {
			break
		}
		nextToken = out.NextPageToken
	}

	history := make([]models.AWSMonthlyCost, 0, len(byPeriod))
	for key, month := range byPeriod {
		month.TotalCostUSD, _ = totals[key].Round(2).Float64()
		sort.Slice(month.Services, func(i, j int) bool {
			if month.Services[i].CostUSD != month.Services[j].CostUSD {
				return month.Services[i].CostUSD > month.Services[j].CostUSD
			}
			return month.Services[i].Service < month.Services[j].Service
		})
		history = append(history, *month)
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].PeriodStart < history[j].PeriodStart
	})
	return history, nil
}

// parseCost parses a Cost Explorer amount string; malformed values are zero.
func parseCost(s *string) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
