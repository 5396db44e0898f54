package rules

import (
	"fmt"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/policy"
	"github.com/pankaj-dahiya-devops/spendscan/internal/pricing"
)

const (
	dynamoRuleID = "AWS_DYNAMODB"

	defaultDynamoMaxItems = 1000.0
)

// AWSDynamoDBRule flags small tables billed in PROVISIONED mode, where
// on-demand billing would cost less.
type AWSDynamoDBRule struct{}

func (r AWSDynamoDBRule) ID() string   { return dynamoRuleID }
func (r AWSDynamoDBRule) Name() string { return "DynamoDB Tables" }

func (r AWSDynamoDBRule) Evaluate(ctx RuleContext) []models.Finding {
	data := ctx.AWS()
	if data == nil {
		return nil
	}

	maxItems := policy.GetThreshold(CheckDynamoOverprovisoned, "max_items", defaultDynamoMaxItems, ctx.Policy)

	var findings []models.Finding
	for _, rd := range data.Regions {
		for _, tbl := range rd.DynamoDBTables {
			res := resource{
				name:   regional(tbl.Region, tbl.TableName),
				kind:   models.ResourceAWSDynamoDB,
				region: tbl.Region,
				raw: map[string]any{
					"billing_mode":   tbl.BillingMode,
					"item_count":     tbl.ItemCount,
					"read_capacity":  tbl.ReadCapacity,
					"write_capacity": tbl.WriteCapacity,
				},
			}
			if tbl.BillingMode == "PROVISIONED" && float64(tbl.ItemCount) < maxItems &&
				policy.IsEnabled(CheckDynamoOverprovisoned, ctx.Policy) {
				findings = append(findings, waste(ctx, CheckDynamoOverprovisoned, res, models.StatusDowngradePossible,
					ctx.Converter.Convert(pricing.DynamoDBProvisionedUSD),
					fmt.Sprintf("Provisioned capacity for a table with %d items; on-demand billing is cheaper.", tbl.ItemCount)))
				continue
			}
			findings = append(findings, active(ctx, dynamoRuleID, res,
				fmt.Sprintf("%s table with %d items.", tbl.BillingMode, tbl.ItemCount)))
		}
	}
	return findings
}
