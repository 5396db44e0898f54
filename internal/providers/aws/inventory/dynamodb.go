package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	dynamosvc "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamotypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

// collectDynamoDBTables lists every table in region and describes each one.
// A failed DescribeTable fails the whole category; a half-described table
// list would hide tables from the rules.
func collectDynamoDBTables(ctx context.Context, client dynamoClient, region string) ([]models.AWSDynamoDBTable, error) {
	paginator := dynamosvc.NewListTablesPaginator(client, &dynamosvc.ListTablesInput{})

	var names []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("ListTables page: %w", err)
		}
		names = append(names, page.TableNames...)
	}

	tables := make([]models.AWSDynamoDBTable, 0, len(names))
	for _, name := range names {
		out, err := client.DescribeTable(ctx, &dynamosvc.DescribeTableInput{TableName: aws.String(name)})
		if err != nil {
			return nil, fmt.Errorf("DescribeTable %s: %w", name, err)
		}
		if out.Table == nil {
			continue
		}
		tables = append(tables, toDynamoDBTable(out.Table, region))
	}
	return tables, nil
}

// toDynamoDBTable converts a table description. Tables created before
// on-demand billing existed carry no BillingModeSummary and are provisioned.
func toDynamoDBTable(t *dynamotypes.TableDescription, region string) models.AWSDynamoDBTable {
	mode := string(dynamotypes.BillingModeProvisioned)
	if t.BillingModeSummary != nil && t.BillingModeSummary.BillingMode != "" {
		mode = string(t.BillingModeSummary.BillingMode)
	}

	tbl := models.AWSDynamoDBTable{
		TableName:   aws.ToString(t.TableName),
		Region:      region,
		BillingMode: mode,
		ItemCount:   aws.ToInt64(t.ItemCount),
	}
	if pt := t.ProvisionedThroughput; pt != nil {
		tbl.ReadCapacity = aws.ToInt64(pt.ReadCapacityUnits)
		tbl.WriteCapacity = aws.ToInt64(pt.WriteCapacityUnits)
	}
	return tbl
}
