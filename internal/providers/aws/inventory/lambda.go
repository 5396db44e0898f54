package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

// lambdaTimeLayout is the format of FunctionConfiguration.LastModified,
// e.g. "2024-01-15T10:20:30.000+0000".
const lambdaTimeLayout = "2006-01-02T15:04:05.000-0700"

// collectLambdaFunctions pages through all functions in region.
func collectLambdaFunctions(ctx context.Context, client lambdaClient, region string) ([]models.AWSLambdaFunction, error) {
	paginator := lambdasvc.NewListFunctionsPaginator(client, &lambdasvc.ListFunctionsInput{})

	var fns []models.AWSLambdaFunction
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("ListFunctions page: %w", err)
		}
		for _, fn := range page.Functions {
			fns = append(fns, toLambdaFunction(fn, region))
		}
	}
	return fns, nil
}

// toLambdaFunction converts an SDK function configuration. An unparseable
// LastModified leaves the zero time, which rules treat as unknown.
func toLambdaFunction(fn lambdatypes.FunctionConfiguration, region string) models.AWSLambdaFunction {
	var modified time.Time
	if s := aws.ToString(fn.LastModified); s != "" {
		if t, err := time.Parse(lambdaTimeLayout, s); err == nil {
			modified = t.UTC()
		}
	}
	return models.AWSLambdaFunction{
		FunctionName: aws.ToString(fn.FunctionName),
		Region:       region,
		Runtime:      string(fn.Runtime),
		MemoryMB:     aws.ToInt32(fn.MemorySize),
		LastModified: modified,
	}
}
