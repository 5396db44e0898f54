package inventory

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	ce "github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ---------------------------------------------------------------------------
// Narrow client interfaces
//
// Each interface lists only the SDK operations used by this package.
// The real *ec2.Client, *rds.Client, etc. satisfy these automatically.
// Replace any field in inventoryClients with a stub struct in unit tests.
// ---------------------------------------------------------------------------

// ec2Client covers instances, addresses and volumes. It also satisfies
// ec2.DescribeInstancesAPIClient and ec2.DescribeVolumesAPIClient for the
// SDK v2 paginators.
type ec2Client interface {
	DescribeInstances(
		ctx context.Context,
		params *ec2svc.DescribeInstancesInput,
		optFns ...func(*ec2svc.Options),
	) (*ec2svc.DescribeInstancesOutput, error)

	DescribeAddresses(
		ctx context.Context,
		params *ec2svc.DescribeAddressesInput,
		optFns ...func(*ec2svc.Options),
	) (*ec2svc.DescribeAddressesOutput, error)

	DescribeVolumes(
		ctx context.Context,
		params *ec2svc.DescribeVolumesInput,
		optFns ...func(*ec2svc.Options),
	) (*ec2svc.DescribeVolumesOutput, error)
}

type rdsClient interface {
	DescribeDBInstances(
		ctx context.Context,
		params *rds.DescribeDBInstancesInput,
		optFns ...func(*rds.Options),
	) (*rds.DescribeDBInstancesOutput, error)
}

type elbClient interface {
	DescribeLoadBalancers(
		ctx context.Context,
		params *elbv2.DescribeLoadBalancersInput,
		optFns ...func(*elbv2.Options),
	) (*elbv2.DescribeLoadBalancersOutput, error)
}

// cwClient must be regional; metrics live in the region of the resource.
type cwClient interface {
	GetMetricStatistics(
		ctx context.Context,
		params *cloudwatch.GetMetricStatisticsInput,
		optFns ...func(*cloudwatch.Options),
	) (*cloudwatch.GetMetricStatisticsOutput, error)
}

type lambdaClient interface {
	ListFunctions(
		ctx context.Context,
		params *lambda.ListFunctionsInput,
		optFns ...func(*lambda.Options),
	) (*lambda.ListFunctionsOutput, error)
}

type dynamoClient interface {
	ListTables(
		ctx context.Context,
		params *dynamodb.ListTablesInput,
		optFns ...func(*dynamodb.Options),
	) (*dynamodb.ListTablesOutput, error)

	DescribeTable(
		ctx context.Context,
		params *dynamodb.DescribeTableInput,
		optFns ...func(*dynamodb.Options),
	) (*dynamodb.DescribeTableOutput, error)
}

type s3Client interface {
	ListBuckets(
		ctx context.Context,
		params *s3.ListBucketsInput,
		optFns ...func(*s3.Options),
	) (*s3.ListBucketsOutput, error)

	GetBucketLocation(
		ctx context.Context,
		params *s3.GetBucketLocationInput,
		optFns ...func(*s3.Options),
	) (*s3.GetBucketLocationOutput, error)

	ListObjectsV2(
		ctx context.Context,
		params *s3.ListObjectsV2Input,
		optFns ...func(*s3.Options),
	) (*s3.ListObjectsV2Output, error)
}

// ceClient is always pointed at us-east-1; Cost Explorer is global.
type ceClient interface {
	GetCostAndUsage(
		ctx context.Context,
		params *ce.GetCostAndUsageInput,
		optFns ...func(*ce.Options),
	) (*ce.GetCostAndUsageOutput, error)
}

// ---------------------------------------------------------------------------
// inventoryClients and factory
// ---------------------------------------------------------------------------

// inventoryClients holds the service clients for one region.
// All fields are interfaces; swap any with a mock in tests.
type inventoryClients struct {
	EC2      ec2Client
	RDS      rdsClient
	ELB      elbClient
	CW       cwClient
	Lambda   lambdaClient
	DynamoDB dynamoClient
	S3       s3Client
	CE       ceClient
}

// clientFactory creates inventoryClients from a regional aws.Config.
type clientFactory func(cfg aws.Config) *inventoryClients

// newDefaultClients is the production clientFactory.
func newDefaultClients(cfg aws.Config) *inventoryClients {
	ceCfg := cfg
	ceCfg.Region = "us-east-1"
	return &inventoryClients{
		EC2:      ec2svc.NewFromConfig(cfg),
		RDS:      rds.NewFromConfig(cfg),
		ELB:      elbv2.NewFromConfig(cfg),
		CW:       cloudwatch.NewFromConfig(cfg),
		Lambda:   lambda.NewFromConfig(cfg),
		DynamoDB: dynamodb.NewFromConfig(cfg),
		S3:       s3.NewFromConfig(cfg),
		CE:       ce.NewFromConfig(ceCfg),
	}
}
