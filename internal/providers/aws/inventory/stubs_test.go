package inventory

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	ce "github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamotypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/pankaj-dahiya-devops/spendscan/internal/providers/aws/common"
)

type stubEC2 struct {
	instances []ec2types.Instance
	addresses []ec2types.Address
	volumes   []ec2types.Volume
	err       error
}

func (s stubEC2) DescribeInstances(_ context.Context, _ *ec2svc.DescribeInstancesInput, _ ...func(*ec2svc.Options)) (*ec2svc.DescribeInstancesOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ec2svc.DescribeInstancesOutput{Reservations: []ec2types.Reservation{{Instances: s.instances}}}, nil
}

func (s stubEC2) DescribeAddresses(_ context.Context, _ *ec2svc.DescribeAddressesInput, _ ...func(*ec2svc.Options)) (*ec2svc.DescribeAddressesOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ec2svc.DescribeAddressesOutput{Addresses: s.addresses}, nil
}

func (s stubEC2) DescribeVolumes(_ context.Context, _ *ec2svc.DescribeVolumesInput, _ ...func(*ec2svc.Options)) (*ec2svc.DescribeVolumesOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ec2svc.DescribeVolumesOutput{Volumes: s.volumes}, nil
}

type stubRDS struct {
	instances []rdstypes.DBInstance
	err       error
}

func (s stubRDS) DescribeDBInstances(_ context.Context, _ *rds.DescribeDBInstancesInput, _ ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error) {
	return &rds.DescribeDBInstancesOutput{DBInstances: s.instances}, s.err
}

type stubELB struct {
	lbs []elbv2types.LoadBalancer
	err error
}

func (s stubELB) DescribeLoadBalancers(_ context.Context, _ *elbv2.DescribeLoadBalancersInput, _ ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error) {
	return &elbv2.DescribeLoadBalancersOutput{LoadBalancers: s.lbs}, s.err
}

type stubCW struct {
	sums []float64
	err  error
}

func (s stubCW) GetMetricStatistics(_ context.Context, _ *cloudwatch.GetMetricStatisticsInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := &cloudwatch.GetMetricStatisticsOutput{}
	for _, v := range s.sums {
		out.Datapoints = append(out.Datapoints, cwtypes.Datapoint{Sum: aws.Float64(v)})
	}
	return out, nil
}

type stubLambda struct {
	fns []lambdatypes.FunctionConfiguration
	err error
}

func (s stubLambda) ListFunctions(_ context.Context, _ *lambda.ListFunctionsInput, _ ...func(*lambda.Options)) (*lambda.ListFunctionsOutput, error) {
	return &lambda.ListFunctionsOutput{Functions: s.fns}, s.err
}

type stubDynamo struct {
	tables map[string]*dynamotypes.TableDescription
	err    error
}

func (s stubDynamo) ListTables(_ context.Context, _ *dynamodb.ListTablesInput, _ ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := &dynamodb.ListTablesOutput{}
	for name := range s.tables {
		out.TableNames = append(out.TableNames, name)
	}
	return out, nil
}

func (s stubDynamo) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{Table: s.tables[aws.ToString(in.TableName)]}, nil
}

type stubS3 struct {
	buckets   []s3types.Bucket
	locations map[string]s3types.BucketLocationConstraint
	objects   map[string][]s3types.Object
	pageSize  int
	listErr   error
	probeErr  map[string]error
}

func (s stubS3) ListBuckets(_ context.Context, _ *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return &s3.ListBucketsOutput{Buckets: s.buckets}, nil
}

func (s stubS3) GetBucketLocation(_ context.Context, in *s3.GetBucketLocationInput, _ ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error) {
	if err := s.probeErr[aws.ToString(in.Bucket)]; err != nil {
		return nil, err
	}
	return &s3.GetBucketLocationOutput{LocationConstraint: s.locations[aws.ToString(in.Bucket)]}, nil
}

// ListObjectsV2 pages through objects pageSize at a time; the continuation
// token is the index of the next object.
func (s stubS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	all := s.objects[aws.ToString(in.Bucket)]
	if s.pageSize <= 0 {
		return &s3.ListObjectsV2Output{Contents: all, IsTruncated: aws.Bool(false)}, nil
	}
	start, _ := strconv.Atoi(aws.ToString(in.ContinuationToken))
	end := min(start+s.pageSize, len(all))
	out := &s3.ListObjectsV2Output{Contents: all[start:end], IsTruncated: aws.Bool(end < len(all))}
	if end < len(all) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

type stubCE struct {
	out   *ce.GetCostAndUsageOutput
	err   error
	calls *atomic.Int32
}

func (s stubCE) GetCostAndUsage(_ context.Context, _ *ce.GetCostAndUsageInput, _ ...func(*ce.Options)) (*ce.GetCostAndUsageOutput, error) {
	if s.calls != nil {
		s.calls.Add(1)
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.out == nil {
		return &ce.GetCostAndUsageOutput{}, nil
	}
	return s.out, nil
}

// emptyClients returns clients that report no resources.
func emptyClients() *inventoryClients {
	return &inventoryClients{
		EC2:      stubEC2{},
		RDS:      stubRDS{},
		ELB:      stubELB{},
		CW:       stubCW{},
		Lambda:   stubLambda{},
		DynamoDB: stubDynamo{},
		S3:       stubS3{},
		CE:       stubCE{},
	}
}

// regionFactory serves per-region clients and records which regions were
// requested. Regions without an entry get emptyClients.
type regionFactory struct {
	mu       sync.Mutex
	byRegion map[string]*inventoryClients
	seen     []string
}

func (f *regionFactory) build(cfg aws.Config) *inventoryClients {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, cfg.Region)
	if c, ok := f.byRegion[cfg.Region]; ok {
		return c
	}
	return emptyClients()
}

type stubLoader struct {
	acct *common.AccountConfig
	err  error
}

func (s stubLoader) Load(_ context.Context, _ common.StaticCredentials) (*common.AccountConfig, error) {
	return s.acct, s.err
}

func account(home string) *common.AccountConfig {
	return &common.AccountConfig{AccountID: "111122223333", Region: home, Config: aws.Config{Region: home}}
}

// loaderFunc records the requested home region and succeeds.
type loaderFunc func(region string)

func (f loaderFunc) Load(_ context.Context, creds common.StaticCredentials) (*common.AccountConfig, error) {
	f(creds.Region)
	return account(creds.Region), nil
}
