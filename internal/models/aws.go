package models

import "time"

// ---------------------------------------------------------------------------
// AWS Cost Explorer models
// ---------------------------------------------------------------------------

// AWSServiceCost holds the cost of a single AWS service within one month.
type AWSServiceCost struct {
	Service string  `json:"service"`
	CostUSD float64 `json:"cost_usd"`
}

// AWSMonthlyCost is one month of cost history grouped by service.
type AWSMonthlyCost struct {
	PeriodStart  string           `json:"period_start"`
	PeriodEnd    string           `json:"period_end"`
	TotalCostUSD float64          `json:"total_cost_usd"`
	Services     []AWSServiceCost `json:"services"`
}

// ---------------------------------------------------------------------------
// AWS raw resource models (collected by provider, consumed by rule engine)
// ---------------------------------------------------------------------------

// AWSEC2Instance represents a single collected EC2 instance.
type AWSEC2Instance struct {
	InstanceID   string            `json:"instance_id"`
	Region       string            `json:"region"`
	InstanceType string            `json:"instance_type"`
	State        string            `json:"state"`
	LaunchTime   time.Time         `json:"launch_time"`
	Tags         map[string]string `json:"tags,omitempty"`
}

// AWSElasticIP represents a single allocated Elastic IP address.
type AWSElasticIP struct {
	AllocationID string `json:"allocation_id"`
	PublicIP     string `json:"public_ip"`
	Region       string `json:"region"`
	Attached     bool   `json:"attached"`
}

// AWSEBSVolume represents a single collected EBS volume.
type AWSEBSVolume struct {
	VolumeID   string            `json:"volume_id"`
	Region     string            `json:"region"`
	VolumeType string            `json:"volume_type"`
	SizeGB     int32             `json:"size_gb"`
	State      string            `json:"state"`
	Attached   bool              `json:"attached"`
	InstanceID string            `json:"instance_id,omitempty"`
	Tags       map[string]string `json:"tags,omitempty"`
}

// AWSLambdaFunction represents a single collected Lambda function.
// LastModified is zero when the API returned an unparseable timestamp.
type AWSLambdaFunction struct {
	FunctionName string    `json:"function_name"`
	Region       string    `json:"region"`
	Runtime      string    `json:"runtime"`
	MemoryMB     int32     `json:"memory_mb"`
	LastModified time.Time `json:"last_modified"`
}

// AWSDynamoDBTable represents a single collected DynamoDB table.
// BillingMode is "PROVISIONED" or "PAY_PER_REQUEST".
type AWSDynamoDBTable struct {
	TableName     string `json:"table_name"`
	Region        string `json:"region"`
	BillingMode   string `json:"billing_mode"`
	ItemCount     int64  `json:"item_count"`
	ReadCapacity  int64  `json:"read_capacity"`
	WriteCapacity int64  `json:"write_capacity"`
}

// AWSRDSInstance represents a single collected RDS database instance.
type AWSRDSInstance struct {
	DBInstanceID    string            `json:"db_instance_id"`
	Region          string            `json:"region"`
	DBInstanceClass string            `json:"db_instance_class"`
	Engine          string            `json:"engine"`
	MultiAZ         bool              `json:"multi_az"`
	Status          string            `json:"status"`
	Tags            map[string]string `json:"tags,omitempty"`
}

// AWSLoadBalancer represents a single collected Elastic Load Balancer.
// RequestCount is -1 when CloudWatch data was unavailable.
type AWSLoadBalancer struct {
	LoadBalancerARN  string `json:"load_balancer_arn"`
	LoadBalancerName string `json:"load_balancer_name"`
	Region           string `json:"region"`
	Type             string `json:"type"` // application | network | gateway
	State            string `json:"state"`
	RequestCount     int64  `json:"request_count"`
}

// AWSS3Bucket represents an S3 bucket and its write activity.
// LastWrite is zero when the bucket is empty. ActivityKnown is false when
// the object listing failed; rules must not flag such buckets.
type AWSS3Bucket struct {
	Name          string    `json:"name"`
	Region        string    `json:"region"`
	CreatedAt     time.Time `json:"created_at"`
	ObjectCount   int       `json:"object_count"`
	LastWrite     time.Time `json:"last_write"`
	ActivityKnown bool      `json:"activity_known"`
}

// AWSRegionData holds all raw resource data collected from a single AWS region.
type AWSRegionData struct {
	Region          string              `json:"region"`
	EC2Instances    []AWSEC2Instance    `json:"ec2_instances"`
	ElasticIPs      []AWSElasticIP      `json:"elastic_ips"`
	EBSVolumes      []AWSEBSVolume      `json:"ebs_volumes"`
	LambdaFunctions []AWSLambdaFunction `json:"lambda_functions"`
	DynamoDBTables  []AWSDynamoDBTable  `json:"dynamodb_tables"`
	RDSInstances    []AWSRDSInstance    `json:"rds_instances"`
	LoadBalancers   []AWSLoadBalancer   `json:"load_balancers"`
}

// AWSData is the normalised output of the AWS collector. Regions are ordered
// with the home region first.
type AWSData struct {
	AccountID   string           `json:"account_id"`
	HomeRegion  string           `json:"home_region"`
	Regions     []AWSRegionData  `json:"regions"`
	Buckets     []AWSS3Bucket    `json:"buckets"`
	CostHistory []AWSMonthlyCost `json:"cost_history"`
}

// ResourceCount returns the total number of collected resources.
func (d *AWSData) ResourceCount() int {
	if d == nil {
		return 0
	}
	n := len(d.Buckets)
	for _, r := range d.Regions {
		n += len(r.EC2Instances) + len(r.ElasticIPs) + len(r.EBSVolumes) +
			len(r.LambdaFunctions) + len(r.DynamoDBTables) + len(r.RDSInstances) +
			len(r.LoadBalancers)
	}
	return n
}
