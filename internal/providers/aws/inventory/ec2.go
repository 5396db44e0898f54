package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

// collectEC2Instances pages through all live EC2 instances in region and
// converts them to internal models. Terminated instances are excluded.
func collectEC2Instances(ctx context.Context, client ec2Client, region string) ([]models.AWSEC2Instance, error) {
	input := &ec2svc.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{
				Name:   aws.String("instance-state-name"),
				Values: []string{"pending", "running", "stopping", "stopped"},
			},
		},
	}

	paginator := ec2svc.NewDescribeInstancesPaginator(client, input)

	var instances []models.AWSEC2Instance
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("DescribeInstances page: %w", err)
		}
		for _, reservation := range page.Reservations {
			for _, inst := range reservation.Instances {
				instances = append(instances, toEC2Instance(inst, region))
			}
		}
	}
	return instances, nil
}

func toEC2Instance(inst ec2types.Instance, region string) models.AWSEC2Instance {
	var state string
	if inst.State != nil {
		state = string(inst.State.Name)
	}

	var launchTime time.Time
	if inst.LaunchTime != nil {
		launchTime = *inst.LaunchTime
	}

	return models.AWSEC2Instance{
		InstanceID:   aws.ToString(inst.InstanceId),
		Region:       region,
		InstanceType: string(inst.InstanceType),
		State:        state,
		LaunchTime:   launchTime,
		Tags:         tagsFromEC2(inst.Tags),
	}
}

// collectElasticIPs lists allocated addresses. DescribeAddresses is not
// paginated. An address with an association is attached.
func collectElasticIPs(ctx context.Context, client ec2Client, region string) ([]models.AWSElasticIP, error) {
	out, err := client.DescribeAddresses(ctx, &ec2svc.DescribeAddressesInput{})
	if err != nil {
		return nil, fmt.Errorf("DescribeAddresses: %w", err)
	}

	ips := make([]models.AWSElasticIP, 0, len(out.Addresses))
	for _, a := range out.Addresses {
		ips = append(ips, models.AWSElasticIP{
			AllocationID: aws.ToString(a.AllocationId),
			PublicIP:     aws.ToString(a.PublicIp),
			Region:       region,
			Attached:     a.AssociationId != nil || a.InstanceId != nil || a.NetworkInterfaceId != nil,
		})
	}
	return ips, nil
}

// tagsFromEC2 converts EC2 SDK tags to a plain string map.
func tagsFromEC2(tags []ec2types.Tag) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		if t.Key != nil && t.Value != nil {
			m[*t.Key] = *t.Value
		}
	}
	return m
}
