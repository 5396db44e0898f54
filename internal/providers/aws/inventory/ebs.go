package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

// collectEBSVolumes pages through the EBS volumes in region that still
// bill for storage.
func collectEBSVolumes(ctx context.Context, client ec2Client, region string) ([]models.AWSEBSVolume, error) {
	input := &ec2svc.DescribeVolumesInput{
		Filters: []ec2types.Filter{
			{
				Name:   aws.String("status"),
				Values: []string{"available", "in-use", "creating", "error"},
			},
		},
	}

	paginator := ec2svc.NewDescribeVolumesPaginator(client, input)

	var volumes []models.AWSEBSVolume
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("DescribeVolumes page: %w", err)
		}
		for _, v := range page.Volumes {
			volumes = append(volumes, toEBSVolume(v, region))
		}
	}
	return volumes, nil
}

// toEBSVolume converts an SDK volume. A volume counts as attached when it
// is in-use or reports any attachment.
func toEBSVolume(v ec2types.Volume, region string) models.AWSEBSVolume {
	var instanceID string
	if len(v.Attachments) > 0 {
		instanceID = aws.ToString(v.Attachments[0].InstanceId)
	}

	return models.AWSEBSVolume{
		VolumeID:   aws.ToString(v.VolumeId),
		Region:     region,
		VolumeType: string(v.VolumeType),
		SizeGB:     aws.ToInt32(v.Size),
		State:      string(v.State),
		Attached:   v.State == ec2types.VolumeStateInUse || len(v.Attachments) > 0,
		InstanceID: instanceID,
		Tags:       tagsFromEC2(v.Tags),
	}
}
