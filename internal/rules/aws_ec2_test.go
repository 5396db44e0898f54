package rules

import (
	"testing"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

func TestAWSEC2Rule_NilData(t *testing.T) {
	if got := (AWSEC2Rule{}).Evaluate(RuleContext{}); got != nil {
		t.Errorf("expected nil for nil data, got len=%d", len(got))
	}
}

func TestAWSEC2Rule_Evaluate(t *testing.T) {
	const region = "eu-west-1"
	eval := func(inst models.AWSEC2Instance) []models.Finding {
		inst.Region = region
		return (AWSEC2Rule{}).Evaluate(awsCtx(oneRegion(models.AWSRegionData{
			Region: region, EC2Instances: []models.AWSEC2Instance{inst},
		})))
	}

	t.Run("stopped instance is a zombie", func(t *testing.T) {
		f := requireOne(t, eval(models.AWSEC2Instance{InstanceID: "i-1", InstanceType: "t3.micro", State: "stopped"}))
		assertWaste(t, f, CheckEC2Stopped, models.StatusZombie, 7.36)
		if f.ResourceName != "i-1" || f.Region != region || f.ResourceType != models.ResourceAWSEC2 {
			t.Errorf("unexpected resource fields: %+v", f)
		}
	})

	t.Run("running oversized instance can be downgraded", func(t *testing.T) {
		for _, typ := range []string{"m5.large", "c6g.xlarge", "r5.24xlarge"} {
			f := requireOne(t, eval(models.AWSEC2Instance{InstanceID: "i-2", InstanceType: typ, State: "running"}))
			assertWaste(t, f, CheckEC2Oversized, models.StatusDowngradePossible, 32.2)
		}
	})

	t.Run("running small instance is active", func(t *testing.T) {
		for _, typ := range []string{"t3.micro", "t3.medium", "weird"} {
			assertActive(t, requireOne(t, eval(models.AWSEC2Instance{InstanceID: "i-3", InstanceType: typ, State: "running"})))
		}
	})

	t.Run("disabled check falls back to active", func(t *testing.T) {
		ctx := awsCtx(oneRegion(models.AWSRegionData{Region: region, EC2Instances: []models.AWSEC2Instance{
			{InstanceID: "i-4", Region: region, InstanceType: "t3.micro", State: "stopped"},
		}}))
		ctx.Policy = disabled(CheckEC2Stopped)
		f := requireOne(t, (AWSEC2Rule{}).Evaluate(ctx))
		assertActive(t, f)
		if f.RuleID != ec2RuleID {
			t.Errorf("RuleID = %q; want %q", f.RuleID, ec2RuleID)
		}
	})
}
