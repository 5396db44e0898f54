package rules

import (
	"testing"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

func TestAWSS3Rule_Evaluate(t *testing.T) {
	eval := func(b models.AWSS3Bucket) models.Finding {
		return requireOne(t, (AWSS3Rule{}).Evaluate(awsCtx(&models.AWSData{Buckets: []models.AWSS3Bucket{b}})))
	}

	t.Run("empty bucket is a zombie", func(t *testing.T) {
		f := eval(models.AWSS3Bucket{Name: "logs", Region: "us-east-1", ActivityKnown: true})
		assertWaste(t, f, CheckS3Inactive, models.StatusZombie, 0.92)
		if f.ResourceName != "logs" {
			t.Errorf("ResourceName = %q; want logs", f.ResourceName)
		}
	})

	t.Run("no writes past the window is a zombie", func(t *testing.T) {
		f := eval(models.AWSS3Bucket{Name: "old", ActivityKnown: true, ObjectCount: 5, LastWrite: daysAgo(45)})
		assertWaste(t, f, CheckS3Inactive, models.StatusZombie, 0.92)
	})

	t.Run("recent write is active", func(t *testing.T) {
		f := eval(models.AWSS3Bucket{Name: "hot", ActivityKnown: true, ObjectCount: 5, LastWrite: daysAgo(2)})
		assertActive(t, f)
		if f.Reason != "Bucket has recent activity." {
			t.Errorf("Reason = %q", f.Reason)
		}
	})

	t.Run("unknown activity is never flagged", func(t *testing.T) {
		f := eval(models.AWSS3Bucket{Name: "locked", ObjectCount: 10000, LastWrite: daysAgo(90)})
		assertActive(t, f)
		if f.Reason != "Activity unknown." {
			t.Errorf("Reason = %q; want %q", f.Reason, "Activity unknown.")
		}
	})
}
