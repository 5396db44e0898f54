package rules

import (
	"testing"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

func TestAWSLambdaRule_Evaluate(t *testing.T) {
	const region = "ap-southeast-1"
	eval := func(modified int) models.Finding {
		data := oneRegion(models.AWSRegionData{Region: region, LambdaFunctions: []models.AWSLambdaFunction{
			{FunctionName: "resize", Region: region, Runtime: "python3.12", MemoryMB: 128, LastModified: daysAgo(modified)},
		}})
		return requireOne(t, (AWSLambdaRule{}).Evaluate(awsCtx(data)))
	}

	t.Run("stale function is a zombie", func(t *testing.T) {
		f := eval(200)
		assertWaste(t, f, CheckLambdaStale, models.StatusZombie, 0.46)
		if f.ResourceName != "ap-southeast-1/resize" {
			t.Errorf("ResourceName = %q; want region-qualified name", f.ResourceName)
		}
	})

	t.Run("recently modified function is active", func(t *testing.T) {
		assertActive(t, eval(10))
	})

	t.Run("boundary is exclusive", func(t *testing.T) {
		assertActive(t, eval(180))
	})
}
