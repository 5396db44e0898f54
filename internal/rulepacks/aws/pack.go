// Package aws provides the rule pack for AWS account inventory.
// New returns every AWS category rule in evaluation order; callers register
// them into a RuleRegistry via a loop rather than listing each rule explicitly.
//
// Adding a new AWS rule:
//  1. Implement the rule in internal/rules/ following the Rule interface.
//  2. Append it to the slice returned by New().
//  3. No other files need to change.
package aws

import "github.com/pankaj-dahiya-devops/spendscan/internal/rules"

// New returns all AWS rules in the order they should be evaluated.
func New() []rules.Rule {
	return []rules.Rule{
		rules.AWSEC2Rule{},
		rules.AWSElasticIPRule{},
		rules.AWSEBSRule{},
		rules.AWSLambdaRule{},
		rules.AWSDynamoDBRule{},
		rules.AWSRDSRule{},
		rules.AWSS3Rule{},
		rules.AWSELBIdleRule{},
	}
}
