package rules

import (
	"fmt"
	"sort"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/policy"
	"github.com/pankaj-dahiya-devops/spendscan/internal/pricing"
)

const (
	eipRuleID = "AWS_ELASTIC_IP"

	// eipResourceName is shared by the aggregated findings; the status
	// keeps the attached and unattached rows distinct.
	eipResourceName = "elastic-ips"
)

// AWSElasticIPRule aggregates Elastic IPs across all regions into at most
// two findings: one zombie finding for every unattached address (each billed
// hourly while idle) and one active finding for the attached ones.
type AWSElasticIPRule struct{}

func (r AWSElasticIPRule) ID() string   { return eipRuleID }
func (r AWSElasticIPRule) Name() string { return "Elastic IPs" }

func (r AWSElasticIPRule) Evaluate(ctx RuleContext) []models.Finding {
	data := ctx.AWS()
	if data == nil {
		return nil
	}

	var attached, unattached []models.AWSElasticIP
	for _, rd := range data.Regions {
		for _, ip := range rd.ElasticIPs {
			if ip.Attached {
				attached = append(attached, ip)
			} else {
				unattached = append(unattached, ip)
			}
		}
	}

	var findings []models.Finding
	if len(unattached) > 0 && policy.IsEnabled(CheckEIPUnattached, ctx.Policy) {
		findings = append(findings, waste(ctx, CheckEIPUnattached, eipResource(unattached), models.StatusZombie,
			ctx.Converter.ConvertMul(len(unattached), pricing.ElasticIPUSD),
			fmt.Sprintf("%d Elastic IP(s) are not associated with any resource.", len(unattached))))
	} else {
		attached = append(attached, unattached...)
	}
	if len(attached) > 0 {
		findings = append(findings, active(ctx, eipRuleID, eipResource(attached),
			fmt.Sprintf("%d Elastic IP(s) allocated.", len(attached))))
	}
	return findings
}

func eipResource(ips []models.AWSElasticIP) resource {
	addrs := make([]string, 0, len(ips))
	regionSet := make(map[string]struct{})
	for _, ip := range ips {
		addrs = append(addrs, ip.PublicIP)
		regionSet[ip.Region] = struct{}{}
	}
	sort.Strings(addrs)
	regions := make([]string, 0, len(regionSet))
	for r := range regionSet {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	res := resource{
		name: eipResourceName,
		kind: models.ResourceAWSElasticIP,
		raw: map[string]any{
			"count":     len(ips),
			"addresses": addrs,
			"regions":   regions,
		},
	}
	if len(regions) == 1 {
		res.region = regions[0]
	}
	return res
}
