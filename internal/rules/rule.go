package rules

import (
	"time"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/policy"
	"github.com/pankaj-dahiya-devops/spendscan/internal/pricing"
)

// RuleContext carries the normalised data of one connection's scan.
// It is the sole input to Rule.Evaluate and must contain everything a rule
// needs; rules must never make network calls or read external state,
// including the wall clock: Now is the evaluation instant.
type RuleContext struct {
	// Provider is the provider tag of the connection being classified.
	Provider models.Provider

	// Data is the collector output. Rules must tolerate a nil payload.
	Data *models.ProviderData

	// Tier is the subscription tier the data was collected under.
	Tier models.Tier

	// Now is the evaluation time used for every age computation and as
	// DetectedAt on emitted findings.
	Now time.Time

	// Policy holds optional threshold overrides. May be nil; rules must
	// treat nil as "use defaults".
	Policy *policy.PolicyConfig

	// Converter normalises USD estimates into the reporting currency.
	Converter pricing.Converter
}

// AWS returns the AWS payload or nil.
func (c RuleContext) AWS() *models.AWSData {
	if c.Data == nil {
		return nil
	}
	return c.Data.AWS
}

// GitHub returns the GitHub payload or nil.
func (c RuleContext) GitHub() *models.GitHubData {
	if c.Data == nil {
		return nil
	}
	return c.Data.GitHub
}

// Vercel returns the Vercel payload or nil.
func (c RuleContext) Vercel() *models.VercelData {
	if c.Data == nil {
		return nil
	}
	return c.Data.Vercel
}

// Sentry returns the Sentry payload or nil.
func (c RuleContext) Sentry() *models.SentryData {
	if c.Data == nil {
		return nil
	}
	return c.Data.Sentry
}

// Rule is a deterministic classification rule for one resource category.
// A rule emits a finding for every resource of its category: a waste status
// when one of its checks matches, active with zero savings otherwise.
// Rules must be stateless and safe to call concurrently.
type Rule interface {
	// ID returns the unique, stable identifier for this rule (e.g. "AWS_EC2").
	ID() string

	// Name returns a short human-readable rule name.
	Name() string

	// Evaluate inspects the provided context and returns zero or more findings.
	// An empty slice means the category has no resources.
	Evaluate(ctx RuleContext) []models.Finding
}

// RuleRegistry manages the set of active rules and drives evaluation.
type RuleRegistry interface {
	// Register adds a rule to the registry. Panics on duplicate ID.
	Register(rule Rule)

	// All returns all registered rules in registration order.
	All() []Rule

	// EvaluateAll runs every registered rule against ctx and merges results.
	EvaluateAll(ctx RuleContext) []models.Finding
}
