// Package llm hosts the recommendation chain that annotates findings with a
// short, human-readable next step. Recommendations are cosmetic: they never
// change a finding's status, savings or identity.
package llm

import (
	"context"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

// RecommendationRequest asks a model backend for advice on one finding.
type RecommendationRequest struct {
	Finding models.Finding

	// MaxWords is an advisory limit on the generated text length.
	MaxWords int
}

// RecommendationResponse contains the generated text and usage metadata.
type RecommendationResponse struct {
	Text       string `json:"text"`
	TokensUsed int    `json:"tokens_used"`
}

// LLMClient is the extension point for a model backend. No implementation
// ships with spendscan: the CLI builds its Recommender without strategies, so
// every finding gets the deterministic template text. A backend plugs in by
// wrapping itself in a ClientStrategy passed to NewRecommender.
//
// The LLM must never:
//   - Control program flow
//   - Make provider API calls
//   - Alter classification results
type LLMClient interface {
	// Recommend generates advice for a single finding.
	Recommend(ctx context.Context, req RecommendationRequest) (*RecommendationResponse, error)

	// IsAvailable returns true when the backend is configured and reachable.
	IsAvailable(ctx context.Context) bool
}
