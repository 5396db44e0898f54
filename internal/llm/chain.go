package llm

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

// ErrNoRecommendation is returned by a strategy that has nothing to offer.
var ErrNoRecommendation = errors.New("llm: no recommendation")

// Strategy is one attempt in the chain.
type Strategy interface {
	Name() string
	Recommend(ctx context.Context, f models.Finding) (string, error)
}

// ClientStrategy adapts an LLMClient to a Strategy. It is only used when a
// caller supplies its own LLMClient.
type ClientStrategy struct {
	Label    string
	Client   LLMClient
	MaxWords int
}

func (s ClientStrategy) Name() string { return s.Label }

func (s ClientStrategy) Recommend(ctx context.Context, f models.Finding) (string, error) {
	if s.Client == nil || !s.Client.IsAvailable(ctx) {
		return "", ErrNoRecommendation
	}
	resp, err := s.Client.Recommend(ctx, RecommendationRequest{Finding: f, MaxWords: s.MaxWords})
	if err != nil {
		return "", err
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return "", ErrNoRecommendation
	}
	return strings.TrimSpace(resp.Text), nil
}

// Recommender walks its strategies in order and stops at the first success.
// When all fail it uses the template.
type Recommender struct {
	strategies []Strategy
	log        *zap.Logger
}

// NewRecommender returns a chain of strategies followed by the template.
func NewRecommender(log *zap.Logger, strategies ...Strategy) *Recommender {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recommender{strategies: strategies, log: log.Named("llm.recommender")}
}

// Recommend returns advice for f. It never fails.
func (r *Recommender) Recommend(ctx context.Context, f models.Finding) string {
	for _, s := range r.strategies {
		if ctx.Err() != nil {
			break
		}
		text, err := s.Recommend(ctx, f)
		if err == nil {
			return text
		}
		if !errors.Is(err, ErrNoRecommendation) {
			r.log.Debug("strategy failed",
				zap.String("strategy", s.Name()),
				zap.String("rule_id", f.RuleID),
				zap.Error(err))
		}
	}
	return Template(f)
}

// Annotate fills Recommendation on every finding. Only that field is written.
func (r *Recommender) Annotate(ctx context.Context, findings []models.Finding) {
	for i := range findings {
		findings[i].Recommendation = r.Recommend(ctx, findings[i])
	}
}
