package insight

import (
	"context"

	"github.com/jobhive/jobhive-backend/internal/models"
)

// Insights is the qualitative layer on top of a score breakdown.
type Insights struct {
	MatchReasons []string `json:"match_reasons"`
	Concerns     []string `json:"concerns"`
	Summary      string   `json:"summary"`
	// Provider records who produced the insights: the LLM model tag, or
	// "fallback" when the deterministic generator stood in.
	Provider string `json:"provider"`
}

const FallbackProvider = "fallback"

// Analyzer produces insights for a candidate-job pair. Implementations must
// be total: any upstream failure is absorbed into deterministic output, so a
// failed insight call can never fail the match computation.
type Analyzer interface {
	Analyze(ctx context.Context, c *models.CandidateData, j *models.JobData, b models.MatchScoreBreakdown) Insights
}

const (
	maxReasons  = 3
	maxConcerns = 2
)

func capInsights(in Insights) Insights {
	if len(in.MatchReasons) > maxReasons {
		in.MatchReasons = in.MatchReasons[:maxReasons]
	}
	if len(in.Concerns) > maxConcerns {
		in.Concerns = in.Concerns[:maxConcerns]
	}
	return in
}
