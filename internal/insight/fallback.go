package insight

import (
	"context"

	"github.com/jobhive/jobhive-backend/internal/models"
)

// FallbackAnalyzer serves deployments without an LLM configured.
type FallbackAnalyzer struct{}

func (FallbackAnalyzer) Analyze(_ context.Context, c *models.CandidateData, _ *models.JobData, b models.MatchScoreBreakdown) Insights {
	return Fallback(c, b)
}

// Fallback derives insights from the breakdown alone. Pure and total; used
// whenever the LLM path fails.
func Fallback(c *models.CandidateData, b models.MatchScoreBreakdown) Insights {
	reasons := []string{}
	concerns := []string{}

	if b.SkillsScore >= 80 {
		reasons = append(reasons, "Strong skill alignment with job requirements")
	} else if b.SkillsScore < 50 {
		concerns = append(concerns, "Missing several required skills for this role")
	}

	if b.SalaryScore >= 85 {
		reasons = append(reasons, "Salary expectations well-aligned with the offer")
	} else if b.SalaryScore < 40 {
		concerns = append(concerns, "Salary expectations may not match the job's range")
	}

	if b.ExperienceScore >= 90 {
		reasons = append(reasons, "Experience level is a perfect fit")
	} else if b.ExperienceScore < 60 {
		if c.ExperienceYears < 2 {
			concerns = append(concerns, "Limited professional experience for this role")
		} else {
			concerns = append(concerns, "Experience level may not match the role's seniority")
		}
	}

	if c.WorkStatus == models.StatusActivelyLooking {
		reasons = append(reasons, "Actively seeking new opportunities")
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "Meets basic requirements for the role")
	}

	summary := "Good potential match based on skills and experience"
	if b.SkillsScore < 70 {
		summary = "Consider for roles requiring different skill sets"
	}

	return capInsights(Insights{
		MatchReasons: reasons,
		Concerns:     concerns,
		Summary:      summary,
		Provider:     FallbackProvider,
	})
}
