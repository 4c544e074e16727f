package insight

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	_ "embed"

	"github.com/sirupsen/logrus"

	"github.com/jobhive/jobhive-backend/internal/models"
	"github.com/jobhive/jobhive-backend/internal/providers/llm"
)

//go:embed prompt.md
var promptTemplate string

const defaultTimeout = 10 * time.Second

// recentRoleLimit bounds how many past roles go into the prompt.
const recentRoleLimit = 3

// LLMAnalyzer asks an LLM for qualitative match insights, falling back to
// the rule-based generator on any failure.
type LLMAnalyzer struct {
	provider llm.Provider
	timeout  time.Duration
	log      *logrus.Logger
}

func NewLLMAnalyzer(provider llm.Provider, timeout time.Duration, log *logrus.Logger) *LLMAnalyzer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &LLMAnalyzer{provider: provider, timeout: timeout, log: log}
}

func (a *LLMAnalyzer) Analyze(ctx context.Context, c *models.CandidateData, j *models.JobData, b models.MatchScoreBreakdown) Insights {
	out, err := a.analyze(ctx, c, j, b)
	if err != nil {
		a.log.WithFields(logrus.Fields{
			"candidate_id": c.ID,
			"job_id":       j.ID,
			"error":        err.Error(),
		}).Warn("insight analysis failed, using fallback")
		return Fallback(c, b)
	}
	return out
}

func (a *LLMAnalyzer) analyze(ctx context.Context, c *models.CandidateData, j *models.JobData, b models.MatchScoreBreakdown) (Insights, error) {
	prompt, err := buildPrompt(c, j, b)
	if err != nil {
		return Insights{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.provider.Complete(ctx, prompt)
	if err != nil {
		return Insights{}, err
	}

	parsed, err := parseResponse(raw)
	if err != nil {
		return Insights{}, err
	}

	parsed.Provider = a.provider.Model()
	return capInsights(parsed), nil
}

func buildPrompt(c *models.CandidateData, j *models.JobData, b models.MatchScoreBreakdown) (string, error) {
	roles := make([]string, 0, recentRoleLimit)
	for i := len(c.WorkExperiences) - 1; i >= 0 && len(roles) < recentRoleLimit; i-- {
		exp := c.WorkExperiences[i]
		roles = append(roles, strings.TrimSpace(exp.Title+" at "+exp.Company))
	}

	candidatePayload := map[string]any{
		"skills":              c.Skills,
		"experience_years":    c.ExperienceYears,
		"recent_roles":        roles,
		"expected_salary_min": c.ExpectedSalaryMin,
		"expected_salary_max": c.ExpectedSalaryMax,
		"work_status":         c.WorkStatus,
	}

	jobPayload := map[string]any{
		"title":            j.Title,
		"required_skills":  j.RequiredSkills,
		"salary_min":       j.SalaryMin,
		"salary_max":       j.SalaryMax,
		"work_arrangement": j.WorkArrangement,
	}

	scoresPayload := map[string]int{
		"skills_score":      b.SkillsScore,
		"salary_score":      b.SalaryScore,
		"experience_score":  b.ExperienceScore,
		"arrangement_score": b.ArrangementScore,
	}

	candidateJSON, err := json.MarshalIndent(candidatePayload, "", "  ")
	if err != nil {
		return "", err
	}
	jobJSON, err := json.MarshalIndent(jobPayload, "", "  ")
	if err != nil {
		return "", err
	}
	scoresJSON, err := json.Marshal(scoresPayload)
	if err != nil {
		return "", err
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{CANDIDATE_JSON}}", string(candidateJSON))
	prompt = strings.ReplaceAll(prompt, "{{JOB_JSON}}", string(jobJSON))
	prompt = strings.ReplaceAll(prompt, "{{SCORES_JSON}}", string(scoresJSON))
	return prompt, nil
}

func parseResponse(raw string) (Insights, error) {
	cleaned := extractJSON(raw)

	var out Insights
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return Insights{}, err
	}

	if out.MatchReasons == nil {
		out.MatchReasons = []string{}
	}
	if out.Concerns == nil {
		out.Concerns = []string{}
	}
	out.Summary = strings.TrimSpace(out.Summary)
	return out, nil
}

// extractJSON strips markdown code fences models like to wrap JSON in.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
