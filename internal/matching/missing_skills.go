package matching

import (
	"strings"

	"github.com/jobhive/jobhive-backend/internal/models"
)

// MissingSkills returns the job's required skills the candidate lacks,
// matched case-insensitively, preserving the job's casing and order.
func MissingSkills(c *models.CandidateData, j *models.JobData) []string {
	if len(j.RequiredSkills) == 0 {
		return []string{}
	}

	have := make(map[string]struct{}, len(c.Skills))
	for _, s := range c.Skills {
		have[strings.ToLower(s.Name)] = struct{}{}
	}

	missing := []string{}
	for _, required := range j.RequiredSkills {
		if _, ok := have[strings.ToLower(required)]; !ok {
			missing = append(missing, required)
		}
	}
	return missing
}
