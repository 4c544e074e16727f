package matching

import (
	"math"
	"strings"

	"github.com/jobhive/jobhive-backend/internal/models"
)

// Fixed aggregation weights. Changing these is a deployment decision, not
// runtime input; they must sum to 1.0.
const (
	weightSkills      = 0.35
	weightSalary      = 0.25
	weightExperience  = 0.15
	weightArrangement = 0.10
	weightShift       = 0.05
	weightLocation    = 0.05
	weightUrgency     = 0.05
)

// Neutral defaults for unspecified inputs. Scorers are total: a missing
// optional field yields one of these, never an error.
const (
	neutralSalaryScore      = 85
	neutralArrangementScore = 80
	neutralShiftScore       = 80
	neutralLocationScore    = 70
	neutralUrgencyScore     = 50
)

// Empirically chosen tiers carried over from the previous implementation.
// Kept as reference constants; their derivation is undocumented.
var salaryGapTiers = []struct {
	maxGapPct float64
	score     int
}{
	{10, 75},
	{20, 60},
	{30, 45},
}

const salaryGapFloorScore = 30

// estimateFactor fills in a one-sided salary bound: max defaults to min*1.3.
const estimateFactor = 1.3

const defaultProficiency = 3

// SkillsScore scores required-skill coverage with a proficiency bonus.
func SkillsScore(c *models.CandidateData, j *models.JobData) int {
	if len(j.RequiredSkills) == 0 {
		return 100
	}

	byName := make(map[string]models.CandidateSkill, len(c.Skills))
	for _, s := range c.Skills {
		byName[strings.ToLower(s.Name)] = s
	}

	matched := 0
	totalProficiency := 0
	for _, required := range j.RequiredSkills {
		s, ok := byName[strings.ToLower(required)]
		if !ok {
			continue
		}
		matched++
		p := s.ProficiencyLevel
		if p == 0 {
			p = defaultProficiency
		}
		totalProficiency += p
	}

	coverage := float64(matched) / float64(len(j.RequiredSkills)) * 100

	bonus := 0.0
	if matched > 0 {
		avg := float64(totalProficiency) / float64(matched)
		bonus = (avg - 3) / 2 * 10 // -10..+10
	}

	return clampScore(coverage + bonus)
}

// SalaryScore scores overlap between expected and offered salary ranges.
func SalaryScore(c *models.CandidateData, j *models.JobData) int {
	if c.ExpectedSalaryMin == nil && c.ExpectedSalaryMax == nil {
		return neutralSalaryScore
	}
	if j.SalaryMin == nil && j.SalaryMax == nil {
		return neutralSalaryScore
	}

	candMin := deref(c.ExpectedSalaryMin)
	candMax := deref(c.ExpectedSalaryMax)
	if candMax == 0 {
		candMax = candMin * estimateFactor
	}
	jobMin := deref(j.SalaryMin)
	jobMax := deref(j.SalaryMax)
	if jobMax == 0 {
		jobMax = jobMin * estimateFactor
	}

	// Deal breaker: candidate floor above job ceiling.
	if candMin > jobMax && jobMax > 0 {
		return 15
	}

	// Candidate undervaluing themselves relative to the job floor.
	if candMax < jobMin && jobMin > 0 {
		return 70
	}

	overlapMin := math.Max(candMin, jobMin)
	overlapMax := math.Min(candMax, jobMax)

	if overlapMax >= overlapMin {
		avgRange := ((candMax - candMin) + (jobMax - jobMin)) / 2
		overlapPct := 100.0
		if avgRange > 0 {
			overlapPct = (overlapMax - overlapMin) / avgRange * 100
		}
		return int(math.Round(85 + overlapPct/100*15))
	}

	// Ranges do not overlap: tier by the gap relative to the mean of all
	// four bounds.
	gap := math.Min(math.Abs(candMin-jobMax), math.Abs(jobMin-candMax))
	avgSalary := (candMin + candMax + jobMin + jobMax) / 4
	gapPct := gap / avgSalary * 100

	for _, tier := range salaryGapTiers {
		if gapPct < tier.maxGapPct {
			return tier.score
		}
	}
	return salaryGapFloorScore
}

// requiredYearsForTitle infers the seniority bar from job-title keywords.
func requiredYearsForTitle(title string) int {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "junior"), strings.Contains(t, "entry"):
		return 1
	case strings.Contains(t, "senior"), strings.Contains(t, "lead"), strings.Contains(t, "principal"):
		return 5
	case strings.Contains(t, "mid"), strings.Contains(t, "intermediate"):
		return 3
	default:
		return 3
	}
}

// ExperienceScore compares candidate years against the inferred seniority bar.
func ExperienceScore(c *models.CandidateData, j *models.JobData) int {
	required := requiredYearsForTitle(j.Title)
	years := c.ExperienceYears

	diff := years - required
	if diff < 0 {
		diff = -diff
	}
	if diff <= 2 {
		return 100
	}

	if years > required+2 {
		// Overqualified. A senior taking a junior seat tends to churn.
		if strings.Contains(strings.ToLower(j.Title), "junior") {
			return 60
		}
		return 85
	}

	if years < required-2 {
		gap := required - years
		switch {
		case gap <= 1:
			return 80
		case gap <= 2:
			return 60
		case gap <= 3:
			return 40
		default:
			return 25
		}
	}

	return 90
}

// ArrangementScore scores work-setup compatibility.
func ArrangementScore(c *models.CandidateData, j *models.JobData) int {
	if c.PreferredWorkSetup == "" || j.WorkArrangement == "" {
		return neutralArrangementScore
	}

	pref := c.PreferredWorkSetup
	offer := j.WorkArrangement

	switch {
	case pref == offer:
		return 100
	case pref == models.ArrangementHybrid || offer == models.ArrangementHybrid:
		return 85
	case pref == models.ArrangementRemote && offer == models.ArrangementOnsite:
		return 30
	case pref == models.ArrangementOnsite && offer == models.ArrangementRemote:
		return 70
	default:
		return 60
	}
}

// ShiftScore scores shift compatibility. Deliberately asymmetric: a day
// person on a night job scores 30, the reverse 50.
func ShiftScore(c *models.CandidateData, j *models.JobData) int {
	if c.PreferredShift == "" || j.Shift == "" {
		return neutralShiftScore
	}

	cand := c.PreferredShift
	job := j.Shift

	switch {
	case cand == job:
		return 100
	case cand == models.ShiftFlexible:
		return 90
	case job == models.ShiftFlexible || job == models.ShiftBoth:
		return 90
	case cand == models.ShiftDay && (job == models.ShiftNight || job == models.ShiftGraveyard):
		return 30
	case (cand == models.ShiftNight || cand == models.ShiftGraveyard) && job == models.ShiftDay:
		return 50
	default:
		return 60
	}
}

// LocationScore scores geographic compatibility; remote jobs make it moot.
func LocationScore(c *models.CandidateData, j *models.JobData) int {
	if j.WorkArrangement == models.ArrangementRemote {
		return 90
	}

	if c.LocationCity == "" && c.LocationRegion == "" {
		return neutralLocationScore
	}

	candCity := strings.ToLower(c.LocationCity)
	candRegion := strings.ToLower(c.LocationRegion)
	jobCity := strings.ToLower(j.LocationCity)
	jobRegion := strings.ToLower(j.LocationRegion)

	if candCity != "" && jobCity != "" && candCity == jobCity {
		return 100
	}
	if candRegion != "" && jobRegion != "" && candRegion == jobRegion {
		return 80
	}
	if j.WorkArrangement == models.ArrangementOnsite && candCity != "" && jobCity != "" && candCity != jobCity {
		return 40
	}
	if j.WorkArrangement == models.ArrangementHybrid {
		return 70
	}
	return 60
}

// UrgencyScore reflects how actively the candidate is looking.
func UrgencyScore(c *models.CandidateData) int {
	switch c.WorkStatus {
	case models.StatusActivelyLooking:
		return 100
	case models.StatusOpenToOffers:
		return 70
	case models.StatusEmployedNotLooking:
		return 30
	default:
		return neutralUrgencyScore
	}
}

// CalculateScores runs all seven scorers.
func CalculateScores(c *models.CandidateData, j *models.JobData) models.MatchScoreBreakdown {
	return models.MatchScoreBreakdown{
		SkillsScore:      SkillsScore(c, j),
		SalaryScore:      SalaryScore(c, j),
		ExperienceScore:  ExperienceScore(c, j),
		ArrangementScore: ArrangementScore(c, j),
		ShiftScore:       ShiftScore(c, j),
		LocationScore:    LocationScore(c, j),
		UrgencyScore:     UrgencyScore(c),
	}
}

// OverallScore aggregates the breakdown with the fixed weights.
func OverallScore(b models.MatchScoreBreakdown) int {
	score := float64(b.SkillsScore)*weightSkills +
		float64(b.SalaryScore)*weightSalary +
		float64(b.ExperienceScore)*weightExperience +
		float64(b.ArrangementScore)*weightArrangement +
		float64(b.ShiftScore)*weightShift +
		float64(b.LocationScore)*weightLocation +
		float64(b.UrgencyScore)*weightUrgency

	return int(math.Round(score))
}

func clampScore(v float64) int {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return int(math.Round(v))
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
