package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// MatchScoreBreakdown holds the seven sub-scores, each in [0,100].
type MatchScoreBreakdown struct {
	SkillsScore      int `gorm:"column:skills_score;type:integer" json:"skills_score"`
	SalaryScore      int `gorm:"column:salary_score;type:integer" json:"salary_score"`
	ExperienceScore  int `gorm:"column:experience_score;type:integer" json:"experience_score"`
	ArrangementScore int `gorm:"column:arrangement_score;type:integer" json:"arrangement_score"`
	ShiftScore       int `gorm:"column:shift_score;type:integer" json:"shift_score"`
	LocationScore    int `gorm:"column:location_score;type:integer" json:"location_score"`
	UrgencyScore     int `gorm:"column:urgency_score;type:integer" json:"urgency_score"`
}

// CandidateSnapshot captures the candidate fields the scorers consumed.
// Written once per computation, never patched.
type CandidateSnapshot struct {
	Skills             []CandidateSkill `json:"skills"`
	ExperienceYears    int              `json:"experience_years"`
	ExpectedSalaryMin  *float64         `json:"expected_salary_min,omitempty"`
	ExpectedSalaryMax  *float64         `json:"expected_salary_max,omitempty"`
	PreferredShift     ShiftPreference  `json:"preferred_shift,omitempty"`
	PreferredWorkSetup WorkArrangement  `json:"preferred_work_setup,omitempty"`
	WorkStatus         WorkStatus       `json:"work_status,omitempty"`
	LocationCity       string           `json:"location_city,omitempty"`
	LocationRegion     string           `json:"location_region,omitempty"`
}

type JobSnapshot struct {
	Title           string          `json:"title"`
	RequiredSkills  []string        `json:"required_skills"`
	SalaryMin       *float64        `json:"salary_min,omitempty"`
	SalaryMax       *float64        `json:"salary_max,omitempty"`
	WorkArrangement WorkArrangement `json:"work_arrangement,omitempty"`
	Shift           ShiftPreference `json:"shift,omitempty"`
	LocationCity    string          `json:"location_city,omitempty"`
	LocationRegion  string          `json:"location_region,omitempty"`
}

// MatchResult is the output of one match computation.
type MatchResult struct {
	OverallScore int                 `json:"overall_score"`
	Breakdown    MatchScoreBreakdown `json:"breakdown"`

	MatchReasons []string `json:"match_reasons"`
	Concerns     []string `json:"concerns"`
	AISummary    string   `json:"ai_summary"`
	AIProvider   string   `json:"ai_provider"`

	CandidateSnapshot CandidateSnapshot `json:"candidate_snapshot"`
	JobSnapshot       JobSnapshot       `json:"job_snapshot"`

	MissingSkills []string `json:"missing_skills"`
}

const MatchStatusPending = "pending"

// JobMatch is the persisted match row, unique per (candidate_id, job_id).
type JobMatch struct {
	CandidateID string `gorm:"column:candidate_id;type:uuid;primaryKey" json:"candidate_id"`
	JobID       string `gorm:"column:job_id;type:uuid;primaryKey" json:"job_id"`

	OverallScore int                 `gorm:"column:overall_score;type:integer" json:"overall_score"`
	Breakdown    MatchScoreBreakdown `gorm:"embedded" json:"breakdown"`

	Reasoning    string         `gorm:"column:reasoning;type:text" json:"reasoning"`
	MatchReasons pq.StringArray `gorm:"column:match_reasons;type:text[]" json:"match_reasons"`
	Concerns     pq.StringArray `gorm:"column:concerns;type:text[]" json:"concerns"`

	CandidateSnapshot datatypes.JSON `gorm:"column:candidate_snapshot;type:jsonb" json:"candidate_snapshot"`
	JobSnapshot       datatypes.JSON `gorm:"column:job_snapshot;type:jsonb" json:"job_snapshot"`

	MissingSkills pq.StringArray `gorm:"column:missing_skills;type:text[]" json:"missing_skills"`

	IsStale    bool   `gorm:"column:is_stale" json:"is_stale"`
	AIProvider string `gorm:"column:ai_provider;type:text" json:"ai_provider"`
	Status     string `gorm:"column:status;type:text;default:pending" json:"status"`

	AnalyzedAt      time.Time  `gorm:"column:analyzed_at;type:timestamptz" json:"analyzed_at"`
	LastRefreshedAt *time.Time `gorm:"column:last_refreshed_at;type:timestamptz" json:"last_refreshed_at,omitempty"`
	RefreshCount    int        `gorm:"column:refresh_count;type:integer;default:0" json:"refresh_count"`
}

func (JobMatch) TableName() string { return "job_matches" }
