package models

import "time"

type WorkStatus string

const (
	StatusActivelyLooking    WorkStatus = "actively_looking"
	StatusOpenToOffers       WorkStatus = "open_to_offers"
	StatusEmployedNotLooking WorkStatus = "employed_not_looking"
)

type ShiftPreference string

const (
	ShiftDay       ShiftPreference = "day"
	ShiftNight     ShiftPreference = "night"
	ShiftFlexible  ShiftPreference = "flexible"
	ShiftGraveyard ShiftPreference = "graveyard"
	// ShiftBoth is only valid on the job side.
	ShiftBoth ShiftPreference = "both"
)

type WorkArrangement string

const (
	ArrangementRemote WorkArrangement = "remote"
	ArrangementHybrid WorkArrangement = "hybrid"
	ArrangementOnsite WorkArrangement = "onsite"
)

type CandidateSkill struct {
	Name string `json:"name"`
	// 1-5 scale; 0 means unspecified (treated as mid-level by scoring).
	ProficiencyLevel int `json:"proficiency_level"`
}

type WorkExperience struct {
	Title     string `json:"title"`
	Company   string `json:"company"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
	IsCurrent bool   `json:"is_current"`
}

// CandidateData is the typed read model at the matching boundary. Profile
// storage is owned by the profile service; this subsystem only reads it.
type CandidateData struct {
	ID string `gorm:"column:id;type:uuid;primaryKey" json:"id"`

	Skills          []CandidateSkill `gorm:"column:skills;type:jsonb;serializer:json" json:"skills"`
	WorkExperiences []WorkExperience `gorm:"column:work_experiences;type:jsonb;serializer:json" json:"work_experiences"`

	ExpectedSalaryMin *float64 `gorm:"column:expected_salary_min;type:numeric" json:"expected_salary_min,omitempty"`
	ExpectedSalaryMax *float64 `gorm:"column:expected_salary_max;type:numeric" json:"expected_salary_max,omitempty"`

	ExperienceYears int `gorm:"column:experience_years;type:integer" json:"experience_years"`

	PreferredShift     ShiftPreference `gorm:"column:preferred_shift;type:text" json:"preferred_shift,omitempty"`
	PreferredWorkSetup WorkArrangement `gorm:"column:preferred_work_setup;type:text" json:"preferred_work_setup,omitempty"`
	WorkStatus         WorkStatus      `gorm:"column:work_status;type:text" json:"work_status,omitempty"`

	LocationCity    string `gorm:"column:location_city;type:text" json:"location_city,omitempty"`
	LocationRegion  string `gorm:"column:location_region;type:text" json:"location_region,omitempty"`
	LocationCountry string `gorm:"column:location_country;type:text" json:"location_country,omitempty"`

	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (CandidateData) TableName() string { return "candidates" }
