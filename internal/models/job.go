package models

import (
	"time"

	"github.com/lib/pq"
)

// JobData is the typed read model for a job posting. Owned by the job
// service; read-only here.
type JobData struct {
	ID    string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title string `gorm:"column:title;type:text" json:"title"`

	RequiredSkills pq.StringArray `gorm:"column:required_skills;type:text[]" json:"required_skills"`

	SalaryMin *float64 `gorm:"column:salary_min;type:numeric" json:"salary_min,omitempty"`
	SalaryMax *float64 `gorm:"column:salary_max;type:numeric" json:"salary_max,omitempty"`

	WorkArrangement WorkArrangement `gorm:"column:work_arrangement;type:text" json:"work_arrangement,omitempty"`
	Shift           ShiftPreference `gorm:"column:shift;type:text" json:"shift,omitempty"`

	LocationCity    string `gorm:"column:location_city;type:text" json:"location_city,omitempty"`
	LocationRegion  string `gorm:"column:location_region;type:text" json:"location_region,omitempty"`
	LocationCountry string `gorm:"column:location_country;type:text" json:"location_country,omitempty"`

	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (JobData) TableName() string { return "jobs" }
