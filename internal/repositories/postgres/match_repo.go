package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jobhive/jobhive-backend/internal/models"
	"github.com/jobhive/jobhive-backend/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MatchRepository interface {
	Upsert(ctx context.Context, m *models.JobMatch) error
	Get(ctx context.Context, candidateID, jobID string) (*models.JobMatch, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]models.JobMatch, error)
	// ApplyRefresh writes the recomputed fields and bumps refresh bookkeeping
	// in one conditional UPDATE: it only touches the row if the pair exists
	// and last_refreshed_at is NULL or at least `window` old. Returns
	// ErrRefreshDenied when the condition did not hold.
	ApplyRefresh(ctx context.Context, m *models.JobMatch, now time.Time, window time.Duration) error
	InvalidateByCandidate(ctx context.Context, candidateID string) error
	InvalidateByJob(ctx context.Context, jobID string) error
}

// ErrRefreshDenied signals the conditional refresh UPDATE matched no row.
var ErrRefreshDenied = errors.New("refresh denied")

// upsertColumns are the fields a fresh save overwrites. Refresh bookkeeping
// (last_refreshed_at, refresh_count) and the workflow status are deliberately
// absent: an ordinary save never touches them.
var upsertColumns = []string{
	"overall_score",
	"skills_score", "salary_score", "experience_score", "arrangement_score",
	"shift_score", "location_score", "urgency_score",
	"reasoning", "match_reasons", "concerns",
	"candidate_snapshot", "job_snapshot", "missing_skills",
	"is_stale", "ai_provider", "analyzed_at",
}

type matchRepo struct {
	db *gorm.DB
}

func NewMatchRepo(db *gorm.DB) MatchRepository {
	return &matchRepo{db: db}
}

func (r *matchRepo) Upsert(ctx context.Context, m *models.JobMatch) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "candidate_id"}, {Name: "job_id"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(m).Error
}

func (r *matchRepo) Get(ctx context.Context, candidateID, jobID string) (*models.JobMatch, error) {
	var m models.JobMatch
	err := r.db.WithContext(ctx).
		Where("candidate_id = ? AND job_id = ?", candidateID, jobID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &m, err
}

func (r *matchRepo) ListByCandidate(ctx context.Context, candidateID string) ([]models.JobMatch, error) {
	var rows []models.JobMatch
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("overall_score DESC").
		Find(&rows).Error
	return rows, err
}

func (r *matchRepo) ApplyRefresh(ctx context.Context, m *models.JobMatch, now time.Time, window time.Duration) error {
	cutoff := now.Add(-window)

	res := r.db.WithContext(ctx).
		Model(&models.JobMatch{}).
		Where("candidate_id = ? AND job_id = ?", m.CandidateID, m.JobID).
		Where("last_refreshed_at IS NULL OR last_refreshed_at <= ?", cutoff).
		Updates(map[string]any{
			"overall_score":      m.OverallScore,
			"skills_score":       m.Breakdown.SkillsScore,
			"salary_score":       m.Breakdown.SalaryScore,
			"experience_score":   m.Breakdown.ExperienceScore,
			"arrangement_score":  m.Breakdown.ArrangementScore,
			"shift_score":        m.Breakdown.ShiftScore,
			"location_score":     m.Breakdown.LocationScore,
			"urgency_score":      m.Breakdown.UrgencyScore,
			"reasoning":          m.Reasoning,
			"match_reasons":      m.MatchReasons,
			"concerns":           m.Concerns,
			"candidate_snapshot": m.CandidateSnapshot,
			"job_snapshot":       m.JobSnapshot,
			"missing_skills":     m.MissingSkills,
			"is_stale":           false,
			"ai_provider":        m.AIProvider,
			"analyzed_at":        now,
			"last_refreshed_at":  now,
			"refresh_count":      gorm.Expr("refresh_count + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRefreshDenied
	}
	return nil
}

func (r *matchRepo) InvalidateByCandidate(ctx context.Context, candidateID string) error {
	return r.db.WithContext(ctx).
		Model(&models.JobMatch{}).
		Where("candidate_id = ?", candidateID).
		Update("is_stale", true).Error
}

func (r *matchRepo) InvalidateByJob(ctx context.Context, jobID string) error {
	return r.db.WithContext(ctx).
		Model(&models.JobMatch{}).
		Where("job_id = ?", jobID).
		Update("is_stale", true).Error
}
