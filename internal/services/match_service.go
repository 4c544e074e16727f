package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/jobhive/jobhive-backend/internal/cache"
	"github.com/jobhive/jobhive-backend/internal/insight"
	"github.com/jobhive/jobhive-backend/internal/matching"
	"github.com/jobhive/jobhive-backend/internal/models"
	pgrepo "github.com/jobhive/jobhive-backend/internal/repositories/postgres"
	"github.com/jobhive/jobhive-backend/internal/utils"
)

// RefreshWindow is the rolling rate limit on caller-triggered refreshes.
const RefreshWindow = 24 * time.Hour

// listCacheTTL keeps match listings hot for a short window. Kept small so a
// job-side invalidation (which cannot target candidate list keys) converges
// quickly.
const listCacheTTL = 30 * time.Second

// RateLimitedError reports when a denied refresh becomes eligible again.
type RateLimitedError struct {
	NextEligibleAt time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("refresh rate limited until %s", e.NextEligibleAt.Format(time.RFC3339))
}

type RefreshEligibility struct {
	Allowed        bool       `json:"allowed"`
	NextEligibleAt *time.Time `json:"next_eligible_at,omitempty"`
}

type MatchService interface {
	// ComputeMatch scores one candidate against one job. Total apart from
	// argument validation: insight failures are absorbed, never surfaced.
	ComputeMatch(ctx context.Context, c *models.CandidateData, j *models.JobData) (*models.MatchResult, error)
	// ComputeAndSave loads both records from their owning stores, scores
	// them, and upserts the result.
	ComputeAndSave(ctx context.Context, candidateID, jobID string) (*models.MatchResult, error)
	SaveMatch(ctx context.Context, candidateID, jobID string, res *models.MatchResult) error
	GetMatch(ctx context.Context, candidateID, jobID string) (*models.JobMatch, error)
	ListMatches(ctx context.Context, candidateID string) ([]models.JobMatch, error)
	CanRefresh(ctx context.Context, candidateID, jobID string) (*RefreshEligibility, error)
	RefreshMatch(ctx context.Context, candidateID, jobID string, c *models.CandidateData, j *models.JobData) (*models.MatchResult, error)
	// RefreshByID is RefreshMatch with the records loaded from their stores.
	RefreshByID(ctx context.Context, candidateID, jobID string) (*models.MatchResult, error)
	InvalidateForCandidate(ctx context.Context, candidateID string) error
	InvalidateForJob(ctx context.Context, jobID string) error
}

type matchService struct {
	matches    pgrepo.MatchRepository
	candidates pgrepo.CandidateRepository
	jobs       pgrepo.JobRepository
	analyzer   insight.Analyzer
	cache      cache.Cache
	now        func() time.Time
}

func NewMatchService(matches pgrepo.MatchRepository, candidates pgrepo.CandidateRepository, jobs pgrepo.JobRepository, analyzer insight.Analyzer, c cache.Cache) MatchService {
	return &matchService{
		matches:    matches,
		candidates: candidates,
		jobs:       jobs,
		analyzer:   analyzer,
		cache:      c,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *matchService) loadPair(ctx context.Context, op, candidateID, jobID string) (*models.CandidateData, *models.JobData, error) {
	c, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, nil, utils.E(utils.CodeNotFound, op, "candidate not found", err)
		}
		return nil, nil, utils.E(utils.CodeInternal, op, "failed to load candidate", err)
	}
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, nil, utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return nil, nil, utils.E(utils.CodeInternal, op, "failed to load job", err)
	}
	return c, j, nil
}

func (s *matchService) ComputeAndSave(ctx context.Context, candidateID, jobID string) (*models.MatchResult, error) {
	const op = "MatchService.ComputeAndSave"

	if candidateID == "" || jobID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate_id and job_id are required", nil)
	}

	c, j, err := s.loadPair(ctx, op, candidateID, jobID)
	if err != nil {
		return nil, err
	}

	res, err := s.ComputeMatch(ctx, c, j)
	if err != nil {
		return nil, err
	}
	if err := s.SaveMatch(ctx, candidateID, jobID, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *matchService) RefreshByID(ctx context.Context, candidateID, jobID string) (*models.MatchResult, error) {
	const op = "MatchService.RefreshByID"

	if candidateID == "" || jobID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate_id and job_id are required", nil)
	}

	c, j, err := s.loadPair(ctx, op, candidateID, jobID)
	if err != nil {
		return nil, err
	}
	return s.RefreshMatch(ctx, candidateID, jobID, c, j)
}

func listCacheKey(candidateID string) string { return "match:list:" + candidateID }

func (s *matchService) ComputeMatch(ctx context.Context, c *models.CandidateData, j *models.JobData) (*models.MatchResult, error) {
	const op = "MatchService.ComputeMatch"

	if c == nil || j == nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate and job are required", nil)
	}

	// Deterministic part first; the insight call below may hit the network
	// and must not gate the score.
	breakdown := matching.CalculateScores(c, j)
	overall := matching.OverallScore(breakdown)
	missing := matching.MissingSkills(c, j)

	candidateSnap := models.CandidateSnapshot{
		Skills:             c.Skills,
		ExperienceYears:    c.ExperienceYears,
		ExpectedSalaryMin:  c.ExpectedSalaryMin,
		ExpectedSalaryMax:  c.ExpectedSalaryMax,
		PreferredShift:     c.PreferredShift,
		PreferredWorkSetup: c.PreferredWorkSetup,
		WorkStatus:         c.WorkStatus,
		LocationCity:       c.LocationCity,
		LocationRegion:     c.LocationRegion,
	}
	jobSnap := models.JobSnapshot{
		Title:           j.Title,
		RequiredSkills:  append([]string{}, j.RequiredSkills...),
		SalaryMin:       j.SalaryMin,
		SalaryMax:       j.SalaryMax,
		WorkArrangement: j.WorkArrangement,
		Shift:           j.Shift,
		LocationCity:    j.LocationCity,
		LocationRegion:  j.LocationRegion,
	}

	ins := s.analyzer.Analyze(ctx, c, j, breakdown)

	return &models.MatchResult{
		OverallScore:      overall,
		Breakdown:         breakdown,
		MatchReasons:      ins.MatchReasons,
		Concerns:          ins.Concerns,
		AISummary:         ins.Summary,
		AIProvider:        ins.Provider,
		CandidateSnapshot: candidateSnap,
		JobSnapshot:       jobSnap,
		MissingSkills:     missing,
	}, nil
}

func (s *matchService) SaveMatch(ctx context.Context, candidateID, jobID string, res *models.MatchResult) error {
	const op = "MatchService.SaveMatch"

	if candidateID == "" || jobID == "" || res == nil {
		return utils.E(utils.CodeInvalidArgument, op, "candidate_id, job_id, and result are required", nil)
	}

	row, err := s.toRow(candidateID, jobID, res)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to encode snapshots", err)
	}

	if err := s.matches.Upsert(ctx, row); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to save match", err)
	}

	_ = s.cache.Del(ctx, listCacheKey(candidateID))
	return nil
}

func (s *matchService) GetMatch(ctx context.Context, candidateID, jobID string) (*models.JobMatch, error) {
	const op = "MatchService.GetMatch"

	if candidateID == "" || jobID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate_id and job_id are required", nil)
	}

	m, err := s.matches.Get(ctx, candidateID, jobID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "match not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get match", err)
	}
	return m, nil
}

func (s *matchService) ListMatches(ctx context.Context, candidateID string) ([]models.JobMatch, error) {
	const op = "MatchService.ListMatches"

	if candidateID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate_id is required", nil)
	}

	key := listCacheKey(candidateID)
	var cached []models.JobMatch
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	rows, err := s.matches.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list matches", err)
	}

	_ = s.cache.SetJSON(ctx, key, rows, listCacheTTL)
	return rows, nil
}

func (s *matchService) CanRefresh(ctx context.Context, candidateID, jobID string) (*RefreshEligibility, error) {
	const op = "MatchService.CanRefresh"

	if candidateID == "" || jobID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate_id and job_id are required", nil)
	}

	m, err := s.matches.Get(ctx, candidateID, jobID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return &RefreshEligibility{Allowed: true}, nil
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get match", err)
	}

	if m.LastRefreshedAt == nil {
		return &RefreshEligibility{Allowed: true}, nil
	}

	next := m.LastRefreshedAt.Add(RefreshWindow)
	if !s.now().Before(next) {
		return &RefreshEligibility{Allowed: true}, nil
	}
	return &RefreshEligibility{Allowed: false, NextEligibleAt: &next}, nil
}

func (s *matchService) RefreshMatch(ctx context.Context, candidateID, jobID string, c *models.CandidateData, j *models.JobData) (*models.MatchResult, error) {
	const op = "MatchService.RefreshMatch"

	if candidateID == "" || jobID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate_id and job_id are required", nil)
	}

	res, err := s.ComputeMatch(ctx, c, j)
	if err != nil {
		return nil, err
	}

	row, err := s.toRow(candidateID, jobID, res)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to encode snapshots", err)
	}

	now := s.now()
	err = s.matches.ApplyRefresh(ctx, row, now, RefreshWindow)
	if errors.Is(err, pgrepo.ErrRefreshDenied) {
		// Either the window has not elapsed, or the pair was never scored.
		prev, getErr := s.matches.Get(ctx, candidateID, jobID)
		if errors.Is(getErr, utils.ErrNotFound) {
			// First contact with this pair: a refresh degenerates to a save
			// followed by the refresh bookkeeping.
			if err := s.matches.Upsert(ctx, row); err != nil {
				return nil, utils.E(utils.CodeInternal, op, "failed to save match", err)
			}
			if err := s.matches.ApplyRefresh(ctx, row, now, RefreshWindow); err != nil {
				return nil, utils.E(utils.CodeInternal, op, "failed to refresh match", err)
			}
			_ = s.cache.Del(ctx, listCacheKey(candidateID))
			return res, nil
		}
		if getErr != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to get match", getErr)
		}
		next := now.Add(RefreshWindow)
		if prev.LastRefreshedAt != nil {
			next = prev.LastRefreshedAt.Add(RefreshWindow)
		}
		return nil, utils.E(utils.CodeRateLimited, op, "refresh not available yet", &RateLimitedError{NextEligibleAt: next})
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to refresh match", err)
	}

	_ = s.cache.Del(ctx, listCacheKey(candidateID))
	return res, nil
}

func (s *matchService) InvalidateForCandidate(ctx context.Context, candidateID string) error {
	const op = "MatchService.InvalidateForCandidate"

	if candidateID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "candidate_id is required", nil)
	}
	if err := s.matches.InvalidateByCandidate(ctx, candidateID); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to invalidate matches", err)
	}
	_ = s.cache.Del(ctx, listCacheKey(candidateID))
	return nil
}

func (s *matchService) InvalidateForJob(ctx context.Context, jobID string) error {
	const op = "MatchService.InvalidateForJob"

	if jobID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "job_id is required", nil)
	}
	if err := s.matches.InvalidateByJob(ctx, jobID); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to invalidate matches", err)
	}
	return nil
}

func (s *matchService) toRow(candidateID, jobID string, res *models.MatchResult) (*models.JobMatch, error) {
	candidateSnap, err := json.Marshal(res.CandidateSnapshot)
	if err != nil {
		return nil, err
	}
	jobSnap, err := json.Marshal(res.JobSnapshot)
	if err != nil {
		return nil, err
	}

	return &models.JobMatch{
		CandidateID:       candidateID,
		JobID:             jobID,
		OverallScore:      res.OverallScore,
		Breakdown:         res.Breakdown,
		Reasoning:         res.AISummary,
		MatchReasons:      res.MatchReasons,
		Concerns:          res.Concerns,
		CandidateSnapshot: datatypes.JSON(candidateSnap),
		JobSnapshot:       datatypes.JSON(jobSnap),
		MissingSkills:     res.MissingSkills,
		IsStale:           false,
		AIProvider:        res.AIProvider,
		Status:            models.MatchStatusPending,
		AnalyzedAt:        s.now(),
	}, nil
}
