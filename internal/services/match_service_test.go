package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jobhive/jobhive-backend/internal/insight"
	"github.com/jobhive/jobhive-backend/internal/models"
	pgrepo "github.com/jobhive/jobhive-backend/internal/repositories/postgres"
	"github.com/jobhive/jobhive-backend/internal/utils"
)

type pairKey struct{ candidateID, jobID string }

type fakeMatchRepo struct {
	mu   sync.Mutex
	rows map[pairKey]*models.JobMatch
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{rows: make(map[pairKey]*models.JobMatch)}
}

func (r *fakeMatchRepo) Upsert(_ context.Context, m *models.JobMatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey{m.CandidateID, m.JobID}
	if prev, ok := r.rows[key]; ok {
		// An ordinary save never touches refresh bookkeeping or status.
		keep := *m
		keep.LastRefreshedAt = prev.LastRefreshedAt
		keep.RefreshCount = prev.RefreshCount
		keep.Status = prev.Status
		r.rows[key] = &keep
		return nil
	}
	cp := *m
	r.rows[key] = &cp
	return nil
}

func (r *fakeMatchRepo) Get(_ context.Context, candidateID, jobID string) (*models.JobMatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[pairKey{candidateID, jobID}]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMatchRepo) ListByCandidate(_ context.Context, candidateID string) ([]models.JobMatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.JobMatch
	for k, m := range r.rows {
		if k.candidateID == candidateID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OverallScore > out[j].OverallScore })
	return out, nil
}

func (r *fakeMatchRepo) ApplyRefresh(_ context.Context, m *models.JobMatch, now time.Time, window time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.rows[pairKey{m.CandidateID, m.JobID}]
	if !ok {
		return pgrepo.ErrRefreshDenied
	}
	if prev.LastRefreshedAt != nil && prev.LastRefreshedAt.After(now.Add(-window)) {
		return pgrepo.ErrRefreshDenied
	}
	next := *m
	next.Status = prev.Status
	next.RefreshCount = prev.RefreshCount + 1
	ts := now
	next.LastRefreshedAt = &ts
	next.AnalyzedAt = now
	next.IsStale = false
	r.rows[pairKey{m.CandidateID, m.JobID}] = &next
	return nil
}

func (r *fakeMatchRepo) InvalidateByCandidate(_ context.Context, candidateID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, m := range r.rows {
		if k.candidateID == candidateID {
			m.IsStale = true
		}
	}
	return nil
}

func (r *fakeMatchRepo) InvalidateByJob(_ context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, m := range r.rows {
		if k.jobID == jobID {
			m.IsStale = true
		}
	}
	return nil
}

type fakeCandidateRepo struct {
	candidates map[string]*models.CandidateData
}

func (f *fakeCandidateRepo) GetByID(_ context.Context, id string) (*models.CandidateData, error) {
	if c, ok := f.candidates[id]; ok {
		return c, nil
	}
	return nil, utils.ErrNotFound
}

type fakeJobRepo struct{ jobs map[string]*models.JobData }

func (f *fakeJobRepo) GetByID(_ context.Context, id string) (*models.JobData, error) {
	if j, ok := f.jobs[id]; ok {
		return j, nil
	}
	return nil, utils.ErrNotFound
}

type noopCache struct{}

func (noopCache) GetJSON(context.Context, string, any) (bool, error)        { return false, nil }
func (noopCache) SetJSON(context.Context, string, any, time.Duration) error { return nil }
func (noopCache) Del(context.Context, ...string) error                      { return nil }

func f64(v float64) *float64 { return &v }

func fixtureCandidate() *models.CandidateData {
	return &models.CandidateData{
		ID: "c1",
		Skills: []models.CandidateSkill{
			{Name: "JavaScript", ProficiencyLevel: 4},
			{Name: "React", ProficiencyLevel: 5},
			{Name: "TypeScript", ProficiencyLevel: 3},
		},
		ExpectedSalaryMin:  f64(30000),
		ExpectedSalaryMax:  f64(50000),
		ExperienceYears:    3,
		PreferredShift:     models.ShiftDay,
		PreferredWorkSetup: models.ArrangementHybrid,
		WorkStatus:         models.StatusActivelyLooking,
		LocationCity:       "Manila",
		LocationRegion:     "NCR",
	}
}

func fixtureJob() *models.JobData {
	return &models.JobData{
		ID:              "j1",
		Title:           "React Developer",
		RequiredSkills:  []string{"JavaScript", "React", "Node.js"},
		SalaryMin:       f64(40000),
		SalaryMax:       f64(60000),
		WorkArrangement: models.ArrangementHybrid,
		Shift:           models.ShiftDay,
		LocationCity:    "Manila",
		LocationRegion:  "NCR",
	}
}

func newTestService(repo *fakeMatchRepo) (*matchService, *time.Time) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &now
	s := &matchService{
		matches:    repo,
		candidates: &fakeCandidateRepo{candidates: map[string]*models.CandidateData{"c1": fixtureCandidate()}},
		jobs:       &fakeJobRepo{jobs: map[string]*models.JobData{"j1": fixtureJob()}},
		analyzer:   insight.FallbackAnalyzer{},
		cache:      noopCache{},
		now:        func() time.Time { return *clock },
	}
	return s, clock
}

func TestComputeMatch_PopulatesResult(t *testing.T) {
	s, _ := newTestService(newFakeMatchRepo())

	res, err := s.ComputeMatch(context.Background(), fixtureCandidate(), fixtureJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.OverallScore < 70 || res.OverallScore > 100 {
		t.Errorf("OverallScore = %d, want a strong match", res.OverallScore)
	}
	if len(res.MissingSkills) != 1 || res.MissingSkills[0] != "Node.js" {
		t.Errorf("MissingSkills = %v, want [Node.js]", res.MissingSkills)
	}
	if len(res.MatchReasons) == 0 || res.AISummary == "" {
		t.Errorf("insights not populated: %+v", res)
	}
	if res.CandidateSnapshot.ExperienceYears != 3 || res.JobSnapshot.Title != "React Developer" {
		t.Errorf("snapshots not captured: %+v %+v", res.CandidateSnapshot, res.JobSnapshot)
	}
}

func TestComputeMatch_BareInputsNeverFail(t *testing.T) {
	s, _ := newTestService(newFakeMatchRepo())

	res, err := s.ComputeMatch(context.Background(), &models.CandidateData{ID: "bare"}, &models.JobData{ID: "bare-job", Title: "Developer"})
	if err != nil {
		t.Fatalf("unexpected error for bare inputs: %v", err)
	}
	if res.OverallScore < 0 || res.OverallScore > 100 {
		t.Errorf("OverallScore = %d out of range", res.OverallScore)
	}
}

func TestSaveMatch_UpsertSemantics(t *testing.T) {
	repo := newFakeMatchRepo()
	s, _ := newTestService(repo)
	ctx := context.Background()

	res, err := s.ComputeMatch(ctx, fixtureCandidate(), fixtureJob())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if err := s.SaveMatch(ctx, "c1", "j1", res); err != nil {
		t.Fatalf("save: %v", err)
	}

	stored, err := repo.Get(ctx, "c1", "j1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.IsStale {
		t.Error("fresh save must clear is_stale")
	}
	if stored.Status != models.MatchStatusPending {
		t.Errorf("Status = %q, want pending default", stored.Status)
	}
	if stored.LastRefreshedAt != nil || stored.RefreshCount != 0 {
		t.Error("ordinary save must not touch refresh bookkeeping")
	}

	// Second save replaces, never duplicates.
	if err := s.SaveMatch(ctx, "c1", "j1", res); err != nil {
		t.Fatalf("second save: %v", err)
	}
	rows, _ := repo.ListByCandidate(ctx, "c1")
	if len(rows) != 1 {
		t.Errorf("got %d rows for pair, want 1", len(rows))
	}
}

func TestRefreshMatch_RateLimitWindow(t *testing.T) {
	repo := newFakeMatchRepo()
	s, clock := newTestService(repo)
	ctx := context.Background()
	firstRefresh := *clock

	if _, err := s.RefreshByID(ctx, "c1", "j1"); err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	stored, _ := repo.Get(ctx, "c1", "j1")
	if stored.RefreshCount != 1 {
		t.Errorf("RefreshCount = %d, want 1", stored.RefreshCount)
	}
	if stored.LastRefreshedAt == nil || !stored.LastRefreshedAt.Equal(firstRefresh) {
		t.Errorf("LastRefreshedAt = %v, want %v", stored.LastRefreshedAt, firstRefresh)
	}

	// One hour later: still inside the window.
	*clock = clock.Add(time.Hour)
	_, err := s.RefreshByID(ctx, "c1", "j1")
	if err == nil {
		t.Fatal("expected rate limited error")
	}
	if !utils.IsCode(err, utils.CodeRateLimited) {
		t.Fatalf("error code = %v, want RATE_LIMITED", err)
	}
	var rl *RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("expected RateLimitedError in chain, got %v", err)
	}
	wantNext := firstRefresh.Add(RefreshWindow)
	if !rl.NextEligibleAt.Equal(wantNext) {
		t.Errorf("NextEligibleAt = %v, want %v", rl.NextEligibleAt, wantNext)
	}

	// Just past the window: allowed again.
	*clock = firstRefresh.Add(RefreshWindow + time.Second)
	if _, err := s.RefreshByID(ctx, "c1", "j1"); err != nil {
		t.Fatalf("refresh after window: %v", err)
	}
	stored, _ = repo.Get(ctx, "c1", "j1")
	if stored.RefreshCount != 2 {
		t.Errorf("RefreshCount = %d, want 2", stored.RefreshCount)
	}
}

func TestRefreshMatch_ClearsStaleness(t *testing.T) {
	repo := newFakeMatchRepo()
	s, clock := newTestService(repo)
	ctx := context.Background()

	res, _ := s.ComputeMatch(ctx, fixtureCandidate(), fixtureJob())
	if err := s.SaveMatch(ctx, "c1", "j1", res); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.InvalidateForCandidate(ctx, "c1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	stored, _ := repo.Get(ctx, "c1", "j1")
	if !stored.IsStale {
		t.Fatal("expected stale after invalidation")
	}

	*clock = clock.Add(time.Minute)
	if _, err := s.RefreshMatch(ctx, "c1", "j1", fixtureCandidate(), fixtureJob()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	stored, _ = repo.Get(ctx, "c1", "j1")
	if stored.IsStale {
		t.Error("refresh must clear is_stale")
	}
}

func TestCanRefresh(t *testing.T) {
	repo := newFakeMatchRepo()
	s, clock := newTestService(repo)
	ctx := context.Background()

	// Absent pair: allowed.
	elig, err := s.CanRefresh(ctx, "c1", "j1")
	if err != nil || !elig.Allowed {
		t.Fatalf("CanRefresh absent pair = %+v, %v; want allowed", elig, err)
	}

	if _, err := s.RefreshByID(ctx, "c1", "j1"); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	refreshedAt := *clock

	*clock = clock.Add(time.Hour)
	elig, err = s.CanRefresh(ctx, "c1", "j1")
	if err != nil {
		t.Fatalf("CanRefresh: %v", err)
	}
	if elig.Allowed {
		t.Error("expected denial inside window")
	}
	wantNext := refreshedAt.Add(RefreshWindow)
	if elig.NextEligibleAt == nil || !elig.NextEligibleAt.Equal(wantNext) {
		t.Errorf("NextEligibleAt = %v, want %v", elig.NextEligibleAt, wantNext)
	}

	*clock = refreshedAt.Add(RefreshWindow)
	elig, _ = s.CanRefresh(ctx, "c1", "j1")
	if !elig.Allowed {
		t.Error("expected eligibility exactly at window boundary")
	}
}

func TestInvalidation_IsScoped(t *testing.T) {
	repo := newFakeMatchRepo()
	s, _ := newTestService(repo)
	ctx := context.Background()

	res, _ := s.ComputeMatch(ctx, fixtureCandidate(), fixtureJob())
	_ = s.SaveMatch(ctx, "c1", "j1", res)
	_ = s.SaveMatch(ctx, "c1", "j2", res)
	_ = s.SaveMatch(ctx, "c2", "j1", res)

	if err := s.InvalidateForCandidate(ctx, "c1"); err != nil {
		t.Fatalf("invalidate candidate: %v", err)
	}

	for _, tc := range []struct {
		candidateID, jobID string
		wantStale          bool
	}{
		{"c1", "j1", true},
		{"c1", "j2", true},
		{"c2", "j1", false},
	} {
		m, err := repo.Get(ctx, tc.candidateID, tc.jobID)
		if err != nil {
			t.Fatalf("get %s/%s: %v", tc.candidateID, tc.jobID, err)
		}
		if m.IsStale != tc.wantStale {
			t.Errorf("(%s,%s) stale = %v, want %v", tc.candidateID, tc.jobID, m.IsStale, tc.wantStale)
		}
	}

	if err := s.InvalidateForJob(ctx, "j1"); err != nil {
		t.Fatalf("invalidate job: %v", err)
	}
	m, _ := repo.Get(ctx, "c2", "j1")
	if !m.IsStale {
		t.Error("job invalidation must reach every candidate's row for that job")
	}
}

func TestListMatches_OrderedByScore(t *testing.T) {
	repo := newFakeMatchRepo()
	s, _ := newTestService(repo)
	ctx := context.Background()

	strong, _ := s.ComputeMatch(ctx, fixtureCandidate(), fixtureJob())
	weakJob := fixtureJob()
	weakJob.ID = "j2"
	weakJob.RequiredSkills = []string{"Rust", "Kubernetes", "Terraform"}
	weak, _ := s.ComputeMatch(ctx, fixtureCandidate(), weakJob)

	_ = s.SaveMatch(ctx, "c1", "j2", weak)
	_ = s.SaveMatch(ctx, "c1", "j1", strong)

	rows, err := s.ListMatches(ctx, "c1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].OverallScore < rows[1].OverallScore {
		t.Errorf("rows not ordered by score desc: %d then %d", rows[0].OverallScore, rows[1].OverallScore)
	}
	if rows[0].JobID != "j1" {
		t.Errorf("strongest match first, got %s", rows[0].JobID)
	}
}

func TestGetMatch_NotFound(t *testing.T) {
	s, _ := newTestService(newFakeMatchRepo())

	_, err := s.GetMatch(context.Background(), "c1", "missing")
	if !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestRefreshByID_UnknownRecords(t *testing.T) {
	s, _ := newTestService(newFakeMatchRepo())

	_, err := s.RefreshByID(context.Background(), "ghost", "j1")
	if !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND for unknown candidate", err)
	}
}
