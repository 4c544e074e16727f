package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jobhive/jobhive-backend/internal/services"
	"github.com/jobhive/jobhive-backend/internal/utils"
)

type MatchHandler struct {
	svc services.MatchService
}

func NewMatchHandler(svc services.MatchService) *MatchHandler {
	return &MatchHandler{svc: svc}
}

type ComputeMatchRequest struct {
	JobID string `json:"job_id" binding:"required"`
}

func (h *MatchHandler) Compute(c *gin.Context) {
	candidateID, ok := requireCandidateID(c)
	if !ok {
		return
	}

	var req ComputeMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "MatchHandler.Compute", "invalid request body", err))
		return
	}

	res, err := h.svc.ComputeAndSave(c.Request.Context(), candidateID, req.JobID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *MatchHandler) Get(c *gin.Context) {
	candidateID, ok := requireCandidateID(c)
	if !ok {
		return
	}

	m, err := h.svc.GetMatch(c.Request.Context(), candidateID, c.Param("job_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, m)
}

func (h *MatchHandler) List(c *gin.Context) {
	candidateID, ok := requireCandidateID(c)
	if !ok {
		return
	}

	rows, err := h.svc.ListMatches(c.Request.Context(), candidateID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

func (h *MatchHandler) RefreshEligibility(c *gin.Context) {
	candidateID, ok := requireCandidateID(c)
	if !ok {
		return
	}

	elig, err := h.svc.CanRefresh(c.Request.Context(), candidateID, c.Param("job_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, elig)
}

type rateLimitedResponse struct {
	Code           utils.Code `json:"code"`
	Message        string     `json:"message"`
	NextEligibleAt time.Time  `json:"next_eligible_at"`
}

func (h *MatchHandler) Refresh(c *gin.Context) {
	candidateID, ok := requireCandidateID(c)
	if !ok {
		return
	}

	res, err := h.svc.RefreshByID(c.Request.Context(), candidateID, c.Param("job_id"))
	if err != nil {
		var rl *services.RateLimitedError
		if errors.As(err, &rl) {
			c.JSON(http.StatusTooManyRequests, rateLimitedResponse{
				Code:           utils.CodeRateLimited,
				Message:        "refresh not available yet",
				NextEligibleAt: rl.NextEligibleAt,
			})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// InvalidateCandidate and InvalidateJob are webhook-style hooks for the
// profile and job services to mark derived matches stale after an edit.
func (h *MatchHandler) InvalidateCandidate(c *gin.Context) {
	if err := h.svc.InvalidateForCandidate(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *MatchHandler) InvalidateJob(c *gin.Context) {
	if err := h.svc.InvalidateForJob(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
