package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jobhive/jobhive-backend/internal/api/handlers"
	"github.com/jobhive/jobhive-backend/internal/api/middleware"
)

type Deps struct {
	Match   *handlers.MatchHandler
	Limiter *middleware.RedisLimiter
}

// refresh burst guard: the 24h eligibility window lives in the store; this
// only stops hammering.
const (
	refreshBurstLimit  = 10
	refreshBurstWindow = time.Minute
)

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.POST("/matches/compute", d.Match.Compute)
	auth.GET("/matches", d.Match.List)
	auth.GET("/matches/:job_id", d.Match.Get)
	auth.GET("/matches/:job_id/refresh-eligibility", d.Match.RefreshEligibility)
	auth.POST("/matches/:job_id/refresh",
		middleware.RefreshBurstLimit(d.Limiter, refreshBurstLimit, refreshBurstWindow),
		d.Match.Refresh)

	// Staleness hooks called by the profile/job services.
	auth.POST("/internal/invalidate/candidate/:id", d.Match.InvalidateCandidate)
	auth.POST("/internal/invalidate/job/:id", d.Match.InvalidateJob)
}
