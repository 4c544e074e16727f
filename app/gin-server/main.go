package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/jobhive/jobhive-backend/config"
	"github.com/jobhive/jobhive-backend/internal/api/handlers"
	"github.com/jobhive/jobhive-backend/internal/api/middleware"
	"github.com/jobhive/jobhive-backend/internal/api/routes"
	"github.com/jobhive/jobhive-backend/internal/cache"
	"github.com/jobhive/jobhive-backend/internal/insight"
	"github.com/jobhive/jobhive-backend/internal/logger"
	"github.com/jobhive/jobhive-backend/internal/providers/llm"
	pgrepo "github.com/jobhive/jobhive-backend/internal/repositories/postgres"
	"github.com/jobhive/jobhive-backend/internal/services"
)

func main() {
	_ = godotenv.Load()

	l := logger.New()

	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	l.Info("PostgreSQL connected")

	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	l.Info("Redis connected")

	// LLM is optional; without it the deterministic fallback carries insights.
	var analyzer insight.Analyzer = insight.FallbackAnalyzer{}
	if project := os.Getenv("GCP_PROJECT_ID"); project != "" {
		provider, err := llm.NewVertexGemini(
			context.Background(),
			project,
			os.Getenv("GCP_LOCATION"),
			os.Getenv("GEMINI_MODEL"),
		)
		if err != nil {
			log.Fatalf("Vertex init error: %v", err)
		}
		defer provider.Close()
		analyzer = insight.NewLLMAnalyzer(provider, 10*time.Second, l)
		l.WithField("model", provider.Model()).Info("Vertex Gemini ready")
	} else {
		l.Warn("GCP_PROJECT_ID not set, match insights use rule-based fallback")
	}

	matchRepo := pgrepo.NewMatchRepo(config.PostgresDB)
	candidateRepo := pgrepo.NewCandidateRepo(config.PostgresDB)
	jobRepo := pgrepo.NewJobRepo(config.PostgresDB)

	redisCache := cache.NewRedisCache(config.RedisClient)
	limiter := middleware.NewRedisLimiter(config.RedisClient)

	matchSvc := services.NewMatchService(matchRepo, candidateRepo, jobRepo, analyzer, redisCache)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(l))

	routes.RegisterRoutes(r, routes.Deps{
		Match:   handlers.NewMatchHandler(matchSvc),
		Limiter: limiter,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
