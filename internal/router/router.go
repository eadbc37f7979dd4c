package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/quizdeck/quizdeck-backend/internal/config"
	"github.com/quizdeck/quizdeck-backend/internal/handler"
	"github.com/quizdeck/quizdeck-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Questionnaire *handler.QuestionnaireHandler
	Question      *handler.QuestionHandler
	Practice      *handler.PracticeHandler
	Exam          *handler.ExamHandler
	Import        *handler.ImportHandler
}

// SetupRouter configures all Gin route groups.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		questionnaires := api.Group("/questionnaires")
		{
			questionnaires.GET("", handlers.Questionnaire.GetAll)
			questionnaires.POST("", handlers.Questionnaire.Create)
			questionnaires.GET("/:id", handlers.Questionnaire.GetByID)
			questionnaires.DELETE("/:id", handlers.Questionnaire.Delete)
			questionnaires.GET("/:id/summary", handlers.Questionnaire.GetSummary)
			questionnaires.POST("/:id/reset", handlers.Questionnaire.ResetResolutions)

			questionnaires.GET("/:id/questions", handlers.Question.GetAll)
			questionnaires.POST("/:id/questions", handlers.Question.Create)

			questionnaires.GET("/:id/practice", handlers.Practice.GetState)
			questionnaires.DELETE("/:id/practice", handlers.Practice.Reset)
			questionnaires.POST("/:id/practice/advance", handlers.Practice.Advance)
			questionnaires.POST("/:id/practice/answer", handlers.Practice.Answer)
		}

		questions := api.Group("/questions")
		{
			questions.PATCH("/:id/explanation", handlers.Question.UpdateExplanation)
			questions.POST("/:id/favorite", handlers.Question.Favorite)
			questions.POST("/:id/mistake", handlers.Question.RecordMistake)
			questions.DELETE("/:id", handlers.Question.Delete)
		}

		exams := api.Group("/exams")
		{
			exams.GET("", handlers.Exam.GetAll)
			exams.POST("", handlers.Exam.Create)
			exams.POST("/balanced", handlers.Exam.CreateBalanced)
			exams.GET("/:id", handlers.Exam.GetByID)
			exams.DELETE("/:id", handlers.Exam.Delete)
			exams.GET("/:id/current", handlers.Exam.GetCurrent)
			exams.POST("/:id/answer", handlers.Exam.Answer)
		}

		api.POST("/import", handlers.Import.Import)
	}

	return router
}
