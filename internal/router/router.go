package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/lms-backend/internal/config"
	"github.com/stemsi/lms-backend/internal/handler"
	"github.com/stemsi/lms-backend/internal/middleware"
	"github.com/stemsi/lms-backend/internal/model"
	"github.com/stemsi/lms-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Student *handler.StudentHandler
	Quiz    *handler.QuizHandler
	Result  *handler.ResultHandler
	WS      *handler.WSHandler
	System  *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// submitLimiter throttles quiz submissions per student.
func SetupRouter(
	auth middleware.TokenValidator,
	handlers *Handlers,
	submitLimiter *middleware.RateLimiter,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)
	router.GET("/ready", handlers.System.Ready)

	// ─── 1. Student Group (JWT) ────────────────────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(auth), middleware.NoStore())
	{
		studentAPI.GET("/quizzes/:quiz_id", handlers.Student.GetQuizPaper)
		studentAPI.POST("/quizzes/:quiz_id/submit",
			submitLimiter.Middleware(),
			handlers.Student.SubmitQuiz,
		)
		studentAPI.GET("/results", handlers.Student.ListMyResults)
		studentAPI.GET("/results/:id", handlers.Student.GetMyResult)
	}

	// ─── 2. Instructor Group (JWT + RBAC) ──────────────────────────────
	instructorAPI := router.Group("/api/v1/instructor")
	instructorAPI.Use(middleware.RequireInstructorJWT(auth), middleware.NoStore())
	{
		// Quiz authoring
		instructorAPI.POST("/quizzes",
			middleware.RequirePermission(model.PermissionQuizzesWrite),
			handlers.Quiz.CreateQuiz,
		)
		instructorAPI.GET("/quizzes/:id",
			middleware.RequirePermission(model.PermissionQuizzesRead),
			handlers.Quiz.GetQuiz,
		)
		instructorAPI.GET("/courses/:course_id/quizzes",
			middleware.RequirePermission(model.PermissionQuizzesRead),
			handlers.Quiz.ListQuizzes,
		)
		instructorAPI.POST("/quizzes/:id/questions",
			middleware.RequirePermission(model.PermissionQuizzesWrite),
			handlers.Quiz.AddQuestion,
		)
		instructorAPI.GET("/quizzes/:id/stats",
			middleware.RequirePermission(model.PermissionResultsRead),
			handlers.Quiz.GetQuizStats,
		)

		// Results
		instructorAPI.GET("/results",
			middleware.RequirePermission(model.PermissionResultsRead),
			handlers.Result.ListResults,
		)
		instructorAPI.GET("/results/:id",
			middleware.RequirePermission(model.PermissionResultsRead),
			handlers.Result.GetResult,
		)
	}

	// ─── 3. WebSocket Group (token query param) ────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireInstructorWSAuth(auth))
	{
		ws.GET("/instructor/quizzes/:id/results",
			middleware.RequirePermission(model.PermissionResultsRead),
			handlers.WS.QuizResultStream,
		)
	}

	return router
}
