package routes

import (
	"github.com/adhirath/backend/ai"
	"github.com/adhirath/backend/config"
	"github.com/adhirath/backend/controllers"
	"github.com/adhirath/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/signup", authController.Signup)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	users := app.Group("/api/users", authMiddleware)
	users.Get("/me", userController.GetMe)
	users.Put("/profile", userController.UpdateProfile)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg)
	prog := app.Group("/api/progress", authMiddleware)
	prog.Get("/", progressController.GetProgress)
	prog.Post("/video", progressController.UpdateVideoProgress)
	prog.Post("/pathway", progressController.UpdatePathwayProgress)
	prog.Post("/quiz", progressController.SaveQuizResult)
	prog.Post("/preferences", progressController.UpdatePreferences)
	prog.Post("/achievement", progressController.UpdateAchievementProgress)

	// Assessment routes
	assessmentController := controllers.NewAssessmentController(db, cfg, ai.NewClient(cfg.AIServiceURL))
	assessment := app.Group("/api/assessment", authMiddleware)
	assessment.Post("/submit", assessmentController.Submit)
	assessment.Get("/history", assessmentController.History)
	assessment.Get("/:id", assessmentController.Get)

	// Review routes
	reviewController := controllers.NewReviewController(db, cfg)
	app.Post("/api/reviews/submit", authMiddleware, reviewController.Submit)
	app.Get("/api/reviews", reviewController.List)
}
