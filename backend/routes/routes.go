package routes

import (
	"lessons/backend/config"
	"lessons/backend/controllers"
	"lessons/backend/identity"
	"lessons/backend/metrics"
	"lessons/backend/middleware"
	"lessons/backend/moderation"
	"lessons/backend/payment"
	"lessons/backend/store"
	"lessons/backend/toggle"
	"lessons/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// Dependencies is everything the handlers need, built by main.
type Dependencies struct {
	Cfg      *config.Config
	Log      *utils.Logger
	Store    *store.Store
	Resolver *identity.Resolver
	Payments *payment.Gate
	Metrics  *metrics.Metrics
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	s := deps.Store
	reactions := toggle.NewStore(s.Reactions)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))

	// Middleware
	authMiddleware := middleware.AuthMiddleware(deps.Resolver)
	optionalAuth := middleware.OptionalAuth(deps.Resolver)
	adminMiddleware := middleware.AdminMiddleware()

	// Auth routes
	authController := controllers.NewAuthController(s.Users, deps.Cfg, deps.Log)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// User routes
	userController := controllers.NewUserController(s.Users, s.Lessons, reactions)
	app.Post("/api/users", authMiddleware, authController.SyncUser)
	app.Get("/api/users/me", authMiddleware, userController.GetProfile)
	app.Patch("/api/users/me", authMiddleware, userController.UpdateProfile)

	// Lessons routes
	lessonsController := controllers.NewLessonsController(s.Lessons, reactions)
	reactionsController := controllers.NewReactionsController(lessonsController, deps.Metrics)
	commentsController := controllers.NewCommentsController(lessonsController, s.Comments)
	moderationController := controllers.NewModerationController(moderation.NewService(s.Reports), deps.Metrics)

	lessons := app.Group("/api/lessons")
	lessons.Get("/", optionalAuth, lessonsController.GetLessons)
	lessons.Get("/featured", optionalAuth, lessonsController.GetFeatured)
	lessons.Get("/mine", authMiddleware, lessonsController.GetMine)
	lessons.Post("/", authMiddleware, lessonsController.CreateLesson)
	lessons.Get("/:id", optionalAuth, lessonsController.GetLessonDetails)
	lessons.Patch("/:id", authMiddleware, lessonsController.UpdateLesson)
	lessons.Delete("/:id", authMiddleware, lessonsController.DeleteLesson)
	lessons.Post("/:id/favorite", authMiddleware, reactionsController.ToggleFavorite)
	lessons.Post("/:id/like", authMiddleware, reactionsController.ToggleLike)
	lessons.Get("/:id/stats", optionalAuth, reactionsController.GetStats)
	lessons.Post("/:id/report", authMiddleware, moderationController.ReportLesson)
	lessons.Get("/:id/comments", optionalAuth, commentsController.GetLessonComments)
	lessons.Post("/:id/comments", authMiddleware, commentsController.AddLessonComment)
	app.Get("/api/favorites", authMiddleware, reactionsController.GetFavorites)

	// Payments routes
	paymentController := controllers.NewPaymentController(deps.Payments, deps.Metrics, deps.Log)
	payments := app.Group("/api/payments")
	payments.Post("/webhook", paymentController.Webhook)
	payments.Post("/checkout", authMiddleware, paymentController.Checkout)
	payments.Post("/confirm", authMiddleware, paymentController.ConfirmPayment)
	payments.Get("/history", authMiddleware, paymentController.GetHistory)

	// Admin routes
	adminController := controllers.NewAdminController(s.Users, s.Lessons, deps.Log)
	analyticsController := controllers.NewAnalyticsController(s.Analytics)
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Get("/users", adminController.GetUsers)
	admin.Patch("/users/:id/role", adminController.UpdateUserRole)
	admin.Patch("/users/:id/premium", adminController.UpdateUserPremium)
	admin.Patch("/lessons/:id/featured", adminController.SetFeatured)
	admin.Patch("/lessons/:id/privacy", adminController.SetPrivacy)
	admin.Get("/reports/flagged", moderationController.GetFlagged)
	admin.Get("/lessons/:id/reports", moderationController.GetLessonReports)
	admin.Delete("/lessons/:id/reports", moderationController.DismissReports)
	admin.Patch("/lessons/:id/reports/review", moderationController.ReviewLessonReports)
	admin.Patch("/reports/:id/review", moderationController.ReviewReport)
	admin.Get("/payments", paymentController.GetAllPayments)
	admin.Get("/analytics", analyticsController.GetPlatformAnalytics)
}
