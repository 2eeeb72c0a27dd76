package v1

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"taskhub/internal/api/v1/handlers"
	"taskhub/internal/config"
	"taskhub/internal/middleware"
)

// NewApp builds the Fiber application with the shared middleware stack and
// every route registered.
func NewApp(deps *config.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    6 << 20,
		Immutable:    true,
	})

	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	if deps.Config.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        deps.Config.RateLimitMax,
			Expiration: 1 * time.Minute,
		}))
	}

	RegisterRoutes(app, deps)
	return app
}

func RegisterRoutes(app *fiber.App, deps *config.Dependencies) {
	h := handlers.New(deps)
	auth := deps.Services.Auth
	requireToken := middleware.UseToken(auth)

	app.Get("/health", h.Health)
	app.Get("/uploads/:filename", h.GetFile)
	app.Get("/ws/notifications", handlers.RequireUpgrade, middleware.QueryToken(auth), h.NotificationSocket())

	api := app.Group("/api/v1")

	// Auth
	api.Post("/auth/register", middleware.OptionalToken(auth), h.Register)
	api.Post("/auth/login", h.Login)
	api.Post("/auth/logout", requireToken, h.Logout)

	// User
	userRoutes := api.Group("/users", requireToken)
	userRoutes.Get("/", h.GetAllUsers)
	userRoutes.Get("/me", h.GetMe)
	userRoutes.Post("/me/avatar", h.UploadAvatar)
	userRoutes.Get("/:id", h.GetUser)
	userRoutes.Patch("/:id", h.UpdateUser)
	userRoutes.Put("/:id/password", h.ChangePassword)
	userRoutes.Delete("/:id", h.DeleteUser)

	// Project
	projectRoutes := api.Group("/projects", requireToken)
	projectRoutes.Post("/", h.CreateProject)
	projectRoutes.Get("/", h.ListProjects)
	projectRoutes.Get("/:id", h.GetProject)
	projectRoutes.Patch("/:id", h.UpdateProject)
	projectRoutes.Delete("/:id", h.DeleteProject)
	projectRoutes.Post("/:id/members", h.AddMember)
	projectRoutes.Delete("/:id/members/:userId", h.RemoveMember)
	projectRoutes.Post("/:id/tasks", h.CreateTask)
	projectRoutes.Get("/:id/tasks", h.ListProjectTasks)

	// Task
	taskRoutes := api.Group("/tasks", requireToken)
	taskRoutes.Get("/", h.ListMyTasks)
	taskRoutes.Get("/:id", h.GetTask)
	taskRoutes.Patch("/:id", h.UpdateTask)
	taskRoutes.Delete("/:id", h.DeleteTask)
	taskRoutes.Post("/:id/comments", h.AddComment)
	taskRoutes.Get("/:id/comments", h.ListComments)

	// Comment
	commentRoutes := api.Group("/comments", requireToken)
	commentRoutes.Patch("/:id", h.UpdateComment)
	commentRoutes.Delete("/:id", h.DeleteComment)

	// Notification
	notificationRoutes := api.Group("/notifications", requireToken)
	notificationRoutes.Get("/", h.ListNotifications)
	notificationRoutes.Post("/read-all", h.MarkAllNotificationsRead)
	notificationRoutes.Patch("/:id/read", h.MarkNotificationRead)
	notificationRoutes.Delete("/:id", h.DeleteNotification)
}
