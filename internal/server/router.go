package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mtnvale/stridecoach-backend/internal/handlers"
	"github.com/mtnvale/stridecoach-backend/internal/middleware"
	"github.com/mtnvale/stridecoach-backend/internal/types"
)

type RouterConfig struct {
	AuthMiddleware      *middleware.AuthMiddleware
	AuthHandler         *handlers.AuthHandler
	UserHandler         *handlers.UserHandler
	TeamHandler         *handlers.TeamHandler
	SSEHandler          *handlers.SSEHandler
	SubmissionHandler   *handlers.SubmissionHandler
	QueueHandler        *handlers.QueueHandler
	CommentHandler      *handlers.CommentHandler
	AnnouncementHandler *handlers.AnnouncementHandler
	GearHandler         *handlers.GearHandler
	ResourceHandler     *handlers.ResourceHandler
	ApplicationHandler  *handlers.ApplicationHandler
	AllowedOrigins      []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/api/register", cfg.AuthHandler.Register)
	router.POST("/api/login", cfg.AuthHandler.Login)
	router.POST("/api/refresh", cfg.AuthHandler.Refresh)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Auth
	protected.POST("/api/logout", cfg.AuthHandler.Logout)

	// SSE
	protected.GET("/sse/stream", cfg.SSEHandler.Stream)
	protected.POST("/sse/subscribe", cfg.SSEHandler.Subscribe)
	protected.POST("/sse/unsubscribe", cfg.SSEHandler.Unsubscribe)

	// Staff-only and admin-only write surfaces.
	staff := protected.Group("/")
	staff.Use(cfg.AuthMiddleware.RequireRole(types.RoleCoach, types.RoleAdmin, types.RoleSuperadmin))
	admin := protected.Group("/")
	admin.Use(cfg.AuthMiddleware.RequireRole(types.RoleAdmin, types.RoleSuperadmin))

	// User / team
	protected.GET("/api/user", cfg.UserHandler.GetMe)
	protected.GET("/api/team/members", cfg.UserHandler.ListTeamMembers)
	protected.GET("/api/teams", cfg.TeamHandler.List)
	protected.GET("/api/teams/:id", cfg.TeamHandler.Get)
	admin.POST("/api/teams", cfg.TeamHandler.Create)

	// Submissions
	protected.POST("/api/submissions", cfg.SubmissionHandler.Create)
	protected.GET("/api/submissions/mine", cfg.SubmissionHandler.ListMine)
	protected.GET("/api/submissions/:id", cfg.SubmissionHandler.Get)
	protected.POST("/api/submissions/:id/video", cfg.SubmissionHandler.UploadVideo)
	protected.PATCH("/api/submissions/:id/media", cfg.SubmissionHandler.AttachMedia)
	protected.POST("/api/submissions/:id/claim", cfg.SubmissionHandler.Claim)
	protected.POST("/api/submissions/:id/start-review", cfg.SubmissionHandler.StartReview)
	protected.POST("/api/submissions/:id/review", cfg.SubmissionHandler.PublishReview)

	// Queue
	staff.GET("/api/queue", cfg.QueueHandler.View)

	// Comments
	protected.POST("/api/submissions/:id/comments", cfg.CommentHandler.Create)
	protected.GET("/api/submissions/:id/comments", cfg.CommentHandler.ListThreads)
	protected.PATCH("/api/comments/:id", cfg.CommentHandler.Edit)
	protected.DELETE("/api/comments/:id", cfg.CommentHandler.Delete)

	// Announcements
	protected.GET("/api/announcements", cfg.AnnouncementHandler.List)
	staff.POST("/api/announcements", cfg.AnnouncementHandler.Create)
	staff.PATCH("/api/announcements/:id", cfg.AnnouncementHandler.Update)
	staff.DELETE("/api/announcements/:id", cfg.AnnouncementHandler.Delete)

	// Gear
	protected.GET("/api/gear", cfg.GearHandler.List)
	staff.POST("/api/gear", cfg.GearHandler.Create)
	staff.PATCH("/api/gear/:id", cfg.GearHandler.Update)
	staff.DELETE("/api/gear/:id", cfg.GearHandler.Delete)

	// Resources
	protected.GET("/api/resources", cfg.ResourceHandler.List)
	staff.POST("/api/resources", cfg.ResourceHandler.Create)
	staff.PATCH("/api/resources/:id", cfg.ResourceHandler.Update)
	staff.DELETE("/api/resources/:id", cfg.ResourceHandler.Delete)

	// Coaching applications
	protected.POST("/api/applications", cfg.ApplicationHandler.Apply)
	staff.GET("/api/applications", cfg.ApplicationHandler.ListForTeam)
	protected.GET("/api/applications/mine", cfg.ApplicationHandler.ListMine)
	admin.POST("/api/applications/:id/decide", cfg.ApplicationHandler.Decide)

	return router
}
