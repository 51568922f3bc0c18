package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-service/internal/cache"
	"github.com/hostelhub/hostel-service/internal/middleware"
	"github.com/hostelhub/hostel-service/internal/models"
	"github.com/hostelhub/hostel-service/internal/services"
	"github.com/hostelhub/hostel-service/internal/upload"
	"github.com/hostelhub/hostel-service/internal/utils"
)

type HandlerManager struct {
	authHandler      *AuthHandler
	issueHandler     *IssueHandler
	communityHandler *CommunityHandler
	messageHandler   *MessageHandler
	studentHandler   *StudentHandler
	logger           utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	images ImageStore,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:      NewAuthHandler(serviceManager.Auth(), logger),
		issueHandler:     NewIssueHandler(serviceManager.Issue(), serviceManager.User(), serviceManager.Export(), images, logger),
		communityHandler: NewCommunityHandler(serviceManager.Comment(), serviceManager.Announcement(), serviceManager.LostFound(), logger),
		messageHandler:   NewMessageHandler(serviceManager.Message(), serviceManager.Notification(), logger),
		studentHandler:   NewStudentHandler(serviceManager.User(), logger),
		logger:           logger,
	}
}

// RouteOptions carries everything outside the handlers that routing needs
type RouteOptions struct {
	Verifier middleware.TokenVerifier
	// Counter backs the issue creation limit. nil disables limiting.
	Counter        cache.CounterStore
	IssueRateLimit int

	// Route policies. When false the route is admin only.
	PublicIssueListing  bool
	PublicStatusUpdates bool

	CORSOrigins []string
	UploadDir   string

	// Optional surfaces
	Metrics interface {
		Handler() http.Handler
		Middleware() gin.HandlerFunc
	}
	Socket http.Handler
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, opts RouteOptions) {
	router.Use(middleware.CORS(opts.CORSOrigins))
	router.Use(utils.ContextLogger(hm.logger))
	router.Use(utils.LoggerMiddleware(hm.logger))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	// Health check endpoint
	router.GET("/health", HealthCheck)

	if opts.Socket != nil {
		router.GET("/socket", gin.WrapH(opts.Socket))
	}
	if opts.UploadDir != "" {
		router.Static("/"+upload.PublicPrefix, opts.UploadDir)
	}

	authenticated := middleware.Authenticate(opts.Verifier)
	adminOnly := []gin.HandlerFunc{authenticated, middleware.RequireRole(models.RoleAdmin)}
	studentOnly := []gin.HandlerFunc{authenticated, middleware.RequireRole(models.RoleStudent)}

	// Policy routes are either open to anyone or admin only
	policy := func(public bool) []gin.HandlerFunc {
		if public {
			return []gin.HandlerFunc{middleware.OptionalAuthenticate(opts.Verifier)}
		}
		return adminOnly
	}
	hm.logPolicies(opts)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", hm.authHandler.Login)
			authRoutes.GET("/me", authenticated, hm.authHandler.Me)
		}

		admin := api.Group("/admin", adminOnly...)
		{
			admin.POST("/create-student", hm.authHandler.CreateStudent)
		}

		issues := api.Group("/issues")
		{
			createLimit := middleware.RateLimit(opts.Counter, "issue_create", opts.IssueRateLimit,
				middleware.IssueRateLimitWindow, hm.logger.Slog())
			issues.POST("", append(studentOnly, createLimit, hm.issueHandler.CreateIssue)...)
			issues.GET("", append(policy(opts.PublicIssueListing), hm.issueHandler.ListIssues)...)
			issues.GET("/public", hm.issueHandler.ListPublicIssues)
			issues.GET("/my", append(studentOnly, hm.issueHandler.ListMyIssues)...)
			issues.GET("/staff", append(adminOnly, hm.issueHandler.ListStaff)...)
			issues.GET("/stats", append(adminOnly, hm.issueHandler.GetStats)...)
			issues.GET("/export", append(adminOnly, hm.issueHandler.ExportIssues)...)
			issues.GET("/:id", authenticated, hm.issueHandler.GetIssue)
			issues.PUT("/:id/status", append(policy(opts.PublicStatusUpdates), hm.issueHandler.UpdateIssueStatus)...)
			issues.PUT("/:id/open", append(adminOnly, hm.issueHandler.OpenIssue)...)
			issues.PUT("/:id/resolve", append(adminOnly, hm.issueHandler.ResolveIssue)...)
		}

		comments := api.Group("/comments", authenticated)
		{
			comments.GET("/:issue_id", hm.communityHandler.ListComments)
			comments.POST("/:issue_id", hm.communityHandler.AddComment)
		}

		messages := api.Group("/messages", authenticated)
		{
			messages.GET("/history/:userId", hm.messageHandler.GetHistory)
			messages.POST("", hm.messageHandler.SendMessage)
			messages.GET("/unread-count", hm.messageHandler.UnreadMessageCount)
			messages.PUT("/:id/read", hm.messageHandler.MarkMessageRead)
		}

		notifications := api.Group("/notifications", authenticated)
		{
			notifications.GET("", hm.messageHandler.ListNotifications)
			notifications.GET("/unread-count", hm.messageHandler.UnreadNotificationCount)
			notifications.PUT("/mark-all-read", hm.messageHandler.MarkAllNotificationsRead)
			notifications.PUT("/:id/read", hm.messageHandler.MarkNotificationRead)
		}

		announcements := api.Group("/announcements")
		{
			announcements.GET("", hm.communityHandler.ListAnnouncements)
			announcements.POST("", append(adminOnly, hm.communityHandler.CreateAnnouncement)...)
		}

		lostFound := api.Group("/lost-found", authenticated)
		{
			lostFound.GET("", hm.communityHandler.ListLostFound)
			lostFound.POST("", hm.communityHandler.ReportLostFound)
			lostFound.PUT("/:id/claim", hm.communityHandler.ClaimLostFound)
		}

		students := api.Group("/students", adminOnly...)
		{
			students.GET("", hm.studentHandler.ListStudents)
			students.GET("/:id", hm.studentHandler.GetStudent)
			students.PUT("/:id/deactivate", hm.studentHandler.DeactivateStudent)
		}
	}
}

func (hm *HandlerManager) logPolicies(opts RouteOptions) {
	if opts.Counter == nil || opts.IssueRateLimit <= 0 {
		hm.logger.Warn("Issue creation rate limit disabled")
		return
	}
	hm.logger.Info("Issue creation rate limit enabled",
		slog.Int("limit", opts.IssueRateLimit),
		slog.Duration("window", middleware.IssueRateLimitWindow),
	)
}

// HealthCheck reports liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "hostel-service",
	})
}
