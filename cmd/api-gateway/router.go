package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/uniplanner-api/internal/handler"
	"github.com/noah-isme/uniplanner-api/internal/middleware"
	"github.com/noah-isme/uniplanner-api/internal/models"
	"github.com/noah-isme/uniplanner-api/internal/service"
	"github.com/noah-isme/uniplanner-api/pkg/config"
	"github.com/noah-isme/uniplanner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/uniplanner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/uniplanner-api/pkg/middleware/requestid"
)

type routeHandlers struct {
	auth      *handler.AuthHandler
	courses   *handler.CourseHandler
	selection *handler.SelectionHandler
	students  *handler.StudentHandler
	semaforo  *handler.SemaforoHandler
	tasks     *handler.TaskHandler
	calendar  *handler.CalendarHandler
	reports   *handler.ReportHandler
	metrics   *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, auth middleware.TokenValidator, metrics *service.MetricsService, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", h.metrics.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	requireAuth := middleware.JWT(auth)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	api := r.Group(cfg.APIPrefix)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.auth.Register)
	authGroup.POST("/login", h.auth.Login)
	authGroup.POST("/refresh", h.auth.Refresh)
	authGroup.POST("/logout", requireAuth, h.auth.Logout)

	courses := api.Group("/courses")
	courses.GET("", h.courses.List)
	courses.GET("/:code", middleware.OptionalJWT(auth), h.courses.Get)
	courses.POST("/cache/invalidate", requireAuth, adminOnly, h.courses.InvalidateCache)

	sessions := api.Group("/selection-sessions")
	sessions.POST("", h.selection.Start)
	sessions.GET("/:id", h.selection.Get)
	sessions.DELETE("/:id", h.selection.Discard)
	sessions.POST("/:id/approved/:code", h.selection.ToggleApproved)
	sessions.POST("/:id/in-progress/:code", h.selection.ToggleInProgress)
	sessions.POST("/:id/advance", h.selection.Advance)
	sessions.POST("/:id/skip", h.selection.Skip)
	sessions.POST("/:id/finalize", h.selection.Finalize)

	me := api.Group("/me", requireAuth)
	me.GET("/profile", h.students.Profile)
	me.GET("/stats", h.students.Stats)
	me.GET("/courses/approved", h.students.Approved)
	me.GET("/courses/in-progress", h.students.InProgress)
	me.POST("/courses/enroll", h.students.Enroll)
	me.POST("/courses/cancel", h.students.Cancel)
	me.GET("/semaforo", h.semaforo.Map)
	me.GET("/semaforo/:code", h.semaforo.Course)

	tasks := api.Group("/tasks", requireAuth)
	tasks.GET("", h.tasks.List)
	tasks.POST("", h.tasks.Create)
	tasks.GET("/urgent", h.tasks.Urgent)
	tasks.DELETE("/:id", h.tasks.Delete)
	tasks.POST("/:id/complete", h.tasks.Complete)
	tasks.POST("/:id/progress", h.tasks.Progress)

	calendar := api.Group("/calendar")
	calendar.GET("/events", h.calendar.List)
	calendar.POST("/events", requireAuth, adminOnly, h.calendar.Create)

	if h.reports != nil {
		reports := api.Group("/reports", requireAuth)
		reports.POST("", h.reports.Create)
		reports.GET("", h.reports.List)
		reports.POST("/progress", h.reports.CreateProgress)
		reports.GET("/:id", h.reports.Status)
		api.GET("/export/:token", h.reports.Download)
	}

	api.GET("/metrics/summary", requireAuth, adminOnly, h.metrics.Summary)

	return r
}
