package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/internal/handler"
	"github.com/Faitltd/FAIT-sub008/pkg/mq"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	projectHandler *handler.ProjectHandler,
	milestoneHandler *handler.MilestoneHandler,
	taskHandler *handler.TaskHandler,
	issueHandler *handler.IssueHandler,
	warrantyHandler *handler.WarrantyHandler,
	claimHandler *handler.ClaimHandler,
	jwtSecret string,
	logger *zap.Logger,
	db *pgxpool.Pool,
	publisher *mq.Publisher,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(RequestLogMiddleware(logger))

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		if publisher != nil && !publisher.IsConnected() {
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(AuthMiddleware(jwtSecret))
	{
		api.POST("/projects", projectHandler.CreateProject)
		api.GET("/projects", projectHandler.ListProjects)
		api.GET("/projects/:id", projectHandler.GetProject)
		api.PATCH("/projects/:id", projectHandler.UpdateProject)
		api.POST("/projects/:id/status", projectHandler.TransitionStatus)
		api.GET("/projects/:id/status-history", projectHandler.StatusHistory)
		api.GET("/projects/:id/progress", projectHandler.GetProgress)
		api.POST("/projects/:id/progress/recalculate", projectHandler.RecalculateProgress)
		api.GET("/projects/:id/activities", projectHandler.ListActivities)

		api.POST("/projects/:id/timeline", projectHandler.AddTimelineEvent)
		api.GET("/projects/:id/timeline", projectHandler.ListTimelineEvents)
		api.PATCH("/timeline/:event_id", projectHandler.UpdateTimelineEvent)
		api.DELETE("/timeline/:event_id", projectHandler.DeleteTimelineEvent)

		api.POST("/projects/:id/milestones", milestoneHandler.CreateMilestone)
		api.GET("/projects/:id/milestones", milestoneHandler.ListMilestones)
		api.POST("/projects/:id/milestones/reorder", milestoneHandler.Reorder)
		api.GET("/milestones/:id", milestoneHandler.GetMilestone)
		api.PATCH("/milestones/:id", milestoneHandler.UpdateMilestone)
		api.POST("/milestones/:id/progress", milestoneHandler.UpdateProgress)
		api.DELETE("/milestones/:id", milestoneHandler.DeleteMilestone)

		api.POST("/projects/:id/tasks", taskHandler.CreateTask)
		api.GET("/projects/:id/tasks", taskHandler.ListTasks)
		api.GET("/tasks/:id", taskHandler.GetTask)
		api.PATCH("/tasks/:id", taskHandler.UpdateTask)
		api.POST("/tasks/:id/status", taskHandler.UpdateStatus)
		api.DELETE("/tasks/:id", taskHandler.DeleteTask)

		api.POST("/projects/:id/issues", issueHandler.CreateIssue)
		api.GET("/projects/:id/issues", issueHandler.ListIssues)
		api.GET("/issues/:id", issueHandler.GetIssue)
		api.PATCH("/issues/:id", issueHandler.UpdateIssue)
		api.POST("/issues/:id/status", issueHandler.UpdateStatus)
		api.POST("/issues/:id/resolve", issueHandler.ResolveIssue)

		api.POST("/warranties", warrantyHandler.CreateWarranty)
		api.GET("/warranties", warrantyHandler.ListWarranties)
		api.GET("/warranty-types", warrantyHandler.ListWarrantyTypes)
		api.GET("/warranties/:id", warrantyHandler.GetWarranty)
		api.PATCH("/warranties/:id", warrantyHandler.UpdateWarranty)
		api.POST("/warranties/:id/void", warrantyHandler.VoidWarranty)
		api.GET("/warranties/:id/eligibility", warrantyHandler.CheckEligibility)

		api.POST("/warranties/:id/claims", claimHandler.CreateClaim)
		api.GET("/warranties/:id/claims", claimHandler.ListClaims)
		api.GET("/claims/:id", claimHandler.GetClaim)
		api.POST("/claims/:id/status", claimHandler.UpdateStatus)
		api.POST("/claims/:id/updates", claimHandler.AddUpdate)
		api.GET("/claims/:id/updates", claimHandler.ListUpdates)
	}

	return &Router{Engine: r}
}
