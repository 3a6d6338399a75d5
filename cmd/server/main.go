package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/internal/config"
	"github.com/Faitltd/FAIT-sub008/internal/handler"
	"github.com/Faitltd/FAIT-sub008/internal/httpserver"
	"github.com/Faitltd/FAIT-sub008/internal/repository"
	"github.com/Faitltd/FAIT-sub008/internal/service"
	"github.com/Faitltd/FAIT-sub008/pkg/db"
	"github.com/Faitltd/FAIT-sub008/pkg/logger"
	"github.com/Faitltd/FAIT-sub008/pkg/mq"
	"github.com/Faitltd/FAIT-sub008/pkg/outbox"
	"github.com/Faitltd/FAIT-sub008/pkg/redis"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting project-service...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("mq_url", cfg.MQ.URL),
	)

	// DB
	log.Info("Initializing database connection...")
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	log.Info("Database connection established successfully")

	// Redis
	rdb := redis.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	// MQ publisher + outbox
	log.Info("Initializing MQ publisher...")
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	outboxRepo := outbox.NewRepository(dbConn)
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log)
	if cfg.Worker.OutboxBatchSize > 0 {
		dispatcher = dispatcher.WithBatchSize(cfg.Worker.OutboxBatchSize)
	}
	go dispatcher.Start(context.Background())

	// Repositories
	projectRepo := repository.NewProjectRepository(dbConn, log)
	statusUpdateRepo := repository.NewStatusUpdateRepository(dbConn, log)
	milestoneRepo := repository.NewMilestoneRepository(dbConn, log)
	taskRepo := repository.NewTaskRepository(dbConn, log)
	issueRepo := repository.NewIssueRepository(dbConn, log)
	timelineRepo := repository.NewTimelineRepository(dbConn, log)
	activityRepo := repository.NewActivityRepository(dbConn, log)
	warrantyRepo := repository.NewWarrantyRepository(dbConn, log)
	warrantyTypeRepo := repository.NewWarrantyTypeRepository(dbConn, log)
	claimRepo := repository.NewClaimRepository(dbConn, log)

	// Services
	projectSvc := service.NewProjectService(projectRepo, statusUpdateRepo, milestoneRepo, taskRepo, timelineRepo, activityRepo, outboxRepo, log)
	milestoneSvc := service.NewMilestoneService(milestoneRepo, activityRepo, outboxRepo, log)
	taskSvc := service.NewTaskService(taskRepo, activityRepo, projectSvc, log)
	issueSvc := service.NewIssueService(issueRepo, activityRepo, log)
	warrantySvc := service.NewWarrantyService(warrantyRepo, warrantyTypeRepo, rdb, outboxRepo, log)
	claimSvc := service.NewClaimService(claimRepo, warrantySvc, outboxRepo, log)

	// Handlers + router
	projectHandler := handler.NewProjectHandler(projectSvc, log)
	milestoneHandler := handler.NewMilestoneHandler(milestoneSvc, log)
	taskHandler := handler.NewTaskHandler(taskSvc, log)
	issueHandler := handler.NewIssueHandler(issueSvc, log)
	warrantyHandler := handler.NewWarrantyHandler(warrantySvc, log)
	claimHandler := handler.NewClaimHandler(claimSvc, log)

	router := httpserver.NewRouter(
		projectHandler,
		milestoneHandler,
		taskHandler,
		issueHandler,
		warrantyHandler,
		claimHandler,
		cfg.JWT.Secret,
		log,
		dbConn,
		publisher,
	)

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router.Engine,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("project-service is fully initialized and running",
		zap.String("http_port", cfg.Server.Port),
	)

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down project-service gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("Closing database connection...")
	dbConn.Close()

	log.Info("project-service shutdown complete")
}
