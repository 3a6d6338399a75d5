package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/internal/config"
	"github.com/Faitltd/FAIT-sub008/internal/repository"
	"github.com/Faitltd/FAIT-sub008/internal/service"
	"github.com/Faitltd/FAIT-sub008/pkg/db"
	"github.com/Faitltd/FAIT-sub008/pkg/logger"
	"github.com/Faitltd/FAIT-sub008/pkg/mq"
	"github.com/Faitltd/FAIT-sub008/pkg/outbox"
)

// The worker runs the background loops: the warranty expiry sweep and the
// outbox dispatcher.
func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting project-worker...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("sweep_minutes", cfg.Worker.ExpirySweepMinutes),
	)

	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	outboxRepo := outbox.NewRepository(dbConn)

	warrantyRepo := repository.NewWarrantyRepository(dbConn, log)
	warrantyTypeRepo := repository.NewWarrantyTypeRepository(dbConn, log)
	warrantySvc := service.NewWarrantyService(warrantyRepo, warrantyTypeRepo, nil, outboxRepo, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Outbox dispatcher
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log)
	if cfg.Worker.OutboxBatchSize > 0 {
		dispatcher = dispatcher.WithBatchSize(cfg.Worker.OutboxBatchSize)
	}
	go dispatcher.Start(ctx)
	log.Info("Outbox dispatcher started")

	// Warranty expiry sweep
	sweepInterval := time.Duration(cfg.Worker.ExpirySweepMinutes) * time.Minute
	if sweepInterval <= 0 {
		sweepInterval = 60 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		runSweep := func() {
			n, err := warrantySvc.ExpireOverdue(ctx)
			if err != nil {
				log.Error("Warranty expiry sweep failed", zap.Error(err))
				return
			}
			log.Info("Warranty expiry sweep complete", zap.Int("expired", n))
		}

		runSweep()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runSweep()
			}
		}
	}()
	log.Info("Warranty expiry sweep started", zap.Duration("interval", sweepInterval))

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down project-worker gracefully...")
	cancel()
	time.Sleep(time.Second)
	log.Info("project-worker shutdown complete")
}
