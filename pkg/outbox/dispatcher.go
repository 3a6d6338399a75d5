package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/pkg/metrics"
	"github.com/Faitltd/FAIT-sub008/pkg/mq"
)

// Dispatcher 负责从 outbox 中读取事件并发布到 MQ
type Dispatcher struct {
	repo       *Repository
	publisher  *mq.Publisher
	logger     *zap.Logger
	maxRetries int
	interval   time.Duration
	batchSize  int
}

// NewDispatcher 创建新的 Dispatcher
func NewDispatcher(
	repo *Repository,
	publisher *mq.Publisher,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		repo:       repo,
		publisher:  publisher,
		logger:     logger,
		maxRetries: 5,
		interval:   1 * time.Second,
		batchSize:  100,
	}
}

// WithInterval 设置扫描间隔
func (d *Dispatcher) WithInterval(interval time.Duration) *Dispatcher {
	d.interval = interval
	return d
}

// WithBatchSize 设置批次大小
func (d *Dispatcher) WithBatchSize(batchSize int) *Dispatcher {
	d.batchSize = batchSize
	return d
}

// Start 启动 Dispatcher（阻塞，应在 goroutine 中运行）
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("Outbox dispatcher started",
		zap.Duration("interval", d.interval),
		zap.Int("batch_size", d.batchSize),
	)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Outbox dispatcher stopped")
			return
		case <-ticker.C:
			if err := d.dispatchBatch(ctx); err != nil {
				d.logger.Error("Outbox dispatch batch failed", zap.Error(err))
			}
		}
	}
}

func (d *Dispatcher) dispatchBatch(ctx context.Context) error {
	events, err := d.repo.FetchPending(ctx, d.batchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	for _, event := range events {
		if err := d.publisher.PublishRaw(event.RoutingKey, event.Payload); err != nil {
			d.logger.Error("Failed to publish outbox event",
				zap.Int64("event_id", event.ID),
				zap.String("routing_key", event.RoutingKey),
				zap.Int("retry_count", event.RetryCount),
				zap.Error(err),
			)
			metrics.OutboxDispatchCount.WithLabelValues("failed").Inc()
			if err := d.repo.MarkFailed(ctx, event.ID, d.maxRetries); err != nil {
				d.logger.Error("Failed to record outbox failure",
					zap.Int64("event_id", event.ID),
					zap.Error(err),
				)
			}
			continue
		}

		metrics.OutboxDispatchCount.WithLabelValues("published").Inc()
		if err := d.repo.MarkPublished(ctx, event.ID); err != nil {
			// 事件已发布但标记失败，下一轮会重复发布。消费端需要幂等
			d.logger.Warn("Published event could not be marked, will be re-sent",
				zap.Int64("event_id", event.ID),
				zap.Error(err),
			)
		}
	}

	d.logger.Debug("Outbox batch dispatched", zap.Int("count", len(events)))
	return nil
}
