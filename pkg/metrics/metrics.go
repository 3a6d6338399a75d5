package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	// 项目状态流转计数
	ProjectTransitionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_status_transition_count",
			Help: "Total number of project status transitions",
		},
		[]string{"from", "to"},
	)

	// 状态流转审计写入失败计数
	AuditWriteFailureCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "project_audit_write_failure_count",
			Help: "Status transitions whose audit record could not be written",
		},
	)

	// 里程碑重排失败计数
	ReorderFailureCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "milestone_reorder_failure_count",
			Help: "Milestone reorders that stopped partway",
		},
	)

	// 保修理赔计数
	ClaimCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warranty_claim_count",
			Help: "Total number of warranty claims by outcome",
		},
		[]string{"outcome"}, // outcome: created, rejected_ineligible, resolved
	)

	// 保修过期扫描计数
	WarrantyExpiredCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "warranty_expired_count",
			Help: "Warranties marked expired by the sweep loop",
		},
	)

	// Outbox 事件分发计数
	OutboxDispatchCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_dispatch_count",
			Help: "Outbox events dispatched to the message bus",
		},
		[]string{"status"}, // status: published, failed
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// IncrementProjectTransition 增加项目状态流转计数
func IncrementProjectTransition(from, to string) {
	ProjectTransitionCount.WithLabelValues(from, to).Inc()
}

// IncrementClaim 增加理赔计数
func IncrementClaim(outcome string) {
	ClaimCount.WithLabelValues(outcome).Inc()
}
