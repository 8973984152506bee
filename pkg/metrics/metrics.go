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

	// 数据库操作延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"driver", "operation", "table"},
	)

	// 慢查询计数
	DBSlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_total",
			Help: "Total number of queries slower than the configured threshold",
		},
		[]string{"statement"},
	)

	// 实体写操作计数
	EntityWriteCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entity_write_total",
			Help: "Total number of entity writes",
		},
		[]string{"entity", "operation"}, // operation: create, update, delete, add_client
	)

	// 邮件发送计数
	MailSentCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_sent_total",
			Help: "Total number of manager request mails",
		},
		[]string{"status"}, // status: success, failed, duplicate
	)

	// 事件发布计数
	EventPublishedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_published_total",
			Help: "Total number of domain events published",
		},
		[]string{"routing_key", "status"},
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration 记录数据库操作延迟
func RecordDBQueryDuration(driver, operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(driver, operation, table).Observe(duration.Seconds())
}

// IncrementSlowQuery 记录一次慢查询，statement 取 SQL 的第一个关键字避免高基数
func IncrementSlowQuery(statement string) {
	DBSlowQueryCount.WithLabelValues(statement).Inc()
}

// IncrementEntityWrite 增加实体写计数
func IncrementEntityWrite(entity, operation string) {
	EntityWriteCount.WithLabelValues(entity, operation).Inc()
}

// IncrementMailSent 增加邮件发送计数
func IncrementMailSent(status string) {
	MailSentCount.WithLabelValues(status).Inc()
}

// IncrementEventPublished 增加事件发布计数
func IncrementEventPublished(routingKey, status string) {
	EventPublishedCount.WithLabelValues(routingKey, status).Inc()
}
