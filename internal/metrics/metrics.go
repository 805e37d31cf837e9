package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Transorder Service Metrics - 订单托管服务监控指标
var (
	// OrdersTotal 订单操作总数 (按操作、类别分组)
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "transorder",
			Subsystem: "engine",
			Name:      "orders_total",
			Help:      "订单操作总数，按操作(created/revoked/accepted/claimed)和类别分组",
		},
		[]string{"operation", "category"},
	)

	// OperationLatency 操作处理延迟
	OperationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "transorder",
			Subsystem: "engine",
			Name:      "operation_latency_seconds",
			Help:      "操作处理延迟(秒)，按操作类型(create/revoke/accept/claim/retrieve)分组",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to 16s
		},
		[]string{"operation"},
	)

	// EscrowOperations 托管资金操作计数
	EscrowOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "transorder",
			Subsystem: "engine",
			Name:      "escrow_operations_total",
			Help:      "托管资金操作总数，按操作类型(deposit/refund/guarantee/claim/redeem)和代币分组",
		},
		[]string{"operation", "token"},
	)

	// RejectionsTotal 请求拒绝计数
	RejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "transorder",
			Subsystem: "engine",
			Name:      "rejections_total",
			Help:      "请求拒绝总数，按原因分组: insufficient_funds(余额不足), window_closed(执行窗口外), invalid_state(状态冲突), guarantee_mismatch(保证金不匹配)",
		},
		[]string{"reason"},
	)

	// ReceiptsOutstanding 系统未赎回凭证总量
	ReceiptsOutstanding = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "transorder",
			Subsystem: "engine",
			Name:      "receipts_outstanding",
			Help:      "系统当前未赎回的 Gas 凭证总量",
		},
	)

	// RedisOperationLatency Redis 操作延迟
	RedisOperationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "transorder",
			Subsystem: "engine",
			Name:      "redis_operation_latency_seconds",
			Help:      "Redis 操作延迟(秒)，按操作类型分组",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to 200ms
		},
		[]string{"operation"},
	)

	// DataIntegrityCritical 数据一致性严重错误
	DataIntegrityCritical = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "transorder",
			Subsystem: "engine",
			Name:      "data_integrity_critical_total",
			Help:      "数据一致性严重错误 (P0 级告警)，如退款回滚失败、金库余额不守恒等",
		},
		[]string{"type", "reason"},
	)

	// DBConnectionPool DB 连接池状态
	DBConnectionPool = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "transorder",
			Subsystem: "engine",
			Name:      "db_connection_pool",
			Help:      "DB 连接池状态",
		},
		[]string{"state"}, // open, idle, in_use, max
	)
)

// ========== Helper functions 辅助函数 ==========

// RecordOrderCreated 记录订单创建
func RecordOrderCreated(category string) {
	OrdersTotal.WithLabelValues("created", category).Inc()
}

// RecordOrderRevoked 记录订单撤销
func RecordOrderRevoked(category string) {
	OrdersTotal.WithLabelValues("revoked", category).Inc()
}

// RecordOrderAccepted 记录订单接单
func RecordOrderAccepted(category string) {
	OrdersTotal.WithLabelValues("accepted", category).Inc()
}

// RecordOrderClaimed 记录订单报酬全额领取
func RecordOrderClaimed(category string) {
	OrdersTotal.WithLabelValues("claimed", category).Inc()
}

// RecordRejection 记录请求拒绝
// reason 取值: insufficient_funds, window_closed, invalid_state, guarantee_mismatch
func RecordRejection(reason string) {
	RejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordEscrowOperation 记录托管资金操作
// operation 取值: deposit, refund, guarantee, claim, redeem
func RecordEscrowOperation(operation, token string) {
	EscrowOperations.WithLabelValues(operation, token).Inc()
}

// RecordDataIntegrityCritical 记录数据一致性严重错误
func RecordDataIntegrityCritical(errType, reason string) {
	DataIntegrityCritical.WithLabelValues(errType, reason).Inc()
}

// AddReceiptsOutstanding 调整未赎回凭证总量
func AddReceiptsOutstanding(delta float64) {
	ReceiptsOutstanding.Add(delta)
}
