package utils

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
)

var prefix = os.Getenv("HUFFCODEC_METRICS_PREFIX")

// 总操作数
var TotalOperations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: prefix + "total_operations",
		Help: "Total number of compress and decompress operations",
	},
	[]string{"op", "alphabet", "status"},
)

// 总耗时
var OperationDurations = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    prefix + "operation_durations",
		Help:    "Total seconds of durations for compress and decompress",
		Buckets: []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	},
	[]string{"op", "alphabet"},
)

// 压缩率
var CompressionRatios = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    prefix + "compression_ratios",
		Help:    "Compressed size divided by original size",
		Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1, 1.25},
	},
	[]string{"alphabet"},
)

// 处理的字节数
var TotalBytes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: prefix + "total_bytes",
		Help: "Total number of bytes read and written",
	},
	[]string{"op", "direction"},
)

// 缓存数
var TotalCaches = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: prefix + "total_caches",
		Help: "Total number of compress results served from cache",
	},
	[]string{"op", "status"},
)

// 批处理文件数
var TotalJobs = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: prefix + "total_jobs",
		Help: "Total number of batch jobs processed",
	},
	[]string{"target", "status"},
)

// 消息数
var TotalAmqpMessages = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: prefix + "total_amqp_messages",
		Help: "Total number of publish messaged",
	},
	[]string{"target", "status"},
)

var Collectors = []prometheus.Collector{
	TotalOperations,
	OperationDurations,
	CompressionRatios,
	TotalBytes,
	TotalCaches,
	TotalJobs,
	TotalAmqpMessages,
}
