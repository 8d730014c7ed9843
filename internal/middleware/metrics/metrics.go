package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shoprec_http_requests_total",
		Help: "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shoprec_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	}, []string{"route", "method"})

	// RecommendTotal 每次推荐按策略计数
	RecommendTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shoprec_recommendations_total",
		Help: "Recommendation requests by strategy",
	}, []string{"strategy"})

	RecommendResultSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shoprec_recommendation_result_size",
		Help:    "Number of items returned per recommendation",
		Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
	}, []string{"strategy"})

	EmbeddingTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shoprec_embeddings_total",
		Help: "Embedding computations by result",
	}, []string{"result"})

	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shoprec_interaction_events_total",
		Help: "Interaction events by type and result",
	}, []string{"type", "result"})
)

// ObserveRecommendation 记录一次推荐结果
func ObserveRecommendation(strategy string, n int) {
	RecommendTotal.WithLabelValues(strategy).Inc()
	RecommendResultSize.WithLabelValues(strategy).Observe(float64(n))
}

// Middleware 使用路由模板作为 label，未匹配的路由统一记为 unmatched
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
