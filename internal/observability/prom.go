package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "commenthub"

type httpMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

type storeMetrics struct {
	opLatency *prometheus.HistogramVec
	errors    *prometheus.CounterVec
}

// Prom owns every collector the API exports. All of them are registered on the
// registry handed to NewProm, never on the global default.
type Prom struct {
	http  httpMetrics
	store storeMetrics
	auth  *prometheus.CounterVec
}

func NewProm(reg prometheus.Registerer) *Prom {
	f := promauto.With(reg)

	return &Prom{
		http: httpMetrics{
			requests: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by method, route template and status.",
			}, []string{"method", "route", "status"}),
			latency: f.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2.5, 9),
			}, []string{"method", "route"}),
			inFlight: f.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "in_flight_requests",
				Help:      "Requests currently being served.",
			}),
		},
		store: storeMetrics{
			opLatency: f.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "op_duration_seconds",
				Help:      "Store operation latency by logical op and outcome.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2.5, 10),
			}, []string{"op", "status"}),
			errors: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "errors_total",
				Help:      "Failed store operations by logical op and error class.",
			}, []string{"op", "class"}),
		},
		// result is one of ok, rejected, error
		auth: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "events_total",
			Help:      "Credential flows by event and result.",
		}, []string{"event", "result"}),
	}
}

func (p *Prom) RecordAuth(event, result string) {
	p.auth.WithLabelValues(event, result).Inc()
}

// GinHandleMiddleware labels by route template so /comments/:id stays one series.
func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		p.http.inFlight.Inc()
		start := time.Now()

		ctx.Next()

		p.http.inFlight.Dec()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method

		p.http.requests.WithLabelValues(method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		p.http.latency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
