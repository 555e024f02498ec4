package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Business Metrics
var (
	BoxesMinted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameBoxesMinted,
			Help: HelpTextBoxesMinted,
		},
		[]string{LabelTier},
	)

	BoxesOpened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameBoxesOpened,
			Help: HelpTextBoxesOpened,
		},
		[]string{LabelTier},
	)

	BoxesClaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameBoxesClaimed,
			Help: HelpTextBoxesClaimed,
		},
	)

	TokensAwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameTokensAwarded,
			Help: HelpTextTokensAwarded,
		},
	)

	XPAwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameXPAwarded,
			Help: HelpTextXPAwarded,
		},
	)

	DropsRolled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameDropsRolled,
			Help: HelpTextDropsRolled,
		},
		[]string{LabelType},
	)
)
