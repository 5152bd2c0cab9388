package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Recommendations
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Recommendation computations by outcome",
		},
		[]string{"outcome"}, // ok, genre_not_found, not_enough_data, no_similar, error
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Time spent computing recommendations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	// Reviews
	ReviewWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_writes_total",
			Help: "Review write attempts by operation and result",
		},
		[]string{"op", "result"},
	)

	// One-time codes
	OTPEmails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_emails_total",
			Help: "One-time code deliveries by purpose and result",
		},
		[]string{"purpose", "result"},
	)
)

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func TrackInFlight(start bool) {
	if start {
		HTTPRequestsInFlight.Inc()
		return
	}
	HTTPRequestsInFlight.Dec()
}

func RecordRecommendation(outcome string, duration time.Duration) {
	Recommendations.WithLabelValues(outcome).Inc()
	RecommendationDuration.Observe(duration.Seconds())
}

func RecordReviewWrite(op, result string) {
	ReviewWrites.WithLabelValues(op, result).Inc()
}

func RecordOTPEmail(purpose string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	OTPEmails.WithLabelValues(purpose, result).Inc()
}
