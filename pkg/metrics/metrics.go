package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "filmatlas", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "filmatlas", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// TokenRefresh counts refresh attempts by outcome: rotated, replayed,
	// expired, invalid, error. A spike in "replayed" indicates rotated
	// tokens being presented again (race or stolen token).
	TokenRefresh = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "filmatlas", Name: "token_refresh_total", Help: "Refresh token exchanges by outcome."},
		[]string{"outcome"},
	)
	AuthFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "filmatlas", Name: "auth_failures_total", Help: "Bearer authentication failures by kind."},
		[]string{"kind"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(TokenRefresh)
	reg.MustRegister(AuthFailures)
}
