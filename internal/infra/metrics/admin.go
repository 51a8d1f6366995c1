package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(dashboardLoginsTotal, httpRequestsTotal, sessionsRevokedTotal)
}

var (
	dashboardLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_logins_total",
			Help: "Dashboard login attempts by outcome.",
		},
		[]string{"outcome"}, // success, invalid, blocked, locked
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Dashboard HTTP requests by method, route pattern and status.",
		},
		[]string{"method", "route", "status"},
	)

	sessionsRevokedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_sessions_revoked_total",
			Help: "Session tokens revoked on logout.",
		},
	)
)

func IncLogin(outcome string) {
	dashboardLoginsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncHTTPRequest(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func IncSessionRevoked() {
	sessionsRevokedTotal.Inc()
}
