package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	parseCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "placehours",
			Name:      "parse_cache_total",
			Help:      "Parse cache lookups by result (hit or miss).",
		},
		[]string{"result"},
	)

	dialectParsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "placehours",
			Name:      "dialect_parsed_total",
			Help:      "Hours texts parsed, by the dialect that accepted them.",
		},
		[]string{"dialect"},
	)

	statusEvaluated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "placehours",
			Name:      "status_evaluated_total",
			Help:      "Status evaluations by resulting state.",
		},
		[]string{"state"},
	)

	lintIssues = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "placehours",
			Name:      "lint_issues_total",
			Help:      "Diagnostics reported for hours texts, by reason.",
		},
		[]string{"reason"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "placehours",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "code"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(parseCache, dialectParsed, statusEvaluated, lintIssues, httpRequests)
	})
}

func IncParseCache(hit bool) {
	if hit {
		parseCache.WithLabelValues("hit").Inc()
		return
	}
	parseCache.WithLabelValues("miss").Inc()
}

func IncDialect(dialect string) {
	if dialect == "" {
		dialect = "none"
	}
	dialectParsed.WithLabelValues(dialect).Inc()
}

func IncStatus(state string) {
	statusEvaluated.WithLabelValues(state).Inc()
}

func IncLintIssue(reason string) {
	lintIssues.WithLabelValues(reason).Inc()
}

func IncHTTP(endpoint string, code int) {
	httpRequests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
}
