package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "djrating",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "djrating",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	ratingRecomputes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "djrating",
			Subsystem: "ratings",
			Name:      "recomputes_total",
			Help:      "DJ aggregate recomputations by outcome.",
		},
		[]string{"outcome"},
	)

	rewardClaims = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "djrating",
			Subsystem: "tasks",
			Name:      "reward_claims_total",
			Help:      "Successful task reward claims.",
		},
		[]string{"task_code"},
	)

	asyncJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "djrating",
			Subsystem: "tasks",
			Name:      "async_jobs_total",
			Help:      "Fire-and-forget jobs by name and outcome.",
		},
		[]string{"job", "outcome"},
	)

	inviteEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "djrating",
			Subsystem: "invites",
			Name:      "events_total",
			Help:      "Invite code issuance and redemption events.",
		},
		[]string{"event"},
	)

	commentVotes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "djrating",
			Subsystem: "comments",
			Name:      "vote_transitions_total",
			Help:      "Comment vote state transitions.",
		},
		[]string{"from", "to"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		ratingRecomputes,
		rewardClaims,
		asyncJobs,
		inviteEvents,
		commentVotes,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request totals and latency keyed by the matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func RecordRecompute(err error) {
	if err != nil {
		ratingRecomputes.WithLabelValues("error").Inc()
		return
	}
	ratingRecomputes.WithLabelValues("ok").Inc()
}

func RecordRewardClaim(taskCode string) {
	rewardClaims.WithLabelValues(taskCode).Inc()
}

func RecordAsyncJob(job string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	asyncJobs.WithLabelValues(job, outcome).Inc()
}

func RecordInviteEvent(event string) {
	inviteEvents.WithLabelValues(event).Inc()
}

func RecordVoteTransition(from, to string) {
	commentVotes.WithLabelValues(from, to).Inc()
}
