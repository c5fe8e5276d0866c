// Package metrics exposes Prometheus counters for the judging pipeline.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SubmissionsJudged counts submissions that reached a terminal
	// verdict, labeled by that verdict.
	SubmissionsJudged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codearena_submissions_judged_total",
		Help: "Submissions judged to a terminal status.",
	}, []string{"status"})

	// ScoringEvents counts scoring messages applied to the leaderboard.
	ScoringEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codearena_scoring_events_total",
		Help: "Scoring events applied to contest standings.",
	})

	// LeaderboardBroadcasts counts leaderboard snapshots published on the
	// pub/sub channel.
	LeaderboardBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codearena_leaderboard_broadcasts_total",
		Help: "Leaderboard updates published for fanout.",
	})

	// FanoutDeliveries counts websocket frames delivered to viewers.
	FanoutDeliveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codearena_fanout_deliveries_total",
		Help: "Leaderboard frames delivered to websocket viewers.",
	})
)

// Handler serves the default Prometheus registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
