package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"codearena/internal/common/metrics"
)

func TestHandlerServesPipelineCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/metrics", metrics.Handler())

	metrics.SubmissionsJudged.WithLabelValues("accepted").Inc()
	metrics.ScoringEvents.Inc()
	metrics.LeaderboardBroadcasts.Inc()
	metrics.FanoutDeliveries.Inc()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	for _, name := range []string{
		"codearena_submissions_judged_total",
		"codearena_scoring_events_total",
		"codearena_leaderboard_broadcasts_total",
		"codearena_fanout_deliveries_total",
	} {
		if !strings.Contains(body, name) {
			t.Fatalf("metrics exposition missing %s", name)
		}
	}
}
