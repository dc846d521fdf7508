package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	bigscreenservice "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/application"
	"github.com/Black-And-White-Club/arcade-bigscreen/app/observability"
	"github.com/Black-And-White-Club/arcade-bigscreen/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

const summaryJSON = `{
  "tournaments": [],
  "games": [{
    "id": 1,
    "machine_name": "Attack from Mars",
    "is_active": true,
    "windows": [
      {"slug": "afm-week", "title": "Attack from Mars - This week",
       "leaderboard": [{"screen_name": "ZED", "score": 5000000, "last_played": "2026-03-14T11:58:00Z"}]},
      {"slug": "afm-all-time", "title": "Attack from Mars - All time",
       "leaderboard": [{"screen_name": "ACE", "score": 9000000, "last_played": "2026-01-02T10:00:00Z"}]}
    ]
  }]
}`

func testObservability() observability.Observability {
	return observability.Observability{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tracer: noop.NewTracerProvider().Tracer("test"),
	}
}

func TestRunSchedule(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, summaryJSON)
	}))
	defer upstream.Close()

	cfg := &config.Config{}
	cfg.Upstream.URL = upstream.URL
	cfg.Upstream.Timeout = 2 * time.Second
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	t.Run("table", func(t *testing.T) {
		var out bytes.Buffer
		err := runSchedule(context.Background(), cfg, testObservability(), scheduleOptions{Now: now}, &out)
		require.NoError(t, err)

		table := out.String()
		assert.Contains(t, strings.ToUpper(table), "WEIGHT")
		assert.Contains(t, table, "Attack from Mars / This week")
		assert.Contains(t, table, "hot")
		assert.Contains(t, table, "stale")
		week := strings.Index(table, "This week")
		allTime := strings.Index(table, "All time")
		require.NotEqual(t, -1, allTime)
		assert.Less(t, week, allTime, "the hot window is scheduled first")
	})

	t.Run("json with one card per page", func(t *testing.T) {
		var out bytes.Buffer
		err := runSchedule(context.Background(), cfg, testObservability(), scheduleOptions{Now: now, JSON: true, PerPage: 1}, &out)
		require.NoError(t, err)

		var rows []bigscreenservice.ScheduleRow
		require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
		require.Len(t, rows, 2)
		assert.Equal(t, 1, rows[0].Page)
		assert.Equal(t, 2, rows[1].Page)
		assert.Equal(t, 14, rows[0].Weight)
	})
}

func TestRunScheduleUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer upstream.Close()

	cfg := &config.Config{}
	cfg.Upstream.URL = upstream.URL
	cfg.Upstream.Timeout = time.Second

	err := runSchedule(context.Background(), cfg, testObservability(), scheduleOptions{}, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch summary")
}

func TestPrintScheduleEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printSchedule(&out, nil))
	assert.Equal(t, "No scores have been recorded yet.\n", out.String())
}
