package bigscreenupstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	bigscreendomain "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	SummaryPath   = "/api/v1/leaderboard/summary"
	LiveGamesPath = "/api/v1/games/live"

	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// StatusError is returned for any non-2xx upstream response.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream %s returned status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("upstream %s returned status %d: %s", e.Path, e.StatusCode, e.Body)
}

// Client reads leaderboard summaries and live games from the arcade backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewClient creates a client for baseURL. A zero timeout uses ten seconds.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, tracer trace.Tracer) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
		tracer: tracer,
	}
}

func (c *Client) FetchSummary(ctx context.Context) (*bigscreendomain.Summary, error) {
	var summary bigscreendomain.Summary
	if err := c.getJSON(ctx, SummaryPath, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) FetchLiveGames(ctx context.Context) ([]bigscreendomain.LiveGame, error) {
	var games []bigscreendomain.LiveGame
	if err := c.getJSON(ctx, LiveGamesPath, &games); err != nil {
		return nil, err
	}
	return games, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	ctx, span := c.tracer.Start(ctx, "bigscreen.upstream.GET",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.route", path)),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
		span.RecordError(statusErr)
		span.SetStatus(codes.Error, "unexpected status")
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	c.logger.DebugContext(ctx, "Fetched upstream payload", "path", path)
	return nil
}
