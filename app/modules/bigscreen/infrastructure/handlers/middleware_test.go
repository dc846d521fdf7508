package bigscreenhandlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimitMiddleware(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	limiter := newIPRateLimiter(rate.Every(5*time.Second), 2, clock)
	handler := RateLimitMiddleware(limiter)(okHandler)

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1001").Code)

	refused := do("10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, refused.Code)
	assert.Equal(t, "5", refused.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"display is polling too fast"}`, refused.Body.String())

	assert.Equal(t, http.StatusOK, do("10.0.0.2:1000").Code, "other displays have their own budget")

	clock.Advance(5 * time.Second)
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1003").Code, "a token returns after the refill interval")
}

func TestIPRateLimiter_SweepsIdleDisplays(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	limiter := newIPRateLimiter(rate.Limit(1), 1, clock)

	for i := range 20 {
		limiter.Allow(fmt.Sprintf("10.0.0.%d", i))
	}
	clock.Advance(displayIdleAge / 2)
	limiter.Allow("10.0.0.1")
	assert.Equal(t, 20, limiter.Size(), "nothing is swept before the idle age")

	clock.Advance(displayIdleAge / 2)
	limiter.Allow("10.0.1.1")

	assert.Equal(t, 2, limiter.Size(), "only the recently seen displays remain")
}

func TestIPRateLimiter_RetryAfter(t *testing.T) {
	tests := []struct {
		name  string
		limit rate.Limit
		want  int
	}{
		{name: "ten per second", limit: 10, want: 1},
		{name: "one every 30s", limit: rate.Every(30 * time.Second), want: 30},
		{name: "unlimited", limit: rate.Inf, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewIPRateLimiter(tt.limit, 1).RetryAfter())
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	handler := CORSMiddleware([]string{"https://kiosk.arcade.local"})(okHandler)

	tests := []struct {
		name       string
		method     string
		origin     string
		preflight  bool
		wantStatus int
		wantAllow  string
	}{
		{name: "allowed origin", method: http.MethodGet, origin: "https://kiosk.arcade.local", wantStatus: http.StatusOK, wantAllow: "https://kiosk.arcade.local"},
		{name: "unknown origin", method: http.MethodGet, origin: "https://evil.example", wantStatus: http.StatusOK, wantAllow: ""},
		{name: "preflight", method: http.MethodOptions, origin: "https://kiosk.arcade.local", preflight: true, wantStatus: http.StatusNoContent, wantAllow: "https://kiosk.arcade.local"},
		{name: "preflight from unknown origin", method: http.MethodOptions, origin: "https://evil.example", preflight: true, wantStatus: http.StatusForbidden, wantAllow: ""},
		{name: "plain options passes through", method: http.MethodOptions, origin: "", wantStatus: http.StatusOK, wantAllow: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantAllow, rr.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
