package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/2beens/expfit/internal/telemetry/metrics"
	"github.com/2beens/expfit/pkg"

	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRateLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	limiterMock := NewMockRequestRateLimiter(ctrl)
	metricsManager := metrics.NewTestManager()

	called := 0
	handler := RateLimit(limiterMock, "accounts", 5, nil, metricsManager)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called++
		}),
	)

	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/a/login", nil)
		req.RemoteAddr = "10.0.0.7:51234"
		return req
	}

	gomock.InOrder(
		limiterMock.EXPECT().
			Allow(gomock.Any(), "accounts::10.0.0.7", redis_rate.PerMinute(5)).
			Return(&redis_rate.Result{Allowed: 1, Remaining: 4}, nil),
		limiterMock.EXPECT().
			Allow(gomock.Any(), "accounts::10.0.0.7", redis_rate.PerMinute(5)).
			Return(&redis_rate.Result{Allowed: 0, RetryAfter: 1500 * time.Millisecond}, nil),
		limiterMock.EXPECT().
			Allow(gomock.Any(), "accounts::10.0.0.7", redis_rate.PerMinute(5)).
			Return(nil, errors.New("redis down")),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newReq())
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, called)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, newReq())
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "2", rr.Header().Get("Retry-After"))
	assert.Equal(t, 1, called)
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterRateLimitedRequests))

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, newReq())
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, 1, called)

	// preflight requests are not counted
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/a/login", nil))
	assert.Equal(t, 2, called)
}

func TestRateLimit_ForwardedHeaders(t *testing.T) {
	ctrl := gomock.NewController(t)
	limiterMock := NewMockRequestRateLimiter(ctrl)

	proxies, err := pkg.ParseTrustedProxies([]string{"10.0.0.1"})
	require.NoError(t, err)

	handler := RateLimit(limiterMock, "accounts", 5, proxies, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
	)

	// a direct client rotating X-Forwarded-For keeps hitting its own bucket
	limiterMock.EXPECT().
		Allow(gomock.Any(), "accounts::83.12.53.65", redis_rate.PerMinute(5)).
		Return(&redis_rate.Result{Allowed: 1}, nil).
		Times(3)
	for _, spoofed := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest(http.MethodPost, "/a/login", nil)
		req.RemoteAddr = "83.12.53.65:40000"
		req.Header.Set("X-Forwarded-For", spoofed)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	// behind the trusted proxy the forwarded client is the key
	limiterMock.EXPECT().
		Allow(gomock.Any(), "accounts::91.2.3.4", redis_rate.PerMinute(5)).
		Return(&redis_rate.Result{Allowed: 1}, nil)
	req := httptest.NewRequest(http.MethodPost, "/a/login", nil)
	req.RemoteAddr = "10.0.0.1:40000"
	req.Header.Set("X-Forwarded-For", "91.2.3.4")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
