package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	r := newEngine()
	r.Use(RequestIDMiddleware())
	var seen string
	r.GET("/", func(c *gin.Context) { seen = c.GetString("request_id") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, seen, 36)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", seen)
}

func TestRecovery_WritesEnvelope(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	r := newEngine()
	r.Use(Recovery(logger))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"something went wrong","error":{"code":500,"description":"internal error"}}`, w.Body.String())
}

// limitedEngine records the limiter key and exemption each request resolves to.
func limitedEngine(t *testing.T, proxies []string, cloudflare bool, exempt []string) (*gin.Engine, *string, *bool) {
	t.Helper()
	r := newEngine()
	require.NoError(t, TrustProxies(r, proxies, cloudflare))
	allow, err := ExemptCIDRs(exempt)
	require.NoError(t, err)

	var key string
	var skipped bool
	r.GET("/api/users/:userId", func(c *gin.Context) {
		key = KeyByIP()(c)
		skipped = allow != nil && allow(c)
	})
	return r, &key, &skipped
}

func TestSpoofedForwardedForFromPublicPeer(t *testing.T) {
	r, key, skipped := limitedEngine(t, nil, false, []string{"10.0.0.0/8", "127.0.0.0/8"})

	req := httptest.NewRequest(http.MethodGet, "/api/users/7", nil)
	req.RemoteAddr = "203.0.113.9:4711"
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	req.Header.Set("X-Real-IP", "127.0.0.1")
	req.Header.Set("CF-Connecting-IP", "10.0.0.2")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "rl:ip:203.0.113.9", *key)
	assert.False(t, *skipped)
}

func TestForwardedForFromTrustedProxy(t *testing.T) {
	r, key, skipped := limitedEngine(t, []string{"192.0.2.0/24"}, false, []string{"10.0.0.0/8"})

	req := httptest.NewRequest(http.MethodGet, "/api/users/7", nil)
	req.RemoteAddr = "192.0.2.10:4711"
	req.Header.Set("X-Forwarded-For", "198.51.100.4")
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "rl:ip:198.51.100.4", *key)
	assert.False(t, *skipped)

	req = httptest.NewRequest(http.MethodGet, "/api/users/7", nil)
	req.RemoteAddr = "192.0.2.10:4711"
	req.Header.Set("X-Forwarded-For", "10.4.4.4")
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "rl:ip:10.4.4.4", *key)
	assert.True(t, *skipped)

	// a client cannot prepend its own hop in front of the proxy's
	req = httptest.NewRequest(http.MethodGet, "/api/users/7", nil)
	req.RemoteAddr = "192.0.2.10:4711"
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 198.51.100.4")
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "rl:ip:198.51.100.4", *key)
	assert.False(t, *skipped)
}

func TestTrustProxies_Cloudflare(t *testing.T) {
	r, key, _ := limitedEngine(t, nil, true, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/7", nil)
	req.RemoteAddr = "203.0.113.9:4711"
	req.Header.Set("CF-Connecting-IP", "198.51.100.2")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "rl:ip:198.51.100.2", *key)
}

func TestTrustProxies_RejectsBadProxy(t *testing.T) {
	assert.Error(t, TrustProxies(newEngine(), []string{"not-an-ip"}, false))
}

func TestExemptCIDRs(t *testing.T) {
	allow, err := ExemptCIDRs(nil)
	require.NoError(t, err)
	assert.Nil(t, allow)

	_, err = ExemptCIDRs([]string{"10.0.0.1"})
	assert.Error(t, err)
}

func TestRateLimit_DisabledWithoutRedis(t *testing.T) {
	r := newEngine()
	r.Use(RateLimit(nil, 1, time.Minute, KeyByIP(), nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestToInt(t *testing.T) {
	assert.Equal(t, 3, toInt(int64(3)))
	assert.Equal(t, 4, toInt("4"))
	assert.Equal(t, 0, toInt(nil))
}
