package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"themeforge/internal/config"
	"themeforge/internal/ui"
)

func init() {
	ui.SetOutput(io.Discard)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Listen = "127.0.0.1:0"
	cfg.RateLimitRPM = 0
	return cfg
}

func do(t *testing.T, h http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestThemeCSS(t *testing.T) {
	h := NewHandler(testConfig())

	rec := do(t, h, http.MethodGet, "/theme.css?color=3366cc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/css; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, ":root {\n"+
		"  --dark-bg: #24478f;\n"+
		"  --main-bg: #3366cc;\n"+
		"  --light-bg: #59b3ff;\n"+
		"  color-scheme: dark;\n"+
		"}\n", rec.Body.String())
}

func TestThemeCSSEncodedHashAndSelector(t *testing.T) {
	h := NewHandler(testConfig())

	rec := do(t, h, http.MethodGet, "/theme.css?color=%23808080&selector=.card", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".card {\n")
	assert.Contains(t, rec.Body.String(), "--main-bg: #808080;")
	assert.NotContains(t, rec.Body.String(), "color-scheme")

	rec = do(t, h, http.MethodGet, "/theme.css?color=808080&selector=a%7Bcolor:red%7D", nil)
	assert.Contains(t, rec.Body.String(), ":root {\n")
}

func TestThemeDefaultColor(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultColor = "#fff"
	h := NewHandler(cfg)

	rec := do(t, h, http.MethodGet, "/theme.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ThemeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "#fff", resp.Base)
	assert.Equal(t, "#b3b3b3", resp.Dark)
	assert.Equal(t, "#ffffff", resp.Light)
	assert.False(t, resp.DarkMode)
	assert.InDelta(t, 255.0, resp.Luminance, 1e-9)
	assert.Empty(t, resp.Classes)
	require.Len(t, resp.Vars, 3)
	assert.Equal(t, "--dark-bg", resp.Vars[0].Name)
}

func TestThemeJSONDark(t *testing.T) {
	h := NewHandler(testConfig())

	rec := do(t, h, http.MethodGet, "/theme.json?color=000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ThemeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.DarkMode)
	assert.Equal(t, []string{"m-dark-mode"}, resp.Classes)
	assert.Equal(t, "#000000", resp.Dark)
	assert.Equal(t, "#000000", resp.Light)
}

func TestThemeInvalidColor(t *testing.T) {
	h := NewHandler(testConfig())
	before := testutil.ToFloat64(MetricInvalidColors)

	for _, target := range []string{"/theme.css?color=12", "/theme.json?color=notacolor", "/theme.css?color=%23abcd"} {
		rec := do(t, h, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "invalid color format")
	}
	assert.Equal(t, before+3, testutil.ToFloat64(MetricInvalidColors))
}

func TestThemeETag(t *testing.T) {
	h := NewHandler(testConfig())

	first := do(t, h, http.MethodGet, "/theme.css?color=abc", nil)
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Len(t, etag, 34)

	before := testutil.ToFloat64(MetricNotModified)
	second := do(t, h, http.MethodGet, "/theme.css?color=abc", http.Header{"If-None-Match": {`"other", ` + etag}})
	assert.Equal(t, http.StatusNotModified, second.Code)
	assert.Empty(t, second.Body.String())
	assert.Equal(t, before+1, testutil.ToFloat64(MetricNotModified))

	other := do(t, h, http.MethodGet, "/theme.css?color=abd", http.Header{"If-None-Match": {etag}})
	assert.Equal(t, http.StatusOK, other.Code)
	assert.NotEqual(t, etag, other.Header().Get("ETag"))
}

func TestThemeMethods(t *testing.T) {
	h := NewHandler(testConfig())

	rec := do(t, h, http.MethodOptions, "/theme.css", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodPost, "/theme.css", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD, OPTIONS", rec.Header().Get("Allow"))

	rec = do(t, h, http.MethodHead, "/theme.css?color=abc", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Content-Length"))
}

func TestRateLimitBehindTrustedProxy(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPM = 60
	cfg.TrustProxy = true
	h := NewHandler(cfg)
	before := testutil.ToFloat64(MetricRateLimited)

	hdr := http.Header{"X-Forwarded-For": {"203.0.113.7, 10.0.0.1"}}
	for i := 0; i < 10; i++ {
		rec := do(t, h, http.MethodGet, "/theme.css", hdr)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
		assert.Equal(t, "60", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(9-i), rec.Header().Get("X-RateLimit-Remaining"))
	}
	rec := do(t, h, http.MethodGet, "/theme.css", hdr)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, before+1, testutil.ToFloat64(MetricRateLimited))

	// a different client is unaffected
	rec = do(t, h, http.MethodGet, "/theme.css", http.Header{"X-Real-Ip": {"198.51.100.1"}})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitIgnoresForwardedHeadersByDefault(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPM = 60
	h := NewHandler(cfg)

	limited := 0
	for i := 0; i < 100; i++ {
		hdr := http.Header{
			"X-Forwarded-For": {fmt.Sprintf("203.0.113.%d", i)},
			"X-Real-Ip":       {fmt.Sprintf("198.51.100.%d", i)},
		}
		if do(t, h, http.MethodGet, "/theme.css", hdr).Code == http.StatusTooManyRequests {
			limited++
		}
	}
	// a second of wall time may refill one token
	assert.InDelta(t, 90, limited, 1)
}

func TestClientLimits(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPM = 60
	cfg.ClientLimits = map[string]int{"192.0.2.1": 0}
	h := NewHandler(cfg)

	// httptest requests come from 192.0.2.1, which is exempt
	for i := 0; i < 50; i++ {
		rec := do(t, h, http.MethodGet, "/theme.css", nil)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestNoRateLimitHeadersWhenDisabled(t *testing.T) {
	rec := do(t, NewHandler(testConfig()), http.MethodGet, "/theme.css", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestRequestMetrics(t *testing.T) {
	h := NewHandler(testConfig())
	ok := MetricRequestsTotal.WithLabelValues(PathHealth, "200")
	missing := MetricRequestsTotal.WithLabelValues("other", "404")
	okBefore, missingBefore := testutil.ToFloat64(ok), testutil.ToFloat64(missing)

	rec := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, "ok\n", rec.Body.String())
	do(t, h, http.MethodGet, "/nope", nil)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, missingBefore+1, testutil.ToFloat64(missing))
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", getClientIP(req))
	assert.Equal(t, "192.0.2.1", remoteHost(req))

	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", getClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", getClientIP(req))
}

func TestServerStartAndShutdown(t *testing.T) {
	srv := NewServer(testConfig())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	addr := srv.Addr()
	require.NotNil(t, addr)

	resp, err := http.Get("http://" + addr.String() + "/theme.css?color=abc")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "--main-bg: #abc;")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServerAddrWithoutStart(t *testing.T) {
	prev := addrWait
	addrWait = 10 * time.Millisecond
	t.Cleanup(func() { addrWait = prev })

	assert.Nil(t, NewServer(testConfig()).Addr())
}

func TestServerListenError(t *testing.T) {
	cfg := testConfig()
	cfg.Listen = "256.0.0.1:99999"
	err := NewServer(cfg).Start(context.Background())
	assert.ErrorContains(t, err, "failed to listen")
}
