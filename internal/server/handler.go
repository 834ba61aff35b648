package server

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"themeforge/internal/colorengine"
	"themeforge/internal/config"
	"themeforge/internal/ratelimit"
	"themeforge/internal/theme"
	"themeforge/internal/ui"
)

// Endpoint paths
const (
	PathCSS    = "/theme.css"
	PathJSON   = "/theme.json"
	PathHealth = "/healthz"
)

// Handler serves derived themes over HTTP.
type Handler struct {
	config  *config.Config
	limiter *ratelimit.Limiter
	mux     *http.ServeMux
}

// ThemeResponse is the JSON body for PathJSON.
type ThemeResponse struct {
	theme.Theme
	Luminance float64     `json:"luminance"`
	Classes   []string    `json:"classes"`
	Vars      []theme.Var `json:"vars"`
}

// NewHandler creates a theme handler from cfg.
func NewHandler(cfg *config.Config) *Handler {
	h := &Handler{
		config:  cfg,
		limiter: ratelimit.New(cfg.RateLimitRPM),
		mux:     http.NewServeMux(),
	}
	for client, rpm := range cfg.ClientLimits {
		h.limiter.SetLimit(client, rpm)
	}
	h.mux.HandleFunc(PathCSS, h.themed(PathCSS, h.serveCSS))
	h.mux.HandleFunc(PathJSON, h.themed(PathJSON, h.serveJSON))
	h.mux.HandleFunc(PathHealth, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	return h
}

// ServeHTTP logs and times every request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	h.mux.ServeHTTP(rec, r)

	took := time.Since(start)
	endpoint := endpointLabel(r.URL.Path)
	MetricRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(rec.status)).Inc()
	MetricRequestDuration.WithLabelValues(endpoint).Observe(took.Seconds())
	ui.LogRequest(r.Method, r.URL.Path, rec.status, h.clientIP(r), took)
}

type renderFunc func(r *http.Request, th theme.Theme) ([]byte, string, error)

// themed wraps a theme endpoint with method checks, CORS, rate limiting,
// color resolution and conditional responses.
func (h *Handler) themed(path string, render renderFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.setCORS(w)

		switch r.Method {
		case http.MethodGet, http.MethodHead:
		case http.MethodOptions:
			w.WriteHeader(http.StatusNoContent)
			return
		default:
			w.Header().Set("Allow", "GET, HEAD, OPTIONS")
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		clientIP := h.clientIP(r)
		allowed := h.limiter.Allow(clientIP)
		h.setRateLimitHeaders(w, clientIP)
		if !allowed {
			MetricRateLimited.Inc()
			ui.LogStatus("warn", "Rate limited: "+clientIP)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		base := h.colorParam(r)
		th, err := theme.Derive(base, h.config.Intensities())
		if err != nil {
			if errors.Is(err, colorengine.ErrInvalidColorFormat) {
				MetricInvalidColors.Inc()
			}
			ui.LogStatus("debug", path+": "+err.Error())
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		MetricDerivationsTotal.WithLabelValues(modeLabel(th.DarkMode)).Inc()

		body, contentType, err := render(r, th)
		if err != nil {
			ui.LogStatus("error", path+": "+err.Error())
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		etag := bodyETag(body)
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(h.config.CacheMaxAge))
		if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
			MetricNotModified.Inc()
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			w.Write(body)
		}
	}
}

func (h *Handler) serveCSS(r *http.Request, th theme.Theme) ([]byte, string, error) {
	selector := r.URL.Query().Get("selector")
	if !theme.ValidSelector(selector) {
		selector = ":root"
	}
	return []byte(th.CSS(selector)), "text/css; charset=utf-8", nil
}

func (h *Handler) serveJSON(r *http.Request, th theme.Theme) ([]byte, string, error) {
	rgb, err := colorengine.Parse(th.Base)
	if err != nil {
		return nil, "", err
	}
	classes := th.Classes()
	if classes == nil {
		classes = []string{}
	}
	body, err := json.Marshal(ThemeResponse{
		Theme:     th,
		Luminance: colorengine.Luminance(rgb),
		Classes:   classes,
		Vars:      th.Vars(),
	})
	if err != nil {
		return nil, "", err
	}
	return append(body, '\n'), "application/json", nil
}

// colorParam resolves the requested base color. The '#' may be omitted
// since it has to be percent-encoded in a query string.
func (h *Handler) colorParam(r *http.Request) string {
	c := strings.TrimSpace(r.URL.Query().Get("color"))
	if c == "" {
		return h.config.DefaultColor
	}
	if !strings.HasPrefix(c, "#") {
		c = "#" + c
	}
	return c
}

func (h *Handler) setCORS(w http.ResponseWriter) {
	origin := h.config.AllowedOrigin
	if origin == "" {
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, If-None-Match")
	w.Header().Set("Access-Control-Expose-Headers", "ETag")
}

// setRateLimitHeaders reports the client's limit and remaining tokens.
// Nothing is set when the client is not limited.
func (h *Handler) setRateLimitHeaders(w http.ResponseWriter, clientIP string) {
	remaining := h.limiter.Remaining(clientIP)
	if remaining < 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(h.limiter.Limit(clientIP)))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(remaining)))
}

// bodyETag returns a strong ETag built from a BLAKE2b-256 digest.
func bodyETag(body []byte) string {
	sum := blake2b.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

func modeLabel(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}

func endpointLabel(path string) string {
	switch path {
	case PathCSS, PathJSON, PathHealth:
		return path
	default:
		return "other"
	}
}

// clientIP is the rate-limit key for r. Forwarding headers are only
// honored when the server sits behind a trusted proxy.
func (h *Handler) clientIP(r *http.Request) string {
	if h.config.TrustProxy {
		return getClientIP(r)
	}
	return remoteHost(r)
}

// getClientIP extracts the client IP from the request, preferring
// proxy-supplied headers.
func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return remoteHost(r)
}

// remoteHost is the peer address of the connection without its port.
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
