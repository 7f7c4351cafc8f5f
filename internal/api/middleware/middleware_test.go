package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/athujoshi24/legendary-panel/internal/api/types"
	"github.com/athujoshi24/legendary-panel/internal/metrics"
	"github.com/athujoshi24/legendary-panel/internal/models"
	appErr "github.com/athujoshi24/legendary-panel/pkg/errors"
	"github.com/athujoshi24/legendary-panel/pkg/logger"
	"github.com/athujoshi24/legendary-panel/pkg/utils"
)

func TestMain(m *testing.M) {
	logger.UseNop()
	os.Exit(m.Run())
}

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if v := args.Get(0); v != nil {
		return v.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthenticator) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if v := args.Get(0); v != nil {
		return v.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(GetUser(r.Context()).Email))
})

func TestAuth(t *testing.T) {
	user := &models.User{ID: 1, Email: "cook@example.com", IsActive: true}
	rejected := appErr.New(appErr.CodeUnauthorized, "invalid token")

	authn := new(mockAuthenticator)
	authn.On("ResolveToken", mock.Anything, "good").Return(user, nil)
	authn.On("ResolveToken", mock.Anything, "bad").Return(nil, rejected)
	authn.On("ResolveToken", mock.Anything, "broken").Return(nil, appErr.New(appErr.CodeInternal, "db down"))
	authn.On("Authenticate", mock.Anything, "cook@example.com", "secret-pass").Return(user, nil)
	authn.On("Authenticate", mock.Anything, "cook@example.com", "nope").Return(nil, rejected)

	reg := prometheus.NewRegistry()
	h := Auth(authn, metrics.NewCollector(reg))(echoUser)

	basic := func(user, pass string) string {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetBasicAuth(user, pass)
		return req.Header.Get("Authorization")
	}

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"bearer", "Bearer good", http.StatusOK},
		{"token alias", "Token good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
		{"bad token", "Bearer bad", http.StatusUnauthorized},
		{"basic", basic("cook@example.com", "secret-pass"), http.StatusOK},
		{"basic wrong password", basic("cook@example.com", "nope"), http.StatusUnauthorized},
		{"basic malformed", "Basic !!!", http.StatusUnauthorized},
		{"unknown scheme", "Digest abc", http.StatusUnauthorized},
		{"store failure", "Bearer broken", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			require.Equal(t, tc.status, rr.Code)
			switch tc.status {
			case http.StatusOK:
				assert.Equal(t, "cook@example.com", rr.Body.String())
			case http.StatusUnauthorized:
				assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
				var resp types.APIResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.False(t, resp.Success)
				assert.Equal(t, "unauthorized", resp.Error.Code)
			}
		})
	}

	failures, err := testutil.GatherAndCount(reg, "recipes_auth_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 2, failures)
}

func TestAuthRejectionLogFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	defer logger.Replace(zap.New(core))()

	rejected := appErr.New(appErr.CodeUnauthorized, "invalid credentials")
	authn := new(mockAuthenticator)
	authn.On("Authenticate", mock.Anything, "cook@example.com", "hunter22").Return(nil, rejected)
	authn.On("ResolveToken", mock.Anything, "stale").Return(nil, rejected)
	h := Auth(authn, metrics.NewCollector(prometheus.NewRegistry()))(echoUser)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("cook@example.com", "hunter22")
	h.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer stale")
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("credentials rejected").All()
	require.Len(t, entries, 2)

	basic := entries[0].ContextMap()
	assert.Equal(t, "basic", basic["scheme"])
	assert.Equal(t, "cook@example.com", basic["email"])
	assert.NotContains(t, basic, "credential_fp")
	for _, v := range basic {
		assert.NotContains(t, fmt.Sprint(v), "hunter22")
	}

	bearer := entries[1].ContextMap()
	assert.Equal(t, "bearer", bearer["scheme"])
	assert.Equal(t, utils.Fingerprint("stale"), bearer["credential_fp"])
}

func TestGetUserOutsideAuth(t *testing.T) {
	assert.Nil(t, GetUser(context.Background()))
	assert.Zero(t, GetUserID(context.Background()))
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("a"))

	now = now.Add(visitorTTL + sweepInterval)
	l.Allow("c")
	l.mu.Lock()
	_, kept := l.visitors["a"]
	l.mu.Unlock()
	assert.False(t, kept)
}

func TestRateLimitMiddleware(t *testing.T) {
	h := RateLimit(0.001, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:5000"

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	h := RateLimit(1, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	allowed := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.7:5000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code == http.StatusNoContent {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed)
}

func TestClientIPBehindTrustedProxy(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", "192.0.2.1"})
	require.NoError(t, err)
	l := NewRateLimiter(1, 1, trusted...)

	cases := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"no proxy", "198.51.100.7:5000", "", "198.51.100.7"},
		{"untrusted peer spoofing", "198.51.100.7:5000", "203.0.113.9", "198.51.100.7"},
		{"trusted peer", "10.1.2.3:5000", "203.0.113.9", "203.0.113.9"},
		{"spoofed left hop", "10.1.2.3:5000", "1.1.1.1, 203.0.113.9, 10.4.4.4", "203.0.113.9"},
		{"single trusted address", "192.0.2.1:443", "203.0.113.9", "203.0.113.9"},
		{"only proxies", "10.1.2.3:5000", "10.9.9.9", "10.1.2.3"},
		{"garbage header", "10.1.2.3:5000", "not-an-ip", "10.1.2.3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			assert.Equal(t, tc.want, l.clientIP(req))
		})
	}

	_, err = ParseTrustedProxies([]string{"10.0.0.0/33"})
	assert.Error(t, err)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc-123", seen)

	req.Header.Set("X-Request-ID", strings.Repeat("x", maxRequestIDLen+1))
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Len(t, seen, 36)
}

func TestRecovery(t *testing.T) {
	h := RequestID(Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	var resp types.APIResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "internal", resp.Error.Code)
	assert.Equal(t, rr.Header().Get("X-Request-ID"), resp.Meta.RequestID)
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := chi.NewRouter()
	r.Use(Logging, Metrics(metrics.NewCollector(reg)))
	r.Get("/recipes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/recipes/"+id, nil))
	}

	expected := `
# HELP recipes_http_requests_total HTTP requests by method, route pattern and status code.
# TYPE recipes_http_requests_total counter
recipes_http_requests_total{method="GET",route="/recipes/{id}",status="404"} 3
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "recipes_http_requests_total"))
}
