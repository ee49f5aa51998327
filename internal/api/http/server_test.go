package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/researchhive/hive-api/internal/api/http/handlers"
	"github.com/researchhive/hive-api/internal/auth"
	"github.com/researchhive/hive-api/internal/events"
	"github.com/researchhive/hive-api/internal/media"
	"github.com/researchhive/hive-api/internal/observability"
	"github.com/researchhive/hive-api/internal/repository"
	"github.com/researchhive/hive-api/internal/service"
)

type testServerOptions struct {
	throttle auth.LoginThrottle
	uploader media.Uploader
	proxy    ProxyConfig
}

func newTestServer(t *testing.T) *fiber.App {
	t.Helper()
	return newTestServerWith(t, testServerOptions{})
}

func newTestServerWith(t *testing.T, opts testServerOptions) *fiber.App {
	t.Helper()
	store := repository.NewMemoryStore()
	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	cookies := auth.NewSessionCookie("jwt", time.Hour, false)
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   store.Users(),
		Hasher:     auth.NewPasswordHasher(bcrypt.MinCost),
		Tokens:     tokens,
		Uploader:   opts.uploader,
		Throttle:   opts.throttle,
		Dispatcher: dispatcher,
	})
	reviewService := service.NewReviewService(store.Reviews(), dispatcher, nil)

	return NewServer(ServerConfig{
		AppName: "hive-api-test",
		Logger:  zap.NewNop(),
		Metrics: metrics,
		Proxy:   opts.proxy,
		Routes: RouteConfig{
			Health:         handlers.NewHealthHandler("hive-api", "test", nil, nil, metrics),
			Auth:           handlers.NewAuthHandler(authService, cookies),
			Reviews:        handlers.NewReviewsHandler(reviewService),
			AuthMiddleware: auth.NewAuthMiddleware(tokens, cookies, store.Users()),
		},
	})
}

type call struct {
	method  string
	path    string
	body    any
	token   string
	headers map[string]string
}

func do(t *testing.T, app *fiber.App, c call) (*nethttp.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, c.path, reader)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.AddCookie(&nethttp.Cookie{Name: "jwt", Value: c.token})
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func sessionCookie(t *testing.T, resp *nethttp.Response) *nethttp.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == "jwt" {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func decode(t *testing.T, body []byte) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

var signupBody = map[string]any{
	"email":         "a@x.com",
	"mobile_number": "+911234567890",
	"password":      "password1",
	"name":          "A",
	"role":          "Researcher",
}

func TestSessionLifecycle(t *testing.T) {
	app := newTestServer(t)

	resp, body := do(t, app, call{method: "POST", path: "/auth/signup", body: signupBody})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode, string(body))
	created := decode(t, body)
	assert.NotEmpty(t, created["_id"])
	assert.Equal(t, "a@x.com", created["email"])
	assert.Equal(t, "Researcher", created["role"])
	assert.Equal(t, true, created["visibility"])
	assert.NotContains(t, string(body), "password")
	assert.Empty(t, resp.Cookies(), "signup does not start a session")

	resp, body = do(t, app, call{method: "POST", path: "/auth/login-by-email", body: map[string]any{
		"email": "a@x.com", "password": "password1",
	}})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, string(body))
	login := decode(t, body)
	assert.Equal(t, created["_id"], login["_id"])
	assert.Equal(t, "+911234567890", login["mobile_number"])
	assert.Nil(t, login["gender"])
	cookie := sessionCookie(t, resp)
	require.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	resp, body = do(t, app, call{method: "GET", path: "/auth/check", token: cookie.Value})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, string(body))
	identity := decode(t, body)
	assert.Equal(t, created["_id"], identity["_id"])
	assert.Equal(t, "A", identity["name"])

	resp, body = do(t, app, call{method: "POST", path: "/auth/logout", token: cookie.Value})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logged out successfully.", decode(t, body)["message"])
	cleared := sessionCookie(t, resp)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.Expires.Before(time.Now()))

	resp, body = do(t, app, call{method: "GET", path: "/auth/check"})
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized. No Token is provided", decode(t, body)["message"])
}

func TestLoginByMobile(t *testing.T) {
	app := newTestServer(t)
	resp, _ := do(t, app, call{method: "POST", path: "/auth/signup", body: signupBody})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	resp, body := do(t, app, call{method: "POST", path: "/auth/login-by-mobile", body: map[string]any{
		"mobile_number": "+911234567890", "password": "password1",
	}})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "a@x.com", decode(t, body)["email"])
	assert.NotEmpty(t, sessionCookie(t, resp).Value)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	app := newTestServer(t)
	resp, _ := do(t, app, call{method: "POST", path: "/auth/signup", body: signupBody})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	wrongPassword, wrongBody := do(t, app, call{method: "POST", path: "/auth/login-by-email", body: map[string]any{
		"email": "a@x.com", "password": "password2",
	}})
	unknownEmail, unknownBody := do(t, app, call{method: "POST", path: "/auth/login-by-email", body: map[string]any{
		"email": "b@x.com", "password": "password1",
	}})
	unknownMobile, mobileBody := do(t, app, call{method: "POST", path: "/auth/login-by-mobile", body: map[string]any{
		"mobile_number": "+910000000000", "password": "password1",
	}})

	assert.Equal(t, nethttp.StatusBadRequest, wrongPassword.StatusCode)
	assert.Equal(t, wrongPassword.StatusCode, unknownEmail.StatusCode)
	assert.Equal(t, wrongPassword.StatusCode, unknownMobile.StatusCode)
	assert.Equal(t, string(wrongBody), string(unknownBody))
	assert.Equal(t, string(wrongBody), string(mobileBody))
	assert.Equal(t, "Invalid credentials", decode(t, wrongBody)["message"])
	assert.Empty(t, wrongPassword.Cookies())
	assert.Empty(t, unknownEmail.Cookies())
}

func TestSignupErrors(t *testing.T) {
	app := newTestServer(t)
	resp, _ := do(t, app, call{method: "POST", path: "/auth/signup", body: signupBody})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	with := func(key string, value any) map[string]any {
		out := map[string]any{}
		for k, v := range signupBody {
			out[k] = v
		}
		out[key] = value
		return out
	}

	cases := []struct {
		name    string
		body    map[string]any
		status  int
		message string
	}{
		{"duplicate email", with("mobile_number", "+919999999999"), nethttp.StatusConflict, "Email already exists"},
		{"duplicate email other case", with("email", " A@X.com "), nethttp.StatusConflict, "Email already exists"},
		{"duplicate mobile", with("email", "c@x.com"), nethttp.StatusConflict, "Mobile number already exists"},
		{"short password", with("password", "short"), nethttp.StatusBadRequest, "Password must be at least 8 characters"},
		{"bad mobile", with("mobile_number", "123"), nethttp.StatusBadRequest, "Invalid Mobile Number"},
		{"blank name", with("name", "   "), nethttp.StatusBadRequest, "Name cannot be empty"},
		{"unknown role", with("role", "Admin"), nethttp.StatusBadRequest, "Role must be one of Reviewer, Researcher, Both"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := do(t, app, call{method: "POST", path: "/auth/signup", body: tc.body})
			assert.Equal(t, tc.status, resp.StatusCode, string(body))
			assert.Equal(t, tc.message, decode(t, body)["message"])
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	app := newTestServer(t)
	do(t, app, call{method: "POST", path: "/auth/signup", body: signupBody})
	resp, _ := do(t, app, call{method: "POST", path: "/auth/login-by-email", body: map[string]any{
		"email": "a@x.com", "password": "password1",
	}})
	token := sessionCookie(t, resp).Value

	resp, _ = do(t, app, call{method: "PUT", path: "/auth/update-profile", body: map[string]any{"name": "B"}})
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

	resp, body := do(t, app, call{method: "PUT", path: "/auth/update-profile", token: token, body: map[string]any{
		"name":      "B",
		"gender":    "Female",
		"age":       30,
		"interests": []string{"nlp"},
	}})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, string(body))
	out := decode(t, body)
	assert.Equal(t, "User profile updated successfully", out["message"])
	user := out["user"].(map[string]any)
	assert.Equal(t, "B", user["name"])
	assert.Equal(t, "Female", user["gender"])
	assert.Equal(t, float64(30), user["age"])
	assert.Equal(t, "a@x.com", user["email"])

	resp, body = do(t, app, call{method: "PUT", path: "/auth/update-user-data", token: token, body: map[string]any{"age": 0}})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Age must be a valid number", decode(t, body)["message"])

	resp, body = do(t, app, call{method: "PUT", path: "/auth/update-profile-pic", token: token, body: map[string]any{"profilePic": ""}})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Profile pic is required", decode(t, body)["message"])
}

func TestReviews(t *testing.T) {
	app := newTestServer(t)
	login := func(email, mobile string) string {
		body := map[string]any{
			"email": email, "mobile_number": mobile, "password": "password1", "name": email, "role": "Reviewer",
		}
		resp, raw := do(t, app, call{method: "POST", path: "/auth/signup", body: body})
		require.Equal(t, nethttp.StatusCreated, resp.StatusCode, string(raw))
		resp, _ = do(t, app, call{method: "POST", path: "/auth/login-by-email", body: map[string]any{
			"email": email, "password": "password1",
		}})
		return sessionCookie(t, resp).Value
	}
	alice := login("alice@x.com", "+911111111111")
	bob := login("bob@x.com", "+912222222222")

	resp, _ := do(t, app, call{method: "POST", path: "/review/create", body: map[string]any{
		"paperId": "p1", "comment": "solid", "rating": 4,
	}})
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

	resp, body := do(t, app, call{method: "POST", path: "/review/create", token: alice, body: map[string]any{
		"paperId": "p1", "comment": "solid", "rating": 9,
	}})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Rating must be between 1 and 5", decode(t, body)["message"])

	resp, body = do(t, app, call{method: "POST", path: "/review/create", token: alice, body: map[string]any{
		"paperId": "p1", "comment": "  solid  ", "rating": 4,
	}})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode, string(body))
	created := decode(t, body)
	assert.Equal(t, "Review added", created["message"])
	review := created["review"].(map[string]any)
	assert.Equal(t, "solid", review["comment"])
	reviewID := review["_id"].(string)

	resp, body = do(t, app, call{method: "GET", path: "/review/p1"})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	list := decode(t, body)["reviews"].([]any)
	require.Len(t, list, 1)
	first := list[0].(map[string]any)
	assert.Equal(t, "alice@x.com", first["user_name"])
	assert.Equal(t, "Reviewer", first["user_role"])

	resp, body = do(t, app, call{method: "DELETE", path: "/review/" + reviewID, token: bob})
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Not authorized to delete this review", decode(t, body)["message"])

	resp, _ = do(t, app, call{method: "DELETE", path: "/review/" + reviewID, token: alice})
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp, body = do(t, app, call{method: "DELETE", path: "/review/" + reviewID, token: alice})
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Review not found", decode(t, body)["message"])

	resp, body = do(t, app, call{method: "GET", path: "/review/p1"})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Empty(t, decode(t, body)["reviews"])
}

func TestOperationalRoutes(t *testing.T) {
	app := newTestServer(t)

	resp, body := do(t, app, call{method: "GET", path: "/"})
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "Server is running", string(body))

	resp, body = do(t, app, call{method: "GET", path: "/health/ready"})
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	deps := decode(t, body)["dependencies"].(map[string]any)
	assert.Equal(t, "memory", deps["postgres"])
	assert.Equal(t, "disabled", deps["redis"])

	resp, body = do(t, app, call{method: "GET", path: "/nowhere"})
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, decode(t, body)["message"])
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	resp, body = do(t, app, call{method: "GET", path: "/health/metrics"})
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	snap := decode(t, body)
	assert.NotEmpty(t, snap["requests"])
	assert.NotEmpty(t, snap["errors"])
}

// Payloads as the web client builds them: form values such as age arrive as strings.
func TestSignupAndUpdate_WebClientPayloads(t *testing.T) {
	app := newTestServer(t)

	resp, body := do(t, app, call{method: "POST", path: "/auth/signup", body: map[string]any{
		"name":          "A",
		"email":         "a@x.com",
		"mobile_number": "+91" + "1234567890",
		"password":      "password1",
		"role":          "Researcher",
		"gender":        "Male",
		"age":           "25",
		"expertise":     "NLP",
		"institutions":  []string{"IIT"},
		"interests":     []string{},
		"social_links":  []string{""},
		"visibility":    true,
	}})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode, string(body))
	created := decode(t, body)
	assert.Equal(t, float64(25), created["age"])
	assert.Equal(t, "Male", created["gender"])

	resp, _ = do(t, app, call{method: "POST", path: "/auth/login-by-email", body: map[string]any{
		"email": "a@x.com", "password": "password1",
	}})
	token := sessionCookie(t, resp).Value

	resp, body = do(t, app, call{method: "PUT", path: "/auth/update-user-data", token: token, body: map[string]any{
		"name":         "A",
		"role":         "Both",
		"gender":       "Male",
		"age":          "31",
		"expertise":    "NLP",
		"institutions": []string{"IIT"},
		"interests":    []string{"graphs"},
		"social_links": []string{"https://example.org"},
		"visibility":   false,
	}})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, string(body))
	user := decode(t, body)["user"].(map[string]any)
	assert.Equal(t, float64(31), user["age"])
	assert.Equal(t, "Both", user["role"])
	assert.Equal(t, false, user["visibility"])

	resp, body = do(t, app, call{method: "PUT", path: "/auth/update-user-data", token: token, body: map[string]any{"age": "old"}})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Age must be a valid number", decode(t, body)["message"])
}

type recordingThrottle struct {
	auth.NoopThrottle
	keys []string
}

func (r *recordingThrottle) Fail(_ context.Context, key string) error {
	r.keys = append(r.keys, key)
	return nil
}

func TestLoginThrottleKeyedByForwardedClientIP(t *testing.T) {
	throttle := &recordingThrottle{}
	app := newTestServerWith(t, testServerOptions{
		throttle: throttle,
		proxy:    ProxyConfig{Header: fiber.HeaderXForwardedFor},
	})

	for _, ip := range []string{"203.0.113.7", "198.51.100.9, 10.0.0.1"} {
		resp, _ := do(t, app, call{
			method:  "POST",
			path:    "/auth/login-by-email",
			body:    map[string]any{"email": "nobody@x.com", "password": "password1"},
			headers: map[string]string{fiber.HeaderXForwardedFor: ip},
		})
		assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	}
	assert.Equal(t, []string{"203.0.113.7", "198.51.100.9"}, throttle.keys)
}

func TestLoginThrottleIgnoresForwardedHeaderByDefault(t *testing.T) {
	throttle := &recordingThrottle{}
	app := newTestServerWith(t, testServerOptions{throttle: throttle})

	do(t, app, call{
		method:  "POST",
		path:    "/auth/login-by-email",
		body:    map[string]any{"email": "nobody@x.com", "password": "password1"},
		headers: map[string]string{fiber.HeaderXForwardedFor: "203.0.113.7"},
	})
	require.Len(t, throttle.keys, 1)
	assert.NotEqual(t, "203.0.113.7", throttle.keys[0])
}
