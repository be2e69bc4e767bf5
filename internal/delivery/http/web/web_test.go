package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobmatch-web/config"
	"go-jobmatch-web/internal/delivery/http/web"
	"go-jobmatch-web/internal/gateway/rest"
	"go-jobmatch-web/internal/session"
	"go-jobmatch-web/internal/usecase"
	"go-jobmatch-web/internal/workflow"
	"go-jobmatch-web/pkg/security"
)

const csrfToken = "test-csrf-token"

func testConfig() *config.Config {
	return &config.Config{
		APIBaseURL:               "http://backend.test",
		APITimeout:               5 * time.Second,
		SessionMaxAge:            time.Hour,
		JobsPageSize:             20,
		MaxResumeBytes:           5 << 20,
		TrendConcurrency:         4,
		RateLimitWindowSeconds:   60,
		RateLimitLoginThreshold:  100,
		RateLimitGlobalThreshold: 1000,
	}
}

// newApp wires the full stack against a fake backend.
func newApp(t *testing.T, backend http.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := testConfig()
	client := rest.NewClient(srv.URL, cfg.APITimeout, nil)
	applications := rest.NewApplicationGateway(client)

	router, err := web.NewRouter(ctx, web.RouterDeps{
		AuthUC:        usecase.NewAuthUsecase(rest.NewAuthGateway(client), session.ContextStore{}),
		JobUC:         usecase.NewJobUsecase(rest.NewJobGateway(client), applications, cfg.JobsPageSize, cfg.TrendConcurrency),
		ApplicationUC: usecase.NewApplicationUsecase(applications, rest.NewUploadGateway(client), workflow.New(applications, nil, nil), cfg.MaxResumeBytes),
		TaskUC:        usecase.NewTaskUsecase(rest.NewTaskGateway(client)),
		HealthUC:      usecase.NewHealthUsecase(map[string]usecase.Probe{"backend": client.Ping}, time.Second),
		Sessions:      session.NewCookieStore(false, cfg.SessionMaxAge),
		LoginTracker:  security.NewLoginTracker(security.DefaultLoginTrackerConfig(), nil),
		Config:        cfg,
	})
	require.NoError(t, err)
	return router
}

// request describes one browser call. tokenInForm leaves the CSRF header off
// so the form field has to carry the token.
type request struct {
	method      string
	path        string
	body        string
	form        url.Values
	role        string
	json        bool
	noCSRF      bool
	tokenInForm bool
	headers     map[string]string
}

func (r request) build() *http.Request {
	var req *http.Request
	switch {
	case r.form != nil:
		req = httptest.NewRequest(r.method, r.path, strings.NewReader(r.form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	case r.body != "":
		req = httptest.NewRequest(r.method, r.path, strings.NewReader(r.body))
		req.Header.Set("Content-Type", "application/json")
	default:
		req = httptest.NewRequest(r.method, r.path, nil)
	}
	if r.json {
		req.Header.Set("Accept", "application/json")
	} else {
		req.Header.Set("Accept", "text/html")
	}
	if r.role != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieToken, Value: "tok-" + r.role})
		req.AddCookie(&http.Cookie{Name: session.CookieUserType, Value: r.role})
	}
	if !r.noCSRF {
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: csrfToken})
		if !r.tokenInForm {
			req.Header.Set("X-CSRF-Token", csrfToken)
		}
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	return req
}

func serve(router http.Handler, r request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r.build())
	return rec
}

func setCookies(rec *httptest.ResponseRecorder, name string) []*http.Cookie {
	var out []*http.Cookie
	for _, c := range (&http.Response{Header: rec.Header()}).Cookies() {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Message string            `json:"message"`
		Kind    string            `json:"kind"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func unexpectedBackend(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func TestGuards(t *testing.T) {
	router := newApp(t, unexpectedBackend(t))

	tests := []struct {
		name     string
		path     string
		role     string
		location string
	}{
		{"no session goes to login", "/my-applications", "", "/login"},
		{"no session on employer view", "/employer/manage-jobs", "", "/login"},
		{"employer on student view goes home", "/tasks", "employer", "/"},
		{"student on employer view goes home", "/post-job", "student", "/"},
		{"role cookie without token is no session", "/student-dashboard", "", "/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := request{method: http.MethodGet, path: tt.path, role: tt.role}
			if tt.role == "" {
				r.headers = map[string]string{"Cookie": "userType=student"}
			}
			rec := serve(router, r)
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}

	t.Run("matching role renders the dashboard", func(t *testing.T) {
		rec := serve(router, request{method: http.MethodGet, path: "/student-dashboard", role: "student"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Student Dashboard")
	})
}

func TestLogin(t *testing.T) {
	router := newApp(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["password"] != "secret1" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": "jwt-token", "userType": "employer"})
	})

	t.Run("success stores both cookies and lands on the role dashboard", func(t *testing.T) {
		rec := serve(router, request{
			method: http.MethodPost,
			path:   "/login",
			form:   url.Values{"email": {"boss@example.com"}, "password": {"secret1"}},
		})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/employer-dashboard", rec.Header().Get("Location"))

		token := setCookies(rec, session.CookieToken)
		role := setCookies(rec, session.CookieUserType)
		require.Len(t, token, 1)
		require.Len(t, role, 1)
		assert.Equal(t, "jwt-token", token[0].Value)
		assert.Equal(t, "employer", role[0].Value)
		assert.True(t, token[0].HttpOnly)
	})

	t.Run("bad credentials keep the user logged out", func(t *testing.T) {
		rec := serve(router, request{
			method: http.MethodPost,
			path:   "/login",
			json:   true,
			body:   `{"email":"boss@example.com","password":"wrong"}`,
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "Invalid credentials", env.Message)
	})

	t.Run("invalid form is a validation error", func(t *testing.T) {
		rec := serve(router, request{
			method: http.MethodPost,
			path:   "/login",
			json:   true,
			body:   `{"email":"not-an-email"}`,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "validation", env.Error.Kind)
	})
}

func TestLogout_ClearsBothCookies(t *testing.T) {
	router := newApp(t, unexpectedBackend(t))

	rec := serve(router, request{method: http.MethodPost, path: "/logout", role: "student"})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	for _, name := range []string{session.CookieToken, session.CookieUserType} {
		cookies := setCookies(rec, name)
		require.Len(t, cookies, 1, name)
		assert.Empty(t, cookies[0].Value)
		assert.Less(t, cookies[0].MaxAge, 0)
	}

	// the browser dropped both cookies, so the next guarded view sends it to login
	rec = serve(router, request{method: http.MethodGet, path: "/my-applications"})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestUnauthorized_RedirectsToLoginOnce(t *testing.T) {
	var calls atomic.Int32
	router := newApp(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/jobs/employer/my-jobs" {
			writeJSON(w, http.StatusOK, []map[string]any{
				{"id": "j1", "title": "A", "isActive": true},
				{"id": "j2", "title": "B", "isActive": true},
				{"id": "j3", "title": "C", "isActive": true},
			})
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Token expired"})
	})

	t.Run("html", func(t *testing.T) {
		rec := serve(router, request{method: http.MethodGet, path: "/employer/manage-jobs", role: "employer"})

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
		assert.Len(t, setCookies(rec, session.CookieToken), 1)
		assert.Len(t, setCookies(rec, session.CookieUserType), 1)
		assert.NotContains(t, rec.Body.String(), "Manage")
	})

	t.Run("json", func(t *testing.T) {
		calls.Store(0)
		rec := serve(router, request{method: http.MethodGet, path: "/me", role: "employer", json: true})

		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
		cookies := setCookies(rec, session.CookieToken)
		require.Len(t, cookies, 1)
		assert.Less(t, cookies[0].MaxAge, 0)
	})
}

func TestListJobs_InternshipFilter(t *testing.T) {
	router := newApp(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/jobs", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "Internship", q.Get("type"))
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "20", q.Get("limit"))
		assert.False(t, q.Has("location"))
		assert.False(t, q.Has("search"))
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"jobs": []map[string]any{
					{"id": "1", "title": "Data Intern", "type": "Internship"},
				},
				"total": 1,
			},
		})
	})

	t.Run("json", func(t *testing.T) {
		rec := serve(router, request{method: http.MethodGet, path: "/jobs?type=Internship&location=+", json: true})
		require.Equal(t, http.StatusOK, rec.Code)

		env := decodeEnvelope(t, rec)
		var view struct {
			Results struct {
				Jobs     []struct{ Title string } `json:"jobs"`
				LoadMore bool                     `json:"loadMore"`
			} `json:"results"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &view))
		require.Len(t, view.Results.Jobs, 1)
		assert.Equal(t, "Data Intern", view.Results.Jobs[0].Title)
		assert.False(t, view.Results.LoadMore)
	})

	t.Run("html", func(t *testing.T) {
		rec := serve(router, request{method: http.MethodGet, path: "/jobs?type=Internship"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Data Intern")
	})
}

func TestCSRF(t *testing.T) {
	router := newApp(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"id": "t1", "text": "Polish resume"})
	})

	t.Run("missing token is rejected before the backend", func(t *testing.T) {
		rec := serve(router, request{method: http.MethodPost, path: "/tasks", role: "student", json: true, noCSRF: true, body: `{"text":"x"}`})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.NotEmpty(t, setCookies(rec, "csrf_token"))
	})

	t.Run("form field token is accepted", func(t *testing.T) {
		rec := serve(router, request{
			method:      http.MethodPost,
			path:        "/tasks",
			role:        "student",
			tokenInForm: true,
			form:        url.Values{"text": {"Polish resume"}, "csrf_token": {csrfToken}},
		})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/tasks", rec.Header().Get("Location"))
	})
}

func TestChangeStatus(t *testing.T) {
	var fail atomic.Bool
	router := newApp(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/applications/a1/status", r.URL.Path)
		if fail.Load() {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "boom"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	t.Run("failure keeps the displayed status", func(t *testing.T) {
		fail.Store(true)
		rec := serve(router, request{
			method: http.MethodPatch,
			path:   "/employer/applications/a1/status",
			role:   "employer",
			json:   true,
			body:   `{"status":"accepted","current":"pending","view":"v1"}`,
		})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "Failed to update application status", env.Message)
		assert.Contains(t, string(env.Data), `"status":"pending"`)
		assert.Contains(t, string(env.Data), `"acknowledged":false`)
	})

	t.Run("acknowledged change moves the status", func(t *testing.T) {
		fail.Store(false)
		rec := serve(router, request{
			method: http.MethodPatch,
			path:   "/employer/applications/a1/status",
			role:   "employer",
			json:   true,
			body:   `{"status":"rejected","current":"accepted","view":"v1"}`,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Contains(t, string(env.Data), `"status":"rejected"`)
	})

	t.Run("form post returns to the applicants view", func(t *testing.T) {
		fail.Store(false)
		rec := serve(router, request{
			method: http.MethodPost,
			path:   "/employer/applications/a1/status",
			role:   "employer",
			form:   url.Values{"status": {"interview"}, "current": {"pending"}, "view": {"v1"}, "jobId": {"j9"}},
		})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/employer/jobs/j9/applicants?view=v1", rec.Header().Get("Location"))
		require.NotEmpty(t, setCookies(rec, "flash"))
	})
}

func TestChangeStatus_CallersWithoutViewDoNotBlockEachOther(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	router := newApp(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	change := func(target string) *httptest.ResponseRecorder {
		return serve(router, request{
			method: http.MethodPatch,
			path:   "/employer/applications/a1/status",
			role:   "employer",
			json:   true,
			body:   `{"status":"` + target + `","current":"pending"}`,
		})
	}

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() { done <- change("reviewed") }()
	<-started

	second := change("rejected")
	close(release)
	first := <-done

	assert.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, string(decodeEnvelope(t, second).Data), `"status":"rejected"`)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, string(decodeEnvelope(t, first).Data), `"status":"reviewed"`)
}

func TestChangeStatus_RejectsUnknownCurrentStatus(t *testing.T) {
	router := newApp(t, unexpectedBackend(t))

	rec := serve(router, request{
		method: http.MethodPatch,
		path:   "/employer/applications/a1/status",
		role:   "employer",
		json:   true,
		body:   `{"status":"accepted","current":"hired","view":"v1"}`,
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation", decodeEnvelope(t, rec).Error.Kind)
}

func TestApply_RejectsDisallowedResume(t *testing.T) {
	router := newApp(t, unexpectedBackend(t))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("applicantName", "Ada Lovelace")
	_ = writer.WriteField("applicantPhone", "+1 555 0100")
	_ = writer.WriteField("applicantEmail", "ada@example.com")
	_ = writer.WriteField("educationLevel", "bachelor")
	part, err := writer.CreateFormFile("resume", "resume.exe")
	require.NoError(t, err)
	_, _ = part.Write([]byte("MZ\x90\x00binary"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/jobs/j1/apply", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-CSRF-Token", csrfToken)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: csrfToken})
	req.AddCookie(&http.Cookie{Name: session.CookieToken, Value: "tok"})
	req.AddCookie(&http.Cookie{Name: session.CookieUserType, Value: "student"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "validation", env.Error.Kind)
}

func TestHealth(t *testing.T) {
	var down atomic.Bool
	router := newApp(t, func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	rec := serve(router, request{method: http.MethodGet, path: "/health", json: true})
	assert.Equal(t, http.StatusOK, rec.Code)

	down.Store(true)
	rec = serve(router, request{method: http.MethodGet, path: "/health", json: true})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}

func TestNotFound_RendersErrorView(t *testing.T) {
	router := newApp(t, unexpectedBackend(t))

	rec := serve(router, request{method: http.MethodGet, path: "/nowhere"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
}
