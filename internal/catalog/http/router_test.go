package http

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/coursehub/internal/catalog/domain"
	"github.com/aussiebroadwan/coursehub/internal/catalog/service"
	"github.com/aussiebroadwan/coursehub/internal/catalog/store"
	"github.com/aussiebroadwan/coursehub/internal/catalog/store/drivers/sqlite"
	"github.com/aussiebroadwan/coursehub/pkg/cryptox"
	"github.com/aussiebroadwan/coursehub/pkg/jwtx"
	"github.com/aussiebroadwan/coursehub/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	cryptox.SetPepper("http-test-pepper")
	os.Exit(m.Run())
}

type testServer struct {
	*httptest.Server
	store   store.Store
	courses *service.CourseService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	views, err := NewViews()
	require.NoError(t, err)

	signer, err := jwtx.NewHS256([]byte(strings.Repeat("s", 32)), "coursehub")
	require.NoError(t, err)

	creds := &service.CredentialService{Store: st}
	sessions := &service.SessionService{Store: st, TTL: time.Hour}
	courses := &service.CourseService{Store: st}

	router := NewRouter("test", st, views, &SessionCookies{Signer: signer}, slogx.Discard())
	router.CredentialService = creds
	router.SessionService = sessions
	router.AuthService = &service.AuthService{Credentials: creds, Sessions: sessions}
	router.CourseService = courses
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, store: st, courses: courses}
}

// client does not follow redirects so tests can assert on them.
func (s *testServer) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func do(t *testing.T, c *http.Client, method, u string, form url.Values) (*http.Response, string) {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, u, body)
	require.NoError(t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func (s *testServer) register(t *testing.T, c *http.Client, name, email, role string) {
	t.Helper()
	resp, _ := do(t, c, http.MethodPost, s.URL+"/auth/register", url.Values{
		"name": {name}, "email": {email}, "password": {"secret1"}, "role": {role},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/auth/login", resp.Header.Get("Location"))
}

func (s *testServer) login(t *testing.T, c *http.Client, email string) {
	t.Helper()
	resp, _ := do(t, c, http.MethodPost, s.URL+"/auth/login", url.Values{"email": {email}, "password": {"secret1"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestAnonymousAccess(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)

	for _, path := range []string{"/dashboard", "/courses", "/courses/search?q=x", "/courses/create", "/courses/my-courses", "/courses/1/details"} {
		resp, _ := do(t, c, http.MethodGet, s.URL+path, nil)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		require.Equal(t, "/auth/login", resp.Header.Get("Location"), path)
	}

	resp, body := do(t, c, http.MethodGet, s.URL+"/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Log in")
}

func TestRegisterErrors(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)

	resp, body := do(t, c, http.MethodPost, s.URL+"/auth/register", url.Values{
		"name": {""}, "email": {"nope"}, "password": {"123"}, "role": {"admin"},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body, service.MsgNameRequired)
	require.Contains(t, body, service.MsgEmailInvalid)
	require.Contains(t, body, service.MsgPasswordShort)
	require.Contains(t, body, service.MsgRoleInvalid)

	s.register(t, c, "Ada", "ada@x.com", "instructor")
	resp, body = do(t, c, http.MethodPost, s.URL+"/auth/register", url.Values{
		"name": {"Ada"}, "email": {"ADA@x.com"}, "password": {"secret1"}, "role": {"student"},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body, service.MsgUserExists)
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)
	s.register(t, c, "Ada", "ada@x.com", "student")

	wrong, wrongBody := do(t, c, http.MethodPost, s.URL+"/auth/login", url.Values{"email": {"ada@x.com"}, "password": {"bad"}})
	unknown, unknownBody := do(t, c, http.MethodPost, s.URL+"/auth/login", url.Values{"email": {"ghost@x.com"}, "password": {"bad"}})

	require.Equal(t, http.StatusUnauthorized, wrong.StatusCode)
	require.Equal(t, wrong.StatusCode, unknown.StatusCode)
	require.Contains(t, wrongBody, service.MsgBadCredentials)
	require.Equal(t,
		strings.Replace(wrongBody, "ada@x.com", "EMAIL", 1),
		strings.Replace(unknownBody, "ghost@x.com", "EMAIL", 1),
	)
	require.Empty(t, wrong.Cookies())
}

func TestStudentCannotManageCourses(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)
	s.register(t, c, "Sam", "sam@x.com", "student")
	s.login(t, c, "sam@x.com")

	resp, body := do(t, c, http.MethodGet, s.URL+"/courses/create", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Contains(t, body, "Access Denied: Instructors only.")

	resp, _ = do(t, c, http.MethodPost, s.URL+"/courses/create", url.Values{"title": {"x"}, "description": {"y"}})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = do(t, c, http.MethodGet, s.URL+"/courses", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOwnershipEnforced(t *testing.T) {
	s := newTestServer(t)
	ada, bob := s.client(t), s.client(t)

	s.register(t, ada, "Ada", "ada@x.com", "instructor")
	s.register(t, bob, "Bob", "bob@x.com", "instructor")
	s.login(t, ada, "ada@x.com")
	s.login(t, bob, "bob@x.com")

	resp, _ := do(t, ada, http.MethodPost, s.URL+"/courses/create", url.Values{"title": {"Algorithms"}, "description": {"desc"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/courses", resp.Header.Get("Location"))

	all, err := s.courses.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	id := all[0].ID
	base := s.URL + "/courses/" + itoa(id)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/details"},
		{http.MethodGet, "/edit"},
		{http.MethodPost, "/update"},
		{http.MethodPost, "/delete"},
	} {
		resp, _ := do(t, bob, tc.method, base+tc.path, url.Values{"title": {"Hijack"}, "description": {"x"}})
		require.Equal(t, http.StatusForbidden, resp.StatusCode, tc.path)
	}

	got, err := s.courses.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, all[0], got)

	resp, _ = do(t, bob, http.MethodGet, s.URL+"/courses/9999/details", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = do(t, bob, http.MethodGet, s.URL+"/courses/abc/details", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdaFlow(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)

	s.register(t, c, "Ada", "ada@x.com", "instructor")
	s.login(t, c, "ada@x.com")

	resp, body := do(t, c, http.MethodGet, s.URL+"/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Ada")
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	resp, body = do(t, c, http.MethodPost, s.URL+"/courses/create", url.Values{"title": {" "}, "description": {""}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body, service.MsgTitleRequired)

	resp, _ = do(t, c, http.MethodPost, s.URL+"/courses/create", url.Values{"title": {"Algorithms"}, "description": {"desc"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body = do(t, c, http.MethodGet, s.URL+"/courses/my-courses", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Algorithms")

	all, err := s.courses.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	base := s.URL + "/courses/" + itoa(all[0].ID)

	resp, _ = do(t, c, http.MethodPost, base+"/update", url.Values{"title": {"Algorithms II"}, "description": {"desc"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/courses/my-courses", resp.Header.Get("Location"))

	resp, body = do(t, c, http.MethodGet, base+"/details", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Algorithms II")

	resp, body = do(t, c, http.MethodGet, s.URL+"/courses/search?q=algo", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Algorithms II")

	resp, _ = do(t, c, http.MethodPost, base+"/delete", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = do(t, c, http.MethodGet, base+"/details", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, c, http.MethodPost, base+"/delete", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, c, http.MethodGet, s.URL+"/auth/logout", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	resp, _ = do(t, c, http.MethodGet, s.URL+"/dashboard", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/auth/login", resp.Header.Get("Location"))
}

func TestTamperedCookieIsAnonymous(t *testing.T) {
	s := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, s.URL+"/dashboard", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "eyJhbGciOiJub25lIn0.e30."})

	resp, err := s.client(t).Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestSessionCookieAttributes(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)
	s.register(t, c, "Ada", "ada@x.com", "student")

	resp, _ := do(t, c, http.MethodPost, s.URL+"/auth/login", url.Values{"email": {"ada@x.com"}, "password": {"secret1"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	var ck *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookieName {
			ck = c
		}
	}
	require.NotNil(t, ck)
	require.True(t, ck.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	require.Equal(t, "/", ck.Path)
	require.InDelta(t, time.Hour.Seconds(), float64(ck.MaxAge), 5)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)

	resp, body := do(t, c, http.MethodGet, s.URL+"/auth/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"ok"}`, body)

	resp, _ = do(t, c, http.MethodGet, s.URL+"/livez", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.store.Close())
	resp, body = do(t, c, http.MethodGet, s.URL+"/auth/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.JSONEq(t, `{"status":"error"}`, body)
}

func TestStatusFor(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, statusFor(domain.Validation(map[string]string{"x": "y"})))
	require.Equal(t, http.StatusBadRequest, statusFor(domain.ErrConflict))
	require.Equal(t, http.StatusUnauthorized, statusFor(domain.ErrInvalidCredentials))
	require.Equal(t, http.StatusForbidden, statusFor(domain.ErrForbidden))
	require.Equal(t, http.StatusNotFound, statusFor(domain.ErrNotFound))
	require.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestRouterChainWrapsLateRoutes(t *testing.T) {
	views, err := NewViews()
	require.NoError(t, err)

	router := NewRouter("test", nil, views, nil, slogx.Discard())
	require.NotNil(t, router.handler)

	router.Mux.HandleFunc("GET /late", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for range 2 {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/late", nil))

		require.Equal(t, http.StatusTeapot, rec.Code)
		require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		require.NotEmpty(t, rec.Header().Get(slogx.RequestIDHeader))
	}
}
