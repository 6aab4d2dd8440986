package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/coursehub/internal/catalog/domain"
	"github.com/aussiebroadwan/coursehub/internal/catalog/service"
	"github.com/aussiebroadwan/coursehub/internal/catalog/store"
	"github.com/aussiebroadwan/coursehub/pkg/httpx"
	"github.com/aussiebroadwan/coursehub/pkg/slogx"
)

const maxFormBytes = 64 << 10

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux     *http.ServeMux
	handler http.Handler

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store   store.Store
	views   *Views
	cookies *SessionCookies

	AuthService       *service.AuthService
	SessionService    *service.SessionService
	CredentialService *service.CredentialService
	CourseService     *service.CourseService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	views *Views,
	cookies *SessionCookies,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		views:        views,
		cookies:      cookies,
	}

	// Routes registered on Mux later are still served through this chain.
	r.handler = httpx.Chain(r.Mux,
		slogx.HTTPMiddleware(r.logger),
		httpx.SecureHeaders,
		httpx.MaxBody(maxFormBytes),
	)
	return r
}

// ApplyRoutes registers every route. The services must be set first.
func (r *Router) ApplyRoutes() {
	r.registerPages()
	r.registerAuth()
	r.registerCourses()
	r.registerSystem()
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) authenticated() httpx.Middleware {
	return RequireAuthenticated(r.SessionService, r.cookies, r.views)
}

func (r *Router) instructor() []httpx.Middleware {
	return []httpx.Middleware{r.authenticated(), RequireRole(domain.RoleInstructor, r.views)}
}

func (r *Router) registerPages() {
	h := &pagesHandler{views: r.views, creds: r.CredentialService}

	r.Mux.Handle("GET /{$}",
		httpx.Chain(http.HandlerFunc(h.Home), LoadPrincipal(r.SessionService, r.cookies)))
	r.Mux.Handle("GET /dashboard",
		httpx.Chain(http.HandlerFunc(h.Dashboard), r.authenticated()))
}

func (r *Router) registerAuth() {
	h := &authHandler{auth: r.AuthService, cookies: r.cookies, views: r.views}

	r.Mux.HandleFunc("GET /auth/register", h.GetRegister)
	r.Mux.HandleFunc("POST /auth/register", h.PostRegister)
	r.Mux.HandleFunc("GET /auth/login", h.GetLogin)
	r.Mux.HandleFunc("POST /auth/login", h.PostLogin)
	r.Mux.HandleFunc("GET /auth/logout", h.Logout)
}

func (r *Router) registerCourses() {
	h := &coursesHandler{courses: r.CourseService, views: r.views, router: r}

	r.Mux.Handle("GET /courses", httpx.Chain(http.HandlerFunc(h.List), r.authenticated()))
	r.Mux.Handle("GET /courses/search", httpx.Chain(http.HandlerFunc(h.Search), r.authenticated()))

	r.Mux.Handle("GET /courses/create", httpx.Chain(http.HandlerFunc(h.GetCreate), r.instructor()...))
	r.Mux.Handle("POST /courses/create", httpx.Chain(http.HandlerFunc(h.PostCreate), r.instructor()...))
	r.Mux.Handle("GET /courses/my-courses", httpx.Chain(http.HandlerFunc(h.Mine), r.instructor()...))
	r.Mux.Handle("GET /courses/{id}/details", httpx.Chain(http.HandlerFunc(h.Details), r.instructor()...))
	r.Mux.Handle("GET /courses/{id}/edit", httpx.Chain(http.HandlerFunc(h.GetEdit), r.instructor()...))
	r.Mux.Handle("POST /courses/{id}/update", httpx.Chain(http.HandlerFunc(h.PostUpdate), r.instructor()...))
	r.Mux.Handle("POST /courses/{id}/delete", httpx.Chain(http.HandlerFunc(h.PostDelete), r.instructor()...))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /auth/health", HealthHandler(r.store))
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
}
