package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/aussiebroadwan/coursehub/internal/catalog/domain"
	"github.com/aussiebroadwan/coursehub/pkg/httpx"
	"github.com/aussiebroadwan/coursehub/pkg/slogx"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	viewHome          = "home"
	viewDashboard     = "dashboard"
	viewRegister      = "register"
	viewLogin         = "login"
	viewCourses       = "courses"
	viewCourseForm    = "course_form"
	viewCourseDetails = "course_details"
	viewError         = "error"
)

// page is the data every view receives.
type page struct {
	Title     string
	Message   string
	Principal *domain.Principal
	UserName  string

	Form   map[string]string
	Errors map[string]string
	Action string

	Query   string
	Manage  bool
	Courses []domain.Course
	Course  *domain.Course
}

func (p page) IsInstructor() bool {
	return p.Principal != nil && p.Principal.Role == domain.RoleInstructor
}

// Views holds one parsed template set per page, each layered on the layout.
type Views struct {
	pages map[string]*template.Template
}

func NewViews() (*Views, error) {
	names := []string{
		viewHome, viewDashboard, viewRegister, viewLogin,
		viewCourses, viewCourseForm, viewCourseDetails, viewError,
	}

	v := &Views{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse view %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// Render executes the named view into a buffer first so a template error
// never leaves a half-written page.
func (v *Views) Render(w http.ResponseWriter, r *http.Request, status int, name string, data page) {
	if p, ok := PrincipalFrom(r.Context()); ok && data.Principal == nil {
		data.Principal = &p
	}

	t, ok := v.pages[name]
	if !ok {
		slogx.FromContext(r.Context()).Error("unknown view", "view", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		slogx.FromContext(r.Context()).Error("render view", "view", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Error renders the generic error page with status and a user-safe message.
func (v *Views) Error(w http.ResponseWriter, r *http.Request, status int, msg string) {
	v.Render(w, r, status, viewError, page{
		Title:   http.StatusText(status),
		Message: msg,
	})
}
