package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/coursehub/internal/catalog/domain"
	"github.com/aussiebroadwan/coursehub/internal/catalog/service"
	"github.com/aussiebroadwan/coursehub/pkg/httpx"
)

type coursesHandler struct {
	courses *service.CourseService
	views   *Views
	router  *Router
}

func (h *coursesHandler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.ListAll(r.Context())
	if err != nil {
		h.router.writeError(w, r, err)
		return
	}
	h.views.Render(w, r, http.StatusOK, viewCourses, page{Title: "All Courses", Courses: courses})
}

func (h *coursesHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	courses, err := h.courses.Search(r.Context(), q)
	if err != nil {
		h.router.writeError(w, r, err)
		return
	}
	h.views.Render(w, r, http.StatusOK, viewCourses, page{Title: "Search Courses", Query: q, Courses: courses})
}

func (h *coursesHandler) Mine(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	courses, err := h.courses.ListByInstructor(r.Context(), p.UserID)
	if err != nil {
		h.router.writeError(w, r, err)
		return
	}
	h.views.Render(w, r, http.StatusOK, viewCourses, page{Title: "My Courses", Courses: courses, Manage: true})
}

func (h *coursesHandler) GetCreate(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, r, http.StatusOK, viewCourseForm, page{Title: "Create Course", Action: "/courses/create"})
}

func (h *coursesHandler) PostCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.views.Error(w, r, http.StatusBadRequest, "Malformed form.")
		return
	}
	p, _ := PrincipalFrom(r.Context())
	title, desc := r.PostFormValue("title"), r.PostFormValue("description")

	_, err := h.courses.Create(r.Context(), p, title, desc)
	if err != nil {
		h.formError(w, r, err, page{Title: "Create Course", Action: "/courses/create"}, title, desc)
		return
	}
	httpx.SeeOther(w, r, "/courses")
}

func (h *coursesHandler) Details(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	h.views.Render(w, r, http.StatusOK, viewCourseDetails, page{Title: c.Title, Course: &c})
}

func (h *coursesHandler) GetEdit(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	h.views.Render(w, r, http.StatusOK, viewCourseForm, page{
		Title:  "Edit Course",
		Action: fmt.Sprintf("/courses/%d/update", c.ID),
		Form:   map[string]string{"title": c.Title, "description": c.Description},
	})
}

func (h *coursesHandler) PostUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := courseID(r)
	if !ok {
		h.router.writeError(w, r, domain.ErrNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.views.Error(w, r, http.StatusBadRequest, "Malformed form.")
		return
	}
	p, _ := PrincipalFrom(r.Context())
	title, desc := r.PostFormValue("title"), r.PostFormValue("description")

	if err := h.courses.Update(r.Context(), p, id, title, desc); err != nil {
		h.formError(w, r, err, page{Title: "Edit Course", Action: fmt.Sprintf("/courses/%d/update", id)}, title, desc)
		return
	}
	httpx.SeeOther(w, r, "/courses/my-courses")
}

func (h *coursesHandler) PostDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := courseID(r)
	if !ok {
		h.router.writeError(w, r, domain.ErrNotFound)
		return
	}
	p, _ := PrincipalFrom(r.Context())

	if err := h.courses.Delete(r.Context(), p, id); err != nil {
		h.router.writeError(w, r, err)
		return
	}
	httpx.SeeOther(w, r, "/courses/my-courses")
}

// load fetches the course named in the path and checks ownership. It writes
// the response itself when it returns false.
func (h *coursesHandler) load(w http.ResponseWriter, r *http.Request) (domain.Course, bool) {
	id, ok := courseID(r)
	if !ok {
		h.router.writeError(w, r, domain.ErrNotFound)
		return domain.Course{}, false
	}

	c, err := h.courses.GetByID(r.Context(), id)
	if err != nil {
		h.router.writeError(w, r, err)
		return domain.Course{}, false
	}
	if !requireOwnership(w, r, h.views, c) {
		return domain.Course{}, false
	}
	return c, true
}

// formError re-renders the course form for validation failures and falls
// back to the error page for everything else.
func (h *coursesHandler) formError(w http.ResponseWriter, r *http.Request, err error, data page, title, desc string) {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		h.router.writeError(w, r, err)
		return
	}
	data.Errors = ve.Fields
	data.Form = map[string]string{"title": title, "description": desc}
	h.views.Render(w, r, http.StatusBadRequest, viewCourseForm, data)
}

func courseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
