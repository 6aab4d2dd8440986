package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/coursehub/internal/catalog/domain"
	"github.com/aussiebroadwan/coursehub/internal/catalog/service"
	"github.com/aussiebroadwan/coursehub/pkg/httpx"
	"github.com/aussiebroadwan/coursehub/pkg/slogx"
)

type authHandler struct {
	auth    *service.AuthService
	cookies *SessionCookies
	views   *Views
}

func (h *authHandler) GetRegister(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, r, http.StatusOK, viewRegister, page{
		Title: "Register",
		Form:  map[string]string{"role": string(domain.RoleStudent)},
	})
}

func (h *authHandler) PostRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.views.Error(w, r, http.StatusBadRequest, "Malformed form.")
		return
	}

	in := service.RegisterInput{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Role:     r.PostFormValue("role"),
	}

	_, err := h.auth.Register(r.Context(), in)
	if err == nil {
		httpx.SeeOther(w, r, "/auth/login")
		return
	}

	data := page{
		Title: "Register",
		Form:  map[string]string{"name": in.Name, "email": in.Email, "role": in.Role},
	}

	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		data.Errors = ve.Fields
		data.Message = "Please correct the highlighted fields."
	case errors.Is(err, domain.ErrConflict):
		data.Message = service.MsgUserExists
	default:
		slogx.FromContext(r.Context()).Error("register failed", slog.Any("err", err))
		h.views.Error(w, r, http.StatusInternalServerError, msgInternal)
		return
	}
	h.views.Render(w, r, statusFor(err), viewRegister, data)
}

func (h *authHandler) GetLogin(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, r, http.StatusOK, viewLogin, page{Title: "Login"})
}

func (h *authHandler) PostLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.views.Error(w, r, http.StatusBadRequest, "Malformed form.")
		return
	}
	email := r.PostFormValue("email")
	previous := h.cookies.Token(r)

	token, expires, _, err := h.auth.Login(r.Context(), email, r.PostFormValue("password"))
	if errors.Is(err, domain.ErrInvalidCredentials) {
		h.views.Render(w, r, http.StatusUnauthorized, viewLogin, page{
			Title:   "Login",
			Message: service.MsgBadCredentials,
			Form:    map[string]string{"email": email},
		})
		return
	}
	if err != nil {
		slogx.FromContext(r.Context()).Error("login failed", slog.Any("err", err))
		h.views.Error(w, r, http.StatusInternalServerError, msgInternal)
		return
	}

	// A fresh token was minted; the one the browser came in with is dropped.
	if previous != "" {
		if err := h.auth.Logout(r.Context(), previous); err != nil {
			slogx.FromContext(r.Context()).Warn("drop previous session", slog.Any("err", err))
		}
	}

	if err := h.cookies.Set(w, token, expires); err != nil {
		slogx.FromContext(r.Context()).Error("sign session cookie", slog.Any("err", err))
		h.views.Error(w, r, http.StatusInternalServerError, msgInternal)
		return
	}
	httpx.SeeOther(w, r, "/dashboard")
}

// Logout always clears the cookie. Only a storage fault while destroying
// the session turns into a 500.
func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.cookies.Token(r)
	h.cookies.Clear(w)

	if err := h.auth.Logout(r.Context(), token); err != nil {
		slogx.FromContext(r.Context()).Error("logout failed", slog.Any("err", err))
		h.views.Error(w, r, http.StatusInternalServerError, "Could not log out.")
		return
	}
	httpx.SeeOther(w, r, "/")
}
