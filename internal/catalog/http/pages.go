package http

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/coursehub/internal/catalog/service"
	"github.com/aussiebroadwan/coursehub/pkg/slogx"
)

type pagesHandler struct {
	views *Views
	creds *service.CredentialService
}

func (h *pagesHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, r, http.StatusOK, viewHome, page{Title: "Home"})
}

func (h *pagesHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	data := page{Title: "Dashboard"}
	u, ok, err := h.creds.FindByID(r.Context(), p.UserID)
	switch {
	case err != nil:
		// the name is cosmetic, keep serving
		slogx.FromContext(r.Context()).Warn("dashboard user lookup failed", slog.Any("err", err))
	case ok:
		data.UserName = u.Name
	}

	h.views.Render(w, r, http.StatusOK, viewDashboard, data)
}
