package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/violets/internal/apperror"
	"github.com/sakif/violets/internal/auth"
	"github.com/sakif/violets/internal/service"
)

// KeeperHandler serves the login and logout routes. They are only mounted
// when a keeper password is configured.
type KeeperHandler struct {
	keeper *service.KeeperService
	tokens *auth.TokenService
	render *Renderer
	logger *slog.Logger
}

func NewKeeperHandler(
	keeper *service.KeeperService,
	tokens *auth.TokenService,
	render *Renderer,
	logger *slog.Logger,
) *KeeperHandler {
	return &KeeperHandler{keeper: keeper, tokens: tokens, render: render, logger: logger}
}

type loginPage struct {
	Page
	Next string
}

// HandleLoginForm renders the password form. A keeper who is already logged
// in goes straight to next.
//
// HTTP: GET /login?next=/path
func (h *KeeperHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	next := auth.SafeNext(r.URL.Query().Get("next"))
	if auth.HasSession(r, h.tokens) {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}

	h.render.Render(w, http.StatusOK, "login.html", loginPage{
		Page: h.render.Page(r, "Log in"),
		Next: next,
	})
}

// HandleLogin checks the password, sets the session cookie and redirects to
// the page the keeper was trying to reach.
//
// HTTP: POST /login
func (h *KeeperHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render.RenderError(w, r, badForm(err))
		return
	}
	next := auth.SafeNext(r.PostForm.Get("next"))

	token, err := h.keeper.Login(r.PostForm.Get("password"))
	if err != nil {
		if errors.Is(err, apperror.ErrForbidden) {
			h.render.Render(w, http.StatusUnauthorized, "login.html", loginPage{
				Page: withError(h.render.Page(r, "Log in"), err),
				Next: next,
			})
			return
		}
		h.render.RenderError(w, r, err)
		return
	}

	auth.SetSession(w, token, h.tokens.TTL())
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /logout
func (h *KeeperHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	h.logger.Info("keeper logged out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
