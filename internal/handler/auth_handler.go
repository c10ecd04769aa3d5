/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package handler

import (
	"errors"
	"net/http"

	"studybud/internal/entity"
	"studybud/internal/middleware"
	"studybud/internal/nlog"
	"studybud/internal/service"
	"studybud/internal/view"

	"github.com/gorilla/sessions"
)

// Payload of login_register.html
type authPage struct {
	Mode     string // login or register
	Username string
	Next     string
	Error    string
}

type AuthHandler struct {
	pages
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService, cookieStore sessions.Store, renderer *view.PageRenderer, logger nlog.Logger) *AuthHandler {
	return &AuthHandler{
		pages:       pages{cookieStore: cookieStore, renderer: renderer, logger: logger},
		authService: authService,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodGet {
		h.render(w, r, http.StatusOK, "login_register.html", "Login", authPage{Mode: "login", Next: r.URL.Query().Get("next")})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}
	page := authPage{
		Mode:     "login",
		Username: r.FormValue("username"),
		Next:     r.FormValue("next"),
	}

	user, err := h.authService.Authenticate(r.Context(), page.Username, r.FormValue("password"))
	if err != nil {
		h.authFailed(w, r, page, err)
		return
	}

	if err := h.startSession(w, r, user); err != nil {
		h.fail(w, r, err)
		return
	}

	target := "/"
	if isLocalPath(page.Next) {
		target = page.Next
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodGet {
		h.render(w, r, http.StatusOK, "login_register.html", "Register", authPage{Mode: "register"})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error occurred while parsing the form", http.StatusBadRequest)
		return
	}
	page := authPage{Mode: "register", Username: r.FormValue("username")}

	user, err := h.authService.Register(r.Context(), page.Username, r.FormValue("password1"), r.FormValue("password2"))
	if err != nil {
		h.authFailed(w, r, page, err)
		return
	}

	if err := h.startSession(w, r, user); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	session.Values = map[any]any{}
	session.Options.MaxAge = -1
	if err := sessions.Save(r, w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// authFailed shows the form again with the reason, or fails the request if it's not a credentials problem
func (h *AuthHandler) authFailed(w http.ResponseWriter, r *http.Request, page authPage, err error) {
	var aerr *service.AuthError
	if !errors.As(err, &aerr) {
		h.fail(w, r, err)
		return
	}
	page.Error = aerr.Message

	title := "Login"
	if page.Mode == "register" {
		title = "Register"
	}
	h.render(w, r, http.StatusOK, "login_register.html", title, page)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *entity.User) error {
	session := h.session(r)
	session.Values[middleware.KeyUserID] = user.ID
	session.Values[middleware.KeyUsername] = user.Username
	return session.Save(r, w)
}
