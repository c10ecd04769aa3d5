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
	"net/url"
	"strings"

	"studybud/internal/middleware"
	"studybud/internal/nlog"
	"studybud/internal/service"
	"studybud/internal/view"

	"github.com/gorilla/sessions"
)

// Session key of the deletion awaiting confirmation
const keyPending = "pending"

const msgForbidden = "You are not allowed here!"

// Payload of error.html
type errorPage struct {
	Status  int
	Message string
}

// pages holds what every handler needs to answer with a page
type pages struct {
	cookieStore sessions.Store
	renderer    *view.PageRenderer
	logger      nlog.Logger
}

func (p *pages) Logf(format string, v ...any) {
	p.logger.Logf(format, v...)
}

// render answers with the page, consuming the pending flash messages of the session
func (p *pages) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	page := &view.Page{
		Title: title,
		Query: r.URL.Query().Get("q"),
		User:  middleware.CurrentUser(r),
		Data:  data,
	}

	session := p.session(r)
	if flashes := session.Flashes(); len(flashes) > 0 {
		for _, f := range flashes {
			if s, ok := f.(string); ok {
				page.Flashes = append(page.Flashes, s)
			}
		}
		p.save(w, r, session)
	}

	if err := p.renderer.Render(w, status, name, page); err != nil {
		p.Logf("ERROR: Could not render %s {%v}", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (p *pages) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	p.render(w, r, status, "error.html", http.StatusText(status), errorPage{Status: status, Message: message})
}

// fail answers with the page matching a service error
func (p *pages) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		p.renderError(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
	case errors.Is(err, service.ErrForbidden):
		p.renderError(w, r, http.StatusForbidden, msgForbidden)
	case errors.Is(err, service.ErrUnauthenticated):
		http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
	default:
		p.Logf("ERROR: Request %s %s failed {%v}", r.Method, r.URL.Path, err)
		p.renderError(w, r, http.StatusInternalServerError, "Something went wrong, please try again later.")
	}
}

func (p *pages) flash(w http.ResponseWriter, r *http.Request, message string) {
	session := p.session(r)
	session.AddFlash(message)
	p.save(w, r, session)
}

// session returns the site session, a fresh one when the cookie can't be decoded
func (p *pages) session(r *http.Request) *sessions.Session {
	session, err := p.cookieStore.Get(r, middleware.SessionName)
	if err != nil {
		p.Logf("WARN: Discarding session cookie {%v}", err)
	}
	if session == nil {
		session = sessions.NewSession(p.cookieStore, middleware.SessionName)
	}
	return session
}

// save writes the session cookie, logging instead of failing the page
func (p *pages) save(w http.ResponseWriter, r *http.Request, session *sessions.Session) {
	if err := session.Save(r, w); err != nil {
		p.Logf("ERROR: Could not save session {%v}", err)
	}
}

// keepPending stores the deletion to confirm in the session, replacing any previous one
func (p *pages) keepPending(w http.ResponseWriter, r *http.Request, pending *service.PendingConfirmation) error {
	session := p.session(r)
	session.Values[keyPending] = *pending
	return session.Save(r, w)
}

// takePending returns the deletion the session is waiting for, if it's the given one, and forgets it
func (p *pages) takePending(w http.ResponseWriter, r *http.Request, kind, id, token string) (*service.PendingConfirmation, bool) {
	session := p.session(r)
	pending, ok := session.Values[keyPending].(service.PendingConfirmation)
	if !ok || !pending.Matches(kind, id, token) {
		return nil, false
	}
	delete(session.Values, keyPending)
	p.save(w, r, session)
	return &pending, true
}

// isLocalPath is true for paths on this site only, "/room/1" but not "//evil.com" or "https://evil.com"
func isLocalPath(next string) bool {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return false
	}
	u, err := url.Parse(next)
	return err == nil && u.Scheme == "" && u.Host == ""
}

// backLink points to the referring page when it's on this site, fallback otherwise
func backLink(r *http.Request, fallback string) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host != r.Host || ref.Path == "" {
		return fallback
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
