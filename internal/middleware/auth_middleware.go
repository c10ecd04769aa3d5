/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package middleware

import (
	"context"
	"net/http"
	"net/url"

	"studybud/internal/entity"
	"studybud/internal/nlog"
	"studybud/internal/service"

	"github.com/gorilla/sessions"
)

// Name of the cookie holding the session, and the keys stored in it
const (
	SessionName = "auth-session"
	KeyUserID   = "user_id"
	KeyUsername = "username"
)

type contextKey int

const userKey contextKey = iota

// Resolves the identity of the session, if any, and stores it in the request context.
// A session pointing at a deleted user is anonymous. Nothing is ever refused here, see RequireLogin.
func AuthMiddleware(store sessions.Store, auth service.AuthService, logger nlog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, SessionName)
			if err != nil {
				// Undecodable cookie (rotated secret key), carry on with the fresh session
				logger.Logf("WARN: Discarding session cookie {%v}", err)
			}

			userID, _ := session.Values[KeyUserID].(string)
			user, err := auth.CurrentUser(r.Context(), userID)
			if err != nil {
				logger.Logf("ERROR: Could not resolve session user {%v}", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError) // 500
				return
			}

			if user != nil {
				r = r.WithContext(WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Sends anonymous requests to the login page, remembering where they were headed.
func RequireLogin(store sessions.Store, logger nlog.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r) != nil {
			next(w, r)
			return
		}

		session, err := store.Get(r, SessionName)
		if err != nil {
			logger.Logf("WARN: Discarding session cookie {%v}", err)
		}
		if session != nil {
			session.AddFlash("Please log in to continue.")
			if err := session.Save(r, w); err != nil {
				logger.Logf("ERROR: Could not save session {%v}", err)
			}
		}
		http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
	}
}

func WithUser(ctx context.Context, user *entity.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// CurrentUser returns the identity of the request, nil when anonymous
func CurrentUser(r *http.Request) *entity.User {
	user, _ := r.Context().Value(userKey).(*entity.User)
	return user
}
