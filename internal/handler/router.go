/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package handler

import (
	"net/http"

	"studybud/internal/metrics"
	"studybud/internal/middleware"
	"studybud/internal/nlog"
	"studybud/internal/service"
	"studybud/internal/view"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
)

// Services the site is built on
type Services struct {
	Auth     service.AuthService
	Rooms    service.RoomService
	Messages service.MessageService
	Listing  service.ListingService
	Users    service.UserService
}

// NewRouter registers every page of the site. m may be nil.
func NewRouter(svc Services, cookieStore sessions.Store, renderer *view.PageRenderer, m *metrics.Metrics, logger nlog.Logger) *mux.Router {
	authHandler := NewAuthHandler(svc.Auth, cookieStore, renderer, logger)
	roomHandler := NewRoomHandler(svc.Rooms, svc.Listing, cookieStore, renderer, logger)
	messageHandler := NewMessageHandler(svc.Messages, cookieStore, renderer, logger)
	userHandler := NewUserHandler(svc.Users, cookieStore, renderer, logger)

	login := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireLogin(cookieStore, logger, next)
	}

	r := mux.NewRouter().StrictSlash(true)
	if m != nil {
		r.Use(middleware.MetricsMiddleware(m))
	}
	r.Use(middleware.AuthMiddleware(cookieStore, svc.Auth, logger))

	// Authentication routes
	r.HandleFunc("/register", authHandler.Register).Methods("POST", "GET")
	r.HandleFunc("/login", authHandler.Login).Methods("POST", "GET")
	r.HandleFunc("/logout", authHandler.Logout).Methods("GET")

	// Rooms
	r.HandleFunc("/", roomHandler.Home).Methods("GET")
	r.HandleFunc("/room/{id}", roomHandler.Room).Methods("GET")
	r.HandleFunc("/room/{id}", login(roomHandler.PostMessage)).Methods("POST")
	r.HandleFunc("/create-room", login(roomHandler.CreateRoom)).Methods("POST", "GET")
	r.HandleFunc("/update-room/{id}", login(roomHandler.UpdateRoom)).Methods("POST", "GET")
	r.HandleFunc("/delete-room/{id}", login(roomHandler.DeleteRoom)).Methods("POST", "GET")

	// Messages and users
	r.HandleFunc("/delete-message/{id}", login(messageHandler.DeleteMessage)).Methods("POST", "GET")
	r.HandleFunc("/profile/{id}", userHandler.Profile).Methods("GET")

	// Unknown paths still get the identity, so the header shows who is logged in
	r.NotFoundHandler = middleware.AuthMiddleware(cookieStore, svc.Auth, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		roomHandler.renderError(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
	}))

	return r
}
