/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"studybud/internal"
	"studybud/internal/data"
	"studybud/internal/entity"
	"studybud/internal/nlog"
	"studybud/internal/service"
	"studybud/internal/view"
	"studybud/web"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

type site struct {
	router  http.Handler
	storage *data.StorageManager
	svc     Services
}

func newSite(t *testing.T) *site {
	t.Helper()

	db, err := data.Open(data.DBConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	storage := data.NewStorageManager(db)
	t.Cleanup(func() { storage.Close() })

	templates, err := internal.RetrieveWebTemplates(web.Templates())
	if err != nil {
		t.Fatalf("listing templates: %v", err)
	}
	renderer, err := view.NewPageRenderer(web.Templates(), templates)
	if err != nil {
		t.Fatalf("parsing templates: %v", err)
	}

	logger := nlog.Discard()
	svc := Services{
		Auth:     service.NewAuthService(storage.GetUserRepository(), bcrypt.MinCost, nil, logger),
		Rooms:    service.NewRoomService(storage.GetRoomRepository(), storage.GetMessageRepository(), nil, logger),
		Messages: service.NewMessageService(storage.GetMessageRepository(), nil, logger),
		Listing:  service.NewListingService(storage.GetTopicRepository(), storage.GetRoomRepository(), storage.GetMessageRepository(), logger),
		Users:    service.NewUserService(storage.GetUserRepository(), storage.GetTopicRepository(), storage.GetRoomRepository(), storage.GetMessageRepository(), logger),
	}

	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	store.Options = &sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode, MaxAge: 3600}

	return &site{
		router:  NewRouter(svc, store, renderer, nil, logger),
		storage: storage,
		svc:     svc,
	}
}

// client is a browser: it keeps the session cookie between requests
type client struct {
	site    *site
	session *http.Cookie
}

func (s *site) anonymous() *client {
	return &client{site: s}
}

// as registers username and logs it in
func (s *site) as(t *testing.T, username string) (*client, *entity.User) {
	t.Helper()
	c := s.anonymous()
	rec := c.post("/register", url.Values{"username": {username}, "password1": {"pw"}, "password2": {"pw"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("registering %s: got %d\n%s", username, rec.Code, rec.Body.String())
	}
	u, err := s.storage.GetUserRepository().GetByUsername(context.Background(), service.NormalizeUsername(username))
	if err != nil {
		t.Fatalf("looking up %s: %v", username, err)
	}
	return c, u
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	if c.session != nil {
		req.AddCookie(c.session)
	}
	rec := httptest.NewRecorder()
	c.site.router.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "auth-session" {
			if cookie.MaxAge < 0 {
				c.session = nil
			} else {
				c.session = cookie
			}
		}
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

var tokenPattern = regexp.MustCompile(`name="token" value="([^"]+)"`)

func confirmationToken(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	match := tokenPattern.FindStringSubmatch(rec.Body.String())
	if match == nil {
		t.Fatalf("no confirmation token in page:\n%s", rec.Body.String())
	}
	return match[1]
}

func expectRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d\n%s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Fatalf("expected redirect to %q, got %q", location, got)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected %d, got %d\n%s", status, rec.Code, rec.Body.String())
	}
}

func (s *site) room(t *testing.T, host *entity.User, name, topic string) *entity.Room {
	t.Helper()
	room, err := s.svc.Rooms.CreateRoom(context.Background(), host, service.RoomForm{Name: name, Topic: topic})
	if err != nil {
		t.Fatalf("creating room: %v", err)
	}
	return room
}

func (s *site) messages(t *testing.T, roomID string) []*entity.Message {
	t.Helper()
	detail, err := s.svc.Rooms.GetRoom(context.Background(), roomID)
	if err != nil {
		t.Fatalf("getting room: %v", err)
	}
	return detail.Messages
}
