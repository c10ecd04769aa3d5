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
	"net/url"
	"strings"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	s := newSite(t)
	alice, _ := s.as(t, "Alice")

	rec := alice.get("/")
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "@alice") {
		t.Error("the header should show the lowercased username")
	}

	expectRedirect(t, alice.get("/login"), "/")
	expectRedirect(t, alice.get("/register"), "/")

	expectRedirect(t, alice.get("/logout"), "/")
	if alice.session != nil {
		t.Error("logout must drop the session cookie")
	}
	expectStatus(t, alice.get("/login"), http.StatusOK)

	expectRedirect(t, alice.post("/login", url.Values{"username": {"ALICE"}, "password": {"pw"}}), "/")
	if alice.session == nil {
		t.Error("login must set the session cookie")
	}
}

func TestLoginFailuresRerenderTheForm(t *testing.T) {
	s := newSite(t)
	s.as(t, "alice")

	tests := []struct {
		name     string
		username string
		password string
		message  string
	}{
		{"unknown user", "nobody", "pw", "User does not exist"},
		{"wrong password", "alice", "nope", "Username OR Password is incorrect"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := s.anonymous()
			rec := c.post("/login", url.Values{"username": {tt.username}, "password": {tt.password}})
			expectStatus(t, rec, http.StatusOK)
			if !strings.Contains(rec.Body.String(), tt.message) {
				t.Errorf("expected %q on the page", tt.message)
			}
			if !strings.Contains(rec.Body.String(), `value="`+tt.username+`"`) {
				t.Error("the username must be kept")
			}
			if c.session != nil {
				t.Error("no session on failure")
			}
		})
	}
}

func TestLoginNext(t *testing.T) {
	s := newSite(t)
	s.as(t, "alice")

	tests := []struct {
		next string
		want string
	}{
		{"/create-room", "/create-room"},
		{"//evil.example", "/"},
		{"https://evil.example/", "/"},
		{"", "/"},
	}
	for _, tt := range tests {
		c := s.anonymous()
		rec := c.post("/login", url.Values{"username": {"alice"}, "password": {"pw"}, "next": {tt.next}})
		expectRedirect(t, rec, tt.want)
	}
}

func TestLoginPageShowsTheFlash(t *testing.T) {
	s := newSite(t)
	c := s.anonymous()

	expectRedirect(t, c.get("/create-room"), "/login?next=%2Fcreate-room")
	rec := c.get("/login?next=%2Fcreate-room")
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "Please log in to continue.") {
		t.Error("expected the flash message")
	}
	if !strings.Contains(rec.Body.String(), `name="next" value="/create-room"`) {
		t.Error("expected next to be carried in the form")
	}

	// Flashes are shown once
	rec = c.get("/login")
	if strings.Contains(rec.Body.String(), "Please log in to continue.") {
		t.Error("flash shown twice")
	}
}

func TestRegisterFailures(t *testing.T) {
	s := newSite(t)
	s.as(t, "alice")

	rec := s.anonymous().post("/register", url.Values{"username": {"ALICE"}, "password1": {"x"}, "password2": {"x"}})
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "already exists") {
		t.Error("expected the duplicate message")
	}

	rec = s.anonymous().post("/register", url.Values{"username": {"bob"}, "password1": {"x"}, "password2": {"y"}})
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "Passwords do not match") {
		t.Error("expected the mismatch message")
	}

	long := strings.Repeat("a", 80)
	rec = s.anonymous().post("/register", url.Values{"username": {"bob"}, "password1": {long}, "password2": {long}})
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "at most 72 bytes") {
		t.Error("expected the password length message on the form")
	}
}

func TestIsLocalPath(t *testing.T) {
	tests := map[string]bool{
		"/":                  true,
		"/room/1?x=2":        true,
		"":                   false,
		"room/1":             false,
		"//evil.example":     false,
		`/\evil.example`:     false,
		"https://evil.com/x": false,
	}
	for in, want := range tests {
		if got := isLocalPath(in); got != want {
			t.Errorf("isLocalPath(%q) = %v, want %v", in, got, want)
		}
	}
}
