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
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"studybud/internal/service"

	"github.com/gorilla/sessions"
)

type recordingLogger struct{ lines []string }

func (l *recordingLogger) Logf(format string, v ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func (l *recordingLogger) count(prefix string) int {
	n := 0
	for _, line := range l.lines {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

// unsavableStore hands out sessions that can never be written back
type unsavableStore struct{}

func (s unsavableStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.NewSession(s, name), nil
}
func (s unsavableStore) New(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.NewSession(s, name), nil
}
func (s unsavableStore) Save(*http.Request, http.ResponseWriter, *sessions.Session) error {
	return errors.New("cookie too large")
}

func TestSessionWriteFailuresAreLogged(t *testing.T) {
	logger := &recordingLogger{}
	p := &pages{cookieStore: unsavableStore{}, logger: logger}
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	p.flash(httptest.NewRecorder(), req, "Room deleted")
	if err := p.keepPending(httptest.NewRecorder(), req, &service.PendingConfirmation{ResourceKind: service.KindRoom, ResourceID: "r", Token: "t"}); err == nil {
		t.Error("expected keepPending to report the failed save")
	}

	if n := logger.count("ERROR: Could not save session"); n != 1 {
		t.Errorf("expected the flash save failure to be logged once, got %d: %v", n, logger.lines)
	}
}

func TestUndecodableSessionIsReplaced(t *testing.T) {
	logger := &recordingLogger{}
	p := &pages{cookieStore: sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef")), logger: logger}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "auth-session", Value: "tampered"})

	rec := httptest.NewRecorder()
	p.flash(rec, req, "Room deleted")

	if logger.count("WARN: Discarding session cookie") != 1 {
		t.Errorf("expected the bad cookie to be logged, got %v", logger.lines)
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Error("expected a fresh session cookie carrying the flash")
	}
}
