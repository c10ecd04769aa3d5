/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package service

import (
	"context"
	"testing"

	"studybud/internal/data"
	"studybud/internal/entity"
	"studybud/internal/metrics"
	"studybud/internal/nlog"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type services struct {
	storage  *data.StorageManager
	metrics  *metrics.Metrics
	auth     AuthService
	rooms    RoomService
	messages MessageService
	listing  ListingService
	users    UserService
}

func newServices(t *testing.T) *services {
	t.Helper()

	db, err := data.Open(data.DBConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	storage := data.NewStorageManager(db)
	t.Cleanup(func() { storage.Close() })

	m := metrics.New()
	logger := nlog.Discard()
	return &services{
		storage:  storage,
		metrics:  m,
		auth:     NewAuthService(storage.GetUserRepository(), bcrypt.MinCost, m, logger),
		rooms:    NewRoomService(storage.GetRoomRepository(), storage.GetMessageRepository(), m, logger),
		messages: NewMessageService(storage.GetMessageRepository(), m, logger),
		listing:  NewListingService(storage.GetTopicRepository(), storage.GetRoomRepository(), storage.GetMessageRepository(), logger),
		users:    NewUserService(storage.GetUserRepository(), storage.GetTopicRepository(), storage.GetRoomRepository(), storage.GetMessageRepository(), logger),
	}
}

func (s *services) register(t *testing.T, username string) *entity.User {
	t.Helper()
	u, err := s.auth.Register(context.Background(), username, "pass-"+username, "pass-"+username)
	require.NoError(t, err)
	return u
}

func (s *services) createRoom(t *testing.T, host *entity.User, name, topic string) *entity.Room {
	t.Helper()
	room, err := s.rooms.CreateRoom(context.Background(), host, RoomForm{Name: name, Topic: topic})
	require.NoError(t, err)
	return room
}

func names(rooms []*entity.Room) []string {
	out := make([]string, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Name)
	}
	return out
}
