/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package repository

import (
	"context"
	"testing"
	"time"

	"studybud/internal/entity"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db       *gorm.DB
	users    UserRepository
	topics   TopicRepository
	rooms    RoomRepository
	messages MessageRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: SQLiteDriver, DSN: ":memory:"}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("getting sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.SetupJoinTable(&entity.Room{}, "Participants", &entity.RoomParticipant{}); err != nil {
		t.Fatalf("setting up join table: %v", err)
	}
	if err := db.AutoMigrate(&entity.User{}, &entity.UserSecret{}, &entity.Topic{}, &entity.Room{}, &entity.RoomParticipant{}, &entity.Message{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	return &fixture{
		db:       db,
		users:    NewGormUserRepository(db),
		topics:   NewGormTopicRepository(db),
		rooms:    NewGormRoomRepository(db),
		messages: NewGormMessageRepository(db),
	}
}

func (f *fixture) user(t *testing.T, username string) *entity.User {
	t.Helper()
	id := uuid.New().String()
	u := &entity.User{
		ID:        id,
		Username:  username,
		CreatedAt: time.Now(),
		Secret:    entity.UserSecret{UserID: id, Hash: "hash-of-" + username},
	}
	if err := f.users.Create(context.Background(), u); err != nil {
		t.Fatalf("creating user %s: %v", username, err)
	}
	return u
}

// room creates a room hosted by host, at the given time, with an optional description
func (f *fixture) room(t *testing.T, host *entity.User, name, topic, description string, at time.Time) *entity.Room {
	t.Helper()
	r := &entity.Room{
		ID:        uuid.New().String(),
		HostID:    &host.ID,
		Name:      name,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if description != "" {
		r.Description = &description
	}
	if err := f.rooms.Create(context.Background(), r, topic); err != nil {
		t.Fatalf("creating room %s: %v", name, err)
	}
	return r
}

func (f *fixture) message(t *testing.T, author *entity.User, room *entity.Room, body string, at time.Time) *entity.Message {
	t.Helper()
	m := &entity.Message{
		ID:        uuid.New().String(),
		AuthorID:  author.ID,
		RoomID:    room.ID,
		Body:      body,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if err := f.messages.Create(context.Background(), m); err != nil {
		t.Fatalf("creating message: %v", err)
	}
	return m
}

func (f *fixture) count(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("counting %T: %v", model, err)
	}
	return n
}

func roomNames(rooms []*entity.Room) []string {
	names := make([]string, 0, len(rooms))
	for _, r := range rooms {
		names = append(names, r.Name)
	}
	return names
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// touch sets updated_at directly, bypassing gorm's auto timestamps
func (f *fixture) touch(t *testing.T, model any, id string, at time.Time) {
	t.Helper()
	if err := f.db.Model(model).Where("id = ?", id).UpdateColumn("updated_at", at).Error; err != nil {
		t.Fatalf("touching %T %s: %v", model, id, err)
	}
}
