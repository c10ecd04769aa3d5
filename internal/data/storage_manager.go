/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package data

import (
	"context"

	"studybud/internal/repository"

	"gorm.io/gorm"
)

// Storage manager gathers all the repositories of the site in a single container.
type StorageManager struct {
	db *gorm.DB

	// Repositories
	userRepo    repository.UserRepository
	topicRepo   repository.TopicRepository
	roomRepo    repository.RoomRepository
	messageRepo repository.MessageRepository
}

func NewStorageManager(db *gorm.DB) *StorageManager {
	return &StorageManager{
		db:          db,
		userRepo:    repository.NewGormUserRepository(db),
		topicRepo:   repository.NewGormTopicRepository(db),
		roomRepo:    repository.NewGormRoomRepository(db),
		messageRepo: repository.NewGormMessageRepository(db),
	}
}

func (s *StorageManager) GetUserRepository() repository.UserRepository {
	return s.userRepo
}

func (s *StorageManager) GetTopicRepository() repository.TopicRepository {
	return s.topicRepo
}

func (s *StorageManager) GetRoomRepository() repository.RoomRepository {
	return s.roomRepo
}

func (s *StorageManager) GetMessageRepository() repository.MessageRepository {
	return s.messageRepo
}

// Ping reports whether the underlying database answers
func (s *StorageManager) Ping(ctx context.Context) error {
	return Ping(ctx, s.db)
}

// Close releases the connection pool
func (s *StorageManager) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
