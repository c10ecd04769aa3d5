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

	"studybud/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// This repository is used to manipulate the messages posted in rooms. It allows CR_D (Create, Read and Delete operations) on the messages.
type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error // Inserts a message and makes its author a participant of the room, atomically

	FindByID(ctx context.Context, id string) (*entity.Message, error)                 // Retrieves the message WITH its author and room
	ListByRoom(ctx context.Context, roomID string) ([]*entity.Message, error)         // Retrieves the messages posted in a room
	ListByAuthor(ctx context.Context, authorID string) ([]*entity.Message, error)     // Retrieves the messages written by a user
	ListByTopicMatching(ctx context.Context, query string) ([]*entity.Message, error) // Retrieves the messages of rooms whose topic name contains query

	DeleteOwned(ctx context.Context, id, authorID string) error // Deletes the message if authorID wrote it
}

// Implementation of the repository using gorm
type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) MessageRepository {
	return &GormMessageRepository{db}
}

func (repo *GormMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(message).Error; err != nil {
			return err
		}
		return NewGormRoomRepository(tx).AddParticipant(ctx, message.RoomID, message.AuthorID)
	})
}

func (repo *GormMessageRepository) FindByID(ctx context.Context, id string) (*entity.Message, error) {
	var message entity.Message
	err := withMessageDetails(repo.db.WithContext(ctx)).Where("id = ?", id).First(&message).Error
	return found(&message, err)
}

func (repo *GormMessageRepository) ListByRoom(ctx context.Context, roomID string) ([]*entity.Message, error) {
	var messages []*entity.Message
	err := withMessageDetails(repo.db.WithContext(ctx)).
		Where("room_id = ?", roomID).
		Order("updated_at DESC").
		Order("created_at DESC").
		Find(&messages).Error
	return messages, err
}

func (repo *GormMessageRepository) ListByAuthor(ctx context.Context, authorID string) ([]*entity.Message, error) {
	var messages []*entity.Message
	err := withMessageDetails(repo.db.WithContext(ctx)).
		Where("author_id = ?", authorID).
		Order("updated_at DESC").
		Order("created_at DESC").
		Find(&messages).Error
	return messages, err
}

func (repo *GormMessageRepository) ListByTopicMatching(ctx context.Context, query string) ([]*entity.Message, error) {
	var messages []*entity.Message

	// Inner joins: a room without a topic has no topic name to match
	err := withMessageDetails(repo.db.WithContext(ctx)).
		Joins("JOIN rooms ON rooms.id = messages.room_id").
		Joins("JOIN topics ON topics.id = rooms.topic_id").
		Where(containsClause("topics.name"), containsPattern(query)).
		Order("messages.updated_at DESC").
		Order("messages.created_at DESC").
		Find(&messages).Error
	return messages, err
}

func (repo *GormMessageRepository) DeleteOwned(ctx context.Context, id, authorID string) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND author_id = ?", id, authorID).Delete(&entity.Message{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ownershipError(tx, &entity.Message{}, id)
		}
		return nil
	})
}

// withMessageDetails preloads the author and the room (with its topic) of each message
func withMessageDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Room.Topic")
}
