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
	"time"

	"studybud/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Caller-editable fields of a room. Host and participants are never part of it.
type RoomChanges struct {
	Name        string
	Description *string
	TopicName   string // Topic is looked up, or created, by this exact name. Empty leaves the room without a topic
}

// This repository is used to manipulate rooms and their participants.
// Writes that need ownership take the acting host and only apply if it matches, in a single statement.
type RoomRepository interface {
	Create(ctx context.Context, room *entity.Room, topicName string) error // Inserts a room, getting or creating its topic

	FindByID(ctx context.Context, id string) (*entity.Room, error)          // Retrieves the room, WITH its host, topic and participants
	ListMatching(ctx context.Context, query string) ([]*entity.Room, error) // Retrieves the rooms whose topic name, name or description contain query
	ListByHost(ctx context.Context, hostID string) ([]*entity.Room, error)  // Retrieves the rooms hosted by the given user
	AddParticipant(ctx context.Context, roomID, userID string) error        // Adds the user to the room's participants, if not already there

	UpdateOwned(ctx context.Context, id, hostID string, changes RoomChanges) (*entity.Room, error) // Applies changes if hostID hosts the room
	DeleteOwned(ctx context.Context, id, hostID string) error                                      // Deletes the room, its messages and participants, if hostID hosts it
}

// Implementation of the repository using gorm
type GormRoomRepository struct {
	db *gorm.DB
}

func NewGormRoomRepository(db *gorm.DB) RoomRepository {
	return &GormRoomRepository{db}
}

func (repo *GormRoomRepository) Create(ctx context.Context, room *entity.Room, topicName string) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := setTopic(ctx, tx, room, topicName); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(room).Error
	})
}

func (repo *GormRoomRepository) FindByID(ctx context.Context, id string) (*entity.Room, error) {
	var room entity.Room
	err := withRoomDetails(repo.db.WithContext(ctx)).Where("id = ?", id).First(&room).Error
	return found(&room, err)
}

func (repo *GormRoomRepository) ListMatching(ctx context.Context, query string) ([]*entity.Room, error) {
	var rooms []*entity.Room

	pattern := containsPattern(query)
	err := withRoomDetails(repo.db.WithContext(ctx)).
		Joins("LEFT JOIN topics ON topics.id = rooms.topic_id").
		Where(containsClause("topics.name")+" OR "+containsClause("rooms.name")+" OR "+containsClause("rooms.description"), pattern, pattern, pattern).
		Order("rooms.updated_at DESC").
		Order("rooms.created_at DESC").
		Find(&rooms).Error
	return rooms, err
}

func (repo *GormRoomRepository) ListByHost(ctx context.Context, hostID string) ([]*entity.Room, error) {
	var rooms []*entity.Room
	err := withRoomDetails(repo.db.WithContext(ctx)).
		Where("host_id = ?", hostID).
		Order("updated_at DESC").
		Order("created_at DESC").
		Find(&rooms).Error
	return rooms, err
}

// Inserts the membership row, doing nothing if it's already there. Works inside a caller's transaction
// when the repository was built on it.
func (repo *GormRoomRepository) AddParticipant(ctx context.Context, roomID, userID string) error {
	return repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.RoomParticipant{RoomID: roomID, UserID: userID, JoinedAt: time.Now()}).Error
}

func (repo *GormRoomRepository) UpdateOwned(ctx context.Context, id, hostID string, changes RoomChanges) (*entity.Room, error) {
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated := entity.Room{}
		if err := setTopic(ctx, tx, &updated, changes.TopicName); err != nil {
			return err
		}

		// Ownership and write are the same statement, a zero row count means either no room or someone else's
		result := tx.Model(&entity.Room{}).
			Where("id = ? AND host_id = ?", id, hostID).
			Updates(map[string]any{
				"name":        changes.Name,
				"description": changes.Description,
				"topic_id":    updated.TopicID,
				"updated_at":  time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ownershipError(tx, &entity.Room{}, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return repo.FindByID(ctx, id)
}

func (repo *GormRoomRepository) DeleteOwned(ctx context.Context, id, hostID string) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := func() *gorm.DB {
			return tx.Model(&entity.Room{}).Select("id").Where("id = ? AND host_id = ?", id, hostID)
		}

		if err := tx.Where("room_id IN (?)", owned()).Delete(&entity.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id IN (?)", owned()).Delete(&entity.RoomParticipant{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ? AND host_id = ?", id, hostID).Delete(&entity.Room{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ownershipError(tx, &entity.Room{}, id)
		}
		return nil
	})
}

// withRoomDetails preloads what every room page shows
func withRoomDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Host").Preload("Topic").Preload("Participants")
}

// setTopic points room at the topic called name, creating it on tx if needed
func setTopic(ctx context.Context, tx *gorm.DB, room *entity.Room, name string) error {
	if name == "" {
		room.TopicID = nil
		room.Topic = nil
		return nil
	}
	topic, err := NewGormTopicRepository(tx).GetOrCreate(ctx, name)
	if err != nil {
		return err
	}
	room.TopicID = &topic.ID
	room.Topic = topic
	return nil
}

// ownershipError tells apart, after a conditional write touched nothing, a missing record from someone else's
func ownershipError(tx *gorm.DB, model any, id string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrNotOwner
}
