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

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// This repository is used to read topics. Topics are created implicitly, by name, when a room references them.
type TopicRepository interface {
	GetOrCreate(ctx context.Context, name string) (*entity.Topic, error) // Retrieves the topic with exactly the given name, creating it when missing
	GetAll(ctx context.Context) ([]*entity.Topic, error)                 // Retrieves every topic, sorted by name
	Count(ctx context.Context) (int64, error)                            // Number of topics in the system

	Delete(ctx context.Context, id string) error // Deletes a topic, leaving its rooms without one
}

// Implementation of the repository using gorm
type GormTopicRepository struct {
	db *gorm.DB
}

func NewGormTopicRepository(db *gorm.DB) TopicRepository {
	return &GormTopicRepository{db}
}

func (repo *GormTopicRepository) GetOrCreate(ctx context.Context, name string) (*entity.Topic, error) {
	var topic entity.Topic
	err := repo.db.WithContext(ctx).
		Where(entity.Topic{Name: name}).
		Attrs(entity.Topic{ID: uuid.New().String(), CreatedAt: time.Now()}).
		FirstOrCreate(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (repo *GormTopicRepository) GetAll(ctx context.Context) ([]*entity.Topic, error) {
	var topics []*entity.Topic
	err := repo.db.WithContext(ctx).Order("name ASC").Find(&topics).Error
	return topics, err
}

func (repo *GormTopicRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&entity.Topic{}).Count(&count).Error
	return count, err
}

func (repo *GormTopicRepository) Delete(ctx context.Context, id string) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// UpdateColumn leaves updated_at alone, losing a topic is not an edit of the room
		if err := tx.Model(&entity.Room{}).Where("topic_id = ?", id).UpdateColumn("topic_id", nil).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&entity.Topic{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
