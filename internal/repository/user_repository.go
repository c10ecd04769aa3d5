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
	"errors"
	"fmt"

	"studybud/internal/entity"

	"gorm.io/gorm"
)

// This repository is used to manipulate the identities of the site.
// Creating a user also stores its secret, which is only ever read back by GetForLogin.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error // Inserts a user together with its secret

	GetForLogin(ctx context.Context, username string) (*entity.User, error)   // Retrieves the user with the given username, WITH its hashed password
	GetByID(ctx context.Context, id string) (*entity.User, error)             // Retrieves the user with the given id
	GetByUsername(ctx context.Context, username string) (*entity.User, error) // Retrieves the user with the given username

	Delete(ctx context.Context, id string) error // Deletes the user, its rooms and its messages
}

// Implementation of the repository using gorm
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db}
}

func (repo *GormUserRepository) Create(ctx context.Context, user *entity.User) error {
	err := repo.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (repo *GormUserRepository) GetForLogin(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	err := repo.db.WithContext(ctx).Preload("Secret").Where("username = ?", username).First(&user).Error
	return found(&user, err)
}

func (repo *GormUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := repo.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	return found(&user, err)
}

func (repo *GormUserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	err := repo.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	return found(&user, err)
}

func (repo *GormUserRepository) Delete(ctx context.Context, id string) error {

	// Rooms hosted by the user go away with it, and so do the messages posted in them.
	// Participation rows are removed explicitly so that the join table never references a missing row.

	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hosted := func() *gorm.DB {
			return tx.Model(&entity.Room{}).Select("id").Where("host_id = ?", id)
		}

		if err := tx.Where("author_id = ? OR room_id IN (?)", id, hosted()).Delete(&entity.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? OR room_id IN (?)", id, hosted()).Delete(&entity.RoomParticipant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("host_id = ?", id).Delete(&entity.Room{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&entity.UserSecret{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&entity.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// found translates gorm's not-found error into ErrNotFound, returning the record otherwise
func found[T any](record *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}
