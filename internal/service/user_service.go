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

	"studybud/internal/entity"
	"studybud/internal/nlog"
	"studybud/internal/repository"
)

// Everything the profile page shows
type Profile struct {
	User       *entity.User
	Rooms      []*entity.Room    // Rooms hosted by the user
	Messages   []*entity.Message // Messages written by the user
	Topics     []*entity.Topic
	TopicCount int64
}

// Service used to read identities
type UserService interface {
	GetProfile(ctx context.Context, id string) (*Profile, error) // Returns the user with its rooms and messages, and every topic
}

type userService struct {
	userRepository    repository.UserRepository
	topicRepository   repository.TopicRepository
	roomRepository    repository.RoomRepository
	messageRepository repository.MessageRepository
	logger            nlog.Logger
}

func NewUserService(userRepo repository.UserRepository, topicRepo repository.TopicRepository, roomRepo repository.RoomRepository, messageRepo repository.MessageRepository, logger nlog.Logger) UserService {
	return &userService{
		userRepository:    userRepo,
		topicRepository:   topicRepo,
		roomRepository:    roomRepo,
		messageRepository: messageRepo,
		logger:            logger,
	}
}

func (s *userService) GetProfile(ctx context.Context, id string) (*Profile, error) {
	user, err := s.userRepository.GetByID(ctx, id)
	if err != nil {
		return nil, translate("getting user", err)
	}
	rooms, err := s.roomRepository.ListByHost(ctx, id)
	if err != nil {
		return nil, translate("listing hosted rooms", err)
	}
	messages, err := s.messageRepository.ListByAuthor(ctx, id)
	if err != nil {
		return nil, translate("listing messages", err)
	}
	topics, err := s.topicRepository.GetAll(ctx)
	if err != nil {
		return nil, translate("listing topics", err)
	}
	topicCount, err := s.topicRepository.Count(ctx)
	if err != nil {
		return nil, translate("counting topics", err)
	}

	return &Profile{
		User:       user,
		Rooms:      rooms,
		Messages:   messages,
		Topics:     topics,
		TopicCount: topicCount,
	}, nil
}
