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

// Result of browsing the home page.
type Listing struct {
	Query      string            // Query the listing was filtered with, possibly empty
	Rooms      []*entity.Room    // Rooms whose topic name, name or description contain Query
	RoomCount  int               // Number of rooms in Rooms
	Topics     []*entity.Topic   // Every topic, unfiltered
	TopicCount int64             // Number of topics in the system
	Messages   []*entity.Message // Messages of rooms whose topic name contains Query
}

type ListingService interface {
	Browse(ctx context.Context, q string) (*Listing, error) // Filters rooms and recent messages by q
	Topics(ctx context.Context) ([]*entity.Topic, error)    // Every topic, used to suggest one on the room form
}

type listingService struct {
	topicRepository   repository.TopicRepository
	roomRepository    repository.RoomRepository
	messageRepository repository.MessageRepository
	logger            nlog.Logger
}

func NewListingService(topicRepo repository.TopicRepository, roomRepo repository.RoomRepository, messageRepo repository.MessageRepository, logger nlog.Logger) ListingService {
	return &listingService{
		topicRepository:   topicRepo,
		roomRepository:    roomRepo,
		messageRepository: messageRepo,
		logger:            logger,
	}
}

func (s *listingService) Browse(ctx context.Context, q string) (*Listing, error) {
	rooms, err := s.roomRepository.ListMatching(ctx, q)
	if err != nil {
		return nil, translate("listing rooms", err)
	}
	topics, err := s.topicRepository.GetAll(ctx)
	if err != nil {
		return nil, translate("listing topics", err)
	}
	topicCount, err := s.topicRepository.Count(ctx)
	if err != nil {
		return nil, translate("counting topics", err)
	}
	messages, err := s.messageRepository.ListByTopicMatching(ctx, q)
	if err != nil {
		return nil, translate("listing messages", err)
	}

	return &Listing{
		Query:      q,
		Rooms:      rooms,
		RoomCount:  len(rooms),
		Topics:     topics,
		TopicCount: topicCount,
		Messages:   messages,
	}, nil
}

func (s *listingService) Topics(ctx context.Context) ([]*entity.Topic, error) {
	topics, err := s.topicRepository.GetAll(ctx)
	return topics, translate("listing topics", err)
}
