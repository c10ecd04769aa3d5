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
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"studybud/internal/entity"
	"studybud/internal/metrics"
	"studybud/internal/nlog"
	"studybud/internal/repository"

	"github.com/google/uuid"
)

// Longest room or topic name accepted
const MaxNameLength = 200

// Fields a user can submit for a room. Host and participants are never part of it.
type RoomForm struct {
	Topic       string
	Name        string
	Description string
}

// Returns the form with surrounding spaces removed, which is how it's stored
func (f RoomForm) normalized() RoomForm {
	return RoomForm{
		Topic:       strings.TrimSpace(f.Topic),
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
	}
}

func (f RoomForm) validate() error {
	verr := &ValidationError{}
	for field, value := range map[string]string{"name": f.Name, "topic": f.Topic} {
		switch {
		case value == "":
			verr.add(field, "This field is required.")
		case utf8.RuneCountInString(value) > MaxNameLength:
			verr.add(field, "Ensure this value has at most 200 characters.")
		}
	}
	return verr.orNil()
}

func (f RoomForm) description() *string {
	if f.Description == "" {
		return nil
	}
	d := f.Description
	return &d
}

// Form pre-filled with what the room currently holds
func RoomFormOf(room *entity.Room) RoomForm {
	return RoomForm{
		Topic:       room.TopicName(),
		Name:        room.Name,
		Description: room.DescriptionText(),
	}
}

// Everything the room page shows
type RoomDetail struct {
	Room         *entity.Room
	Messages     []*entity.Message
	Participants []*entity.User
}

// Service used to read rooms and to change them on behalf of their host
type RoomService interface {
	GetRoom(ctx context.Context, id string) (*RoomDetail, error)                                       // Returns the room with its participants and messages
	GetOwnedRoom(ctx context.Context, actor *entity.User, id string) (*entity.Room, error)             // Returns the room only if actor hosts it
	PostMessage(ctx context.Context, actor *entity.User, roomID, body string) (*entity.Message, error) // Appends a message, making actor a participant

	CreateRoom(ctx context.Context, actor *entity.User, form RoomForm) (*entity.Room, error)            // Creates a room hosted by actor
	UpdateRoom(ctx context.Context, actor *entity.User, id string, form RoomForm) (*entity.Room, error) // Edits name, description and topic of a room hosted by actor

	PrepareRoomDeletion(ctx context.Context, actor *entity.User, id string) (*PendingConfirmation, error) // First step of a deletion, after the ownership check
	DeleteRoom(ctx context.Context, actor *entity.User, pending *PendingConfirmation) error               // Commits a deletion prepared by PrepareRoomDeletion
}

type roomService struct {
	roomRepository    repository.RoomRepository
	messageRepository repository.MessageRepository
	metrics           *metrics.Metrics
	logger            nlog.Logger
}

func NewRoomService(roomRepo repository.RoomRepository, messageRepo repository.MessageRepository, m *metrics.Metrics, logger nlog.Logger) RoomService {
	return &roomService{
		roomRepository:    roomRepo,
		messageRepository: messageRepo,
		metrics:           m,
		logger:            logger,
	}
}

func (s *roomService) Logf(format string, v ...any) {
	s.logger.Logf(format, v...)
}

func (s *roomService) GetRoom(ctx context.Context, id string) (*RoomDetail, error) {
	room, err := s.roomRepository.FindByID(ctx, id)
	if err != nil {
		return nil, translate("getting room", err)
	}
	messages, err := s.messageRepository.ListByRoom(ctx, id)
	if err != nil {
		return nil, translate("listing room messages", err)
	}
	return &RoomDetail{Room: room, Messages: messages, Participants: room.Participants}, nil
}

func (s *roomService) GetOwnedRoom(ctx context.Context, actor *entity.User, id string) (*entity.Room, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	room, err := s.roomRepository.FindByID(ctx, id)
	if err != nil {
		return nil, translate("getting room", err)
	}
	if !room.IsHostedBy(actor) {
		s.refused(actor, "room", id)
		return nil, ErrForbidden
	}
	return room, nil
}

func (s *roomService) PostMessage(ctx context.Context, actor *entity.User, roomID, body string) (*entity.Message, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &ValidationError{Fields: map[string]string{"body": "This field is required."}}
	}

	if _, err := s.roomRepository.FindByID(ctx, roomID); err != nil {
		return nil, translate("posting message", err)
	}

	now := time.Now()
	msg := &entity.Message{
		ID:        uuid.New().String(),
		AuthorID:  actor.ID,
		RoomID:    roomID,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.messageRepository.Create(ctx, msg); err != nil {
		return nil, translate("posting message", err)
	}

	s.metrics.MessagePosted()
	s.Logf("Message {%s} posted in room {%s} by {%s}", msg.ID, roomID, actor.Username)
	return msg, nil
}

func (s *roomService) CreateRoom(ctx context.Context, actor *entity.User, form RoomForm) (*entity.Room, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	form = form.normalized()
	if err := form.validate(); err != nil {
		return nil, err
	}

	hostID := actor.ID
	now := time.Now()
	room := &entity.Room{
		ID:          uuid.New().String(),
		HostID:      &hostID,
		Name:        form.Name,
		Description: form.description(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.roomRepository.Create(ctx, room, form.Topic); err != nil {
		return nil, translate("creating room", err)
	}

	s.metrics.RoomCreated()
	s.Logf("Room {%s, %s} created by {%s}", room.ID, room.Name, actor.Username)
	return room, nil
}

func (s *roomService) UpdateRoom(ctx context.Context, actor *entity.User, id string, form RoomForm) (*entity.Room, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	form = form.normalized()
	if verr := form.validate(); verr != nil {
		// Someone who may not edit the room learns nothing about the form
		if _, err := s.GetOwnedRoom(ctx, actor, id); err != nil {
			return nil, err
		}
		return nil, verr
	}

	room, err := s.roomRepository.UpdateOwned(ctx, id, actor.ID, repository.RoomChanges{
		Name:        form.Name,
		Description: form.description(),
		TopicName:   form.Topic,
	})
	if err != nil {
		err = translate("updating room", err)
		if errors.Is(err, ErrForbidden) {
			s.refused(actor, "room", id)
		}
		return nil, err
	}

	s.metrics.RoomUpdated()
	s.Logf("Room {%s} updated by {%s}", id, actor.Username)
	return room, nil
}

func (s *roomService) PrepareRoomDeletion(ctx context.Context, actor *entity.User, id string) (*PendingConfirmation, error) {
	room, err := s.GetOwnedRoom(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return newPendingConfirmation(KindRoom, room.ID, room.Name), nil
}

func (s *roomService) DeleteRoom(ctx context.Context, actor *entity.User, pending *PendingConfirmation) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if pending == nil || pending.ResourceKind != KindRoom {
		return errors.New("deleting room: no pending room deletion")
	}

	if err := s.roomRepository.DeleteOwned(ctx, pending.ResourceID, actor.ID); err != nil {
		err = translate("deleting room", err)
		if errors.Is(err, ErrForbidden) {
			s.refused(actor, "room", pending.ResourceID)
		}
		return err
	}

	s.metrics.RoomDeleted()
	s.Logf("Room {%s} deleted by {%s}", pending.ResourceID, actor.Username)
	return nil
}

func (s *roomService) refused(actor *entity.User, kind, id string) {
	s.metrics.Forbidden()
	s.Logf("WARN: Refused {%s} on %s {%s}", actor.Username, kind, id)
}
