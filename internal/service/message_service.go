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

	"studybud/internal/entity"
	"studybud/internal/metrics"
	"studybud/internal/nlog"
	"studybud/internal/repository"
)

// Service used to remove messages on behalf of their author
type MessageService interface {
	PrepareMessageDeletion(ctx context.Context, actor *entity.User, id string) (*PendingConfirmation, error) // First step of a deletion, after the authorship check
	DeleteMessage(ctx context.Context, actor *entity.User, pending *PendingConfirmation) error               // Commits a deletion prepared by PrepareMessageDeletion
}

type messageService struct {
	messageRepository repository.MessageRepository
	metrics           *metrics.Metrics
	logger            nlog.Logger
}

func NewMessageService(messageRepo repository.MessageRepository, m *metrics.Metrics, logger nlog.Logger) MessageService {
	return &messageService{
		messageRepository: messageRepo,
		metrics:           m,
		logger:            logger,
	}
}

func (s *messageService) Logf(format string, v ...any) {
	s.logger.Logf(format, v...)
}

func (s *messageService) PrepareMessageDeletion(ctx context.Context, actor *entity.User, id string) (*PendingConfirmation, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	msg, err := s.messageRepository.FindByID(ctx, id)
	if err != nil {
		return nil, translate("getting message", err)
	}
	if !msg.IsAuthoredBy(actor) {
		s.refused(actor, id)
		return nil, ErrForbidden
	}
	return newPendingConfirmation(KindMessage, msg.ID, msg.Preview()), nil
}

func (s *messageService) DeleteMessage(ctx context.Context, actor *entity.User, pending *PendingConfirmation) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if pending == nil || pending.ResourceKind != KindMessage {
		return errors.New("deleting message: no pending message deletion")
	}

	if err := s.messageRepository.DeleteOwned(ctx, pending.ResourceID, actor.ID); err != nil {
		err = translate("deleting message", err)
		if errors.Is(err, ErrForbidden) {
			s.refused(actor, pending.ResourceID)
		}
		return err
	}

	s.metrics.MessageDeleted()
	s.Logf("Message {%s} deleted by {%s}", pending.ResourceID, actor.Username)
	return nil
}

func (s *messageService) refused(actor *entity.User, id string) {
	s.metrics.Forbidden()
	s.Logf("WARN: Refused {%s} on message {%s}", actor.Username, id)
}
