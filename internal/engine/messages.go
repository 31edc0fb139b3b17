package engine

import (
	"context"
	"fmt"

	"github.com/s/coursehub/internal/apperror"
	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/ident"
	"github.com/s/coursehub/internal/synccache"
)

// ListMessages returns actor's conversation through the sync cache. When the
// store fails, the last known messages are served.
func (s *Service) ListMessages(ctx context.Context, actor domain.Actor) ([]domain.Message, error) {
	const op = "list messages"
	if err := requireRole(op, actor, domain.RoleStudent, domain.RoleTeacher); err != nil {
		return nil, err
	}
	if s.messages == nil {
		return []domain.Message{}, nil
	}

	list, err := s.messageCache.Load(ctx, synccache.For(actor), func(ctx context.Context) ([]domain.Message, error) {
		fctx, cancel := s.bound(ctx)
		defer cancel()
		return s.messages.FetchMessages(fctx, actor.ID)
	})
	if err != nil {
		return nil, apperror.Upstream(op, "", err)
	}
	return list, nil
}

// SendMessage delivers a message from actor.
func (s *Service) SendMessage(ctx context.Context, actor domain.Actor, sub domain.MessageSubmission) (domain.Message, error) {
	const op = "send message"
	if err := requireRole(op, actor, domain.RoleStudent, domain.RoleTeacher); err != nil {
		return domain.Message{}, err
	}
	if err := s.check(op, &sub); err != nil {
		return domain.Message{}, err
	}
	if sub.CourseID != "" {
		if _, err := ident.RequireCourseID(sub.CourseID); err != nil {
			return domain.Message{}, err
		}
	}
	if ident.Equal(sub.ToID, actor.ID) {
		return domain.Message{}, apperror.Invalid(op, "cannot send a message to yourself")
	}
	if s.messages == nil {
		return domain.Message{}, fmt.Errorf("%s: message store is not configured", op)
	}

	s.invalidate()
	defer s.invalidate()

	saved, err := s.messages.SendMessage(ctx, domain.Message{
		CourseID:  sub.CourseID,
		FromID:    actor.ID,
		FromRole:  actor.Role,
		ToID:      sub.ToID,
		Body:      sub.Body,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("%s: %w", op, err)
	}
	return saved, nil
}

// MarkMessageRead marks a message addressed to actor as read.
func (s *Service) MarkMessageRead(ctx context.Context, actor domain.Actor, messageID string) error {
	const op = "mark message read"
	if err := requireRole(op, actor, domain.RoleStudent, domain.RoleTeacher); err != nil {
		return err
	}
	if messageID == "" {
		return apperror.Invalid(op, "message id is required")
	}
	if s.messages == nil {
		return fmt.Errorf("%s: message store is not configured", op)
	}

	s.invalidate()
	defer s.invalidate()

	if err := s.messages.MarkRead(ctx, messageID, actor.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
