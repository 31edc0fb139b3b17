package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/s/coursehub/internal/apperror"
	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/ports"
)

// Machine applies moderation decisions through the course store.
//
// Nothing is reported until the store accepts the transition, so a failed
// write leaves the course in its prior state.
type Machine struct {
	store  ports.CourseStore
	log    ports.DecisionLog
	now    func() time.Time
	logger *slog.Logger
}

// NewMachine wires the machine. log may be nil when no history is kept.
func NewMachine(store ports.CourseStore, log ports.DecisionLog, logger *slog.Logger) *Machine {
	return &Machine{
		store:  store,
		log:    log,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the decision timestamp source.
func (m *Machine) WithClock(now func() time.Time) *Machine {
	m.now = now
	return m
}

// Approve moves a pending course to approved.
func (m *Machine) Approve(ctx context.Context, course domain.Course, actor domain.Actor) (domain.ModerationDecision, error) {
	return m.Decide(ctx, course, actor, domain.DecisionApproved, "")
}

// Reject moves a pending course to rejected with reason.
func (m *Machine) Reject(ctx context.Context, course domain.Course, actor domain.Actor, reason string) (domain.ModerationDecision, error) {
	return m.Decide(ctx, course, actor, domain.DecisionRejected, reason)
}

// Decide validates and persists one transition and then appends it to the
// decision log.
func (m *Machine) Decide(ctx context.Context, course domain.Course, actor domain.Actor, decision domain.Decision, reason string) (domain.ModerationDecision, error) {
	if actor.Role != domain.RoleAdmin {
		return domain.ModerationDecision{}, apperror.Forbidden("moderate", "only administrators can moderate courses")
	}
	if m.store == nil {
		return domain.ModerationDecision{}, fmt.Errorf("moderate: course store is not configured")
	}
	if course.IsSeed() {
		return domain.ModerationDecision{}, apperror.NotFound("moderate", "course %s is not awaiting moderation", course.ID)
	}
	if _, err := Transition(course.Status, decision); err != nil {
		return domain.ModerationDecision{}, err
	}

	id := course.StoreID()
	var err error
	switch decision {
	case domain.DecisionApproved:
		reason = ""
		err = m.store.ApproveCourse(ctx, id, actor.ID, actor.Name)
	default:
		err = m.store.RejectCourse(ctx, id, actor.ID, actor.Name, reason)
	}
	if err != nil {
		return domain.ModerationDecision{}, fmt.Errorf("moderate course %s: %w", id, err)
	}

	record := domain.ModerationDecision{
		CourseID:      id,
		DecidedBy:     actor.ID,
		DecidedByName: actor.Name,
		Decision:      decision,
		Reason:        reason,
		DecidedAt:     m.now().UTC(),
	}

	// The course is already moderated at this point; a lost history entry is
	// logged rather than reported as a failed decision.
	if m.log != nil {
		if err := m.log.RecordDecision(ctx, record); err != nil {
			m.warn("record moderation decision", "course", id, "decision", decision, "error", err)
		}
	}

	m.info("course moderated", "course", id, "decision", decision, "by", actor.ID)
	return record, nil
}

func (m *Machine) info(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Info(msg, args...)
	}
}

func (m *Machine) warn(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Warn(msg, args...)
	}
}
