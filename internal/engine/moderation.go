package engine

import (
	"context"
	"fmt"

	"github.com/s/coursehub/internal/apperror"
	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/ident"
	"github.com/s/coursehub/internal/moderation"
)

// Moderate applies an administrator's decision to a pending course. The
// decision is returned only once the store has accepted it.
func (s *Service) Moderate(ctx context.Context, actor domain.Actor, courseID string, decision domain.Decision, reason string) (domain.ModerationDecision, error) {
	const op = "moderate"
	if err := requireRole(op, actor, domain.RoleAdmin); err != nil {
		return domain.ModerationDecision{}, err
	}
	if decision != domain.DecisionApproved && decision != domain.DecisionRejected {
		return domain.ModerationDecision{}, apperror.Invalid(op, "decision must be %q or %q", domain.DecisionApproved, domain.DecisionRejected)
	}
	if _, err := ident.RequireCourseID(courseID); err != nil {
		return domain.ModerationDecision{}, err
	}
	if err := s.requireStore(op); err != nil {
		return domain.ModerationDecision{}, err
	}

	course, err := s.courses.FetchCourse(ctx, courseID)
	if err != nil {
		return domain.ModerationDecision{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.machine.Decide(ctx, course, actor, decision, reason)
}

// ModerationHistory returns the recorded decisions for a course.
func (s *Service) ModerationHistory(ctx context.Context, actor domain.Actor, courseID string) ([]domain.ModerationDecision, error) {
	const op = "moderation history"
	if err := requireRole(op, actor, domain.RoleAdmin, domain.RoleTeacher); err != nil {
		return nil, err
	}
	if _, err := ident.RequireCourseID(courseID); err != nil {
		return nil, err
	}
	if s.decisions == nil {
		return []domain.ModerationDecision{}, nil
	}
	if err := s.requireStore(op); err != nil {
		return nil, err
	}

	course, err := s.courses.FetchCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if actor.Role == domain.RoleTeacher && !moderation.IsOwner(course, actor) {
		return nil, apperror.Forbidden(op, "only the author can see the moderation history of this course")
	}

	decisions, err := s.decisions.FetchDecisions(ctx, course.StoreID())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return decisions, nil
}

// AssignInstructor records actor as the teacher of an approved course they
// did not author. A course holds at most one assignment.
func (s *Service) AssignInstructor(ctx context.Context, actor domain.Actor, courseID string) (domain.InstructorAssignment, error) {
	const op = "assign instructor"
	if err := requireRole(op, actor, domain.RoleTeacher); err != nil {
		return domain.InstructorAssignment{}, err
	}
	if _, err := ident.RequireCourseID(courseID); err != nil {
		return domain.InstructorAssignment{}, err
	}
	if s.assignments == nil {
		return domain.InstructorAssignment{}, fmt.Errorf("%s: assignment store is not configured", op)
	}

	v := s.loadView(ctx, actor, true)
	course, ok := v.find(courseID)
	if !ok {
		return domain.InstructorAssignment{}, apperror.NotFound(op, "course %s not found", courseID)
	}
	if course.EffectiveStatus() != domain.StatusApproved {
		return domain.InstructorAssignment{}, apperror.Invalid(op, "only approved courses accept instructors")
	}
	if moderation.IsOwner(course, actor) {
		return domain.InstructorAssignment{}, apperror.Conflict(op, "you already teach this course as its author")
	}

	// The write path re-reads assignments instead of trusting the degraded view.
	existing, err := s.assignments.FetchAssignments(ctx)
	if err != nil {
		return domain.InstructorAssignment{}, fmt.Errorf("%s: %w", op, err)
	}
	for _, a := range existing {
		if ident.MatchesRecord(a.CourseID, course.ID, course.DocumentID) {
			return domain.InstructorAssignment{}, apperror.Conflict(op, "course already has an instructor")
		}
	}

	assignment := domain.InstructorAssignment{
		CourseID:    course.StoreID(),
		TeacherID:   actor.ID,
		TeacherName: actor.Name,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.assignments.SaveAssignment(ctx, assignment); err != nil {
		return domain.InstructorAssignment{}, fmt.Errorf("%s: %w", op, err)
	}

	s.info("instructor assigned", "course", assignment.CourseID, "teacher", actor.ID)
	return assignment, nil
}
