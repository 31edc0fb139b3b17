package engine

import (
	"context"
	"fmt"

	"github.com/s/coursehub/internal/apperror"
	"github.com/s/coursehub/internal/catalog"
	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/ident"
	"github.com/s/coursehub/internal/moderation"
)

// creatorOf is the role-prefixed creator string stored on new courses.
func creatorOf(actor domain.Actor) string {
	return string(actor.Role) + ":" + actor.ID
}

// CreateCourse stores a new course. Teacher courses start pending, admin
// courses are published immediately.
func (s *Service) CreateCourse(ctx context.Context, actor domain.Actor, sub domain.CourseSubmission) (domain.Course, error) {
	const op = "create course"
	if err := requireRole(op, actor, domain.RoleTeacher, domain.RoleAdmin); err != nil {
		return domain.Course{}, err
	}
	if err := s.check(op, &sub); err != nil {
		return domain.Course{}, err
	}
	if err := s.requireStore(op); err != nil {
		return domain.Course{}, err
	}

	course := domain.Course{
		Title:         sub.Title,
		Description:   sub.Description,
		ImageURL:      sub.ImageURL,
		Language:      sub.Language,
		Category:      sub.Category,
		Level:         sub.Level,
		Price:         sub.Price,
		OriginalPrice: sub.OriginalPrice,
		Sections:      sub.Sections,
		Status:        moderation.InitialStatus(actor.Role),
		CreatedBy:     creatorOf(actor),
		CreatedByRole: actor.Role,
	}

	switch actor.Role {
	case domain.RoleTeacher:
		if sub.ID != "" {
			return domain.Course{}, apperror.Invalid(op, "course ids are assigned by the catalog")
		}
		// Authorship already attributes the course; only the display name is kept.
		course.TeacherName = actor.Name
	case domain.RoleAdmin:
		course.TeacherID, course.TeacherName = sub.TeacherID, sub.TeacherName
		if sub.ID != "" {
			n := ident.Classify(sub.ID)
			if n.Kind != ident.KindLegacy {
				return domain.Course{}, apperror.Invalid(op, "only catalog numbers can be reused as course ids")
			}
			course.ID = n.Value
		}
	}

	saved, err := s.courses.PersistCourse(ctx, course)
	if err != nil {
		return domain.Course{}, fmt.Errorf("%s: %w", op, err)
	}

	s.info("course created", "course", saved.StoreID(), "by", actor.ID, "role", actor.Role, "status", saved.Status)
	return saved, nil
}

// UpdateCourse applies a partial edit. Authors may edit their own courses and
// administrators any course; an administrator editing a seed course stores an
// override that the merge lays over the seed record. An author's edit keeps
// the moderation status unless edit.Resubmit asks for a new review.
func (s *Service) UpdateCourse(ctx context.Context, actor domain.Actor, courseID string, edit domain.CourseEdit) (domain.Course, error) {
	const op = "update course"
	if err := requireRole(op, actor, domain.RoleTeacher, domain.RoleAdmin); err != nil {
		return domain.Course{}, err
	}
	if _, err := ident.RequireCourseID(courseID); err != nil {
		return domain.Course{}, err
	}
	if err := s.check(op, &edit); err != nil {
		return domain.Course{}, err
	}
	if err := s.requireStore(op); err != nil {
		return domain.Course{}, err
	}

	v := s.loadView(ctx, actor, true)
	current, ok := v.find(courseID)
	if !ok {
		return domain.Course{}, apperror.NotFound(op, "course %s not found", courseID)
	}

	owner := moderation.IsOwner(current, actor)
	if actor.Role != domain.RoleAdmin && !owner {
		return domain.Course{}, apperror.Forbidden(op, "only the author or an administrator can edit this course")
	}

	patch := domain.Course{
		Title:         edit.Title,
		Description:   edit.Description,
		ImageURL:      edit.ImageURL,
		Language:      edit.Language,
		Category:      edit.Category,
		Level:         edit.Level,
		Price:         edit.Price,
		OriginalPrice: edit.OriginalPrice,
		Sections:      edit.Sections,
	}

	var next domain.Course
	if current.IsSeed() && current.DocumentID == "" {
		next = catalog.Override(domain.Course{
			ID:            current.ID,
			CreatedBy:     creatorOf(actor),
			CreatedByRole: actor.Role,
			Status:        domain.StatusApproved,
		}, patch)
	} else {
		stored, err := s.courses.FetchCourse(ctx, current.StoreID())
		if err != nil {
			return domain.Course{}, fmt.Errorf("%s: %w", op, err)
		}
		next = catalog.Override(stored, patch)
		if owner && actor.Role == domain.RoleTeacher {
			next.Status = moderation.Resubmit(stored.Status, edit.Resubmit)
			if edit.Resubmit {
				next.RejectionReason = ""
			}
		}
	}
	next.UpdatedAt = s.now().UTC()

	saved, err := s.courses.PersistCourse(ctx, next)
	if err != nil {
		return domain.Course{}, fmt.Errorf("%s: %w", op, err)
	}

	s.info("course updated", "course", saved.StoreID(), "by", actor.ID, "status", saved.Status)
	return saved, nil
}

// DeleteCourse removes a stored course and every instructor assignment that
// references it.
func (s *Service) DeleteCourse(ctx context.Context, actor domain.Actor, courseID string) error {
	const op = "delete course"
	if err := requireRole(op, actor, domain.RoleTeacher, domain.RoleAdmin); err != nil {
		return err
	}
	if _, err := ident.RequireCourseID(courseID); err != nil {
		return err
	}
	if err := s.requireStore(op); err != nil {
		return err
	}

	course, err := s.courses.FetchCourse(ctx, courseID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if actor.Role != domain.RoleAdmin && !moderation.IsOwner(course, actor) {
		return apperror.Forbidden(op, "only the author or an administrator can delete this course")
	}

	if err := s.courses.DeleteCourse(ctx, course.StoreID()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.assignments != nil {
		for _, id := range s.orphanedIDs(ctx, course) {
			if err := s.assignments.DeleteAssignmentsForCourse(ctx, id); err != nil {
				return fmt.Errorf("%s: remove assignments: %w", op, err)
			}
		}
	}

	s.info("course deleted", "course", course.StoreID(), "by", actor.ID)
	return nil
}

// orphanedIDs lists the ids whose assignments no longer point at any course
// once c is gone. A stored override of a seed course leaves the seed serving
// its legacy id, so that id keeps its assignments.
func (s *Service) orphanedIDs(ctx context.Context, c domain.Course) []string {
	ids := courseIDs(c)
	if s.seed == nil || ident.Classify(c.ID).Kind != ident.KindLegacy {
		return ids
	}

	fctx, cancel := s.bound(ctx)
	defer cancel()
	seed, err := s.seed.SeedCourses(fctx)
	if err != nil {
		s.warn("seed catalog unavailable, keeping legacy assignments", "course", c.ID, "error", err)
		return ids[1:]
	}
	if _, ok := catalog.Find(seed, c.ID); !ok {
		return ids
	}
	return ids[1:]
}

// courseIDs lists every distinct id form a course is known by.
func courseIDs(c domain.Course) []string {
	ids := []string{c.ID}
	if c.DocumentID != "" && !ident.Equal(c.DocumentID, c.ID) {
		ids = append(ids, c.DocumentID)
	}
	return ids
}
