// Package attribution decides who teaches a course.
package attribution

import (
	"context"
	"errors"
	"log/slog"

	"github.com/s/coursehub/internal/apperror"
	"github.com/s/coursehub/internal/catalog"
	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/ident"
	"github.com/s/coursehub/internal/ports"
)

// Input is everything a strategy may look at.
type Input struct {
	Course         domain.Course
	Assignments    []domain.InstructorAssignment
	TeacherCourses []domain.Course
}

// Strategy proposes an instructor, or reports false to defer to the next one.
type Strategy struct {
	Name    string
	Resolve func(ctx context.Context, in Input) (domain.Instructor, bool)
}

// Resolver runs strategies in rank order; the first success wins.
type Resolver struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewResolver builds the standard ranking: trusted lookup, instructor
// assignment, the course's own teacher field, then teacher authorship.
// lookup may be nil.
func NewResolver(lookup ports.InstructorLookup, logger *slog.Logger) *Resolver {
	return NewResolverWith(logger,
		TrustedLookup(lookup, logger),
		FromAssignment(),
		FromCourseField(),
		FromTeacherAuthorship(),
	)
}

// NewResolverWith builds a resolver over an explicit ranking.
func NewResolverWith(logger *slog.Logger, strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies, logger: logger}
}

// Resolve returns the instructor of record, or nil when none applies.
// Courses published by administrators never resolve to their author.
func (r *Resolver) Resolve(ctx context.Context, course domain.Course, assignments []domain.InstructorAssignment, teacherCourses []domain.Course) *domain.Instructor {
	in := Input{Course: course, Assignments: assignments, TeacherCourses: teacherCourses}
	for _, s := range r.strategies {
		inst, ok := s.Resolve(ctx, in)
		if !ok || inst.TeacherID == "" {
			continue
		}
		if r.logger != nil {
			r.logger.Debug("instructor resolved", "course", course.ID, "strategy", s.Name, "teacher", inst.TeacherID)
		}
		return &inst
	}
	return nil
}

// TrustedLookup asks the backend's instructor-of-record service. Lookup
// failures defer to the next strategy.
func TrustedLookup(lookup ports.InstructorLookup, logger *slog.Logger) Strategy {
	return Strategy{
		Name: "trusted_lookup",
		Resolve: func(ctx context.Context, in Input) (domain.Instructor, bool) {
			if lookup == nil {
				return domain.Instructor{}, false
			}
			inst, err := lookup.FetchInstructorForCourse(ctx, in.Course.StoreID())
			if err != nil {
				if logger != nil && !errors.Is(err, apperror.ErrNotFound) {
					logger.Warn("instructor lookup failed", "course", in.Course.ID, "error", err)
				}
				return domain.Instructor{}, false
			}
			return inst, inst.TeacherID != ""
		},
	}
}

// FromAssignment uses the "assign me as instructor" relation.
func FromAssignment() Strategy {
	return Strategy{
		Name: "assignment",
		Resolve: func(_ context.Context, in Input) (domain.Instructor, bool) {
			for _, a := range in.Assignments {
				if ident.MatchesRecord(a.CourseID, in.Course.ID, in.Course.DocumentID) {
					return domain.Instructor{TeacherID: a.TeacherID, TeacherName: a.TeacherName}, true
				}
			}
			return domain.Instructor{}, false
		},
	}
}

// FromCourseField uses an explicit teacher id stored on the course.
func FromCourseField() Strategy {
	return Strategy{
		Name: "course_teacher",
		Resolve: func(_ context.Context, in Input) (domain.Instructor, bool) {
			if in.Course.TeacherID == "" {
				return domain.Instructor{}, false
			}
			return domain.Instructor{TeacherID: in.Course.TeacherID, TeacherName: in.Course.TeacherName}, true
		},
	}
}

// FromTeacherAuthorship falls back to the author of a teacher-created course.
// A course also counts as teacher-created when it shows up in the teacher's own
// course listing.
func FromTeacherAuthorship() Strategy {
	return Strategy{
		Name: "teacher_author",
		Resolve: func(_ context.Context, in Input) (domain.Instructor, bool) {
			c := in.Course
			if c.IsSeed() || c.CreatedByRole == domain.RoleAdmin {
				return domain.Instructor{}, false
			}
			if role, _ := ident.SplitRolePrefix(c.CreatedBy); role != "" && role != string(domain.RoleTeacher) {
				return domain.Instructor{}, false
			}
			if !catalog.TeacherAuthored(c) && !listedByTeacher(c, in.TeacherCourses) {
				return domain.Instructor{}, false
			}
			return domain.Instructor{TeacherID: ident.OwnerID(c.CreatedBy), TeacherName: c.TeacherName}, true
		},
	}
}

func listedByTeacher(c domain.Course, teacherCourses []domain.Course) bool {
	for _, tc := range teacherCourses {
		if ident.SameIdentity(c.ID, c.DocumentID, tc.ID, tc.DocumentID) {
			return true
		}
	}
	return false
}
