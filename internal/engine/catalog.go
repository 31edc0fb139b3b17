package engine

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/s/coursehub/internal/apperror"
	"github.com/s/coursehub/internal/catalog"
	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/ident"
	"github.com/s/coursehub/internal/moderation"
	"github.com/s/coursehub/internal/rating"
)

// resolveLimit caps concurrent instructor resolutions for one read.
const resolveLimit = 8

// Detail is a single course as one viewer may see it.
type Detail struct {
	Course       domain.Course           `json:"course"`
	Presentation moderation.Presentation `json:"presentation"`
	Instructor   *domain.Instructor      `json:"instructor"`
	Rating       rating.Summary          `json:"rating"`
}

// view is the unified catalog of one query.
type view struct {
	courses        []domain.Course
	assignments    []domain.InstructorAssignment
	teacherCourses []domain.Course
}

func (v view) find(id string) (domain.Course, bool) {
	return catalog.Find(v.courses, id)
}

// loadView pulls every source concurrently and merges them. A failed source
// counts as empty so the catalog still renders with partial data.
func (s *Service) loadView(ctx context.Context, actor domain.Actor, includePending bool) view {
	var (
		seed, stored, own []domain.Course
		assignments       []domain.InstructorAssignment
	)

	g, gctx := errgroup.WithContext(ctx)

	if s.seed != nil {
		g.Go(func() error {
			fctx, cancel := s.bound(gctx)
			defer cancel()
			list, err := s.seed.SeedCourses(fctx)
			if err != nil {
				s.warn("seed catalog unavailable", "error", err)
				return nil
			}
			seed = list
			return nil
		})
	}

	if s.courses != nil {
		g.Go(func() error {
			fctx, cancel := s.bound(gctx)
			defer cancel()
			list, err := s.courses.FetchAllCourses(fctx, includePending)
			if err != nil {
				s.warn("course store unavailable", "error", err)
				return nil
			}
			stored = list
			return nil
		})

		if actor.Role == domain.RoleTeacher && actor.ID != "" {
			g.Go(func() error {
				fctx, cancel := s.bound(gctx)
				defer cancel()
				list, err := s.courses.FetchCoursesByTeacher(fctx, actor.ID)
				if err != nil {
					s.warn("teacher courses unavailable", "teacher", actor.ID, "error", err)
					return nil
				}
				own = list
				return nil
			})
		}
	}

	if s.assignments != nil {
		g.Go(func() error {
			fctx, cancel := s.bound(gctx)
			defer cancel()
			list, err := s.assignments.FetchAssignments(fctx)
			if err != nil {
				s.warn("instructor assignments unavailable", "error", err)
				return nil
			}
			assignments = list
			return nil
		})
	}

	_ = g.Wait()

	teacher, admin := catalog.SplitByRole(stored)
	teacher = append(teacher, own...)

	merged := catalog.Merge(seed, teacher, admin)
	s.debug("catalog merged", "seed", len(seed), "teacher", len(teacher), "admin", len(admin), "merged", len(merged))

	return view{courses: merged, assignments: assignments, teacherCourses: teacher}
}

// enrich fills instructor and rating fields. Instructors are resolved
// concurrently, then each distinct teacher's reviews are fetched once.
func (s *Service) enrich(ctx context.Context, v view, courses []domain.Course) ([]domain.Course, []*domain.Instructor) {
	instructors := make([]*domain.Instructor, len(courses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveLimit)
	for i := range courses {
		i := i
		g.Go(func() error {
			rctx, cancel := s.bound(gctx)
			defer cancel()
			instructors[i] = s.resolver.Resolve(rctx, courses[i], v.assignments, v.teacherCourses)
			return nil
		})
	}
	_ = g.Wait()

	teacherIDs := make([]string, 0, len(instructors))
	for _, inst := range instructors {
		if inst != nil {
			teacherIDs = append(teacherIDs, inst.TeacherID)
		}
	}
	pools := s.aggregator.Fetch(ctx, teacherIDs)

	out := make([]domain.Course, len(courses))
	for i, c := range courses {
		c.TeacherID, c.TeacherName = "", ""
		if inst := instructors[i]; inst != nil {
			c.TeacherID, c.TeacherName = inst.TeacherID, inst.TeacherName
		}
		summary := rating.ForInstructor(c, instructors[i], pools)
		c.Rating, c.RatingCount = summary.Average, summary.Count
		out[i] = c
	}
	return out, instructors
}

// ListVisibleCourses returns the catalog as actor may browse it: approved and
// seed courses, plus actor's own courses in any status.
func (s *Service) ListVisibleCourses(ctx context.Context, actor domain.Actor) ([]domain.Course, error) {
	v := s.loadView(ctx, actor, actor.Role != domain.RolePublic)

	visible := make([]domain.Course, 0, len(v.courses))
	for _, c := range v.courses {
		if moderation.Listed(c, actor) {
			visible = append(visible, c)
		}
	}

	out, _ := s.enrich(ctx, v, visible)
	return out, nil
}

// GetCourseDetail returns one course with its presentation for actor. Courses
// actor may not see are reported as not found.
func (s *Service) GetCourseDetail(ctx context.Context, id string, actor domain.Actor) (Detail, error) {
	const op = "get course"
	if _, err := ident.RequireCourseID(id); err != nil {
		return Detail{}, err
	}

	v := s.loadView(ctx, actor, actor.Role != domain.RolePublic)
	course, ok := v.find(id)
	if !ok {
		return Detail{}, apperror.NotFound(op, "course %s not found", id)
	}

	presentation := moderation.Visibility(course, actor)
	if presentation == moderation.Hidden {
		return Detail{}, apperror.NotFound(op, "course %s not found", id)
	}

	enriched, instructors := s.enrich(ctx, v, []domain.Course{course})
	return Detail{
		Course:       enriched[0],
		Presentation: presentation,
		Instructor:   instructors[0],
		Rating:       rating.Summary{Average: enriched[0].Rating, Count: enriched[0].RatingCount},
	}, nil
}

// GetCourseRating computes a course's rating from its instructor's review pool.
func (s *Service) GetCourseRating(ctx context.Context, id string) (rating.Summary, error) {
	if _, err := ident.RequireCourseID(id); err != nil {
		return rating.Summary{}, err
	}

	v := s.loadView(ctx, domain.Public, false)
	course, ok := v.find(id)
	if !ok {
		return rating.Summary{}, apperror.NotFound("course rating", "course %s not found", id)
	}

	rctx, cancel := s.bound(ctx)
	inst := s.resolver.Resolve(rctx, course, v.assignments, v.teacherCourses)
	cancel()
	if inst == nil {
		return rating.Summary{}, nil
	}

	pools := s.aggregator.Fetch(ctx, []string{inst.TeacherID})
	return rating.ForInstructor(course, inst, pools), nil
}

// ModerationQueue lists courses awaiting a decision, oldest first.
func (s *Service) ModerationQueue(ctx context.Context, actor domain.Actor) ([]domain.Course, error) {
	if err := requireRole("moderation queue", actor, domain.RoleAdmin); err != nil {
		return nil, err
	}

	v := s.loadView(ctx, actor, true)
	queue := make([]domain.Course, 0)
	for _, c := range v.courses {
		if moderation.Queued(c) {
			queue = append(queue, c)
		}
	}
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].CreatedAt.Before(queue[j].CreatedAt)
	})

	out, _ := s.enrich(ctx, v, queue)
	return out, nil
}

// TeacherCourses lists the courses actor authored, in every status.
func (s *Service) TeacherCourses(ctx context.Context, actor domain.Actor) ([]domain.Course, error) {
	if err := requireRole("teacher courses", actor, domain.RoleTeacher); err != nil {
		return nil, err
	}

	v := s.loadView(ctx, actor, true)
	own := make([]domain.Course, 0)
	for _, c := range v.courses {
		if moderation.IsOwner(c, actor) {
			own = append(own, c)
		}
	}

	out, _ := s.enrich(ctx, v, own)
	return out, nil
}
