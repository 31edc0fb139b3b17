package engine

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/s/coursehub/internal/apperror"
	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/ident"
	"github.com/s/coursehub/internal/synccache"
)

// Progress is the completion percentage of completed out of total sections.
func Progress(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// ApplyToggle adds or removes index from completed and derives the new
// progress. Indices outside [0, total) are dropped.
func ApplyToggle(completed []int, index int, completing bool, total int) domain.ProgressUpdate {
	set := make(map[int]bool, len(completed)+1)
	for _, i := range completed {
		if i >= 0 && i < total {
			set[i] = true
		}
	}
	if completing {
		set[index] = true
	} else {
		delete(set, index)
	}

	sections := make([]int, 0, len(set))
	for i := range set {
		sections = append(sections, i)
	}
	sort.Ints(sections)

	progress := Progress(len(sections), total)
	status := domain.EnrollmentActive
	if progress == 100 {
		status = domain.EnrollmentCompleted
	}
	return domain.ProgressUpdate{CompletedSections: sections, Progress: progress, Status: status}
}

// ToggleSection marks one section of an enrolled course as done or not done
// and stores the derived progress. totalSections may be zero, in which case
// the course's own section count is used.
func (s *Service) ToggleSection(ctx context.Context, actor domain.Actor, courseID string, sectionIndex int, completing bool, totalSections int) (domain.Enrollment, error) {
	const op = "toggle section"
	if err := requireRole(op, actor, domain.RoleStudent); err != nil {
		return domain.Enrollment{}, err
	}
	if _, err := ident.RequireCourseID(courseID); err != nil {
		return domain.Enrollment{}, err
	}
	if s.enrollments == nil {
		return domain.Enrollment{}, fmt.Errorf("%s: enrollment store is not configured", op)
	}

	course, known := s.loadView(ctx, actor, false).find(courseID)
	if totalSections <= 0 && known {
		totalSections = course.TotalSections()
	}
	if totalSections <= 0 {
		return domain.Enrollment{}, apperror.Invalid(op, "course %s has no sections", courseID)
	}
	if sectionIndex < 0 || sectionIndex >= totalSections {
		return domain.Enrollment{}, apperror.Invalid(op, "section %d is out of range 0..%d", sectionIndex, totalSections-1)
	}

	s.invalidate()
	defer s.invalidate()

	enrollments, err := s.enrollments.FetchEnrollments(ctx, actor.ID)
	if err != nil {
		return domain.Enrollment{}, fmt.Errorf("%s: %w", op, err)
	}
	enrollment, ok := findEnrollment(enrollments, courseID, course, known)
	if !ok {
		return domain.Enrollment{}, apperror.NotFound(op, "you are not enrolled in course %s", courseID)
	}
	if enrollment.Status == domain.EnrollmentPending {
		return domain.Enrollment{}, apperror.Forbidden(op, "enrollment in course %s is not active yet", courseID)
	}

	update := ApplyToggle(enrollment.CompletedSections, sectionIndex, completing, totalSections)
	saved, err := s.enrollments.UpdateProgress(ctx, enrollment.CourseID, actor.ID, update)
	if err != nil {
		return domain.Enrollment{}, fmt.Errorf("%s: %w", op, err)
	}
	return saved, nil
}

// Enroll signs actor up for a published course. Free courses start active,
// paid ones wait for an administrator to confirm the payment.
func (s *Service) Enroll(ctx context.Context, actor domain.Actor, courseID string) (domain.Enrollment, error) {
	const op = "enroll"
	if err := requireRole(op, actor, domain.RoleStudent); err != nil {
		return domain.Enrollment{}, err
	}
	if _, err := ident.RequireCourseID(courseID); err != nil {
		return domain.Enrollment{}, err
	}
	if s.enrollments == nil {
		return domain.Enrollment{}, fmt.Errorf("%s: enrollment store is not configured", op)
	}

	course, ok := s.loadView(ctx, actor, false).find(courseID)
	if !ok {
		return domain.Enrollment{}, apperror.NotFound(op, "course %s not found", courseID)
	}

	status := domain.EnrollmentActive
	if course.Price != nil && *course.Price > 0 {
		status = domain.EnrollmentPending
	}

	s.invalidate()
	defer s.invalidate()

	saved, err := s.enrollments.CreateEnrollment(ctx, domain.Enrollment{
		CourseID:          course.StoreID(),
		StudentID:         actor.ID,
		Status:            status,
		CompletedSections: []int{},
		UpdatedAt:         s.now().UTC(),
	})
	if err != nil {
		return domain.Enrollment{}, fmt.Errorf("%s: %w", op, err)
	}

	s.info("student enrolled", "course", saved.CourseID, "student", actor.ID, "status", saved.Status)
	return saved, nil
}

// ActivateEnrollment confirms a pending enrollment. Active and completed
// enrollments are left alone.
func (s *Service) ActivateEnrollment(ctx context.Context, actor domain.Actor, courseID, studentID string) (domain.Enrollment, error) {
	const op = "activate enrollment"
	if err := requireRole(op, actor, domain.RoleAdmin); err != nil {
		return domain.Enrollment{}, err
	}
	if _, err := ident.RequireCourseID(courseID); err != nil {
		return domain.Enrollment{}, err
	}
	if studentID == "" {
		return domain.Enrollment{}, apperror.Invalid(op, "student id is required")
	}
	if s.enrollments == nil {
		return domain.Enrollment{}, fmt.Errorf("%s: enrollment store is not configured", op)
	}

	current, err := s.enrollments.FetchEnrollments(ctx, studentID)
	if err != nil {
		return domain.Enrollment{}, fmt.Errorf("%s: %w", op, err)
	}
	idx := slices.IndexFunc(current, func(e domain.Enrollment) bool {
		return ident.Equal(e.CourseID, courseID)
	})
	if idx < 0 {
		return domain.Enrollment{}, apperror.NotFound(op, "student %s is not enrolled in course %s", studentID, courseID)
	}
	if status := current[idx].Status; status != domain.EnrollmentPending {
		return domain.Enrollment{}, apperror.Conflict(op, "enrollment is %s, only pending enrollments can be activated", status)
	}

	s.invalidate()
	defer s.invalidate()

	saved, err := s.enrollments.SetEnrollmentStatus(ctx, courseID, studentID, domain.EnrollmentActive)
	if err != nil {
		return domain.Enrollment{}, fmt.Errorf("%s: %w", op, err)
	}
	return saved, nil
}

// ListEnrollments returns actor's enrollments through the sync cache.
func (s *Service) ListEnrollments(ctx context.Context, actor domain.Actor) ([]domain.Enrollment, error) {
	const op = "list enrollments"
	if err := requireRole(op, actor, domain.RoleStudent); err != nil {
		return nil, err
	}
	if s.enrollments == nil {
		return []domain.Enrollment{}, nil
	}

	list, err := s.progressCache.Load(ctx, synccache.For(actor), func(ctx context.Context) ([]domain.Enrollment, error) {
		fctx, cancel := s.bound(ctx)
		defer cancel()
		return s.enrollments.FetchEnrollments(fctx, actor.ID)
	})
	if err != nil {
		return nil, apperror.Upstream(op, "", err)
	}
	return list, nil
}

// CreateReview lets a student rate the instructor of a course they finished.
// One review per student and course.
func (s *Service) CreateReview(ctx context.Context, actor domain.Actor, courseID string, sub domain.ReviewSubmission) (domain.Review, error) {
	const op = "create review"
	if err := requireRole(op, actor, domain.RoleStudent); err != nil {
		return domain.Review{}, err
	}
	if _, err := ident.RequireCourseID(courseID); err != nil {
		return domain.Review{}, err
	}
	if err := s.check(op, &sub); err != nil {
		return domain.Review{}, err
	}
	if s.reviews == nil || s.enrollments == nil {
		return domain.Review{}, fmt.Errorf("%s: review or enrollment store is not configured", op)
	}

	v := s.loadView(ctx, actor, false)
	course, ok := v.find(courseID)
	if !ok {
		return domain.Review{}, apperror.NotFound(op, "course %s not found", courseID)
	}

	rctx, cancel := s.bound(ctx)
	inst := s.resolver.Resolve(rctx, course, v.assignments, v.teacherCourses)
	cancel()
	if inst == nil {
		return domain.Review{}, apperror.Invalid(op, "course %s has no instructor to review", courseID)
	}

	enrollments, err := s.enrollments.FetchEnrollments(ctx, actor.ID)
	if err != nil {
		return domain.Review{}, fmt.Errorf("%s: %w", op, err)
	}
	enrollment, ok := findEnrollment(enrollments, courseID, course, true)
	if !ok || enrollment.Progress < 100 {
		return domain.Review{}, apperror.Forbidden(op, "finish the course before reviewing it")
	}

	previous, err := s.reviews.FetchReviewsByStudent(ctx, actor.ID)
	if err != nil {
		return domain.Review{}, fmt.Errorf("%s: %w", op, err)
	}
	for _, r := range previous {
		if ident.MatchesRecord(r.CourseID, course.ID, course.DocumentID) {
			return domain.Review{}, apperror.Conflict(op, "you have already reviewed this course")
		}
	}

	saved, err := s.reviews.CreateReview(ctx, domain.Review{
		TeacherID:  inst.TeacherID,
		CourseID:   course.StoreID(),
		StudentID:  actor.ID,
		Rating:     sub.Rating,
		ReviewText: sub.ReviewText,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		return domain.Review{}, fmt.Errorf("%s: %w", op, err)
	}

	s.info("review created", "course", saved.CourseID, "teacher", saved.TeacherID, "student", actor.ID)
	return saved, nil
}

// findEnrollment matches by the requested id, or by either id form of the
// course when it is known.
func findEnrollment(list []domain.Enrollment, courseID string, course domain.Course, known bool) (domain.Enrollment, bool) {
	for _, e := range list {
		if ident.Equal(e.CourseID, courseID) {
			return e, true
		}
		if known && ident.MatchesRecord(e.CourseID, course.ID, course.DocumentID) {
			return e, true
		}
	}
	return domain.Enrollment{}, false
}
