package engine

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/s/coursehub/internal/apperror"
	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/ident"
	"github.com/s/coursehub/internal/ports"
)

// memStore implements every store port in memory.
type memStore struct {
	mu sync.Mutex

	courses     []domain.Course
	assignments []domain.InstructorAssignment
	reviews     []domain.Review
	enrollments []domain.Enrollment
	decisions   []domain.ModerationDecision
	messages    []domain.Message

	failCourseReads error
	failApprove     error
	failMessages    error
	messageFetches  int
	reviewFetches   map[string]int
	nextID          int
}

var (
	_ ports.CourseStore     = (*memStore)(nil)
	_ ports.AssignmentStore = (*memStore)(nil)
	_ ports.ReviewStore     = (*memStore)(nil)
	_ ports.EnrollmentStore = (*memStore)(nil)
	_ ports.DecisionLog     = (*memStore)(nil)
	_ ports.MessageStore    = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{reviewFetches: map[string]int{}}
}

func (m *memStore) id() string {
	m.nextID++
	return strconv.Itoa(m.nextID)
}

func (m *memStore) FetchAllCourses(_ context.Context, includePending bool) ([]domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCourseReads != nil {
		return nil, m.failCourseReads
	}
	var out []domain.Course
	for _, c := range m.courses {
		if includePending || c.Status == domain.StatusApproved {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) FetchCoursesByTeacher(_ context.Context, teacherID string) ([]domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCourseReads != nil {
		return nil, m.failCourseReads
	}
	var out []domain.Course
	for _, c := range m.courses {
		if ident.SameOwner(c.CreatedBy, teacherID) && c.CreatedByRole == domain.RoleTeacher {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) FetchCourse(_ context.Context, id string) (domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.courses {
		if ident.MatchesRecord(id, c.ID, c.DocumentID) {
			return c, nil
		}
	}
	return domain.Course{}, apperror.NotFound("fetch course", "course %s not found", id)
}

func (m *memStore) PersistCourse(_ context.Context, course domain.Course) (domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if course.DocumentID == "" {
		course.DocumentID = ident.NewDocumentID()
		if course.ID == "" {
			course.ID = course.DocumentID
		}
		course.CreatedAt = time.Now().UTC()
		m.courses = append(m.courses, course)
		return course, nil
	}
	for i, c := range m.courses {
		if c.DocumentID == course.DocumentID {
			m.courses[i] = course
			return course, nil
		}
	}
	return domain.Course{}, apperror.NotFound("persist course", "course %s not found", course.DocumentID)
}

func (m *memStore) DeleteCourse(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.courses {
		if ident.MatchesRecord(id, c.ID, c.DocumentID) {
			m.courses = append(m.courses[:i], m.courses[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("delete course", "course %s not found", id)
}

func (m *memStore) moderate(id string, status domain.Status, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failApprove != nil {
		return m.failApprove
	}
	for i, c := range m.courses {
		if ident.MatchesRecord(id, c.ID, c.DocumentID) && c.Status == domain.StatusPending {
			m.courses[i].Status = status
			m.courses[i].RejectionReason = reason
			return nil
		}
	}
	return apperror.NotFound("moderate", "no pending course %s", id)
}

func (m *memStore) ApproveCourse(_ context.Context, id, _, _ string) error {
	return m.moderate(id, domain.StatusApproved, "")
}

func (m *memStore) RejectCourse(_ context.Context, id, _, _, reason string) error {
	return m.moderate(id, domain.StatusRejected, reason)
}

func (m *memStore) FetchAssignments(context.Context) ([]domain.InstructorAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.InstructorAssignment(nil), m.assignments...), nil
}

func (m *memStore) SaveAssignment(_ context.Context, a domain.InstructorAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.assignments {
		if ident.Equal(existing.CourseID, a.CourseID) {
			return apperror.Conflict("save assignment", "course already has an instructor")
		}
	}
	m.assignments = append(m.assignments, a)
	return nil
}

func (m *memStore) DeleteAssignmentsForCourse(_ context.Context, courseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.assignments[:0]
	for _, a := range m.assignments {
		if !ident.Equal(a.CourseID, courseID) {
			kept = append(kept, a)
		}
	}
	m.assignments = kept
	return nil
}

func (m *memStore) FetchReviewsForTeacher(_ context.Context, teacherID string) ([]domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviewFetches[teacherID]++
	var out []domain.Review
	for _, r := range m.reviews {
		if ident.Equal(r.TeacherID, teacherID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) FetchReviewsByStudent(_ context.Context, studentID string) ([]domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Review
	for _, r := range m.reviews {
		if ident.Equal(r.StudentID, studentID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) CreateReview(_ context.Context, r domain.Review) (domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.id()
	m.reviews = append(m.reviews, r)
	return r, nil
}

func (m *memStore) FetchEnrollments(_ context.Context, studentID string) ([]domain.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Enrollment
	for _, e := range m.enrollments {
		if ident.Equal(e.StudentID, studentID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) UpdateProgress(_ context.Context, courseID, studentID string, u domain.ProgressUpdate) (domain.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.enrollments {
		if ident.Equal(e.CourseID, courseID) && ident.Equal(e.StudentID, studentID) {
			m.enrollments[i].CompletedSections = u.CompletedSections
			m.enrollments[i].Progress = u.Progress
			m.enrollments[i].Status = u.Status
			return m.enrollments[i], nil
		}
	}
	return domain.Enrollment{}, apperror.NotFound("update progress", "enrollment not found")
}

func (m *memStore) CreateEnrollment(_ context.Context, e domain.Enrollment) (domain.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.enrollments {
		if ident.Equal(existing.CourseID, e.CourseID) && ident.Equal(existing.StudentID, e.StudentID) {
			return domain.Enrollment{}, apperror.Conflict("create enrollment", "already enrolled")
		}
	}
	m.enrollments = append(m.enrollments, e)
	return e, nil
}

func (m *memStore) SetEnrollmentStatus(_ context.Context, courseID, studentID string, status domain.EnrollmentStatus) (domain.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.enrollments {
		if ident.Equal(e.CourseID, courseID) && ident.Equal(e.StudentID, studentID) {
			m.enrollments[i].Status = status
			return m.enrollments[i], nil
		}
	}
	return domain.Enrollment{}, apperror.NotFound("set enrollment status", "enrollment not found")
}

func (m *memStore) RecordDecision(_ context.Context, d domain.ModerationDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, d)
	return nil
}

func (m *memStore) FetchDecisions(_ context.Context, courseID string) ([]domain.ModerationDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ModerationDecision
	for _, d := range m.decisions {
		if ident.Equal(d.CourseID, courseID) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memStore) FetchMessages(_ context.Context, actorID string) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messageFetches++
	if m.failMessages != nil {
		return nil, m.failMessages
	}
	var out []domain.Message
	for _, msg := range m.messages {
		if ident.Equal(msg.FromID, actorID) || ident.Equal(msg.ToID, actorID) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memStore) SendMessage(_ context.Context, msg domain.Message) (domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = m.id()
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *memStore) MarkRead(_ context.Context, messageID, actorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, msg := range m.messages {
		if msg.ID == messageID && ident.Equal(msg.ToID, actorID) {
			m.messages[i].Read = true
			return nil
		}
	}
	return apperror.NotFound("mark read", "message %s not found", messageID)
}
