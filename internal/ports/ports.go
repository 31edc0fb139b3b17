package ports

import (
	"context"

	"github.com/s/coursehub/internal/domain"
)

// CourseStore is the persisted catalog.
type CourseStore interface {
	FetchAllCourses(ctx context.Context, includePending bool) ([]domain.Course, error)
	FetchCoursesByTeacher(ctx context.Context, teacherID string) ([]domain.Course, error)
	FetchCourse(ctx context.Context, id string) (domain.Course, error)
	// PersistCourse creates the course when it has no document id and updates it otherwise.
	PersistCourse(ctx context.Context, course domain.Course) (domain.Course, error)
	DeleteCourse(ctx context.Context, id string) error
	// ApproveCourse and RejectCourse only act on pending courses and report
	// apperror.ErrNotFound for anything else.
	ApproveCourse(ctx context.Context, id, actorID, actorName string) error
	RejectCourse(ctx context.Context, id, actorID, actorName, reason string) error
}

// InstructorLookup asks a trusted backend who teaches a course.
// A course without an instructor of record yields apperror.ErrNotFound.
type InstructorLookup interface {
	FetchInstructorForCourse(ctx context.Context, courseID string) (domain.Instructor, error)
}

// AssignmentStore keeps the "assign me as instructor" relation.
type AssignmentStore interface {
	FetchAssignments(ctx context.Context) ([]domain.InstructorAssignment, error)
	SaveAssignment(ctx context.Context, assignment domain.InstructorAssignment) error
	DeleteAssignmentsForCourse(ctx context.Context, courseID string) error
}

// ReviewStore holds the teacher-scoped review pool.
type ReviewStore interface {
	FetchReviewsForTeacher(ctx context.Context, teacherID string) ([]domain.Review, error)
	FetchReviewsByStudent(ctx context.Context, studentID string) ([]domain.Review, error)
	CreateReview(ctx context.Context, review domain.Review) (domain.Review, error)
}

// EnrollmentStore persists student progress.
type EnrollmentStore interface {
	FetchEnrollments(ctx context.Context, studentID string) ([]domain.Enrollment, error)
	UpdateProgress(ctx context.Context, courseID, studentID string, update domain.ProgressUpdate) (domain.Enrollment, error)
	// CreateEnrollment fails with ErrConflict when the student is already enrolled.
	CreateEnrollment(ctx context.Context, enrollment domain.Enrollment) (domain.Enrollment, error)
	SetEnrollmentStatus(ctx context.Context, courseID, studentID string, status domain.EnrollmentStatus) (domain.Enrollment, error)
}

// DecisionLog is the append-only moderation history.
type DecisionLog interface {
	RecordDecision(ctx context.Context, decision domain.ModerationDecision) error
	FetchDecisions(ctx context.Context, courseID string) ([]domain.ModerationDecision, error)
}

// MessageStore carries student/teacher chat messages.
type MessageStore interface {
	FetchMessages(ctx context.Context, actorID string) ([]domain.Message, error)
	SendMessage(ctx context.Context, msg domain.Message) (domain.Message, error)
	MarkRead(ctx context.Context, messageID, actorID string) error
}

// SeedCatalog serves the static legacy catalog.
type SeedCatalog interface {
	SeedCourses(ctx context.Context) ([]domain.Course, error)
}
