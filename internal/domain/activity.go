package domain

import "time"

// Review is a student's rating of a teacher for one completed course.
type Review struct {
	ID         string    `json:"id"`
	TeacherID  string    `json:"teacher_id"`
	CourseID   string    `json:"course_id"`
	StudentID  string    `json:"student_id"`
	Rating     int       `json:"rating"`
	ReviewText string    `json:"review_text"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReviewSubmission is the payload of a new review.
type ReviewSubmission struct {
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	ReviewText string `json:"review_text" validate:"max=4000"`
}

// EnrollmentStatus is the lifecycle of a student's enrollment.
type EnrollmentStatus string

const (
	EnrollmentPending   EnrollmentStatus = "pending"
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

// Enrollment tracks a student's progress through one course.
type Enrollment struct {
	CourseID          string           `json:"course_id"`
	StudentID         string           `json:"student_id"`
	Status            EnrollmentStatus `json:"status"`
	CompletedSections []int            `json:"completed_sections"`
	Progress          int              `json:"progress"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Decision is an administrator's moderation verdict.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// ModerationDecision is an immutable record of one moderation transition.
type ModerationDecision struct {
	CourseID      string    `json:"course_id"`
	DecidedBy     string    `json:"decided_by"`
	DecidedByName string    `json:"decided_by_name"`
	Decision      Decision  `json:"decision"`
	Reason        string    `json:"reason,omitempty"`
	DecidedAt     time.Time `json:"decided_at"`
}

// Message is a chat message between a student and a teacher.
type Message struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id,omitempty"`
	FromID    string    `json:"from_id"`
	FromRole  Role      `json:"from_role"`
	ToID      string    `json:"to_id"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageSubmission is the payload of a new message.
type MessageSubmission struct {
	ToID     string `json:"to_id" validate:"required"`
	CourseID string `json:"course_id"`
	Body     string `json:"body" validate:"required,max=4000"`
}

// ProgressUpdate is the derived progress written back for one (course, student) pair.
type ProgressUpdate struct {
	CompletedSections []int
	Progress          int
	Status            EnrollmentStatus
}
