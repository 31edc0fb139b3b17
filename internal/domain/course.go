package domain

import "time"

// Role identifies the kind of actor calling the engine.
type Role string

const (
	RolePublic  Role = "public"
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Actor is the caller of an engine operation.
type Actor struct {
	ID   string
	Name string
	Role Role
}

// Public is the anonymous actor.
var Public = Actor{Role: RolePublic}

// Status is the moderation state of a submitted course.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Item is a timed entry inside a section.
type Item struct {
	Title           string `json:"title" yaml:"title" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" yaml:"durationMinutes" validate:"gte=0"`
}

// Section is an ordered module of a course.
type Section struct {
	Title string `json:"title" yaml:"title" validate:"required"`
	Items []Item `json:"items" yaml:"items" validate:"dive"`
}

// Course is one course record from any source. ID is either a legacy integer
// (seed catalog) or a 24-hex document id; DocumentID is always the store id.
type Course struct {
	ID              string    `json:"id"`
	DocumentID      string    `json:"document_id,omitempty"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	ImageURL        string    `json:"image_url,omitempty"`
	Language        string    `json:"language,omitempty"`
	Category        string    `json:"category,omitempty"`
	Level           string    `json:"level,omitempty"`
	Price           *float64  `json:"price,omitempty"`
	OriginalPrice   *float64  `json:"original_price,omitempty"`
	Sections        []Section `json:"sections,omitempty"`
	Status          Status    `json:"status,omitempty"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedBy       string    `json:"created_by,omitempty"`
	CreatedByRole   Role      `json:"created_by_role,omitempty"`
	TeacherID       string    `json:"teacher_id,omitempty"`
	TeacherName     string    `json:"teacher_name,omitempty"`
	Rating          float64   `json:"rating"`
	RatingCount     int       `json:"rating_count"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}

// IsSeed reports whether the course comes from the static catalog.
func (c Course) IsSeed() bool {
	return c.CreatedBy == ""
}

// EffectiveStatus treats statusless seed courses as approved.
func (c Course) EffectiveStatus() Status {
	if c.IsSeed() || c.Status == "" {
		return StatusApproved
	}
	return c.Status
}

// StoreID is the id the persisted catalog knows the course by.
func (c Course) StoreID() string {
	if c.DocumentID != "" {
		return c.DocumentID
	}
	return c.ID
}

// TotalSections is the number of sections progress is measured against.
func (c Course) TotalSections() int {
	return len(c.Sections)
}

// CourseSubmission is the payload of a course create or edit.
type CourseSubmission struct {
	ID            string    `json:"id"`
	Title         string    `json:"title" validate:"required,min=3"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"image_url" validate:"omitempty,url"`
	Language      string    `json:"language"`
	Category      string    `json:"category" validate:"required"`
	Level         string    `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price         *float64  `json:"price" validate:"omitempty,gte=0"`
	OriginalPrice *float64  `json:"original_price" validate:"omitempty,gte=0"`
	Sections      []Section `json:"sections" validate:"required,min=1,dive"`
	TeacherID     string    `json:"teacher_id"`
	TeacherName   string    `json:"teacher_name"`
}

// CourseEdit is a partial update. Zero values leave the stored field alone.
type CourseEdit struct {
	Title         string    `json:"title" validate:"omitempty,min=3"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"image_url" validate:"omitempty,url"`
	Language      string    `json:"language"`
	Category      string    `json:"category"`
	Level         string    `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price         *float64  `json:"price" validate:"omitempty,gte=0"`
	OriginalPrice *float64  `json:"original_price" validate:"omitempty,gte=0"`
	Sections      []Section `json:"sections" validate:"omitempty,dive"`
	// Resubmit explicitly sends an owner's edited course back to the moderation queue.
	Resubmit bool `json:"resubmit"`
}

// Instructor is the resolved teacher of record.
type Instructor struct {
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
}

// InstructorAssignment links a teacher to a course they teach but did not author.
type InstructorAssignment struct {
	CourseID    string    `json:"course_id"`
	TeacherID   string    `json:"teacher_id"`
	TeacherName string    `json:"teacher_name"`
	CreatedAt   time.Time `json:"created_at"`
}
