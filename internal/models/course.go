package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/s/coursehub/internal/domain"
)

// Course (Курс): запись каталога в базе. Сиды живут в YAML, здесь только
// курсы преподавателей, админов и правки админов поверх сидов (LegacyID).
type Course struct {
	ID         uint           `gorm:"primarykey" json:"-"`
	DocumentID string         `gorm:"size:24;uniqueIndex" json:"document_id"`
	LegacyID   *int64         `gorm:"index" json:"legacy_id,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Title         string   `json:"title"`
	Description   string   `json:"description"`
	ImageURL      string   `json:"image_url"`
	Language      string   `json:"language"`
	Category      string   `gorm:"index" json:"category"`
	Level         string   `json:"level"`
	Price         *float64 `json:"price"`
	OriginalPrice *float64 `json:"original_price"`

	// Разделы курса с уроками, хранятся одним JSON-документом
	Sections datatypes.JSONType[[]domain.Section] `json:"sections"`

	Status          string `gorm:"size:16;index" json:"status"` // pending, approved, rejected
	RejectionReason string `json:"rejection_reason"`

	CreatedBy     string `gorm:"index" json:"created_by"` // "teacher:<id>" / "admin:<id>"
	CreatedByRole string `gorm:"size:16" json:"created_by_role"`
	AuthorID      string `gorm:"index" json:"author_id"`

	TeacherID   string `gorm:"index" json:"teacher_id"`
	TeacherName string `json:"teacher_name"`

	ModeratedBy     string     `json:"moderated_by"`
	ModeratedByName string     `json:"moderated_by_name"`
	ModeratedAt     *time.Time `json:"moderated_at"`
}

// InstructorAssignment: преподаватель, назначенный на чужой курс.
// На один курс одно назначение.
type InstructorAssignment struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CourseID    string    `gorm:"size:24;uniqueIndex" json:"course_id"`
	TeacherID   string    `gorm:"index" json:"teacher_id"`
	TeacherName string    `json:"teacher_name"`
	CreatedAt   time.Time `json:"created_at"`
}
