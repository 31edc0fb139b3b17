package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Enrollment (Заявка на курс / Прогресс студента)
type Enrollment struct {
	gorm.Model
	StudentID string `gorm:"uniqueIndex:idx_enrollment_student_course" json:"student_id"`
	CourseID  string `gorm:"size:24;uniqueIndex:idx_enrollment_student_course" json:"course_id"`
	Status    string `gorm:"size:16" json:"status"` // pending, active, completed

	// Индексы пройденных разделов
	CompletedSections pq.Int64Array `gorm:"type:integer[]" json:"completed_sections"`
	Progress          int           `json:"progress"`
}
