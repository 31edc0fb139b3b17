package models

import (
	"time"
)

// Review - Отзыв студента о преподавателе по конкретному курсу
type Review struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	TeacherID string `gorm:"index" json:"teacher_id"`
	CourseID  string `gorm:"size:24;uniqueIndex:idx_review_student_course" json:"course_id"`
	StudentID string `gorm:"uniqueIndex:idx_review_student_course" json:"student_id"`
	Rating    int    `json:"rating"` // 1-5
	Content   string `json:"content"`
}

// Message - Сообщение в чате студента и преподавателя
type Message struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CourseID string `gorm:"size:24" json:"course_id"`
	FromID   string `gorm:"index" json:"from_id"`
	FromRole string `gorm:"size:16" json:"from_role"`
	ToID     string `gorm:"index" json:"to_id"`
	Body     string `json:"body"`
	Read     bool   `json:"read"`
}
