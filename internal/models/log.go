package models

import (
	"time"
)

// ModerationLog хранит историю решений модерации. Записи только добавляются.
type ModerationLog struct {
	ID            uint      `gorm:"primarykey"`
	CourseID      string    `gorm:"size:24;index"`
	DecidedBy     string    `json:"decided_by"`
	DecidedByName string    `json:"decided_by_name"`
	Decision      string    `gorm:"size:16" json:"decision"` // "approved", "rejected"
	Reason        string    `json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
}
