package models

import "github.com/s/coursehub/internal/domain"

type Role struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex"`

	Users []User
}

// Константы для RoleID, используемые по всему приложению.
const (
	RoleGuest   uint = 0
	RoleStudent uint = 1
	RoleAdmin   uint = 2
	RoleTeacher uint = 3
)

// DomainRole переводит RoleID в роль движка.
func DomainRole(roleID uint) domain.Role {
	switch roleID {
	case RoleStudent:
		return domain.RoleStudent
	case RoleAdmin:
		return domain.RoleAdmin
	case RoleTeacher:
		return domain.RoleTeacher
	default:
		return domain.RolePublic
	}
}

// RoleIDOf: обратное преобразование.
func RoleIDOf(role domain.Role) uint {
	switch role {
	case domain.RoleStudent:
		return RoleStudent
	case domain.RoleAdmin:
		return RoleAdmin
	case domain.RoleTeacher:
		return RoleTeacher
	default:
		return RoleGuest
	}
}
