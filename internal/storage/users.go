package storage

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/models"
)

// SaveUser finds a user by Google ID; if found, it updates the profile,
// otherwise it creates a student account.
func (s *Store) SaveUser(ctx context.Context, userInfo models.User) (models.User, error) {
	var existingUser models.User

	result := s.conn(ctx).Where("google_id = ?", userInfo.GoogleID).First(&existingUser)

	if result.Error == nil {
		// Пользователь найден: обновляем профиль.
		// RoleID не трогаем, им управляет администратор.
		updates := map[string]interface{}{
			"email":   userInfo.Email,
			"name":    userInfo.Name,
			"picture": userInfo.Picture,
		}
		if err := s.conn(ctx).Model(&existingUser).Updates(updates).Error; err != nil {
			return models.User{}, mapError("save user", err)
		}
		return existingUser, nil

	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		// Новый пользователь получает роль студента
		userInfo.RoleID = models.RoleStudent

		if err := s.conn(ctx).Create(&userInfo).Error; err != nil {
			return models.User{}, mapError("save user", err)
		}
		return userInfo, nil

	} else {
		return models.User{}, mapError("save user", result.Error)
	}
}

// ActorForUser loads a user and describes them as an engine actor.
func (s *Store) ActorForUser(ctx context.Context, userID uint) (domain.Actor, error) {
	var user models.User
	if err := s.conn(ctx).Select("id", "name", "role_id").First(&user, userID).Error; err != nil {
		return domain.Actor{}, mapError("load user", err)
	}
	return domain.Actor{
		ID:   strconv.FormatUint(uint64(user.ID), 10),
		Name: user.Name,
		Role: models.DomainRole(user.RoleID),
	}, nil
}
