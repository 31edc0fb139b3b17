package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/s/coursehub/internal/models"
)

func TestMigrateAndSeedAreRepeatable(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), Options())
	require.NoError(t, err)

	require.NoError(t, AutoMigrate(db))
	require.NoError(t, Seed(db))
	require.NoError(t, Seed(db))

	var roles []models.Role
	require.NoError(t, db.Order("id").Find(&roles).Error)
	require.Len(t, roles, 3)
	assert.Equal(t, "Student", roles[0].Name)
	assert.Equal(t, models.RoleTeacher, roles[2].ID)
}
