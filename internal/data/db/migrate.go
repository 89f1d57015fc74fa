package db

import (
	"gorm.io/gorm"

	types "github.com/yungbote/skilltrail-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Identity + auth
		&types.User{},
		&types.UserToken{},

		// Learning path aggregate
		&types.LearningPath{},
		&types.Skill{},
		&types.Project{},
	)
}
