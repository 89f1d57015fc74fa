package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/skilltrail-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedLearningPath(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, active bool) *types.LearningPath {
	tb.Helper()
	lp := &types.LearningPath{
		ID:                uuid.New(),
		UserID:            userID,
		JobTitle:          "Backend Engineer",
		Experience:        types.ExperienceBeginner,
		ExistingSkills:    datatypes.JSON([]byte(`[]`)),
		IsActive:          active,
		GenerationPayload: datatypes.JSON([]byte(`{}`)),
	}
	if err := tx.WithContext(ctx).Create(lp).Error; err != nil {
		tb.Fatalf("seed learning path: %v", err)
	}
	return lp
}

func SeedSkill(tb testing.TB, ctx context.Context, tx *gorm.DB, pathID uuid.UUID, position int, name string) *types.Skill {
	tb.Helper()
	s := &types.Skill{
		ID:             uuid.New(),
		LearningPathID: pathID,
		Position:       position,
		SkillName:      name,
		Status:         types.SkillStatusLearning,
		LearningTopics: datatypes.JSON([]byte(`[]`)),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed skill: %v", err)
	}
	return s
}

func SeedProject(tb testing.TB, ctx context.Context, tx *gorm.DB, skillID uuid.UUID, position int, status types.ProjectStatus) *types.Project {
	tb.Helper()
	p := &types.Project{
		ID:             uuid.New(),
		SkillID:        skillID,
		Position:       position,
		Title:          "project",
		Difficulty:     types.DifficultyBeginner,
		EstimatedHours: types.EstimatedHoursDefault,
		Status:         status,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed project: %v", err)
	}
	return p
}
