package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/skilltrail-backend/internal/data/repos/learning"
	"github.com/yungbote/skilltrail-backend/internal/data/repos/testutil"
	types "github.com/yungbote/skilltrail-backend/internal/domain"
	pkgerrors "github.com/yungbote/skilltrail-backend/internal/pkg/errors"
)

func newTestService(t *testing.T) (*learningPathService, *gorm.DB) {
	t.Helper()
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	svc := NewLearningPathService(
		gdb,
		log,
		learning.NewLearningPathRepo(gdb, log),
		learning.NewSkillRepo(gdb, log),
		learning.NewProjectRepo(gdb, log),
		nil,
		fallbackPlanDefaults(),
	).(*learningPathService)
	return svc, gdb
}

func testUser(t *testing.T, gdb *gorm.DB) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, gdb, fmt.Sprintf("svc-%s@test.local", uuid.NewString()))
	t.Cleanup(func() {
		var paths []*types.LearningPath
		_ = gdb.Where("user_id = ?", u.ID).Find(&paths).Error
		for _, p := range paths {
			var skills []*types.Skill
			_ = gdb.Where("learning_path_id = ?", p.ID).Find(&skills).Error
			for _, s := range skills {
				_ = gdb.Unscoped().Where("skill_id = ?", s.ID).Delete(&types.Project{}).Error
			}
			_ = gdb.Unscoped().Where("learning_path_id = ?", p.ID).Delete(&types.Skill{}).Error
		}
		_ = gdb.Unscoped().Where("user_id = ?", u.ID).Delete(&types.LearningPath{}).Error
		_ = gdb.Unscoped().Where("id = ?", u.ID).Delete(&types.User{}).Error
	})
	return u.ID
}

func basicPlanInput() CreatePlanInput {
	return CreatePlanInput{
		JobTitle:   "Backend Engineer",
		TargetRole: "Senior Backend Engineer",
		Experience: "beginner",
		Skills: []PlanSkillInput{
			{SkillName: "Go", Category: "language", LearningTopics: []string{"concurrency"}},
			{SkillName: "PostgreSQL", Category: "database"},
		},
	}
}

func TestCreatePlanDeactivatesPrevious(t *testing.T) {
	svc, gdb := newTestService(t)
	userID := testUser(t, gdb)
	ctx := context.Background()

	first, err := svc.CreatePlan(ctx, userID, basicPlanInput())
	if err != nil {
		t.Fatalf("first CreatePlan: %v", err)
	}
	if !first.IsActive {
		t.Fatal("first plan not active")
	}
	if first.EstimatedCompletionTime != "6-9 months" {
		t.Fatalf("completion time default: got %q", first.EstimatedCompletionTime)
	}

	second, err := svc.CreatePlan(ctx, userID, basicPlanInput())
	if err != nil {
		t.Fatalf("second CreatePlan: %v", err)
	}

	var active []*types.LearningPath
	if err := gdb.Where("user_id = ? AND is_active = ?", userID, true).Find(&active).Error; err != nil {
		t.Fatalf("query active: %v", err)
	}
	if len(active) != 1 || active[0].ID != second.ID {
		t.Fatalf("expected only the second plan active, got %d rows", len(active))
	}

	var prior types.LearningPath
	if err := gdb.Where("id = ?", first.ID).First(&prior).Error; err != nil {
		t.Fatalf("first plan should still exist: %v", err)
	}
	if prior.IsActive {
		t.Fatal("first plan should be deactivated, not deleted")
	}
}

func TestCreatePlanRejectsInvalidInput(t *testing.T) {
	svc, gdb := newTestService(t)
	userID := testUser(t, gdb)
	ctx := context.Background()

	if _, err := svc.CreatePlan(ctx, userID, basicPlanInput()); err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}

	bad := basicPlanInput()
	bad.Experience = "wizard"
	if _, err := svc.CreatePlan(ctx, userID, bad); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	// A rejected plan must not have touched the existing active one.
	if _, err := svc.GetActivePlan(ctx, userID); err != nil {
		t.Fatalf("active plan lost after rejected create: %v", err)
	}
}

func TestGetActivePlanNotFound(t *testing.T) {
	svc, gdb := newTestService(t)
	userID := testUser(t, gdb)

	_, err := svc.GetActivePlan(context.Background(), userID)
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeactivatePlan(t *testing.T) {
	svc, gdb := newTestService(t)
	userID := testUser(t, gdb)
	ctx := context.Background()

	if err := svc.DeactivatePlan(ctx, userID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound with no plan, got %v", err)
	}

	if _, err := svc.CreatePlan(ctx, userID, basicPlanInput()); err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if err := svc.DeactivatePlan(ctx, userID); err != nil {
		t.Fatalf("DeactivatePlan: %v", err)
	}
	if err := svc.DeactivatePlan(ctx, userID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after deactivation, got %v", err)
	}
}

func TestAssignProjectsReplacesAndDefaults(t *testing.T) {
	svc, gdb := newTestService(t)
	userID := testUser(t, gdb)
	ctx := context.Background()

	plan, err := svc.CreatePlan(ctx, userID, basicPlanInput())
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	skillID := plan.Skills[0].ID

	first, err := svc.AssignProjects(ctx, userID, skillID, []ProjectInput{
		{Title: "Old project"},
	})
	if err != nil {
		t.Fatalf("first AssignProjects: %v", err)
	}
	oldProjectID := first.Skill.Projects[0].ID

	second, err := svc.AssignProjects(ctx, userID, skillID, []ProjectInput{
		{Title: "CLI tool", Difficulty: "Advanced", EstimatedHours: 40},
		{Title: "REST API"},
	})
	if err != nil {
		t.Fatalf("second AssignProjects: %v", err)
	}
	if len(second.Skill.Projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(second.Skill.Projects))
	}
	if second.Skill.ProgressPercentage != 0 {
		t.Fatalf("replaced set should reset progress, got %d", second.Skill.ProgressPercentage)
	}

	p0 := second.Skill.Projects[0]
	if p0.Difficulty != types.DifficultyAdvanced || p0.EstimatedHours != 40 {
		t.Fatalf("explicit fields not honored: %+v", p0)
	}
	p1 := second.Skill.Projects[1]
	if p1.Difficulty != types.DifficultyBeginner || p1.EstimatedHours != types.EstimatedHoursDefault {
		t.Fatalf("defaults not applied: %+v", p1)
	}

	var gone []*types.Project
	if err := gdb.Unscoped().Where("id = ?", oldProjectID).Find(&gone).Error; err != nil {
		t.Fatalf("query old project: %v", err)
	}
	if len(gone) != 0 {
		t.Fatal("old project row should be hard-deleted")
	}
}

func TestAssignProjectsUnknownSkill(t *testing.T) {
	svc, gdb := newTestService(t)
	userID := testUser(t, gdb)
	ctx := context.Background()

	if _, err := svc.CreatePlan(ctx, userID, basicPlanInput()); err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	_, err := svc.AssignProjects(ctx, userID, uuid.New(), []ProjectInput{{Title: "x"}})
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetProjectStatusRecomputesProgress(t *testing.T) {
	svc, gdb := newTestService(t)
	userID := testUser(t, gdb)
	ctx := context.Background()

	frozen := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return frozen }

	plan, err := svc.CreatePlan(ctx, userID, basicPlanInput())
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	skillID := plan.Skills[0].ID

	assigned, err := svc.AssignProjects(ctx, userID, skillID, []ProjectInput{
		{Title: "one"}, {Title: "two"},
	})
	if err != nil {
		t.Fatalf("AssignProjects: %v", err)
	}
	projects := assigned.Skill.Projects

	upd, err := svc.SetProjectStatus(ctx, userID, skillID, projects[0].ID, "Done")
	if err != nil {
		t.Fatalf("SetProjectStatus: %v", err)
	}
	if !upd.Changed {
		t.Fatal("expected a state change")
	}
	if upd.SkillProgress != 50 {
		t.Fatalf("skill progress: got %d, want 50", upd.SkillProgress)
	}
	// Two skills, one at 50% and one untouched: overall rounds to 25.
	if upd.OverallProgress != 25 {
		t.Fatalf("overall progress: got %d, want 25", upd.OverallProgress)
	}
	if upd.Project.CompletedAt == nil || !upd.Project.CompletedAt.Equal(frozen) {
		t.Fatalf("completed at: got %v", upd.Project.CompletedAt)
	}
	if upd.Project.StartedAt == nil {
		t.Fatal("started at should be backfilled on done")
	}

	upd2, err := svc.SetProjectStatus(ctx, userID, skillID, projects[1].ID, "done")
	if err != nil {
		t.Fatalf("SetProjectStatus second: %v", err)
	}
	if upd2.SkillProgress != 100 {
		t.Fatalf("skill progress: got %d, want 100", upd2.SkillProgress)
	}
	if upd2.OverallProgress != 50 {
		t.Fatalf("overall progress: got %d, want 50", upd2.OverallProgress)
	}

	got, err := svc.GetActivePlan(ctx, userID)
	if err != nil {
		t.Fatalf("GetActivePlan: %v", err)
	}
	done := got.FindSkillByID(skillID)
	if done == nil {
		t.Fatal("skill missing from reloaded plan")
	}
	if done.Status != types.SkillStatusCompleted {
		t.Fatalf("skill status: got %s, want completed", done.Status)
	}
	if done.CompletedAt == nil {
		t.Fatal("skill completed_at not stamped")
	}
}

func TestSetProjectStatusIdempotentDone(t *testing.T) {
	svc, gdb := newTestService(t)
	userID := testUser(t, gdb)
	ctx := context.Background()

	first := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return first }

	plan, err := svc.CreatePlan(ctx, userID, basicPlanInput())
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	skillID := plan.Skills[0].ID
	assigned, err := svc.AssignProjects(ctx, userID, skillID, []ProjectInput{{Title: "one"}})
	if err != nil {
		t.Fatalf("AssignProjects: %v", err)
	}
	projectID := assigned.Skill.Projects[0].ID

	if _, err := svc.SetProjectStatus(ctx, userID, skillID, projectID, "done"); err != nil {
		t.Fatalf("first done: %v", err)
	}

	svc.now = func() time.Time { return first.Add(48 * time.Hour) }
	upd, err := svc.SetProjectStatus(ctx, userID, skillID, projectID, "done")
	if err != nil {
		t.Fatalf("second done: %v", err)
	}
	if upd.Changed {
		t.Fatal("repeated done should report no change")
	}
	if upd.Project.CompletedAt == nil || !upd.Project.CompletedAt.Equal(first) {
		t.Fatalf("completed at must not move: got %v", upd.Project.CompletedAt)
	}
	if upd.SkillProgress != 100 {
		t.Fatalf("skill progress: got %d, want 100", upd.SkillProgress)
	}
}

func TestSetProjectStatusRejectsUnknownStatus(t *testing.T) {
	svc, gdb := newTestService(t)
	userID := testUser(t, gdb)

	_, err := svc.SetProjectStatus(context.Background(), userID, uuid.New(), uuid.New(), "paused")
	if !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestFindSkillByNameCaseInsensitive(t *testing.T) {
	svc, gdb := newTestService(t)
	userID := testUser(t, gdb)
	ctx := context.Background()

	if _, err := svc.CreatePlan(ctx, userID, basicPlanInput()); err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}

	skill, err := svc.FindSkillByName(ctx, userID, "  postgresql ")
	if err != nil {
		t.Fatalf("FindSkillByName: %v", err)
	}
	if skill.SkillName != "PostgreSQL" {
		t.Fatalf("matched wrong skill: %s", skill.SkillName)
	}

	if _, err := svc.FindSkillByName(ctx, userID, "Postgre"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("partial name must not match, got %v", err)
	}
}
