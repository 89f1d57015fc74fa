package learning

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/skilltrail-backend/internal/data/repos/testutil"
	types "github.com/yungbote/skilltrail-backend/internal/domain"
	"github.com/yungbote/skilltrail-backend/internal/pkg/dbctx"
)

func TestLearningPathRepo(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewLearningPathRepo(gdb, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "pathrepo@example.com")

	old := testutil.SeedLearningPath(t, ctx, tx, u.ID, true)

	if got, err := repo.GetByID(dbc, old.ID); err != nil || got == nil || got.ID != old.ID {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got, err := repo.GetActiveByUser(dbc, u.ID); err != nil || got == nil || got.ID != old.ID {
		t.Fatalf("GetActiveByUser: got=%v err=%v", got, err)
	}

	n, err := repo.DeactivateByUser(dbc, u.ID)
	if err != nil || n != 1 {
		t.Fatalf("DeactivateByUser: n=%d err=%v", n, err)
	}
	if got, err := repo.GetActiveByUser(dbc, u.ID); err != nil || got != nil {
		t.Fatalf("GetActiveByUser after deactivate: got=%v err=%v", got, err)
	}

	next := testutil.SeedLearningPath(t, ctx, tx, u.ID, true)
	if got, err := repo.GetActiveByUserForUpdate(dbc, u.ID); err != nil || got == nil || got.ID != next.ID {
		t.Fatalf("GetActiveByUserForUpdate: got=%v err=%v", got, err)
	}

	rows, err := repo.ListByUser(dbc, u.ID)
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(rows))
	}

	next.TargetRole = "Staff Engineer"
	if err := repo.Update(dbc, next); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := repo.UpdateFields(dbc, next.ID, map[string]interface{}{"overall_progress": 40}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if got, _ := repo.GetByID(dbc, next.ID); got.OverallProgress != 40 {
		t.Fatalf("UpdateFields not applied: %d", got.OverallProgress)
	}
}

func TestLearningPathRepoPreloadsOrderedChildren(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewLearningPathRepo(gdb, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "pathrepo-preload@example.com")
	lp := testutil.SeedLearningPath(t, ctx, tx, u.ID, true)
	s2 := testutil.SeedSkill(t, ctx, tx, lp.ID, 1, "Kubernetes")
	s1 := testutil.SeedSkill(t, ctx, tx, lp.ID, 0, "Go")
	testutil.SeedProject(t, ctx, tx, s1.ID, 1, types.ProjectStatusNotStarted)
	testutil.SeedProject(t, ctx, tx, s1.ID, 0, types.ProjectStatusDone)

	got, err := repo.GetActiveByUser(dbc, u.ID)
	if err != nil || got == nil {
		t.Fatalf("GetActiveByUser: got=%v err=%v", got, err)
	}
	if len(got.Skills) != 2 || got.Skills[0].ID != s1.ID || got.Skills[1].ID != s2.ID {
		t.Fatalf("skills not ordered by position: %+v", got.Skills)
	}
	if len(got.Skills[0].Projects) != 2 || got.Skills[0].Projects[0].Status != types.ProjectStatusDone {
		t.Fatalf("projects not ordered by position: %+v", got.Skills[0].Projects)
	}
}

func TestSkillAndProjectRepos(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	skillRepo := NewSkillRepo(gdb, testutil.Logger(t))
	projectRepo := NewProjectRepo(gdb, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "skillrepo@example.com")
	lp := testutil.SeedLearningPath(t, ctx, tx, u.ID, true)
	s := testutil.SeedSkill(t, ctx, tx, lp.ID, 0, "Terraform")

	if got, err := skillRepo.GetByID(dbc, s.ID); err != nil || got == nil || got.SkillName != "Terraform" {
		t.Fatalf("skill GetByID: got=%v err=%v", got, err)
	}
	if rows, err := skillRepo.ListByPathIDs(dbc, []uuid.UUID{lp.ID}); err != nil || len(rows) != 1 {
		t.Fatalf("ListByPathIDs: err=%v len=%d", err, len(rows))
	}
	if err := skillRepo.UpdateFields(dbc, s.ID, map[string]interface{}{"progress_percentage": 50}); err != nil {
		t.Fatalf("skill UpdateFields: %v", err)
	}

	p1 := testutil.SeedProject(t, ctx, tx, s.ID, 0, types.ProjectStatusNotStarted)
	testutil.SeedProject(t, ctx, tx, s.ID, 1, types.ProjectStatusNotStarted)

	if rows, err := projectRepo.ListBySkillIDs(dbc, []uuid.UUID{s.ID}); err != nil || len(rows) != 2 {
		t.Fatalf("ListBySkillIDs: err=%v len=%d", err, len(rows))
	}

	p1.Status = types.ProjectStatusDone
	if err := projectRepo.Update(dbc, p1); err != nil {
		t.Fatalf("project Update: %v", err)
	}
	if got, _ := projectRepo.GetByID(dbc, p1.ID); got.Status != types.ProjectStatusDone {
		t.Fatalf("project update not applied: %s", got.Status)
	}

	if err := projectRepo.FullDeleteBySkillIDs(dbc, []uuid.UUID{s.ID}); err != nil {
		t.Fatalf("FullDeleteBySkillIDs: %v", err)
	}
	if rows, err := projectRepo.ListBySkillIDs(dbc, []uuid.UUID{s.ID}); err != nil || len(rows) != 0 {
		t.Fatalf("projects left after full delete: err=%v len=%d", err, len(rows))
	}
}
