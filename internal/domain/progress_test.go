package domain

import (
	"testing"
	"time"
)

func projectWithStatus(status ProjectStatus) *Project {
	return &Project{Title: "p", Status: status}
}

func TestSkillProgress(t *testing.T) {
	if got := SkillProgress(nil); got != 0 {
		t.Fatalf("empty set: got %d, want 0", got)
	}
	projects := []*Project{
		projectWithStatus(ProjectStatusDone),
		projectWithStatus(ProjectStatusNotStarted),
	}
	if got := SkillProgress(projects); got != 50 {
		t.Fatalf("1/2 done: got %d, want 50", got)
	}
	projects = []*Project{
		projectWithStatus(ProjectStatusDone),
		projectWithStatus(ProjectStatusDone),
		projectWithStatus(ProjectStatusInProgress),
	}
	if got := SkillProgress(projects); got != 67 {
		t.Fatalf("2/3 done: got %d, want 67", got)
	}
}

func TestOverallProgressScenarioA(t *testing.T) {
	// Skill1 has 2 projects (1 done), Skill2 has none.
	now := time.Now().UTC()
	skill1 := &Skill{SkillName: "Go", Status: SkillStatusLearning, Projects: []*Project{
		projectWithStatus(ProjectStatusDone),
		projectWithStatus(ProjectStatusNotStarted),
	}}
	skill2 := &Skill{SkillName: "SQL", Status: SkillStatusLearning}
	skill1.Recompute(now)
	skill2.Recompute(now)

	if skill1.ProgressPercentage != 50 {
		t.Fatalf("skill1 progress: got %d, want 50", skill1.ProgressPercentage)
	}
	if skill2.ProgressPercentage != 0 {
		t.Fatalf("skill2 progress: got %d, want 0", skill2.ProgressPercentage)
	}

	lp := &LearningPath{Skills: []*Skill{skill1, skill2}}
	lp.RecomputeOverallProgress()
	if lp.OverallProgress != 25 {
		t.Fatalf("overall progress: got %d, want 25", lp.OverallProgress)
	}
}

func TestOverallProgressEmpty(t *testing.T) {
	lp := &LearningPath{}
	lp.RecomputeOverallProgress()
	if lp.OverallProgress != 0 {
		t.Fatalf("no skills: got %d, want 0", lp.OverallProgress)
	}
}

func TestSkillCompletionScenarioB(t *testing.T) {
	// Three projects transitioned to done in sequence.
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	skill := &Skill{SkillName: "Docker", Status: SkillStatusLearning, Projects: []*Project{
		projectWithStatus(ProjectStatusNotStarted),
		projectWithStatus(ProjectStatusNotStarted),
		projectWithStatus(ProjectStatusNotStarted),
	}}
	lp := &LearningPath{Skills: []*Skill{skill}}

	for i, p := range skill.Projects {
		stepNow := now.Add(time.Duration(i) * time.Hour)
		p.ApplyStatus(ProjectStatusDone, stepNow)
		skill.Recompute(stepNow)
		lp.RecomputeOverallProgress()
	}

	if skill.ProgressPercentage != 100 {
		t.Fatalf("progress: got %d, want 100", skill.ProgressPercentage)
	}
	if skill.Status != SkillStatusCompleted {
		t.Fatalf("status: got %s, want %s", skill.Status, SkillStatusCompleted)
	}
	if skill.CompletedAt == nil {
		t.Fatal("completed_at not stamped")
	}
	if lp.OverallProgress != 100 {
		t.Fatalf("overall progress: got %d, want 100", lp.OverallProgress)
	}
}

func TestSkillCompletedAtMonotonic(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	skill := &Skill{Projects: []*Project{projectWithStatus(ProjectStatusDone)}}
	skill.Recompute(now)
	first := *skill.CompletedAt

	skill.Recompute(now.Add(time.Hour))
	if !skill.CompletedAt.Equal(first) {
		t.Fatalf("completed_at moved: got %v, want %v", skill.CompletedAt, first)
	}
}

func TestSkillStatusAsymmetryAtZero(t *testing.T) {
	// A completed skill whose project set is replaced keeps its status at 0%,
	// but progress reflects the new set.
	now := time.Now().UTC()
	skill := &Skill{Status: SkillStatusLearning, Projects: []*Project{projectWithStatus(ProjectStatusDone)}}
	skill.Recompute(now)
	if skill.Status != SkillStatusCompleted {
		t.Fatalf("status: got %s, want completed", skill.Status)
	}

	skill.Projects = []*Project{
		projectWithStatus(ProjectStatusNotStarted),
		projectWithStatus(ProjectStatusNotStarted),
	}
	skill.Recompute(now)
	if skill.ProgressPercentage != 0 {
		t.Fatalf("progress after replace: got %d, want 0", skill.ProgressPercentage)
	}
	if skill.Status != SkillStatusCompleted {
		t.Fatalf("status forced off completed at 0%%: got %s", skill.Status)
	}

	// But any partial progress re-derives to learning.
	skill.Projects = append(skill.Projects, projectWithStatus(ProjectStatusDone))
	skill.Recompute(now)
	if skill.Status != SkillStatusLearning {
		t.Fatalf("status at partial progress: got %s, want learning", skill.Status)
	}
}

func TestApplyStatusStampsAndBackfills(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	p := projectWithStatus(ProjectStatusNotStarted)
	if !p.ApplyStatus(ProjectStatusInProgress, now) {
		t.Fatal("expected change to in_progress")
	}
	if p.StartedAt == nil || !p.StartedAt.Equal(now) {
		t.Fatalf("started_at: got %v, want %v", p.StartedAt, now)
	}

	later := now.Add(2 * time.Hour)
	p.ApplyStatus(ProjectStatusDone, later)
	if p.CompletedAt == nil || !p.CompletedAt.Equal(later) {
		t.Fatalf("completed_at: got %v, want %v", p.CompletedAt, later)
	}
	if !p.StartedAt.Equal(now) {
		t.Fatalf("started_at overwritten: got %v, want %v", p.StartedAt, now)
	}

	// Done straight from not_started backfills started_at.
	q := projectWithStatus(ProjectStatusNotStarted)
	q.ApplyStatus(ProjectStatusDone, now)
	if q.StartedAt == nil || q.CompletedAt == nil {
		t.Fatalf("backfill: started_at=%v completed_at=%v", q.StartedAt, q.CompletedAt)
	}
}

func TestApplyStatusDoneIdempotent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p := projectWithStatus(ProjectStatusNotStarted)
	p.ApplyStatus(ProjectStatusDone, now)
	first := *p.CompletedAt

	if changed := p.ApplyStatus(ProjectStatusDone, now.Add(time.Hour)); changed {
		t.Fatal("re-completing an already-done project reported a change")
	}
	if !p.CompletedAt.Equal(first) {
		t.Fatalf("completed_at moved: got %v, want %v", p.CompletedAt, first)
	}
}

func TestApplyStatusBackToNotStartedClearsNothing(t *testing.T) {
	now := time.Now().UTC()
	p := projectWithStatus(ProjectStatusNotStarted)
	p.ApplyStatus(ProjectStatusDone, now)

	p.ApplyStatus(ProjectStatusNotStarted, now.Add(time.Hour))
	if p.Status != ProjectStatusNotStarted {
		t.Fatalf("status: got %s, want not_started", p.Status)
	}
	if p.StartedAt == nil || p.CompletedAt == nil {
		t.Fatal("timestamps cleared on move back to not_started")
	}
}

func TestParseProjectStatus(t *testing.T) {
	cases := map[string]ProjectStatus{
		"done":        ProjectStatusDone,
		"Done":        ProjectStatusDone,
		"In Progress": ProjectStatusInProgress,
		"in_progress": ProjectStatusInProgress,
		"Not Started": ProjectStatusNotStarted,
		" not_started ": ProjectStatusNotStarted,
	}
	for raw, want := range cases {
		got, err := ParseProjectStatus(raw)
		if err != nil || got != want {
			t.Fatalf("ParseProjectStatus(%q): got %q err=%v, want %q", raw, got, err, want)
		}
	}
	if _, err := ParseProjectStatus("finished"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestFindSkillByName(t *testing.T) {
	lp := &LearningPath{Skills: []*Skill{
		{SkillName: "PostgreSQL"},
		{SkillName: "Kubernetes"},
	}}
	if got := lp.FindSkillByName("postgresql"); got == nil || got.SkillName != "PostgreSQL" {
		t.Fatalf("case-insensitive lookup failed: %+v", got)
	}
	if got := lp.FindSkillByName("Postgre"); got != nil {
		t.Fatalf("partial match must not resolve, got %+v", got)
	}
}
