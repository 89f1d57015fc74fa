package domain

import (
	"math"
	"time"
)

// Derived progress is always recomputed from current child state, never
// written directly by callers. Percentages round half away from zero
// (math.Round), matching the upstream contract.

// SkillProgress returns round(100 * done / total); an empty project set is 0.
func SkillProgress(projects []*Project) int {
	if len(projects) == 0 {
		return 0
	}
	done := 0
	for _, p := range projects {
		if p != nil && p.Status == ProjectStatusDone {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(projects)) * 100))
}

// OverallProgress returns the rounded mean of skill percentages; no skills is 0.
func OverallProgress(skills []*Skill) int {
	if len(skills) == 0 {
		return 0
	}
	total := 0
	for _, s := range skills {
		if s != nil {
			total += s.ProgressPercentage
		}
	}
	return int(math.Round(float64(total) / float64(len(skills))))
}

// Recompute refreshes the skill's derived fields from its current projects.
//
// Hitting 100% marks the skill completed and stamps completed_at once; the
// stamp is monotonic and survives later drops below 100%. A percentage in
// (0,100) re-derives status to learning. At 0% the status is left alone:
// completion is only ever detected here, never un-detected.
func (s *Skill) Recompute(now time.Time) {
	pct := SkillProgress(s.Projects)
	s.ProgressPercentage = pct
	switch {
	case pct == 100:
		s.Status = SkillStatusCompleted
		if s.CompletedAt == nil {
			s.CompletedAt = &now
		}
	case pct > 0:
		s.Status = SkillStatusLearning
	}
}

// RecomputeOverallProgress refreshes the plan's derived progress from its
// current skills. It mutates nothing else.
func (lp *LearningPath) RecomputeOverallProgress() {
	lp.OverallProgress = OverallProgress(lp.Skills)
}
