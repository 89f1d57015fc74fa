package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	rediscache "github.com/yungbote/skilltrail-backend/internal/clients/redis"
	"github.com/yungbote/skilltrail-backend/internal/data/repos/learning"
	types "github.com/yungbote/skilltrail-backend/internal/domain"
	"github.com/yungbote/skilltrail-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/skilltrail-backend/internal/pkg/errors"
	"github.com/yungbote/skilltrail-backend/internal/pkg/logger"
)

// Clock supplies "now" for timestamp stamping; injectable so transition and
// recomputation logic stays deterministic under test.
type Clock func() time.Time

type PlanSkillInput struct {
	SkillName      string   `json:"skill_name"`
	Category       string   `json:"category"`
	LearningTopics []string `json:"learning_topics"`
}

type CreatePlanInput struct {
	JobTitle                string           `json:"job_title"`
	TargetRole              string           `json:"target_role"`
	Experience              string           `json:"experience"`
	ExistingSkills          []string         `json:"existing_skills"`
	Skills                  []PlanSkillInput `json:"skills"`
	EstimatedCompletionTime string           `json:"estimated_completion_time"`
	// Raw upstream generation payload; persisted verbatim.
	GenerationPayload json.RawMessage `json:"generation_payload"`
}

type ProjectInput struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Difficulty     string `json:"difficulty"`
	EstimatedHours int    `json:"estimated_hours"`
}

// ProjectAssignment is the result of replacing a skill's project set.
type ProjectAssignment struct {
	Skill           *types.Skill `json:"skill"`
	OverallProgress int          `json:"overall_progress"`
}

// ProjectStatusUpdate carries the updated project together with the freshly
// recomputed progress figures, so callers never need a second read.
type ProjectStatusUpdate struct {
	Project         *types.Project `json:"project"`
	Changed         bool           `json:"changed"`
	SkillProgress   int            `json:"skill_progress"`
	OverallProgress int            `json:"overall_progress"`
}

type LearningPathService interface {
	CreatePlan(ctx context.Context, userID uuid.UUID, input CreatePlanInput) (*types.LearningPath, error)
	GetActivePlan(ctx context.Context, userID uuid.UUID) (*types.LearningPath, error)
	DeactivatePlan(ctx context.Context, userID uuid.UUID) error
	AssignProjects(ctx context.Context, userID uuid.UUID, skillID uuid.UUID, inputs []ProjectInput) (*ProjectAssignment, error)
	SetProjectStatus(ctx context.Context, userID uuid.UUID, skillID uuid.UUID, projectID uuid.UUID, rawStatus string) (*ProjectStatusUpdate, error)
	FindSkillByName(ctx context.Context, userID uuid.UUID, name string) (*types.Skill, error)
}

type learningPathService struct {
	db          *gorm.DB
	log         *logger.Logger
	pathRepo    learning.LearningPathRepo
	skillRepo   learning.SkillRepo
	projectRepo learning.ProjectRepo
	cache       rediscache.ActivePathCache
	defaults    PlanDefaults
	now         Clock
}

func NewLearningPathService(
	db *gorm.DB,
	log *logger.Logger,
	pathRepo learning.LearningPathRepo,
	skillRepo learning.SkillRepo,
	projectRepo learning.ProjectRepo,
	cache rediscache.ActivePathCache,
	defaults PlanDefaults,
) LearningPathService {
	return &learningPathService{
		db:          db,
		log:         log.With("service", "LearningPathService"),
		pathRepo:    pathRepo,
		skillRepo:   skillRepo,
		projectRepo: projectRepo,
		cache:       cache,
		defaults:    defaults,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *learningPathService) CreatePlan(ctx context.Context, userID uuid.UUID, input CreatePlanInput) (*types.LearningPath, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.ErrUnauthorized
	}
	// Validation happens before any write; a rejected plan deactivates nothing.
	if err := validateCreatePlanInput(input); err != nil {
		return nil, err
	}

	experience := types.ExperienceLevel(strings.ToLower(strings.TrimSpace(input.Experience)))

	completionTime := strings.TrimSpace(input.EstimatedCompletionTime)
	if completionTime == "" {
		completionTime = s.defaults.CompletionTime[experience]
	}

	existingSkills, err := jsonStringList(input.ExistingSkills)
	if err != nil {
		return nil, fmt.Errorf("encode existing skills: %w", err)
	}

	payload := datatypes.JSON([]byte(`{}`))
	if len(input.GenerationPayload) > 0 {
		payload = datatypes.JSON(input.GenerationPayload)
	}

	plan := &types.LearningPath{
		ID:                      uuid.New(),
		UserID:                  userID,
		JobTitle:                strings.TrimSpace(input.JobTitle),
		TargetRole:              strings.TrimSpace(input.TargetRole),
		Experience:              experience,
		ExistingSkills:          existingSkills,
		OverallProgress:         0,
		EstimatedCompletionTime: completionTime,
		IsActive:                true,
		GenerationPayload:       payload,
	}

	skills := make([]*types.Skill, 0, len(input.Skills))
	for i, in := range input.Skills {
		topics, err := jsonStringList(in.LearningTopics)
		if err != nil {
			return nil, fmt.Errorf("encode learning topics: %w", err)
		}
		skills = append(skills, &types.Skill{
			ID:                 uuid.New(),
			LearningPathID:     plan.ID,
			Position:           i,
			SkillName:          strings.TrimSpace(in.SkillName),
			Category:           strings.TrimSpace(in.Category),
			Status:             types.SkillStatusLearning,
			LearningTopics:     topics,
			ProgressPercentage: 0,
		})
	}

	// Deactivate-then-insert runs in one transaction, so a reader can never
	// observe two active plans or the new plan active alongside the old one.
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := s.pathRepo.DeactivateByUser(dbc, userID); err != nil {
			return fmt.Errorf("deactivate previous plans: %w", err)
		}
		if _, err := s.pathRepo.Create(dbc, []*types.LearningPath{plan}); err != nil {
			return fmt.Errorf("create learning path: %w", err)
		}
		if _, err := s.skillRepo.Create(dbc, skills); err != nil {
			return fmt.Errorf("create skills: %w", err)
		}
		return nil
	}); err != nil {
		s.log.Error("CreatePlan failed", "error", err, "user_id", userID)
		return nil, err
	}

	s.invalidateCache(ctx, userID)

	plan.Skills = skills
	return plan, nil
}

func (s *learningPathService) GetActivePlan(ctx context.Context, userID uuid.UUID) (*types.LearningPath, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.ErrUnauthorized
	}

	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, userID); err != nil {
			s.log.Warn("active path cache read failed", "error", err, "user_id", userID)
		} else if ok {
			return cached, nil
		}
	}

	plan, err := s.pathRepo.GetActiveByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("load active plan: %w", err)
	}
	if plan == nil {
		return nil, fmt.Errorf("%w: no active learning path", pkgerrors.ErrNotFound)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, plan); err != nil {
			s.log.Warn("active path cache write failed", "error", err, "user_id", userID)
		}
	}
	return plan, nil
}

func (s *learningPathService) DeactivatePlan(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.ErrUnauthorized
	}
	var affected int64
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.pathRepo.DeactivateByUser(dbctx.Context{Ctx: ctx, Tx: tx}, userID)
		if err != nil {
			return err
		}
		affected = n
		return nil
	}); err != nil {
		s.log.Error("DeactivatePlan failed", "error", err, "user_id", userID)
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: no active learning path", pkgerrors.ErrNotFound)
	}
	s.invalidateCache(ctx, userID)
	return nil
}

func (s *learningPathService) AssignProjects(ctx context.Context, userID uuid.UUID, skillID uuid.UUID, inputs []ProjectInput) (*ProjectAssignment, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.ErrUnauthorized
	}

	specs, err := s.buildProjects(skillID, inputs)
	if err != nil {
		return nil, err
	}

	var result *ProjectAssignment
	if err := s.withActivePlan(ctx, userID, func(dbc dbctx.Context, plan *types.LearningPath) error {
		skill, err := s.ownedSkill(dbc, plan, skillID)
		if err != nil {
			return err
		}

		// Destructive replace: the prior project set, progress included, is
		// discarded wholesale.
		if err := s.projectRepo.FullDeleteBySkillIDs(dbc, []uuid.UUID{skill.ID}); err != nil {
			return fmt.Errorf("clear previous projects: %w", err)
		}
		if _, err := s.projectRepo.Create(dbc, specs); err != nil {
			return fmt.Errorf("create projects: %w", err)
		}

		skill.Projects = specs
		skill.Recompute(s.now())
		if err := s.skillRepo.Update(dbc, skill); err != nil {
			return fmt.Errorf("save skill: %w", err)
		}

		overall, err := s.recomputePlan(dbc, plan, skill)
		if err != nil {
			return err
		}
		result = &ProjectAssignment{Skill: skill, OverallProgress: overall}
		return nil
	}); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, userID)
	return result, nil
}

func (s *learningPathService) SetProjectStatus(ctx context.Context, userID uuid.UUID, skillID uuid.UUID, projectID uuid.UUID, rawStatus string) (*ProjectStatusUpdate, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.ErrUnauthorized
	}
	target, err := types.ParseProjectStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrInvalidArgument, err)
	}

	var result *ProjectStatusUpdate
	if err := s.withActivePlan(ctx, userID, func(dbc dbctx.Context, plan *types.LearningPath) error {
		skill, err := s.ownedSkill(dbc, plan, skillID)
		if err != nil {
			return err
		}
		project, err := s.projectRepo.GetByID(dbc, projectID)
		if err != nil {
			return fmt.Errorf("load project: %w", err)
		}
		if project == nil || project.SkillID != skill.ID {
			return fmt.Errorf("%w: project not found", pkgerrors.ErrNotFound)
		}

		changed := project.ApplyStatus(target, s.now())
		if changed {
			if err := s.projectRepo.Update(dbc, project); err != nil {
				return fmt.Errorf("save project: %w", err)
			}
		}

		projects, err := s.projectRepo.ListBySkillIDs(dbc, []uuid.UUID{skill.ID})
		if err != nil {
			return fmt.Errorf("load projects: %w", err)
		}
		for i, p := range projects {
			if p.ID == project.ID {
				projects[i] = project
			}
		}
		skill.Projects = projects
		skill.Recompute(s.now())
		if err := s.skillRepo.Update(dbc, skill); err != nil {
			return fmt.Errorf("save skill: %w", err)
		}

		overall, err := s.recomputePlan(dbc, plan, skill)
		if err != nil {
			return err
		}
		result = &ProjectStatusUpdate{
			Project:         project,
			Changed:         changed,
			SkillProgress:   skill.ProgressPercentage,
			OverallProgress: overall,
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, userID)
	return result, nil
}

func (s *learningPathService) FindSkillByName(ctx context.Context, userID uuid.UUID, name string) (*types.Skill, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: skill name is required", pkgerrors.ErrInvalidArgument)
	}
	plan, err := s.GetActivePlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	skill := plan.FindSkillByName(name)
	if skill == nil {
		return nil, fmt.Errorf("%w: skill not found", pkgerrors.ErrNotFound)
	}
	return skill, nil
}

// withActivePlan runs fn inside one transaction holding a row lock on the
// user's active plan. All nested skill/project mutation goes through here, so
// whole-plan read-modify-write is serialized at plan granularity.
func (s *learningPathService) withActivePlan(ctx context.Context, userID uuid.UUID, fn func(dbc dbctx.Context, plan *types.LearningPath) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		plan, err := s.pathRepo.GetActiveByUserForUpdate(dbc, userID)
		if err != nil {
			return fmt.Errorf("load active plan: %w", err)
		}
		if plan == nil {
			return fmt.Errorf("%w: no active learning path", pkgerrors.ErrNotFound)
		}
		return fn(dbc, plan)
	})
	if err != nil {
		s.log.Warn("plan mutation failed", "error", err, "user_id", userID)
	}
	return err
}

// recomputePlan refreshes the aggregate's overall progress from the current
// skill rows, substituting updated for its stale sibling, and persists it.
func (s *learningPathService) recomputePlan(dbc dbctx.Context, plan *types.LearningPath, updated *types.Skill) (int, error) {
	skills, err := s.skillRepo.ListByPathIDs(dbc, []uuid.UUID{plan.ID})
	if err != nil {
		return 0, fmt.Errorf("load skills: %w", err)
	}
	for i, sk := range skills {
		if sk.ID == updated.ID {
			skills[i] = updated
		}
	}
	plan.Skills = skills
	plan.RecomputeOverallProgress()
	if err := s.pathRepo.UpdateFields(dbc, plan.ID, map[string]interface{}{
		"overall_progress": plan.OverallProgress,
	}); err != nil {
		return 0, fmt.Errorf("save overall progress: %w", err)
	}
	return plan.OverallProgress, nil
}

func (s *learningPathService) ownedSkill(dbc dbctx.Context, plan *types.LearningPath, skillID uuid.UUID) (*types.Skill, error) {
	skill, err := s.skillRepo.GetByID(dbc, skillID)
	if err != nil {
		return nil, fmt.Errorf("load skill: %w", err)
	}
	if skill == nil || skill.LearningPathID != plan.ID {
		return nil, fmt.Errorf("%w: skill not found", pkgerrors.ErrNotFound)
	}
	return skill, nil
}

func (s *learningPathService) buildProjects(skillID uuid.UUID, inputs []ProjectInput) ([]*types.Project, error) {
	out := make([]*types.Project, 0, len(inputs))
	for i, in := range inputs {
		title := strings.TrimSpace(in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: project title is required", pkgerrors.ErrInvalidArgument)
		}

		difficulty := s.defaults.ProjectDifficulty
		if raw := strings.ToLower(strings.TrimSpace(in.Difficulty)); raw != "" {
			difficulty = types.ProjectDifficulty(raw)
			if !types.ValidDifficulty(difficulty) {
				return nil, fmt.Errorf("%w: unknown difficulty %q", pkgerrors.ErrInvalidArgument, in.Difficulty)
			}
		}

		hours := s.defaults.ProjectEstimatedHours
		if in.EstimatedHours != 0 {
			if in.EstimatedHours < types.EstimatedHoursMin || in.EstimatedHours > types.EstimatedHoursMax {
				return nil, fmt.Errorf("%w: estimated hours must be between %d and %d",
					pkgerrors.ErrInvalidArgument, types.EstimatedHoursMin, types.EstimatedHoursMax)
			}
			hours = in.EstimatedHours
		}

		out = append(out, &types.Project{
			ID:             uuid.New(),
			SkillID:        skillID,
			Position:       i,
			Title:          title,
			Description:    strings.TrimSpace(in.Description),
			Difficulty:     difficulty,
			EstimatedHours: hours,
			Status:         types.ProjectStatusNotStarted,
		})
	}
	return out, nil
}

func (s *learningPathService) invalidateCache(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn("active path cache invalidation failed", "error", err, "user_id", userID)
	}
}

func validateCreatePlanInput(input CreatePlanInput) error {
	if strings.TrimSpace(input.JobTitle) == "" {
		return fmt.Errorf("%w: job title is required", pkgerrors.ErrInvalidArgument)
	}
	experience := types.ExperienceLevel(strings.ToLower(strings.TrimSpace(input.Experience)))
	if !types.ValidExperience(experience) {
		return fmt.Errorf("%w: experience must be beginner, intermediate, or advanced", pkgerrors.ErrInvalidArgument)
	}
	for _, sk := range input.Skills {
		if strings.TrimSpace(sk.SkillName) == "" {
			return fmt.Errorf("%w: skill name is required", pkgerrors.ErrInvalidArgument)
		}
	}
	if len(input.GenerationPayload) > 0 && !json.Valid(input.GenerationPayload) {
		return fmt.Errorf("%w: generation payload must be valid JSON", pkgerrors.ErrInvalidArgument)
	}
	return nil
}

func jsonStringList(values []string) (datatypes.JSON, error) {
	if values == nil {
		values = []string{}
	}
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	raw, err := json.Marshal(cleaned)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
