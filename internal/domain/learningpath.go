package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project status lifecycle. The expected flow is not_started -> in_progress
// -> done, but status writes are update-style: any target is accepted and
// timestamps are only ever stamped forward.
type ProjectStatus string

const (
	ProjectStatusNotStarted ProjectStatus = "not_started"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusDone       ProjectStatus = "done"
)

// ParseProjectStatus accepts both the canonical snake_case form and the
// legacy display labels ("Not Started", "In Progress", "Done").
func ParseProjectStatus(raw string) (ProjectStatus, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_")
	switch ProjectStatus(normalized) {
	case ProjectStatusNotStarted, ProjectStatusInProgress, ProjectStatusDone:
		return ProjectStatus(normalized), nil
	}
	return "", fmt.Errorf("unknown project status %q", raw)
}

type ProjectDifficulty string

const (
	DifficultyBeginner     ProjectDifficulty = "beginner"
	DifficultyIntermediate ProjectDifficulty = "intermediate"
	DifficultyAdvanced     ProjectDifficulty = "advanced"
)

func ValidDifficulty(d ProjectDifficulty) bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

type SkillStatus string

const (
	SkillStatusExisting  SkillStatus = "existing"
	SkillStatusLearning  SkillStatus = "learning"
	SkillStatusCompleted SkillStatus = "completed"
	SkillStatusMastered  SkillStatus = "mastered"
)

// ExperienceLevel doubles as plan experience and the difficulty vocabulary.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

func ValidExperience(e ExperienceLevel) bool {
	switch e {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced:
		return true
	}
	return false
}

const (
	EstimatedHoursMin     = 1
	EstimatedHoursMax     = 200
	EstimatedHoursDefault = 10
)

type Project struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SkillID uuid.UUID `gorm:"type:uuid;not null;index:idx_skill_project,unique,priority:1" json:"skill_id"`
	Skill   *Skill    `gorm:"constraint:OnDelete:CASCADE;foreignKey:SkillID;references:ID" json:"skill,omitempty"`

	Position       int               `gorm:"column:position;not null;index:idx_skill_project,unique,priority:2" json:"position"`
	Title          string            `gorm:"column:title;not null" json:"title"`
	Description    string            `gorm:"column:description;type:text" json:"description,omitempty"`
	Difficulty     ProjectDifficulty `gorm:"column:difficulty;not null;default:'beginner'" json:"difficulty"`
	EstimatedHours int               `gorm:"column:estimated_hours;not null;default:10" json:"estimated_hours"`
	Status         ProjectStatus     `gorm:"column:status;not null;default:'not_started';index" json:"status"`
	StartedAt      *time.Time        `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt    *time.Time        `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Project) TableName() string { return "project" }

// ApplyStatus writes target onto the project and stamps timestamps from now.
// It reports whether anything changed; setting an already-done project to
// done is a no-op so completed_at never moves.
func (p *Project) ApplyStatus(target ProjectStatus, now time.Time) bool {
	if p.Status == target {
		// Timestamps for the current status were stamped on the way in;
		// backfill only if a legacy row is missing them.
		changed := false
		if target == ProjectStatusInProgress && p.StartedAt == nil {
			p.StartedAt = &now
			changed = true
		}
		if target == ProjectStatusDone && p.CompletedAt == nil {
			p.CompletedAt = &now
			changed = true
		}
		return changed
	}

	p.Status = target
	switch target {
	case ProjectStatusInProgress:
		if p.StartedAt == nil {
			p.StartedAt = &now
		}
	case ProjectStatusDone:
		if p.CompletedAt == nil {
			p.CompletedAt = &now
		}
		if p.StartedAt == nil {
			p.StartedAt = &now
		}
	}
	// Moving back to not_started clears nothing.
	return true
}

type Skill struct {
	ID             uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LearningPathID uuid.UUID     `gorm:"type:uuid;not null;index:idx_path_skill,unique,priority:1" json:"learning_path_id"`
	LearningPath   *LearningPath `gorm:"constraint:OnDelete:CASCADE;foreignKey:LearningPathID;references:ID" json:"learning_path,omitempty"`

	Position       int            `gorm:"column:position;not null;index:idx_path_skill,unique,priority:2" json:"position"`
	SkillName      string         `gorm:"column:skill_name;not null;index" json:"skill_name"`
	Category       string         `gorm:"column:category" json:"category,omitempty"`
	Status         SkillStatus    `gorm:"column:status;not null;default:'learning'" json:"status"`
	LearningTopics datatypes.JSON `gorm:"column:learning_topics;type:jsonb" json:"learning_topics,omitempty"`

	Projects []*Project `gorm:"foreignKey:SkillID;references:ID" json:"projects"`

	ProgressPercentage int        `gorm:"column:progress_percentage;not null;default:0" json:"progress_percentage"`
	CompletedAt        *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Skill) TableName() string { return "skill" }

// NameMatches does the case-insensitive exact match used for skill lookup.
func (s *Skill) NameMatches(name string) bool {
	return strings.EqualFold(strings.TrimSpace(s.SkillName), strings.TrimSpace(name))
}

type LearningPath struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	JobTitle       string          `gorm:"column:job_title;not null" json:"job_title"`
	TargetRole     string          `gorm:"column:target_role" json:"target_role,omitempty"`
	Experience     ExperienceLevel `gorm:"column:experience;not null" json:"experience"`
	ExistingSkills datatypes.JSON  `gorm:"column:existing_skills;type:jsonb" json:"existing_skills,omitempty"`

	Skills []*Skill `gorm:"foreignKey:LearningPathID;references:ID" json:"skills"`

	OverallProgress         int        `gorm:"column:overall_progress;not null;default:0" json:"overall_progress"`
	EstimatedCompletionTime string     `gorm:"column:estimated_completion_time" json:"estimated_completion_time,omitempty"`
	IsActive                bool       `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	CompletedAt             *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	// Raw upstream generation payload, stored verbatim and never interpreted.
	GenerationPayload datatypes.JSON `gorm:"column:generation_payload;type:jsonb" json:"generation_payload,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (LearningPath) TableName() string { return "learning_path" }

// FindSkillByName returns the first skill whose name matches, case-insensitively.
func (lp *LearningPath) FindSkillByName(name string) *Skill {
	for _, s := range lp.Skills {
		if s != nil && s.NameMatches(name) {
			return s
		}
	}
	return nil
}

// FindSkillByID locates a child skill within the aggregate.
func (lp *LearningPath) FindSkillByID(id uuid.UUID) *Skill {
	for _, s := range lp.Skills {
		if s != nil && s.ID == id {
			return s
		}
	}
	return nil
}
