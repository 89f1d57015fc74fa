package services

import (
	_ "embed"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/skilltrail-backend/internal/domain"
	"github.com/yungbote/skilltrail-backend/internal/pkg/logger"
)

const planDefaultsEnv = "PLAN_DEFAULTS_YAML"

//go:embed plan_defaults.yaml
var planDefaultsRaw []byte

// PlanDefaults supplies the values used when a project spec or plan omits
// them: project difficulty, estimated hours, and the fallback completion-time
// label per experience level.
type PlanDefaults struct {
	ProjectDifficulty     types.ProjectDifficulty
	ProjectEstimatedHours int
	CompletionTime        map[types.ExperienceLevel]string
}

type yamlPlanDefaults struct {
	Defaults struct {
		Project struct {
			Difficulty     string `yaml:"difficulty"`
			EstimatedHours int    `yaml:"estimated_hours"`
		} `yaml:"project"`
		CompletionTime map[string]string `yaml:"completion_time"`
	} `yaml:"defaults"`
}

var (
	planDefaultsOnce   sync.Once
	loadedPlanDefaults PlanDefaults
)

func fallbackPlanDefaults() PlanDefaults {
	return PlanDefaults{
		ProjectDifficulty:     types.DifficultyBeginner,
		ProjectEstimatedHours: types.EstimatedHoursDefault,
		CompletionTime: map[types.ExperienceLevel]string{
			types.ExperienceBeginner:     "6-9 months",
			types.ExperienceIntermediate: "3-6 months",
			types.ExperienceAdvanced:     "1-3 months",
		},
	}
}

// LoadPlanDefaults reads the embedded defaults spec, optionally overridden by
// a file named in PLAN_DEFAULTS_YAML. Invalid specs fall back to the
// compiled-in values.
func LoadPlanDefaults(log *logger.Logger) PlanDefaults {
	planDefaultsOnce.Do(func() {
		loadedPlanDefaults = parsePlanDefaults(log, readPlanDefaultsRaw(log))
	})
	return loadedPlanDefaults
}

func readPlanDefaultsRaw(log *logger.Logger) []byte {
	if override := strings.TrimSpace(os.Getenv(planDefaultsEnv)); override != "" {
		raw, err := os.ReadFile(override)
		if err == nil {
			return raw
		}
		if log != nil {
			log.Warn("plan defaults override unreadable, using embedded spec", "path", override, "error", err)
		}
	}
	return planDefaultsRaw
}

func parsePlanDefaults(log *logger.Logger, raw []byte) PlanDefaults {
	out := fallbackPlanDefaults()

	var parsed yamlPlanDefaults
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		if log != nil {
			log.Warn("plan defaults yaml invalid, using fallback", "error", err)
		}
		return out
	}

	if d := types.ProjectDifficulty(strings.TrimSpace(parsed.Defaults.Project.Difficulty)); types.ValidDifficulty(d) {
		out.ProjectDifficulty = d
	}
	if h := parsed.Defaults.Project.EstimatedHours; h >= types.EstimatedHoursMin && h <= types.EstimatedHoursMax {
		out.ProjectEstimatedHours = h
	}
	for level, label := range parsed.Defaults.CompletionTime {
		exp := types.ExperienceLevel(strings.ToLower(strings.TrimSpace(level)))
		if types.ValidExperience(exp) && strings.TrimSpace(label) != "" {
			out.CompletionTime[exp] = strings.TrimSpace(label)
		}
	}
	return out
}
