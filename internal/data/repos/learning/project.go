package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/skilltrail-backend/internal/domain"
	"github.com/yungbote/skilltrail-backend/internal/pkg/dbctx"
	"github.com/yungbote/skilltrail-backend/internal/pkg/logger"
)

type ProjectRepo interface {
	Create(dbc dbctx.Context, rows []*types.Project) ([]*types.Project, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Project, error)
	ListBySkillIDs(dbc dbctx.Context, skillIDs []uuid.UUID) ([]*types.Project, error)
	Update(dbc dbctx.Context, row *types.Project) error
	// FullDeleteBySkillIDs hard-deletes every project under the given skills.
	// Used by the destructive project reassignment: replaced projects leave no
	// soft-deleted residue behind.
	FullDeleteBySkillIDs(dbc dbctx.Context, skillIDs []uuid.UUID) error
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (r *projectRepo) Create(dbc dbctx.Context, rows []*types.Project) ([]*types.Project, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Project{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *projectRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Project, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Project
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *projectRepo) ListBySkillIDs(dbc dbctx.Context, skillIDs []uuid.UUID) ([]*types.Project, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Project
	if len(skillIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("skill_id IN ?", skillIDs).
		Order("position ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectRepo) Update(dbc dbctx.Context, row *types.Project) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Save(row).Error
}

func (r *projectRepo) FullDeleteBySkillIDs(dbc dbctx.Context, skillIDs []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(skillIDs) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Unscoped().Where("skill_id IN ?", skillIDs).Delete(&types.Project{}).Error
}
