package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/skilltrail-backend/internal/domain"
	"github.com/yungbote/skilltrail-backend/internal/pkg/dbctx"
	"github.com/yungbote/skilltrail-backend/internal/pkg/logger"
)

type SkillRepo interface {
	Create(dbc dbctx.Context, rows []*types.Skill) ([]*types.Skill, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Skill, error)
	ListByPathIDs(dbc dbctx.Context, pathIDs []uuid.UUID) ([]*types.Skill, error)
	Update(dbc dbctx.Context, row *types.Skill) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type skillRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillRepo(db *gorm.DB, baseLog *logger.Logger) SkillRepo {
	return &skillRepo{db: db, log: baseLog.With("repo", "SkillRepo")}
}

func (r *skillRepo) Create(dbc dbctx.Context, rows []*types.Skill) ([]*types.Skill, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Skill{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *skillRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Skill, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Skill
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *skillRepo) ListByPathIDs(dbc dbctx.Context, pathIDs []uuid.UUID) ([]*types.Skill, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Skill
	if len(pathIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("learning_path_id IN ?", pathIDs).
		Order("position ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *skillRepo) Update(dbc dbctx.Context, row *types.Skill) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Omit("Projects").Save(row).Error
}

func (r *skillRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Skill{}).
		Where("id = ?", id).
		Updates(updates).Error
}
