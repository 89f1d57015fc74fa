package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/skilltrail-backend/internal/domain"
	"github.com/yungbote/skilltrail-backend/internal/pkg/dbctx"
	"github.com/yungbote/skilltrail-backend/internal/pkg/logger"
)

type LearningPathRepo interface {
	Create(dbc dbctx.Context, rows []*types.LearningPath) ([]*types.LearningPath, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LearningPath, error)
	// GetActiveByUser loads the active plan with skills and projects attached
	// in stored order.
	GetActiveByUser(dbc dbctx.Context, userID uuid.UUID) (*types.LearningPath, error)
	// GetActiveByUserForUpdate locks the active plan row for the duration of
	// the surrounding transaction. Children are not preloaded; load them under
	// the same lock.
	GetActiveByUserForUpdate(dbc dbctx.Context, userID uuid.UUID) (*types.LearningPath, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.LearningPath, error)

	Update(dbc dbctx.Context, row *types.LearningPath) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// DeactivateByUser clears is_active on every plan of the user and returns
	// how many rows changed.
	DeactivateByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
}

type learningPathRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningPathRepo(db *gorm.DB, baseLog *logger.Logger) LearningPathRepo {
	return &learningPathRepo{db: db, log: baseLog.With("repo", "LearningPathRepo")}
}

func (r *learningPathRepo) Create(dbc dbctx.Context, rows []*types.LearningPath) ([]*types.LearningPath, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.LearningPath{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *learningPathRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LearningPath, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.LearningPath
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *learningPathRepo) GetActiveByUser(dbc dbctx.Context, userID uuid.UUID) (*types.LearningPath, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var out []*types.LearningPath
	if err := t.WithContext(dbc.Ctx).
		Preload("Skills", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Skills.Projects", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *learningPathRepo) GetActiveByUserForUpdate(dbc dbctx.Context, userID uuid.UUID) (*types.LearningPath, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var out []*types.LearningPath
	if err := t.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *learningPathRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.LearningPath, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.LearningPath
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningPathRepo) Update(dbc dbctx.Context, row *types.LearningPath) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Omit("Skills").Save(row).Error
}

func (r *learningPathRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.LearningPath{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *learningPathRepo) DeactivateByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.LearningPath{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
