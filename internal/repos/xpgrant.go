package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

// XpGrantRepo has no update method on purpose: grants are immutable and
// corrections go through delete + re-create.
type XpGrantRepo interface {
  Create(ctx context.Context, tx *gorm.DB, grants []*types.XpGrant) ([]*types.XpGrant, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.XpGrant, error)
  GetByStatID(ctx context.Context, tx *gorm.DB, statID uuid.UUID) ([]*types.XpGrant, error)
  GetBySource(ctx context.Context, tx *gorm.DB, sourceType types.XpSourceType, sourceID uuid.UUID) ([]*types.XpGrant, error)
  FullDeleteBySource(ctx context.Context, tx *gorm.DB, sourceType types.XpSourceType, sourceID uuid.UUID) error
}

type xpGrantRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewXpGrantRepo(db *gorm.DB, baseLog *logger.Logger) XpGrantRepo {
  repoLog := baseLog.With("repo", "XpGrantRepo")
  return &xpGrantRepo{db: db, log: repoLog}
}

func (r *xpGrantRepo) Create(ctx context.Context, tx *gorm.DB, grants []*types.XpGrant) ([]*types.XpGrant, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(grants) == 0 {
    return []*types.XpGrant{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&grants).Error; err != nil {
    return nil, err
  }
  return grants, nil
}

func (r *xpGrantRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.XpGrant, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.XpGrant
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *xpGrantRepo) GetByStatID(ctx context.Context, tx *gorm.DB, statID uuid.UUID) ([]*types.XpGrant, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.XpGrant
  if statID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("stat_id = ?", statID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *xpGrantRepo) GetBySource(ctx context.Context, tx *gorm.DB, sourceType types.XpSourceType, sourceID uuid.UUID) ([]*types.XpGrant, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.XpGrant
  if sourceID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("source_type = ? AND source_id = ?", sourceType, sourceID).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *xpGrantRepo) FullDeleteBySource(ctx context.Context, tx *gorm.DB, sourceType types.XpSourceType, sourceID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if sourceID == uuid.Nil {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("source_type = ? AND source_id = ?", sourceType, sourceID).
    Delete(&types.XpGrant{}).Error; err != nil {
    return err
  }
  return nil
}
