package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

type ExperimentRepo interface {
  Create(ctx context.Context, tx *gorm.DB, experiments []*types.Experiment) ([]*types.Experiment, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Experiment, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Experiment, error)
  Save(ctx context.Context, tx *gorm.DB, experiment *types.Experiment) error
  FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type experimentRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewExperimentRepo(db *gorm.DB, baseLog *logger.Logger) ExperimentRepo {
  repoLog := baseLog.With("repo", "ExperimentRepo")
  return &experimentRepo{db: db, log: repoLog}
}

func (r *experimentRepo) Create(ctx context.Context, tx *gorm.DB, experiments []*types.Experiment) ([]*types.Experiment, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(experiments) == 0 {
    return []*types.Experiment{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&experiments).Error; err != nil {
    return nil, err
  }
  return experiments, nil
}

func (r *experimentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Experiment, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Experiment
  if len(ids) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *experimentRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Experiment, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Experiment
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("start_date DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *experimentRepo) Save(ctx context.Context, tx *gorm.DB, experiment *types.Experiment) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if experiment == nil {
    return nil
  }

  return transaction.WithContext(ctx).Save(experiment).Error
}

func (r *experimentRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(ids) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Delete(&types.Experiment{}).Error; err != nil {
    return err
  }
  return nil
}
