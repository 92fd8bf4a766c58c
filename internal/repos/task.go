package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

type TaskRepo interface {
  Create(ctx context.Context, tx *gorm.DB, tasks []*types.Task) ([]*types.Task, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Task, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Task, error)
  GetBySourceAndDueDate(ctx context.Context, tx *gorm.DB, source types.TaskSource, sourceID uuid.UUID, dueDate time.Time) ([]*types.Task, error)
  Save(ctx context.Context, tx *gorm.DB, task *types.Task) error
  FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type taskRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
  repoLog := baseLog.With("repo", "TaskRepo")
  return &taskRepo{db: db, log: repoLog}
}

func (r *taskRepo) Create(ctx context.Context, tx *gorm.DB, tasks []*types.Task) ([]*types.Task, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(tasks) == 0 {
    return []*types.Task{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&tasks).Error; err != nil {
    return nil, err
  }
  return tasks, nil
}

func (r *taskRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Task, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Task
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

func (r *taskRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Task, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Task
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

func (r *taskRepo) GetBySourceAndDueDate(ctx context.Context, tx *gorm.DB, source types.TaskSource, sourceID uuid.UUID, dueDate time.Time) ([]*types.Task, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Task
  if sourceID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("source = ? AND source_id = ? AND due_date = ?", source, sourceID, dueDate).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *taskRepo) Save(ctx context.Context, tx *gorm.DB, task *types.Task) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if task == nil {
    return nil
  }

  return transaction.WithContext(ctx).Save(task).Error
}

func (r *taskRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(ids) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Delete(&types.Task{}).Error; err != nil {
    return err
  }
  return nil
}
