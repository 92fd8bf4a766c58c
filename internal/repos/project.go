package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

type ProjectRepo interface {
  Create(ctx context.Context, tx *gorm.DB, projects []*types.Project) ([]*types.Project, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Project, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Project, error)
  Save(ctx context.Context, tx *gorm.DB, project *types.Project) error
  FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error

  CreateSubtasks(ctx context.Context, tx *gorm.DB, subtasks []*types.ProjectSubtask) ([]*types.ProjectSubtask, error)
  GetSubtasksByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ProjectSubtask, error)
  GetSubtasksByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.ProjectSubtask, error)
  SaveSubtask(ctx context.Context, tx *gorm.DB, subtask *types.ProjectSubtask) error
  UpdateSubtaskSortOrder(ctx context.Context, tx *gorm.DB, subtaskID uuid.UUID, sortOrder int) error
  FullDeleteSubtasksByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type projectRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
  repoLog := baseLog.With("repo", "ProjectRepo")
  return &projectRepo{db: db, log: repoLog}
}

func (r *projectRepo) Create(ctx context.Context, tx *gorm.DB, projects []*types.Project) ([]*types.Project, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(projects) == 0 {
    return []*types.Project{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&projects).Error; err != nil {
    return nil, err
  }
  return projects, nil
}

func (r *projectRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Project, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Project
  if len(ids) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Preload("Subtasks", func(db *gorm.DB) *gorm.DB {
      return db.Order("sort_order ASC")
    }).
    Where("id IN ?", ids).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *projectRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Project, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Project
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Preload("Subtasks", func(db *gorm.DB) *gorm.DB {
      return db.Order("sort_order ASC")
    }).
    Where("user_id = ?", userID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *projectRepo) Save(ctx context.Context, tx *gorm.DB, project *types.Project) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if project == nil {
    return nil
  }

  return transaction.WithContext(ctx).Omit("Subtasks").Save(project).Error
}

func (r *projectRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(ids) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Delete(&types.Project{}).Error; err != nil {
    return err
  }
  return nil
}

func (r *projectRepo) CreateSubtasks(ctx context.Context, tx *gorm.DB, subtasks []*types.ProjectSubtask) ([]*types.ProjectSubtask, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(subtasks) == 0 {
    return []*types.ProjectSubtask{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&subtasks).Error; err != nil {
    return nil, err
  }
  return subtasks, nil
}

func (r *projectRepo) GetSubtasksByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ProjectSubtask, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.ProjectSubtask
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

func (r *projectRepo) GetSubtasksByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.ProjectSubtask, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.ProjectSubtask
  if projectID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("project_id = ?", projectID).
    Order("sort_order ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *projectRepo) SaveSubtask(ctx context.Context, tx *gorm.DB, subtask *types.ProjectSubtask) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if subtask == nil {
    return nil
  }

  return transaction.WithContext(ctx).Save(subtask).Error
}

func (r *projectRepo) UpdateSubtaskSortOrder(ctx context.Context, tx *gorm.DB, subtaskID uuid.UUID, sortOrder int) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).
    Model(&types.ProjectSubtask{}).
    Where("id = ?", subtaskID).
    Update("sort_order", sortOrder).Error
}

func (r *projectRepo) FullDeleteSubtasksByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(ids) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Delete(&types.ProjectSubtask{}).Error; err != nil {
    return err
  }
  return nil
}
