package services

import (
  "context"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/normalization"
  "github.com/robert-crandall/journal-app-sub007/internal/repos"
  "github.com/robert-crandall/journal-app-sub007/internal/requestdata"
  "github.com/robert-crandall/journal-app-sub007/internal/sse"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

type CreateTaskInput struct {
  Title       string
  Description string
  XpReward    int
  StatID      *uuid.UUID
  DueDate     *time.Time
}

type UpdateTaskInput struct {
  Title       *string
  Description *string
  XpReward    *int
  StatID      *uuid.UUID
  ClearStat   bool
  DueDate     *time.Time
  ClearDue    bool
}

type TaskService interface {
  CreateTask(ctx context.Context, input CreateTaskInput) (*types.Task, error)
  GetTask(ctx context.Context, taskID uuid.UUID) (*types.Task, error)
  ListTasks(ctx context.Context) ([]*types.Task, error)
  UpdateTask(ctx context.Context, taskID uuid.UUID, input UpdateTaskInput) (*types.Task, error)
  CompleteTask(ctx context.Context, taskID uuid.UUID) (*types.Task, error)
  DeleteTask(ctx context.Context, taskID uuid.UUID) error
}

type taskService struct {
  db          *gorm.DB
  log         *logger.Logger
  taskRepo    repos.TaskRepo
  statService StatService
  hub         *sse.SSEHub
}

func NewTaskService(
  db *gorm.DB,
  log *logger.Logger,
  taskRepo repos.TaskRepo,
  statService StatService,
  hub *sse.SSEHub,
) TaskService {
  return &taskService{
    db:          db,
    log:         log.With("service", "TaskService"),
    taskRepo:    taskRepo,
    statService: statService,
    hub:         hub,
  }
}

func (ts *taskService) currentUserID(ctx context.Context) (uuid.UUID, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return uuid.Nil, apierr.Unauthorized("no authenticated user in context")
  }
  return rd.UserID, nil
}

func (ts *taskService) ownedTask(ctx context.Context, tx *gorm.DB, taskID uuid.UUID) (*types.Task, error) {
  userID, err := ts.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  tasks, tErr := ts.taskRepo.GetByIDs(ctx, tx, []uuid.UUID{taskID})
  if tErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to load task: %w", tErr))
  }
  if len(tasks) == 0 || tasks[0].UserID != userID {
    return nil, apierr.NotFound("task not found")
  }
  return tasks[0], nil
}

func (ts *taskService) CreateTask(ctx context.Context, input CreateTaskInput) (*types.Task, error) {
  userID, err := ts.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  title := normalization.ParseInputString(input.Title)
  if title == "" {
    return nil, apierr.Validation("task title cannot be empty")
  }
  if input.XpReward < 0 {
    return nil, apierr.Validation("xp reward cannot be negative")
  }
  task := &types.Task{
    ID:          uuid.New(),
    UserID:      userID,
    Title:       title,
    Description: normalization.ParseInputString(input.Description),
    XpReward:    input.XpReward,
    StatID:      input.StatID,
    Source:      types.TaskSourceUser,
    DueDate:     input.DueDate,
  }
  if _, cErr := ts.taskRepo.Create(ctx, nil, []*types.Task{task}); cErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to create task: %w", cErr))
  }
  return task, nil
}

func (ts *taskService) GetTask(ctx context.Context, taskID uuid.UUID) (*types.Task, error) {
  return ts.ownedTask(ctx, nil, taskID)
}

func (ts *taskService) ListTasks(ctx context.Context) ([]*types.Task, error) {
  userID, err := ts.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  tasks, tErr := ts.taskRepo.GetByUserID(ctx, nil, userID)
  if tErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to list tasks: %w", tErr))
  }
  return tasks, nil
}

func (ts *taskService) UpdateTask(ctx context.Context, taskID uuid.UUID, input UpdateTaskInput) (*types.Task, error) {
  task, err := ts.ownedTask(ctx, nil, taskID)
  if err != nil {
    return nil, err
  }
  if task.CompletedAt != nil {
    return nil, apierr.Validation("completed tasks cannot be edited")
  }
  if input.Title != nil {
    title := normalization.ParseInputString(*input.Title)
    if title == "" {
      return nil, apierr.Validation("task title cannot be empty")
    }
    task.Title = title
  }
  if input.Description != nil {
    task.Description = normalization.ParseInputString(*input.Description)
  }
  if input.XpReward != nil {
    if *input.XpReward < 0 {
      return nil, apierr.Validation("xp reward cannot be negative")
    }
    task.XpReward = *input.XpReward
  }
  if input.ClearStat {
    task.StatID = nil
  } else if input.StatID != nil {
    task.StatID = input.StatID
  }
  if input.ClearDue {
    task.DueDate = nil
  } else if input.DueDate != nil {
    task.DueDate = input.DueDate
  }
  if sErr := ts.taskRepo.Save(ctx, nil, task); sErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to update task: %w", sErr))
  }
  return task, nil
}

// CompleteTask sets completed_at and grants the task's XP to its linked stat
// in the same transaction. A task completes at most once.
func (ts *taskService) CompleteTask(ctx context.Context, taskID uuid.UUID) (*types.Task, error) {
  task, err := ts.ownedTask(ctx, nil, taskID)
  if err != nil {
    return nil, err
  }
  if task.CompletedAt != nil {
    return nil, apierr.Conflict("task is already complete")
  }

  now := time.Now().UTC()
  txErr := withTx(ctx, ts.db, func(tx *gorm.DB) error {
    task.CompletedAt = &now
    if sErr := ts.taskRepo.Save(ctx, tx, task); sErr != nil {
      return apierr.Internal(fmt.Errorf("failed to mark task complete: %w", sErr))
    }
    if task.StatID != nil && task.XpReward > 0 {
      if _, gErr := ts.statService.GrantXP(ctx, tx, task.UserID, GrantInput{
        StatID:     *task.StatID,
        Amount:     task.XpReward,
        SourceType: types.XpSourceTask,
        SourceID:   task.ID,
        Reason:     fmt.Sprintf("Completed task %q", task.Title),
      }); gErr != nil {
        return gErr
      }
    }
    return nil
  })
  if txErr != nil {
    return nil, txErr
  }

  ts.hub.BroadcastToUser(task.UserID, sse.SSEEventTaskCompleted, map[string]any{
    "task_id":   task.ID,
    "title":     task.Title,
    "xp_reward": task.XpReward,
  })
  return task, nil
}

func (ts *taskService) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
  task, err := ts.ownedTask(ctx, nil, taskID)
  if err != nil {
    return err
  }
  return withTx(ctx, ts.db, func(tx *gorm.DB) error {
    if task.CompletedAt != nil {
      if dErr := ts.statService.DeleteGrantsBySource(ctx, tx, types.XpSourceTask, task.ID); dErr != nil {
        return dErr
      }
    }
    if dErr := ts.taskRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{task.ID}); dErr != nil {
      return apierr.Internal(fmt.Errorf("failed to delete task: %w", dErr))
    }
    return nil
  })
}
