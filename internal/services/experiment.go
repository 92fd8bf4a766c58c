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
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

type ExperimentView struct {
  *types.Experiment
  IsActive bool `json:"is_active"`
}

type CreateExperimentInput struct {
  Title          string
  Summary        string
  StartDate      time.Time
  EndDate        time.Time
  GoalID         *uuid.UUID
  DailyTaskTitle string
  DailyTaskXp    int
}

type UpdateExperimentInput struct {
  Title          *string
  Summary        *string
  DailyTaskTitle *string
  DailyTaskXp    *int
}

type ExperimentService interface {
  CreateExperiment(ctx context.Context, input CreateExperimentInput) (*ExperimentView, error)
  GetExperiment(ctx context.Context, experimentID uuid.UUID) (*ExperimentView, error)
  ListExperiments(ctx context.Context) ([]*ExperimentView, error)
  UpdateExperiment(ctx context.Context, experimentID uuid.UUID, input UpdateExperimentInput) (*ExperimentView, error)
  RecordReflection(ctx context.Context, experimentID uuid.UUID, reflection string, wouldRepeat *types.WouldRepeat) (*ExperimentView, error)
  SpawnDailyTask(ctx context.Context, experimentID uuid.UUID) (*types.Task, error)
  DeleteExperiment(ctx context.Context, experimentID uuid.UUID) error
}

type experimentService struct {
  db             *gorm.DB
  log            *logger.Logger
  experimentRepo repos.ExperimentRepo
  taskRepo       repos.TaskRepo
}

func NewExperimentService(
  db *gorm.DB,
  log *logger.Logger,
  experimentRepo repos.ExperimentRepo,
  taskRepo repos.TaskRepo,
) ExperimentService {
  return &experimentService{
    db:             db,
    log:            log.With("service", "ExperimentService"),
    experimentRepo: experimentRepo,
    taskRepo:       taskRepo,
  }
}

func experimentViewOf(e *types.Experiment) *ExperimentView {
  return &ExperimentView{Experiment: e, IsActive: e.ActiveOn(time.Now())}
}

func (es *experimentService) currentUserID(ctx context.Context) (uuid.UUID, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return uuid.Nil, apierr.Unauthorized("no authenticated user in context")
  }
  return rd.UserID, nil
}

func (es *experimentService) ownedExperiment(ctx context.Context, experimentID uuid.UUID) (*types.Experiment, error) {
  userID, err := es.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  experiments, eErr := es.experimentRepo.GetByIDs(ctx, nil, []uuid.UUID{experimentID})
  if eErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to load experiment: %w", eErr))
  }
  if len(experiments) == 0 || experiments[0].UserID != userID {
    return nil, apierr.NotFound("experiment not found")
  }
  return experiments[0], nil
}

func (es *experimentService) CreateExperiment(ctx context.Context, input CreateExperimentInput) (*ExperimentView, error) {
  userID, err := es.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  title := normalization.ParseInputString(input.Title)
  if title == "" {
    return nil, apierr.Validation("experiment title cannot be empty")
  }
  if input.EndDate.Before(input.StartDate) {
    return nil, apierr.Validation("experiment end date cannot precede its start date")
  }
  if input.DailyTaskXp < 0 {
    return nil, apierr.Validation("daily task xp cannot be negative")
  }
  experiment := &types.Experiment{
    ID:             uuid.New(),
    UserID:         userID,
    Title:          title,
    Summary:        normalization.ParseInputString(input.Summary),
    StartDate:      dateOnly(input.StartDate),
    EndDate:        dateOnly(input.EndDate),
    GoalID:         input.GoalID,
    DailyTaskTitle: normalization.ParseInputString(input.DailyTaskTitle),
    DailyTaskXp:    input.DailyTaskXp,
  }
  if _, cErr := es.experimentRepo.Create(ctx, nil, []*types.Experiment{experiment}); cErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to create experiment: %w", cErr))
  }
  return experimentViewOf(experiment), nil
}

func (es *experimentService) GetExperiment(ctx context.Context, experimentID uuid.UUID) (*ExperimentView, error) {
  experiment, err := es.ownedExperiment(ctx, experimentID)
  if err != nil {
    return nil, err
  }
  return experimentViewOf(experiment), nil
}

func (es *experimentService) ListExperiments(ctx context.Context) ([]*ExperimentView, error) {
  userID, err := es.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  experiments, eErr := es.experimentRepo.GetByUserID(ctx, nil, userID)
  if eErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to list experiments: %w", eErr))
  }
  views := make([]*ExperimentView, 0, len(experiments))
  for _, e := range experiments {
    views = append(views, experimentViewOf(e))
  }
  return views, nil
}

func (es *experimentService) UpdateExperiment(ctx context.Context, experimentID uuid.UUID, input UpdateExperimentInput) (*ExperimentView, error) {
  experiment, err := es.ownedExperiment(ctx, experimentID)
  if err != nil {
    return nil, err
  }
  if input.Title != nil {
    title := normalization.ParseInputString(*input.Title)
    if title == "" {
      return nil, apierr.Validation("experiment title cannot be empty")
    }
    experiment.Title = title
  }
  if input.Summary != nil {
    experiment.Summary = normalization.ParseInputString(*input.Summary)
  }
  if input.DailyTaskTitle != nil {
    experiment.DailyTaskTitle = normalization.ParseInputString(*input.DailyTaskTitle)
  }
  if input.DailyTaskXp != nil {
    if *input.DailyTaskXp < 0 {
      return nil, apierr.Validation("daily task xp cannot be negative")
    }
    experiment.DailyTaskXp = *input.DailyTaskXp
  }
  if sErr := es.experimentRepo.Save(ctx, nil, experiment); sErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to update experiment: %w", sErr))
  }
  return experimentViewOf(experiment), nil
}

func (es *experimentService) RecordReflection(ctx context.Context, experimentID uuid.UUID, reflection string, wouldRepeat *types.WouldRepeat) (*ExperimentView, error) {
  experiment, err := es.ownedExperiment(ctx, experimentID)
  if err != nil {
    return nil, err
  }
  if wouldRepeat != nil && *wouldRepeat != types.WouldRepeatYes && *wouldRepeat != types.WouldRepeatNo {
    return nil, apierr.Validation("would_repeat must be yes or no when given")
  }
  experiment.Reflection = normalization.ParseInputString(reflection)
  experiment.WouldRepeat = wouldRepeat
  if sErr := es.experimentRepo.Save(ctx, nil, experiment); sErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to record reflection: %w", sErr))
  }
  return experimentViewOf(experiment), nil
}

// SpawnDailyTask materializes today's task from the experiment's daily
// template. At most one task per experiment per day; re-requesting the same
// day returns the existing row.
func (es *experimentService) SpawnDailyTask(ctx context.Context, experimentID uuid.UUID) (*types.Task, error) {
  experiment, err := es.ownedExperiment(ctx, experimentID)
  if err != nil {
    return nil, err
  }
  if experiment.DailyTaskTitle == "" {
    return nil, apierr.Validation("experiment has no daily task template")
  }
  today := dateOnly(time.Now().UTC())
  if !experiment.ActiveOn(today) {
    return nil, apierr.Validation("experiment is not active today")
  }

  existing, gErr := es.taskRepo.GetBySourceAndDueDate(ctx, nil, types.TaskSourceExperiment, experiment.ID, today)
  if gErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to check for today's task: %w", gErr))
  }
  if len(existing) > 0 {
    return existing[0], nil
  }

  sourceID := experiment.ID
  task := &types.Task{
    ID:       uuid.New(),
    UserID:   experiment.UserID,
    Title:    experiment.DailyTaskTitle,
    XpReward: experiment.DailyTaskXp,
    Source:   types.TaskSourceExperiment,
    SourceID: &sourceID,
    DueDate:  &today,
  }
  if _, cErr := es.taskRepo.Create(ctx, nil, []*types.Task{task}); cErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to spawn daily task: %w", cErr))
  }
  return task, nil
}

func (es *experimentService) DeleteExperiment(ctx context.Context, experimentID uuid.UUID) error {
  experiment, err := es.ownedExperiment(ctx, experimentID)
  if err != nil {
    return err
  }
  if dErr := es.experimentRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{experiment.ID}); dErr != nil {
    return apierr.Internal(fmt.Errorf("failed to delete experiment: %w", dErr))
  }
  return nil
}
