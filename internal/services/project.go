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

type CreateProjectInput struct {
  Title       string
  Description string
  Subtasks    []string
}

type UpdateProjectInput struct {
  Title       *string
  Description *string
}

type ProjectService interface {
  CreateProject(ctx context.Context, input CreateProjectInput) (*types.Project, error)
  GetProject(ctx context.Context, projectID uuid.UUID) (*types.Project, error)
  ListProjects(ctx context.Context) ([]*types.Project, error)
  UpdateProject(ctx context.Context, projectID uuid.UUID, input UpdateProjectInput) (*types.Project, error)
  SetProjectCompleted(ctx context.Context, projectID uuid.UUID, completed bool) (*types.Project, error)
  DeleteProject(ctx context.Context, projectID uuid.UUID) error

  AddSubtask(ctx context.Context, projectID uuid.UUID, title string) (*types.ProjectSubtask, error)
  SetSubtaskCompleted(ctx context.Context, projectID, subtaskID uuid.UUID, completed bool) (*types.ProjectSubtask, error)
  ReorderSubtasks(ctx context.Context, projectID uuid.UUID, orderedIDs []uuid.UUID) (*types.Project, error)
  DeleteSubtask(ctx context.Context, projectID, subtaskID uuid.UUID) error
}

type projectService struct {
  db          *gorm.DB
  log         *logger.Logger
  projectRepo repos.ProjectRepo
}

func NewProjectService(db *gorm.DB, log *logger.Logger, projectRepo repos.ProjectRepo) ProjectService {
  return &projectService{
    db:          db,
    log:         log.With("service", "ProjectService"),
    projectRepo: projectRepo,
  }
}

func (ps *projectService) currentUserID(ctx context.Context) (uuid.UUID, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return uuid.Nil, apierr.Unauthorized("no authenticated user in context")
  }
  return rd.UserID, nil
}

func (ps *projectService) ownedProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (*types.Project, error) {
  userID, err := ps.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  projects, pErr := ps.projectRepo.GetByIDs(ctx, tx, []uuid.UUID{projectID})
  if pErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to load project: %w", pErr))
  }
  if len(projects) == 0 || projects[0].UserID != userID {
    return nil, apierr.NotFound("project not found")
  }
  return projects[0], nil
}

func (ps *projectService) CreateProject(ctx context.Context, input CreateProjectInput) (*types.Project, error) {
  userID, err := ps.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  title := normalization.ParseInputString(input.Title)
  if title == "" {
    return nil, apierr.Validation("project title cannot be empty")
  }
  project := &types.Project{
    ID:          uuid.New(),
    UserID:      userID,
    Title:       title,
    Description: normalization.ParseInputString(input.Description),
  }

  txErr := withTx(ctx, ps.db, func(tx *gorm.DB) error {
    if _, cErr := ps.projectRepo.Create(ctx, tx, []*types.Project{project}); cErr != nil {
      return apierr.Internal(fmt.Errorf("failed to create project: %w", cErr))
    }
    subtasks := make([]*types.ProjectSubtask, 0, len(input.Subtasks))
    for i, st := range input.Subtasks {
      stTitle := normalization.ParseInputString(st)
      if stTitle == "" {
        continue
      }
      subtasks = append(subtasks, &types.ProjectSubtask{
        ID:        uuid.New(),
        ProjectID: project.ID,
        Title:     stTitle,
        SortOrder: i,
      })
    }
    if len(subtasks) > 0 {
      if _, sErr := ps.projectRepo.CreateSubtasks(ctx, tx, subtasks); sErr != nil {
        return apierr.Internal(fmt.Errorf("failed to create subtasks: %w", sErr))
      }
      project.Subtasks = subtasks
    }
    return nil
  })
  if txErr != nil {
    return nil, txErr
  }
  return project, nil
}

func (ps *projectService) GetProject(ctx context.Context, projectID uuid.UUID) (*types.Project, error) {
  return ps.ownedProject(ctx, nil, projectID)
}

func (ps *projectService) ListProjects(ctx context.Context) ([]*types.Project, error) {
  userID, err := ps.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  projects, pErr := ps.projectRepo.GetByUserID(ctx, nil, userID)
  if pErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to list projects: %w", pErr))
  }
  return projects, nil
}

func (ps *projectService) UpdateProject(ctx context.Context, projectID uuid.UUID, input UpdateProjectInput) (*types.Project, error) {
  project, err := ps.ownedProject(ctx, nil, projectID)
  if err != nil {
    return nil, err
  }
  if input.Title != nil {
    title := normalization.ParseInputString(*input.Title)
    if title == "" {
      return nil, apierr.Validation("project title cannot be empty")
    }
    project.Title = title
  }
  if input.Description != nil {
    project.Description = normalization.ParseInputString(*input.Description)
  }
  if sErr := ps.projectRepo.Save(ctx, nil, project); sErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to update project: %w", sErr))
  }
  return project, nil
}

func (ps *projectService) SetProjectCompleted(ctx context.Context, projectID uuid.UUID, completed bool) (*types.Project, error) {
  project, err := ps.ownedProject(ctx, nil, projectID)
  if err != nil {
    return nil, err
  }
  if completed {
    now := time.Now().UTC()
    project.CompletedAt = &now
  } else {
    project.CompletedAt = nil
  }
  if sErr := ps.projectRepo.Save(ctx, nil, project); sErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to update project completion: %w", sErr))
  }
  return project, nil
}

func (ps *projectService) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
  project, err := ps.ownedProject(ctx, nil, projectID)
  if err != nil {
    return err
  }
  if dErr := ps.projectRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{project.ID}); dErr != nil {
    return apierr.Internal(fmt.Errorf("failed to delete project: %w", dErr))
  }
  return nil
}

func (ps *projectService) AddSubtask(ctx context.Context, projectID uuid.UUID, title string) (*types.ProjectSubtask, error) {
  project, err := ps.ownedProject(ctx, nil, projectID)
  if err != nil {
    return nil, err
  }
  title = normalization.ParseInputString(title)
  if title == "" {
    return nil, apierr.Validation("subtask title cannot be empty")
  }
  subtask := &types.ProjectSubtask{
    ID:        uuid.New(),
    ProjectID: project.ID,
    Title:     title,
    SortOrder: len(project.Subtasks),
  }
  if _, cErr := ps.projectRepo.CreateSubtasks(ctx, nil, []*types.ProjectSubtask{subtask}); cErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to add subtask: %w", cErr))
  }
  return subtask, nil
}

func (ps *projectService) ownedSubtask(ctx context.Context, projectID, subtaskID uuid.UUID) (*types.ProjectSubtask, error) {
  if _, err := ps.ownedProject(ctx, nil, projectID); err != nil {
    return nil, err
  }
  subtasks, sErr := ps.projectRepo.GetSubtasksByIDs(ctx, nil, []uuid.UUID{subtaskID})
  if sErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to load subtask: %w", sErr))
  }
  if len(subtasks) == 0 || subtasks[0].ProjectID != projectID {
    return nil, apierr.NotFound("subtask not found")
  }
  return subtasks[0], nil
}

func (ps *projectService) SetSubtaskCompleted(ctx context.Context, projectID, subtaskID uuid.UUID, completed bool) (*types.ProjectSubtask, error) {
  subtask, err := ps.ownedSubtask(ctx, projectID, subtaskID)
  if err != nil {
    return nil, err
  }
  if completed {
    now := time.Now().UTC()
    subtask.CompletedAt = &now
  } else {
    subtask.CompletedAt = nil
  }
  if sErr := ps.projectRepo.SaveSubtask(ctx, nil, subtask); sErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to update subtask: %w", sErr))
  }
  return subtask, nil
}

// ReorderSubtasks rewrites sort_order from the given id sequence. The list
// must name every subtask of the project exactly once.
func (ps *projectService) ReorderSubtasks(ctx context.Context, projectID uuid.UUID, orderedIDs []uuid.UUID) (*types.Project, error) {
  if _, err := ps.ownedProject(ctx, nil, projectID); err != nil {
    return nil, err
  }
  // Validate against a fresh read, not the preloaded association.
  subtasks, sErr := ps.projectRepo.GetSubtasksByProjectID(ctx, nil, projectID)
  if sErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to load subtasks: %w", sErr))
  }
  existing := map[uuid.UUID]bool{}
  for _, st := range subtasks {
    existing[st.ID] = true
  }
  if len(orderedIDs) != len(existing) {
    return nil, apierr.Validation("reorder must include every subtask exactly once")
  }
  seen := map[uuid.UUID]bool{}
  for _, id := range orderedIDs {
    if !existing[id] || seen[id] {
      return nil, apierr.Validation("reorder must include every subtask exactly once")
    }
    seen[id] = true
  }

  txErr := withTx(ctx, ps.db, func(tx *gorm.DB) error {
    for i, id := range orderedIDs {
      if uErr := ps.projectRepo.UpdateSubtaskSortOrder(ctx, tx, id, i); uErr != nil {
        return apierr.Internal(fmt.Errorf("failed to reorder subtasks: %w", uErr))
      }
    }
    return nil
  })
  if txErr != nil {
    return nil, txErr
  }
  return ps.ownedProject(ctx, nil, projectID)
}

func (ps *projectService) DeleteSubtask(ctx context.Context, projectID, subtaskID uuid.UUID) error {
  subtask, err := ps.ownedSubtask(ctx, projectID, subtaskID)
  if err != nil {
    return err
  }
  if dErr := ps.projectRepo.FullDeleteSubtasksByIDs(ctx, nil, []uuid.UUID{subtask.ID}); dErr != nil {
    return apierr.Internal(fmt.Errorf("failed to delete subtask: %w", dErr))
  }
  return nil
}
