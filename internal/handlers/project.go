package handlers

import (
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/services"
)

type ProjectHandler struct {
  projectService services.ProjectService
}

func NewProjectHandler(projectService services.ProjectService) *ProjectHandler {
  return &ProjectHandler{projectService: projectService}
}

func (ph *ProjectHandler) Create(c *gin.Context) {
  var req struct {
    Title       string   `json:"title"`
    Description string   `json:"description"`
    Subtasks    []string `json:"subtasks"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  project, err := ph.projectService.CreateProject(c.Request.Context(), services.CreateProjectInput{
    Title:       req.Title,
    Description: req.Description,
    Subtasks:    req.Subtasks,
  })
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, project)
}

func (ph *ProjectHandler) List(c *gin.Context) {
  projects, err := ph.projectService.ListProjects(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, projects)
}

func (ph *ProjectHandler) Get(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  project, gErr := ph.projectService.GetProject(c.Request.Context(), id)
  if gErr != nil {
    RespondError(c, gErr)
    return
  }
  RespondOK(c, project)
}

func (ph *ProjectHandler) Update(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  var req struct {
    Title       *string `json:"title"`
    Description *string `json:"description"`
  }
  if bErr := c.ShouldBindJSON(&req); bErr != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  project, uErr := ph.projectService.UpdateProject(c.Request.Context(), id, services.UpdateProjectInput{
    Title:       req.Title,
    Description: req.Description,
  })
  if uErr != nil {
    RespondError(c, uErr)
    return
  }
  RespondOK(c, project)
}

func (ph *ProjectHandler) SetCompleted(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  var req struct {
    Completed bool `json:"completed"`
  }
  if bErr := c.ShouldBindJSON(&req); bErr != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  project, uErr := ph.projectService.SetProjectCompleted(c.Request.Context(), id, req.Completed)
  if uErr != nil {
    RespondError(c, uErr)
    return
  }
  RespondOK(c, project)
}

func (ph *ProjectHandler) Delete(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  if dErr := ph.projectService.DeleteProject(c.Request.Context(), id); dErr != nil {
    RespondError(c, dErr)
    return
  }
  RespondOK(c, gin.H{"success": true})
}

func (ph *ProjectHandler) AddSubtask(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  var req struct {
    Title string `json:"title"`
  }
  if bErr := c.ShouldBindJSON(&req); bErr != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  subtask, aErr := ph.projectService.AddSubtask(c.Request.Context(), id, req.Title)
  if aErr != nil {
    RespondError(c, aErr)
    return
  }
  RespondCreated(c, subtask)
}

func (ph *ProjectHandler) SetSubtaskCompleted(c *gin.Context) {
  projectID, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  subtaskID, sErr := parseIDParam(c, "subtaskId")
  if sErr != nil {
    RespondError(c, sErr)
    return
  }
  var req struct {
    Completed bool `json:"completed"`
  }
  if bErr := c.ShouldBindJSON(&req); bErr != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  subtask, uErr := ph.projectService.SetSubtaskCompleted(c.Request.Context(), projectID, subtaskID, req.Completed)
  if uErr != nil {
    RespondError(c, uErr)
    return
  }
  RespondOK(c, subtask)
}

func (ph *ProjectHandler) ReorderSubtasks(c *gin.Context) {
  projectID, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  var req struct {
    SubtaskIDs []string `json:"subtask_ids"`
  }
  if bErr := c.ShouldBindJSON(&req); bErr != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  ids := make([]uuid.UUID, 0, len(req.SubtaskIDs))
  for _, raw := range req.SubtaskIDs {
    id, pErr := uuid.Parse(raw)
    if pErr != nil {
      RespondError(c, apierr.Validation("invalid subtask id"))
      return
    }
    ids = append(ids, id)
  }
  project, rErr := ph.projectService.ReorderSubtasks(c.Request.Context(), projectID, ids)
  if rErr != nil {
    RespondError(c, rErr)
    return
  }
  RespondOK(c, project)
}

func (ph *ProjectHandler) DeleteSubtask(c *gin.Context) {
  projectID, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  subtaskID, sErr := parseIDParam(c, "subtaskId")
  if sErr != nil {
    RespondError(c, sErr)
    return
  }
  if dErr := ph.projectService.DeleteSubtask(c.Request.Context(), projectID, subtaskID); dErr != nil {
    RespondError(c, dErr)
    return
  }
  RespondOK(c, gin.H{"success": true})
}
