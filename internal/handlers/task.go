package handlers

import (
  "time"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/services"
)

type TaskHandler struct {
  taskService    services.TaskService
  taskGenService services.TaskGenService
}

func NewTaskHandler(taskService services.TaskService, taskGenService services.TaskGenService) *TaskHandler {
  return &TaskHandler{taskService: taskService, taskGenService: taskGenService}
}

func parseOptionalDate(value string) (*time.Time, error) {
  if value == "" {
    return nil, nil
  }
  d, err := parseDate(value)
  if err != nil {
    return nil, err
  }
  return &d, nil
}

func parseOptionalID(value string) (*uuid.UUID, error) {
  if value == "" {
    return nil, nil
  }
  id, err := uuid.Parse(value)
  if err != nil {
    return nil, apierr.Validation("invalid id")
  }
  return &id, nil
}

func (th *TaskHandler) Create(c *gin.Context) {
  var req struct {
    Title       string `json:"title"`
    Description string `json:"description"`
    XpReward    int    `json:"xp_reward"`
    StatID      string `json:"stat_id"`
    DueDate     string `json:"due_date"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  statID, sErr := parseOptionalID(req.StatID)
  if sErr != nil {
    RespondError(c, sErr)
    return
  }
  dueDate, dErr := parseOptionalDate(req.DueDate)
  if dErr != nil {
    RespondError(c, dErr)
    return
  }
  task, err := th.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
    Title:       req.Title,
    Description: req.Description,
    XpReward:    req.XpReward,
    StatID:      statID,
    DueDate:     dueDate,
  })
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, task)
}

func (th *TaskHandler) List(c *gin.Context) {
  tasks, err := th.taskService.ListTasks(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, tasks)
}

func (th *TaskHandler) Get(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  task, gErr := th.taskService.GetTask(c.Request.Context(), id)
  if gErr != nil {
    RespondError(c, gErr)
    return
  }
  RespondOK(c, task)
}

func (th *TaskHandler) Update(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  var req struct {
    Title       *string `json:"title"`
    Description *string `json:"description"`
    XpReward    *int    `json:"xp_reward"`
    StatID      *string `json:"stat_id"`
    DueDate     *string `json:"due_date"`
  }
  if bErr := c.ShouldBindJSON(&req); bErr != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  input := services.UpdateTaskInput{
    Title:       req.Title,
    Description: req.Description,
    XpReward:    req.XpReward,
  }
  if req.StatID != nil {
    if *req.StatID == "" {
      input.ClearStat = true
    } else {
      statID, sErr := parseOptionalID(*req.StatID)
      if sErr != nil {
        RespondError(c, sErr)
        return
      }
      input.StatID = statID
    }
  }
  if req.DueDate != nil {
    if *req.DueDate == "" {
      input.ClearDue = true
    } else {
      dueDate, dErr := parseOptionalDate(*req.DueDate)
      if dErr != nil {
        RespondError(c, dErr)
        return
      }
      input.DueDate = dueDate
    }
  }
  task, uErr := th.taskService.UpdateTask(c.Request.Context(), id, input)
  if uErr != nil {
    RespondError(c, uErr)
    return
  }
  RespondOK(c, task)
}

func (th *TaskHandler) Complete(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  task, cErr := th.taskService.CompleteTask(c.Request.Context(), id)
  if cErr != nil {
    RespondError(c, cErr)
    return
  }
  RespondOK(c, task)
}

func (th *TaskHandler) Delete(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  if dErr := th.taskService.DeleteTask(c.Request.Context(), id); dErr != nil {
    RespondError(c, dErr)
    return
  }
  RespondOK(c, gin.H{"success": true})
}

func (th *TaskHandler) Generate(c *gin.Context) {
  var req struct {
    Intent string `json:"intent"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  tasks, err := th.taskGenService.GenerateTasks(c.Request.Context(), req.Intent)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, tasks)
}
