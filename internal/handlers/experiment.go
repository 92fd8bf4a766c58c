package handlers

import (
  "github.com/gin-gonic/gin"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/services"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

type ExperimentHandler struct {
  experimentService services.ExperimentService
}

func NewExperimentHandler(experimentService services.ExperimentService) *ExperimentHandler {
  return &ExperimentHandler{experimentService: experimentService}
}

func (eh *ExperimentHandler) Create(c *gin.Context) {
  var req struct {
    Title          string `json:"title"`
    Summary        string `json:"summary"`
    StartDate      string `json:"start_date"`
    EndDate        string `json:"end_date"`
    GoalID         string `json:"goal_id"`
    DailyTaskTitle string `json:"daily_task_title"`
    DailyTaskXp    int    `json:"daily_task_xp"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  startDate, sErr := parseDate(req.StartDate)
  if sErr != nil {
    RespondError(c, sErr)
    return
  }
  endDate, eErr := parseDate(req.EndDate)
  if eErr != nil {
    RespondError(c, eErr)
    return
  }
  goalID, gErr := parseOptionalID(req.GoalID)
  if gErr != nil {
    RespondError(c, gErr)
    return
  }
  experiment, err := eh.experimentService.CreateExperiment(c.Request.Context(), services.CreateExperimentInput{
    Title:          req.Title,
    Summary:        req.Summary,
    StartDate:      startDate,
    EndDate:        endDate,
    GoalID:         goalID,
    DailyTaskTitle: req.DailyTaskTitle,
    DailyTaskXp:    req.DailyTaskXp,
  })
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, experiment)
}

func (eh *ExperimentHandler) List(c *gin.Context) {
  experiments, err := eh.experimentService.ListExperiments(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, experiments)
}

func (eh *ExperimentHandler) Get(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  experiment, gErr := eh.experimentService.GetExperiment(c.Request.Context(), id)
  if gErr != nil {
    RespondError(c, gErr)
    return
  }
  RespondOK(c, experiment)
}

func (eh *ExperimentHandler) Update(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  var req struct {
    Title          *string `json:"title"`
    Summary        *string `json:"summary"`
    DailyTaskTitle *string `json:"daily_task_title"`
    DailyTaskXp    *int    `json:"daily_task_xp"`
  }
  if bErr := c.ShouldBindJSON(&req); bErr != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  experiment, uErr := eh.experimentService.UpdateExperiment(c.Request.Context(), id, services.UpdateExperimentInput{
    Title:          req.Title,
    Summary:        req.Summary,
    DailyTaskTitle: req.DailyTaskTitle,
    DailyTaskXp:    req.DailyTaskXp,
  })
  if uErr != nil {
    RespondError(c, uErr)
    return
  }
  RespondOK(c, experiment)
}

func (eh *ExperimentHandler) Reflect(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  var req struct {
    Reflection  string  `json:"reflection"`
    WouldRepeat *string `json:"would_repeat"`
  }
  if bErr := c.ShouldBindJSON(&req); bErr != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  var wouldRepeat *types.WouldRepeat
  if req.WouldRepeat != nil && *req.WouldRepeat != "" {
    wr := types.WouldRepeat(*req.WouldRepeat)
    wouldRepeat = &wr
  }
  experiment, rErr := eh.experimentService.RecordReflection(c.Request.Context(), id, req.Reflection, wouldRepeat)
  if rErr != nil {
    RespondError(c, rErr)
    return
  }
  RespondOK(c, experiment)
}

func (eh *ExperimentHandler) SpawnDailyTask(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  task, sErr := eh.experimentService.SpawnDailyTask(c.Request.Context(), id)
  if sErr != nil {
    RespondError(c, sErr)
    return
  }
  RespondCreated(c, task)
}

func (eh *ExperimentHandler) Delete(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  if dErr := eh.experimentService.DeleteExperiment(c.Request.Context(), id); dErr != nil {
    RespondError(c, dErr)
    return
  }
  RespondOK(c, gin.H{"success": true})
}
