package handlers

import (
  "github.com/gin-gonic/gin"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/services"
)

type GoalHandler struct {
  goalService services.GoalService
}

func NewGoalHandler(goalService services.GoalService) *GoalHandler {
  return &GoalHandler{goalService: goalService}
}

func (gh *GoalHandler) Create(c *gin.Context) {
  var req struct {
    Title                 string   `json:"title"`
    Description           string   `json:"description"`
    Tags                  []string `json:"tags"`
    IncludeInAiGeneration *bool    `json:"include_in_ai_generation"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  goal, err := gh.goalService.CreateGoal(c.Request.Context(), services.CreateGoalInput{
    Title:                 req.Title,
    Description:           req.Description,
    Tags:                  req.Tags,
    IncludeInAiGeneration: req.IncludeInAiGeneration,
  })
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, goal)
}

func (gh *GoalHandler) List(c *gin.Context) {
  goals, err := gh.goalService.ListGoals(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, goals)
}

func (gh *GoalHandler) Get(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  goal, gErr := gh.goalService.GetGoal(c.Request.Context(), id)
  if gErr != nil {
    RespondError(c, gErr)
    return
  }
  RespondOK(c, goal)
}

func (gh *GoalHandler) Update(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  var req struct {
    Title                 *string  `json:"title"`
    Description           *string  `json:"description"`
    Tags                  []string `json:"tags"`
    IsActive              *bool    `json:"is_active"`
    IsArchived            *bool    `json:"is_archived"`
    IncludeInAiGeneration *bool    `json:"include_in_ai_generation"`
  }
  if bErr := c.ShouldBindJSON(&req); bErr != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  goal, uErr := gh.goalService.UpdateGoal(c.Request.Context(), id, services.UpdateGoalInput{
    Title:                 req.Title,
    Description:           req.Description,
    Tags:                  req.Tags,
    IsActive:              req.IsActive,
    IsArchived:            req.IsArchived,
    IncludeInAiGeneration: req.IncludeInAiGeneration,
  })
  if uErr != nil {
    RespondError(c, uErr)
    return
  }
  RespondOK(c, goal)
}

func (gh *GoalHandler) Delete(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  if dErr := gh.goalService.DeleteGoal(c.Request.Context(), id); dErr != nil {
    RespondError(c, dErr)
    return
  }
  RespondOK(c, gin.H{"success": true})
}
