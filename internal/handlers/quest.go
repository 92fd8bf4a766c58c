package handlers

import (
  "github.com/gin-gonic/gin"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/services"
)

type QuestHandler struct {
  questService services.QuestService
}

func NewQuestHandler(questService services.QuestService) *QuestHandler {
  return &QuestHandler{questService: questService}
}

func (qh *QuestHandler) Create(c *gin.Context) {
  var req struct {
    Title     string `json:"title"`
    Summary   string `json:"summary"`
    StartDate string `json:"start_date"`
    EndDate   string `json:"end_date"`
    GoalID    string `json:"goal_id"`
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
  endDate, eErr := parseOptionalDate(req.EndDate)
  if eErr != nil {
    RespondError(c, eErr)
    return
  }
  goalID, gErr := parseOptionalID(req.GoalID)
  if gErr != nil {
    RespondError(c, gErr)
    return
  }
  quest, err := qh.questService.CreateQuest(c.Request.Context(), services.CreateQuestInput{
    Title:     req.Title,
    Summary:   req.Summary,
    StartDate: startDate,
    EndDate:   endDate,
    GoalID:    goalID,
  })
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, quest)
}

func (qh *QuestHandler) List(c *gin.Context) {
  quests, err := qh.questService.ListQuests(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, quests)
}

func (qh *QuestHandler) Get(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  quest, gErr := qh.questService.GetQuest(c.Request.Context(), id)
  if gErr != nil {
    RespondError(c, gErr)
    return
  }
  RespondOK(c, quest)
}

func (qh *QuestHandler) Update(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  var req struct {
    Title   *string `json:"title"`
    Summary *string `json:"summary"`
    EndDate *string `json:"end_date"`
  }
  if bErr := c.ShouldBindJSON(&req); bErr != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  input := services.UpdateQuestInput{
    Title:   req.Title,
    Summary: req.Summary,
  }
  if req.EndDate != nil {
    if *req.EndDate == "" {
      input.ClearEnd = true
    } else {
      endDate, eErr := parseOptionalDate(*req.EndDate)
      if eErr != nil {
        RespondError(c, eErr)
        return
      }
      input.EndDate = endDate
    }
  }
  quest, uErr := qh.questService.UpdateQuest(c.Request.Context(), id, input)
  if uErr != nil {
    RespondError(c, uErr)
    return
  }
  RespondOK(c, quest)
}

func (qh *QuestHandler) Delete(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  if dErr := qh.questService.DeleteQuest(c.Request.Context(), id); dErr != nil {
    RespondError(c, dErr)
    return
  }
  RespondOK(c, gin.H{"success": true})
}
