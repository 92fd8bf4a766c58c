package handlers

import (
  "time"

  "github.com/gin-gonic/gin"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/services"
)

type JournalHandler struct {
  journalService services.JournalService
}

func NewJournalHandler(journalService services.JournalService) *JournalHandler {
  return &JournalHandler{journalService: journalService}
}

func parseDate(value string) (time.Time, error) {
  d, err := time.Parse("2006-01-02", value)
  if err != nil {
    return time.Time{}, apierr.Validation("date must be formatted YYYY-MM-DD")
  }
  return d, nil
}

func (jh *JournalHandler) Create(c *gin.Context) {
  var req struct {
    Date    string `json:"date"`
    Content string `json:"content"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  date, dErr := parseDate(req.Date)
  if dErr != nil {
    RespondError(c, dErr)
    return
  }
  entry, err := jh.journalService.CreateEntry(c.Request.Context(), date, req.Content)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, entry)
}

func (jh *JournalHandler) List(c *gin.Context) {
  if dateParam := c.Query("date"); dateParam != "" {
    date, dErr := parseDate(dateParam)
    if dErr != nil {
      RespondError(c, dErr)
      return
    }
    entry, err := jh.journalService.GetEntryByDate(c.Request.Context(), date)
    if err != nil {
      RespondError(c, err)
      return
    }
    RespondOK(c, entry)
    return
  }
  entries, err := jh.journalService.ListEntries(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, entries)
}

func (jh *JournalHandler) Get(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  entry, gErr := jh.journalService.GetEntry(c.Request.Context(), id)
  if gErr != nil {
    RespondError(c, gErr)
    return
  }
  RespondOK(c, entry)
}

func (jh *JournalHandler) Save(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  var req struct {
    Content string `json:"content"`
  }
  if bErr := c.ShouldBindJSON(&req); bErr != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  entry, sErr := jh.journalService.SaveEntry(c.Request.Context(), id, req.Content)
  if sErr != nil {
    RespondError(c, sErr)
    return
  }
  RespondOK(c, entry)
}

func (jh *JournalHandler) Reopen(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  entry, rErr := jh.journalService.ReopenEntry(c.Request.Context(), id)
  if rErr != nil {
    RespondError(c, rErr)
    return
  }
  RespondOK(c, entry)
}

func (jh *JournalHandler) StartReflection(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  entry, sErr := jh.journalService.StartReflection(c.Request.Context(), id)
  if sErr != nil {
    RespondError(c, sErr)
    return
  }
  RespondOK(c, entry)
}

func (jh *JournalHandler) AddMessage(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  var req struct {
    Message string `json:"message"`
  }
  if bErr := c.ShouldBindJSON(&req); bErr != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  entry, mErr := jh.journalService.AddMessage(c.Request.Context(), id, req.Message)
  if mErr != nil {
    RespondError(c, mErr)
    return
  }
  RespondOK(c, entry)
}

func (jh *JournalHandler) Finish(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  entry, fErr := jh.journalService.FinishEntry(c.Request.Context(), id)
  if fErr != nil {
    RespondError(c, fErr)
    return
  }
  RespondOK(c, entry)
}

func (jh *JournalHandler) Delete(c *gin.Context) {
  id, err := parseIDParam(c, "id")
  if err != nil {
    RespondError(c, err)
    return
  }
  if dErr := jh.journalService.DeleteEntry(c.Request.Context(), id); dErr != nil {
    RespondError(c, dErr)
    return
  }
  RespondOK(c, gin.H{"success": true})
}
