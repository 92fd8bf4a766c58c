package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/robert-crandall/journal-app-sub007/internal/handlers"
  "github.com/robert-crandall/journal-app-sub007/internal/middleware"
)

type RouterConfig struct {
  AuthHandler       *handlers.AuthHandler
  AuthMiddleware    *middleware.AuthMiddleware
  UserHandler       *handlers.UserHandler
  StatHandler       *handlers.StatHandler
  JournalHandler    *handlers.JournalHandler
  TaskHandler       *handlers.TaskHandler
  QuestHandler      *handlers.QuestHandler
  ExperimentHandler *handlers.ExperimentHandler
  ProjectHandler    *handlers.ProjectHandler
  GoalHandler       *handlers.GoalHandler
  FamilyHandler     *handlers.FamilyHandler
  WeatherHandler    *handlers.WeatherHandler
  SSEHandler        *handlers.SSEHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:80",
      "http://localhost:3000",
      "http://localhost:5173",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

  // ===============
  // || Public    ||
  // ===============
  router.GET("/healthcheck", handlers.HealthCheck)
  api := router.Group("/api")
  {
    api.POST("/register", cfg.AuthHandler.Register)
    api.POST("/login", cfg.AuthHandler.Login)
  }

  // ===============
  // || Protected ||
  // ===============
  protected := router.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  // Auth
  protected.POST("/refresh", cfg.AuthHandler.Refresh)
  protected.POST("/logout", cfg.AuthHandler.Logout)
  // SSE
  protected.GET("/sse/stream", cfg.SSEHandler.SSEStream)
  protected.POST("/sse/subscribe", cfg.SSEHandler.SSESubscribe)
  protected.POST("/sse/unsubscribe", cfg.SSEHandler.SSEUnsubscribe)
  // User
  protected.GET("/user", cfg.UserHandler.GetMe)
  protected.PUT("/user/name", cfg.UserHandler.UpdateName)
  protected.PUT("/user/timezone", cfg.UserHandler.UpdateTimezone)
  protected.PUT("/user/zip", cfg.UserHandler.UpdateZipCode)
  // Stats
  protected.POST("/stats", cfg.StatHandler.Create)
  protected.GET("/stats", cfg.StatHandler.List)
  protected.GET("/stats/:id", cfg.StatHandler.Get)
  protected.PUT("/stats/:id", cfg.StatHandler.Update)
  protected.PUT("/stats/:id/enabled", cfg.StatHandler.SetEnabled)
  protected.GET("/stats/:id/grants", cfg.StatHandler.Grants)
  // Journal
  protected.POST("/journal", cfg.JournalHandler.Create)
  protected.GET("/journal", cfg.JournalHandler.List)
  protected.GET("/journal/:id", cfg.JournalHandler.Get)
  protected.PUT("/journal/:id", cfg.JournalHandler.Save)
  protected.POST("/journal/:id/edit", cfg.JournalHandler.Reopen)
  protected.POST("/journal/:id/start-reflection", cfg.JournalHandler.StartReflection)
  protected.POST("/journal/:id/message", cfg.JournalHandler.AddMessage)
  protected.POST("/journal/:id/finish", cfg.JournalHandler.Finish)
  protected.DELETE("/journal/:id", cfg.JournalHandler.Delete)
  // Tasks
  protected.POST("/tasks", cfg.TaskHandler.Create)
  protected.GET("/tasks", cfg.TaskHandler.List)
  protected.GET("/tasks/:id", cfg.TaskHandler.Get)
  protected.PUT("/tasks/:id", cfg.TaskHandler.Update)
  protected.POST("/tasks/:id/complete", cfg.TaskHandler.Complete)
  protected.DELETE("/tasks/:id", cfg.TaskHandler.Delete)
  protected.POST("/generate-tasks", cfg.TaskHandler.Generate)
  // Quests
  protected.POST("/quests", cfg.QuestHandler.Create)
  protected.GET("/quests", cfg.QuestHandler.List)
  protected.GET("/quests/:id", cfg.QuestHandler.Get)
  protected.PUT("/quests/:id", cfg.QuestHandler.Update)
  protected.DELETE("/quests/:id", cfg.QuestHandler.Delete)
  // Experiments
  protected.POST("/experiments", cfg.ExperimentHandler.Create)
  protected.GET("/experiments", cfg.ExperimentHandler.List)
  protected.GET("/experiments/:id", cfg.ExperimentHandler.Get)
  protected.PUT("/experiments/:id", cfg.ExperimentHandler.Update)
  protected.POST("/experiments/:id/reflect", cfg.ExperimentHandler.Reflect)
  protected.POST("/experiments/:id/daily-task", cfg.ExperimentHandler.SpawnDailyTask)
  protected.DELETE("/experiments/:id", cfg.ExperimentHandler.Delete)
  // Projects
  protected.POST("/projects", cfg.ProjectHandler.Create)
  protected.GET("/projects", cfg.ProjectHandler.List)
  protected.GET("/projects/:id", cfg.ProjectHandler.Get)
  protected.PUT("/projects/:id", cfg.ProjectHandler.Update)
  protected.PUT("/projects/:id/completed", cfg.ProjectHandler.SetCompleted)
  protected.DELETE("/projects/:id", cfg.ProjectHandler.Delete)
  protected.POST("/projects/:id/subtasks", cfg.ProjectHandler.AddSubtask)
  protected.PUT("/projects/:id/subtasks/reorder", cfg.ProjectHandler.ReorderSubtasks)
  protected.PUT("/projects/:id/subtasks/:subtaskId/completed", cfg.ProjectHandler.SetSubtaskCompleted)
  protected.DELETE("/projects/:id/subtasks/:subtaskId", cfg.ProjectHandler.DeleteSubtask)
  // Goals
  protected.POST("/goals", cfg.GoalHandler.Create)
  protected.GET("/goals", cfg.GoalHandler.List)
  protected.GET("/goals/:id", cfg.GoalHandler.Get)
  protected.PUT("/goals/:id", cfg.GoalHandler.Update)
  protected.DELETE("/goals/:id", cfg.GoalHandler.Delete)
  // Family
  protected.POST("/family", cfg.FamilyHandler.Create)
  protected.GET("/family", cfg.FamilyHandler.List)
  protected.GET("/family/:id", cfg.FamilyHandler.Get)
  protected.PUT("/family/:id", cfg.FamilyHandler.Update)
  protected.DELETE("/family/:id", cfg.FamilyHandler.Delete)
  protected.POST("/family/:id/interactions", cfg.FamilyHandler.LogInteraction)
  protected.GET("/family/:id/interactions", cfg.FamilyHandler.ListInteractions)
  // Weather
  protected.GET("/weather", cfg.WeatherHandler.Get)

  return router
}
