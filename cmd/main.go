package main

import (
  "context"
  "fmt"
  "os"
  "time"

  "github.com/robert-crandall/journal-app-sub007/internal/clients/redis"
  "github.com/robert-crandall/journal-app-sub007/internal/db"
  "github.com/robert-crandall/journal-app-sub007/internal/handlers"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/middleware"
  "github.com/robert-crandall/journal-app-sub007/internal/repos"
  "github.com/robert-crandall/journal-app-sub007/internal/server"
  "github.com/robert-crandall/journal-app-sub007/internal/services"
  "github.com/robert-crandall/journal-app-sub007/internal/sse"
  "github.com/robert-crandall/journal-app-sub007/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
  port := utils.GetEnv("PORT", "8080", log)

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Fatal("Postgres init failed", "error", err)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Fatal("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  userTokenRepo := repos.NewUserTokenRepo(thePG, log)
  statRepo := repos.NewCharacterStatRepo(thePG, log)
  grantRepo := repos.NewXpGrantRepo(thePG, log)
  journalRepo := repos.NewJournalEntryRepo(thePG, log)
  taskRepo := repos.NewTaskRepo(thePG, log)
  questRepo := repos.NewQuestRepo(thePG, log)
  experimentRepo := repos.NewExperimentRepo(thePG, log)
  projectRepo := repos.NewProjectRepo(thePG, log)
  goalRepo := repos.NewGoalRepo(thePG, log)
  familyRepo := repos.NewFamilyMemberRepo(thePG, log)
  feedbackRepo := repos.NewFamilyFeedbackRepo(thePG, log)

  // SSE
  log.Info("Setting up SSE hub now...")
  sseHub := sse.NewSSEHub(log)
  if os.Getenv("REDIS_ADDR") != "" {
    sseBus, busErr := redis.NewSSEBus(log)
    if busErr != nil {
      log.Warn("Could not init Redis SSE bus", "error", busErr)
    } else if fwdErr := sseBus.StartForwarder(context.Background(), sseHub.Deliver); fwdErr != nil {
      log.Warn("Could not start Redis SSE forwarder", "error", fwdErr)
    } else {
      sseHub.SetPublisher(func(m sse.SSEMessage) {
        if pubErr := sseBus.Publish(context.Background(), m); pubErr != nil {
          log.Warn("Redis SSE publish failed", "error", pubErr)
        }
      })
    }
  }

  // Services
  log.Info("Setting up services from main...")
  aiClient, err := services.NewAIClient(log)
  if err != nil {
    log.Error("Could not init AIClient", "error", err)
    os.Exit(1)
  }
  weatherService := services.NewWeatherService(log)
  authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, statRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
  userService := services.NewUserService(thePG, log, userRepo, sseHub)
  statService := services.NewStatService(thePG, log, statRepo, grantRepo, sseHub)
  journalService := services.NewJournalService(thePG, log, journalRepo, statRepo, statService, aiClient, sseHub)
  taskService := services.NewTaskService(thePG, log, taskRepo, statService, sseHub)
  taskGenService := services.NewTaskGenService(thePG, log, taskRepo, goalRepo, familyRepo, userRepo, statRepo, weatherService, aiClient, sseHub)
  questService := services.NewQuestService(thePG, log, questRepo)
  experimentService := services.NewExperimentService(thePG, log, experimentRepo, taskRepo)
  projectService := services.NewProjectService(thePG, log, projectRepo)
  goalService := services.NewGoalService(thePG, log, goalRepo)
  familyService := services.NewFamilyService(thePG, log, familyRepo, feedbackRepo, grantRepo, sseHub)

  // Handlers
  log.Info("Setting up handlers from main...")
  authHandler := handlers.NewAuthHandler(authService)
  userHandler := handlers.NewUserHandler(userService)
  statHandler := handlers.NewStatHandler(statService)
  journalHandler := handlers.NewJournalHandler(journalService)
  taskHandler := handlers.NewTaskHandler(taskService, taskGenService)
  questHandler := handlers.NewQuestHandler(questService)
  experimentHandler := handlers.NewExperimentHandler(experimentService)
  projectHandler := handlers.NewProjectHandler(projectService)
  goalHandler := handlers.NewGoalHandler(goalService)
  familyHandler := handlers.NewFamilyHandler(familyService)
  weatherHandler := handlers.NewWeatherHandler(weatherService)
  sseHandler := handlers.NewSSEHandler(log, sseHub)

  // Middleware
  log.Info("Setting up middleware from main...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    AuthHandler:       authHandler,
    AuthMiddleware:    authMiddleware,
    UserHandler:       userHandler,
    StatHandler:       statHandler,
    JournalHandler:    journalHandler,
    TaskHandler:       taskHandler,
    QuestHandler:      questHandler,
    ExperimentHandler: experimentHandler,
    ProjectHandler:    projectHandler,
    GoalHandler:       goalHandler,
    FamilyHandler:     familyHandler,
    WeatherHandler:    weatherHandler,
    SSEHandler:        sseHandler,
  })

  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Fatal("Server exited", "error", err)
  }
}
