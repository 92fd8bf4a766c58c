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
  "github.com/robert-crandall/journal-app-sub007/internal/sse"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

type UserService interface {
  GetMe(ctx context.Context) (*types.User, error)
  UpdateName(ctx context.Context, firstName, lastName string) (*types.User, error)
  UpdateTimezone(ctx context.Context, timezone string) (*types.User, error)
  UpdateZipCode(ctx context.Context, zipCode string) (*types.User, error)
}

type userService struct {
  db       *gorm.DB
  log      *logger.Logger
  userRepo repos.UserRepo
  hub      *sse.SSEHub
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, hub *sse.SSEHub) UserService {
  return &userService{
    db:       db,
    log:      log.With("service", "UserService"),
    userRepo: userRepo,
    hub:      hub,
  }
}

func (us *userService) currentUserID(ctx context.Context) (uuid.UUID, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return uuid.Nil, apierr.Unauthorized("no authenticated user in context")
  }
  return rd.UserID, nil
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
  userID, err := us.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  users, uErr := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
  if uErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to load user: %w", uErr))
  }
  if len(users) == 0 {
    return nil, apierr.NotFound("user not found")
  }
  return users[0], nil
}

func (us *userService) UpdateName(ctx context.Context, firstName, lastName string) (*types.User, error) {
  userID, err := us.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  firstName = normalization.ParseInputString(firstName)
  lastName = normalization.ParseInputString(lastName)
  if firstName == "" {
    return nil, apierr.Validation("first name cannot be empty")
  }
  if lastName == "" {
    return nil, apierr.Validation("last name cannot be empty")
  }
  if uErr := us.userRepo.UpdateName(ctx, nil, userID, firstName, lastName); uErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to update name: %w", uErr))
  }
  us.hub.BroadcastToUser(userID, sse.SSEEventUserNameChanged, map[string]any{
    "first_name": firstName,
    "last_name":  lastName,
  })
  return us.GetMe(ctx)
}

func (us *userService) UpdateTimezone(ctx context.Context, timezone string) (*types.User, error) {
  userID, err := us.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  timezone = normalization.ParseInputString(timezone)
  if timezone == "" {
    return nil, apierr.Validation("timezone cannot be empty")
  }
  if _, lErr := time.LoadLocation(timezone); lErr != nil {
    return nil, apierr.Validation("unknown timezone %q", timezone)
  }
  if uErr := us.userRepo.UpdateTimezone(ctx, nil, userID, timezone); uErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to update timezone: %w", uErr))
  }
  return us.GetMe(ctx)
}

func (us *userService) UpdateZipCode(ctx context.Context, zipCode string) (*types.User, error) {
  userID, err := us.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  zipCode = normalization.ParseInputString(zipCode)
  if zipCode != "" && !ValidZip(zipCode) {
    return nil, apierr.Validation("zip code must be 5 digits")
  }
  if uErr := us.userRepo.UpdateZipCode(ctx, nil, userID, zipCode); uErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to update zip code: %w", uErr))
  }
  return us.GetMe(ctx)
}
