package utils

import (
  "context"
  "golang.org/x/crypto/bcrypt"
  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/normalization"
  "github.com/robert-crandall/journal-app-sub007/internal/repos"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

func ValidateRegistration(ctx context.Context, userRepo repos.UserRepo, log *logger.Logger, user *types.User) error {
  if user == nil {
    return apierr.Validation("no user given, cannot proceed with registration")
  }
  if user.Email == "" {
    return apierr.Validation("an email is required to register")
  }
  emailExists, err := userRepo.EmailExists(ctx, nil, user.Email)
  if err != nil {
    return apierr.Internal(err)
  }
  if emailExists {
    return apierr.Conflict("email is already in use")
  }
  if user.Password == "" {
    return apierr.Validation("a password is required to register")
  }
  if user.FirstName == "" {
    return apierr.Validation("a first name is required to register")
  }
  if user.LastName == "" {
    return apierr.Validation("a last name is required to register")
  }
  return nil
}

func ValidateLogin(email, password string) error {
  if email == "" {
    return apierr.Validation("email is required to login")
  }
  if password == "" {
    return apierr.Validation("password is required to login")
  }
  return nil
}

func HashPassword(user *types.User) error {
  hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
  if err != nil {
    return apierr.Internal(err)
  }
  user.Password = string(hashedPassword)
  return nil
}

func NormalizeUserFields(user *types.User) {
  user.Email = normalization.ParseEmail(user.Email)
  user.Password = normalization.ParseInputString(user.Password)
  user.FirstName = normalization.ParseInputString(user.FirstName)
  user.LastName = normalization.ParseInputString(user.LastName)
}
