package services

import (
  "context"
  "fmt"
  "time"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "golang.org/x/crypto/bcrypt"
  "gorm.io/gorm"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/normalization"
  "github.com/robert-crandall/journal-app-sub007/internal/repos"
  "github.com/robert-crandall/journal-app-sub007/internal/requestdata"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
  "github.com/robert-crandall/journal-app-sub007/internal/utils"
)

type JWTClaims struct {
  jwt.RegisteredClaims
}

type AuthService interface {
  RegisterUser(ctx context.Context, user *types.User) error
  LoginUser(ctx context.Context, email, password string) (string, string, error)
  RefreshUser(ctx context.Context) (string, string, error)
  LogoutUser(ctx context.Context) error
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
  GetAccessTTL() time.Duration
}

type authService struct {
  db            *gorm.DB
  log           *logger.Logger
  userRepo      repos.UserRepo
  userTokenRepo repos.UserTokenRepo
  statRepo      repos.CharacterStatRepo
  jwtSecretKey  string
  accessTTL     time.Duration
  refreshTTL    time.Duration
}

func NewAuthService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  userTokenRepo repos.UserTokenRepo,
  statRepo repos.CharacterStatRepo,
  jwtSecretKey string,
  accessTTL time.Duration,
  refreshTTL time.Duration,
) AuthService {
  return &authService{
    db:            db,
    log:           log.With("service", "AuthService"),
    userRepo:      userRepo,
    userTokenRepo: userTokenRepo,
    statRepo:      statRepo,
    jwtSecretKey:  jwtSecretKey,
    accessTTL:     accessTTL,
    refreshTTL:    refreshTTL,
  }
}

// defaultStats are seeded for every new account so the dashboard has
// something to grant against from day one. Users can disable or rename them.
var defaultStats = []struct {
  Name        string
  Description string
}{
  {"Physical Health", "Movement, exercise, sleep, and energy."},
  {"Mental Clarity", "Focus, learning, and creative work."},
  {"Connection", "Time invested in the people around you."},
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
  utils.NormalizeUserFields(user)
  if vErr := utils.ValidateRegistration(ctx, as.userRepo, as.log, user); vErr != nil {
    return vErr
  }
  if hErr := utils.HashPassword(user); hErr != nil {
    return hErr
  }
  return withTx(ctx, as.db, func(tx *gorm.DB) error {
    user.ID = uuid.New()
    if user.Timezone == "" {
      user.Timezone = "UTC"
    }
    if _, ucErr := as.userRepo.Create(ctx, tx, []*types.User{user}); ucErr != nil {
      return apierr.Internal(fmt.Errorf("failed to create user: %w", ucErr))
    }
    seed := make([]*types.CharacterStat, 0, len(defaultStats))
    for _, d := range defaultStats {
      seed = append(seed, &types.CharacterStat{
        ID:          uuid.New(),
        UserID:      user.ID,
        Name:        d.Name,
        Description: d.Description,
        Enabled:     true,
      })
    }
    if _, scErr := as.statRepo.Create(ctx, tx, seed); scErr != nil {
      return apierr.Internal(fmt.Errorf("failed to seed default stats: %w", scErr))
    }
    return nil
  })
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
  email = normalization.ParseEmail(email)
  password = normalization.ParseInputString(password)
  if vErr := utils.ValidateLogin(email, password); vErr != nil {
    return "", "", vErr
  }

  users, usErr := as.userRepo.GetByEmails(ctx, nil, []string{email})
  if usErr != nil {
    return "", "", apierr.Internal(fmt.Errorf("error retrieving user by email: %w", usErr))
  }
  if len(users) == 0 {
    return "", "", apierr.Unauthorized("invalid email or password")
  }

  user := users[0]
  if hErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); hErr != nil {
    return "", "", apierr.Unauthorized("invalid email or password")
  }

  var accessToken string
  var refreshToken string
  if err := withTx(ctx, as.db, func(tx *gorm.DB) error {
    foundTokens, ftErr := as.userTokenRepo.GetByUserIDs(ctx, tx, []uuid.UUID{user.ID})
    if ftErr != nil {
      return apierr.Internal(fmt.Errorf("failed to check user tokens: %w", ftErr))
    }
    expired := make([]*types.UserToken, 0, len(foundTokens))
    for _, t := range foundTokens {
      if t != nil && t.ExpiresAt.Before(time.Now()) {
        expired = append(expired, t)
      }
    }
    if len(expired) > 0 {
      if dtErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, expired); dtErr != nil {
        return apierr.Internal(fmt.Errorf("failed to delete expired user tokens: %w", dtErr))
      }
    }
    tok, genErr := as.generateAccessToken(user)
    if genErr != nil {
      return apierr.Internal(fmt.Errorf("generate access token error: %w", genErr))
    }
    accessToken = tok
    refreshToken = uuid.New().String()
    userToken := types.UserToken{
      ID:           uuid.New(),
      UserID:       user.ID,
      AccessToken:  accessToken,
      RefreshToken: refreshToken,
      ExpiresAt:    time.Now().Add(as.refreshTTL),
    }
    if _, ctErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&userToken}); ctErr != nil {
      as.log.Warn("Create user token error", "error", ctErr)
      return apierr.Internal(fmt.Errorf("create user token error: %w", ctErr))
    }
    return nil
  }); err != nil {
    return "", "", err
  }
  return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context) (string, string, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return "", "", apierr.Unauthorized("no request data found in context")
  }
  if rd.RefreshToken == "" {
    return "", "", apierr.Unauthorized("refresh token not found in request data")
  }

  var accessToken string
  var newRefreshTokenStr string
  err := withTx(ctx, as.db, func(tx *gorm.DB) error {
    foundTokens, ftErr := as.userTokenRepo.GetByRefreshTokens(ctx, tx, []string{rd.RefreshToken})
    if ftErr != nil {
      return apierr.Internal(fmt.Errorf("error fetching refresh token: %w", ftErr))
    }
    if len(foundTokens) == 0 {
      return apierr.Unauthorized("refresh token not recognized")
    }
    existingToken := foundTokens[0]

    const expiryBuffer = 5 * time.Minute
    if existingToken.ExpiresAt.Add(expiryBuffer).Before(time.Now()) {
      if dtErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, []*types.UserToken{existingToken}); dtErr != nil {
        return apierr.Internal(fmt.Errorf("refresh token expired, error deleting: %w", dtErr))
      }
      return apierr.Unauthorized("refresh token expired")
    }

    users, uErr := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existingToken.UserID})
    if uErr != nil {
      return apierr.Internal(fmt.Errorf("failed to load user for refresh: %w", uErr))
    }
    if len(users) == 0 {
      return apierr.Unauthorized("no user found for the given refresh token")
    }
    user := users[0]

    tok, genErr := as.generateAccessToken(user)
    if genErr != nil {
      return apierr.Internal(fmt.Errorf("failed to generate new access token: %w", genErr))
    }
    accessToken = tok
    newRefreshTokenStr = uuid.New().String()
    newUserToken := types.UserToken{
      ID:           uuid.New(),
      UserID:       user.ID,
      AccessToken:  tok,
      RefreshToken: newRefreshTokenStr,
      ExpiresAt:    time.Now().Add(as.refreshTTL),
    }
    if _, cErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&newUserToken}); cErr != nil {
      return apierr.Internal(fmt.Errorf("failed to create new user token: %w", cErr))
    }
    if dErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, []*types.UserToken{existingToken}); dErr != nil {
      return apierr.Internal(fmt.Errorf("failed to remove old refresh token: %w", dErr))
    }
    return nil
  })
  if err != nil {
    return "", "", err
  }
  return accessToken, newRefreshTokenStr, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return apierr.Unauthorized("no request data found in context")
  }
  if rd.TokenString == "" {
    return apierr.Unauthorized("access token not found in request data")
  }
  return withTx(ctx, as.db, func(tx *gorm.DB) error {
    foundTokens, ftErr := as.userTokenRepo.GetByAccessTokens(ctx, tx, []string{rd.TokenString})
    if ftErr != nil {
      return apierr.Internal(fmt.Errorf("error finding user token from token string: %w", ftErr))
    }
    if len(foundTokens) == 0 {
      return nil
    }
    if tdErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, foundTokens); tdErr != nil {
      return apierr.Internal(fmt.Errorf("error deleting user token: %w", tdErr))
    }
    return nil
  })
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
  claims := JWTClaims{
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   user.ID.String(),
      ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
      IssuedAt:  jwt.NewNumericDate(time.Now()),
    },
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  if tokenString == "" {
    return ctx, nil
  }
  parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil {
    return ctx, apierr.Unauthorized("failed to parse token")
  }
  claims, ok := parsedToken.Claims.(*JWTClaims)
  if !ok || !parsedToken.Valid {
    return ctx, apierr.Unauthorized("invalid or expired token")
  }
  userID, err := uuid.Parse(claims.Subject)
  if err != nil {
    return ctx, apierr.Unauthorized("invalid user id in token")
  }

  var refreshTokenStr string
  foundTokens, ftErr := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
  if ftErr != nil {
    as.log.Warn("Error fetching user token by access token", "error", ftErr)
    return ctx, apierr.Internal(fmt.Errorf("failed to fetch user token by access token: %w", ftErr))
  }
  if len(foundTokens) == 0 {
    return ctx, apierr.Unauthorized("token has been revoked")
  }
  refreshTokenStr = foundTokens[0].RefreshToken

  // The token row's id doubles as a stable session id, so SSE subscribe
  // calls land on the same client the stream registered.
  rd := &requestdata.RequestData{
    TokenString:  tokenString,
    RefreshToken: refreshTokenStr,
    UserID:       userID,
    SessionID:    foundTokens[0].ID,
  }
  return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
  return as.accessTTL
}
