package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"testboard/internal/config"
	"testboard/internal/domain"
	"testboard/internal/dto"
	"testboard/internal/logger"
	"testboard/internal/util"
	"testboard/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidJWTToken is returned for malformed, badly signed or expired
// tokens.
var ErrInvalidJWTToken = errors.New("invalid jwt token")

// AuthService defines the interface for authentication operations.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (string, error)
	Login(ctx context.Context, req *dto.LoginRequest) (string, error)
	GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

type authServiceImpl struct {
	userRepo  domain.UserRepository
	validator *validation.Validator
	appConfig *config.Config
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo domain.UserRepository, appConfig *config.Config) (AuthService, error) {
	if appConfig.JWT.SecretKey == "" {
		return nil, errors.New("jwt secret key for auth service is not configured")
	}
	return &authServiceImpl{
		userRepo:  userRepo,
		validator: validation.NewValidator(),
		appConfig: appConfig,
	}, nil
}

// Register validates the payload, hashes the password and inserts the user.
// A taken email is a validation failure, whether it is caught by the
// pre-check or by the unique index on a concurrent registration.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (string, error) {
	if errs := s.validator.ValidateRegisterRequest(req); len(errs) > 0 {
		return "", errs
	}

	existing, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return "", mapRepositoryError(err, "failed to check email")
	}
	if existing != nil {
		return "", domain.NewError(domain.CodeValidation, "email already registered", nil).WithKey("validation_error")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", domain.NewInternalError("failed to hash password", err)
	}

	user := &domain.User{
		ID:           util.NewULID(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         domain.Role(req.Role),
		CreatedAt:    time.Now(),
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return "", domain.NewError(domain.CodeValidation, "email already registered", nil).WithKey("validation_error")
		}
		return "", mapRepositoryError(err, "failed to create user")
	}

	logger.Get().Info("User registered",
		zap.String("userID", user.ID),
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)))
	return user.ID, nil
}

// Login verifies the credentials and issues a signed access token whose
// subject claim is the user id.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (string, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return "", mapRepositoryError(err, "failed to load user")
	}
	if user == nil {
		return "", domain.NewInvalidCredentialsError("invalid credentials").WithKey("invalid_credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Get().Warn("Invalid credentials", zap.String("email", req.Email))
		return "", domain.NewInvalidCredentialsError("invalid credentials").WithKey("invalid_credentials")
	}

	token, err := s.createJWT(user)
	if err != nil {
		return "", domain.NewInternalError("failed to sign token", err)
	}

	logger.Get().Info("User logged in", zap.String("userID", user.ID))
	return token, nil
}

// GetProfile returns the caller's own profile.
func (s *authServiceImpl) GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to load user")
	}
	if user == nil {
		return nil, domain.NewNotFoundError("user not found").WithKey("user_not_found")
	}
	return &dto.UserResponse{ID: user.ID, Email: user.Email, Role: string(user.Role)}, nil
}

func (s *authServiceImpl) createJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := dto.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.appConfig.JWT.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.appConfig.JWT.SecretKey))
}

// ValidateJWT parses and verifies an access token.
func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.appConfig.JWT.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Get().Warn("JWT token expired", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	if claims, ok := token.Claims.(*dto.AuthClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidJWTToken
}
