package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"djrating/internal/config"
	"djrating/internal/microservices/http-api/dto"
	"djrating/internal/microservices/http-api/models"
	"djrating/internal/microservices/http-api/repository"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrIdentityUnavailable = errors.New("identity provider is not configured")

// Identity is what an external login exchange yields.
type Identity struct {
	ExternalID string
	LinkedID   *string
}

// IdentityProvider exchanges an opaque client login code for a stable identity.
type IdentityProvider interface {
	Exchange(ctx context.Context, code string) (*Identity, error)
}

// DevIdentityProvider treats the login code itself as the external id.
type DevIdentityProvider struct{}

func (DevIdentityProvider) Exchange(_ context.Context, code string) (*Identity, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.New("empty login code")
	}
	return &Identity{ExternalID: "dev:" + code}, nil
}

// DisabledIdentityProvider rejects every exchange. It is wired when no real
// provider is configured outside development.
type DisabledIdentityProvider struct{}

func (DisabledIdentityProvider) Exchange(context.Context, string) (*Identity, error) {
	return nil, ErrIdentityUnavailable
}

// Claims carried by access tokens
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	ValidateToken(tokenString string) (*Claims, error)
	GetProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error)
}

type authService struct {
	users          repository.UserRepository
	tasks          TaskService
	identity       IdentityProvider
	jwtSecret      string
	accessTokenTTL time.Duration
	initialQuota   int
	logger         *zap.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tasks TaskService,
	identity IdentityProvider,
	cfg *config.Config,
	logger *zap.Logger,
) AuthService {
	return &authService{
		users:          users,
		tasks:          tasks,
		identity:       identity,
		jwtSecret:      cfg.JWTSecret,
		accessTokenTTL: cfg.AccessTokenTTL,
		initialQuota:   cfg.InitialInviteQuota,
		logger:         logger,
	}
}

// Login exchanges the client code, finds or creates the user, and issues an access token.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	identity, err := s.identity.Exchange(ctx, req.Code)
	if err != nil {
		s.logger.Info("identity exchange failed", zap.Error(err))
		return nil, ErrInvalidCredentials
	}

	user, isNew, err := s.findOrCreate(ctx, identity, req)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.users.TouchLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to record login time", zap.String("user_id", user.ID), zap.Error(err))
	}

	// missing task rows are also filled lazily by the task list
	if err := s.tasks.InitUserTasks(ctx, user.ID); err != nil {
		s.logger.Warn("failed to init user tasks", zap.String("user_id", user.ID), zap.Error(err))
	}

	token, err := s.generateAccessToken(user, now)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.accessTokenTTL.Seconds()),
		User:        dto.FromModelToUserProfile(user),
		IsNewUser:   isNew,
	}, nil
}

func (s *authService) findOrCreate(ctx context.Context, identity *Identity, req dto.LoginRequest) (*models.User, bool, error) {
	user, err := s.users.FindByExternalID(ctx, identity.ExternalID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("find user: %w", err)
	}

	user = &models.User{
		ExternalID:  identity.ExternalID,
		LinkedID:    identity.LinkedID,
		Nickname:    strings.TrimSpace(req.Nickname),
		AvatarURL:   req.AvatarURL,
		Role:        "user",
		InviteQuota: s.initialQuota,
		AccessLevel: models.AccessWaitlist,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// a concurrent first login created the row first
		if errors.Is(err, repository.ErrDuplicate) {
			existing, findErr := s.users.FindByExternalID(ctx, identity.ExternalID)
			if findErr != nil {
				return nil, false, fmt.Errorf("find user after duplicate: %w", findErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, true, nil
}

func (s *authService) generateAccessToken(user *models.User, now time.Time) (string, error) {
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		Type:   "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != "access" || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) GetProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return dto.FromModelToUserProfile(user), nil
}
