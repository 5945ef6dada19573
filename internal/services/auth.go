package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mtnvale/stridecoach-backend/internal/apierr"
	"github.com/mtnvale/stridecoach-backend/internal/logger"
	"github.com/mtnvale/stridecoach-backend/internal/repos"
	"github.com/mtnvale/stridecoach-backend/internal/requestdata"
	"github.com/mtnvale/stridecoach-backend/internal/types"
)

type RegisterInput struct {
	Email     string     `json:"email" validate:"required,email"`
	Password  string     `json:"password" validate:"required,min=8"`
	FirstName string     `json:"first_name" validate:"required"`
	LastName  string     `json:"last_name" validate:"required"`
	Role      string     `json:"role"`
	TeamID    *uuid.UUID `json:"team_id"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*types.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, rd *requestdata.RequestData) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authClaims struct {
	jwt.RegisteredClaims
	Name   string `json:"name"`
	Role   string `json:"role"`
	TeamID string `json:"team_id,omitempty"`
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           baseLog.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) Register(ctx context.Context, input RegisterInput) (*types.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Role == "" {
		input.Role = types.RoleAthlete
	}
	if err := checkInput(input); err != nil {
		return nil, err
	}
	if !types.ValidRole(input.Role) {
		return nil, apierr.ValidationFailed(fmt.Errorf("unknown role %q", input.Role))
	}
	// Self-registration never grants elevated roles.
	if input.Role == types.RoleAdmin || input.Role == types.RoleSuperadmin {
		return nil, apierr.PermissionDenied(fmt.Errorf("role %q cannot be self-assigned", input.Role))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &types.User{
		ID:        uuid.New(),
		Email:     input.Email,
		Password:  string(hash),
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Role:      input.Role,
		TeamID:    input.TeamID,
	}
	if err := runTx(ctx, as.db, func(tx *gorm.DB) error {
		if existing, err := as.userRepo.GetByEmail(ctx, tx, user.Email); err == nil && existing != nil {
			return apierr.ValidationFailed(fmt.Errorf("email already registered"))
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		_, err := as.userRepo.Create(ctx, tx, user)
		return err
	}); err != nil {
		return nil, err
	}
	as.log.Info("Registered user", "userID", user.ID, "role", user.Role)
	return user, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.Unauthorized(fmt.Errorf("invalid credentials"))
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apierr.Unauthorized(fmt.Errorf("invalid credentials"))
	}
	return as.issueTokens(ctx, user)
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	stored, err := as.userTokenRepo.GetByRefreshToken(ctx, nil, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.Unauthorized(fmt.Errorf("unknown refresh token"))
		}
		return nil, err
	}
	if stored.ExpiresAt.Before(time.Now()) {
		return nil, apierr.Unauthorized(fmt.Errorf("refresh token expired"))
	}
	user, err := as.userRepo.GetByID(ctx, nil, stored.UserID)
	if err != nil {
		return nil, apierr.Unauthorized(fmt.Errorf("user no longer exists"))
	}
	return as.issueTokens(ctx, user)
}

func (as *authService) Logout(ctx context.Context, rd *requestdata.RequestData) error {
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.Unauthorized(fmt.Errorf("not logged in"))
	}
	return as.userTokenRepo.DeleteByUserID(ctx, nil, rd.UserID)
}

// issueTokens rotates the refresh token: old tokens for the user are revoked
// inside the same transaction that stores the new one.
func (as *authService) issueTokens(ctx context.Context, user *types.User) (*TokenPair, error) {
	access, err := as.signAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh := uuid.NewString() + uuid.NewString()

	if err := runTx(ctx, as.db, func(tx *gorm.DB) error {
		if err := as.userTokenRepo.DeleteByUserID(ctx, tx, user.ID); err != nil {
			return err
		}
		_, err := as.userTokenRepo.Create(ctx, tx, &types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			RefreshToken: refresh,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		})
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(as.accessTTL.Seconds()),
	}, nil
}

func (as *authService) signAccessToken(user *types.User) (string, error) {
	now := time.Now()
	claims := authClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
		},
		Name: user.DisplayName(),
		Role: user.Role,
	}
	if user.TeamID != nil {
		claims.TeamID = user.TeamID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	var claims authClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, apierr.Unauthorized(fmt.Errorf("invalid token"))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthorized(fmt.Errorf("invalid token subject"))
	}
	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		DisplayName: claims.Name,
		Role:        claims.Role,
	}
	if claims.TeamID != "" {
		if teamID, err := uuid.Parse(claims.TeamID); err == nil {
			rd.TeamID = teamID
		}
	}
	return requestdata.WithRequestData(ctx, rd), nil
}
