package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/campusmeet/backend/internal/app/models"
	"github.com/campusmeet/backend/internal/app/models/dto"
	"github.com/campusmeet/backend/internal/app/repositories"
	"github.com/campusmeet/backend/internal/pkg/apperrors"
	"github.com/campusmeet/backend/internal/pkg/auth"
	"github.com/campusmeet/backend/internal/pkg/names"
	"github.com/campusmeet/backend/internal/pkg/portal"
)

// AuthService defines the interface for portal-backed authentication
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.LoginResponse, error)
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	portalClient portal.Client
	userRepo     repositories.IUserRepository
	jwtService   *auth.JWTService
	logger       zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	portalClient portal.Client,
	userRepo repositories.IUserRepository,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		portalClient: portalClient,
		userRepo:     userRepo,
		jwtService:   jwtService,
		logger:       logger,
	}
}

// Login verifies the credentials against the portal and issues a token for
// an existing account. Valid credentials without a local account come back
// with SignUpRequired set instead of a token.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if _, err := s.authenticate(ctx, req.ID, req.Password); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return &dto.LoginResponse{
				Message:        "sign up required",
				SignUpRequired: true,
			}, nil
		}
		s.logger.Error().Err(err).Str("userID", req.ID).Msg("Failed to load user during login")
		return nil, apperrors.NewInternalError(err)
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		s.logger.Error().Err(err).Str("userID", user.ID).Msg("Failed to issue token")
		return nil, apperrors.NewInternalError(err)
	}

	return &dto.LoginResponse{
		Success: true,
		Message: "logged in",
		Token:   token,
		Name:    user.Name,
	}, nil
}

// Signup verifies the credentials, reads the portal profile and registers a
// local account under a random anonymous display name.
func (s *authServiceImpl) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.LoginResponse, error) {
	session, err := s.authenticate(ctx, req.ID, req.Password)
	if err != nil {
		return nil, err
	}

	profile, err := s.portalClient.FetchProfile(ctx, session)
	if err != nil {
		s.logger.Error().Err(err).Str("userID", req.ID).Msg("Failed to fetch portal profile")
		return nil, apperrors.NewInternalError(err)
	}

	user := &models.User{
		ID:     req.ID,
		Name:   names.Random(),
		Gender: profile.Gender,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyRegistered) {
			return nil, apperrors.ErrAlreadyRegistered
		}
		s.logger.Error().Err(err).Str("userID", req.ID).Msg("Failed to create user")
		return nil, apperrors.NewInternalError(err)
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		s.logger.Error().Err(err).Str("userID", user.ID).Msg("Failed to issue token")
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info().Str("userID", user.ID).Str("name", user.Name).Msg("User signed up")

	return &dto.LoginResponse{
		Success: true,
		Message: "signed up",
		Token:   token,
		Name:    user.Name,
	}, nil
}

func (s *authServiceImpl) authenticate(ctx context.Context, id, password string) (portal.Session, error) {
	session, err := s.portalClient.Authenticate(ctx, id, password)
	if err != nil {
		switch {
		case errors.Is(err, portal.ErrBadCredentials), errors.Is(err, portal.ErrInvalidAccount):
			return portal.Session{}, apperrors.ErrAuthFailure
		default:
			s.logger.Error().Err(err).Str("userID", id).Msg("Portal authentication failed")
			return portal.Session{}, apperrors.NewInternalError(err)
		}
	}
	return session, nil
}
