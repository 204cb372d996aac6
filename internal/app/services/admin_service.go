package services

import (
	"context"
	"crypto/subtle"

	"github.com/rs/zerolog"
	"github.com/yigit/coursebooking/internal/app/models/dto"
	"github.com/yigit/coursebooking/internal/config"
	"github.com/yigit/coursebooking/internal/pkg/apperrors"
	"github.com/yigit/coursebooking/internal/pkg/auth"
	"github.com/yigit/coursebooking/internal/pkg/filestorage"
)

// AdminService backs the operator API
type AdminService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	ListOutbox(ctx context.Context) ([]dto.ArtifactResponse, error)
	RedeliverOutbox(ctx context.Context) (*dto.RedeliveryResponse, error)
}

type adminServiceImpl struct {
	config   config.AdminConfig
	jwt      *auth.JWTService
	outbox   filestorage.MessageStore
	notifier NotificationService
	logger   zerolog.Logger
}

// NewAdminService creates a new operator service instance
func NewAdminService(
	cfg config.AdminConfig,
	jwt *auth.JWTService,
	outbox filestorage.MessageStore,
	notifier NotificationService,
	logger zerolog.Logger,
) AdminService {
	return &adminServiceImpl{
		config:   cfg,
		jwt:      jwt,
		outbox:   outbox,
		notifier: notifier,
		logger:   logger,
	}
}

// Login checks the operator credentials and issues an access token
func (s *adminServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.config.Username)) == 1
	// bcrypt runs even for an unknown username so both failures cost the same
	passOK := auth.CheckPassword(s.config.PasswordHash, req.Password)
	if !userOK || !passOK {
		s.logger.Warn().Str("username", req.Username).Msg("Operator login failed")
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.jwt.GenerateToken(s.config.Username)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", s.config.Username).Msg("Operator logged in")
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	}, nil
}

func (s *adminServiceImpl) ListOutbox(ctx context.Context) ([]dto.ArtifactResponse, error) {
	artifacts, err := s.outbox.List()
	if err != nil {
		return nil, err
	}

	out := make([]dto.ArtifactResponse, 0, len(artifacts))
	for _, a := range artifacts {
		out = append(out, dto.ArtifactResponse{Name: a.Name, Size: a.Size, ModifiedAt: a.ModifiedAt})
	}
	return out, nil
}

func (s *adminServiceImpl) RedeliverOutbox(ctx context.Context) (*dto.RedeliveryResponse, error) {
	result, err := s.notifier.Redeliver(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.RedeliveryResponse{
		Attempted: result.Attempted,
		Delivered: result.Delivered,
		Remaining: result.Remaining,
	}, nil
}
