package auth

import (
	"LeadDesk/entity"
	"LeadDesk/internal/lib/sl"
	"fmt"
	"log/slog"
)

// Repository is what the auth service needs from storage.
type Repository interface {
	CheckApiKey(key string) (string, error)
}

// Service resolves console API tokens to authenticated users.
type Service struct {
	repository Repository
	log        *slog.Logger
}

func NewAuthService(logger *slog.Logger) *Service {
	return &Service{
		log: logger.With(sl.Module("auth-service")),
	}
}

func (s *Service) SetRepository(repository Repository) {
	s.repository = repository
}

// AuthenticateByToken resolves an API token to the console user it belongs to.
func (s *Service) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	if s.repository == nil {
		return nil, fmt.Errorf("auth repository not configured")
	}

	username, err := s.repository.CheckApiKey(token)
	if err != nil {
		return nil, fmt.Errorf("check api key: %w", err)
	}

	return &entity.UserAuth{
		Username: username,
		Token:    token,
	}, nil
}

// ValidateToken implements the websocket authenticator: it returns the
// username behind a token.
func (s *Service) ValidateToken(token string) (string, error) {
	user, err := s.AuthenticateByToken(token)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}
