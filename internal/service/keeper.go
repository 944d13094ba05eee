package service

import (
	"fmt"
	"log/slog"

	"github.com/sakif/violets/internal/apperror"
	"github.com/sakif/violets/internal/auth"
)

// KeeperSubject is the token subject of the single account allowed to edit
// the journal.
const KeeperSubject = "keeper"

// KeeperService guards editing with one shared password.
//
//	LoginHandler → KeeperService → PasswordService (bcrypt)
//	                             ↘ TokenService (JWT)
type KeeperService struct {
	passwordHash string
	passwords    *auth.PasswordService
	tokens       *auth.TokenService
	logger       *slog.Logger
}

func NewKeeperService(
	passwordHash string,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *KeeperService {
	return &KeeperService{
		passwordHash: passwordHash,
		passwords:    passwords,
		tokens:       tokens,
		logger:       logger,
	}
}

// Login checks password against the configured bcrypt hash and, on a match,
// returns a signed session token. A wrong password is apperror.ErrForbidden.
func (s *KeeperService) Login(password string) (string, error) {
	if err := s.passwords.Verify(s.passwordHash, password); err != nil {
		s.logger.Warn("keeper login rejected", slog.String("error", err.Error()))
		return "", apperror.Forbidden("Incorrect password.")
	}

	token, err := s.tokens.Generate(KeeperSubject)
	if err != nil {
		s.logger.Error("failed to issue keeper token", slog.String("error", err.Error()))
		return "", fmt.Errorf("issuing session token: %w", err)
	}

	s.logger.Info("keeper logged in")
	return token, nil
}
