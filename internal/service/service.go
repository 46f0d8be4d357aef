package service

import (
	"context"
	"errors"

	"github.com/dieKrake/life-leveler-sub000/internal/auth"
	"github.com/dieKrake/life-leveler-sub000/internal/repo"
)

// Service handles account lifecycle; progression itself lives in the engine.
type Service struct {
	Repo *repo.Repo
	Auth *auth.Manager
}

func New(repo *repo.Repo, authManager *auth.Manager) *Service {
	return &Service{Repo: repo, Auth: authManager}
}

// Register creates the account and its level-1 stats row so the progression
// surfaces work right after signup.
func (s *Service) Register(ctx context.Context, email, password string) (string, error) {
	hash, err := s.Auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	userID, err := s.Repo.CreateUser(ctx, email, hash)
	if err != nil {
		return "", err
	}
	if err := s.Repo.CreatePlayer(ctx, s.Repo.Pool, userID); err != nil {
		return "", err
	}
	return userID, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, string, error) {
	userID, hash, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", "", err
	}
	if err := s.Auth.ComparePassword(hash, password); err != nil {
		return "", "", errors.New("invalid credentials")
	}
	accessToken, err := s.Auth.GenerateAccessToken(userID)
	if err != nil {
		return "", "", err
	}
	refreshToken, expiresAt, err := s.Auth.NewRefreshToken()
	if err != nil {
		return "", "", err
	}
	if err := s.Repo.CreateSession(ctx, userID, refreshToken, expiresAt); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}
