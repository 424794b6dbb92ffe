package auth

import (
	"context"
	"fmt"
)

// UserService answers the two identity questions the review core asks:
// who owns this bearer token, and does a username exist.
type UserService struct {
	Tokens TokenService
	Repo   *Repo
}

func NewUserService(tokens TokenService, repo *Repo) *UserService {
	return &UserService{Tokens: tokens, Repo: repo}
}

// DecodeToken returns the user id carried by token. Tokens issued before the
// user's last logout or password change are rejected.
func (s *UserService) DecodeToken(ctx context.Context, token string) (string, error) {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return "", err
	}
	if s.Repo == nil {
		return claims.UserID, nil
	}

	current, err := s.Repo.GetTokenVersion(ctx, claims.UserID)
	if err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if current != claims.TokenVersion {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

func (s *UserService) UserExists(ctx context.Context, username string) (bool, error) {
	return s.Repo.UsernameExists(ctx, username)
}
