package service

import (
	"context"

	"github.com/sakif/project-phoenix/internal/auth"
	"github.com/sakif/project-phoenix/internal/model"
	"github.com/sakif/project-phoenix/internal/repository"
)

// AuthService turns a verified GitHub identity into a local account.
type AuthService struct {
	users repository.UserRepository
}

func NewAuthService(users repository.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// SignIn creates or refreshes the local account for a GitHub user and returns
// the stored row. Called on every OAuth callback, so profile changes made on
// GitHub flow in on the next login.
func (s *AuthService) SignIn(ctx context.Context, ghUser *auth.GitHubUser, email string) (*model.User, error) {
	if email == "" {
		email = ghUser.Email
	}

	user := &model.User{
		GitHubID:        ghUser.ID,
		Username:        ghUser.Login,
		Email:           email,
		AvatarURL:       ghUser.AvatarURL,
		Bio:             ghUser.Bio,
		Location:        ghUser.Location,
		WebsiteURL:      ghUser.Blog,
		TwitterUsername: ghUser.TwitterUsername,
	}
	if err := s.users.UpsertByGitHubID(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
