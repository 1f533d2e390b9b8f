// Package repository declares the storage contracts the service layer depends on.
// internal/repository/sqlite implements them; internal/mock holds generated mocks.
package repository

//go:generate mockgen -source=repository.go -destination=../mock/repository_mock.go -package=mock

import (
	"context"

	"github.com/sakif/project-studio/internal/model"
)

// UserRepository is the credential store.
type UserRepository interface {
	// CreateUser inserts user and fills in ID and CreatedAt.
	// Returns apperror.ErrConflict when the email (or GitHub ID) is taken.
	CreateUser(ctx context.Context, user *model.User) error
	// GetUserByEmail returns apperror.ErrNotFound when no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
}

// TemplateRepository reads the system-owned template catalogue.
type TemplateRepository interface {
	// ListTemplates returns the templates whose featured flag equals featured,
	// in insertion order.
	ListTemplates(ctx context.Context, featured bool) ([]model.Template, error)
}

// ProjectRepository persists projects.
type ProjectRepository interface {
	// CreateProject inserts project and fills in ID and CreatedAt.
	// Returns apperror.ErrBadRequest when TemplateID or UserID reference
	// nothing.
	CreateProject(ctx context.Context, project *model.Project) error
	ListProjectsByOwner(ctx context.Context, userID string) ([]model.Project, error)
}
