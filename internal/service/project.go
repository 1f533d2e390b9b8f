package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/gosimple/slug"

	"github.com/sakif/project-studio/internal/apperror"
	"github.com/sakif/project-studio/internal/model"
	"github.com/sakif/project-studio/internal/repository"
)

// MaxProjectTitleLength bounds a project title, counted in characters after
// trimming.
const MaxProjectTitleLength = 100

// ProjectService creates and lists projects on behalf of an authenticated
// owner.
type ProjectService struct {
	repo   repository.ProjectRepository
	logger *slog.Logger
}

func NewProjectService(repo repository.ProjectRepository, logger *slog.Logger) *ProjectService {
	return &ProjectService{repo: repo, logger: logger}
}

// Create validates the input and stores a new project owned by ownerID.
//
// ownerID must come from the verified token, not from the request body. The
// project always starts as model.StatusInProgress. An unknown templateID is
// rejected by the store's foreign key and surfaces as apperror.ErrBadRequest.
func (s *ProjectService) Create(ctx context.Context, ownerID, templateID, title string) (*model.Project, error) {
	if ownerID == "" {
		return nil, apperror.Unauthenticated("project owner is required")
	}

	templateID = strings.TrimSpace(templateID)
	title = strings.TrimSpace(title)

	if templateID == "" {
		return nil, apperror.ValidationFailed("templateId", "templateId is required")
	}
	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if utf8.RuneCountInString(title) > MaxProjectTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or fewer", MaxProjectTitleLength))
	}

	project := &model.Project{
		TemplateID: templateID,
		UserID:     ownerID,
		Title:      title,
		Slug:       slug.Make(title),
		Status:     model.StatusInProgress,
	}

	if err := s.repo.CreateProject(ctx, project); err != nil {
		if errors.Is(err, apperror.ErrBadRequest) {
			s.logger.Info("project rejected",
				slog.String("userID", ownerID),
				slog.String("templateID", templateID),
			)
			return nil, err
		}
		return nil, fmt.Errorf("service/project: creating project: %w", err)
	}

	s.logger.Info("project created",
		slog.Int64("projectID", project.ID),
		slog.String("userID", ownerID),
		slog.String("templateID", templateID),
	)

	return project, nil
}

// ListMine returns the projects owned by ownerID.
func (s *ProjectService) ListMine(ctx context.Context, ownerID string) ([]model.Project, error) {
	if ownerID == "" {
		return nil, apperror.Unauthenticated("project owner is required")
	}

	projects, err := s.repo.ListProjectsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service/project: listing projects for %s: %w", ownerID, err)
	}
	return projects, nil
}
