package service

import (
	"context"
	"log/slog"

	"github.com/sakif/project-studio/internal/apperror"
	"github.com/sakif/project-studio/internal/model"
	"github.com/sakif/project-studio/internal/repository"
)

// TemplateService serves the read-only template catalogue.
type TemplateService struct {
	repo   repository.TemplateRepository
	logger *slog.Logger
}

func NewTemplateService(repo repository.TemplateRepository, logger *slog.Logger) *TemplateService {
	return &TemplateService{repo: repo, logger: logger}
}

// List returns the templates whose featured flag equals featured.
//
// A store failure is reported as apperror.ErrBadRequest, never as an empty
// list.
func (s *TemplateService) List(ctx context.Context, featured bool) ([]model.Template, error) {
	templates, err := s.repo.ListTemplates(ctx, featured)
	if err != nil {
		s.logger.Error("listing templates failed",
			slog.Bool("featured", featured),
			slog.String("error", err.Error()),
		)
		return nil, apperror.BadRequest("failed to fetch templates", err)
	}
	return templates, nil
}
