package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/project-studio/internal/auth"
	"github.com/sakif/project-studio/internal/model"
)

// ProjectManager is implemented by service.ProjectService.
type ProjectManager interface {
	Create(ctx context.Context, ownerID, templateID, title string) (*model.Project, error)
	ListMine(ctx context.Context, ownerID string) ([]model.Project, error)
}

// ProjectHandler creates and lists the caller's projects. Both routes sit
// behind RequireBearer.
type ProjectHandler struct {
	projects ProjectManager
	logger   *slog.Logger
}

func NewProjectHandler(projects ProjectManager, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

// createProjectRequest has no owner field: the owner is the token subject.
// An owner sent by the client is dropped by the decoder.
type createProjectRequest struct {
	TemplateID string `json:"templateId"`
	Title      string `json:"title"`
}

type createProjectResponse struct {
	ProjectID int64               `json:"projectId"`
	Title     string              `json:"title"`
	Status    model.ProjectStatus `json:"status"`
}

type projectsResponse struct {
	Projects []model.Project `json:"projects"`
}

// HandleCreate creates a project for the authenticated user.
//
// HTTP: POST /api/projects
// REQUEST BODY: {"templateId": "t1", "title": "My Site"}
// RESPONSES: 201 {projectId, title, status}, 400 invalid data or unknown template.
func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.UserIDFromContext(r.Context())

	var req createProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	project, err := h.projects.Create(r.Context(), ownerID, req.TemplateID, req.Title)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, createProjectResponse{
		ProjectID: project.ID,
		Title:     project.Title,
		Status:    project.Status,
	})
}

// HandleList returns the authenticated user's projects.
//
// HTTP: GET /api/projects
func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.UserIDFromContext(r.Context())

	projects, err := h.projects.ListMine(r.Context(), ownerID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, projectsResponse{Projects: projects})
}
