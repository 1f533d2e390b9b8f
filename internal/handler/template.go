package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/project-studio/internal/model"
)

// TemplateLister is implemented by service.TemplateService.
type TemplateLister interface {
	List(ctx context.Context, featured bool) ([]model.Template, error)
}

// TemplateHandler serves the template catalogue.
type TemplateHandler struct {
	templates TemplateLister
	logger    *slog.Logger
}

func NewTemplateHandler(templates TemplateLister, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{templates: templates, logger: logger}
}

type templatesResponse struct {
	Templates []model.Template `json:"templates"`
}

// HandleList returns the templates matching the featured flag.
//
// HTTP: GET /api/templates?featured=true|false
//
// A missing featured parameter means false. Only the literals "true" and
// "false" are accepted; anything else is a 400.
func (h *TemplateHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	var featured bool
	switch v := r.URL.Query().Get("featured"); v {
	case "", "false":
	case "true":
		featured = true
	default:
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "featured must be true or false",
			Field:   "featured",
		})
		return
	}

	templates, err := h.templates.List(r.Context(), featured)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, templatesResponse{Templates: templates})
}
