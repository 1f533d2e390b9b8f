package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sakif/project-studio/internal/apperror"
	"github.com/sakif/project-studio/internal/mock"
	"github.com/sakif/project-studio/internal/model"
)

func newTestProjectService(t *testing.T) (*ProjectService, *mock.MockProjectRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mock.NewMockProjectRepository(ctrl)
	return NewProjectService(repo, testLogger()), repo
}

func TestProjectService_Create(t *testing.T) {
	svc, repo := newTestProjectService(t)

	repo.EXPECT().CreateProject(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p *model.Project) error {
			assert.Equal(t, "owner-1", p.UserID)
			assert.Equal(t, "t1", p.TemplateID)
			assert.Equal(t, "My Site", p.Title)
			assert.Equal(t, "my-site", p.Slug)
			assert.Equal(t, model.StatusInProgress, p.Status)
			p.ID = 1
			return nil
		},
	)

	project, err := svc.Create(context.Background(), "owner-1", "t1", "  My Site  ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), project.ID)
	assert.Equal(t, model.StatusInProgress, project.Status)
}

func TestProjectService_Create_Validation(t *testing.T) {
	tests := []struct {
		name       string
		ownerID    string
		templateID string
		title      string
		wantErr    error
	}{
		{"no owner", "", "t1", "Site", apperror.ErrUnauthenticated},
		{"no template", "u1", "", "Site", apperror.ErrValidation},
		{"blank template", "u1", "   ", "Site", apperror.ErrValidation},
		{"no title", "u1", "t1", "", apperror.ErrValidation},
		{"blank title", "u1", "t1", " \t ", apperror.ErrValidation},
		{"long title", "u1", "t1", strings.Repeat("x", MaxProjectTitleLength+1), apperror.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestProjectService(t)

			_, err := svc.Create(context.Background(), tt.ownerID, tt.templateID, tt.title)
			assert.True(t, errors.Is(err, tt.wantErr), "want %v, got %v", tt.wantErr, err)
		})
	}
}

func TestProjectService_Create_UnknownTemplate(t *testing.T) {
	svc, repo := newTestProjectService(t)
	repo.EXPECT().CreateProject(gomock.Any(), gomock.Any()).
		Return(apperror.BadRequest("invalid data: template or owner does not exist", errors.New("FOREIGN KEY constraint failed")))

	_, err := svc.Create(context.Background(), "u1", "nope", "Site")
	assert.True(t, errors.Is(err, apperror.ErrBadRequest), "want ErrBadRequest, got %v", err)
}

func TestProjectService_Create_StoreFailure(t *testing.T) {
	svc, repo := newTestProjectService(t)
	repo.EXPECT().CreateProject(gomock.Any(), gomock.Any()).Return(errors.New("database is locked"))

	_, err := svc.Create(context.Background(), "u1", "t1", "Site")
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperror.ErrBadRequest))
}

func TestProjectService_ListMine(t *testing.T) {
	svc, repo := newTestProjectService(t)
	want := []model.Project{{ID: 1, UserID: "u1", Title: "A"}}
	repo.EXPECT().ListProjectsByOwner(gomock.Any(), "u1").Return(want, nil)

	got, err := svc.ListMine(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = svc.ListMine(context.Background(), "")
	assert.True(t, errors.Is(err, apperror.ErrUnauthenticated))
}

func TestProjectService_ListMine_StoreFailure(t *testing.T) {
	svc, repo := newTestProjectService(t)
	repo.EXPECT().ListProjectsByOwner(gomock.Any(), "u1").Return(nil, errors.New("io error"))

	_, err := svc.ListMine(context.Background(), "u1")
	assert.Error(t, err)
}
