package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sakif/project-studio/internal/auth"
	"github.com/sakif/project-studio/internal/model"
	"github.com/sakif/project-studio/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// decodeBody decodes the recorder's JSON body into a generic map.
func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}

// FakeAccounts implements handler.AccountService with canned results.
type FakeAccounts struct {
	RegisterUser *model.User
	RegisterErr  error
	LoginResult  *service.AuthResult
	LoginErr     error
	GitHubResult *service.AuthResult
	GitHubErr    error
	Me           *model.User
	MeErr        error

	CapturedUsername string
	CapturedEmail    string
	CapturedPassword string
	CapturedUserID   string
	CapturedGitHub   *auth.GitHubUser
}

func (f *FakeAccounts) Register(_ context.Context, username, email, password string) (*model.User, error) {
	f.CapturedUsername, f.CapturedEmail, f.CapturedPassword = username, email, password
	return f.RegisterUser, f.RegisterErr
}

func (f *FakeAccounts) Login(_ context.Context, email, password string) (*service.AuthResult, error) {
	f.CapturedEmail, f.CapturedPassword = email, password
	return f.LoginResult, f.LoginErr
}

func (f *FakeAccounts) LoginWithGitHub(_ context.Context, gh *auth.GitHubUser) (*service.AuthResult, error) {
	f.CapturedGitHub = gh
	return f.GitHubResult, f.GitHubErr
}

func (f *FakeAccounts) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.CapturedUserID = id
	return f.Me, f.MeErr
}

// FakeGitHub implements handler.GitHubAuthenticator.
type FakeGitHub struct {
	User         *auth.GitHubUser
	Err          error
	CapturedCode string
}

func (f *FakeGitHub) AuthURL(state string) string {
	return "https://github.example/authorize?state=" + state
}

func (f *FakeGitHub) Exchange(_ context.Context, code string) (*auth.GitHubUser, error) {
	f.CapturedCode = code
	return f.User, f.Err
}
