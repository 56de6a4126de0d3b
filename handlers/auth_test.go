package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/notewall/notewall/internal/config"
	"github.com/notewall/notewall/internal/models"
	"github.com/notewall/notewall/internal/sessions"
	"github.com/notewall/notewall/internal/users"
)

type fakeUserRepo struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
	next    int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*models.User{}, byID: map[string]*models.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, users.ErrEmailTaken
	}
	f.next++
	cp := *u
	cp.ID = fmt.Sprintf("user-%d", f.next)
	f.byEmail[cp.Email] = &cp
	f.byID[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return f.byEmail[email], nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	return f.byID[id], nil
}

type captureMailer struct {
	to       string
	password string
}

func (m *captureMailer) SendCredentials(_ context.Context, to, _, password string) error {
	m.to = to
	m.password = password
	return nil
}

type fakeSessionRepo struct {
	byToken map[string]*sessions.Session
}

func (f *fakeSessionRepo) Create(_ context.Context, s *sessions.Session) error {
	cp := *s
	f.byToken[s.RefreshToken] = &cp
	return nil
}

func (f *fakeSessionRepo) GetByRefresh(_ context.Context, refresh string) (*sessions.Session, error) {
	s, ok := f.byToken[refresh]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionRepo) DeleteByRefresh(_ context.Context, refresh string) error {
	delete(f.byToken, refresh)
	return nil
}

func newAuthTestServer(t *testing.T) (*gin.Engine, *captureMailer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-0123456789-0123456789"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	cfg.JWT.RefreshTokenTTL = time.Hour

	mailer := &captureMailer{}
	usersSvc := users.NewService(newFakeUserRepo(), mailer)
	sessionsSvc := sessions.NewService(&fakeSessionRepo{byToken: map[string]*sessions.Session{}})

	g := gin.New()
	NewAuthHandler(cfg, usersSvc, sessionsSvc).Register(g.Group("/api"))
	return g, mailer
}

func postJSON(g *gin.Engine, path, body string, header map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	g.ServeHTTP(w, req)
	return w
}

func TestRegisterLoginRefreshLogout(t *testing.T) {
	g, mailer := newAuthTestServer(t)

	// register: credentials go out by mail, not in the response
	w := postJSON(g, "/api/auth/register",
		`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "ada@example.com", mailer.to)
	require.NotEmpty(t, mailer.password)
	require.NotContains(t, w.Body.String(), mailer.password)

	// duplicate email
	w = postJSON(g, "/api/auth/register",
		`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"}`, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	// login with mailed password
	w = postJSON(g, "/api/auth/login",
		`{"email":"ada@example.com","password":"`+mailer.password+`"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.AccessToken)
	require.NotEmpty(t, login.RefreshToken)

	// refresh issues a new access token
	w = postJSON(g, "/api/auth/refresh",
		`{"refreshToken":"`+login.RefreshToken+`"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var refreshed struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	require.NotEmpty(t, refreshed.AccessToken)

	// logout invalidates the refresh token
	w = postJSON(g, "/api/auth/logout",
		`{"refreshToken":"`+login.RefreshToken+`"}`,
		map[string]string{"Authorization": "Bearer " + login.AccessToken})
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(g, "/api/auth/refresh",
		`{"refreshToken":"`+login.RefreshToken+`"}`, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	g, _ := newAuthTestServer(t)

	w := postJSON(g, "/api/auth/register",
		`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(g, "/api/auth/login",
		`{"email":"ada@example.com","password":"wrong-password"}`, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(g, "/api/auth/login",
		`{"email":"nobody@example.com","password":"whatever"}`, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	g, _ := newAuthTestServer(t)

	w := postJSON(g, "/api/auth/register", `{"firstName":"Ada"}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(g, "/api/auth/register",
		`{"firstName":"Ada","lastName":"L","email":"not-an-email"}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
