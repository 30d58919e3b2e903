package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"teamhub/internal/auth"
	"teamhub/internal/domain"
	"teamhub/internal/repository/sqlite"
	"teamhub/internal/service"
)

type apiFixture struct {
	router *gin.Engine
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	gin.SetMode(gin.TestMode)
	InitValidator()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "api_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	users := sqlite.NewUserRepository(db)
	players := sqlite.NewPlayerRepository(db)
	events := sqlite.NewEventRepository(db)
	confirmations := sqlite.NewConfirmationRepository(db)
	messages := sqlite.NewMessageRepository(db)
	news := sqlite.NewNewsRepository(db)
	for _, init := range []interface {
		Init(context.Context) error
	}{users, players, events, confirmations, messages, news} {
		require.NoError(t, init.Init(ctx))
	}

	tokens := auth.NewTokenManager("api-test-secret", time.Hour)
	logger := logrus.New()

	router := gin.New()
	handler := NewHandler(
		service.NewAuthService(users, tokens),
		service.NewTeamService(events, confirmations, players, messages, news),
		tokens,
		logger,
	)
	handler.RegisterRoutes(router)

	return &apiFixture{router: router}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) registerUser(t *testing.T, email string, role domain.Role) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    email,
		"password": "secret1",
		"name":     "User " + email,
		"role":     string(role),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp.Status)
	require.NotEmpty(t, resp.Timestamp)
}

func TestRegisterValidationShape(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "not-an-email",
		"password": "x",
		"role":     "admin",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Errors []FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Errors)

	fields := map[string]bool{}
	for _, fe := range resp.Errors {
		fields[fe.Field] = true
	}
	for _, want := range []string{"email", "password", "name", "role"} {
		require.True(t, fields[want], "missing field error for %s: %+v", want, resp.Errors)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAPIFixture(t)
	f.registerUser(t, "coach@example.com", domain.RoleTrainer)

	known := f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "coach@example.com", "password": "wrong-pass",
	})
	unknown := f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "ghost@example.com", "password": "whatever",
	})

	require.Equal(t, http.StatusUnauthorized, known.Code)
	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	require.JSONEq(t, known.Body.String(), unknown.Body.String())
}

func TestTokenGate(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("missing token", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/events", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/events", "garbage", nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestTrainerOnlyMutations(t *testing.T) {
	f := newAPIFixture(t)
	parentToken := f.registerUser(t, "parent@example.com", domain.RoleParent)
	trainerToken := f.registerUser(t, "coach@example.com", domain.RoleTrainer)

	event := gin.H{
		"type": "training", "title": "Practice", "date": "2026-10-01",
		"time": "18:00", "location": "Pitch",
	}

	calls := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/api/events", event},
		{http.MethodPut, "/api/events/1", gin.H{"title": "X"}},
		{http.MethodDelete, "/api/events/1", nil},
		{http.MethodPost, "/api/players", gin.H{"name": "Anna", "number": 4}},
		{http.MethodPost, "/api/messages", gin.H{"subject": "s", "content": "c", "recipient_type": "all"}},
		{http.MethodPost, "/api/news", gin.H{"title": "t", "content": "c"}},
	}
	for _, call := range calls {
		rec := f.do(t, call.method, call.path, parentToken, call.body)
		require.Equalf(t, http.StatusForbidden, rec.Code, "%s %s: %s", call.method, call.path, rec.Body.String())
	}

	// the data stayed untouched: nothing to list afterwards
	rec := f.do(t, http.MethodGet, "/api/events", trainerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}

func TestEventLifecycle(t *testing.T) {
	f := newAPIFixture(t)
	trainerToken := f.registerUser(t, "coach@example.com", domain.RoleTrainer)
	parentToken := f.registerUser(t, "parent@example.com", domain.RoleParent)

	rec := f.do(t, http.MethodPost, "/api/players", trainerToken, gin.H{"name": "Anna", "number": 4})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var player PlayerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &player))

	rec = f.do(t, http.MethodPost, "/api/events", trainerToken, gin.H{
		"type": "match", "title": "Derby", "date": "2026-10-01",
		"time": "14:00", "location": "Stadium", "opponent": "FC Rival",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var event EventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &event))
	require.Equal(t, "scheduled", event.Status)

	// partial update touches only the supplied fields
	rec = f.do(t, http.MethodPut, "/api/events/1", trainerToken, gin.H{"location": "Away ground"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// parent can read and confirm
	rec = f.do(t, http.MethodPost, "/api/events/1/confirmation", parentToken, gin.H{
		"status": "confirmed", "player_id": player.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/events", parentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var events []EventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	require.Equal(t, "Away ground", events[0].Location)
	require.Equal(t, 1, events[0].ConfirmedCount)

	// delete cascades
	rec = f.do(t, http.MethodDelete, "/api/events/1", trainerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/events/1", trainerToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/events/1/confirmations", trainerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}

func TestConfirmationUpsertViaAPI(t *testing.T) {
	f := newAPIFixture(t)
	trainerToken := f.registerUser(t, "coach@example.com", domain.RoleTrainer)

	rec := f.do(t, http.MethodPost, "/api/players", trainerToken, gin.H{"name": "Anna", "number": 4})
	require.Equal(t, http.StatusCreated, rec.Code)
	var player PlayerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &player))

	rec = f.do(t, http.MethodPost, "/api/events", trainerToken, gin.H{
		"type": "training", "title": "Practice", "date": "2026-10-01",
		"time": "18:00", "location": "Pitch",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	for _, status := range []string{"confirmed", "declined"} {
		rec = f.do(t, http.MethodPost, "/api/events/1/confirmation", trainerToken, gin.H{
			"status": status, "player_id": player.ID,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/api/events/1/confirmations", trainerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var confirmations []ConfirmationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &confirmations))
	require.Len(t, confirmations, 1)
	require.Equal(t, "declined", confirmations[0].Status)
}

func TestNewsPublicAndFiltered(t *testing.T) {
	f := newAPIFixture(t)
	trainerToken := f.registerUser(t, "coach@example.com", domain.RoleTrainer)

	rec := f.do(t, http.MethodPost, "/api/news", trainerToken, gin.H{
		"title": "Visible", "content": "c", "published": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/news", trainerToken, gin.H{
		"title": "Draft", "content": "c",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// no token required
	rec = f.do(t, http.MethodGet, "/api/news", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var articles []NewsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &articles))
	require.Len(t, articles, 1)
	require.Equal(t, "Visible", articles[0].Title)
}

func TestMessagesFilteredByRole(t *testing.T) {
	f := newAPIFixture(t)
	trainerToken := f.registerUser(t, "coach@example.com", domain.RoleTrainer)
	parentToken := f.registerUser(t, "parent@example.com", domain.RoleParent)

	for _, recipient := range []string{"all", "parents", "players"} {
		rec := f.do(t, http.MethodPost, "/api/messages", trainerToken, gin.H{
			"subject": "to " + recipient, "content": "c", "recipient_type": recipient,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := f.do(t, http.MethodGet, "/api/messages", parentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var messages []MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &messages))
	require.Len(t, messages, 2)
	for _, m := range messages {
		require.NotEqual(t, "players", m.RecipientType)
	}
}

func TestStatsEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	trainerToken := f.registerUser(t, "coach@example.com", domain.RoleTrainer)

	rec := f.do(t, http.MethodGet, "/api/stats", trainerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Zero(t, stats.TotalPlayers)
	require.Nil(t, stats.NextEvent)
	require.Nil(t, stats.NextEventAttendance)
}
