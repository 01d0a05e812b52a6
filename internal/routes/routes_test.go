package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/votopopular/civic-api/internal/config"
	"github.com/votopopular/civic-api/internal/handlers"
	"github.com/votopopular/civic-api/internal/identity"
	"github.com/votopopular/civic-api/internal/models"
	"github.com/votopopular/civic-api/internal/services"
	"github.com/votopopular/civic-api/internal/testutil"
	"gorm.io/gorm"
)

const secret = "routes-test-secret-0123"

type server struct {
	app *fiber.App
	db  *gorm.DB
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{RateLimitPerMinute: 10000}

	audit := services.NewAuditService(db)
	sanitizer := services.NewSanitizer()
	af := services.NewAntifraud(services.NewGormAttemptStore(db), 5, 15*time.Minute, "k")
	auth := services.NewAuthService(db, audit, af, []string{"root@example.com"})

	app := fiber.New()
	Setup(app, cfg, db, identity.NewHMAC(secret), auth,
		handlers.NewHealthHandler(db, "hmac"),
		handlers.NewAuthHandler(auth),
		handlers.NewUserHandler(services.NewUserService(db, audit, af, sanitizer)),
		handlers.NewProposalHandler(services.NewProposalService(db, audit, sanitizer)),
		handlers.NewVoteHandler(services.NewVoteService(db, audit)),
		handlers.NewMunicipalityHandler(services.NewMunicipalityService(db, audit)),
		handlers.NewComplaintHandler(services.NewComplaintService(db, sanitizer)),
		handlers.NewReportHandler(services.NewReportService(db), audit),
	)
	return &server{app: app, db: db}
}

type envelope struct {
	Result *struct {
		Data json.RawMessage `json:"data"`
	} `json:"result"`
	Error *struct {
		Code   string            `json:"code"`
		Reason string            `json:"reason"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

func token(t *testing.T, id identity.Identity) string {
	t.Helper()
	if id.Email == "" {
		id.Email = id.Subject + "@example.com"
	}
	tok, err := identity.SignHMAC(secret, id, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *server) call(t *testing.T, as *models.User, method, name string, input interface{}) (int, envelope) {
	t.Helper()
	tok := ""
	if as != nil {
		tok = token(t, identity.Identity{Subject: as.ID, Email: as.Email, EmailVerified: true})
	}
	return s.callToken(t, tok, method, name, input)
}

func (s *server) callToken(t *testing.T, tok, method, name string, input interface{}) (int, envelope) {
	t.Helper()
	var body io.Reader
	target := "/api/rpc/" + name
	if input != nil {
		raw, err := json.Marshal(input)
		require.NoError(t, err)
		if method == http.MethodGet {
			target += "?input=" + url.QueryEscape(string(raw))
		} else {
			body = strings.NewReader(string(raw))
		}
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	require.NotNil(t, env.Result, "expected a result, got error %+v", env.Error)
	var out T
	require.NoError(t, json.Unmarshal(env.Result.Data, &out))
	return out
}

type proposalView struct {
	ID             string `json:"id"`
	MunicipalityID string `json:"municipality_id"`
	Status         string `json:"status"`
	VoteCount      int64  `json:"vote_count"`
}

func TestProposalLifecycleAndVoting(t *testing.T) {
	s := newServer(t)
	testutil.Municipality(t, s.db, "muriae-mg")
	testutil.Municipality(t, s.db, "sp")
	council := testutil.User(t, s.db, models.RoleCouncilMember, "muriae-mg")
	admin := testutil.User(t, s.db, models.RoleCityAdmin, "muriae-mg")
	citizen := testutil.User(t, s.db, models.RoleCitizen, "muriae-mg")
	foreignAdmin := testutil.User(t, s.db, models.RoleCityAdmin, "sp")

	status, env := s.call(t, council, http.MethodPost, "proposals.create", map[string]string{
		"title":       "Mais ciclovias",
		"description": "Construir ciclovias nas avenidas principais",
	})
	require.Equal(t, http.StatusOK, status)
	p := decode[proposalView](t, env)
	assert.Equal(t, "pending", p.Status)
	assert.Equal(t, "muriae-mg", p.MunicipalityID)
	assert.Zero(t, p.VoteCount)

	status, env = s.call(t, foreignAdmin, http.MethodPost, "proposals.approve", map[string]string{"proposalId": p.ID})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	status, env = s.call(t, admin, http.MethodPost, "proposals.approve", map[string]string{"proposalId": p.ID})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "approved", decode[proposalView](t, env).Status)

	status, env = s.call(t, citizen, http.MethodPost, "votes.cast", map[string]string{"proposalId": p.ID})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), decode[services.VoteResult](t, env).VoteCount)

	_, env = s.call(t, citizen, http.MethodGet, "votes.hasVoted", map[string]string{"proposalId": p.ID})
	assert.True(t, decode[bool](t, env))

	status, env = s.call(t, citizen, http.MethodPost, "votes.cast", map[string]string{"proposalId": p.ID})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "already_voted", env.Error.Reason)

	_, env = s.call(t, nil, http.MethodGet, "proposals.listApproved", map[string]string{"municipalityId": "muriae-mg"})
	list := decode[[]proposalView](t, env)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].VoteCount)

	_, env = s.call(t, nil, http.MethodGet, "votes.hasVoted", map[string]string{"proposalId": p.ID})
	assert.False(t, decode[bool](t, env))
}

func TestGuardsOnTheWire(t *testing.T) {
	s := newServer(t)
	testutil.Municipality(t, s.db, "muriae-mg")
	citizen := testutil.User(t, s.db, models.RoleCitizen, "muriae-mg")
	unbound := testutil.User(t, s.db, models.RoleCouncilMember, "")

	create := map[string]string{"title": "Mais ciclovias", "description": "Construir ciclovias nas avenidas principais"}

	status, env := s.call(t, nil, http.MethodPost, "proposals.create", create)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHENTICATED", env.Error.Code)

	status, _ = s.call(t, citizen, http.MethodPost, "proposals.create", create)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.call(t, unbound, http.MethodPost, "proposals.create", create)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = s.call(t, citizen, http.MethodPost, "votes.cast", map[string]string{"proposalId": "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error.Fields, "proposalId")

	status, _ = s.callToken(t, "garbage", http.MethodGet, "auth.me", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestMunicipalityProvisioning(t *testing.T) {
	s := newServer(t)
	root := testutil.User(t, s.db, models.RoleSuperAdmin, "")
	admin := testutil.User(t, s.db, models.RoleCityAdmin, "")

	status, env := s.call(t, root, http.MethodPost, "municipalities.create", map[string]string{"id": "Muriaé MG", "name": "Muriaé"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", env.Error.Code)

	in := map[string]string{"id": "muriae-mg", "name": "Muriaé", "state": "MG", "primaryColor": "#112233"}
	status, _ = s.call(t, root, http.MethodPost, "municipalities.create", in)
	require.Equal(t, http.StatusOK, status)
	status, env = s.call(t, root, http.MethodPost, "municipalities.create", in)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "slug_taken", env.Error.Reason)

	status, _ = s.call(t, admin, http.MethodPost, "municipalities.create", map[string]string{"id": "sp", "name": "São Paulo"})
	assert.Equal(t, http.StatusForbidden, status)

	_, env = s.call(t, nil, http.MethodGet, "theme.get", map[string]string{"municipalityId": "muriae-mg"})
	theme := decode[models.Theme](t, env)
	assert.Equal(t, "#112233", theme.PrimaryColor)
	assert.Equal(t, models.DefaultAccentColor, theme.AccentColor)

	status, env = s.call(t, root, http.MethodPost, "theme.update", map[string]string{"municipalityId": "muriae-mg", "accentColor": "orange"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error.Fields, "accentColor")
}

func TestSyncCreatesCitizenFromVerifiedIdentity(t *testing.T) {
	s := newServer(t)
	tok := token(t, identity.Identity{Subject: "firebase-uid-1", Email: "ana@example.com", Name: "Ana"})

	status, env := s.callToken(t, tok, http.MethodPost, "auth.sync", map[string]string{"uid": "spoofed", "email": "root@example.com"})
	require.Equal(t, http.StatusOK, status)
	me := decode[services.CurrentUser](t, env)
	assert.Equal(t, "firebase-uid-1", me.ID)
	assert.Equal(t, "ana@example.com", me.Email)
	assert.Equal(t, models.RoleCitizen, me.Role)

	_, env = s.callToken(t, tok, http.MethodGet, "auth.me", nil)
	assert.Equal(t, "firebase-uid-1", decode[services.CurrentUser](t, env).ID)

	status, _ = s.callToken(t, "", http.MethodPost, "auth.sync", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "hmac", body["identity"])
}
