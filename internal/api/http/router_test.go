package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/api/http/handlers"
	"github.com/spec-kit/triage-service/internal/auth"
	"github.com/spec-kit/triage-service/internal/corpus"
	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/llm"
	"github.com/spec-kit/triage-service/internal/notify"
	"github.com/spec-kit/triage-service/internal/observability"
	"github.com/spec-kit/triage-service/internal/persistence"
	"github.com/spec-kit/triage-service/internal/repository"
	"github.com/spec-kit/triage-service/internal/service"
	"github.com/spec-kit/triage-service/internal/triage"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type stubSender struct{ alerts []notify.Alert }

func (s *stubSender) Send(_ context.Context, alert notify.Alert) (notify.Delivery, error) {
	s.alerts = append(s.alerts, alert)
	recipient := alert.Recipient
	if recipient == "" {
		recipient = "lead@example.com"
	}
	return notify.Delivery{Recipient: recipient, Subject: "Ticket Update: " + alert.TicketKey, Delivered: true}, nil
}

type testServer struct {
	app    *fiber.App
	tokens *auth.TokenManager
	sender *stubSender
}

func hours(h float64) *float64 { return &h }

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	store := corpus.NewStore(corpus.New("test", []domain.HistoricalTicket{
		{Issue: "Payment failed with card declined error", Solution: "Ask the customer to retry with another card", Sentiment: domain.SentimentNegative, Priority: domain.PriorityHigh, ResolutionHours: hours(5)},
		{Issue: "Router firmware installation hangs", Solution: "Power cycle and reflash", Sentiment: domain.SentimentNeutral, Priority: domain.PriorityMedium, ResolutionHours: hours(20)},
	}))
	gen := llm.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		switch {
		case strings.HasPrefix(prompt, "Summarize"):
			return "Customer reports a declined card payment.", nil
		case strings.HasPrefix(prompt, "What is the single"):
			return "Payment failed with card declined error", nil
		case strings.HasPrefix(prompt, "Analyze the sentiment"):
			return "Neutral", nil
		case strings.HasPrefix(prompt, "Review the technical"):
			return "Retry the payment.", nil
		case strings.HasPrefix(prompt, "Write a short"):
			return "Dear customer, we are on it.", nil
		default:
			return "Could you share the exact error message?", nil
		}
	})

	repo := repository.NewMemoryTriagedTicketRepository()
	dispatcher := events.NewInMemoryDispatcher()
	sender := &stubSender{}
	triageService := service.NewTriageService(service.TriageDependencies{
		TicketRepo: repo,
		Corpus:     store,
		Processor:  triage.NewProcessor(triage.DefaultRules()),
		Analyzer:   llm.NewConversationAnalyzer(gen),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	notifications := service.NewNotificationService(service.NotificationDependencies{
		TicketRepo: repo,
		Sender:     sender,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	tokens := auth.NewTokenManager("test-secret", "triage-service", time.Hour)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("triage-service", "test", &persistence.Postgres{}, &persistence.Redis{}, store),
		Triage:         handlers.NewTriageHandler(triageService),
		Tickets:        handlers.NewTicketsHandler(triageService, notifications),
		Corpus:         handlers.NewCorpusHandler(triageService, nil),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		Metrics:        metrics,
	})
	return &testServer{app: app, tokens: tokens, sender: sender}
}

func (s *testServer) token(t *testing.T, role domain.StaffRole) string {
	t.Helper()
	token, _, err := s.tokens.GenerateToken("staff-1", role)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) (int, envelope) {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}

func conversation() map[string]any {
	return map[string]any{"conversation_history": []domain.ChatMessage{
		{Role: "user", Content: "My card payment keeps failing with a declined error."},
		{Role: "assistant", Content: "Sorry to hear that. Which card type?"},
		{Role: "user", Content: "Visa. Yes, sure."},
	}}
}

func TestSubmitAndReadBack(t *testing.T) {
	srv := newTestServer(t)

	status, env := srv.do(t, http.MethodPost, "/api/v1/triage", conversation(), "")
	require.Equal(t, http.StatusCreated, status)

	var created struct {
		Key      string                `json:"ticket_id"`
		Status   string                `json:"status"`
		Analysis domain.AnalysisResult `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.True(t, strings.HasPrefix(created.Key, "TICKET-"))
	assert.Equal(t, string(domain.TicketStatusTriaged), created.Status)
	assert.Equal(t, domain.TeamBilling, created.Analysis.Team)
	assert.Equal(t, domain.PriorityCritical, created.Analysis.Priority, "issue mentions error")
	assert.Equal(t, "Ask the customer to retry with another card", created.Analysis.Solution)
	assert.NotEmpty(t, created.Analysis.SimilarCases)

	agent := srv.token(t, domain.StaffRoleAgent)

	status, env = srv.do(t, http.MethodGet, "/api/v1/tickets/"+created.Key, nil, agent)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), created.Key)

	status, env = srv.do(t, http.MethodGet, "/api/v1/tickets?priority=critical&team=billing", nil, agent)
	require.Equal(t, http.StatusOK, status)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.Key, listed[0]["ticket_id"])

	status, env = srv.do(t, http.MethodGet, "/api/v1/tickets?team=Billing&priority=low", nil, agent)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Empty(t, listed)

	status, env = srv.do(t, http.MethodPost, "/api/v1/tickets/"+created.Key+"/draft", nil, agent)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "Dear customer")

	status, env = srv.do(t, http.MethodPost, "/api/v1/tickets/"+created.Key+"/notify",
		map[string]string{"note": "please look", "recipient": "boss@example.com"}, agent)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "boss@example.com")
	require.NotEmpty(t, srv.sender.alerts)
	assert.Equal(t, "please look", srv.sender.alerts[len(srv.sender.alerts)-1].Note)
}

func TestSubmitRejectsEmptyConversation(t *testing.T) {
	srv := newTestServer(t)

	status, env := srv.do(t, http.MethodPost, "/api/v1/triage", map[string]any{"conversation_history": []any{}}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := newTestServer(t)

	status, env := srv.do(t, http.MethodPost, "/api/v1/triage/analyze", map[string]string{
		"conversation": "User: my router installation crashed",
		"issue":        "Router installation crashed",
		"sentiment":    "Neutral",
	}, "")
	require.Equal(t, http.StatusOK, status)
	var result domain.AnalysisResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, domain.TeamTechnical, result.Team)
	assert.GreaterOrEqual(t, result.Confidence, 0.1)
	assert.LessOrEqual(t, result.Confidence, 0.95)

	status, env = srv.do(t, http.MethodPost, "/api/v1/triage/analyze", map[string]string{
		"conversation": "User: hello",
		"issue":        "   ",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestChatEndpoint(t *testing.T) {
	srv := newTestServer(t)

	status, env := srv.do(t, http.MethodPost, "/api/v1/chat", conversation(), "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "exact error message")
}

func TestStaffRoutesRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	status, env := srv.do(t, http.MethodGet, "/api/v1/tickets", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	status, _ = srv.do(t, http.MethodGet, "/api/v1/tickets", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, status)

	agent := srv.token(t, domain.StaffRoleAgent)
	status, env = srv.do(t, http.MethodPost, "/api/v1/corpus/reload", nil, agent)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	admin := srv.token(t, domain.StaffRoleAdmin)
	status, env = srv.do(t, http.MethodPost, "/api/v1/corpus/reload", nil, admin)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "CORPUS_UNAVAILABLE", env.Error.Code)

	status, env = srv.do(t, http.MethodGet, "/api/v1/corpus", nil, agent)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"tickets":2`)
}

func TestTicketErrors(t *testing.T) {
	srv := newTestServer(t)
	agent := srv.token(t, domain.StaffRoleAgent)

	status, env := srv.do(t, http.MethodGet, "/api/v1/tickets/TICKET-MISSING", nil, agent)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	status, env = srv.do(t, http.MethodGet, "/api/v1/tickets?team=Marketing", nil, agent)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	status, _ = srv.do(t, http.MethodGet, "/api/v1/tickets?created_from=yesterday", nil, agent)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	status, _ := srv.do(t, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = srv.do(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, status, "disabled backends do not fail readiness")

	srv.do(t, http.MethodPost, "/api/v1/triage", conversation(), "")
	resp, err := srv.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "triage_http_requests_total")
}
