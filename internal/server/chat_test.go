package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/ArkMaster123/arkagentic/config"
	"github.com/ArkMaster123/arkagentic/internal/agent"
	"github.com/ArkMaster123/arkagentic/internal/runtime"
	"github.com/ArkMaster123/arkagentic/internal/store"
)

// stubProvider answers every completion with a fixed reply.
type stubProvider struct {
	reply string
}

func (p *stubProvider) Generate(ctx context.Context, messages []agent.Message, model string) (string, int64, int64, error) {
	return p.reply, 10, 5, nil
}

func (p *stubProvider) Stream(ctx context.Context, messages []agent.Message, model string, onDelta func(string)) (string, error) {
	half := len(p.reply) / 2
	onDelta(p.reply[:half])
	onDelta(p.reply[half:])
	return p.reply, nil
}

func (p *stubProvider) Close() {}

func newTestOrchestrator(reply string) *agent.Orchestrator {
	factory := agent.NewFactory(&stubProvider{reply: reply}, nil, nil)
	return agent.NewOrchestrator(factory, config.SwarmConfig{}, nil, false)
}

func newChatHandler(orch *agent.Orchestrator, st *store.Store) *ChatHandler {
	return &ChatHandler{
		Orch:   orch,
		Store:  st,
		Logger: log.New(io.Discard, "", 0),
	}
}

func TestChatRoutesToSpecialist(t *testing.T) {
	e := echo.New()
	h := newChatHandler(newTestOrchestrator("the outlook is mixed"), nil)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"analyze the market implications"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.chat(e.NewContext(req, rec)); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var resp ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Agent != "sage" {
		t.Fatalf("expected sage got %q", resp.Agent)
	}
	if resp.AgentName != "Sage" || resp.AgentEmoji == "" {
		t.Fatalf("persona fields not filled: %+v", resp)
	}
	if resp.Response != "the outlook is mixed" || resp.Status != agent.StatusCompleted {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestChatRequiresMessage(t *testing.T) {
	e := echo.New()
	h := newChatHandler(newTestOrchestrator("unused"), nil)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"  "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.chat(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %v", err)
	}
}

func TestChatPersistsForAuthenticatedUser(t *testing.T) {
	e := echo.New()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := newChatHandler(newTestOrchestrator("hello there"), &store.Store{DB: db})

	now := time.Now()
	mock.ExpectQuery(`SELECT id, type, user_id, agent_id, created_at, last_message_at`).
		WithArgs("user-1", "maven").
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "user_id", "agent_id", "created_at", "last_message_at"}).
			AddRow("sess-1", "agent", "user-1", "maven", now, nil))
	mock.ExpectQuery(`SELECT id, display_name, avatar_sprite, email, is_anonymous`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name", "avatar_sprite", "email", "is_anonymous", "is_admin", "created_at", "last_seen_at"}).
			AddRow("user-1", "Ada", "default", nil, true, false, now, nil))
	mock.ExpectQuery(`INSERT INTO chat_messages`).
		WithArgs("sess-1", "user", "user-1", "Ada", "hi", []byte("{}")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "sender_type", "sender_id", "sender_name", "content", "created_at"}).
			AddRow("msg-1", "sess-1", "user", "user-1", "Ada", "hi", now))
	mock.ExpectExec(`UPDATE chat_sessions SET last_message_at`).
		WithArgs("sess-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO chat_messages`).
		WithArgs("sess-1", "agent", "maven", "Maven", "hello there", []byte("{}")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "sender_type", "sender_id", "sender_name", "content", "created_at"}).
			AddRow("msg-2", "sess-1", "agent", "maven", "Maven", "hello there", now))
	mock.ExpectExec(`UPDATE chat_sessions SET last_message_at`).
		WithArgs("sess-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.Set("user_id", "user-1")

	if err := h.chat(ctx); err != nil {
		t.Fatalf("chat: %v", err)
	}

	var resp ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID != "sess-1" {
		t.Fatalf("expected session id in response, got %+v", resp)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestChatStreamEmitsFrames(t *testing.T) {
	e := echo.New()
	h := newChatHandler(newTestOrchestrator("streaming reply"), nil)

	req := httptest.NewRequest(http.MethodPost, "/chat/stream", strings.NewReader(`{"message":"hello"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.chatStream(e.NewContext(req, rec)); err != nil {
		t.Fatalf("chatStream: %v", err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "text/event-stream" {
		t.Fatalf("expected event stream content type, got %q", ct)
	}

	var types []string
	var firstFrame string
	var rebuilt strings.Builder
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if firstFrame == "" {
			firstFrame = payload
		}
		var ev agent.StreamEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			t.Fatalf("decode frame %q: %v", line, err)
		}
		types = append(types, string(ev.Type))
		if ev.Type == agent.EventChunk {
			rebuilt.WriteString(ev.Content)
		}
	}
	if len(types) < 3 || types[0] != "start" || types[len(types)-1] != "done" {
		t.Fatalf("unexpected frame sequence: %v", types)
	}
	if !strings.Contains(firstFrame, `"model"`) || !strings.Contains(firstFrame, `"swarm_mode"`) {
		t.Fatalf("start frame missing binding fields: %s", firstFrame)
	}
	if rebuilt.String() != "streaming reply" {
		t.Fatalf("chunks reassemble to %q", rebuilt.String())
	}
}

func TestRouteEndpoint(t *testing.T) {
	e := echo.New()
	h := newChatHandler(newTestOrchestrator("unused"), nil)

	req := httptest.NewRequest(http.MethodPost, "/route", strings.NewReader(`{"message":"search for the latest news"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.route(e.NewContext(req, rec)); err != nil {
		t.Fatalf("route: %v", err)
	}

	var resp RouteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Agent != "scout" || resp.AgentName != "Scout" {
		t.Fatalf("unexpected route: %+v", resp)
	}
}

func TestSessionMessagesRejectsForeignSession(t *testing.T) {
	e := echo.New()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := newChatHandler(newTestOrchestrator("unused"), &store.Store{DB: db})

	mock.ExpectQuery(`SELECT id, type, user_id, agent_id, created_at, last_message_at`).
		WithArgs("sess-9").
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "user_id", "agent_id", "created_at", "last_message_at"}).
			AddRow("sess-9", "agent", "someone-else", "maven", time.Now(), nil))

	req := httptest.NewRequest(http.MethodGet, "/api/chat/sessions/sess-9/messages", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.Set("user_id", "user-1")
	ctx.SetParamNames("id")
	ctx.SetParamValues("sess-9")

	err = h.sessionMessages(ctx)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCallerIDFromContextSubject(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req = req.WithContext(runtime.ContextWithSubject(req.Context(), "user-9"))
	ctx := e.NewContext(req, httptest.NewRecorder())

	if got := callerID(ctx); got != "user-9" {
		t.Fatalf("callerID = %q, want user-9", got)
	}
	ctx.Set("user_id", "user-1")
	if got := callerID(ctx); got != "user-1" {
		t.Fatalf("context key should win, got %q", got)
	}
}
