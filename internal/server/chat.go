package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ArkMaster123/arkagentic/internal/agent"
	"github.com/ArkMaster123/arkagentic/internal/persona"
	"github.com/ArkMaster123/arkagentic/internal/runtime"
	"github.com/ArkMaster123/arkagentic/internal/search"
	"github.com/ArkMaster123/arkagentic/internal/store"
)

// ChatHandler serves the query endpoints and, for authenticated
// callers, persists the exchange into an agent chat session.
type ChatHandler struct {
	Orch   *agent.Orchestrator
	Store  *store.Store
	Index  *search.Index
	Logger *log.Logger
}

// Register mounts the public chat endpoints. Auth is optional here:
// anonymous callers get answers without history.
func (h *ChatHandler) Register(e *echo.Echo, secret []byte) {
	opt := func(hf echo.HandlerFunc) echo.HandlerFunc { return hf }
	if secret != nil {
		mw := optionalAuth(secret)
		opt = func(hf echo.HandlerFunc) echo.HandlerFunc { return mw(hf) }
	}
	e.POST("/chat", opt(h.chat))
	e.POST("/chat/stream", opt(h.chatStream))
	e.POST("/route", h.route)
}

// RegisterAPI mounts the history endpoints on a JWT-guarded group.
func (h *ChatHandler) RegisterAPI(g *echo.Group) {
	g.GET("/chat/sessions", h.sessions)
	g.GET("/chat/sessions/:id/messages", h.sessionMessages)
	g.GET("/chat/search", h.searchMessages)
}

func (h *ChatHandler) chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}

	ctx := c.Request().Context()
	userID := callerID(c)
	modelID := h.resolveModel(ctx, userID, req.ModelID)

	res := h.Orch.ProcessQuery(ctx, req.Message, req.Agent, modelID, req.UseSwarm)
	p, _ := persona.Lookup(res.Agent)

	resp := ChatResponse{
		Response:   res.Response,
		Agent:      res.Agent,
		AgentName:  p.Name,
		AgentEmoji: p.Emoji,
		Handoffs:   res.Handoffs,
		Status:     res.Status,
	}
	if userID != "" && res.Status == agent.StatusCompleted {
		resp.SessionID = h.persistExchange(ctx, userID, res.Agent, req.Message, res.Response)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) chatStream(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}

	ctx := c.Request().Context()
	userID := callerID(c)
	modelID := h.resolveModel(ctx, userID, req.ModelID)

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	flusher, ok := resp.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "streaming unsupported")
	}

	events := h.Orch.StreamQuery(ctx, req.Message, req.Agent, modelID, req.UseSwarm)
	for ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			h.Logger.Printf("stream marshal failed: %v", err)
			continue
		}
		if _, err := resp.Write([]byte("data: " + string(data) + "\n\n")); err != nil {
			return nil
		}
		flusher.Flush()

		if ev.Type == agent.EventDone && userID != "" {
			h.persistExchange(ctx, userID, ev.Agent, req.Message, ev.Content)
		}
	}
	return nil
}

func (h *ChatHandler) route(c echo.Context) error {
	var req RouteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}
	id := agent.Route(req.Message)
	p, _ := persona.Lookup(id)
	return c.JSON(http.StatusOK, RouteResponse{Agent: id, AgentName: p.Name, AgentEmoji: p.Emoji})
}

func (h *ChatHandler) sessions(c echo.Context) error {
	userID := c.Get("user_id").(string)
	limit := queryInt(c, "limit", 20)
	out, err := h.Store.GetUserChatSessions(c.Request().Context(), userID, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ChatHandler) sessionMessages(c echo.Context) error {
	userID := c.Get("user_id").(string)
	sessionID := c.Param("id")
	ctx := c.Request().Context()

	cs, err := h.Store.GetChatSession(ctx, sessionID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	if cs.UserID != userID && cs.OtherUserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "not your session")
	}

	limit := queryInt(c, "limit", 50)
	before := c.QueryParam("before")
	msgs, err := h.Store.GetChatMessages(ctx, sessionID, limit, before)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *ChatHandler) searchMessages(c echo.Context) error {
	userID := c.Get("user_id").(string)
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	limit := queryInt(c, "limit", 20)
	hits, err := h.Index.Search(userID, q, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := SearchResponse{Query: q, Hits: make([]SearchHit, 0, len(hits))}
	for _, hit := range hits {
		resp.Hits = append(resp.Hits, SearchHit{
			MessageID:  hit.MessageID,
			SessionID:  hit.SessionID,
			SenderName: hit.SenderName,
			Content:    hit.Content,
			Score:      hit.Score,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// resolveModel prefers an explicit request model, then the caller's
// saved preference, then the catalog default.
func (h *ChatHandler) resolveModel(ctx context.Context, userID, requested string) string {
	if requested != "" {
		return requested
	}
	if userID == "" || h.Store == nil {
		return ""
	}
	st, err := h.Store.GetUserSettings(ctx, userID)
	if err != nil {
		return ""
	}
	return st.PreferredAIModel
}

// persistExchange writes both sides of the exchange into the caller's
// session with the answering agent and feeds them to the search index.
// Persistence is best effort: a storage failure never fails the chat.
func (h *ChatHandler) persistExchange(ctx context.Context, userID, agentID, question, answer string) string {
	if h.Store == nil {
		return ""
	}
	cs, err := h.Store.GetOrCreateAgentSession(ctx, userID, agentID)
	if err != nil {
		h.Logger.Printf("session lookup failed for %s/%s: %v", userID, agentID, err)
		return ""
	}

	senderName := "You"
	if u, err := h.Store.GetUser(ctx, userID); err == nil {
		senderName = u.DisplayName
	}
	p, _ := persona.Lookup(agentID)

	if msg, err := h.Store.AddChatMessage(ctx, cs.ID, "user", userID, senderName, question, nil); err != nil {
		h.Logger.Printf("persist user message failed: %v", err)
	} else {
		h.indexMessage(userID, msg)
	}
	if msg, err := h.Store.AddChatMessage(ctx, cs.ID, "agent", agentID, p.Name, answer, nil); err != nil {
		h.Logger.Printf("persist agent message failed: %v", err)
	} else {
		h.indexMessage(userID, msg)
	}
	return cs.ID
}

func (h *ChatHandler) indexMessage(userID string, msg store.ChatMessage) {
	if h.Index == nil {
		return
	}
	h.Index.Add(search.Document{
		MessageID:  msg.ID,
		SessionID:  msg.SessionID,
		UserID:     userID,
		SenderName: msg.SenderName,
		Content:    msg.Content,
		CreatedAt:  msg.CreatedAt,
	})
}

// callerID resolves the authenticated caller set by the auth
// middleware, from the echo context key or the request context subject.
func callerID(c echo.Context) string {
	if id, ok := c.Get("user_id").(string); ok && id != "" {
		return id
	}
	id, _ := runtime.SubjectFromContext(c.Request().Context())
	return id
}

func queryInt(c echo.Context, name string, def int) int {
	if val := strings.TrimSpace(c.QueryParam(name)); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return def
}
