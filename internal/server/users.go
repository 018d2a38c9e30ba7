package server

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/ArkMaster123/arkagentic/internal/runtime"
	"github.com/ArkMaster123/arkagentic/internal/store"
)

// UsersHandler covers account lifecycle, profile and settings.
type UsersHandler struct {
	Store  *store.Store
	Secret []byte
	TTL    time.Duration
	Logger *log.Logger
}

// CreateUserResponse is returned by POST /api/users. The JWT covers the
// HTTP surface; the session token is the presence heartbeat credential.
type CreateUserResponse struct {
	User         store.User `json:"user"`
	Token        string     `json:"token"`
	SessionToken string     `json:"session_token"`
}

// Register mounts the public endpoints.
func (h *UsersHandler) Register(api *echo.Group) {
	api.POST("/users", h.createAnonymous)
	auth := api.Group("/auth")
	auth.POST("/signup", h.signup)
	auth.POST("/login", h.login)
	auth.POST("/logout", h.logout)
}

// RegisterAPI mounts the JWT-guarded profile endpoints.
func (h *UsersHandler) RegisterAPI(g *echo.Group) {
	g.GET("/me", h.me)
	g.PUT("/me", h.updateMe)
	g.GET("/me/settings", h.settings)
	g.PUT("/me/settings", h.updateSettings)
}

func (h *UsersHandler) createAnonymous(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "display_name is required")
	}
	sprite := req.AvatarSprite
	if sprite == "" {
		sprite = "default"
	}

	ctx := c.Request().Context()
	u, err := h.Store.CreateAnonymousUser(ctx, name, sprite)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	token, err := runtime.SignJWT(u.ID, h.Secret, h.ttl())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.setAuthCookie(c, token)
	return c.JSON(http.StatusCreated, CreateUserResponse{
		User:         u,
		Token:        token,
		SessionToken: uuid.NewString(),
	})
}

func (h *UsersHandler) signup(c echo.Context) error {
	var req AuthSignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return echo.NewHTTPError(http.StatusBadRequest, "valid email is required")
	}
	if len(req.Password) < 8 {
		return echo.NewHTTPError(http.StatusBadRequest, "password too short")
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	u, err := h.Store.CreateAccountUser(c.Request().Context(), name, "default", email, string(hash))
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return echo.NewHTTPError(http.StatusConflict, "email already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	token, err := runtime.SignJWT(u.ID, h.Secret, h.ttl())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.setAuthCookie(c, token)
	return c.JSON(http.StatusCreated, TokenResponse{Token: token, User: u})
}

func (h *UsersHandler) login(c echo.Context) error {
	var req AuthLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx := c.Request().Context()
	id, hash, err := h.Store.GetUserByEmail(ctx, email)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, err := runtime.SignJWT(id, h.Secret, h.ttl())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	u, err := h.Store.GetUser(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.Store.TouchUserLastSeen(ctx, id); err != nil {
		h.Logger.Printf("last_seen update failed for %s: %v", id, err)
	}
	h.setAuthCookie(c, token)
	c.Response().Header().Set("Authorization", "Bearer "+token)
	return c.JSON(http.StatusOK, TokenResponse{Token: token, User: u})
}

func (h *UsersHandler) logout(c echo.Context) error {
	cookie := new(http.Cookie)
	cookie.Name = "auth"
	cookie.Value = ""
	cookie.Path = "/"
	cookie.MaxAge = -1
	c.SetCookie(cookie)
	return c.NoContent(http.StatusOK)
}

func (h *UsersHandler) me(c echo.Context) error {
	userID := c.Get("user_id").(string)
	u, err := h.Store.GetUser(c.Request().Context(), userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UsersHandler) updateMe(c echo.Context) error {
	userID := c.Get("user_id").(string)
	var req UpdateMeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.Store.UpdateUser(c.Request().Context(), userID, req.DisplayName, req.AvatarSprite)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UsersHandler) settings(c echo.Context) error {
	userID := c.Get("user_id").(string)
	ctx := c.Request().Context()
	st, err := h.Store.GetUserSettings(ctx, userID)
	if err == sql.ErrNoRows {
		// First read creates the row with defaults.
		st, err = h.Store.UpsertUserSettings(ctx, userID, store.SettingsUpdate{})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, st)
}

func (h *UsersHandler) updateSettings(c echo.Context) error {
	userID := c.Get("user_id").(string)
	var req SettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	st, err := h.Store.UpsertUserSettings(c.Request().Context(), userID, store.SettingsUpdate{
		AudioEnabled:     req.AudioEnabled,
		VideoEnabled:     req.VideoEnabled,
		Volume:           req.Volume,
		Theme:            req.Theme,
		ShowPlayerNames:  req.ShowPlayerNames,
		PreferredAIModel: req.PreferredAIModel,
		ModelTemperature: req.ModelTemperature,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, st)
}

func (h *UsersHandler) ttl() time.Duration {
	if h.TTL > 0 {
		return h.TTL
	}
	return 24 * time.Hour
}

func (h *UsersHandler) setAuthCookie(c echo.Context, token string) {
	cookie := new(http.Cookie)
	cookie.Name = "auth"
	cookie.Value = token
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.SameSite = http.SameSiteLaxMode
	if os.Getenv("ARKAGENTIC_ENV") == "prod" {
		cookie.Secure = true
	}
	c.SetCookie(cookie)
}
