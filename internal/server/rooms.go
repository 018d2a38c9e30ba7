package server

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ArkMaster123/arkagentic/internal/store"
)

// RoomsHandler serves the world map and live-player presence.
type RoomsHandler struct {
	Store  *store.Store
	Rdb    *redis.Client
	Logger *log.Logger
}

func (h *RoomsHandler) RegisterAPI(g *echo.Group) {
	g.GET("/rooms", h.listRooms)
	g.GET("/rooms/main", h.mainRoom)
	g.GET("/rooms/:slug", h.getRoom)
	g.GET("/rooms/:slug/players", h.roomPlayers)
	g.POST("/presence", h.updatePresence)
	g.POST("/presence/offline", h.goOffline)
}

func (h *RoomsHandler) listRooms(c echo.Context) error {
	rooms, err := h.Store.GetAllRooms(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rooms)
}

func (h *RoomsHandler) mainRoom(c echo.Context) error {
	room, err := h.Store.GetMainRoom(c.Request().Context())
	if err != nil {
		if err == sql.ErrNoRows {
			return echo.NewHTTPError(http.StatusNotFound, "no main room configured")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, room)
}

func (h *RoomsHandler) getRoom(c echo.Context) error {
	room, err := h.Store.GetRoom(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if err == sql.ErrNoRows {
			return echo.NewHTTPError(http.StatusNotFound, "room not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, room)
}

func (h *RoomsHandler) roomPlayers(c echo.Context) error {
	ctx := c.Request().Context()
	room, err := h.Store.GetRoom(ctx, c.Param("slug"))
	if err != nil {
		if err == sql.ErrNoRows {
			return echo.NewHTTPError(http.StatusNotFound, "room not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	players, err := h.Store.GetPlayersInRoom(ctx, room.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, players)
}

func (h *RoomsHandler) updatePresence(c echo.Context) error {
	userID := c.Get("user_id").(string)
	var req PresenceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	upd := store.PresenceUpdate{
		X:            req.X,
		Y:            req.Y,
		Direction:    req.Direction,
		Status:       req.Status,
		SessionToken: req.SessionToken,
	}
	if req.RoomSlug != "" {
		room, err := h.Store.GetRoom(ctx, req.RoomSlug)
		if err != nil {
			if err == sql.ErrNoRows {
				return echo.NewHTTPError(http.StatusNotFound, "room not found")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		upd.RoomID = room.ID
	}

	p, err := h.Store.UpsertPresence(ctx, userID, upd)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if req.SessionToken != "" {
		if _, err := h.Store.RefreshSession(ctx, userID, req.SessionToken); err != nil {
			h.Logger.Printf("session refresh failed for %s: %v", userID, err)
		}
	}
	if h.Rdb != nil {
		if err := h.Rdb.Set(ctx, "presence:online:"+userID, "1", 5*time.Minute).Err(); err != nil {
			h.Logger.Printf("heartbeat key failed for %s: %v", userID, err)
		}
	}
	return c.JSON(http.StatusOK, p)
}

func (h *RoomsHandler) goOffline(c echo.Context) error {
	userID := c.Get("user_id").(string)
	ctx := c.Request().Context()
	if err := h.Store.SetPlayerOffline(ctx, userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.Store.InvalidateSession(ctx, userID); err != nil {
		h.Logger.Printf("session invalidate failed for %s: %v", userID, err)
	}
	if h.Rdb != nil {
		h.Rdb.Del(ctx, "presence:online:"+userID)
	}
	return c.NoContent(http.StatusOK)
}
