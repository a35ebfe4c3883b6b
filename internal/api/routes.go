// Package api wires the HTTP surface: room lifecycle, token issuance, the
// telephony webhook and the media stream upgrade.
package api

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bhanuprakash2002/twilio-translation-backend/internal/auth"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/history"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/session"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/websocket"
)

// Deps bundles what the route handlers need.
type Deps struct {
	Hub           *websocket.Hub
	Registry      *session.Registry
	History       *history.Store
	Authenticator *auth.Authenticator // nil disables token checks on /ws
	PublicHost    string
	TokenTTL      time.Duration
	Logger        *zap.Logger
}

// InitRoutes initializes all API routes.
func InitRoutes(e *echo.Echo, deps Deps) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":       "ok",
			"service":      "translation-relay",
			"active_rooms": deps.Registry.Len(),
		})
	})

	// API v1 routes
	v1 := e.Group("/api/v1")
	v1.POST("/rooms", func(c echo.Context) error { return createRoom(c, deps) })
	v1.GET("/rooms/:id", func(c echo.Context) error { return getRoom(c, deps) })
	v1.DELETE("/rooms/:id", func(c echo.Context) error { return deleteRoom(c, deps) })
	v1.POST("/rooms/:id/token", func(c echo.Context) error { return issueToken(c, deps) })
	v1.GET("/rooms/:id/transcripts", func(c echo.Context) error { return getTranscripts(c, deps) })

	// Telephony webhook answering an inbound call with stream instructions.
	e.POST("/voice", func(c echo.Context) error { return voiceWebhook(c, deps) })

	// Media stream endpoint.
	e.GET("/ws", func(c echo.Context) error { return websocketUpgrade(c, deps) })
}

func createRoom(c echo.Context, deps Deps) error {
	var req CreateRoomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if req.Language == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Language is required",
		})
	}

	roomID := uuid.NewString()
	deps.Registry.Create(roomID, req.Language)

	deps.Logger.Info("room created via API",
		zap.String("roomID", roomID),
		zap.String("language", req.Language))

	return c.JSON(http.StatusCreated, CreateRoomResponse{
		RoomID:    roomID,
		Language:  req.Language,
		CreatedAt: time.Now(),
	})
}

func getRoom(c echo.Context, deps Deps) error {
	info, err := deps.Registry.Info(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "room_not_found",
			Message: "No such room",
		})
	}
	return c.JSON(http.StatusOK, RoomResponse{Room: info})
}

func deleteRoom(c echo.Context, deps Deps) error {
	roomID := c.Param("id")
	legs := deps.Registry.Remove(roomID)
	for _, leg := range legs {
		if err := leg.SendDisconnect("room closed"); err != nil {
			deps.Logger.Warn("failed to notify leg of room close",
				zap.String("roomID", roomID),
				zap.Error(err))
		}
	}
	deps.History.Drop(roomID)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"room_id":           roomID,
		"disconnected_legs": len(legs),
	})
}

func issueToken(c echo.Context, deps Deps) error {
	roomID := c.Param("id")
	if _, err := deps.Registry.Info(roomID); err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "room_not_found",
			Message: "No such room",
		})
	}

	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if !session.LegType(req.LegType).Valid() {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_leg_type",
			Message: "leg_type must be first or second",
		})
	}

	if deps.Authenticator == nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "tokens_disabled",
			Message: "Token issuance is not configured",
		})
	}

	token, err := deps.Authenticator.GenerateRoomToken(roomID, req.LegType)
	if err != nil {
		deps.Logger.Error("failed to generate room token",
			zap.String("roomID", roomID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate token",
		})
	}

	return c.JSON(http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(deps.TokenTTL),
		RoomID:    roomID,
		LegType:   req.LegType,
	})
}

func getTranscripts(c echo.Context, deps Deps) error {
	roomID := c.Param("id")
	return c.JSON(http.StatusOK, TranscriptsResponse{
		RoomID:  roomID,
		Records: deps.History.Recent(roomID),
	})
}

// TwiML response types for the voice webhook.
type twimlParameter struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type twimlStream struct {
	URL        string           `xml:"url,attr"`
	Parameters []twimlParameter `xml:"Parameter"`
}

type twimlConnect struct {
	Stream twimlStream `xml:"Stream"`
}

type twimlResponse struct {
	XMLName xml.Name     `xml:"Response"`
	Connect twimlConnect `xml:"Connect"`
}

// voiceWebhook answers an inbound call with instructions to open a media
// stream tagged with the room routing parameters.
func voiceWebhook(c echo.Context, deps Deps) error {
	roomID := c.QueryParam("roomId")
	legType := c.QueryParam("legType")
	language := c.QueryParam("language")

	if roomID == "" || !session.LegType(legType).Valid() || language == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_parameters",
			Message: "roomId, legType and language are required",
		})
	}
	if _, err := deps.Registry.Info(roomID); err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "room_not_found",
			Message: "No such room",
		})
	}

	response := twimlResponse{
		Connect: twimlConnect{
			Stream: twimlStream{
				URL: "wss://" + deps.PublicHost + "/ws",
				Parameters: []twimlParameter{
					{Name: "roomId", Value: roomID},
					{Name: "legType", Value: legType},
					{Name: "language", Value: language},
				},
			},
		},
	}

	deps.Logger.Info("voice webhook answered",
		zap.String("roomID", roomID),
		zap.String("legType", legType))

	return c.XML(http.StatusOK, response)
}

// websocketUpgrade validates the optional room token and hands the
// connection to the hub. Routing still comes from the stream's start event;
// the token only gates the upgrade.
func websocketUpgrade(c echo.Context, deps Deps) error {
	if deps.Authenticator != nil {
		token := c.QueryParam("token")
		if token == "" {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "missing_token",
				Message: "Room token is required",
			})
		}
		claims, err := deps.Authenticator.ValidateToken(token)
		if err != nil {
			deps.Logger.Warn("websocket rejected: invalid token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_token",
				Message: "Invalid or expired room token",
			})
		}
		deps.Logger.Info("websocket authenticated",
			zap.String("roomID", claims.RoomID),
			zap.String("legType", claims.LegType))
	}

	return websocket.HandleWebSocket(deps.Hub, c, deps.Logger)
}
