package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mtnvale/stridecoach-backend/internal/apierr"
	"github.com/mtnvale/stridecoach-backend/internal/logger"
	"github.com/mtnvale/stridecoach-backend/internal/requestdata"
	"github.com/mtnvale/stridecoach-backend/internal/services"
	"github.com/mtnvale/stridecoach-backend/internal/sse"
)

// SSEHandler owns the live connections. A client opens one stream and then
// manages its channel set through subscribe/unsubscribe, quoting the
// client_id the stream handed back in its first event.
type SSEHandler struct {
	log             *logger.Logger
	hub             *sse.Hub
	realtimeService services.RealtimeService

	mu      sync.Mutex
	clients map[uuid.UUID]*sse.Client
}

func NewSSEHandler(log *logger.Logger, hub *sse.Hub, realtimeService services.RealtimeService) *SSEHandler {
	return &SSEHandler{
		log:             log.With("handler", "SSEHandler"),
		hub:             hub,
		realtimeService: realtimeService,
		clients:         make(map[uuid.UUID]*sse.Client),
	}
}

func (sh *SSEHandler) Stream(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeUnauthorized, fmt.Errorf("not logged in"))
		return
	}

	client := sh.hub.NewClient(rd.UserID)

	// Initial subscriptions may ride along on the query string.
	if raw := c.Query("channels"); raw != "" {
		for _, channel := range strings.Split(raw, ",") {
			channel = strings.TrimSpace(channel)
			if channel == "" {
				continue
			}
			if err := sh.realtimeService.Authorize(c.Request.Context(), rd, channel); err != nil {
				RespondServiceError(c, err)
				return
			}
			sh.hub.AddChannel(client, channel)
		}
	}

	sh.mu.Lock()
	sh.clients[client.ID] = client
	sh.mu.Unlock()
	defer func() {
		sh.mu.Lock()
		delete(sh.clients, client.ID)
		sh.mu.Unlock()
		sh.hub.RemoveClient(client)
	}()

	// The first event tells the client its id so it can subscribe later.
	client.Outbound <- sse.Message{
		Channel: "system",
		Event:   sse.EventConnected,
		Data:    gin.H{"client_id": client.ID},
	}

	sh.log.Debug("SSE stream opened", "clientID", client.ID, "userID", rd.UserID)
	sh.hub.ServeHTTP(c.Writer, c.Request, client)
}

func (sh *SSEHandler) Subscribe(c *gin.Context) {
	sh.changeSubscription(c, true)
}

func (sh *SSEHandler) Unsubscribe(c *gin.Context) {
	sh.changeSubscription(c, false)
}

func (sh *SSEHandler) changeSubscription(c *gin.Context, add bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeUnauthorized, fmt.Errorf("not logged in"))
		return
	}
	var req struct {
		ClientID uuid.UUID `json:"client_id"`
		Channel  string    `json:"channel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailed, err)
		return
	}

	sh.mu.Lock()
	client := sh.clients[req.ClientID]
	sh.mu.Unlock()
	if client == nil {
		RespondError(c, http.StatusNotFound, apierr.CodeNotFound, fmt.Errorf("no open stream for that client"))
		return
	}
	if client.UserID != rd.UserID {
		RespondError(c, http.StatusForbidden, apierr.CodePermissionDenied, fmt.Errorf("stream belongs to another user"))
		return
	}

	if add {
		if err := sh.realtimeService.Authorize(c.Request.Context(), rd, req.Channel); err != nil {
			RespondServiceError(c, err)
			return
		}
		sh.hub.AddChannel(client, req.Channel)
	} else {
		sh.hub.RemoveChannel(client, req.Channel)
	}
	RespondOK(c, gin.H{"success": true})
}
