package handlers

import (
  "net/http"
  "sync"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/requestdata"
  "github.com/robert-crandall/journal-app-sub007/internal/sse"
)

type SSEHandler struct {
  log *logger.Logger
  hub *sse.SSEHub

  mu      sync.RWMutex
  clients map[uuid.UUID]*sse.SSEClient // keyed by session id
}

func NewSSEHandler(log *logger.Logger, hub *sse.SSEHub) *SSEHandler {
  return &SSEHandler{
    log:     log.With("handler", "SSEHandler"),
    hub:     hub,
    clients: make(map[uuid.UUID]*sse.SSEClient),
  }
}

func (h *SSEHandler) SSEStream(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
    return
  }
  userID := rd.UserID
  sessionID := rd.SessionID
  if sessionID == uuid.Nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session id"})
    return
  }
  h.log.Info("SSE stream open", "user_id", userID.String(), "session_id", sessionID.String())

  h.mu.Lock()
  // A session only gets one live stream; a reconnect replaces the old one.
  if existing, ok := h.clients[sessionID]; ok {
    h.hub.CloseClient(existing)
    delete(h.clients, sessionID)
  }
  client := h.hub.NewSSEClient(userID)
  h.clients[sessionID] = client
  h.mu.Unlock()

  // Every session listens on the user's own channel.
  h.hub.AddChannel(client, userID.String())

  h.hub.ServeHTTP(c.Writer, c.Request, client)

  h.mu.Lock()
  delete(h.clients, sessionID)
  h.mu.Unlock()
  h.hub.CloseClient(client)
}

func (h *SSEHandler) SSESubscribe(c *gin.Context) {
  client, req, ok := h.clientAndChannel(c)
  if !ok {
    return
  }
  h.hub.AddChannel(client, req)
  c.JSON(http.StatusOK, gin.H{"message": "subscribed", "channel": req})
}

func (h *SSEHandler) SSEUnsubscribe(c *gin.Context) {
  client, req, ok := h.clientAndChannel(c)
  if !ok {
    return
  }
  h.hub.RemoveChannel(client, req)
  c.JSON(http.StatusOK, gin.H{"message": "unsubscribed", "channel": req})
}

func (h *SSEHandler) clientAndChannel(c *gin.Context) (*sse.SSEClient, string, bool) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
    return nil, "", false
  }
  if rd.SessionID == uuid.Nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session id"})
    return nil, "", false
  }

  var req struct {
    Channel string `json:"channel"`
  }
  if err := c.ShouldBindJSON(&req); err != nil || req.Channel == "" {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel"})
    return nil, "", false
  }

  h.mu.RLock()
  client, exists := h.clients[rd.SessionID]
  h.mu.RUnlock()
  if !exists {
    c.JSON(http.StatusConflict, gin.H{"error": "no active SSE connection for this session"})
    return nil, "", false
  }
  return client, req.Channel, true
}
