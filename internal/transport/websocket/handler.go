package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/iamasit07/connect4-hotseat/internal/domain"
	"github.com/iamasit07/connect4-hotseat/internal/service/game"
	"github.com/iamasit07/connect4-hotseat/pkg/auth"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

// Handler manages WebSocket dependencies
type Handler struct {
	ConnManager    *ConnectionManager
	SessionManager *game.SessionManager
	TokenSecret    string
	Upgrader       websocket.Upgrader
}

// NewHandler creates a new WebSocket handler with dependencies
func NewHandler(cm *ConnectionManager, sm *game.SessionManager, tokenSecret string, allowedOrigins []string) *Handler {
	return &Handler{
		ConnManager:    cm,
		SessionManager: sm,
		TokenSecret:    tokenSecret,
		Upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		log.Printf("[WS] Origin '%s' not allowed", origin)
		return false
	}
}

// HandleWebSocket upgrades GET /ws?table=<id>
func (h *Handler) HandleWebSocket(c *gin.Context) {
	tableID := c.Query("table")
	if tableID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing table", "code": "invalid_request"})
		return
	}

	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	h.handleConnection(c.Request.Context(), conn, tableID)
}

// handleConnection manages the lifecycle of a single WebSocket connection
func (h *Handler) handleConnection(ctx context.Context, conn *websocket.Conn, tableID string) {
	// Set read deadline to detect stale connections
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// 1. Wait for Initialization (Auth)
	var init domain.ClientMessage
	if err := conn.ReadJSON(&init); err != nil {
		log.Printf("[WS] Read error during init: %v", err)
		conn.Close()
		return
	}
	if init.Type != "init" {
		h.reject(conn, "unauthorized", "Expected init message")
		return
	}
	if err := auth.AuthorizeTable(init.Token, h.TokenSecret, tableID); err != nil {
		log.Printf("[WS] Invalid token for table %s: %v", tableID, err)
		h.reject(conn, "unauthorized", "Invalid table token")
		return
	}

	session, exists := h.SessionManager.GetSession(ctx, tableID)
	if !exists {
		h.reject(conn, domain.ErrorCode(domain.ErrTableNotFound), "Table not found")
		return
	}

	client := h.ConnManager.AddConnection(tableID, conn)
	log.Printf("[WS] Surface connected to table %s", tableID)

	done := make(chan struct{})
	defer func() {
		close(done)
		log.Printf("[WS] Surface disconnected from table %s", tableID)
		h.ConnManager.RemoveConnection(client)
	}()

	// Keep-alive pinger
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	view := session.View()
	client.Send(domain.ServerMessage{Type: domain.MsgGameState, TableID: tableID, GameID: view.GameID, Game: &view})

	// 2. Main Message Loop
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Surface on table %s disconnected unexpectedly: %v", tableID, err)
			}
			return
		}

		var msg domain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[WS] Invalid message format: %v", err)
			client.Send(domain.ServerMessage{Type: domain.MsgError, Code: "invalid_request", Message: "Invalid message format"})
			continue
		}

		h.processMessage(ctx, client, msg)
	}
}

// processMessage routes specific actions
func (h *Handler) processMessage(ctx context.Context, client *Client, msg domain.ClientMessage) {
	tableID := client.TableID

	switch msg.Type {
	case "drop":
		if msg.Column == nil {
			client.Send(domain.ServerMessage{Type: domain.MsgError, Code: "invalid_request", Message: "Missing column"})
			return
		}

		// look the session up every time, a restart replaces it
		session, exists := h.SessionManager.GetSession(ctx, tableID)
		if !exists {
			sendError(client, domain.ErrTableNotFound)
			return
		}
		if _, _, err := session.HandleMove(ctx, *msg.Column); err != nil {
			sendError(client, err)
		}

	case "restart":
		if _, err := h.SessionManager.Restart(ctx, tableID, msg.Settings); err != nil {
			sendError(client, err)
		}

	default:
		client.Send(domain.ServerMessage{Type: domain.MsgError, Code: "invalid_request", Message: "Unknown message type"})
	}
}

func sendError(client *Client, err error) {
	client.Send(domain.ServerMessage{Type: domain.MsgError, Code: domain.ErrorCode(err), Message: err.Error()})
}

func (h *Handler) reject(conn *websocket.Conn, code, message string) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteJSON(domain.ServerMessage{Type: domain.MsgError, Code: code, Message: message})
	conn.Close()
}
