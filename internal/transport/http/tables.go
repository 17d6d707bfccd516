package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/connect4-hotseat/internal/domain"
	"github.com/iamasit07/connect4-hotseat/internal/service/game"
	"github.com/iamasit07/connect4-hotseat/pkg/auth"
	"github.com/iamasit07/connect4-hotseat/pkg/httputil"
)

type TableHandler struct {
	SessionManager *game.SessionManager
	TokenSecret    string
	TokenTTL       time.Duration
	SecureCookies  bool
}

func NewTableHandler(sm *game.SessionManager, tokenSecret string, tokenTTL time.Duration, secureCookies bool) *TableHandler {
	return &TableHandler{
		SessionManager: sm,
		TokenSecret:    tokenSecret,
		TokenTTL:       tokenTTL,
		SecureCookies:  secureCookies,
	}
}

type createTableResponse struct {
	TableID string          `json:"tableId"`
	Token   string          `json:"token"`
	Game    domain.GameView `json:"game"`
}

type moveRequest struct {
	Column *int `json:"column" binding:"required"`
}

type moveResponse struct {
	Move domain.MoveResult `json:"move"`
	Game domain.GameView   `json:"game"`
}

// bindSettings reads optional settings; an empty body means "use the defaults"
func bindSettings(c *gin.Context) (*domain.Settings, error) {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil, nil
	}
	var s domain.Settings
	if err := c.ShouldBindJSON(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// CreateTable opens a table and hands back the token needed to play on it
func (h *TableHandler) CreateTable(c *gin.Context) {
	settings, err := bindSettings(c)
	if err != nil {
		badRequest(c, "Invalid settings body")
		return
	}

	session, err := h.SessionManager.CreateTable(c.Request.Context(), settings)
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := auth.GenerateTableToken(session.TableID, h.TokenSecret, h.TokenTTL)
	if err != nil {
		writeError(c, err)
		return
	}
	httputil.SetTableCookie(c.Writer, session.TableID, token, h.TokenTTL, h.SecureCookies)

	c.JSON(http.StatusCreated, createTableResponse{
		TableID: session.TableID,
		Token:   token,
		Game:    session.View(),
	})
}

func (h *TableHandler) GetTable(c *gin.Context) {
	session, exists := h.SessionManager.GetSession(c.Request.Context(), c.Param("id"))
	if !exists {
		writeError(c, domain.ErrTableNotFound)
		return
	}
	c.JSON(http.StatusOK, session.View())
}

// SubmitMove drops a piece for whoever's turn it is
func (h *TableHandler) SubmitMove(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Body must be {\"column\": <int>}")
		return
	}

	session, exists := h.SessionManager.GetSession(c.Request.Context(), c.Param("id"))
	if !exists {
		writeError(c, domain.ErrTableNotFound)
		return
	}

	move, view, err := session.HandleMove(c.Request.Context(), *req.Column)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, moveResponse{Move: move, Game: view})
}

// Restart throws the current game away and starts a new one on the same table
func (h *TableHandler) Restart(c *gin.Context) {
	settings, err := bindSettings(c)
	if err != nil {
		badRequest(c, "Invalid settings body")
		return
	}

	session, err := h.SessionManager.Restart(c.Request.Context(), c.Param("id"), settings)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": session.View()})
}

// DeleteTable removes the table; its connected surfaces are told and disconnected
func (h *TableHandler) DeleteTable(c *gin.Context) {
	tableID := c.Param("id")
	if err := h.SessionManager.RemoveTable(c.Request.Context(), tableID); err != nil {
		writeError(c, err)
		return
	}
	httputil.ClearTableCookie(c.Writer, tableID)
	c.Status(http.StatusNoContent)
}
