package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/modvault/modvault-backend/internal/common"
	"github.com/modvault/modvault-backend/internal/domain"
	"github.com/modvault/modvault-backend/internal/realtime"
)

// WSHandler streams field-level changes of one record over WebSocket
type WSHandler struct {
	hub      realtime.Subscriber
	origins  originAllowList
	upgrader websocket.Upgrader
}

// NewWSHandler allowedOrigins is the CORS origin list ("" or "*" allows any)
func NewWSHandler(hub realtime.Subscriber, allowedOrigins string) *WSHandler {
	h := &WSHandler{
		hub:     hub,
		origins: parseOrigins(allowedOrigins),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// originAllowList empty means every origin is accepted
type originAllowList []string

func parseOrigins(origins string) originAllowList {
	if origins == "" || origins == "*" {
		return nil
	}
	var list originAllowList
	for _, p := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}

func (l originAllowList) allows(origin string) bool {
	if len(l) == 0 {
		return true
	}
	for _, allowed := range l {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	return false
}

// checkOrigin same-origin requests carry no Origin header
func (h *WSHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || h.origins.allows(origin)
}

// Subscribe handles GET /realtime/:table/:id (WebSocket upgrade)
// @Summary 레코드 변경 실시간 구독
// @Tags realtime
// @Param table path string true "apps | games | blogs"
// @Param id path string true "레코드 ID"
// @Router /realtime/{table}/{id} [get]
func (h *WSHandler) Subscribe(c *gin.Context) {
	ct, ok := domain.ParseContentType(c.Param("table"))
	if !ok {
		common.ErrorResponse(c, http.StatusBadRequest, "Unknown table", nil)
		return
	}
	id := c.Param("id")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := realtime.NewClient(conn)
	unsubscribe := h.hub.Subscribe(ct.Table(), id, client.Enqueue)

	go client.WritePump()
	go client.ReadPump(unsubscribe)
}
