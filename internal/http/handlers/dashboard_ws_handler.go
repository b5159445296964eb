package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"learnhub/internal/http/middleware"
	"learnhub/internal/ws"
)

var dashboardUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewDashboardHandler returns GET /ws/dashboard. The socket is push-only:
// purchase confirmations and progress updates for the authenticated user are
// streamed as JSON events; inbound frames are drained only to detect close.
func NewDashboardHandler(hub *ws.Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing user identity")
			return
		}

		conn, err := dashboardUpgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("dashboard upgrade failed", zap.Int64("user_id", userID), zap.Error(err))
			return
		}

		hub.Add(userID, conn)
		defer func() {
			hub.Remove(userID, conn)
			_ = conn.Close()
		}()

		conn.SetReadLimit(1024)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logger.Debug("dashboard socket closed", zap.Int64("user_id", userID), zap.Error(err))
				return
			}
		}
	}
}
