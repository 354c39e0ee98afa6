package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/census/internal/auth"
)

// HandleWebSocket upgrades an authenticated request and runs it as a hub
// client. Empty origins allows any origin.
func HandleWebSocket(hub *Hub, origins []string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := auth.FromContext(r.Context())
		if p == nil {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns:     origins,
			InsecureSkipVerify: len(origins) == 0,
		})
		if err != nil {
			logger.Warn("websocket accept", "user_id", p.ID, "error", err)
			return
		}

		NewClient(hub, conn, p).Run(r.Context())
	}
}
