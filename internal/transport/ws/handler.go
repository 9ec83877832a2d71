package ws

import (
	"log/slog"
	"net/http"
	"slices"

	"nhooyr.io/websocket"
)

// ServeWS upgrades GET /ws/{username} and runs the connection until the peer
// leaves. The label comes from the path and is not authenticated.
func ServeWS(hub *Hub, allowedOrigins []string, logger *slog.Logger) http.HandlerFunc {
	opts := &websocket.AcceptOptions{OriginPatterns: allowedOrigins}
	if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
		opts = &websocket.AcceptOptions{InsecureSkipVerify: true}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		label := r.PathValue("username")
		if label == "" {
			http.Error(w, "missing username", http.StatusBadRequest)
			return
		}

		conn, err := websocket.Accept(w, r, opts)
		if err != nil {
			logger.Warn("ws: accept error", "error", err)
			return
		}

		ctx := r.Context()
		client := NewClient(conn, label, logger)
		hub.Connect(client)

		go client.WritePump(ctx)
		client.ReadPump(ctx, hub)

		hub.Broadcast(LeftEvent(hub.Disconnect(client)))
		client.Close()
		conn.Close(websocket.StatusNormalClosure, "")
	}
}
