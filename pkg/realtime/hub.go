package realtime

import (
	"log/slog"
	"net/http"
	"time"

	socket "github.com/zishang520/socket.io/socket"

	jwtutil "github.com/credtube/credtube-server-go/internal/utils/jwt"
)

// Hub pushes advisory events (progress updates, token issuance) to connected
// clients over Socket.IO. REST responses remain the source of truth; a missed
// event is never an error.
type Hub struct {
	io        *socket.Server
	logger    *slog.Logger
	jwtSecret string
}

// NewHub creates a Socket.IO hub with JWT-authenticated connections.
func NewHub(logger *slog.Logger, jwtSecret string) (*Hub, error) {
	opts := socket.DefaultServerOptions()
	opts.SetPingTimeout(60 * time.Second)
	opts.SetPingInterval(25 * time.Second)
	opts.SetServeClient(false)
	opts.SetPath("/socket.io")

	h := &Hub{
		io:        socket.NewServer(nil, opts),
		logger:    logger,
		jwtSecret: jwtSecret,
	}

	h.io.Use(h.connectionMiddleware)
	h.io.On("connection", func(args ...any) {
		sock, ok := args[0].(*socket.Socket)
		if !ok {
			h.logger.Error("unexpected connection payload", slog.Any("payload", args))
			return
		}
		h.handleConnection(sock)
	})

	return h, nil
}

// GetHandler returns the HTTP handler for Socket.IO.
func (h *Hub) GetHandler() http.Handler {
	return h.io.ServeHandler(nil)
}

// Close shuts down the Socket.IO server.
func (h *Hub) Close() error {
	done := make(chan struct{})
	h.io.Close(func() {
		close(done)
	})

	<-done
	return nil
}

// EmitToUser sends an event to every connection the user has open.
func (h *Hub) EmitToUser(userID, event string, data map[string]any) {
	if h == nil {
		return
	}
	if err := h.io.To(userRoom(userID)).Emit(event, data); err != nil {
		h.logger.Debug("failed to emit event",
			slog.String("event", event),
			slog.String("userId", userID),
			slog.String("error", err.Error()),
		)
	}
}

func (h *Hub) connectionMiddleware(sock *socket.Socket, next func(*socket.ExtendedError)) {
	token := h.extractToken(sock)
	if token == "" {
		h.logger.Warn("socket connection rejected: missing token")
		next(socket.NewExtendedError("missing authentication token", map[string]any{"code": "MISSING_TOKEN"}))
		return
	}

	claims, err := jwtutil.VerifyToken(token, h.jwtSecret)
	if err != nil {
		h.logger.Warn("socket connection rejected: invalid token", slog.String("error", err.Error()))
		next(socket.NewExtendedError("invalid token", map[string]any{"code": "INVALID_TOKEN"}))
		return
	}

	sock.SetData(claims.UserID.String())
	next(nil)
}

func (h *Hub) handleConnection(sock *socket.Socket) {
	userID, ok := sock.Data().(string)
	if !ok || userID == "" {
		h.logger.Error("connection established without user context")
		sock.Disconnect(true)
		return
	}

	sock.Join(userRoom(userID))

	h.logger.Info("WebSocket connected",
		slog.String("userId", userID),
		slog.String("connId", string(sock.Id())),
	)

	if err := sock.Emit("connectionConfirmed", map[string]any{
		"userId":    userID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		h.logger.Warn("failed to emit connection confirmation", slog.String("error", err.Error()))
	}

	sock.On("disconnect", func(args ...any) {
		h.logger.Debug("WebSocket disconnected", slog.String("userId", userID))
	})
}

func (h *Hub) extractToken(sock *socket.Socket) string {
	if sock == nil {
		return ""
	}

	if conn := sock.Conn(); conn != nil {
		if ctx := conn.Request(); ctx != nil {
			if req := ctx.Request(); req != nil {
				if token := req.URL.Query().Get("token"); token != "" {
					return token
				}
			}
			if query := ctx.Query(); query != nil {
				if token, ok := query.Get("token"); ok && token != "" {
					return token
				}
			}
		}
	}

	if hs := sock.Handshake(); hs != nil {
		if hs.Query != nil {
			if token, ok := hs.Query.Get("token"); ok && token != "" {
				return token
			}
		}
		if authMap, ok := hs.Auth.(map[string]any); ok {
			if token, ok := authMap["token"].(string); ok {
				return token
			}
		}
	}

	return ""
}

func userRoom(userID string) socket.Room {
	return socket.Room("user_" + userID)
}
