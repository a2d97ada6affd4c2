package infra

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pot-code/study-tracker/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// Websocket upgrades echo requests and keeps the connection alive with ping/pong
type Websocket struct {
	upgrader     websocket.Upgrader
	WriteWait    time.Duration
	PongWait     time.Duration
	PingInterval time.Duration
}

// NewWebsocket create a Websocket with default timing
func NewWebsocket() *Websocket {
	pongWait := 30 * time.Second
	return &Websocket{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			HandshakeTimeout: 3 * time.Second,
		},
		WriteWait:    10 * time.Second,
		PongWait:     pongWait,
		PingInterval: pongWait * 9 / 10,
	}
}

// Serve upgrade the request and run handler until it returns or the peer goes away,
// ctx is cancelled as soon as the peer disconnects or stops answering pings.
//
// handler is the only writer of data frames, control frames are sent concurrently
func (ws *Websocket) Serve(c echo.Context, handler func(ctx context.Context, conn *websocket.Conn) error) error {
	conn, err := ws.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader already replied
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	go ws.readRoutine(conn, cancel)
	go ws.heartbeatRoutine(ctx, conn)

	if err := handler(ctx, conn); err != nil {
		logging.ExtractLoggerFromContext(ctx).Warn("websocket handler failed", zap.Error(err))
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, ""),
			time.Now().Add(ws.WriteWait))
		return nil
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(ws.WriteWait))
	return nil
}

// WriteJSON write v as one text frame within WriteWait
func (ws *Websocket) WriteJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(ws.WriteWait))
	return conn.WriteJSON(v)
}

// readRoutine drains client frames so pong and close frames get processed
func (ws *Websocket) readRoutine(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadDeadline(time.Now().Add(ws.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(ws.PongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (ws *Websocket) heartbeatRoutine(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(ws.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ws.WriteWait)); err != nil {
				return
			}
		}
	}
}
