package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"vibe-in-the-dark/internal/fanout"
	"vibe-in-the-dark/internal/logger"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
	wsReadLimit  = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWebsocket subscribes the connection to the game's room. The first
// message is always a state event; room events follow in publish order.
func (s *Server) handleWebsocket(c *gin.Context) {
	code, ok := bindCode(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	// Subscribe before loading so nothing published in between is missed.
	sub, err := s.rooms.Subscribe(code)
	if err != nil {
		writeError(c, err)
		return
	}
	g, err := s.svc.GetState(ctx, code)
	if err != nil {
		sub.Close()
		writeError(c, err)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		sub.Close()
		return
	}
	clientID, err := gonanoid.New()
	if err != nil {
		clientID = c.Request.RemoteAddr
	}
	logger.Info("ws connected",
		zap.String("game_code", code),
		zap.String("client_id", clientID),
		zap.String("remote", c.Request.RemoteAddr))

	go writeWS(conn, sub, fanout.NewState(g, s.svc.Now()), clientID)
	readWS(conn, sub, clientID)
}

// readWS discards client frames and keeps the pong deadline fresh. Its exit
// closes the subscription, which in turn stops the writer.
func readWS(conn *websocket.Conn, sub *fanout.Subscription, clientID string) {
	defer sub.Close()
	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			logger.Info("ws disconnected",
				zap.String("game_code", sub.Room()),
				zap.String("client_id", clientID),
				zap.Error(err))
			return
		}
	}
}

func writeWS(conn *websocket.Conn, sub *fanout.Subscription, first fanout.Event, clientID string) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	if err := writeEvent(conn, first); err != nil {
		return
	}
	for {
		select {
		case e, ok := <-sub.Events():
			if !ok {
				// Dropped as a slow consumer or the room was closed.
				logger.Debug("ws subscription ended",
					zap.String("game_code", sub.Room()),
					zap.String("client_id", clientID))
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "reconnect"))
				return
			}
			if err := writeEvent(conn, e); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, e fanout.Event) error {
	data, err := fanout.Encode(e)
	if err != nil {
		logger.Error("encode event", zap.String("event", string(e.Type())), zap.Error(err))
		return nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
