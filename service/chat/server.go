// Package chat is the connection gateway: it accepts websocket connections,
// dispatches inbound events to the presence tracker and message relay, and
// triggers presence cleanup on disconnect.
package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"DMRelay/logger"
	"DMRelay/middleware"
	"DMRelay/service/events"
	"DMRelay/service/presence"
	"DMRelay/service/relay"
	"DMRelay/service/rooms"
	"DMRelay/tools/decode"
	"DMRelay/tools/ids"
	"DMRelay/tools/safe"
)

type Server struct {
	hub      *rooms.Hub
	tracker  *presence.Tracker
	relay    *relay.Relay
	upgrader websocket.Upgrader
}

func NewServer(hub *rooms.Hub, tracker *presence.Tracker, rel *relay.Relay, allowedOrigin string) *Server {
	return &Server{
		hub:     hub,
		tracker: tracker,
		relay:   rel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     middleware.OriginChecker(allowedOrigin),
		},
	}
}

// HandleWS upgrades the request and runs the connection's read loop until
// the peer goes away.
func (s *Server) HandleWS(c *gin.Context) {
	sock, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("upgrade: %v", err)
		return
	}

	conn := newWsConn(ids.GenerateString(), sock)
	s.hub.Register(conn)
	safe.Go(conn.writePump)

	logger.Info("client connected", zap.String("conn", conn.ID()))
	s.readLoop(conn)
	s.disconnect(conn)
}

func (s *Server) readLoop(conn *wsConn) {
	sock := conn.sock
	sock.SetReadLimit(readLimit)
	_ = sock.SetReadDeadline(time.Now().Add(pongWait))
	sock.SetPongHandler(func(string) error {
		return sock.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("read failed", zap.String("conn", conn.ID()), zap.Error(err))
			}
			return
		}
		_ = sock.SetReadDeadline(time.Now().Add(pongWait))

		var f inFrame
		if err := json.Unmarshal(raw, &f); err != nil {
			logger.Warn("malformed frame", zap.String("conn", conn.ID()), zap.Error(err))
			continue
		}
		s.dispatch(conn, f)
	}
}

// dispatch routes one inbound event. Handler errors are logged, never
// surfaced to the peer, and never fatal to the process; the client only
// observes the absence of an expected broadcast.
func (s *Server) dispatch(conn *wsConn, f inFrame) {
	ctx := context.Background()

	switch f.Event {
	case events.JoinUserRoom:
		p, err := decode.FromMap[joinUserRoomPayload](f.Data)
		if err != nil {
			logger.Warn("bad join-user-room payload", zap.String("conn", conn.ID()), zap.Error(err))
			return
		}
		logger.Info("user joined the user room",
			zap.String("conn", conn.ID()), zap.String("user", p.UserID))
		if err := s.tracker.Join(ctx, conn.ID(), p.UserID); err != nil {
			logger.Error("presence join failed",
				zap.String("conn", conn.ID()), zap.String("user", p.UserID), zap.Error(err))
		}

	case events.JoinChatRoom:
		p, err := decode.FromMap[joinChatRoomPayload](f.Data)
		if err != nil {
			logger.Warn("bad join-chat-room payload", zap.String("conn", conn.ID()), zap.Error(err))
			return
		}
		logger.Info("user joined the chat",
			zap.String("conn", conn.ID()), zap.String("chat", p.ChatID))
		s.hub.Join(conn.ID(), rooms.ChatRoom(p.ChatID))

	case events.SendMessage:
		p, err := decode.FromMap[sendMessagePayload](f.Data)
		if err != nil {
			logger.Warn("bad send-message payload", zap.String("conn", conn.ID()), zap.Error(err))
			return
		}
		s.relay.RelayMessage(conn.ID(), p.Message, p.ToUserID, p.ChatID)

	case events.StartTyping:
		p, err := decode.FromMap[startTypingPayload](f.Data)
		if err != nil {
			logger.Warn("bad start-typing payload", zap.String("conn", conn.ID()), zap.Error(err))
			return
		}
		if err := s.relay.RelayTyping(ctx, conn.ID(), p.ChatID, p.UserID); err != nil {
			logger.Error("typing relay failed",
				zap.String("conn", conn.ID()), zap.String("chat", p.ChatID), zap.Error(err))
		}

	case events.ChatMessage:
		// clients may echo messages back; log-only
		logger.Debug("chat message received", zap.String("conn", conn.ID()))

	default:
		logger.Warnf("unsupported event %q from conn %s", f.Event, conn.ID())
	}
}

// disconnect always runs presence cleanup, even for connections that never
// joined a user room (Leave no-ops on an unknown connection).
func (s *Server) disconnect(conn *wsConn) {
	s.hub.Unregister(conn.ID())
	if err := s.tracker.Leave(context.Background(), conn.ID()); err != nil {
		logger.Error("presence leave failed", zap.String("conn", conn.ID()), zap.Error(err))
	}
	conn.close()
	logger.Info("client disconnected", zap.String("conn", conn.ID()))
}
