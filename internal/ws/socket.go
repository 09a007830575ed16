package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/psionman/bfg-api/internal/game"
	"github.com/psionman/bfg-api/internal/store"
	"github.com/rs/zerolog/log"
)

// ConnCtx is what a connection has told us about itself.
type ConnCtx struct {
	Room     string
	Username string
	Seat     string
}

// Server pushes board changes and chat to everyone at a table. It is the
// game service's Notifier.
type Server struct {
	svc *game.Service
	io  *socketio.Server

	mu      sync.Mutex
	members map[string]map[string]socketio.Conn // room key -> socket ID -> Conn
}

func New(svc *game.Service) *Server {
	return &Server{svc: svc, members: make(map[string]map[string]socketio.Conn)}
}

type joinPayload struct {
	RoomName string `json:"room_name"`
	Username string `json:"username"`
	Seat     string `json:"seat"`
}

type messagePayload struct {
	RoomName string         `json:"room_name"`
	Username string         `json:"username"`
	Message  map[string]any `json:"message"`
}

// Mount attaches the Socket.IO server to the given Gin engine.
func (srv *Server) Mount(r *gin.Engine, allowOrigin string) *socketio.Server {
	io := socketio.NewServer(nil)
	srv.io = io

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&ConnCtx{})
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	// room:join puts the connection at a table and sends it the board.
	io.OnEvent("/", "room:join", func(s socketio.Conn, p joinPayload) map[string]any {
		key, err := store.Key(p.RoomName)
		if err != nil {
			return srv.err(s, "bad_request", err.Error())
		}
		if prev, ok := s.Context().(*ConnCtx); ok && prev.Room != "" && prev.Room != key {
			s.Leave(prev.Room)
			srv.removeMember(prev.Room, s)
		}
		s.SetContext(&ConnCtx{Room: key, Username: p.Username, Seat: p.Seat})
		s.Join(key)
		srv.addMember(key, s)
		srv.svc.SeatAssigned(game.Request{Username: p.Username, RoomName: p.RoomName, Seat: p.Seat})
		log.Info().Str("sid", s.ID()).Str("room", key).Str("username", p.Username).Msg("room:join")

		c, err := srv.svc.RoomBoard(context.Background(), game.Request{Username: p.Username, RoomName: p.RoomName, Seat: p.Seat})
		if err == nil {
			s.Emit("board:state", c)
		}
		return map[string]any{"ok": true, "members": srv.count(key)}
	})

	io.OnEvent("/", "room:leave", func(s socketio.Conn) map[string]any {
		if ctx, ok := s.Context().(*ConnCtx); ok && ctx.Room != "" {
			s.Leave(ctx.Room)
			srv.removeMember(ctx.Room, s)
			log.Info().Str("sid", s.ID()).Str("room", ctx.Room).Msg("room:leave")
		}
		s.SetContext(&ConnCtx{})
		return map[string]any{"ok": true}
	})

	io.OnEvent("/", "message:send", func(s socketio.Conn, p messagePayload) map[string]any {
		if p.RoomName == "" {
			if ctx, ok := s.Context().(*ConnCtx); ok {
				p.RoomName = ctx.Room
			}
		}
		if _, err := srv.svc.MessageSent(game.Request{Username: p.Username, RoomName: p.RoomName, Message: p.Message}); err != nil {
			return srv.err(s, "bad_request", err.Error())
		}
		return map[string]any{"ok": true}
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		if s == nil {
			log.Error().Err(e).Msg("socket error")
			return
		}
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})
	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		if ctx, ok := s.Context().(*ConnCtx); ok && ctx.Room != "" {
			srv.removeMember(ctx.Room, s)
		}
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	go func() {
		if err := io.Serve(); err != nil {
			log.Error().Err(err).Msg("socket server stopped")
		}
	}()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))

	// CORS preflight for Socket.IO polling
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowOrigin)
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}

// BoardChanged sends the new board to everyone in the room.
func (srv *Server) BoardChanged(room string, c game.Context) {
	srv.broadcast(room, "board:changed", c)
}

// Message relays a chat message to the room.
func (srv *Server) Message(room, username string, message map[string]any) {
	srv.broadcast(room, "message:received", map[string]any{"username": username, "message": message})
}

func (srv *Server) broadcast(room, event string, payload any) {
	key, err := store.Key(room)
	if err != nil || srv.io == nil {
		return
	}
	if srv.count(key) == 0 {
		return
	}
	srv.io.BroadcastToRoom("/", key, event, payload)
}

func (srv *Server) addMember(room string, c socketio.Conn) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.members[room] == nil {
		srv.members[room] = make(map[string]socketio.Conn)
	}
	srv.members[room][c.ID()] = c
}

func (srv *Server) removeMember(room string, c socketio.Conn) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if m := srv.members[room]; m != nil {
		delete(m, c.ID())
		if len(m) == 0 {
			delete(srv.members, room)
		}
	}
}

func (srv *Server) count(room string) int {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return len(srv.members[room])
}

func (srv *Server) err(s socketio.Conn, code, message string) map[string]any {
	s.Emit("error", map[string]any{"code": code, "message": message})
	return map[string]any{"error": message}
}
