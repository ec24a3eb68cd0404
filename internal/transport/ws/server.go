package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/JaydenRRamirez/D3-JaydenRamirez/internal/game"
	"github.com/JaydenRRamirez/D3-JaydenRamirez/internal/protocol"
)

// SessionRecorder persists session lifecycle rows (index db); may be nil.
type SessionRecorder interface {
	RecordSessionStart(playerID, name string, startedAt time.Time) error
	RecordSessionEnd(playerID string, won bool, touchedCells int) error
}

// Server upgrades connections and runs one independent game per player.
type Server struct {
	cfg game.Config
	log *log.Logger

	upgrader websocket.Upgrader

	auditLogger  game.AuditLogger
	digestLogger game.DigestLogger
	sessions     SessionRecorder

	nextPlayerNum atomic.Uint64
}

func NewServer(cfg game.Config, logger *log.Logger) *Server {
	return &Server{
		cfg: cfg,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// SessionsStarted reports how many sessions this server has opened.
func (s *Server) SessionsStarted() uint64 { return s.nextPlayerNum.Load() }

func (s *Server) SetAuditLogger(l game.AuditLogger)    { s.auditLogger = l }
func (s *Server) SetDigestLogger(l game.DigestLogger)  { s.digestLogger = l }
func (s *Server) SetSessionRecorder(r SessionRecorder) { s.sessions = r }

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		name := s.handshake(conn)
		if name == "" {
			return
		}

		playerID := fmt.Sprintf("P%d", s.nextPlayerNum.Add(1))
		g := game.New(s.cfg)
		sess := game.NewSession(playerID, g)
		if s.auditLogger != nil {
			sess.SetAuditLogger(s.auditLogger)
		}
		if s.digestLogger != nil {
			sess.SetDigestLogger(s.digestLogger)
		}
		if s.sessions != nil {
			_ = s.sessions.RecordSessionStart(playerID, name, time.Now().UTC())
		}

		welcome := protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			PlayerID:        playerID,
			GameParams: protocol.GameParams{
				Seed:            g.Config().Seed,
				CellSize:        g.Config().CellSize,
				ProximityRadius: g.Config().ProximityRadius,
				CarrySlots:      g.Config().CarrySlots,
				WinThreshold:    g.Config().WinThreshold,
				TickRateHz:      g.Config().TickRateHz,
			},
		}
		if err := conn.WriteJSON(welcome); err != nil {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		go func() { _ = sess.Run(ctx) }()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-sess.Out():
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			req, ok := decodeRequest(msg)
			if !ok {
				continue
			}
			select {
			case sess.Inbox() <- req:
			case <-ctx.Done():
			}
		}

		if s.sessions != nil {
			_ = s.sessions.RecordSessionEnd(playerID, g.Won(), g.TouchedCells())
		}
		s.log.Printf("session %s closed won=%v touched=%d", playerID, g.Won(), g.TouchedCells())
	}
}

func (s *Server) handshake(conn *websocket.Conn) string {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return ""
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return ""
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return ""
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return ""
	}
	if hello.PlayerName == "" {
		hello.PlayerName = "player"
	}
	return hello.PlayerName
}

// decodeRequest routes a raw client message into a session request.
func decodeRequest(msg []byte) (game.Request, bool) {
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.ProtocolVersion != protocol.Version {
		return game.Request{}, false
	}
	switch base.Type {
	case protocol.TypeMove:
		var m protocol.MoveMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return game.Request{}, false
		}
		return game.Request{Move: &m}, true
	case protocol.TypeViewport:
		var m protocol.ViewportMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return game.Request{}, false
		}
		return game.Request{Viewport: &m}, true
	case protocol.TypeAct:
		var m protocol.ActMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return game.Request{}, false
		}
		return game.Request{Act: &m}, true
	}
	return game.Request{}, false
}
