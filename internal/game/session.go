package game

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/JaydenRRamirez/D3-JaydenRamirez/internal/protocol"
)

// AuditLogger records accepted and rejected interactions. Implemented by
// internal/persistence/log and internal/persistence/indexdb; may be nil.
type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type AuditEntry struct {
	Tick     uint64 `json:"tick"`
	Player   string `json:"player"`
	Action   string `json:"action"`
	Cell     [2]int `json:"cell"`
	OK       bool   `json:"ok"`
	Code     string `json:"code,omitempty"`
	Value    int    `json:"value,omitempty"`
	Distance int    `json:"distance,omitempty"`
	Touched  int    `json:"touched_cells,omitempty"`
	Won      bool   `json:"won,omitempty"`
}

// DigestLogger receives a periodic state digest per session.
type DigestLogger interface {
	WriteDigest(entry DigestEntry) error
}

type DigestEntry struct {
	Tick     uint64 `json:"tick"`
	Player   string `json:"player"`
	Digest   string `json:"digest"`
	Visible  int    `json:"visible_cells"`
	Touched  int    `json:"touched_cells"`
	Carrying []int  `json:"carrying,omitempty"`
	Won      bool   `json:"won"`
}

// Request is one inbound client message, already decoded by the transport.
type Request struct {
	Move     *protocol.MoveMsg
	Viewport *protocol.ViewportMsg
	Act      *protocol.ActMsg
}

// Session pairs one Game with one player connection and owns all mutation
// on the game. State must be touched only from the Run goroutine; the
// transport talks to it exclusively through Inbox and Out.
type Session struct {
	PlayerID string

	game *Game

	tick atomic.Uint64

	inbox chan Request
	out   chan []byte
	stop  chan struct{}

	auditLogger  AuditLogger
	digestLogger DigestLogger

	digestEveryTicks uint64
}

func NewSession(playerID string, g *Game) *Session {
	return &Session{
		PlayerID:         playerID,
		game:             g,
		inbox:            make(chan Request, 64),
		out:              make(chan []byte, 64),
		stop:             make(chan struct{}),
		digestEveryTicks: 300,
	}
}

func (s *Session) SetAuditLogger(l AuditLogger)   { s.auditLogger = l }
func (s *Session) SetDigestLogger(l DigestLogger) { s.digestLogger = l }

func (s *Session) Inbox() chan<- Request { return s.inbox }
func (s *Session) Out() <-chan []byte    { return s.out }
func (s *Session) CurrentTick() uint64   { return s.tick.Load() }
func (s *Session) Game() *Game           { return s.game }

func (s *Session) Stop() { close(s.stop) }

// Run drives the session until the context ends. Each request is processed
// to completion before the next is accepted; the ticker only advances the
// tick counter and emits periodic digests.
func (s *Session) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(s.game.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(s.out)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case req := <-s.inbox:
			s.handle(req)
		case <-ticker.C:
			t := s.tick.Add(1)
			if s.digestLogger != nil && t%s.digestEveryTicks == 0 {
				_ = s.digestLogger.WriteDigest(s.digestEntry(t))
			}
		}
	}
}

// StepOnce processes pending requests synchronously and advances one tick.
// Test/replay entry point; the live path is Run.
func (s *Session) StepOnce(reqs []Request) uint64 {
	for _, r := range reqs {
		s.handle(r)
	}
	return s.tick.Add(1)
}

func (s *Session) handle(req Request) {
	switch {
	case req.Move != nil:
		s.game.MovePlayer(req.Move.Lat, req.Move.Lng)
		s.sendState()
	case req.Viewport != nil:
		rect := RectFromBounds(Bounds{
			South: req.Viewport.South,
			North: req.Viewport.North,
			West:  req.Viewport.West,
			East:  req.Viewport.East,
		}, s.game.cfg.CellSize)
		if rect.Count() > s.game.cfg.MaxViewportCells {
			s.send(protocol.ResultMsg{
				Type:    protocol.TypeResult,
				OK:      false,
				Code:    protocol.ErrBadRequest,
				Message: "viewport too large",
			})
			return
		}
		s.game.SetViewportRect(rect)
		s.sendState()
	case req.Act != nil:
		s.handleAct(*req.Act)
	}
}

func (s *Session) handleAct(act protocol.ActMsg) {
	cell := Cell{I: act.Cell[0], J: act.Cell[1]}

	var res Result
	switch act.Verb {
	case protocol.ActPickup:
		res = s.game.Pickup(cell)
	case protocol.ActPlace:
		res = s.game.Place(cell)
	default:
		res = rejected(protocol.ErrBadRequest, "unknown act verb")
	}

	if !protocol.IsKnownCode(res.Code) {
		res.Code = protocol.ErrInternal
	}
	s.send(protocol.ResultMsg{
		Type:     protocol.TypeResult,
		Ref:      act.ID,
		OK:       res.OK,
		Code:     res.Code,
		Message:  res.Message,
		Distance: res.Distance,
		Required: res.Required,
	})
	if res.OK {
		s.sendState()
	}

	if s.auditLogger != nil {
		_ = s.auditLogger.WriteAudit(AuditEntry{
			Tick:     s.tick.Load(),
			Player:   s.PlayerID,
			Action:   act.Verb,
			Cell:     act.Cell,
			OK:       res.OK,
			Code:     res.Code,
			Value:    res.Value,
			Distance: res.Distance,
			Touched:  s.game.TouchedCells(),
			Won:      s.game.Won(),
		})
	}
}

// BuildState assembles the authoritative STATE for everything visible.
func (s *Session) BuildState() protocol.StateMsg {
	views := s.game.VisibleCells()
	cells := make([]protocol.CellState, 0, len(views))
	for _, v := range views {
		cells = append(cells, protocol.CellState{
			Cell:         [2]int{v.Cell.I, v.Cell.J},
			HasCache:     v.HasCache,
			Value:        v.Value,
			Interactable: v.Interactable,
		})
	}
	p := s.game.PlayerCell()
	return protocol.StateMsg{
		Type:       protocol.TypeState,
		Tick:       s.tick.Load(),
		PlayerCell: [2]int{p.I, p.J},
		Cells:      cells,
		Carrying:   s.game.Carrying(),
		Won:        s.game.Won(),
	}
}

func (s *Session) sendState() { s.send(s.BuildState()) }

func (s *Session) send(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case s.out <- b:
	default:
		// Slow client: drop rather than stall the loop.
	}
}

// digestEntry hashes the visible state so two runs of the same seed and
// input stream can be compared cheaply.
func (s *Session) digestEntry(tick uint64) DigestEntry {
	h := sha256.New()
	var tmp [8]byte
	for _, v := range s.game.VisibleCells() {
		binary.LittleEndian.PutUint64(tmp[:], uint64(int64(v.Cell.I)))
		h.Write(tmp[:])
		binary.LittleEndian.PutUint64(tmp[:], uint64(int64(v.Cell.J)))
		h.Write(tmp[:])
		val := v.Value
		if !v.HasCache {
			val = -1
		}
		binary.LittleEndian.PutUint64(tmp[:], uint64(int64(val)))
		h.Write(tmp[:])
	}
	return DigestEntry{
		Tick:     tick,
		Player:   s.PlayerID,
		Digest:   hex.EncodeToString(h.Sum(nil)),
		Visible:  s.game.view.Len(),
		Touched:  s.game.TouchedCells(),
		Carrying: s.game.Carrying(),
		Won:      s.game.Won(),
	}
}
