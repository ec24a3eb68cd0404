package gametest

import (
	"encoding/json"
	"testing"

	"github.com/JaydenRRamirez/D3-JaydenRamirez/internal/game"
	"github.com/JaydenRRamirez/D3-JaydenRamirez/internal/protocol"
)

// Harness drives a session through its exported request/response surface,
// the way the transport does, so scenario tests stay black-box. Debug
// helpers on Game set up deterministic preconditions.
type Harness struct {
	T *testing.T
	G *game.Game
	S *game.Session

	lastState protocol.StateMsg
	results   []protocol.ResultMsg
}

func NewHarness(t *testing.T, cfg game.Config) *Harness {
	t.Helper()
	g := game.New(cfg)
	return &Harness{
		T: t,
		G: g,
		S: game.NewSession("P1", g),
	}
}

// Step feeds requests through the session and collects the output.
func (h *Harness) Step(reqs ...game.Request) {
	h.T.Helper()
	h.S.StepOnce(reqs)
	h.drainOut()
}

func (h *Harness) Move(lat, lng float64) {
	h.T.Helper()
	h.Step(game.Request{Move: &protocol.MoveMsg{Lat: lat, Lng: lng}})
}

func (h *Harness) Viewport(south, north, west, east float64) {
	h.T.Helper()
	h.Step(game.Request{Viewport: &protocol.ViewportMsg{
		South: south, North: north, West: west, East: east,
	}})
}

func (h *Harness) Act(id, verb string, c game.Cell) protocol.ResultMsg {
	h.T.Helper()
	h.Step(game.Request{Act: &protocol.ActMsg{ID: id, Verb: verb, Cell: [2]int{c.I, c.J}}})
	for _, r := range h.results {
		if r.Ref == id {
			return r
		}
	}
	h.T.Fatalf("no RESULT for act %q", id)
	return protocol.ResultMsg{}
}

func (h *Harness) LastState() protocol.StateMsg { return h.lastState }

// CellState finds c in the last STATE; fails if the cell is not visible.
func (h *Harness) CellState(c game.Cell) protocol.CellState {
	h.T.Helper()
	for _, cs := range h.lastState.Cells {
		if cs.Cell == [2]int{c.I, c.J} {
			return cs
		}
	}
	h.T.Fatalf("cell %v not in last STATE (%d cells)", c, len(h.lastState.Cells))
	return protocol.CellState{}
}

func (h *Harness) drainOut() {
	h.T.Helper()
	for {
		select {
		case b, ok := <-h.S.Out():
			if !ok {
				return
			}
			base, err := protocol.DecodeBase(b)
			if err != nil {
				h.T.Fatalf("decode session output: %v", err)
			}
			switch base.Type {
			case protocol.TypeState:
				if err := json.Unmarshal(b, &h.lastState); err != nil {
					h.T.Fatalf("unmarshal STATE: %v", err)
				}
			case protocol.TypeResult:
				var res protocol.ResultMsg
				if err := json.Unmarshal(b, &res); err != nil {
					h.T.Fatalf("unmarshal RESULT: %v", err)
				}
				h.results = append(h.results, res)
			}
		default:
			return
		}
	}
}
