package game

import (
	"fmt"

	"github.com/JaydenRRamirez/D3-JaydenRamirez/internal/protocol"
)

// Result reports the outcome of one pickup/place request. Rejections are
// plain values; the engine has no fatal error paths because every integer
// pair is a valid cell and the resolver is total.
type Result struct {
	OK      bool
	Code    string
	Message string

	// Populated on E_TOO_FAR.
	Distance int
	Required int

	// Populated on success: the token taken or the merged value written.
	Value int
}

func accepted(value int, msg string) Result {
	return Result{OK: true, Value: value, Message: msg}
}

func rejected(code, msg string) Result {
	return Result{Code: code, Message: msg}
}

// SetViewport quantizes continuous bounds and reconciles the materialized
// set against them.
func (g *Game) SetViewport(b Bounds) ViewportDelta {
	return g.view.SetRect(RectFromBounds(b, g.cfg.CellSize))
}

// SetViewportRect is SetViewport for callers that already work in cell
// coordinates (tests, bots).
func (g *Game) SetViewportRect(rect CellRect) ViewportDelta {
	return g.view.SetRect(rect)
}

// Pickup takes the cache at c into the carry slot. All preconditions are
// checked before any effect: a rejected request leaves the overlay, the
// inventory and the materialized record untouched.
func (g *Game) Pickup(c Cell) Result {
	if res, ok := g.checkDistance(c); !ok {
		return res
	}
	if !g.hasFreeSlot() {
		return rejected(protocol.ErrCarryFull, "already carrying a token")
	}
	content := g.Resolve(c)
	if !content.HasCache {
		return rejected(protocol.ErrNoCache, "no cache at this cell")
	}

	g.carrying = append(g.carrying, content.Value)
	g.overlay.SetEmpty(c)
	g.view.Refresh(c)
	return accepted(content.Value, fmt.Sprintf("picked up %d", content.Value))
}

// Place merges the carried token into an equal-valued resident cache,
// doubling it. Placing into an empty or mismatched cell is never allowed:
// pickup creates emptiness, placement never creates a cache from nothing.
func (g *Game) Place(c Cell) Result {
	if res, ok := g.checkDistance(c); !ok {
		return res
	}
	if len(g.carrying) == 0 {
		return rejected(protocol.ErrNothingCarried, "nothing carried")
	}
	content := g.Resolve(c)
	if !content.HasCache {
		return rejected(protocol.ErrNoCache, "no cache at this cell")
	}
	slot := g.carryIndexOf(content.Value)
	if slot < 0 {
		return rejected(protocol.ErrValueMismatch,
			fmt.Sprintf("cache holds %d, carrying %v", content.Value, g.carrying))
	}

	merged := content.Value * 2
	g.carrying = append(g.carrying[:slot], g.carrying[slot+1:]...)
	g.overlay.SetToken(c, merged)
	g.view.Refresh(c)
	if merged >= g.cfg.WinThreshold && !g.won {
		g.won = true
	}
	return accepted(merged, fmt.Sprintf("merged into %d", merged))
}

func (g *Game) checkDistance(c Cell) (Result, bool) {
	d := Chebyshev(g.playerCell, c)
	if d > g.cfg.ProximityRadius {
		res := rejected(protocol.ErrTooFar,
			fmt.Sprintf("cell is %d away, limit %d", d, g.cfg.ProximityRadius))
		res.Distance = d
		res.Required = g.cfg.ProximityRadius
		return res, false
	}
	return Result{}, true
}
