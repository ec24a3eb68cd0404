package game

// Game is one authoritative instance of the cache grid. All mutable state
// lives here; there are no package-level singletons, so tests and the
// server can run any number of independent games.
//
// A bare Game is synchronous and single-threaded. Session wraps it in the
// one-goroutine event loop used by the transport.
type Game struct {
	cfg Config
	gen Generator

	overlay *Overlay
	view    *Materializer

	playerCell Cell
	carrying   []int
	won        bool
}

func New(cfg Config) *Game {
	cfg.applyDefaults()
	g := &Game{
		cfg: cfg,
		gen: Generator{
			Seed:          cfg.Seed,
			SpawnPermille: cfg.SpawnPermille,
			Bands:         cfg.Bands,
		},
		overlay: NewOverlay(),
	}
	g.view = NewMaterializer(g.Resolve)
	return g
}

func (g *Game) Config() Config { return g.cfg }

// Resolve decides the authoritative content of one cell: an overlay entry,
// if present, wins over the generator. Every component reads cell content
// through here and nowhere else.
func (g *Game) Resolve(c Cell) Content {
	if e, ok := g.overlay.Get(c); ok {
		if e.Empty {
			return Content{}
		}
		return Content{HasCache: true, Value: e.Value}
	}
	return g.gen.Generate(c.I, c.J)
}

// MovePlayer quantizes a continuous position to the player's current cell.
// Proximity checks always use the cell at request time, so a stale
// materialized target cannot authorize an interaction.
func (g *Game) MovePlayer(lat, lng float64) Cell {
	g.playerCell = CellAt(lat, lng, g.cfg.CellSize)
	return g.playerCell
}

func (g *Game) PlayerCell() Cell { return g.playerCell }

// Carrying returns a copy of the carried tokens (empty when hands are free).
func (g *Game) Carrying() []int {
	out := make([]int, len(g.carrying))
	copy(out, g.carrying)
	return out
}

func (g *Game) Won() bool { return g.won }

// TouchedCells is the overlay size, exposed for stats and audit digests.
func (g *Game) TouchedCells() int { return g.overlay.Len() }

// CellView is the derived, render-ready state of one visible cell.
// Interactable folds in the current proximity and inventory authorization
// so the UI never re-derives distance itself.
type CellView struct {
	Cell         Cell
	HasCache     bool
	Value        int
	Interactable bool
}

func (g *Game) viewOf(c Cell) CellView {
	content := g.Resolve(c)
	v := CellView{Cell: c, HasCache: content.HasCache, Value: content.Value}
	if content.HasCache && Chebyshev(g.playerCell, c) <= g.cfg.ProximityRadius {
		v.Interactable = g.hasFreeSlot() || g.carryIndexOf(content.Value) >= 0
	}
	return v
}

// VisibleCells returns the derived view of every materialized cell, ordered
// by cell identity for deterministic output.
func (g *Game) VisibleCells() []CellView {
	cells := g.view.Cells()
	out := make([]CellView, 0, len(cells))
	for _, c := range cells {
		out = append(out, g.viewOf(c))
	}
	return out
}

func (g *Game) hasFreeSlot() bool {
	return g.cfg.CarrySlots < 0 || len(g.carrying) < g.cfg.CarrySlots
}

func (g *Game) carryIndexOf(value int) int {
	for i, v := range g.carrying {
		if v == value {
			return i
		}
	}
	return -1
}
