package game

// ---- Debug/Test Helpers ----
//
// These helpers let black-box tests (internal/game/gametest) and the admin
// surface set up deterministic preconditions without reaching into game
// internals. They are NOT safe to call concurrently with Session.Run();
// use them only from tests driving a session via StepOnce, or before Run
// starts.

// DebugSetToken writes a live token into the overlay directly.
func (g *Game) DebugSetToken(c Cell, value int) {
	g.overlay.SetToken(c, value)
	g.view.Refresh(c)
}

// DebugSetEmpty marks a cell explicitly emptied, as a pickup would.
func (g *Game) DebugSetEmpty(c Cell) {
	g.overlay.SetEmpty(c)
	g.view.Refresh(c)
}

// DebugSetPlayerCell positions the player on a cell without going through
// continuous coordinates.
func (g *Game) DebugSetPlayerCell(c Cell) {
	g.playerCell = c
}

// DebugSetCarrying replaces the carried tokens.
func (g *Game) DebugSetCarrying(values []int) {
	g.carrying = append(g.carrying[:0], values...)
}
