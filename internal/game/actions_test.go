package game

import (
	"testing"

	"github.com/JaydenRRamirez/D3-JaydenRamirez/internal/protocol"
)

// barrenGame returns a game whose baseline never spawns, so every cache in
// a test is placed explicitly.
func barrenGame(cfg Config) *Game {
	cfg.SpawnPermille = -1
	return New(cfg)
}

func TestPickup_ProximityBoundary(t *testing.T) {
	g := barrenGame(Config{Seed: 1, ProximityRadius: 3})
	g.DebugSetPlayerCell(Cell{I: 0, J: 0})

	atLimit := Cell{I: 3, J: -3}
	g.DebugSetToken(atLimit, 2)
	if res := g.Pickup(atLimit); !res.OK {
		t.Fatalf("pickup at distance 3 rejected: %+v", res)
	}

	beyond := Cell{I: 4, J: 0}
	g.DebugSetToken(beyond, 2)
	res := g.Pickup(beyond)
	if res.OK || res.Code != protocol.ErrTooFar {
		t.Fatalf("pickup at distance 4: %+v want %s", res, protocol.ErrTooFar)
	}
	if res.Distance != 4 || res.Required != 3 {
		t.Fatalf("rejection distances = %d/%d want 4/3", res.Distance, res.Required)
	}
	// Rejection mutates nothing.
	if got := g.Resolve(beyond); !got.HasCache || got.Value != 2 {
		t.Fatalf("rejected pickup touched the cell: %+v", got)
	}
}

func TestPickup_SingleSlotExclusivity(t *testing.T) {
	g := barrenGame(Config{Seed: 1})
	g.DebugSetPlayerCell(Cell{I: 0, J: 0})
	a := Cell{I: 0, J: 1}
	b := Cell{I: 1, J: 0}
	g.DebugSetToken(a, 1)
	g.DebugSetToken(b, 1)

	if res := g.Pickup(a); !res.OK {
		t.Fatalf("first pickup: %+v", res)
	}
	res := g.Pickup(b)
	if res.OK || res.Code != protocol.ErrCarryFull {
		t.Fatalf("second pickup: %+v want %s", res, protocol.ErrCarryFull)
	}
	if got := g.Carrying(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("carrying = %v want [1]", got)
	}
	if got := g.Resolve(b); !got.HasCache || got.Value != 1 {
		t.Fatalf("rejected pickup touched target cell: %+v", got)
	}
}

func TestPickup_EmptiesCell(t *testing.T) {
	g := barrenGame(Config{Seed: 1})
	g.DebugSetPlayerCell(Cell{I: 0, J: 0})
	c := Cell{I: 1, J: 1}
	g.DebugSetToken(c, 3)
	g.SetViewportRect(CellRect{IMin: 0, IMax: 2, JMin: 0, JMax: 2})

	if res := g.Pickup(c); !res.OK || res.Value != 3 {
		t.Fatalf("pickup: %+v", res)
	}
	if got := g.Resolve(c); got.HasCache {
		t.Fatalf("cell still has cache after pickup: %+v", got)
	}
	rec, ok := g.view.Get(c)
	if !ok || rec.HasCache {
		t.Fatalf("materialized record not refreshed: %+v, %v", rec, ok)
	}
}

func TestPickup_NoCache(t *testing.T) {
	g := barrenGame(Config{Seed: 1})
	g.DebugSetPlayerCell(Cell{I: 0, J: 0})
	res := g.Pickup(Cell{I: 1, J: 0})
	if res.OK || res.Code != protocol.ErrNoCache {
		t.Fatalf("pickup on empty cell: %+v want %s", res, protocol.ErrNoCache)
	}
}

func TestPlace_MergeDoublingAndWin(t *testing.T) {
	g := barrenGame(Config{Seed: 1, WinThreshold: 5})
	g.DebugSetPlayerCell(Cell{I: 0, J: 0})
	c := Cell{I: 0, J: 1}

	// 1+1 -> 2: below threshold.
	g.DebugSetToken(c, 1)
	g.DebugSetCarrying([]int{1})
	res := g.Place(c)
	if !res.OK || res.Value != 2 {
		t.Fatalf("merge 1+1: %+v", res)
	}
	if len(g.Carrying()) != 0 {
		t.Fatalf("carrying not cleared: %v", g.Carrying())
	}
	if g.Won() {
		t.Fatalf("won flag set below threshold")
	}

	// 2+2 -> 4: still below.
	g.DebugSetCarrying([]int{2})
	if res := g.Place(c); !res.OK || res.Value != 4 {
		t.Fatalf("merge 2+2: %+v", res)
	}
	if g.Won() {
		t.Fatalf("won flag set at 4 with threshold 5")
	}

	// 4+4 -> 8: crosses the threshold exactly once.
	g.DebugSetCarrying([]int{4})
	if res := g.Place(c); !res.OK || res.Value != 8 {
		t.Fatalf("merge 4+4: %+v", res)
	}
	if !g.Won() {
		t.Fatalf("won flag not set at 8 with threshold 5")
	}

	// The flag is one-shot and monotonic.
	g.DebugSetCarrying([]int{8})
	if res := g.Place(c); !res.OK || res.Value != 16 {
		t.Fatalf("merge 8+8: %+v", res)
	}
	if !g.Won() {
		t.Fatalf("won flag reset by later merge")
	}
}

func TestPlace_ValueMismatch(t *testing.T) {
	g := barrenGame(Config{Seed: 1})
	g.DebugSetPlayerCell(Cell{I: 0, J: 0})
	c := Cell{I: 1, J: 1}
	g.DebugSetToken(c, 3)
	g.DebugSetCarrying([]int{2})

	res := g.Place(c)
	if res.OK || res.Code != protocol.ErrValueMismatch {
		t.Fatalf("mismatched place: %+v want %s", res, protocol.ErrValueMismatch)
	}
	if got := g.Resolve(c); got.Value != 3 {
		t.Fatalf("cache changed on rejection: %+v", got)
	}
	if got := g.Carrying(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("inventory changed on rejection: %v", got)
	}
}

func TestPlace_NothingCarried(t *testing.T) {
	g := barrenGame(Config{Seed: 1})
	g.DebugSetPlayerCell(Cell{I: 0, J: 0})
	c := Cell{I: 1, J: 1}
	g.DebugSetToken(c, 2)

	res := g.Place(c)
	if res.OK || res.Code != protocol.ErrNothingCarried {
		t.Fatalf("empty-handed place: %+v want %s", res, protocol.ErrNothingCarried)
	}
}

func TestPlace_NeverCreatesCacheFromNothing(t *testing.T) {
	g := barrenGame(Config{Seed: 1})
	g.DebugSetPlayerCell(Cell{I: 0, J: 0})
	g.DebugSetCarrying([]int{2})

	// Absent cell.
	res := g.Place(Cell{I: 0, J: 1})
	if res.OK || res.Code != protocol.ErrNoCache {
		t.Fatalf("place into absent cell: %+v want %s", res, protocol.ErrNoCache)
	}

	// Explicitly emptied cell.
	c := Cell{I: 1, J: 0}
	g.DebugSetEmpty(c)
	res = g.Place(c)
	if res.OK || res.Code != protocol.ErrNoCache {
		t.Fatalf("place into emptied cell: %+v want %s", res, protocol.ErrNoCache)
	}
	if got := g.Carrying(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("inventory changed on rejection: %v", got)
	}
}

func TestPlace_TooFarCheckedBeforeInventory(t *testing.T) {
	g := barrenGame(Config{Seed: 1, ProximityRadius: 2})
	g.DebugSetPlayerCell(Cell{I: 0, J: 0})
	res := g.Place(Cell{I: 10, J: 10})
	if res.OK || res.Code != protocol.ErrTooFar {
		t.Fatalf("far place: %+v want %s", res, protocol.ErrTooFar)
	}
}

func TestUnboundedCarryVariant(t *testing.T) {
	g := barrenGame(Config{Seed: 1, CarrySlots: -1})
	g.DebugSetPlayerCell(Cell{I: 0, J: 0})

	cells := []Cell{{0, 1}, {1, 0}, {1, 1}}
	for i, c := range cells {
		g.DebugSetToken(c, i+1)
		if res := g.Pickup(c); !res.OK {
			t.Fatalf("pickup %v: %+v", c, res)
		}
	}
	if got := g.Carrying(); len(got) != 3 {
		t.Fatalf("carrying = %v want 3 tokens", got)
	}

	// Grouped crafting selects the matching carried token.
	target := Cell{I: 2, J: 2}
	g.DebugSetToken(target, 2)
	if res := g.Place(target); !res.OK || res.Value != 4 {
		t.Fatalf("grouped merge: %+v", res)
	}
	if got := g.Carrying(); len(got) != 2 {
		t.Fatalf("carrying after merge = %v want 2 tokens", got)
	}
	for _, v := range g.Carrying() {
		if v == 2 {
			t.Fatalf("merged token still carried: %v", g.Carrying())
		}
	}
}

func TestInteractable_FoldsProximityAndInventory(t *testing.T) {
	g := barrenGame(Config{Seed: 1, ProximityRadius: 2})
	g.DebugSetPlayerCell(Cell{I: 0, J: 0})

	near := Cell{I: 1, J: 1}
	far := Cell{I: 5, J: 5}
	g.DebugSetToken(near, 2)
	g.DebugSetToken(far, 2)
	g.SetViewportRect(CellRect{IMin: 0, IMax: 5, JMin: 0, JMax: 5})

	views := map[Cell]CellView{}
	for _, v := range g.VisibleCells() {
		views[v.Cell] = v
	}
	if !views[near].Interactable {
		t.Fatalf("near cache not interactable: %+v", views[near])
	}
	if views[far].Interactable {
		t.Fatalf("far cache interactable: %+v", views[far])
	}

	// Hands full with a mismatched value: nothing to pick up or merge.
	g.DebugSetCarrying([]int{4})
	for _, v := range g.VisibleCells() {
		if v.Cell == near && v.Interactable {
			t.Fatalf("near cache interactable while carrying mismatched token")
		}
	}
}
