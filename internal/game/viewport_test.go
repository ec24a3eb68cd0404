package game

import "testing"

func cellSet(cells []Cell) map[Cell]bool {
	s := map[Cell]bool{}
	for _, c := range cells {
		s[c] = true
	}
	return s
}

// bruteMinus is the reference set difference rectMinus is checked against.
func bruteMinus(a, b CellRect) map[Cell]bool {
	out := map[Cell]bool{}
	if a.Empty() {
		return out
	}
	for i := a.IMin; i <= a.IMax; i++ {
		for j := a.JMin; j <= a.JMax; j++ {
			c := Cell{I: i, J: j}
			if !b.Contains(c) || b.Empty() {
				out[c] = true
			}
		}
	}
	return out
}

func TestRectMinus_MatchesBruteForce(t *testing.T) {
	pairs := []struct{ a, b CellRect }{
		{CellRect{0, 4, 0, 4}, CellRect{2, 6, 2, 6}},   // overlap corner
		{CellRect{0, 4, 0, 4}, CellRect{0, 4, 0, 4}},   // identical
		{CellRect{0, 4, 0, 4}, CellRect{10, 14, 0, 4}}, // disjoint
		{CellRect{-3, 3, -3, 3}, CellRect{-1, 1, -1, 1}}, // b inside a
		{CellRect{-1, 1, -1, 1}, CellRect{-3, 3, -3, 3}}, // a inside b
		{CellRect{0, 4, 0, 4}, CellRect{0, -1, 0, -1}},   // b empty
	}
	for _, p := range pairs {
		got := cellSet(rectMinus(p.a, p.b))
		want := bruteMinus(p.a, p.b)
		if len(got) != len(want) {
			t.Fatalf("rectMinus(%+v, %+v): %d cells want %d", p.a, p.b, len(got), len(want))
		}
		for c := range want {
			if !got[c] {
				t.Fatalf("rectMinus(%+v, %+v) missing %v", p.a, p.b, c)
			}
		}
	}
}

func TestMaterializer_DeltaExactness(t *testing.T) {
	g := New(Config{Seed: 42})
	m := g.view

	first := m.SetRect(CellRect{IMin: 0, IMax: 4, JMin: 0, JMax: 4})
	if len(first.Entered) != 25 || len(first.Left) != 0 {
		t.Fatalf("first delta: entered=%d left=%d", len(first.Entered), len(first.Left))
	}

	second := m.SetRect(CellRect{IMin: 2, IMax: 6, JMin: 0, JMax: 4})
	entered := cellSet(second.Entered)
	left := cellSet(second.Left)
	if len(entered) != 10 || len(left) != 10 {
		t.Fatalf("shift delta: entered=%d left=%d want 10/10", len(entered), len(left))
	}
	for c := range entered {
		if left[c] {
			t.Fatalf("cell %v in both entered and left", c)
		}
	}
	// Intersection cells appear in neither list.
	if entered[Cell{I: 3, J: 2}] || left[Cell{I: 3, J: 2}] {
		t.Fatalf("intersection cell churned")
	}
}

func TestMaterializer_SameRectIsNoop(t *testing.T) {
	g := New(Config{Seed: 42})
	rect := CellRect{IMin: -2, IMax: 2, JMin: -2, JMax: 2}
	g.SetViewportRect(rect)
	d := g.SetViewportRect(rect)
	if len(d.Entered) != 0 || len(d.Left) != 0 {
		t.Fatalf("identical rect produced delta: %+v", d)
	}
}

func TestMaterializer_SetEqualsRect(t *testing.T) {
	g := New(Config{Seed: 42})
	m := g.view

	rects := []CellRect{
		{IMin: 0, IMax: 9, JMin: 0, JMax: 9},
		{IMin: 5, IMax: 14, JMin: -3, JMax: 6},
		{IMin: 100, IMax: 100, JMin: 100, JMax: 100},
	}
	for _, rect := range rects {
		m.SetRect(rect)
		if m.Len() != rect.Count() {
			t.Fatalf("rect %+v: %d records want %d", rect, m.Len(), rect.Count())
		}
		for _, c := range m.Cells() {
			if !rect.Contains(c) {
				t.Fatalf("stale record %v outside rect %+v", c, rect)
			}
		}
	}
}

func TestMaterializer_EvictionDoesNotTouchOverlay(t *testing.T) {
	g := New(Config{Seed: 42})
	g.SetViewportRect(CellRect{IMin: 0, IMax: 4, JMin: 0, JMax: 4})
	before := g.overlay.Len()
	g.SetViewportRect(CellRect{IMin: 50, IMax: 54, JMin: 50, JMax: 54})
	if g.overlay.Len() != before {
		t.Fatalf("eviction wrote to overlay: %d -> %d", before, g.overlay.Len())
	}
}

func TestMaterializer_EvictIdempotent(t *testing.T) {
	g := New(Config{Seed: 42})
	m := g.view
	m.SetRect(CellRect{IMin: 0, IMax: 1, JMin: 0, JMax: 1})
	c := Cell{I: 0, J: 0}
	m.evict(c)
	m.evict(c) // second eviction of an absent record must not panic
	if _, ok := m.Get(c); ok {
		t.Fatalf("record survived eviction")
	}
}

func TestMaterializer_RecordReflectsResolver(t *testing.T) {
	g := New(Config{Seed: 42})
	c := Cell{I: 3, J: 3}
	g.DebugSetToken(c, 8)
	g.SetViewportRect(CellRect{IMin: 0, IMax: 5, JMin: 0, JMax: 5})
	rec, ok := g.view.Get(c)
	if !ok || !rec.HasCache || rec.Value != 8 {
		t.Fatalf("record = %+v, %v want cache 8", rec, ok)
	}
}
