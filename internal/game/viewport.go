package game

import "sort"

// MaterializedCell is the transient record for one visible cell. It exists
// only while the cell is inside the viewport; destroying it never touches
// the overlay.
type MaterializedCell struct {
	Cell     Cell
	HasCache bool
	Value    int
}

// ViewportDelta lists the cells whose materialized records were created and
// destroyed by one viewport change. Entered and Left are disjoint; cells in
// the intersection of the old and new rects appear in neither.
type ViewportDelta struct {
	Entered []Cell
	Left    []Cell
}

// Materializer keeps the set of materialized records equal to the quantized
// viewport rect. It reads cell content through the resolver and never
// writes anywhere: mutation is the engine's job.
type Materializer struct {
	resolve func(Cell) Content

	rect    CellRect
	hasRect bool
	records map[Cell]*MaterializedCell
}

func NewMaterializer(resolve func(Cell) Content) *Materializer {
	return &Materializer{
		resolve: resolve,
		records: map[Cell]*MaterializedCell{},
	}
}

// SetRect moves the viewport to rect, materializing entered cells and
// evicting left ones. Cost is proportional to the changed cells, not the
// full rect: the overlapping block is never visited.
func (m *Materializer) SetRect(rect CellRect) ViewportDelta {
	prev := m.rect
	if !m.hasRect {
		prev = CellRect{IMin: 0, IMax: -1, JMin: 0, JMax: -1} // empty
	}

	delta := ViewportDelta{
		Entered: rectMinus(rect, prev),
		Left:    rectMinus(prev, rect),
	}

	for _, c := range delta.Left {
		m.evict(c)
	}
	for _, c := range delta.Entered {
		m.materialize(c)
	}

	m.rect = rect
	m.hasRect = true
	return delta
}

// Rect returns the current viewport rect (empty before the first SetRect).
func (m *Materializer) Rect() (CellRect, bool) { return m.rect, m.hasRect }

// Get returns the materialized record for c, if the cell is visible.
func (m *Materializer) Get(c Cell) (*MaterializedCell, bool) {
	r, ok := m.records[c]
	return r, ok
}

// Cells lists the materialized cells in identity order.
func (m *Materializer) Cells() []Cell {
	out := make([]Cell, 0, len(m.records))
	for c := range m.records {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func (m *Materializer) Len() int { return len(m.records) }

// Refresh re-derives the record for c from the resolver after a mutation.
// No-op for cells outside the viewport.
func (m *Materializer) Refresh(c Cell) {
	if _, ok := m.records[c]; !ok {
		return
	}
	m.materialize(c)
}

func (m *Materializer) materialize(c Cell) {
	content := m.resolve(c)
	m.records[c] = &MaterializedCell{Cell: c, HasCache: content.HasCache, Value: content.Value}
}

// evict is idempotent: destroying an absent record is not an error.
func (m *Materializer) evict(c Cell) {
	delete(m.records, c)
}

// rectMinus lists the cells of a that are not in b, in identity order.
// Rows inside the intersection skip the intersecting column span, so the
// walk touches only the border delta.
func rectMinus(a, b CellRect) []Cell {
	if a.Empty() {
		return nil
	}
	var out []Cell
	for i := a.IMin; i <= a.IMax; i++ {
		if i < b.IMin || i > b.IMax || b.Empty() {
			for j := a.JMin; j <= a.JMax; j++ {
				out = append(out, Cell{I: i, J: j})
			}
			continue
		}
		for j := a.JMin; j <= a.JMax && j < b.JMin; j++ {
			out = append(out, Cell{I: i, J: j})
		}
		for j := maxInt(a.JMin, b.JMax+1); j <= a.JMax; j++ {
			out = append(out, Cell{I: i, J: j})
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
