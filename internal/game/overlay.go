package game

// OverlayEntry records one player-caused deviation from baseline. A live
// token and "this cache was taken" are distinct states: an emptied cell must
// never regenerate its baseline cache.
type OverlayEntry struct {
	Empty bool
	Value int
}

// Overlay is the sparse record of every cell the player has changed. Absent
// key means defer to baseline. Entries are created on pickup and merge and
// never deleted, so resolved content stays a pure function of (baseline,
// overlay) no matter how often a cell leaves and re-enters the viewport.
type Overlay struct {
	entries map[Cell]OverlayEntry
}

func NewOverlay() *Overlay {
	return &Overlay{entries: map[Cell]OverlayEntry{}}
}

func (o *Overlay) Get(c Cell) (OverlayEntry, bool) {
	e, ok := o.entries[c]
	return e, ok
}

func (o *Overlay) SetToken(c Cell, value int) {
	o.entries[c] = OverlayEntry{Value: value}
}

func (o *Overlay) SetEmpty(c Cell) {
	o.entries[c] = OverlayEntry{Empty: true}
}

// Len is the number of touched cells, for stats and audit digests.
func (o *Overlay) Len() int { return len(o.entries) }
