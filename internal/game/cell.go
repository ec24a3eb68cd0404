package game

import "math"

// Cell addresses one grid square. Comparable, so it keys maps directly
// instead of going through formatted strings.
type Cell struct {
	I int
	J int
}

func (c Cell) Less(o Cell) bool {
	if c.I != o.I {
		return c.I < o.I
	}
	return c.J < o.J
}

// CellAt quantizes a continuous position to the cell containing it.
// size is the cell edge length in the same units as lat/lng.
func CellAt(lat, lng, size float64) Cell {
	return Cell{
		I: int(math.Floor(lat / size)),
		J: int(math.Floor(lng / size)),
	}
}

// Chebyshev is the king-move distance between two cells. Proximity checks
// use it because it matches a square neighborhood on a square grid.
func Chebyshev(a, b Cell) int {
	di := absInt(a.I - b.I)
	dj := absInt(a.J - b.J)
	if di > dj {
		return di
	}
	return dj
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Bounds is a continuous viewport rectangle as reported by the map layer.
type Bounds struct {
	South float64
	North float64
	West  float64
	East  float64
}

// CellRect is an inclusive rectangle in cell coordinates.
type CellRect struct {
	IMin, IMax int
	JMin, JMax int
}

// Empty reports whether the rect covers no cells.
func (r CellRect) Empty() bool {
	return r.IMax < r.IMin || r.JMax < r.JMin
}

func (r CellRect) Contains(c Cell) bool {
	return c.I >= r.IMin && c.I <= r.IMax && c.J >= r.JMin && c.J <= r.JMax
}

// Count is the number of cells covered by the rect, saturating at MaxInt.
// Continuous bounds quantize to spans up to 2^32 per axis, so the product
// can wrap a plain int multiply; a wrapped count would slip under the
// viewport cap and admit an absurd rect.
func (r CellRect) Count() int {
	if r.Empty() {
		return 0
	}
	ni := r.IMax - r.IMin + 1
	nj := r.JMax - r.JMin + 1
	if ni > math.MaxInt/nj {
		return math.MaxInt
	}
	return ni * nj
}

// RectFromBounds quantizes continuous viewport bounds to the inclusive set
// of cells intersecting them. A viewport edge lying exactly on a grid line
// does not pull in the zero-area row/column beyond it.
func RectFromBounds(b Bounds, size float64) CellRect {
	return CellRect{
		IMin: int(math.Floor(b.South / size)),
		IMax: int(math.Ceil(b.North/size)) - 1,
		JMin: int(math.Floor(b.West / size)),
		JMax: int(math.Ceil(b.East/size)) - 1,
	}
}
