package layout

import "math/rand"

// Board placement constants. Cells are enumerated row-major over a fixed
// number of columns starting at a small offset from the canvas origin.
const (
	CellWidth  = 320
	CellHeight = 120
	Columns    = 3
	OffsetX    = 20
	OffsetY    = 20

	// Margin shrinks the occupancy test so notes that merely touch are not
	// treated as overlapping.
	Margin = 20

	// MaxGridSlots bounds the row-major scan; MaxRandomAttempts bounds the
	// random fallback. RandomSpan is the side of the fallback rectangle.
	MaxGridSlots      = 50
	MaxRandomAttempts = 50
	RandomSpan        = 400
)

// Point is a canvas coordinate.
type Point struct {
	X float64
	Y float64
}

// slot returns the anchor of the i-th grid cell in row-major order.
func slot(i int) Point {
	col := i % Columns
	row := i / Columns
	return Point{
		X: OffsetX + float64(col*CellWidth),
		Y: OffsetY + float64(row*CellHeight),
	}
}

// IsFree reports whether a note anchored at p would not overlap any of the
// occupied positions. The test is conservative: a position blocks p when it
// lies within (CellWidth-Margin, CellHeight-Margin) of p on both axes.
func IsFree(p Point, occupied []Point) bool {
	for _, o := range occupied {
		if abs(o.X-p.X) < CellWidth-Margin && abs(o.Y-p.Y) < CellHeight-Margin {
			return false
		}
	}
	return true
}

// Allocate picks a position for a new note. It scans grid cells in row-major
// order and returns the first free one. When every candidate cell is taken it
// falls back to random sampling inside a bounded rectangle; after
// MaxRandomAttempts the last sample is returned even if it still overlaps.
func Allocate(occupied []Point) Point {
	for i := 0; i < MaxGridSlots; i++ {
		p := slot(i)
		if IsFree(p, occupied) {
			return p
		}
	}

	p := randomPoint()
	for attempt := 0; !IsFree(p, occupied) && attempt < MaxRandomAttempts; attempt++ {
		p = randomPoint()
	}
	return p
}

// Reorganize assigns every id a grid slot in input order. Slots are disjoint
// by construction, so no occupancy test is needed.
func Reorganize(ids []string) map[string]Point {
	out := make(map[string]Point, len(ids))
	for i, id := range ids {
		out[id] = slot(i)
	}
	return out
}

func randomPoint() Point {
	return Point{
		X: OffsetX + float64(rand.Intn(RandomSpan)),
		Y: OffsetY + float64(rand.Intn(RandomSpan)),
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
