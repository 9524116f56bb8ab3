package pattern

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"sweepnav/internal/geo"
	"sweepnav/internal/model"
)

// Traversal names accepted by Sequence.
const (
	Spiral         = "spiral"
	SpiralCCW      = "spiral_ccw"
	Boustrophedon  = "boustrophedon"
	PerimeterFirst = "perimeter_first"
)

var ErrNoItems = errors.New("no work items to sequence")

// Sequence orders the items by walking the grid with the named
// traversal. Identical input and options always yield the identical
// order. Empty pattern selects the spiral walk.
func Sequence(items []model.WorkItem, patternName string, cellSizeM float64) ([]model.WorkItem, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	for _, it := range items {
		if !it.Position.Valid() {
			return nil, fmt.Errorf("item %s: coordinate out of range", it.ID)
		}
	}
	g := buildGrid(items, cellSizeM)

	var cells []*cell
	switch patternName {
	case "", Spiral:
		cells = spiralWalk(g, true)
	case SpiralCCW:
		cells = spiralWalk(g, false)
	case Boustrophedon:
		cells = boustrophedonWalk(g)
	case PerimeterFirst:
		cells = perimeterFirstWalk(g)
	default:
		return nil, fmt.Errorf("unknown pattern %q", patternName)
	}

	out := make([]model.WorkItem, 0, len(items))
	for _, c := range cells {
		out = append(out, c.items...)
	}
	return out, nil
}

// spiralWalk visits the occupied bounding rectangle as a shrinking
// ring: top row left-to-right, right column downward, bottom row
// right-to-left, left column upward, then the next ring inward.
// Counter-clockwise mirrors the walk.
func spiralWalk(g *grid, clockwise bool) []*cell {
	minRow, maxRow, minCol, maxCol := g.occupiedBounds()
	var out []*cell
	visit := func(row, col int) {
		if c := g.at(row, col); c != nil {
			out = append(out, c)
		}
	}
	top, bottom, left, right := maxRow, minRow, minCol, maxCol
	for top >= bottom && left <= right {
		if clockwise {
			for col := left; col <= right; col++ {
				visit(top, col)
			}
			for row := top - 1; row >= bottom; row-- {
				visit(row, right)
			}
			if top > bottom {
				for col := right - 1; col >= left; col-- {
					visit(bottom, col)
				}
			}
			if left < right {
				for row := bottom + 1; row < top; row++ {
					visit(row, left)
				}
			}
		} else {
			for row := top; row >= bottom; row-- {
				visit(row, left)
			}
			for col := left + 1; col <= right; col++ {
				visit(bottom, col)
			}
			if left < right {
				for row := bottom + 1; row <= top; row++ {
					visit(row, right)
				}
			}
			if top > bottom {
				for col := right - 1; col > left; col-- {
					visit(top, col)
				}
			}
		}
		top--
		bottom++
		left++
		right--
	}
	return out
}

// boustrophedonWalk rasters the grid with alternating direction per
// line. Orientation (row-major vs column-major) is chosen by the lower
// total bearing change over occupied cell centers; ties go row-major.
func boustrophedonWalk(g *grid) []*cell {
	rows := rasterRows(g)
	cols := rasterCols(g)
	if bearingChangeCost(g, cols) < bearingChangeCost(g, rows) {
		return cols
	}
	return rows
}

func rasterRows(g *grid) []*cell {
	minRow, maxRow, minCol, maxCol := g.occupiedBounds()
	var out []*cell
	leftToRight := true
	for row := minRow; row <= maxRow; row++ {
		if leftToRight {
			for col := minCol; col <= maxCol; col++ {
				if c := g.at(row, col); c != nil {
					out = append(out, c)
				}
			}
		} else {
			for col := maxCol; col >= minCol; col-- {
				if c := g.at(row, col); c != nil {
					out = append(out, c)
				}
			}
		}
		leftToRight = !leftToRight
	}
	return out
}

func rasterCols(g *grid) []*cell {
	minRow, maxRow, minCol, maxCol := g.occupiedBounds()
	var out []*cell
	upward := true
	for col := minCol; col <= maxCol; col++ {
		if upward {
			for row := minRow; row <= maxRow; row++ {
				if c := g.at(row, col); c != nil {
					out = append(out, c)
				}
			}
		} else {
			for row := maxRow; row >= minRow; row-- {
				if c := g.at(row, col); c != nil {
					out = append(out, c)
				}
			}
		}
		upward = !upward
	}
	return out
}

// bearingChangeCost sums the heading change at every interior waypoint
// of the cell-center path.
func bearingChangeCost(g *grid, cells []*cell) float64 {
	if len(cells) < 3 {
		return 0
	}
	total := 0.0
	prev := geo.Bearing(cells[0].center(g), cells[1].center(g))
	for i := 1; i+1 < len(cells); i++ {
		b := geo.Bearing(cells[i].center(g), cells[i+1].center(g))
		total += geo.BearingDelta(prev, b)
		prev = b
	}
	return total
}

// perimeterFirstWalk emits the outer ring of occupied cells sorted by
// radial angle around the area centroid, then spirals over the
// interior.
func perimeterFirstWalk(g *grid) []*cell {
	minRow, maxRow, minCol, maxCol := g.occupiedBounds()

	onRing := func(c *cell) bool {
		return c.row == minRow || c.row == maxRow || c.col == minCol || c.col == maxCol
	}
	var ring, interior []*cell
	for _, c := range sortedCells(g) {
		if onRing(c) {
			ring = append(ring, c)
		} else {
			interior = append(interior, c)
		}
	}

	// Radial sort around the centroid of all occupied cells. Summation
	// order is fixed so equal inputs produce bit-equal angles.
	cLng, cLat := 0.0, 0.0
	n := float64(len(g.cells))
	for _, c := range sortedCells(g) {
		p := c.center(g)
		cLng += p.Lng / n
		cLat += p.Lat / n
	}
	sort.SliceStable(ring, func(i, j int) bool {
		return radialAngle(ring[i].center(g), cLng, cLat) < radialAngle(ring[j].center(g), cLng, cLat)
	})

	if len(interior) == 0 {
		return ring
	}
	sub := &grid{
		minLng:  g.minLng,
		minLat:  g.minLat,
		cellLng: g.cellLng,
		cellLat: g.cellLat,
		cells:   map[[2]int]*cell{},
	}
	for _, c := range interior {
		sub.cells[[2]int{c.row, c.col}] = c
	}
	return append(ring, spiralWalk(sub, true)...)
}

func radialAngle(p model.GeoPoint, cLng, cLat float64) float64 {
	return math.Atan2(p.Lat-cLat, p.Lng-cLng)
}

// sortedCells returns occupied cells in deterministic row-major order.
// Map iteration order must never leak into a traversal.
func sortedCells(g *grid) []*cell {
	out := make([]*cell, 0, len(g.cells))
	for _, c := range g.cells {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].row != out[j].row {
			return out[i].row < out[j].row
		}
		return out[i].col < out[j].col
	})
	return out
}
