// Package pattern sequences work items by walking a spatial grid in a
// fixed geometric order. Nothing here searches: every traversal is a
// deterministic function of the input items and options, which makes it
// the cheap alternative to the solver and a usable seed for it.
package pattern

import (
	"math"

	"sweepnav/internal/geo"
	"sweepnav/internal/model"
)

// DefaultCellSizeM is the grid cell edge length when none is given.
const DefaultCellSizeM = 175

// cell is one occupied grid cell. Items keep their input order.
type cell struct {
	row, col int
	items    []model.WorkItem
}

func (c *cell) center(g *grid) model.GeoPoint {
	return model.GeoPoint{
		Lng: g.minLng + (float64(c.col)+0.5)*g.cellLng,
		Lat: g.minLat + (float64(c.row)+0.5)*g.cellLat,
	}
}

// grid is a uniform raster over the bounding box of the items. Only
// occupied cells are materialized.
type grid struct {
	rows, cols       int
	minLng, minLat   float64
	cellLng, cellLat float64
	cells            map[[2]int]*cell
}

// buildGrid rasters the items into cells of roughly cellSizeM meters.
// Longitude cell width is corrected for the latitude of the area.
func buildGrid(items []model.WorkItem, cellSizeM float64) *grid {
	if cellSizeM <= 0 {
		cellSizeM = DefaultCellSizeM
	}
	minLng, minLat := items[0].Position.Lng, items[0].Position.Lat
	maxLng, maxLat := minLng, minLat
	for _, it := range items[1:] {
		minLng = math.Min(minLng, it.Position.Lng)
		maxLng = math.Max(maxLng, it.Position.Lng)
		minLat = math.Min(minLat, it.Position.Lat)
		maxLat = math.Max(maxLat, it.Position.Lat)
	}

	metersPerDegLat := geo.EarthRadiusM * math.Pi / 180
	midLat := (minLat + maxLat) / 2
	metersPerDegLng := metersPerDegLat * math.Cos(midLat*math.Pi/180)
	if metersPerDegLng < 1 {
		metersPerDegLng = 1 // polar degenerate case
	}

	g := &grid{
		minLng:  minLng,
		minLat:  minLat,
		cellLng: cellSizeM / metersPerDegLng,
		cellLat: cellSizeM / metersPerDegLat,
		cells:   map[[2]int]*cell{},
	}
	g.cols = int((maxLng-minLng)/g.cellLng) + 1
	g.rows = int((maxLat-minLat)/g.cellLat) + 1

	for _, it := range items {
		col := int((it.Position.Lng - minLng) / g.cellLng)
		row := int((it.Position.Lat - minLat) / g.cellLat)
		if col >= g.cols {
			col = g.cols - 1
		}
		if row >= g.rows {
			row = g.rows - 1
		}
		key := [2]int{row, col}
		c, ok := g.cells[key]
		if !ok {
			c = &cell{row: row, col: col}
			g.cells[key] = c
		}
		c.items = append(c.items, it)
	}
	return g
}

func (g *grid) at(row, col int) *cell {
	return g.cells[[2]int{row, col}]
}

// occupiedBounds returns the index bounds of occupied cells.
func (g *grid) occupiedBounds() (minRow, maxRow, minCol, maxCol int) {
	first := true
	for key := range g.cells {
		if first {
			minRow, maxRow, minCol, maxCol = key[0], key[0], key[1], key[1]
			first = false
			continue
		}
		if key[0] < minRow {
			minRow = key[0]
		}
		if key[0] > maxRow {
			maxRow = key[0]
		}
		if key[1] < minCol {
			minCol = key[1]
		}
		if key[1] > maxCol {
			maxCol = key[1]
		}
	}
	return
}
