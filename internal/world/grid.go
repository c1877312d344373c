package world

import "fmt"

// Grid holds the complete tile array for the colony map.
type Grid struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Tiles  []Tile `json:"tiles"`
}

// NewGrid creates an empty grid of the given dimensions with all tiles
// initialized to bare grass and no structure membership.
func NewGrid(width, height int) *Grid {
	g := &Grid{
		Width:  width,
		Height: height,
		Tiles:  make([]Tile, width*height),
	}
	for i := range g.Tiles {
		t := &g.Tiles[i]
		t.Index = i
		t.X = i % width
		t.Y = i / width
		t.HeadIndex = NoHead
	}
	return g
}

// Index converts x,y coordinates to a flat tile index.
func (g *Grid) Index(x, y int) int {
	return y*g.Width + x
}

// InBounds reports whether x,y lies on the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// ValidIndex reports whether idx addresses a tile.
func (g *Grid) ValidIndex(idx int) bool {
	return idx >= 0 && idx < len(g.Tiles)
}

// At returns the tile at x,y, or nil when out of bounds.
func (g *Grid) At(x, y int) *Tile {
	if !g.InBounds(x, y) {
		return nil
	}
	return &g.Tiles[g.Index(x, y)]
}

// Tile returns the tile at a flat index, or nil when invalid.
func (g *Grid) Tile(idx int) *Tile {
	if !g.ValidIndex(idx) {
		return nil
	}
	return &g.Tiles[idx]
}

// Head resolves the authoritative head tile for idx. For a tile inside a
// multi-tile structure this is the head; for everything else it is the tile
// itself.
func (g *Grid) Head(idx int) *Tile {
	t := g.Tile(idx)
	if t == nil {
		return nil
	}
	if t.HeadIndex != NoHead {
		return g.Tile(t.HeadIndex)
	}
	return t
}

// neighborOffsets lists the eight surrounding tiles in scan order.
var neighborOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Neighbors8 appends the valid 8-directional neighbor indices of idx to buf
// and returns the extended slice. Pass a reusable buffer to avoid allocation
// in hot loops.
func (g *Grid) Neighbors8(idx int, buf []int) []int {
	x := idx % g.Width
	y := idx / g.Width
	for _, off := range neighborOffsets {
		nx, ny := x+off[0], y+off[1]
		if g.InBounds(nx, ny) {
			buf = append(buf, g.Index(nx, ny))
		}
	}
	return buf
}

// Neighbors4 appends the valid orthogonal neighbor indices of idx to buf.
func (g *Grid) Neighbors4(idx int, buf []int) []int {
	x := idx % g.Width
	y := idx / g.Width
	for _, off := range [4][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}} {
		nx, ny := x+off[0], y+off[1]
		if g.InBounds(nx, ny) {
			buf = append(buf, g.Index(nx, ny))
		}
	}
	return buf
}

// Chebyshev returns the 8-directional grid distance between two tile indices:
// the maximum of the absolute axis deltas.
func (g *Grid) Chebyshev(a, b int) int {
	ax, ay := a%g.Width, a/g.Width
	bx, by := b%g.Width, b/g.Width
	dx := ax - bx
	if dx < 0 {
		dx = -dx
	}
	dy := ay - by
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// PlaceBuilding stamps a building footprint with its head at x,y, marking
// every covered tile as under construction and pointing non-head tiles at
// the head. Returns false when the footprint does not fit on unlocked,
// unoccupied, buildable ground.
func (g *Grid) PlaceBuilding(b Building, x, y int) bool {
	if !g.CanPlace(b, x, y) {
		return false
	}
	w, h := BuildingSize(b)
	head := g.Index(x, y)
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			t := g.At(x+dx, y+dy)
			t.Building = b
			t.Foliage = FoliageNone
			t.UnderConstruction = true
			if t.Index == head {
				t.HeadIndex = NoHead
				t.BuildTimeLeft = BuildTime(b)
			} else {
				t.HeadIndex = head
				t.BuildTimeLeft = 0
			}
		}
	}
	return true
}

// CanPlace reports whether a building footprint fits with its head at x,y.
func (g *Grid) CanPlace(b Building, x, y int) bool {
	w, h := BuildingSize(b)
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			t := g.At(x+dx, y+dy)
			if t == nil || t.Locked || t.Building != BuildingEmpty {
				return false
			}
			if t.Biome == BiomePond {
				return false
			}
		}
	}
	return true
}

// ClearBuilding removes the structure whose head is at idx, resetting every
// covered tile back to empty ground.
func (g *Grid) ClearBuilding(idx int) []int {
	head := g.Head(idx)
	if head == nil || head.Building == BuildingEmpty {
		return nil
	}
	w, h := BuildingSize(head.Building)
	var cleared []int
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			t := g.At(head.X+dx, head.Y+dy)
			if t == nil {
				continue
			}
			t.Building = BuildingEmpty
			t.UnderConstruction = false
			t.BuildTimeLeft = 0
			t.HeadIndex = NoHead
			t.WaterConnected = false
			cleared = append(cleared, t.Index)
		}
	}
	return cleared
}

// FindBuildings returns the head indices of every completed building of the
// given type. A full scan; callers on hot paths should memoize.
func (g *Grid) FindBuildings(b Building) []int {
	var out []int
	for i := range g.Tiles {
		t := &g.Tiles[i]
		if t.Building == b && t.HeadIndex == NoHead && !t.UnderConstruction {
			out = append(out, i)
		}
	}
	return out
}

// CountBuildings returns the number of completed structures of the given type.
func (g *Grid) CountBuildings(b Building) int {
	return len(g.FindBuildings(b))
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d, %d tiles)", g.Width, g.Height, len(g.Tiles))
}
