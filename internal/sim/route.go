package sim

import "fmt"

// Tile is a grid cell coordinate.
type Tile struct {
	X, Y int
}

// TileAt converts a continuous position to the tile containing it.
func TileAt(x, y float64, tileSize int) Tile {
	return Tile{X: int(x) / tileSize, Y: int(y) / tileSize}
}

func (t Tile) String() string {
	return fmt.Sprintf("(%d,%d)", t.X, t.Y)
}

// Origin returns the continuous position of the tile's top-left corner.
func (t Tile) Origin(tileSize int) (float64, float64) {
	return float64(t.X * tileSize), float64(t.Y * tileSize)
}

// Route is an ordered sequence of tiles consumed front to back. It cannot be
// rewound; once exhausted it is discarded.
type Route struct {
	nodes []Tile
	next  int
}

// NewRoute wraps nodes. The slice is not copied.
func NewRoute(nodes []Tile) *Route {
	return &Route{nodes: nodes}
}

// Pop removes and returns the front node.
func (r *Route) Pop() (Tile, bool) {
	if r == nil || r.next >= len(r.nodes) {
		return Tile{}, false
	}
	t := r.nodes[r.next]
	r.next++
	return t, true
}

// Remaining returns how many nodes are left.
func (r *Route) Remaining() int {
	if r == nil {
		return 0
	}
	return len(r.nodes) - r.next
}

// Pending returns the unconsumed nodes without consuming them.
func (r *Route) Pending() []Tile {
	if r == nil {
		return nil
	}
	return r.nodes[r.next:]
}

// Pathfinder is the path provider contract. SetGoal plans between two tiles
// and reports feasibility; DiscoverPath hands over the planned route, which
// excludes the start tile.
type Pathfinder interface {
	SetGoal(from, to Tile) bool
	DiscoverPath() *Route
}
