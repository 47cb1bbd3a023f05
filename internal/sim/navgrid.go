package sim

import (
	"container/heap"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// NavGrid is a tile walkability grid where true = blocked.
type NavGrid struct {
	cols    int
	rows    int
	blocked []bool
}

// NewNavGrid builds an open grid of the given size.
func NewNavGrid(cols, rows int) *NavGrid {
	return &NavGrid{
		cols:    cols,
		rows:    rows,
		blocked: make([]bool, cols*rows),
	}
}

// GenerateNavGrid scatters forest obstacles using layered simplex noise.
// density is the fraction of the noise range treated as forest (0 = open,
// 1 = solid). The outer ring of tiles is always left open.
func GenerateNavGrid(cols, rows int, seed int64, density float64) *NavGrid {
	ng := NewNavGrid(cols, rows)
	if density <= 0 {
		return ng
	}
	noise := opensimplex.NewNormalized(seed)
	threshold := 1.0 - density
	for cy := 1; cy < rows-1; cy++ {
		for cx := 1; cx < cols-1; cx++ {
			v := octaveNoise(noise, float64(cx), float64(cy), 3, 0.09, 0.5)
			if v > threshold {
				ng.blocked[cy*cols+cx] = true
			}
		}
	}
	return ng
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxAmp := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxAmp += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxAmp
}

// Cols returns the grid width in tiles.
func (ng *NavGrid) Cols() int { return ng.cols }

// Rows returns the grid height in tiles.
func (ng *NavGrid) Rows() int { return ng.rows }

// IsBlocked returns true if the cell at (cx, cy) is not walkable.
func (ng *NavGrid) IsBlocked(cx, cy int) bool {
	if cx < 0 || cy < 0 || cx >= ng.cols || cy >= ng.rows {
		return true
	}
	return ng.blocked[cy*ng.cols+cx]
}

// SetBlocked marks a tile as blocked or open. Out-of-bounds tiles are ignored.
func (ng *NavGrid) SetBlocked(t Tile, blocked bool) {
	if t.X < 0 || t.Y < 0 || t.X >= ng.cols || t.Y >= ng.rows {
		return
	}
	ng.blocked[t.Y*ng.cols+t.X] = blocked
}

// Carve opens every tile within radius (Chebyshev) of center.
func (ng *NavGrid) Carve(center Tile, radius int) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			ng.SetBlocked(Tile{X: center.X + dx, Y: center.Y + dy}, false)
		}
	}
}

// --- A* pathfinding ---

type pathNode struct {
	cx, cy int
	g, h   float64
	parent *pathNode
	index  int // heap index
}

type openList []*pathNode

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool { return (ol[i].g + ol[i].h) < (ol[j].g + ol[j].h) }
func (ol openList) Swap(i, j int) { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*pathNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

var dirs = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// FindPath returns the tiles from `from` (exclusive) to `to` (inclusive).
// The second result is false when no path exists. A path from a tile to
// itself is empty and feasible.
func (ng *NavGrid) FindPath(from, to Tile) ([]Tile, bool) {
	if ng.IsBlocked(from.X, from.Y) || ng.IsBlocked(to.X, to.Y) {
		return nil, false
	}
	if from == to {
		return []Tile{}, true
	}

	key := func(cx, cy int) int { return cy*ng.cols + cx }
	heuristic := func(ax, ay, bx, by int) float64 {
		dx := math.Abs(float64(ax - bx))
		dy := math.Abs(float64(ay - by))
		return dx + dy + (math.Sqrt2-2)*math.Min(dx, dy)
	}

	start := &pathNode{cx: from.X, cy: from.Y, g: 0, h: heuristic(from.X, from.Y, to.X, to.Y)}
	ol := &openList{start}
	heap.Init(ol)

	closed := make(map[int]bool)
	best := make(map[int]*pathNode)
	best[key(from.X, from.Y)] = start

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		if cur.cx == to.X && cur.cy == to.Y {
			return buildPath(cur), true
		}
		k := key(cur.cx, cur.cy)
		if closed[k] {
			continue
		}
		closed[k] = true

		for _, d := range dirs {
			nx, ny := cur.cx+d[0], cur.cy+d[1]
			if ng.IsBlocked(nx, ny) {
				continue
			}
			// No diagonal corner-cutting through blocked cells.
			if d[0] != 0 && d[1] != 0 {
				if ng.IsBlocked(cur.cx+d[0], cur.cy) || ng.IsBlocked(cur.cx, cur.cy+d[1]) {
					continue
				}
			}
			nk := key(nx, ny)
			if closed[nk] {
				continue
			}
			cost := 1.0
			if d[0] != 0 && d[1] != 0 {
				cost = math.Sqrt2
			}
			g := cur.g + cost
			if prev, ok := best[nk]; ok && g >= prev.g {
				continue
			}
			node := &pathNode{cx: nx, cy: ny, g: g, h: heuristic(nx, ny, to.X, to.Y), parent: cur}
			best[nk] = node
			heap.Push(ol, node)
		}
	}
	return nil, false
}

// buildPath walks parents back to the start and drops the start tile.
func buildPath(end *pathNode) []Tile {
	var tiles []Tile
	for n := end; n != nil && n.parent != nil; n = n.parent {
		tiles = append(tiles, Tile{X: n.cx, Y: n.cy})
	}
	for i, j := 0, len(tiles)-1; i < j; i, j = i+1, j-1 {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	}
	return tiles
}

// NewPathfinder returns a path provider bound to this grid. Each unit owns
// one; it holds the last planned route until DiscoverPath hands it over.
func (ng *NavGrid) NewPathfinder() Pathfinder {
	return &gridPathfinder{grid: ng}
}

type gridPathfinder struct {
	grid    *NavGrid
	planned []Tile
	ok      bool
}

func (p *gridPathfinder) SetGoal(from, to Tile) bool {
	p.planned, p.ok = p.grid.FindPath(from, to)
	return p.ok
}

func (p *gridPathfinder) DiscoverPath() *Route {
	if !p.ok {
		return nil
	}
	r := NewRoute(p.planned)
	p.planned, p.ok = nil, false
	return r
}
