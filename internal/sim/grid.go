package sim

// cellSize is the uniform grid edge length s. 2*radius < cellSize is
// enforced at construction time.
const cellSize = 1.0

// grid maps a cell coordinate to the set of ball indices currently
// assigned to it. Membership always matches cellOf(ball.x) as of the
// ball's proper time.
type grid struct {
	ndim  int
	cells map[Cell]map[int]struct{}
}

func newGrid(ndim int) *grid {
	return &grid{ndim: ndim, cells: make(map[Cell]map[int]struct{})}
}

func (g *grid) insert(i int, c Cell) {
	set, ok := g.cells[c]
	if !ok {
		set = make(map[int]struct{})
		g.cells[c] = set
	}
	set[i] = struct{}{}
}

func (g *grid) remove(i int, c Cell) {
	set, ok := g.cells[c]
	if !ok {
		return
	}
	delete(set, i)
	if len(set) == 0 {
		delete(g.cells, c)
	}
}

// neighbors returns every ball index in the 3^ndim-cell neighborhood of c,
// including balls in c itself.
func (g *grid) neighbors(c Cell) []int {
	var out []int
	for _, nc := range neighbors(c, g.ndim) {
		for i := range g.cells[nc] {
			out = append(out, i)
		}
	}
	return out
}

// leadingNeighbors returns ball indices in cells that are neighbors of
// `to` but were not already neighbors of `from`: the cells a grid transit
// newly brings into view.
func (g *grid) leadingNeighbors(from, to Cell) []int {
	oldSet := make(map[Cell]struct{})
	for _, c := range neighbors(from, g.ndim) {
		oldSet[c] = struct{}{}
	}
	var out []int
	for _, nc := range neighbors(to, g.ndim) {
		if _, seen := oldSet[nc]; seen {
			continue
		}
		for i := range g.cells[nc] {
			out = append(out, i)
		}
	}
	return out
}
