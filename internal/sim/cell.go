package sim

// Cell is an integer grid coordinate. A 2D simulation always leaves the
// third component at zero, which keeps neighbor enumeration dimension
// agnostic (3^ndim neighbors, including the center cell).
type Cell [3]int

func cellOf(x Vec) Cell {
	var c Cell
	for i, xi := range x {
		c[i] = floorInt(xi)
	}
	return c
}

func floorInt(x float64) int {
	i := int(x)
	if x < 0 && float64(i) != x {
		i--
	}
	return i
}

// neighbors returns the 3^ndim cells (including c itself) that could hold a
// ball able to collide with one centered in c, given radius < cellSize/2.
func neighbors(c Cell, ndim int) []Cell {
	var out []Cell
	var lo, hi [3]int
	for d := 0; d < 3; d++ {
		if d < ndim {
			lo[d], hi[d] = -1, 1
		}
	}
	for dx := lo[0]; dx <= hi[0]; dx++ {
		for dy := lo[1]; dy <= hi[1]; dy++ {
			for dz := lo[2]; dz <= hi[2]; dz++ {
				out = append(out, Cell{c[0] + dx, c[1] + dy, c[2] + dz})
			}
		}
	}
	return out
}
