package fmm

// NoParent marks the root cell's parent index.
const NoParent = -1

// Cell is one octree node. Cells live in a flat arena slice; parent and
// child links are indices into that slice, never pointers. Topology and
// geometry are fixed by tree construction; the Multipole field is the
// only state the upward pass mutates.
type Cell struct {
	X, Y, Z float64 // center
	R       float64 // half side length

	NCrit int   // subdivision threshold
	NLeaf int   // particles in subtree
	Leaf  []int // particle indices, leaves only

	NChild uint8  // occupancy bitmask, one bit per octant
	Child  [8]int // octant -> cell index, valid where the bit is set
	Parent int    // NoParent for the root

	Multipole Multipole
}

// NewCell returns a cell with the given geometry, no particles, no
// children and a zero moment.
func NewCell(x, y, z, r float64, nCrit int) Cell {
	return Cell{
		X: x, Y: y, Z: z, R: r,
		NCrit:  nCrit,
		Leaf:   make([]int, 0, nCrit),
		Parent: NoParent,
	}
}

// IsLeaf reports whether the cell has no children. A leaf holds fewer
// than NCrit particles directly; an internal cell holds none.
func (c *Cell) IsLeaf() bool { return c.NChild == 0 }

// HasChild reports whether the octant's child exists.
func (c *Cell) HasChild(octant int) bool { return c.NChild&(1<<octant) != 0 }

// Octant returns which of the cell's eight octants contains the point.
// Bit 0 is x, bit 1 is y, bit 2 is z; a set bit means the upper half.
func (c *Cell) Octant(x, y, z float64) int {
	oct := 0
	if x > c.X {
		oct |= 1
	}
	if y > c.Y {
		oct |= 2
	}
	if z > c.Z {
		oct |= 4
	}
	return oct
}

// ChildCenter returns the center of the given octant's child cell.
func (c *Cell) ChildCenter(octant int) (x, y, z float64) {
	h := c.R / 2
	x = c.X + h*float64((octant&1)*2-1)
	y = c.Y + h*float64((octant>>1&1)*2-1)
	z = c.Z + h*float64((octant>>2&1)*2-1)
	return
}

// ResetMoments zeroes every cell's moment so the tree can be swept
// again. Sweeping twice without a reset double-counts every particle.
func ResetMoments(cells []Cell) {
	for i := range cells {
		cells[i].Multipole = Multipole{}
	}
}
