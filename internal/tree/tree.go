// Package tree builds the octree consumed by the upward pass. Cells are
// appended to a flat arena as they are created, so every child's index
// is strictly greater than its parent's; the sweep's reverse-index
// traversal depends on that ordering, and Validate checks it.
package tree

import (
	"fmt"
	"math"

	"github.com/azhan137/FMM-tutorial/internal/fmm"
	"github.com/azhan137/FMM-tutorial/internal/particle"
)

type builder struct {
	cells     []fmm.Cell
	particles []particle.Particle
	nCrit     int
}

// maxDepth bounds the tree height. Well before this depth the cell half
// width has halved below float64 resolution, so particles still sharing
// a cell are coincident and can never be separated by splitting.
const maxDepth = 64

// Build constructs an octree over the particles, rooted at a cube with
// the given center and half side length. Particles are inserted one at
// a time; a leaf that reaches nCrit particles is split and its
// particles pushed down into per-octant children. Build fails if
// coincident particles force the tree past maxDepth.
func Build(particles []particle.Particle, nCrit int, cx, cy, cz, r float64) ([]fmm.Cell, error) {
	b := &builder{
		cells:     []fmm.Cell{fmm.NewCell(cx, cy, cz, r, nCrit)},
		particles: particles,
		nCrit:     nCrit,
	}
	for i, p := range particles {
		curr, depth := 0, 0
		for !b.cells[curr].IsLeaf() {
			b.cells[curr].NLeaf++
			oct := b.cells[curr].Octant(p.X, p.Y, p.Z)
			if !b.cells[curr].HasChild(oct) {
				b.addChild(curr, oct)
			}
			curr = b.cells[curr].Child[oct]
			depth++
		}
		b.cells[curr].Leaf = append(b.cells[curr].Leaf, i)
		b.cells[curr].NLeaf++
		if b.mustSplit(curr) {
			if err := b.split(curr, depth); err != nil {
				return nil, err
			}
		}
	}
	return b.cells, nil
}

// addChild appends a new cell for the octant and wires it to parent p.
func (b *builder) addChild(p, octant int) {
	x, y, z := b.cells[p].ChildCenter(octant)
	child := fmm.NewCell(x, y, z, b.cells[p].R/2, b.nCrit)
	child.Parent = p
	b.cells = append(b.cells, child)
	b.cells[p].NChild |= 1 << octant
	b.cells[p].Child[octant] = len(b.cells) - 1
}

// split pushes a full leaf's particles down into children, recursing
// when a child fills up in turn. The cell keeps its subtree count but
// drops its direct particle list: internal cells own no particles.
func (b *builder) split(p, depth int) error {
	if depth >= maxDepth {
		return fmt.Errorf("octree deeper than %d levels: coincident particles cannot be separated", maxDepth)
	}
	leaf := b.cells[p].Leaf
	b.cells[p].Leaf = nil
	for _, i := range leaf {
		pt := b.particles[i]
		oct := b.cells[p].Octant(pt.X, pt.Y, pt.Z)
		if !b.cells[p].HasChild(oct) {
			b.addChild(p, oct)
		}
		c := b.cells[p].Child[oct]
		b.cells[c].Leaf = append(b.cells[c].Leaf, i)
		b.cells[c].NLeaf++
		if b.mustSplit(c) {
			if err := b.split(c, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// mustSplit reports whether a leaf has filled up. A leaf holding a
// single particle never splits, whatever nCrit: subdividing it would
// chase one particle down forever.
func (b *builder) mustSplit(c int) bool {
	return b.cells[c].NLeaf >= b.nCrit && b.cells[c].NLeaf > 1
}

// BoundingCube returns the center and half side length of the smallest
// axis-aligned cube containing every particle, padded slightly so no
// particle sits exactly on a face.
func BoundingCube(particles []particle.Particle) (cx, cy, cz, r float64) {
	if len(particles) == 0 {
		return 0, 0, 0, 0.5
	}
	minX, minY, minZ := math.Inf(1), math.Inf(1), math.Inf(1)
	maxX, maxY, maxZ := math.Inf(-1), math.Inf(-1), math.Inf(-1)
	for _, p := range particles {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		minZ, maxZ = math.Min(minZ, p.Z), math.Max(maxZ, p.Z)
	}
	cx, cy, cz = (minX+maxX)/2, (minY+maxY)/2, (minZ+maxZ)/2
	r = math.Max(maxX-minX, math.Max(maxY-minY, maxZ-minZ)) / 2
	if r == 0 {
		r = 0.5
	}
	return cx, cy, cz, r * 1.00001
}

// Validate checks the structural invariants the upward sweep relies on:
// index ordering, link consistency, octant geometry and the
// leaf/internal dichotomy. A nil error means the arena is safe to
// sweep.
func Validate(cells []fmm.Cell) error {
	if len(cells) == 0 {
		return fmt.Errorf("empty cell arena")
	}
	if cells[0].Parent != fmm.NoParent {
		return fmt.Errorf("root cell has parent %d", cells[0].Parent)
	}
	for i := 1; i < len(cells); i++ {
		p := cells[i].Parent
		if p < 0 || p >= i {
			return fmt.Errorf("cell %d: parent index %d not less than cell index", i, p)
		}
	}
	for i := range cells {
		c := &cells[i]
		if c.IsLeaf() {
			// single-particle leaves are exempt: they are never split
			if c.NLeaf >= c.NCrit && c.NLeaf > 1 {
				return fmt.Errorf("cell %d: leaf holds %d particles, nCrit %d", i, c.NLeaf, c.NCrit)
			}
			if len(c.Leaf) != c.NLeaf {
				return fmt.Errorf("cell %d: leaf list length %d, count %d", i, len(c.Leaf), c.NLeaf)
			}
			continue
		}
		if len(c.Leaf) != 0 {
			return fmt.Errorf("cell %d: internal cell owns %d particles", i, len(c.Leaf))
		}
		sum := 0
		for oct := 0; oct < 8; oct++ {
			if !c.HasChild(oct) {
				continue
			}
			j := c.Child[oct]
			if j <= i || j >= len(cells) {
				return fmt.Errorf("cell %d: child index %d out of order", i, j)
			}
			child := &cells[j]
			if child.Parent != i {
				return fmt.Errorf("cell %d: child %d links back to %d", i, j, child.Parent)
			}
			x, y, z := c.ChildCenter(oct)
			if !approxEqual(child.X, x) || !approxEqual(child.Y, y) || !approxEqual(child.Z, z) || !approxEqual(child.R, c.R/2) {
				return fmt.Errorf("cell %d: child %d geometry does not match octant %d", i, j, oct)
			}
			sum += child.NLeaf
		}
		if sum != c.NLeaf {
			return fmt.Errorf("cell %d: subtree count %d, children hold %d", i, c.NLeaf, sum)
		}
	}
	return nil
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-12*(1+math.Abs(a)+math.Abs(b))
}
