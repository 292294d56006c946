package fmm

import "github.com/azhan137/FMM-tutorial/internal/particle"

// P2M computes a leaf cell's moment directly from the particles it
// owns. An empty leaf contributes nothing. Call exactly once per leaf.
func P2M(cell *Cell, particles []particle.Particle) {
	for _, i := range cell.Leaf {
		p := particles[i]
		cell.Multipole.AddParticle(p.M, cell.X-p.X, cell.Y-p.Y, cell.Z-p.Z)
	}
}

// M2M translates the child's moment to the parent's center and
// accumulates it into the parent. The child's moment must already
// aggregate its entire subtree. Call exactly once per parent-child
// edge.
func M2M(parent, child *Cell) {
	parent.Multipole.AddShifted(child.Multipole,
		parent.X-child.X, parent.Y-child.Y, parent.Z-child.Z)
}

// UpwardSweep fills every cell's moment: P2M for leaves by recursive
// descent from the root, then M2M for every parent-child edge by a
// single reverse-index loop. Moments must be zero on entry.
func UpwardSweep(cells []Cell, particles []particle.Particle) {
	if len(cells) == 0 {
		return
	}
	descendP2M(cells, particles, 0)
	for i := len(cells) - 1; i >= 1; i-- {
		M2M(&cells[cells[i].Parent], &cells[i])
	}
}

func descendP2M(cells []Cell, particles []particle.Particle, i int) {
	c := &cells[i]
	if c.IsLeaf() {
		P2M(c, particles)
		return
	}
	for oct := 0; oct < 8; oct++ {
		if c.HasChild(oct) {
			descendP2M(cells, particles, c.Child[oct])
		}
	}
}

// SweepRecursive is the post-order alternative to UpwardSweep: each
// internal cell finishes all children before their moments are
// translated up. Produces moments identical to UpwardSweep.
func SweepRecursive(cells []Cell, particles []particle.Particle) {
	if len(cells) == 0 {
		return
	}
	postOrder(cells, particles, 0)
}

func postOrder(cells []Cell, particles []particle.Particle, i int) {
	c := &cells[i]
	if c.IsLeaf() {
		P2M(c, particles)
		return
	}
	for oct := 0; oct < 8; oct++ {
		if c.HasChild(oct) {
			j := c.Child[oct]
			postOrder(cells, particles, j)
			M2M(c, &cells[j])
		}
	}
}
