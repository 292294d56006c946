// Package metrics derives summary quantities from a swept tree:
// conservation checks against the raw particle set and far-field
// accuracy against direct summation.
package metrics

import (
	"math"

	"github.com/azhan137/FMM-tutorial/internal/direct"
	"github.com/azhan137/FMM-tutorial/internal/fmm"
	"github.com/azhan137/FMM-tutorial/internal/particle"
)

// Metric computes one number from a fully swept cell arena.
type Metric interface {
	Name() string
	Compute(cells []fmm.Cell, particles []particle.Particle) float64
}

// MassConservation reports the absolute difference between the root
// monopole and the summed particle masses. Zero (to rounding) for any
// correct sweep.
type MassConservation struct{}

func (MassConservation) Name() string { return "mass_error" }

func (MassConservation) Compute(cells []fmm.Cell, particles []particle.Particle) float64 {
	return math.Abs(cells[0].Multipole[0] - particle.TotalMass(particles))
}

// DipoleNorm reports the magnitude of the root cell's dipole moment.
// Near zero for symmetric distributions about the root center.
type DipoleNorm struct{}

func (DipoleNorm) Name() string { return "root_dipole" }

func (DipoleNorm) Compute(cells []fmm.Cell, particles []particle.Particle) float64 {
	m := cells[0].Multipole
	return math.Sqrt(m[1]*m[1] + m[2]*m[2] + m[3]*m[3])
}

// TreeDepth reports the deepest level in the arena.
type TreeDepth struct{}

func (TreeDepth) Name() string { return "tree_depth" }

func (TreeDepth) Compute(cells []fmm.Cell, particles []particle.Particle) float64 {
	depth := make([]int, len(cells))
	max := 0
	for i := 1; i < len(cells); i++ {
		depth[i] = depth[cells[i].Parent] + 1
		if depth[i] > max {
			max = depth[i]
		}
	}
	return float64(max)
}

// LeafCount reports how many cells are leaves.
type LeafCount struct{}

func (LeafCount) Name() string { return "leaf_count" }

func (LeafCount) Compute(cells []fmm.Cell, particles []particle.Particle) float64 {
	n := 0
	for i := range cells {
		if cells[i].IsLeaf() {
			n++
		}
	}
	return float64(n)
}

// FarFieldError reports the worst relative error of the root multipole
// against direct summation, sampled at Probes points on a sphere of
// radius Distance times the root radius around the root center.
type FarFieldError struct {
	Probes   int
	Distance float64
}

func (FarFieldError) Name() string { return "farfield_error" }

func (f FarFieldError) Compute(cells []fmm.Cell, particles []particle.Particle) float64 {
	probes := f.Probes
	if probes <= 0 {
		probes = 16
	}
	dist := f.Distance
	if dist <= 0 {
		dist = 10
	}
	root := &cells[0]
	d := dist * root.R

	worst := 0.0
	for k := 0; k < probes; k++ {
		// deterministic spiral covering the probe sphere
		cosT := 0.0
		if probes > 1 {
			cosT = -1 + 2*float64(k)/float64(probes-1)
		}
		sinT := math.Sqrt(1 - cosT*cosT)
		phiAngle := math.Pi * (1 + math.Sqrt(5)) * float64(k)
		rx := d * sinT * math.Cos(phiAngle)
		ry := d * sinT * math.Sin(phiAngle)
		rz := d * cosT

		approx := root.Multipole.Evaluate(rx, ry, rz)
		exact := direct.Potential(particles, root.X+rx, root.Y+ry, root.Z+rz)
		if exact == 0 {
			continue
		}
		err := math.Abs(approx-exact) / math.Abs(exact)
		if err > worst {
			worst = err
		}
	}
	return worst
}

// Defaults returns the metrics the sweep command reports.
func Defaults() []Metric {
	return []Metric{
		MassConservation{},
		DipoleNorm{},
		TreeDepth{},
		LeafCount{},
		FarFieldError{},
	}
}
