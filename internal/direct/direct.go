// Package direct computes potentials by pairwise summation. It is the
// O(N^2) reference the multipole expansions are checked against.
package direct

import (
	"math"

	"github.com/azhan137/FMM-tutorial/internal/particle"
)

// Potential returns sum(m_j / |x - p_j|) over all particles at the
// point (x, y, z). A particle coincident with the point yields +Inf;
// callers choose probe points away from the particle set.
func Potential(particles []particle.Particle, x, y, z float64) float64 {
	phi := 0.0
	for _, p := range particles {
		dx, dy, dz := x-p.X, y-p.Y, z-p.Z
		phi += p.M / math.Sqrt(dx*dx+dy*dy+dz*dz)
	}
	return phi
}
