package fmm

import "math"

// Coeffs is the number of coefficients in a second-order expansion.
const Coeffs = 10

// Multipole is a truncated multipole expansion about a cell center.
// The zero value is the zero moment.
type Multipole [Coeffs]float64

// AddParticle accumulates a point mass into the moment.
// (dx, dy, dz) is the displacement center - particle position.
func (m *Multipole) AddParticle(mass, dx, dy, dz float64) {
	m[0] += mass
	m[1] += mass * dx
	m[2] += mass * dy
	m[3] += mass * dz
	m[4] += mass * dx * dx / 2
	m[5] += mass * dy * dy / 2
	m[6] += mass * dz * dz / 2
	m[7] += mass * dx * dy / 2
	m[8] += mass * dy * dz / 2
	m[9] += mass * dz * dx / 2
}

// AddShifted accumulates the moment c, re-expanded about a center
// displaced by (dx, dy, dz) = new center - old center. This is the M2M
// translation: a second-order Taylor shift of the expansion origin.
// The monopole term is unchanged by the shift.
func (m *Multipole) AddShifted(c Multipole, dx, dy, dz float64) {
	m[0] += c[0]

	m[1] += c[1] + c[0]*dx
	m[2] += c[2] + c[0]*dy
	m[3] += c[3] + c[0]*dz

	m[4] += c[4] + c[1]*dx + c[0]*dx*dx/2
	m[5] += c[5] + c[2]*dy + c[0]*dy*dy/2
	m[6] += c[6] + c[3]*dz + c[0]*dz*dz/2

	// Cross terms pair each displacement component with the dipole
	// moment of the other axis: (x,y), (y,z), (z,x).
	m[7] += c[7] + (c[2]*dx+c[1]*dy+c[0]*dx*dy)/2
	m[8] += c[8] + (c[3]*dy+c[2]*dz+c[0]*dy*dz)/2
	m[9] += c[9] + (c[1]*dz+c[3]*dx+c[0]*dz*dx)/2
}

// Evaluate computes the expansion's approximation to the potential
// sum(m_j / |x - p_j|) at a point displaced by (rx, ry, rz) from the
// expansion center. Valid in the far field; accuracy improves as the
// cube of the distance-to-cell-size ratio.
func (m Multipole) Evaluate(rx, ry, rz float64) float64 {
	r2 := rx*rx + ry*ry + rz*rz
	r := math.Sqrt(r2)
	r3 := r2 * r
	r5 := r3 * r2

	phi := m[0] / r
	phi -= (m[1]*rx + m[2]*ry + m[3]*rz) / r3
	phi += m[4] * (3*rx*rx/r5 - 1/r3)
	phi += m[5] * (3*ry*ry/r5 - 1/r3)
	phi += m[6] * (3*rz*rz/r5 - 1/r3)
	phi += 6 * (m[7]*rx*ry + m[8]*ry*rz + m[9]*rz*rx) / r5
	return phi
}

// Norm returns the Euclidean norm of the coefficient vector.
func (m Multipole) Norm() float64 {
	sum := 0.0
	for _, c := range m {
		sum += c * c
	}
	return math.Sqrt(sum)
}

// IsZero reports whether every coefficient is exactly zero.
func (m Multipole) IsZero() bool {
	for _, c := range m {
		if c != 0 {
			return false
		}
	}
	return true
}
