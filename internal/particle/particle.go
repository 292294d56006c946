package particle

import (
	"fmt"
	"math"
	"math/rand"
)

// Particle is a point mass (or charge). Positions and masses are fixed
// for the duration of a sweep.
type Particle struct {
	X, Y, Z float64
	M       float64
}

// TotalMass sums the masses of all particles.
func TotalMass(ps []Particle) float64 {
	total := 0.0
	for _, p := range ps {
		total += p.M
	}
	return total
}

// Uniform places n particles uniformly inside the unit cube [0,1)^3,
// each with mass 1/n.
func Uniform(n int, seed int64) []Particle {
	rng := rand.New(rand.NewSource(seed))
	ps := make([]Particle, n)
	m := 1.0 / float64(n)
	for i := range ps {
		ps[i] = Particle{
			X: rng.Float64(),
			Y: rng.Float64(),
			Z: rng.Float64(),
			M: m,
		}
	}
	return ps
}

// Sphere places n particles uniformly inside a ball of radius 0.5
// centered at (0.5, 0.5, 0.5), each with mass 1/n.
func Sphere(n int, seed int64) []Particle {
	rng := rand.New(rand.NewSource(seed))
	ps := make([]Particle, n)
	m := 1.0 / float64(n)
	for i := range ps {
		// rejection sample the unit ball
		var x, y, z float64
		for {
			x = 2*rng.Float64() - 1
			y = 2*rng.Float64() - 1
			z = 2*rng.Float64() - 1
			if x*x+y*y+z*z <= 1 {
				break
			}
		}
		ps[i] = Particle{
			X: 0.5 + 0.5*x,
			Y: 0.5 + 0.5*y,
			Z: 0.5 + 0.5*z,
			M: m,
		}
	}
	return ps
}

// Plummer places n particles following a Plummer density profile scaled
// into the unit cube, a centrally concentrated cluster that produces
// deep, uneven octrees. Samples falling outside the cube are redrawn.
func Plummer(n int, seed int64) []Particle {
	rng := rand.New(rand.NewSource(seed))
	ps := make([]Particle, n)
	m := 1.0 / float64(n)
	const a = 0.1 // scale radius
	for i := range ps {
		var x, y, z float64
		for {
			u := rng.Float64()
			r := a / math.Sqrt(math.Pow(u, -2.0/3.0)-1)
			cosT := 2*rng.Float64() - 1
			sinT := math.Sqrt(1 - cosT*cosT)
			phi := 2 * math.Pi * rng.Float64()
			x = 0.5 + r*sinT*math.Cos(phi)
			y = 0.5 + r*sinT*math.Sin(phi)
			z = 0.5 + r*cosT
			if x >= 0 && x < 1 && y >= 0 && y < 1 && z >= 0 && z < 1 {
				break
			}
		}
		ps[i] = Particle{X: x, Y: y, Z: z, M: m}
	}
	return ps
}

// Octants places one particle of mass 0.125 at the center of each octant
// of the unit cube. With nCrit = 1 every octant becomes its own leaf.
func Octants() []Particle {
	ps := make([]Particle, 8)
	for i := 0; i < 8; i++ {
		ps[i] = Particle{
			X: 0.25 + 0.5*float64(i&1),
			Y: 0.25 + 0.5*float64((i>>1)&1),
			Z: 0.25 + 0.5*float64((i>>2)&1),
			M: 0.125,
		}
	}
	return ps
}

// Generate dispatches on a distribution name. n is ignored by "octants".
func Generate(distribution string, n int, seed int64) ([]Particle, error) {
	switch distribution {
	case "uniform":
		return Uniform(n, seed), nil
	case "sphere":
		return Sphere(n, seed), nil
	case "plummer":
		return Plummer(n, seed), nil
	case "octants":
		return Octants(), nil
	default:
		return nil, fmt.Errorf("unknown distribution: %s", distribution)
	}
}

// Distributions lists the names Generate accepts.
func Distributions() []string {
	return []string{"uniform", "sphere", "plummer", "octants"}
}
