package tree

import (
	"math"
	"testing"

	"github.com/azhan137/FMM-tutorial/internal/fmm"
	"github.com/azhan137/FMM-tutorial/internal/particle"
)

func buildUniform(t *testing.T, n, nCrit int) ([]fmm.Cell, []particle.Particle) {
	t.Helper()
	ps := particle.Uniform(n, 42)
	cx, cy, cz, r := BoundingCube(ps)
	cells, err := Build(ps, nCrit, cx, cy, cz, r)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := Validate(cells); err != nil {
		t.Fatalf("built tree failed validation: %v", err)
	}
	return cells, ps
}

func TestBuildInvariants(t *testing.T) {
	cells, ps := buildUniform(t, 500, 8)

	if cells[0].NLeaf != len(ps) {
		t.Errorf("root subtree count %d, want %d", cells[0].NLeaf, len(ps))
	}

	// every particle appears in exactly one leaf
	seen := make(map[int]int)
	for i := range cells {
		for _, p := range cells[i].Leaf {
			seen[p]++
		}
	}
	if len(seen) != len(ps) {
		t.Errorf("leaves cover %d particles, want %d", len(seen), len(ps))
	}
	for p, count := range seen {
		if count != 1 {
			t.Errorf("particle %d owned by %d leaves", p, count)
		}
	}

	// index ordering: child strictly after parent
	for i := 1; i < len(cells); i++ {
		if cells[i].Parent >= i {
			t.Errorf("cell %d has parent %d", i, cells[i].Parent)
		}
	}
}

func TestBuildLeafContainment(t *testing.T) {
	cells, ps := buildUniform(t, 300, 10)

	for i := range cells {
		c := &cells[i]
		for _, pi := range c.Leaf {
			p := ps[pi]
			if math.Abs(p.X-c.X) > c.R*1.0001 ||
				math.Abs(p.Y-c.Y) > c.R*1.0001 ||
				math.Abs(p.Z-c.Z) > c.R*1.0001 {
				t.Errorf("particle %d outside owning leaf %d", pi, i)
			}
		}
	}
}

func TestBuildSingleCell(t *testing.T) {
	ps := particle.Uniform(5, 1)
	cells, err := Build(ps, 100, 0.5, 0.5, 0.5, 0.5)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(cells) != 1 {
		t.Fatalf("nCrit above particle count should give one cell, got %d", len(cells))
	}
	if !cells[0].IsLeaf() || cells[0].NLeaf != 5 {
		t.Errorf("root should be a leaf holding all 5 particles")
	}
	if err := Validate(cells); err != nil {
		t.Errorf("validation: %v", err)
	}
}

func TestBuildCoincidentParticles(t *testing.T) {
	// Two particles at the same position can never be pushed into
	// different octants; splitting must stop with an error instead of
	// recursing without bound.
	ps := []particle.Particle{
		{X: 0.3, Y: 0.3, Z: 0.3, M: 1},
		{X: 0.3, Y: 0.3, Z: 0.3, M: 1},
	}
	if _, err := Build(ps, 2, 0.5, 0.5, 0.5, 0.5); err == nil {
		t.Fatal("coincident particles with nCrit 2 should fail to build")
	}

	// With room in the leaf they coexist without splitting.
	cells, err := Build(ps, 3, 0.5, 0.5, 0.5, 0.5)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := Validate(cells); err != nil {
		t.Errorf("validation: %v", err)
	}
}

func TestBoundingCube(t *testing.T) {
	ps := []particle.Particle{
		{X: -1, Y: 0, Z: 2, M: 1},
		{X: 3, Y: 1, Z: -2, M: 1},
	}
	cx, cy, cz, r := BoundingCube(ps)
	for _, p := range ps {
		if math.Abs(p.X-cx) > r || math.Abs(p.Y-cy) > r || math.Abs(p.Z-cz) > r {
			t.Errorf("particle %v outside cube center (%g,%g,%g) r %g", p, cx, cy, cz, r)
		}
	}
}

func TestValidateDetectsCorruption(t *testing.T) {
	base, _ := buildUniform(t, 200, 4)
	if len(base) < 3 {
		t.Skip("tree too small to corrupt")
	}

	clone := func() []fmm.Cell {
		c := make([]fmm.Cell, len(base))
		copy(c, base)
		return c
	}

	cells := clone()
	cells[2].Parent = len(cells) + 5
	if Validate(cells) == nil {
		t.Error("dangling parent index not detected")
	}

	cells = clone()
	cells[1].Parent = 1
	if Validate(cells) == nil {
		t.Error("self-parent not detected")
	}

	cells = clone()
	cells[0].Parent = 3
	if Validate(cells) == nil {
		t.Error("rooted root not detected")
	}

	cells = clone()
	cells[1].X += 0.25
	if Validate(cells) == nil {
		t.Error("octant geometry mismatch not detected")
	}

	if Validate(nil) == nil {
		t.Error("empty arena not detected")
	}
}

// End-to-end: a built tree swept serially, recursively and in parallel
// must conserve mass and agree coefficient by coefficient.
func TestBuildAndSweep(t *testing.T) {
	for _, nCrit := range []int{1, 4, 32} {
		cells, ps := buildUniform(t, 400, nCrit)

		fmm.UpwardSweep(cells, ps)
		total := particle.TotalMass(ps)
		if math.Abs(cells[0].Multipole[0]-total) > 1e-10 {
			t.Errorf("nCrit %d: root monopole %g, total mass %g",
				nCrit, cells[0].Multipole[0], total)
		}

		recursive := make([]fmm.Cell, len(cells))
		copy(recursive, cells)
		fmm.ResetMoments(recursive)
		fmm.SweepRecursive(recursive, ps)

		par := make([]fmm.Cell, len(cells))
		copy(par, cells)
		fmm.ResetMoments(par)
		fmm.ParallelSweep(par, ps, 4)

		for i := range cells {
			for k := 0; k < fmm.Coeffs; k++ {
				if math.Abs(recursive[i].Multipole[k]-cells[i].Multipole[k]) > 1e-12 {
					t.Fatalf("nCrit %d: recursive sweep diverges at cell %d coeff %d", nCrit, i, k)
				}
				if math.Abs(par[i].Multipole[k]-cells[i].Multipole[k]) > 1e-10 {
					t.Fatalf("nCrit %d: parallel sweep diverges at cell %d coeff %d", nCrit, i, k)
				}
			}
		}
	}
}

// The sweep over any tree shape must reproduce the moment computed by
// a single P2M over the whole particle set about the root center.
func TestSweepMatchesWholeSetP2M(t *testing.T) {
	cells, ps := buildUniform(t, 250, 6)
	fmm.UpwardSweep(cells, ps)

	whole := fmm.NewCell(cells[0].X, cells[0].Y, cells[0].Z, cells[0].R, len(ps)+1)
	for i := range ps {
		whole.Leaf = append(whole.Leaf, i)
	}
	whole.NLeaf = len(ps)
	fmm.P2M(&whole, ps)

	for k := 0; k < fmm.Coeffs; k++ {
		if math.Abs(cells[0].Multipole[k]-whole.Multipole[k]) > 1e-10 {
			t.Errorf("coefficient %d: sweep %g, direct %g",
				k, cells[0].Multipole[k], whole.Multipole[k])
		}
	}
}
