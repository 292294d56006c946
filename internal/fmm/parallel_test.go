package fmm

import "testing"

func TestParallelSweepMatchesSerial(t *testing.T) {
	ps := randomParticles(200, 7)

	serial := twoLevelArena(ps, 0.5, 0.5, 0.5, 0.5)
	UpwardSweep(serial, ps)

	for _, workers := range []int{1, 2, 4, 0} {
		cells := twoLevelArena(ps, 0.5, 0.5, 0.5, 0.5)
		ParallelSweep(cells, ps, workers)

		for i := range cells {
			momentsClose(t, cells[i].Multipole, serial[i].Multipole, 1e-10)
		}
	}
}

func TestParallelSweepSingleLeaf(t *testing.T) {
	ps := randomParticles(10, 8)
	root := NewCell(0.5, 0.5, 0.5, 0.5, len(ps)+1)
	for i := range ps {
		root.Leaf = append(root.Leaf, i)
	}
	root.NLeaf = len(ps)

	serial := []Cell{root}
	par := []Cell{root}
	serial[0].Leaf = append([]int(nil), root.Leaf...)
	par[0].Leaf = append([]int(nil), root.Leaf...)

	UpwardSweep(serial, ps)
	ParallelSweep(par, ps, 4)

	momentsClose(t, par[0].Multipole, serial[0].Multipole, 1e-13)
}

func TestParallelSweepEmptyArena(t *testing.T) {
	ParallelSweep(nil, nil, 4) // must not panic
}

func TestCellDepths(t *testing.T) {
	ps := randomParticles(50, 9)
	cells := twoLevelArena(ps, 0.5, 0.5, 0.5, 0.5)

	depth := cellDepths(cells)
	if depth[0] != 0 {
		t.Errorf("root depth %d, want 0", depth[0])
	}
	for i := 1; i < len(cells); i++ {
		if depth[i] != 1 {
			t.Errorf("cell %d depth %d, want 1", i, depth[i])
		}
	}
}
