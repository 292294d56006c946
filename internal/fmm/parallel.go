package fmm

import (
	"runtime"
	"sync"

	"github.com/azhan137/FMM-tutorial/internal/particle"
)

// momentPool recycles scratch moments used by the per-parent M2M
// reductions.
var momentPool = sync.Pool{
	New: func() interface{} { return new(Multipole) },
}

// ParallelSweep produces the same moments as UpwardSweep using up to
// workers goroutines. P2M runs across leaves with no shared state; M2M
// runs level by level, deepest first, with one task per parent so no
// two goroutines ever write the same cell. Within a task the children's
// contributions are gathered into a scratch moment and added to the
// parent once.
func ParallelSweep(cells []Cell, particles []particle.Particle, workers int) {
	if len(cells) == 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	depth := cellDepths(cells)
	maxDepth := 0
	var leaves []int
	parentsAt := make(map[int][]int) // depth -> parent indices with children at depth+1
	for i := range cells {
		if depth[i] > maxDepth {
			maxDepth = depth[i]
		}
		if cells[i].IsLeaf() {
			leaves = append(leaves, i)
		} else {
			parentsAt[depth[i]] = append(parentsAt[depth[i]], i)
		}
	}

	runTasks(leaves, workers, func(i int) {
		P2M(&cells[i], particles)
	})

	// Children of one parent share a depth, so each barrier level is a
	// set of independent per-parent reductions.
	for d := maxDepth - 1; d >= 0; d-- {
		parents := parentsAt[d]
		if len(parents) == 0 {
			continue
		}
		runTasks(parents, workers, func(p int) {
			c := &cells[p]
			scratch := momentPool.Get().(*Multipole)
			*scratch = Multipole{}
			for oct := 0; oct < 8; oct++ {
				if c.HasChild(oct) {
					child := &cells[c.Child[oct]]
					scratch.AddShifted(child.Multipole,
						c.X-child.X, c.Y-child.Y, c.Z-child.Z)
				}
			}
			for k := range c.Multipole {
				c.Multipole[k] += scratch[k]
			}
			momentPool.Put(scratch)
		})
	}
}

// cellDepths computes each cell's depth in one forward pass; a parent
// always precedes its children in the arena.
func cellDepths(cells []Cell) []int {
	depth := make([]int, len(cells))
	for i := 1; i < len(cells); i++ {
		depth[i] = depth[cells[i].Parent] + 1
	}
	return depth
}

func runTasks(indices []int, workers int, fn func(int)) {
	if len(indices) == 0 {
		return
	}
	if workers > len(indices) {
		workers = len(indices)
	}
	jobs := make(chan int, len(indices))
	for _, i := range indices {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}
	wg.Wait()
}
