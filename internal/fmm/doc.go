// Package fmm implements the upward pass of a fast multipole method:
// particle-to-multipole (P2M) expansion of octree leaves and
// multipole-to-multipole (M2M) translation of children into parents.
//
// Moments are second-order Taylor expansions of the 1/r kernel about a
// cell center, stored as ten coefficients:
//
//	index 0     total mass (monopole)
//	index 1-3   dipole moments x, y, z
//	index 4-6   quadrupole diagonal xx, yy, zz
//	index 7-9   quadrupole cross xy, yz, zx
//
// After [UpwardSweep] every cell's moment aggregates exactly the
// particles in its subtree; the root moment summarizes the whole set.
//
// # Traversal order
//
// Tree construction guarantees that every child's index in the cell
// arena is strictly greater than its parent's. M2M therefore needs no
// recursion: a single loop from the last cell down to index 1 visits
// every cell after all of its descendants, so each moment is complete
// before it is translated into its parent. [SweepRecursive] performs
// the same work as an explicit post-order descent and produces
// identical moments.
package fmm
