// Package dag reconstructs the resource dependency graph of a planner change
// order and assigns every resource its level: the length of the longest
// dependency chain that ends at it.
//
// A Graph is rebuilt from scratch for every change order and never mutated
// afterwards. Dependencies may name resources that are not part of the order
// (pre-existing or already deleted resources); such dangling references are
// kept as edges but contribute nothing to levels and are dropped by layout.
//
// The only structural failure is a dependency cycle, which AssignLevels
// reports as a *CycleError instead of recursing forever.
package dag
