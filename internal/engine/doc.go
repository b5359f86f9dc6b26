// Package engine executes blueprint graphs.
//
// A pass starts at a trigger node and follows exec edges depth first, one
// node at a time. Before a node runs, its value inputs are resolved: upstream
// nodes without exec inputs are evaluated on demand with their exec outputs
// muted, flow nodes contribute the outputs they cached when they last ran in
// the pass. A failing or panicking node stops only its own branch;
// cancellation, timeouts and the step limit abort the pass.
//
// On-demand values are memoized per resolution by default: a getter read by
// two consecutive flow nodes is evaluated twice and sees any write made in
// between. types.PureCachePass keeps one memo for the whole pass instead, so
// every consumer sees the first evaluation.
package engine
