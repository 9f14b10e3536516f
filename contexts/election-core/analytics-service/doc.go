// Package analyticsservice computes the live tally picture inside the
// election-core context.
//
// Every computation is a full read-only pass over the result and center
// sources: the module holds no mutable aggregate state, so event-triggered
// and timer-triggered recomputations can race without corrupting anything.
// The broadcaster pushes snapshots and result events to whatever publisher
// it is given; zero observers is a no-op.
package analyticsservice
