// Package resultservice implements result intake and verification inside the
// election-core context.
//
// The module owns the Result entity end to end: numeric validation of
// incoming tallies against a center's registered-voter count, the status
// lifecycle (pending/flagged/rejected/verified/archived) with role-gated
// transitions, and the transition audit trail. Results are mutated only
// through this module's operations; every status change is recorded with
// actor, comment, and timestamp.
package resultservice
