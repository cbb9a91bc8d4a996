// Package reconcile converges GitHub starred state with a set of
// repositories.
//
// For each repository, in order and one at a time, the [Engine] asks the
// [StarAPI] whether the viewer already starred it, stars it if not (unless
// running dry), records a [StarredRepository] and notifies the
// [EventHandler]. Querying before mutating makes runs idempotent: a second
// run over the same set issues no Star calls.
//
// Any query or star failure aborts the run. There is no partial summary.
package reconcile
