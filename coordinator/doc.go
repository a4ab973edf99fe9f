// Package coordinator keeps the query cache consistent with the repository
// type selected for each domain and runs optimistic mutations against it.
//
// # Epochs
//
// Every domain carries an epoch counter that is part of every cache key the
// coordinator renders ("posts::<epoch>::list::<accountId>"). A repository
// switch cancels in-flight reads by bumping the epoch, then resets the domain
// by deleting all of its cached entries. A read that started before the
// switch settles against an old epoch: its result is dropped from the cache
// and the caller gets domain.ErrCanceled. Readers that start after the switch
// render new-epoch keys and can never observe old-source data.
//
// # Invalidate vs reset
//
// Invalidate marks an entry stale. Peek still returns it, the next Query
// refetches it. Reset removes entries so they are back to "never fetched".
//
// # Optimistic mutations
//
// A Mutation moves through Idle → Applied → Confirmed | RolledBack. Apply
// snapshots every touched entry before writing the optimistic value. Confirm
// invalidates the domain so server state replaces tentative state. Rollback
// restores the snapshots; when another writer touched an entry in between,
// only this mutation's own change is reverted so concurrent mutations keep
// their optimistic state.
package coordinator
