package coordinator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/notify"
	"github.com/goliatone/go-repository-switch/pkg/logger"
)

// MutationState is the lifecycle position of a Mutation.
type MutationState int

const (
	Idle MutationState = iota
	Applied
	Confirmed
	RolledBack
)

func (s MutationState) String() string {
	switch s {
	case Applied:
		return "applied"
	case Confirmed:
		return "confirmed"
	case RolledBack:
		return "rolled_back"
	default:
		return "idle"
	}
}

// ErrInvalidTransition is returned when a Mutation is driven out of order,
// for example confirmed twice or rolled back before being applied.
var ErrInvalidTransition = errors.New("coordinator: invalid mutation state transition")

// snapshot is an immutable copy of one cache entry taken before Apply wrote it.
type snapshot struct {
	key     string
	value   any
	present bool
	// version is the entry version right after Apply wrote it.
	version uint64
}

// step describes how a mutation touches one cache entry. All functions are
// pure: they read their arguments and return new values.
type step struct {
	key Key
	// clone copies a cached value so the snapshot can not be aliased.
	clone func(v any) any
	// apply computes the optimistic value from the current one.
	apply func(v any, present bool) (any, bool)
	// revert undoes only this mutation's change on a value that another
	// writer touched after Apply.
	revert func(current any, present bool, snap snapshot) (any, bool)
}

// Mutation is one optimistic change to the query cache.
type Mutation struct {
	ID     uuid.UUID
	Domain domain.Domain
	Kind   string

	c     *Coordinator
	steps []step

	mu    sync.Mutex
	state MutationState
	epoch uint64
	snaps []snapshot
}

func (c *Coordinator) newMutation(d domain.Domain, kind string, steps ...step) *Mutation {
	return &Mutation{
		ID:     uuid.New(),
		Domain: d,
		Kind:   kind,
		c:      c,
		steps:  steps,
	}
}

// State returns the current lifecycle state.
func (m *Mutation) State() MutationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Apply snapshots every touched entry, then writes the optimistic values.
func (m *Mutation) Apply(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Idle {
		return fmt.Errorf("%w: apply from %s", ErrInvalidTransition, m.state)
	}

	mu := m.c.lock(m.Domain)
	mu.RLock()
	defer mu.RUnlock()

	m.epoch = m.c.Epoch(m.Domain)
	m.c.touch(m.Domain)
	m.snaps = make([]snapshot, len(m.steps))
	for i, s := range m.steps {
		key := m.c.render(s.key, m.epoch)
		v, ok := m.c.cache.Peek(ctx, key)
		if ok {
			v = s.clone(v)
		}
		m.snaps[i] = snapshot{key: key, value: v, present: ok}
	}

	for i, s := range m.steps {
		snap := m.snaps[i]
		next, present := s.apply(s.clone(snap.value), snap.present)
		if err := m.c.write(ctx, snap.key, next, present); err != nil {
			return err
		}
		m.snaps[i].version = m.c.version(snap.key)
	}

	m.state = Applied
	m.c.logger.Debug(ctx, "optimistic mutation applied",
		logger.String("mutation", m.ID.String()),
		logger.String("domain", string(m.Domain)),
		logger.String("kind", m.Kind),
	)
	return nil
}

// Confirm settles a successful mutation by invalidating the domain so the
// next read replaces tentative values with server state. Reads that were in
// flight during the mutation do not cache their pre-mutation result.
func (m *Mutation) Confirm(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Applied {
		return fmt.Errorf("%w: confirm from %s", ErrInvalidTransition, m.state)
	}
	m.state = Confirmed

	if m.c.Epoch(m.Domain) == m.epoch {
		m.c.InvalidateDomain(ctx, m.Domain)
	}
	m.c.metrics.RecordMutation(string(m.Domain), m.Kind, Confirmed.String())
	return nil
}

// Rollback restores the cache to its pre-Apply state and returns cause. If an
// entry was written by someone else after Apply, only this mutation's change
// is reverted on top of the current value.
func (m *Mutation) Rollback(ctx context.Context, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Applied {
		return fmt.Errorf("%w: rollback from %s", ErrInvalidTransition, m.state)
	}
	m.state = RolledBack

	mu := m.c.lock(m.Domain)
	mu.RLock()
	if m.c.Epoch(m.Domain) == m.epoch {
		m.c.touch(m.Domain)
		for i := len(m.steps) - 1; i >= 0; i-- {
			s, snap := m.steps[i], m.snaps[i]
			if m.c.version(snap.key) == snap.version {
				_ = m.c.write(ctx, snap.key, snap.value, snap.present)
				continue
			}
			cur, ok := m.c.cache.Peek(ctx, snap.key)
			if ok {
				cur = s.clone(cur)
			}
			next, present := s.revert(cur, ok, snap)
			_ = m.c.write(ctx, snap.key, next, present)
		}
	}
	mu.RUnlock()

	m.c.metrics.RecordMutation(string(m.Domain), m.Kind, RolledBack.String())
	m.c.logger.Warn(ctx, "optimistic mutation rolled back",
		logger.String("mutation", m.ID.String()),
		logger.String("domain", string(m.Domain)),
		logger.String("kind", m.Kind),
		logger.WithError(cause),
	)
	if cause != nil {
		m.c.notifier.Notify(ctx, notify.Failure(cause))
	}
	return cause
}

// Run drives m through Apply, op and Confirm or Rollback.
func Run(ctx context.Context, m *Mutation, op func(ctx context.Context) error) error {
	if err := m.Apply(ctx); err != nil {
		return err
	}
	if err := op(ctx); err != nil {
		return m.Rollback(ctx, err)
	}
	return m.Confirm(ctx)
}

var tentativeSeq atomic.Int64

// TentativeID returns a negative, timestamp derived id for optimistic
// entities. Negative ids never collide with store assigned ones.
func TentativeID() int64 {
	return -(time.Now().UnixMilli()*1000 + tentativeSeq.Add(1)%1000)
}

func cloneList[T any](v any) any {
	if l, ok := v.([]T); ok {
		return slices.Clone(l)
	}
	return v
}

func cloneDetail[T any](v any) any {
	if p, ok := v.(*T); ok && p != nil {
		cp := *p
		return &cp
	}
	return v
}

func asList[T any](v any, present bool) []T {
	if !present {
		return nil
	}
	l, _ := v.([]T)
	return l
}

func indexOf[T any](list []T, id int64, getID func(T) int64) int {
	return slices.IndexFunc(list, func(x T) bool { return getID(x) == id })
}

func dedupeKeys(keys []Key) []Key {
	out := make([]Key, 0, len(keys))
	for _, k := range keys {
		if !slices.ContainsFunc(out, func(o Key) bool { return o.Family == k.Family && slices.Equal(o.Params, k.Params) }) {
			out = append(out, k)
		}
	}
	return out
}

func createStep[T any](listKey Key, tentative T, getID func(T) int64) step {
	id := getID(tentative)
	return step{
		key:   listKey,
		clone: cloneList[T],
		apply: func(v any, present bool) (any, bool) {
			if !present {
				return nil, false
			}
			return append(asList[T](v, present), tentative), true
		},
		revert: func(cur any, present bool, _ snapshot) (any, bool) {
			if !present {
				return nil, false
			}
			return slices.DeleteFunc(asList[T](cur, present), func(x T) bool { return getID(x) == id }), true
		},
	}
}

func deleteListStep[T any](listKey Key, id int64, getID func(T) int64) step {
	return step{
		key:   listKey,
		clone: cloneList[T],
		apply: func(v any, present bool) (any, bool) {
			if !present {
				return nil, false
			}
			return slices.DeleteFunc(asList[T](v, present), func(x T) bool { return getID(x) == id }), true
		},
		revert: func(cur any, present bool, snap snapshot) (any, bool) {
			original := asList[T](snap.value, snap.present)
			at := indexOf(original, id, getID)
			if at < 0 {
				return cur, present
			}
			list := asList[T](cur, present)
			if indexOf(list, id, getID) >= 0 {
				return list, true
			}
			return slices.Insert(list, min(at, len(list)), original[at]), true
		},
	}
}

func deleteDetailStep[T any](detailKey Key) step {
	return step{
		key:   detailKey,
		clone: cloneDetail[T],
		apply: func(any, bool) (any, bool) {
			return nil, false
		},
		revert: func(cur any, present bool, snap snapshot) (any, bool) {
			if present {
				return cur, true
			}
			return snap.value, snap.present
		},
	}
}

func updateListStep[T any](listKey Key, id int64, getID func(T) int64, patch func(T) T) step {
	return step{
		key:   listKey,
		clone: cloneList[T],
		apply: func(v any, present bool) (any, bool) {
			if !present {
				return nil, false
			}
			list := asList[T](v, present)
			if at := indexOf(list, id, getID); at >= 0 {
				list[at] = patch(list[at])
			}
			return list, true
		},
		revert: func(cur any, present bool, snap snapshot) (any, bool) {
			original := asList[T](snap.value, snap.present)
			from := indexOf(original, id, getID)
			list := asList[T](cur, present)
			at := indexOf(list, id, getID)
			if from < 0 || at < 0 {
				return cur, present
			}
			list[at] = original[from]
			return list, true
		},
	}
}

func updateDetailStep[T any](detailKey Key, patch func(T) T) step {
	return step{
		key:   detailKey,
		clone: cloneDetail[T],
		apply: func(v any, present bool) (any, bool) {
			p, _ := v.(*T)
			if !present || p == nil {
				return v, present
			}
			next := patch(*p)
			return &next, true
		},
		revert: func(_ any, _ bool, snap snapshot) (any, bool) {
			return snap.value, snap.present
		},
	}
}

// BeginCreate prepares appending tentative to every cached list in listKeys.
// Lists that were never fetched stay absent.
func BeginCreate[T any](c *Coordinator, d domain.Domain, tentative T, getID func(T) int64, listKeys ...Key) *Mutation {
	var steps []step
	for _, k := range dedupeKeys(listKeys) {
		steps = append(steps, createStep(k, tentative, getID))
	}
	return c.newMutation(d, "create", steps...)
}

// BeginDelete prepares removing id from every list in listKeys and dropping
// its detail entry.
func BeginDelete[T any](c *Coordinator, d domain.Domain, id int64, getID func(T) int64, listKeys ...Key) *Mutation {
	var steps []step
	for _, k := range dedupeKeys(listKeys) {
		steps = append(steps, deleteListStep(k, id, getID))
	}
	steps = append(steps, deleteDetailStep[T](DetailKey(d, id)))
	return c.newMutation(d, "delete", steps...)
}

// BeginUpdate prepares patching the entity id in every list in listKeys and
// in its detail entry.
func BeginUpdate[T any](c *Coordinator, d domain.Domain, id int64, getID func(T) int64, patch func(T) T, listKeys ...Key) *Mutation {
	var steps []step
	for _, k := range dedupeKeys(listKeys) {
		steps = append(steps, updateListStep(k, id, getID, patch))
	}
	steps = append(steps, updateDetailStep(DetailKey(d, id), patch))
	return c.newMutation(d, "update", steps...)
}
