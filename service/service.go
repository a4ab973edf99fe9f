// Package service binds the domain use-cases to the query cache coordinator.
// It is the entry point of every outer surface (HTTP, CLI): reads go through
// coordinator.Query, writes run the optimistic mutation protocol and report
// their outcome to the notifier.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-repository-switch/coordinator"
	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/notify"
	"github.com/goliatone/go-repository-switch/pkg/logger"
	"github.com/goliatone/go-repository-switch/pkg/metrics"
)

// Options carries the ambient dependencies shared by every service.
type Options struct {
	Logger  logger.Logger
	Metrics metrics.Metrics
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	if o.Metrics == nil {
		o.Metrics = metrics.Nop()
	}
	return o
}

// resource holds the behavior the three domain services share.
type resource[T any] struct {
	domain    domain.Domain
	coord     *coordinator.Coordinator
	logger    logger.Logger
	metrics   metrics.Metrics
	getID     func(T) int64
	accountID func(T) int64
}

func newResource[T any](d domain.Domain, coord *coordinator.Coordinator, opts Options, getID, accountID func(T) int64) resource[T] {
	opts = opts.withDefaults()
	return resource[T]{
		domain:    d,
		coord:     coord,
		logger:    opts.Logger.With(logger.String("domain", string(d))),
		metrics:   opts.Metrics,
		getID:     getID,
		accountID: accountID,
	}
}

// observe times one use-case execution.
func observe[T any](r resource[T], op string, fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		start := time.Now()
		err := fn(ctx)
		r.metrics.RecordUseCaseExecution(string(r.domain)+"."+op, err == nil, time.Since(start))
		return err
	}
}

// query reads k through the coordinator. A read rejected because the
// repository was switched while it was in flight is retried once against the
// newly selected repository.
func query[V any, T any](ctx context.Context, r resource[T], k coordinator.Key, op string, fetch func(context.Context) (V, error)) (V, error) {
	run := func(ctx context.Context) (V, error) {
		var out V
		err := observe(r, op, func(ctx context.Context) error {
			var err error
			out, err = fetch(ctx)
			return err
		})(ctx)
		return out, err
	}

	v, err := coordinator.Query(ctx, r.coord, k, run)
	if errors.Is(err, domain.ErrCanceled) {
		r.logger.Debug(ctx, "query canceled by repository switch, refetching",
			logger.String("family", string(k.Family)),
		)
		v, err = coordinator.Query(ctx, r.coord, k, run)
	}
	return v, err
}

func (r resource[T]) list(ctx context.Context, scope domain.Scope, fetch func(context.Context) ([]T, error)) ([]T, error) {
	return query(ctx, r, coordinator.ListKey(r.domain, scope), "list", fetch)
}

func (r resource[T]) get(ctx context.Context, id int64, fetch func(context.Context) (*T, error)) (T, error) {
	var zero T
	v, err := query(ctx, r, coordinator.DetailKey(r.domain, id), "get", fetch)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, domain.NewNotFoundError(r.domain, id)
	}
	return *v, nil
}

// listKeys returns the unscoped list key plus the list scoped to accountID.
func (r resource[T]) listKeys(accountID int64) []coordinator.Key {
	keys := []coordinator.Key{coordinator.ListKey(r.domain, domain.Scope{})}
	if accountID > 0 {
		keys = append(keys, coordinator.ListKey(r.domain, domain.ForAccount(accountID)))
	}
	return keys
}

// ownerOf looks up the owner of a cached entity so scoped lists can be
// patched optimistically too. It returns 0 when nothing is cached.
func (r resource[T]) ownerOf(ctx context.Context, id int64) int64 {
	if r.accountID == nil {
		return 0
	}
	if p, ok := coordinator.Peek[*T](ctx, r.coord, coordinator.DetailKey(r.domain, id)); ok && p != nil {
		return r.accountID(*p)
	}
	list, _ := coordinator.Peek[[]T](ctx, r.coord, coordinator.ListKey(r.domain, domain.Scope{}))
	for _, record := range list {
		if r.getID(record) == id {
			return r.accountID(record)
		}
	}
	return 0
}

// fail reports an error that happened before a mutation was applied.
func (r resource[T]) fail(ctx context.Context, op string, err error) error {
	r.logger.Warn(ctx, "mutation rejected",
		logger.String("op", op),
		logger.WithError(err),
	)
	r.coord.Notifier().Notify(ctx, notify.Failure(err))
	return err
}

// mutate runs m around op and reports the outcome. Rolled back mutations are
// reported by the coordinator itself.
func (r resource[T]) mutate(ctx context.Context, m *coordinator.Mutation, op func(context.Context) error, success func() string) error {
	if err := coordinator.Run(ctx, m, observe(r, m.Kind, op)); err != nil {
		if m.State() == coordinator.Idle {
			return r.fail(ctx, m.Kind, err)
		}
		return err
	}
	r.coord.Notifier().Notify(ctx, notify.Success(success()))
	return nil
}

// settleClear reports a clear-all outcome. Every cached entry of the domain
// is invalidated on success so the next read refetches.
func (r resource[T]) settleClear(ctx context.Context, err error, success string) error {
	if err != nil {
		return r.fail(ctx, "clear", err)
	}
	r.coord.InvalidateDomain(ctx, r.domain)
	r.coord.Notifier().Notify(ctx, notify.Success(success))
	return nil
}
