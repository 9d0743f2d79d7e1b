// Package service implements the store-hive and product-catalogue domain
// services. Every operation runs as one logical unit against a data context,
// takes and returns plain DTOs, and reports failures as the typed errors of
// package domain.
package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"hivecore/internal/events"
	"hivecore/internal/mapping"
	"hivecore/internal/observability"
	"hivecore/pkg/domain"
	"hivecore/pkg/entityset"
)

// Operation names used for spans, metrics and logs.
const (
	opList      = "list"
	opGet       = "get"
	opCreate    = "create"
	opUpdate    = "update"
	opSetStatus = "set_status"
	opDelete    = "delete"
	opChildren  = "list_children"
)

// Option customizes a service.
type Option func(*instrumentation)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(i *instrumentation) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithMetrics records operation counts and latencies.
func WithMetrics(m *observability.Metrics) Option {
	return func(i *instrumentation) { i.metrics = m }
}

// WithPublisher sets where change events go after a successful mutation.
func WithPublisher(p events.Publisher) Option {
	return func(i *instrumentation) {
		if p != nil {
			i.publisher = p
		}
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(i *instrumentation) {
		if t != nil {
			i.tracer = t
		}
	}
}

// WithClock overrides the time source used for modification stamps.
func WithClock(now func() time.Time) Option {
	return func(i *instrumentation) {
		if now != nil {
			i.now = now
		}
	}
}

// instrumentation is embedded by every service.
type instrumentation struct {
	mapper    *mapping.Registry
	logger    *zap.Logger
	metrics   *observability.Metrics
	publisher events.Publisher
	tracer    trace.Tracer
	now       func() time.Time
}

func newInstrumentation(entity domain.EntityType, mapper *mapping.Registry, opts []Option) instrumentation {
	if mapper == nil {
		mapper = mapping.Default()
	}
	i := instrumentation{
		mapper:    mapper,
		logger:    zap.NewNop(),
		publisher: events.Nop{},
		tracer:    observability.Tracer(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&i)
	}
	i.logger = i.logger.With(zap.String("entity", string(entity)))
	return i
}

// begin opens a span for one operation. The returned func must be deferred
// with a pointer to the operation's named error result.
func (i *instrumentation) begin(ctx context.Context, entity domain.EntityType, op string, id int) (context.Context, func(*error)) {
	started := time.Now()
	ctx, span := i.tracer.Start(ctx, string(entity)+"."+op, trace.WithAttributes(
		attribute.String("hivecore.entity", string(entity)),
		attribute.String("hivecore.operation", op),
		attribute.Int("hivecore.id", id),
	))
	return ctx, func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		elapsed := time.Since(started)
		i.metrics.Observe(entity, op, err, elapsed)
		fields := []zap.Field{zap.String("operation", op), zap.Duration("elapsed", elapsed)}
		if id != 0 {
			fields = append(fields, zap.Int("id", id))
		}
		switch outcome := observability.Outcome(err); outcome {
		case observability.OutcomeSuccess:
			span.SetStatus(codes.Ok, "")
			if mutates(op) {
				i.logger.Info("operation completed", fields...)
			} else {
				i.logger.Debug("operation completed", fields...)
			}
		case observability.OutcomeError:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			i.logger.Error("operation failed", append(fields, zap.Error(err))...)
		default:
			span.SetStatus(codes.Error, outcome)
			i.logger.Warn("operation rejected", append(fields, zap.String("outcome", outcome), zap.Error(err))...)
		}
		span.End()
	}
}

// publish delivers evt. Delivery failures are logged and never reach the caller.
func (i *instrumentation) publish(ctx context.Context, evt events.Event) {
	if err := i.publisher.Publish(ctx, evt); err != nil {
		i.logger.Error("publish change event",
			zap.String("action", string(evt.Action)),
			zap.Int("id", evt.EntityID),
			zap.Error(err),
		)
	}
}

func mutates(op string) bool {
	switch op {
	case opCreate, opUpdate, opSetStatus, opDelete:
		return true
	}
	return false
}

func findByID[T domain.Record](ctx context.Context, set *entityset.Set[T], id int) (T, bool, error) {
	return set.Query().Where(func(e T) bool { return e.Identity() == id }).First(ctx)
}

// findExisting returns the row with id, soft-deleted or not.
func findExisting[T domain.Record](ctx context.Context, set *entityset.Set[T], entity domain.EntityType, id int) (T, error) {
	e, ok, err := findByID(ctx, set, id)
	if err != nil {
		return e, err
	}
	if !ok {
		return e, domain.NotFoundError{Entity: entity, ID: id}
	}
	return e, nil
}

// findActive is findExisting with soft-deleted rows treated as absent.
func findActive[T domain.Record](ctx context.Context, set *entityset.Set[T], entity domain.EntityType, id int) (T, error) {
	e, err := findExisting(ctx, set, entity, id)
	if err != nil {
		return e, err
	}
	if e.Deleted() {
		var zero T
		return zero, domain.NotFoundError{Entity: entity, ID: id}
	}
	return e, nil
}

// ensureCodeFree fails with a conflict when a non-deleted row other than
// except already uses code.
func ensureCodeFree[T domain.Record](ctx context.Context, set *entityset.Set[T], entity domain.EntityType, code string, except int) error {
	taken, err := set.Query().Where(func(e T) bool {
		return !e.Deleted() && e.Identity() != except && e.UniqueCode() == code
	}).Any(ctx)
	if err != nil {
		return err
	}
	if taken {
		return domain.ConflictError{Entity: entity, ID: except, Reason: fmt.Sprintf("code %q is already in use", code)}
	}
	return nil
}

func byID[T domain.Record](set *entityset.Set[T]) entityset.Query[T] {
	return entityset.OrderBy(set.Query(), func(e T) int { return e.Identity() })
}

func checkPage(start, amount int) error {
	if start < 0 || amount < 0 {
		return fmt.Errorf("%w: start=%d amount=%d", domain.ErrInvalidArgument, start, amount)
	}
	return nil
}

// insert stamps a new row built from req, gives it the next identity and
// appends it to set.
func insert[T domain.Record, R any](ctx context.Context, i *instrumentation, set *entityset.Set[T], entity domain.EntityType, req R, code string, fresh func(id int) T) (T, error) {
	var zero T
	if err := ensureCodeFree(ctx, set, entity, code, 0); err != nil {
		return zero, err
	}
	e := fresh(set.NextID())
	if err := mapping.Apply(i.mapper, req, e); err != nil {
		return zero, err
	}
	e.Touch(i.now())
	if _, err := set.Add(e); err != nil {
		return zero, err
	}
	return e, nil
}

// modify overwrites the mutable fields of row id with req.
func modify[T domain.Record, R any](ctx context.Context, i *instrumentation, set *entityset.Set[T], entity domain.EntityType, id int, req R, code string) (T, error) {
	e, err := findExisting(ctx, set, entity, id)
	if err != nil {
		return e, err
	}
	if err := ensureCodeFree(ctx, set, entity, code, id); err != nil {
		return e, err
	}
	if err := mapping.Apply(i.mapper, req, e); err != nil {
		return e, err
	}
	e.Touch(i.now())
	return e, nil
}

// changeStatus sets the soft-delete flag. Setting the flag it already has
// changes nothing, not even the modification stamp.
func changeStatus[T domain.Record](ctx context.Context, i *instrumentation, set *entityset.Set[T], entity domain.EntityType, id int, deleted bool) (T, error) {
	e, err := findExisting(ctx, set, entity, id)
	if err != nil {
		return e, err
	}
	if e.Deleted() != deleted {
		e.MarkDeleted(deleted)
		e.Touch(i.now())
	}
	return e, nil
}

// purge removes a soft-deleted row. guard may veto the removal.
func purge[T domain.Record](ctx context.Context, set *entityset.Set[T], entity domain.EntityType, id int, guard func(T) error) (T, error) {
	e, err := findExisting(ctx, set, entity, id)
	if err != nil {
		return e, err
	}
	if !e.Deleted() {
		return e, domain.ConflictError{Entity: entity, ID: id, Reason: "must be soft-deleted before removal"}
	}
	if guard != nil {
		if err := guard(e); err != nil {
			return e, err
		}
	}
	set.Remove(e)
	return e, nil
}

// ownerExists fails with NotFound when no non-deleted owner row has id.
func ownerExists[T domain.Record](ctx context.Context, set *entityset.Set[T], entity domain.EntityType, id int) error {
	_, err := findActive(ctx, set, entity, id)
	return err
}
