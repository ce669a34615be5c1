// Package orchestrator runs order item production on an in-process worker
// pool and joins the jobs of a batch before recomputing its status.
//
// Every dispatched batch gets a completion barrier counting its queued jobs.
// The worker that finishes the last job runs the fan-in, which is serialized
// per batch id so that concurrent completions never recompute from stale
// state. Failures of single items are recorded on the item by the job and
// never stop the pool.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/item"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
)

const tracerName = "fulfillment/orchestrator"

// ErrOrchestratorClosed is returned by dispatches after Shutdown started.
var ErrOrchestratorClosed = errors.New("orchestrator is shutting down")

// ItemProducer runs one item job.
type ItemProducer interface {
	Handle(ctx context.Context, command commands.ProcessOrderItemCommand) error
}

// StatusUpdater runs the fan-in of one batch.
type StatusUpdater interface {
	Handle(ctx context.Context, command commands.UpdateOrderStatusCommand) (commands.UpdateOrderStatusResult, error)
}

// Config sizes the worker pool.
type Config struct {
	// Workers is the number of concurrent item jobs.
	Workers int
	// QueueSize bounds the jobs waiting for a worker. Dispatch blocks while
	// the queue is full.
	QueueSize int
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	return c
}

// job is one queued item production.
type job struct {
	itemID kernel.UUID
	run    *batchRun
}

// batchRun is the completion barrier of one dispatch.
type batchRun struct {
	batchID kernel.UUID
	pending *atomic.Int64
	failed  *atomic.Int64
}

// Orchestrator implements ports.BatchDispatcher.
type Orchestrator struct {
	uowFactory ports.UnitOfWorkFactory
	producer   ItemProducer
	updater    StatusUpdater
	admission  services.CollectionAdmission
	cfg        Config

	queue      chan job
	shutdownCh chan struct{}
	closing    *atomic.Bool
	// enqueueMu keeps Shutdown from closing the pool while a dispatch is
	// still sending.
	enqueueMu sync.RWMutex
	locks     *keyedMutex
	wg        sync.WaitGroup

	tracer trace.Tracer
	logger *slog.Logger
}

var _ ports.BatchDispatcher = (*Orchestrator)(nil)

func New(
	uowFactory ports.UnitOfWorkFactory,
	producer ItemProducer,
	updater StatusUpdater,
	settings services.FulfillmentSettings,
	cfg Config,
	logger *slog.Logger,
) *Orchestrator {
	cfg = cfg.withDefaults()
	return &Orchestrator{
		uowFactory: uowFactory,
		producer:   producer,
		updater:    updater,
		admission:  services.NewCollectionAdmission(settings),
		cfg:        cfg,
		queue:      make(chan job, cfg.QueueSize),
		shutdownCh: make(chan struct{}),
		closing:    atomic.NewBool(false),
		locks:      newKeyedMutex(),
		tracer:     otel.Tracer(tracerName),
		logger:     logger.With("component", "orchestrator"),
	}
}

// Start launches the workers. Jobs run with ctx's values but are never
// cancelled by it: an in-flight production call always runs to completion.
func (o *Orchestrator) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	o.logger.InfoContext(ctx, "starting workers", "workers", o.cfg.Workers, "queue_size", o.cfg.QueueSize)

	for i := range o.cfg.Workers {
		o.wg.Add(1)
		go o.loop(ctx, i)
	}
}

// Shutdown stops accepting dispatches, lets the workers drain the queue and
// waits for them until ctx is done.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	if o.closing.CAS(false, true) {
		o.enqueueMu.Lock()
		close(o.shutdownCh)
		o.enqueueMu.Unlock()
		o.logger.InfoContext(ctx, "shutdown signal sent")
	}

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		o.logger.InfoContext(ctx, "all workers exited")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// QueueDepth is the number of jobs waiting for a worker.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// DispatchBatch queues one job per submitted item of the batch. Initial
// batches are admitted first: a subscription listing a collection twice
// rejects the whole batch and nothing is queued. Timeslot batches were
// admitted on their requested collections when they were created and may
// hold several products of one collection. A batch without pending items is
// recomputed right away.
func (o *Orchestrator) DispatchBatch(ctx context.Context, batchID kernel.UUID) error {
	if o.closing.Load() {
		return ErrOrchestratorClosed
	}

	items, err := o.admit(ctx, batchID)
	if err != nil {
		return err
	}

	pending := make([]kernel.UUID, 0, len(items))
	for _, it := range items {
		if it.Status() == kernel.Submitted {
			pending = append(pending, it.ID())
		}
	}
	if len(pending) == 0 {
		return o.RecomputeBatch(ctx, batchID)
	}

	return o.enqueue(ctx, batchID, pending)
}

// DispatchItems queues jobs for selected items of a batch, e.g. a retried item.
func (o *Orchestrator) DispatchItems(ctx context.Context, batchID kernel.UUID, itemIDs []kernel.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return o.enqueue(ctx, batchID, itemIDs)
}

// RecomputeBatch runs the fan-in of a batch synchronously.
func (o *Orchestrator) RecomputeBatch(ctx context.Context, batchID kernel.UUID) error {
	_, err := o.fanIn(ctx, batchID)
	return err
}

func (o *Orchestrator) admit(ctx context.Context, batchID kernel.UUID) ([]*item.OrderItem, error) {
	uow := o.uowFactory.Create()

	b, err := uow.BatchRepository().Get(ctx, batchID)
	if err != nil {
		return nil, err
	}
	ord, err := uow.OrderRepository().Get(ctx, b.OrderID())
	if err != nil {
		return nil, err
	}
	items, err := uow.OrderItemRepository().ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	if b.Kind() == order.InitialBatch {
		requests := make([]item.Request, 0, len(items))
		for _, it := range items {
			requests = append(requests, it.Request())
		}
		if err := o.admission.Admit(ord.Type(), requests); err != nil {
			o.logger.WarnContext(ctx, "batch rejected before scheduling",
				"batch_id", batchID.String(), "error", err)
			return nil, err
		}
	}
	return items, nil
}

// enqueue puts the jobs of one run on the queue. Jobs that could not be
// queued are taken off the barrier, and if that releases it the fan-in runs
// here.
func (o *Orchestrator) enqueue(ctx context.Context, batchID kernel.UUID, itemIDs []kernel.UUID) error {
	o.enqueueMu.RLock()
	if o.closing.Load() {
		o.enqueueMu.RUnlock()
		return ErrOrchestratorClosed
	}

	run := &batchRun{
		batchID: batchID,
		pending: atomic.NewInt64(int64(len(itemIDs))),
		failed:  atomic.NewInt64(0),
	}

	queued := 0
	var enqueueErr error
	for _, id := range itemIDs {
		select {
		case o.queue <- job{itemID: id, run: run}:
			queued++
			continue
		case <-ctx.Done():
			enqueueErr = ctx.Err()
		}
		break
	}
	o.enqueueMu.RUnlock()

	o.logger.DebugContext(ctx, "batch jobs queued",
		"batch_id", batchID.String(), "queued", queued, "requested", len(itemIDs))

	if enqueueErr == nil {
		return nil
	}

	missing := int64(len(itemIDs) - queued)
	if run.pending.Sub(missing) == 0 && queued > 0 {
		if _, err := o.fanIn(context.WithoutCancel(ctx), batchID); err != nil {
			enqueueErr = errors.Join(enqueueErr, err)
		}
	}
	return enqueueErr
}

// loop is one worker. After the shutdown signal it drains the queue before
// exiting.
func (o *Orchestrator) loop(ctx context.Context, workerID int) {
	defer o.wg.Done()

	for {
		select {
		case j := <-o.queue:
			o.process(ctx, j, workerID)
		case <-o.shutdownCh:
			drained := 0
			for {
				select {
				case j := <-o.queue:
					o.process(ctx, j, workerID)
					drained++
				default:
					o.logger.DebugContext(ctx, "worker exiting", "worker_id", workerID, "drained", drained)
					return
				}
			}
		}
	}
}

// process runs one item job and, when it is the last of its run, the fan-in.
func (o *Orchestrator) process(ctx context.Context, j job, workerID int) {
	start := time.Now()
	jobCtx, span := o.tracer.Start(ctx, "orchestrator.item_job", trace.WithAttributes(
		itemAttributes(j.run.batchID, j.itemID)...,
	))

	cmd, err := commands.NewProcessOrderItemCommand(j.itemID)
	if err == nil {
		err = o.producer.Handle(jobCtx, cmd)
	}
	if err != nil {
		j.run.failed.Inc()
		recordError(span, err)
		o.logger.WarnContext(jobCtx, "item job failed",
			"worker_id", workerID, "batch_id", j.run.batchID.String(), "item_id", j.itemID.String(), "error", err)
	}
	span.End()

	o.logger.DebugContext(jobCtx, "item job finished",
		"worker_id", workerID, "item_id", j.itemID.String(), "duration", time.Since(start))

	if j.run.pending.Dec() > 0 {
		return
	}
	if _, err := o.fanIn(ctx, j.run.batchID); err != nil {
		o.logger.ErrorContext(ctx, "fan-in failed",
			"batch_id", j.run.batchID.String(), "failed_items", j.run.failed.Load(), "error", err)
	}
}

// fanIn recomputes a batch and its order. At most one fan-in per batch runs
// at a time.
func (o *Orchestrator) fanIn(ctx context.Context, batchID kernel.UUID) (commands.UpdateOrderStatusResult, error) {
	unlock := o.locks.Lock(batchID)
	defer unlock()

	ctx, span := o.tracer.Start(ctx, "orchestrator.fan_in", trace.WithAttributes(batchAttributes(batchID)...))
	defer span.End()

	cmd, err := commands.NewUpdateOrderStatusCommand(batchID)
	if err != nil {
		return commands.UpdateOrderStatusResult{}, err
	}

	result, err := o.updater.Handle(ctx, cmd)
	if err != nil {
		recordError(span, err)
		return result, err
	}

	span.SetAttributes(statusAttributes(result)...)
	o.logger.InfoContext(ctx, "batch recomputed",
		"batch_id", batchID.String(),
		"batch_status", result.BatchStatus.String(),
		"order_status", result.OrderStatus.String(),
		"notified", result.Notified)
	return result, nil
}
