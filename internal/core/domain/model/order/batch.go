package order

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// ErrBatchIsNotConstructed is returned when a Batch was not created through
// NewBatch or RestoreBatch.
var ErrBatchIsNotConstructed = errors.New("Batch must be created via NewBatch constructor")

// BatchKind tells the initial batch of an order apart from the batches a
// subscription accumulates, one per delivered timeslot.
type BatchKind string

const (
	// InitialBatch holds the items of the submitted request. For
	// subscription orders it is a template that is never produced.
	InitialBatch BatchKind = "initial"
	// TimeslotBatch is a subscription delivery for one timeslot.
	TimeslotBatch BatchKind = "timeslot"
)

func (k BatchKind) Validate() error {
	if k != InitialBatch && k != TimeslotBatch {
		return errs.NewValueIsInvalidErrorWithCause("batch kind is invalid", fmt.Errorf("%q is not a valid batch kind", string(k)))
	}
	return nil
}

// BatchState is the persisted, mutable part of a batch.
type BatchState struct {
	Status      kernel.Status
	CreatedOn   time.Time
	UpdatedOn   time.Time
	CompletedOn *time.Time

	// PackagingFailed is set when the completed batch could not be packaged.
	// The batch is never packaged again and no longer drives its order.
	PackagingFailed bool
}

// Batch is a unit of co-scheduled production within an order. Its status is
// the rollup of its items' statuses and is only changed by ApplyRollup.
type Batch struct {
	id       kernel.UUID
	orderID  kernel.UUID
	kind     BatchKind
	timeslot *time.Time
	state    BatchState
	guard    guard.ConstructorGuard
}

// NewBatch creates a submitted batch. Timeslot is only set for subscription
// deliveries.
func NewBatch(id, orderID kernel.UUID, kind BatchKind, timeslot *time.Time, now time.Time) (*Batch, error) {
	return RestoreBatch(id, orderID, kind, timeslot, BatchState{
		Status:    kernel.Submitted,
		CreatedOn: now,
		UpdatedOn: now,
	})
}

func RestoreBatch(id, orderID kernel.UUID, kind BatchKind, timeslot *time.Time, state BatchState) (*Batch, error) {
	var timeslotErr error
	if kind == TimeslotBatch && timeslot == nil {
		timeslotErr = errs.NewValueIsRequiredError("timeslot")
	}

	if err := errors.Join(
		id.Validate(),
		orderID.Validate(),
		kind.Validate(),
		state.Status.Validate(),
		timeslotErr,
	); err != nil {
		return nil, err
	}

	return &Batch{
		id:       id,
		orderID:  orderID,
		kind:     kind,
		timeslot: timeslot,
		state:    state,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (b *Batch) Validate() error {
	if b == nil {
		return ErrBatchIsNotConstructed
	}
	return b.guard.Validate(ErrBatchIsNotConstructed)
}

func (b *Batch) ID() kernel.UUID { return b.id }
func (b *Batch) OrderID() kernel.UUID { return b.orderID }
func (b *Batch) Kind() BatchKind { return b.kind }
func (b *Batch) Timeslot() *time.Time { return b.timeslot }
func (b *Batch) State() BatchState { return b.state }
func (b *Batch) Status() kernel.Status { return b.state.Status }
func (b *Batch) CompletedOn() *time.Time { return b.state.CompletedOn }
func (b *Batch) PackagingFailed() bool { return b.state.PackagingFailed }

// ApplyRollup records the status derived from the batch's items and reports
// whether it changed.
//
// Entering Completed, Failed or Terminated stamps the completion time,
// entering Downloaded keeps it and any other status clears it together with
// a packaging failure.
func (b *Batch) ApplyRollup(status kernel.Status, now time.Time) (bool, error) {
	if err := status.Validate(); err != nil {
		return false, err
	}
	if status == b.state.Status {
		return false, nil
	}

	switch status { //nolint:exhaustive // remaining statuses clear the completion time
	case kernel.Completed, kernel.Failed, kernel.Terminated:
		b.state.CompletedOn = &now
	case kernel.Downloaded:
	default:
		b.state.CompletedOn = nil
		b.state.PackagingFailed = false
	}
	b.state.Status = status
	b.state.UpdatedOn = now
	return true, nil
}

// MarkPackagingFailed records that the batch could not be packaged and
// reports whether it was not recorded before.
func (b *Batch) MarkPackagingFailed(now time.Time) bool {
	if b.state.PackagingFailed {
		return false
	}
	b.state.PackagingFailed = true
	b.state.UpdatedOn = now
	return true
}
