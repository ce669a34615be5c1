package order_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func productDetails() order.Details {
	return order.Details{
		Type:               order.ProductOrder,
		UserName:           "jdoe",
		Packaging:          order.PackagingNone,
		Priority:           order.PriorityStandard,
		StatusNotification: order.NotifyFinal,
	}
}

func newSubmittedOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), productDetails(), now)
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("should create submitted order", func(t *testing.T) {
		id := kernel.NewUUID()
		opt, _ := delivery.NewOnlineDataAccess("http", delivery.Extras{})
		details := productDetails()
		details.Delivery = &opt

		o, err := order.NewOrder(id, details, now)

		require.NoError(t, err)
		require.NoError(t, o.Validate())
		assert.True(t, o.ID().IsEqual(id))
		assert.Equal(t, kernel.Submitted, o.Status())
		assert.Equal(t, now, o.State().StatusChangedOn)
		assert.Nil(t, o.CompletedOn())
		got, ok := o.DeliveryOption()
		assert.True(t, ok)
		assert.Equal(t, "http", got.Protocol())
	})

	t.Run("should default priority and notification", func(t *testing.T) {
		details := productDetails()
		details.Priority = ""
		details.StatusNotification = ""

		o, err := order.NewOrder(kernel.NewUUID(), details, now)

		require.NoError(t, err)
		assert.Equal(t, order.PriorityStandard, o.Details().Priority)
		assert.Equal(t, order.NotifyNone, o.Details().StatusNotification)
	})

	t.Run("should join every validation error", func(t *testing.T) {
		var invalidID kernel.UUID
		details := productDetails()
		details.Type = "BULK_ORDER"
		details.Packaging = "tar"
		details.UserName = " "

		o, err := order.NewOrder(invalidID, details, now)

		require.Error(t, err)
		assert.Nil(t, o)
		assert.Contains(t, err.Error(), "UUID must be created")
		assert.Contains(t, err.Error(), "order type is invalid")
		assert.Contains(t, err.Error(), "packaging is invalid")
		assert.ErrorIs(t, err, order.ErrUserNameIsRequired)
	})

	t.Run("should fail validation for nil order", func(t *testing.T) {
		var o *order.Order

		assert.Equal(t, order.ErrOrderIsNotConstructed, o.Validate())
	})
}

func TestOrder_Moderation(t *testing.T) {
	t.Run("approve is idempotent", func(t *testing.T) {
		o := newSubmittedOrder(t)

		changed, err := o.Approve(now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, kernel.Accepted, o.Status())

		changed, err = o.Approve(now.Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, now, o.State().StatusChangedOn)
	})

	t.Run("reject is idempotent and records the reason", func(t *testing.T) {
		o := newSubmittedOrder(t)

		changed, err := o.Reject("out of quota", now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, kernel.Cancelled, o.Status())
		assert.Equal(t, "out of quota", o.AdditionalStatusInfo())

		changed, err = o.Reject("again", now)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, "out of quota", o.AdditionalStatusInfo())
	})

	t.Run("opposite decisions conflict", func(t *testing.T) {
		approved := newSubmittedOrder(t)
		_, _ = approved.Approve(now)
		_, err := approved.Reject("late", now)
		require.ErrorIs(t, err, errs.ErrConflict)

		rejected := newSubmittedOrder(t)
		_, _ = rejected.Reject("no", now)
		_, err = rejected.Approve(now)
		require.ErrorIs(t, err, errs.ErrConflict)
		assert.Equal(t, kernel.Cancelled, rejected.Status())
	})
}

func TestOrder_StartProduction(t *testing.T) {
	t.Run("should require approval", func(t *testing.T) {
		o := newSubmittedOrder(t)

		require.ErrorIs(t, o.StartProduction(now), errs.ErrConflict)
	})

	t.Run("should move accepted order in production", func(t *testing.T) {
		o := newSubmittedOrder(t)
		_, _ = o.Approve(now)

		require.NoError(t, o.StartProduction(now))

		assert.Equal(t, kernel.InProduction, o.Status())
		assert.Equal(t, order.InfoBeingProcessed, o.AdditionalStatusInfo())
	})
}

func TestOrder_ApplyRollup(t *testing.T) {
	inProduction := func(t *testing.T) *order.Order {
		o := newSubmittedOrder(t)
		_, _ = o.Approve(now)
		require.NoError(t, o.StartProduction(now))
		return o
	}

	t.Run("completion stamps time and clears info", func(t *testing.T) {
		o := inProduction(t)
		later := now.Add(time.Hour)

		notify, err := o.ApplyRollup(kernel.Completed, nil, later)

		require.NoError(t, err)
		assert.True(t, notify)
		assert.Equal(t, kernel.Completed, o.Status())
		require.NotNil(t, o.CompletedOn())
		assert.Equal(t, later, *o.CompletedOn())
		assert.Empty(t, o.AdditionalStatusInfo())
	})

	t.Run("recomputing unchanged status does not notify twice", func(t *testing.T) {
		o := inProduction(t)

		first, _ := o.ApplyRollup(kernel.Completed, nil, now)
		second, _ := o.ApplyRollup(kernel.Completed, nil, now.Add(time.Minute))

		assert.True(t, first)
		assert.False(t, second)
	})

	t.Run("failure aggregates item reports", func(t *testing.T) {
		o := inProduction(t)
		a, b := kernel.NewUUID(), kernel.NewUUID()
		failures := []order.ItemFailure{{ItemID: a, Info: "no scenes"}, {ItemID: b, Info: "timeout"}}

		notify, err := o.ApplyRollup(kernel.Failed, failures, now)

		require.NoError(t, err)
		assert.True(t, notify)
		assert.Equal(t,
			"Order "+o.ID().String()+" has failed.\n\t* Order item "+a.String()+": no scenes\n\t* Order item "+b.String()+": timeout",
			o.AdditionalStatusInfo())

		again, _ := o.ApplyRollup(kernel.Failed, failures, now)
		assert.False(t, again)

		changedReport, _ := o.ApplyRollup(kernel.Failed, failures[:1], now)
		assert.True(t, changedReport)
	})

	t.Run("failed order may recover after retry", func(t *testing.T) {
		o := inProduction(t)
		_, _ = o.ApplyRollup(kernel.Failed, []order.ItemFailure{{ItemID: kernel.NewUUID(), Info: "x"}}, now)

		notify, err := o.ApplyRollup(kernel.InProduction, nil, now)

		require.NoError(t, err)
		assert.True(t, notify)
		assert.Equal(t, kernel.InProduction, o.Status())
		assert.Empty(t, o.AdditionalStatusInfo())
	})

	t.Run("rejects invalid status", func(t *testing.T) {
		o := inProduction(t)

		_, err := o.ApplyRollup(kernel.Unknown, nil, now)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestOrder_Fail(t *testing.T) {
	t.Run("should report a change only once per reason", func(t *testing.T) {
		o := newSubmittedOrder(t)
		_, _ = o.Approve(now)
		require.NoError(t, o.StartProduction(now))

		assert.True(t, o.Fail("packaging failed", now))
		assert.False(t, o.Fail("packaging failed", now.Add(time.Hour)))
		assert.True(t, o.Fail("disk full", now.Add(time.Hour)))

		assert.Equal(t, kernel.Failed, o.Status())
		assert.Equal(t, "disk full", o.AdditionalStatusInfo())
	})
}

func TestOrder_AdvanceResultAccess(t *testing.T) {
	o := newSubmittedOrder(t)

	assert.Nil(t, o.AdvanceResultAccess(now))
	previous := o.AdvanceResultAccess(now.Add(time.Hour))

	require.NotNil(t, previous)
	assert.Equal(t, now, *previous)
	assert.Equal(t, now.Add(time.Hour), *o.LastDescribeResultAccess())
}
