package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("should name the missing order", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("orderID", "7f0c")

		assert.Equal(t, "orderID", err.ParamName)
		assert.Equal(t, "object not found: 7f0c", err.Error())
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("should report the lookup parameter when a cause is attached", func(t *testing.T) {
		err := errs.NewObjectNotFoundErrorWithCause("fileID", "a1", errors.New("record not found"))

		assert.Equal(t,
			"object not found: param is: fileID, ID is: a1 (cause: record not found)",
			err.Error())
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("should survive wrapping by a repository", func(t *testing.T) {
		wrapped := fmt.Errorf("batch repository: %w", errs.NewObjectNotFoundError("batchID", "b9"))

		var target *errs.ObjectNotFoundError
		require.ErrorAs(t, wrapped, &target)
		assert.Equal(t, "b9", target.ID)
		require.ErrorIs(t, wrapped, errs.ErrObjectNotFound)
	})
}

func TestValueIsInvalidError(t *testing.T) {
	t.Run("should name the rejected value", func(t *testing.T) {
		err := errs.NewValueIsInvalidError("status")

		assert.Equal(t, "value is invalid: status", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.NotErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should append the cause", func(t *testing.T) {
		err := errs.NewValueIsInvalidErrorWithCause("deliveryOption", errors.New("unknown protocol"))

		assert.Equal(t, "value is invalid: deliveryOption (cause: unknown protocol)", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestValueIsRequiredError(t *testing.T) {
	t.Run("should name the missing value", func(t *testing.T) {
		err := errs.NewValueIsRequiredError("collection")

		assert.Equal(t, "value is required: collection", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.NotErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should append the cause", func(t *testing.T) {
		err := errs.NewValueIsRequiredErrorWithCause("timeslot", errors.New("subscription without window"))

		assert.Equal(t, "value is required: timeslot (cause: subscription without window)", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}
