package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderStatusQueryHandler reads order status trees straight from the
// database, bypassing the domain model.
type GetOrderStatusQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderStatusQueryHandler(db *gorm.DB) GetOrderStatusQueryHandler {
	return GetOrderStatusQueryHandler{db: db}
}

// Handle returns the order's status tree, or an ObjectNotFoundError.
func (h GetOrderStatusQueryHandler) Handle(
	ctx context.Context,
	query GetOrderStatusQuery,
) (*GetOrderStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	db := h.db.WithContext(ctx)
	orderID := query.OrderID()

	resp := &GetOrderStatusQueryResponse{ID: orderID}
	err := db.Raw(`
		SELECT
			order_type,
			status,
			additional_status_info,
			status_changed_on,
			completed_on
		FROM orders
		WHERE id = ?
	`, orderID.Bytes()).Row().Scan(
		&resp.Type,
		&resp.Status,
		&resp.AdditionalStatusInfo,
		&resp.StatusChangedOn,
		&resp.CompletedOn,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NewObjectNotFoundError("order", orderID.String())
		}
		return nil, err
	}

	rows, err := db.Raw(`
		SELECT
			b.id,
			b.kind,
			b.timeslot,
			b.status,
			b.completed_on,
			i.id,
			i.item_id,
			i.identifier,
			i.collection,
			i.status,
			i.additional_status_info,
			i.url,
			i.expires_on,
			i.available
		FROM batches b
		LEFT JOIN order_items i ON i.batch_id = b.id
		WHERE b.order_id = ?
		ORDER BY b.created_on, b.id, i.created_on, i.position
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			batchID       uuid.UUID
			batch         BatchStatus
			itemRowID     *uuid.UUID
			itemID        sql.NullString
			identifier    sql.NullString
			collection    sql.NullString
			itemStatus    sql.NullString
			itemInfo      sql.NullString
			itemURL       sql.NullString
			itemExpiresOn *time.Time
			itemAvailable sql.NullBool
		)

		if err = rows.Scan(
			&batchID,
			&batch.Kind,
			&batch.Timeslot,
			&batch.Status,
			&batch.CompletedOn,
			&itemRowID,
			&itemID,
			&identifier,
			&collection,
			&itemStatus,
			&itemInfo,
			&itemURL,
			&itemExpiresOn,
			&itemAvailable,
		); err != nil {
			return nil, err
		}

		id, idErr := kernel.UUIDFromBytes(batchID[:])
		if idErr != nil {
			return nil, idErr
		}
		if n := len(resp.Batches); n == 0 || !resp.Batches[n-1].ID.IsEqual(id) {
			batch.ID = id
			resp.Batches = append(resp.Batches, batch)
		}

		if itemRowID == nil {
			continue
		}
		itemUUID, idErr := kernel.UUIDFromBytes(itemRowID[:])
		if idErr != nil {
			return nil, idErr
		}

		current := &resp.Batches[len(resp.Batches)-1]
		current.Items = append(current.Items, ItemStatus{
			ID:                   itemUUID,
			ItemID:               itemID.String,
			Identifier:           identifier.String,
			Collection:           collection.String,
			Status:               itemStatus.String,
			AdditionalStatusInfo: itemInfo.String,
			URL:                  itemURL.String,
			ExpiresOn:            itemExpiresOn,
			Available:            itemAvailable.Bool,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return resp, nil
}
