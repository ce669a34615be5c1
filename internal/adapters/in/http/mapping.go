package http

import (
	"errors"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/item"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/generated/servers"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

func toKernelID(id openapi_types.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromBytes(id[:])
}

func toOrder(body servers.NewOrder) (order.Details, []item.Request, error) {
	orderDelivery, err := toDelivery(body.Delivery)
	if err != nil {
		return order.Details{}, nil, err
	}

	details := order.Details{
		Type:                  order.Type(body.Type),
		UserName:              body.UserName,
		Reference:             deref(body.Reference),
		Remark:                deref(body.Remark),
		Packaging:             order.Packaging(deref(body.Packaging)),
		Priority:              order.Priority(deref(body.Priority)),
		StatusNotification:    order.StatusNotification(deref(body.StatusNotification)),
		DeleteDownloadedFiles: deref(body.DeleteDownloadedFiles),
		Options:               derefMap(body.Options),
		Delivery:              orderDelivery,
	}

	requests := make([]item.Request, 0, len(body.Items))
	var itemErrs []error
	for _, it := range body.Items {
		itemDelivery, err := toDelivery(it.Delivery)
		if err != nil {
			itemErrs = append(itemErrs, err)
			continue
		}
		requests = append(requests, item.Request{
			ItemID:         it.ItemId,
			Identifier:     deref(it.Identifier),
			Collection:     it.Collection,
			Remark:         deref(it.Remark),
			Options:        derefMap(it.Options),
			SceneSelection: derefMap(it.SceneSelection),
			Delivery:       itemDelivery,
		})
	}
	if err = errors.Join(itemErrs...); err != nil {
		return order.Details{}, nil, err
	}
	return details, requests, nil
}

func toDelivery(d *servers.Delivery) (*delivery.Option, error) {
	if d == nil {
		return nil, nil
	}
	t, err := delivery.ParseType(string(d.Type))
	if err != nil {
		return nil, err
	}
	opt, err := delivery.RestoreOption(t, deref(d.Protocol), deref(d.Medium), deref(d.ShippingInstructions), delivery.Extras{
		Copies:              deref(d.Copies),
		Annotation:          deref(d.Annotation),
		SpecialInstructions: deref(d.SpecialInstructions),
	})
	if err != nil {
		return nil, err
	}
	return &opt, nil
}

func fromOrderStatus(s *queries.GetOrderStatusQueryResponse) servers.OrderStatus {
	out := servers.OrderStatus{
		Id:                   s.ID.Bytes(),
		Type:                 s.Type,
		Status:               s.Status,
		AdditionalStatusInfo: optional(s.AdditionalStatusInfo),
		StatusChangedOn:      s.StatusChangedOn,
		CompletedOn:          s.CompletedOn,
		Batches:              make([]servers.BatchStatus, 0, len(s.Batches)),
	}
	for _, b := range s.Batches {
		batch := servers.BatchStatus{
			Id:          b.ID.Bytes(),
			Kind:        b.Kind,
			Timeslot:    b.Timeslot,
			Status:      b.Status,
			CompletedOn: b.CompletedOn,
			Items:       make([]servers.ItemStatus, 0, len(b.Items)),
		}
		for _, it := range b.Items {
			batch.Items = append(batch.Items, servers.ItemStatus{
				Id:                   it.ID.Bytes(),
				ItemId:               it.ItemID,
				Identifier:           optional(it.Identifier),
				Collection:           it.Collection,
				Status:               it.Status,
				AdditionalStatusInfo: optional(it.AdditionalStatusInfo),
				Url:                  optional(it.URL),
				ExpiresOn:            it.ExpiresOn,
				Available:            it.Available,
			})
		}
		out.Batches = append(out.Batches, batch)
	}
	return out
}

func fromCompletedFiles(r *queries.GetCompletedFilesQueryResponse) servers.CompletedFiles {
	out := servers.CompletedFiles{
		PreviousAccess: r.PreviousAccess,
		Files:          make([]servers.CompletedFile, 0, len(r.Files)),
	}
	for _, f := range r.Files {
		file := servers.CompletedFile{
			FileId:    f.FileID.Bytes(),
			Url:       f.URL,
			ExpiresOn: f.ExpiresOn,
			Packaged:  f.Packaged,
			Items:     make([]servers.CompletedItem, 0, len(f.Items)),
		}
		for _, it := range f.Items {
			file.Items = append(file.Items, servers.CompletedItem{
				Id:         it.ID.Bytes(),
				ItemId:     it.ItemID,
				Identifier: optional(it.Identifier),
			})
		}
		out.Files = append(out.Files, file)
	}
	return out
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func derefMap(m *map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	return *m
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
