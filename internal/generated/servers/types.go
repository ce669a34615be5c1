// Package servers holds the transport types, the server interface and the
// parameter binding of the control API described by api/openapi.yaml.
package servers

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Error defines model for Error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Created defines model for Created.
type Created struct {
	Id openapi_types.UUID `json:"id"`
}

// DeliveryType defines model for Delivery.Type.
type DeliveryType string

const (
	Onlinedataaccess   DeliveryType = "onlinedataaccess"
	Onlinedatadelivery DeliveryType = "onlinedatadelivery"
	Mediadelivery      DeliveryType = "mediadelivery"
)

// Delivery defines model for Delivery.
type Delivery struct {
	Type                 DeliveryType `json:"type"`
	Protocol             *string      `json:"protocol,omitempty"`
	Medium               *string      `json:"medium,omitempty"`
	ShippingInstructions *string      `json:"shippingInstructions,omitempty"`
	Copies               *int         `json:"copies,omitempty"`
	Annotation           *string      `json:"annotation,omitempty"`
	SpecialInstructions  *string      `json:"specialInstructions,omitempty"`
}

// NewOrderItem defines model for NewOrderItem.
type NewOrderItem struct {
	ItemId         string             `json:"itemId"`
	Identifier     *string            `json:"identifier,omitempty"`
	Collection     string             `json:"collection"`
	Remark         *string            `json:"remark,omitempty"`
	Options        *map[string]string `json:"options,omitempty"`
	SceneSelection *map[string]string `json:"sceneSelection,omitempty"`
	Delivery       *Delivery          `json:"delivery,omitempty"`
}

// NewOrder defines model for NewOrder.
type NewOrder struct {
	Type                  string             `json:"type"`
	UserName              string             `json:"userName"`
	Reference             *string            `json:"reference,omitempty"`
	Remark                *string            `json:"remark,omitempty"`
	Packaging             *string            `json:"packaging,omitempty"`
	Priority              *string            `json:"priority,omitempty"`
	StatusNotification    *string            `json:"statusNotification,omitempty"`
	DeleteDownloadedFiles *bool              `json:"deleteDownloadedFiles,omitempty"`
	Options               *map[string]string `json:"options,omitempty"`
	Delivery              *Delivery          `json:"delivery,omitempty"`
	Items                 []NewOrderItem     `json:"items"`
}

// Rejection defines model for Rejection.
type Rejection struct {
	Reason *string `json:"reason,omitempty"`
}

// NewSubscriptionBatch defines model for NewSubscriptionBatch.
type NewSubscriptionBatch struct {
	Timeslot    time.Time `json:"timeslot"`
	Collections []string  `json:"collections"`
}

// ItemStatus defines model for ItemStatus.
type ItemStatus struct {
	Id                   openapi_types.UUID `json:"id"`
	ItemId               string             `json:"itemId"`
	Identifier           *string            `json:"identifier,omitempty"`
	Collection           string             `json:"collection"`
	Status               string             `json:"status"`
	AdditionalStatusInfo *string            `json:"additionalStatusInfo,omitempty"`
	Url                  *string            `json:"url,omitempty"`
	ExpiresOn            *time.Time         `json:"expiresOn,omitempty"`
	Available            bool               `json:"available"`
}

// BatchStatus defines model for BatchStatus.
type BatchStatus struct {
	Id          openapi_types.UUID `json:"id"`
	Kind        string             `json:"kind"`
	Timeslot    *time.Time         `json:"timeslot,omitempty"`
	Status      string             `json:"status"`
	CompletedOn *time.Time         `json:"completedOn,omitempty"`
	Items       []ItemStatus       `json:"items"`
}

// OrderStatus defines model for OrderStatus.
type OrderStatus struct {
	Id                   openapi_types.UUID `json:"id"`
	Type                 string             `json:"type"`
	Status               string             `json:"status"`
	AdditionalStatusInfo *string            `json:"additionalStatusInfo,omitempty"`
	StatusChangedOn      time.Time          `json:"statusChangedOn"`
	CompletedOn          *time.Time         `json:"completedOn,omitempty"`
	Batches              []BatchStatus      `json:"batches"`
}

// CompletedItem defines model for CompletedItem.
type CompletedItem struct {
	Id         openapi_types.UUID `json:"id"`
	ItemId     string             `json:"itemId"`
	Identifier *string            `json:"identifier,omitempty"`
}

// CompletedFile defines model for CompletedFile.
type CompletedFile struct {
	FileId    openapi_types.UUID `json:"fileId"`
	Url       string             `json:"url"`
	ExpiresOn time.Time          `json:"expiresOn"`
	Packaged  bool               `json:"packaged"`
	Items     []CompletedItem    `json:"items"`
}

// CompletedFiles defines model for CompletedFiles.
type CompletedFiles struct {
	PreviousAccess *time.Time      `json:"previousAccess,omitempty"`
	Files          []CompletedFile `json:"files"`
}

// DeletedFiles defines model for DeletedFiles.
type DeletedFiles struct {
	Deleted int `json:"deleted"`
}

// GetOrderResultsParamsBehaviour defines parameters for GetOrderResults.
type GetOrderResultsParamsBehaviour string

const (
	AllReady  GetOrderResultsParamsBehaviour = "allReady"
	NextReady GetOrderResultsParamsBehaviour = "nextReady"
)

// GetOrderResultsParams defines parameters for GetOrderResults.
type GetOrderResultsParams struct {
	Behaviour *GetOrderResultsParamsBehaviour `form:"behaviour,omitempty" json:"behaviour,omitempty"`
}

// DeleteBatchFilesParams defines parameters for DeleteBatchFiles.
type DeleteBatchFilesParams struct {
	ExpiredOnly *bool `form:"expiredOnly,omitempty" json:"expiredOnly,omitempty"`
}

// SubmitOrderJSONRequestBody defines body for SubmitOrder for application/json ContentType.
type SubmitOrderJSONRequestBody = NewOrder

// RejectOrderJSONRequestBody defines body for RejectOrder for application/json ContentType.
type RejectOrderJSONRequestBody = Rejection

// CreateSubscriptionBatchJSONRequestBody defines body for CreateSubscriptionBatch for application/json ContentType.
type CreateSubscriptionBatchJSONRequestBody = NewSubscriptionBatch
