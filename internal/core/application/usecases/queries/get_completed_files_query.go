package queries

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrGetCompletedFilesQueryIsNotConstructed = errors.New(
	"GetCompletedFilesQuery must be created via NewGetCompletedFilesQuery constructor",
)

// ResultBehaviour selects which completed files a result request returns.
type ResultBehaviour string

const (
	// AllReady returns every available file of the order.
	AllReady ResultBehaviour = "allReady"
	// NextReady returns only files of items completed since the previous
	// result request.
	NextReady ResultBehaviour = "nextReady"
)

// ParseResultBehaviour defaults an empty value to AllReady.
func ParseResultBehaviour(s string) (ResultBehaviour, error) {
	switch ResultBehaviour(s) {
	case "", AllReady:
		return AllReady, nil
	case NextReady:
		return NextReady, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("behaviour", fmt.Errorf("%q is neither allReady nor nextReady", s))
	}
}

// GetCompletedFilesQuery lists the downloadable results of an order. Unlike
// other queries it writes: every request moves the order's result access
// watermark to the current time.
type GetCompletedFilesQuery struct {
	orderID   kernel.UUID
	behaviour ResultBehaviour

	guard guard.ConstructorGuard
}

func NewGetCompletedFilesQuery(orderID kernel.UUID, behaviour ResultBehaviour) (GetCompletedFilesQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetCompletedFilesQuery{}, err
	}
	if _, err := ParseResultBehaviour(string(behaviour)); err != nil {
		return GetCompletedFilesQuery{}, err
	}
	if behaviour == "" {
		behaviour = AllReady
	}

	return GetCompletedFilesQuery{
		orderID:   orderID,
		behaviour: behaviour,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (q GetCompletedFilesQuery) Validate() error {
	return q.guard.Validate(ErrGetCompletedFilesQueryIsNotConstructed)
}

func (q GetCompletedFilesQuery) OrderID() kernel.UUID        { return q.orderID }
func (q GetCompletedFilesQuery) Behaviour() ResultBehaviour { return q.behaviour }

// CompletedFile is one downloadable result and the items it serves.
type CompletedFile struct {
	FileID    kernel.UUID
	URL       string
	ExpiresOn time.Time
	Packaged  bool
	Items     []CompletedItem
}

type CompletedItem struct {
	ID         kernel.UUID
	ItemID     string
	Identifier string
}

// GetCompletedFilesQueryResponse carries the files and the watermark that
// was in effect before this request.
type GetCompletedFilesQueryResponse struct {
	Files          []CompletedFile
	PreviousAccess *time.Time
}
