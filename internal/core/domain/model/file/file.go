// Package file provides the File entity: an artifact produced for one order
// item, or a package shared by every item of a batch.
package file

import (
	"errors"
	"slices"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	// ErrFileIsNotConstructed is returned when a File was not created through
	// one of its constructors.
	ErrFileIsNotConstructed = errors.New("File must be created via NewItemFile or NewPackage constructor")

	ErrURLIsRequired     = errs.NewValueIsRequiredError("url")
	ErrOwnersAreRequired = errs.NewValueIsRequiredError("order item ids")
	ErrFileUnavailable   = errors.New("file is no longer available")
)

// State is the mutable, persisted part of a file.
type State struct {
	CreatedOn        time.Time
	ExpiresOn        time.Time
	LastDownloadedAt *time.Time
	Available        bool
	Downloads        int
}

// File is a produced artifact. Availability only ever flips from true to
// false; a removed file is never resurrected.
type File struct {
	id       kernel.UUID
	batchID  kernel.UUID
	itemIDs  []kernel.UUID
	url      string
	packaged bool
	state    State
	guard    guard.ConstructorGuard
}

// NewItemFile creates an available file owned by a single order item.
func NewItemFile(id, batchID, itemID kernel.UUID, url string, expiresOn, now time.Time) (*File, error) {
	return RestoreFile(id, batchID, []kernel.UUID{itemID}, url, false, State{
		CreatedOn: now,
		ExpiresOn: expiresOn,
		Available: true,
	})
}

// NewPackage creates an available file shared by all of the given items, so
// that one location is returned however many items requested it.
func NewPackage(id, batchID kernel.UUID, itemIDs []kernel.UUID, url string, expiresOn, now time.Time) (*File, error) {
	return RestoreFile(id, batchID, itemIDs, url, true, State{
		CreatedOn: now,
		ExpiresOn: expiresOn,
		Available: true,
	})
}

func RestoreFile(id, batchID kernel.UUID, itemIDs []kernel.UUID, url string, packaged bool, state State) (*File, error) {
	var urlErr, ownersErr error
	if strings.TrimSpace(url) == "" {
		urlErr = ErrURLIsRequired
	}
	if len(itemIDs) == 0 {
		ownersErr = ErrOwnersAreRequired
	}
	ownerErrs := make([]error, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		ownerErrs = append(ownerErrs, itemID.Validate())
	}

	if err := errors.Join(
		id.Validate(),
		batchID.Validate(),
		urlErr,
		ownersErr,
		errors.Join(ownerErrs...),
	); err != nil {
		return nil, err
	}

	return &File{
		id:       id,
		batchID:  batchID,
		itemIDs:  slices.Clone(itemIDs),
		url:      url,
		packaged: packaged,
		state:    state,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (f *File) Validate() error {
	if f == nil {
		return ErrFileIsNotConstructed
	}
	return f.guard.Validate(ErrFileIsNotConstructed)
}

func (f *File) ID() kernel.UUID { return f.id }
func (f *File) BatchID() kernel.UUID { return f.batchID }
func (f *File) ItemIDs() []kernel.UUID { return slices.Clone(f.itemIDs) }
func (f *File) URL() string { return f.url }
func (f *File) IsPackage() bool { return f.packaged }
func (f *File) State() State { return f.state }
func (f *File) Available() bool { return f.state.Available }
func (f *File) ExpiresOn() time.Time { return f.state.ExpiresOn }
func (f *File) Downloads() int { return f.state.Downloads }

// BelongsTo reports whether the file serves the given order item.
func (f *File) BelongsTo(itemID kernel.UUID) bool {
	return slices.ContainsFunc(f.itemIDs, itemID.IsEqual)
}

// IsExpired reports whether the availability window is over.
func (f *File) IsExpired(now time.Time) bool {
	return now.After(f.state.ExpiresOn)
}

// RegisterDownload counts a download of an available file.
func (f *File) RegisterDownload(now time.Time) error {
	if !f.state.Available {
		return ErrFileUnavailable
	}
	f.state.Downloads++
	f.state.LastDownloadedAt = &now
	return nil
}

// MarkUnavailable records that the file was removed from storage.
func (f *File) MarkUnavailable() {
	f.state.Available = false
}
