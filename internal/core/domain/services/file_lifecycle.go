package services

import (
	"slices"
	"time"

	"fulfillment/internal/core/domain/model/file"
	"fulfillment/internal/core/domain/model/order"
)

// FileLifecycle decides when produced files expire and which of them may be
// removed from storage.
type FileLifecycle struct {
	settings FulfillmentSettings
}

func NewFileLifecycle(settings FulfillmentSettings) FileLifecycle {
	return FileLifecycle{settings: settings}
}

// ComputeExpiry returns the end of the availability window of a file
// produced now for an order of the given type.
func (l FileLifecycle) ComputeExpiry(orderType order.Type, now time.Time) time.Time {
	return now.Add(l.settings.ForType(orderType).AvailabilityWindow())
}

// IsDeletable reports whether a file may be removed: it has expired, or it
// has been downloaded and its owner asked for downloaded files to be deleted.
func (FileLifecycle) IsDeletable(f *file.File, deleteDownloaded bool, now time.Time) bool {
	if f.IsExpired(now) {
		return true
	}
	return f.Downloads() > 0 && deleteDownloaded
}

// SelectForDeletion returns the available files of a batch that should be
// removed. With allFiles set every available file qualifies, otherwise only
// deletable ones do.
func (l FileLifecycle) SelectForDeletion(files []*file.File, deleteDownloaded, allFiles bool, now time.Time) []*file.File {
	var selected []*file.File
	for _, f := range files {
		if !f.Available() {
			continue
		}
		if allFiles || l.IsDeletable(f, deleteDownloaded, now) {
			selected = append(selected, f)
		}
	}
	return selected
}

// UniqueURLs returns the distinct locations of files in first-seen order.
// Packaged files share a location across items.
func UniqueURLs(files []*file.File) []string {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		if !slices.Contains(urls, f.URL()) {
			urls = append(urls, f.URL())
		}
	}
	return urls
}
