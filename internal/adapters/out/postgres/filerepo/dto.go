// Package filerepo persists produced files and the order items they serve.
package filerepo

import (
	"time"

	"fulfillment/internal/adapters/out/postgres/columns"
	"fulfillment/internal/core/domain/model/file"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// FileDTO is the row of one file. A packaged file has one owner row per
// item it serves.
type FileDTO struct {
	ID               uuid.UUID `gorm:"type:char(36);primaryKey"`
	BatchID          uuid.UUID `gorm:"type:char(36);index"`
	Position         int
	URL              string `gorm:"type:text"`
	Packaged         bool
	Available        bool
	Downloads        int
	ExpiresOn        time.Time
	LastDownloadedAt *time.Time
	CreatedOn        time.Time
	Owners           []FileOwnerDTO `gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE"`
}

func (FileDTO) TableName() string {
	return "files"
}

// FileOwnerDTO links a file to one order item.
type FileOwnerDTO struct {
	FileID   uuid.UUID `gorm:"type:char(36);primaryKey"`
	ItemID   uuid.UUID `gorm:"type:char(36);primaryKey;index"`
	Position int
}

func (FileOwnerDTO) TableName() string {
	return "file_owners"
}

func fromDomain(f *file.File, position int) FileDTO {
	state := f.State()
	itemIDs := f.ItemIDs()

	owners := make([]FileOwnerDTO, 0, len(itemIDs))
	for i, itemID := range itemIDs {
		owners = append(owners, FileOwnerDTO{
			FileID:   f.ID().Bytes(),
			ItemID:   itemID.Bytes(),
			Position: i,
		})
	}

	return FileDTO{
		ID:               f.ID().Bytes(),
		BatchID:          f.BatchID().Bytes(),
		Position:         position,
		URL:              f.URL(),
		Packaged:         f.IsPackage(),
		Available:        state.Available,
		Downloads:        state.Downloads,
		ExpiresOn:        state.ExpiresOn,
		LastDownloadedAt: state.LastDownloadedAt,
		CreatedOn:        state.CreatedOn,
		Owners:           owners,
	}
}

func toDomain(dto FileDTO) (*file.File, error) {
	id, err := columns.ID(dto.ID)
	if err != nil {
		return nil, err
	}
	batchID, err := columns.ID(dto.BatchID)
	if err != nil {
		return nil, err
	}

	itemIDs := make([]kernel.UUID, 0, len(dto.Owners))
	for _, owner := range dto.Owners {
		itemID, err := columns.ID(owner.ItemID)
		if err != nil {
			return nil, err
		}
		itemIDs = append(itemIDs, itemID)
	}

	return file.RestoreFile(id, batchID, itemIDs, dto.URL, dto.Packaged, file.State{
		CreatedOn:        dto.CreatedOn,
		ExpiresOn:        dto.ExpiresOn,
		LastDownloadedAt: dto.LastDownloadedAt,
		Available:        dto.Available,
		Downloads:        dto.Downloads,
	})
}
