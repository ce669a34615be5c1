package filerepo

import (
	"context"
	"errors"

	"fulfillment/internal/adapters/out/postgres/columns"
	"fulfillment/internal/core/domain/model/file"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFileRepository implements FileRepository using GORM.
type GormFileRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormFileRepository(db *gorm.DB, tracker aggregateTracker) *GormFileRepository {
	return &GormFileRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts the files together with their owner rows.
func (r *GormFileRepository) Add(ctx context.Context, files ...*file.File) error {
	if len(files) == 0 {
		return nil
	}

	dtos := make([]FileDTO, 0, len(files))
	for i, f := range files {
		if err := f.Validate(); err != nil {
			return err
		}
		dtos = append(dtos, fromDomain(f, i))
	}

	if err := r.db.WithContext(ctx).Create(&dtos).Error; err != nil {
		return err
	}

	for _, f := range files {
		r.tracker.TrackAggregate(f.ID(), f)
	}
	return nil
}

// Update saves the availability and download counters of a file.
func (r *GormFileRepository) Update(ctx context.Context, f *file.File) error {
	if err := f.Validate(); err != nil {
		return err
	}

	dto := fromDomain(f, 0)
	result := r.db.WithContext(ctx).
		Model(&FileDTO{}).
		Where("id = ?", dto.ID).
		Omit(clause.Associations).
		Select("available", "downloads", "expires_on", "last_downloaded_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("file", f.ID().String())
	}

	r.tracker.TrackAggregate(f.ID(), f)
	return nil
}

func (r *GormFileRepository) Get(ctx context.Context, id kernel.UUID) (*file.File, error) {
	return r.get(r.withOwners(ctx), id)
}

// GetForUpdate locks the file row until the transaction ends. Concurrent
// downloads of one file serialize on this lock.
func (r *GormFileRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*file.File, error) {
	return r.get(r.withOwners(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormFileRepository) get(db *gorm.DB, id kernel.UUID) (*file.File, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto FileDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("file", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// Delete removes the files and their owner rows.
func (r *GormFileRepository) Delete(ctx context.Context, ids ...kernel.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	raw := columns.IDs(ids)
	db := r.db.WithContext(ctx)
	if err := db.Where("file_id IN ?", raw).Delete(&FileOwnerDTO{}).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", raw).Delete(&FileDTO{}).Error
}

func (r *GormFileRepository) ListByBatch(ctx context.Context, batchID kernel.UUID) ([]*file.File, error) {
	var dtos []FileDTO
	err := r.withOwners(ctx).
		Where("batch_id = ?", batchID.Bytes()).
		Order("created_on, position").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	files := make([]*file.File, 0, len(dtos))
	for _, dto := range dtos {
		f, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func (r *GormFileRepository) withOwners(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Owners", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	})
}
