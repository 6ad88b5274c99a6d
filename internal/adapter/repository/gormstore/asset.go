package gormstore

import (
	"context"
	"fmt"

	assetDomain "rentflow/internal/domain/asset"

	"gorm.io/gorm"
)

type AssetRepository struct{ db *gorm.DB }

func NewAssetRepository(db *gorm.DB) *AssetRepository { return &AssetRepository{db: db} }

type bedRow struct {
	ID         uint64
	BedNumber  string
	IsOccupied bool
	RoomNumber string
	OwnerID    string
	Title      string
}

func (r *AssetRepository) Get(ctx context.Context, ref assetDomain.Ref) (*assetDomain.Info, error) {
	return r.get(r.db.WithContext(ctx), ref)
}

func (r *AssetRepository) GetForUpdate(ctx context.Context, ref assetDomain.Ref) (*assetDomain.Info, error) {
	return r.get(r.db.WithContext(ctx).Clauses(forUpdate), ref)
}

func (r *AssetRepository) get(q *gorm.DB, ref assetDomain.Ref) (*assetDomain.Info, error) {
	switch ref.Kind {
	case assetDomain.KindProperty:
		var p assetDomain.Property
		if err := q.Where("id = ?", ref.ID).First(&p).Error; err != nil {
			return nil, notFound(err, assetDomain.ErrNotFound)
		}
		return &assetDomain.Info{
			Ref:       ref,
			OwnerID:   p.OwnerID,
			Title:     p.Title,
			Available: p.Status == assetDomain.PropertyForRent,
		}, nil
	case assetDomain.KindPgBed:
		var row bedRow
		err := q.Table("pg_beds").
			Select("pg_beds.id, pg_beds.bed_number, pg_beds.is_occupied, pg_rooms.room_number, properties.owner_id, properties.title").
			Joins("JOIN pg_rooms ON pg_rooms.id = pg_beds.room_id").
			Joins("JOIN properties ON properties.id = pg_rooms.property_id AND properties.deleted_at IS NULL").
			Where("pg_beds.id = ?", ref.ID).
			Take(&row).Error
		if err != nil {
			return nil, notFound(err, assetDomain.ErrNotFound)
		}
		return &assetDomain.Info{
			Ref:       ref,
			OwnerID:   row.OwnerID,
			Title:     fmt.Sprintf("%s - Room %s Bed %s", row.Title, row.RoomNumber, row.BedNumber),
			Available: !row.IsOccupied,
		}, nil
	}
	return nil, fmt.Errorf("unknown asset kind %q", ref.Kind)
}

func (r *AssetRepository) MarkOccupied(ctx context.Context, ref assetDomain.Ref) error {
	switch ref.Kind {
	case assetDomain.KindProperty:
		return r.update(ctx, &assetDomain.Property{}, ref.ID, "status", assetDomain.PropertyRented)
	case assetDomain.KindPgBed:
		return r.update(ctx, &assetDomain.PgBed{}, ref.ID, "is_occupied", true)
	}
	return fmt.Errorf("unknown asset kind %q", ref.Kind)
}

// MarkAvailable only flips a property that is currently RENTED, so a listing
// moved to FOR_SALE while occupied keeps that status.
func (r *AssetRepository) MarkAvailable(ctx context.Context, ref assetDomain.Ref) error {
	switch ref.Kind {
	case assetDomain.KindProperty:
		return r.db.WithContext(ctx).Model(&assetDomain.Property{}).
			Where("id = ? AND status = ?", ref.ID, assetDomain.PropertyRented).
			Update("status", assetDomain.PropertyForRent).Error
	case assetDomain.KindPgBed:
		return r.update(ctx, &assetDomain.PgBed{}, ref.ID, "is_occupied", false)
	}
	return fmt.Errorf("unknown asset kind %q", ref.Kind)
}

func (r *AssetRepository) update(ctx context.Context, model any, id uint64, column string, value any) error {
	res := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return assetDomain.ErrNotFound
		}
	}
	return nil
}
