package gormstore

import (
	"context"
	"errors"
	"testing"

	"rentflow/internal/domain/asset"
	"rentflow/internal/testutil/sqlitedb"
)

func TestAssetRepository_Property(t *testing.T) {
	db := sqlitedb.Open(t)
	repo := NewAssetRepository(db)
	ctx := context.Background()

	p := sqlitedb.SeedProperty(t, db, "O1", "Sea View")
	ref := asset.Ref{Kind: asset.KindProperty, ID: p.ID}

	info, err := repo.Get(ctx, ref)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if info.OwnerID != "O1" || info.Title != "Sea View" || !info.Available {
		t.Fatalf("info = %+v", info)
	}

	if err := repo.MarkOccupied(ctx, ref); err != nil {
		t.Fatalf("MarkOccupied: %v", err)
	}
	info, _ = repo.GetForUpdate(ctx, ref)
	if info.Available {
		t.Fatalf("property should be RENTED")
	}

	if err := repo.MarkAvailable(ctx, ref); err != nil {
		t.Fatalf("MarkAvailable: %v", err)
	}
	info, _ = repo.Get(ctx, ref)
	if !info.Available {
		t.Fatalf("property should be FOR_RENT again")
	}

	// a listing moved to sale keeps its status on release
	if err := db.Model(&asset.Property{}).Where("id = ?", p.ID).Update("status", asset.PropertyForSale).Error; err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := repo.MarkAvailable(ctx, ref); err != nil {
		t.Fatalf("MarkAvailable: %v", err)
	}
	var reloaded asset.Property
	db.First(&reloaded, p.ID)
	if reloaded.Status != asset.PropertyForSale {
		t.Fatalf("status = %s, want FOR_SALE", reloaded.Status)
	}

	missing := asset.Ref{Kind: asset.KindProperty, ID: 999}
	if _, err := repo.Get(ctx, missing); !errors.Is(err, asset.ErrNotFound) {
		t.Fatalf("Get missing: %v", err)
	}
	if err := repo.MarkOccupied(ctx, missing); !errors.Is(err, asset.ErrNotFound) {
		t.Fatalf("MarkOccupied missing: %v", err)
	}
}

func TestAssetRepository_Bed(t *testing.T) {
	db := sqlitedb.Open(t)
	repo := NewAssetRepository(db)
	ctx := context.Background()

	bed := sqlitedb.SeedBed(t, db, "O2", "Hostel")
	ref := asset.Ref{Kind: asset.KindPgBed, ID: bed.ID}

	info, err := repo.Get(ctx, ref)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if info.OwnerID != "O2" || !info.Available {
		t.Fatalf("info = %+v", info)
	}
	if info.Title != "Hostel - Room 101 Bed A" {
		t.Fatalf("title = %q", info.Title)
	}

	if err := repo.MarkOccupied(ctx, ref); err != nil {
		t.Fatalf("MarkOccupied: %v", err)
	}
	// second call changes nothing but must not report a missing bed
	if err := repo.MarkOccupied(ctx, ref); err != nil {
		t.Fatalf("MarkOccupied twice: %v", err)
	}
	info, _ = repo.Get(ctx, ref)
	if info.Available {
		t.Fatalf("bed should be occupied")
	}
	if err := repo.MarkAvailable(ctx, ref); err != nil {
		t.Fatalf("MarkAvailable: %v", err)
	}
	info, _ = repo.Get(ctx, ref)
	if !info.Available {
		t.Fatalf("bed should be free")
	}
}
