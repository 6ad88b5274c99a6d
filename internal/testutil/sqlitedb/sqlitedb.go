// Package sqlitedb opens migrated in-memory databases for tests.
package sqlitedb

import (
	"fmt"
	"regexp"
	"testing"

	"rentflow/internal/domain/asset"
	"rentflow/internal/infrastructure/db"
	"rentflow/pkg/id"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// Open returns a fresh database private to t. A single connection keeps the
// in-memory schema alive and serializes transactions the way row locks
// would on a real server.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := unsafeName.ReplaceAllString(t.Name(), "_")
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, id.NewID32()[:8])
	gdb, err := db.OpenGorm(db.DriverSQLite, dsn, logger.Silent)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func SeedProperty(t testing.TB, gdb *gorm.DB, ownerID, title string) *asset.Property {
	t.Helper()
	p := &asset.Property{OwnerID: ownerID, Title: title, Status: asset.PropertyForRent}
	if err := gdb.Create(p).Error; err != nil {
		t.Fatalf("seed property: %v", err)
	}
	return p
}

// SeedBed creates a property, one room and one free bed in it.
func SeedBed(t testing.TB, gdb *gorm.DB, ownerID, title string) *asset.PgBed {
	t.Helper()
	p := SeedProperty(t, gdb, ownerID, title)
	room := &asset.PgRoom{PropertyID: p.ID, RoomNumber: "101"}
	if err := gdb.Create(room).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}
	bed := &asset.PgBed{RoomID: room.ID, BedNumber: "A"}
	if err := gdb.Create(bed).Error; err != nil {
		t.Fatalf("seed bed: %v", err)
	}
	return bed
}
