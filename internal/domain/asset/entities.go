package asset

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("asset not found")

// Kind tags what a booking occupies: a whole property or a single PG bed.
type Kind string

const (
	KindProperty Kind = "PROPERTY"
	KindPgBed    Kind = "PG_BED"
)

// Ref identifies a rentable asset.
type Ref struct {
	Kind Kind
	ID   uint64
}

func NewRef(kind Kind, id uint64) (Ref, error) {
	switch kind {
	case KindProperty, KindPgBed:
	default:
		return Ref{}, fmt.Errorf("unknown asset kind %q", kind)
	}
	if id == 0 {
		return Ref{}, errors.New("asset id is required")
	}
	return Ref{Kind: kind, ID: id}, nil
}

func (r Ref) String() string { return fmt.Sprintf("%s:%d", r.Kind, r.ID) }

type PropertyStatus string

const (
	PropertyForRent PropertyStatus = "FOR_RENT"
	PropertyRented  PropertyStatus = "RENTED"
	PropertyForSale PropertyStatus = "FOR_SALE"
	PropertySold    PropertyStatus = "SOLD"
)

// Property is the slice of a listing the booking core needs.
type Property struct {
	ID        uint64         `gorm:"primaryKey;column:id" json:"id"`
	OwnerID   string         `gorm:"size:32;not null;index" json:"owner_id"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Status    PropertyStatus `gorm:"size:20;not null;default:FOR_RENT" json:"status"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Property) TableName() string { return "properties" }

type PgRoom struct {
	ID         uint64    `gorm:"primaryKey;column:id" json:"id"`
	PropertyID uint64    `gorm:"not null;index" json:"property_id"`
	RoomNumber string    `gorm:"size:32;not null" json:"room_number"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PgRoom) TableName() string { return "pg_rooms" }

type PgBed struct {
	ID         uint64    `gorm:"primaryKey;column:id" json:"id"`
	RoomID     uint64    `gorm:"not null;index" json:"room_id"`
	BedNumber  string    `gorm:"size:32;not null" json:"bed_number"`
	IsOccupied bool      `gorm:"not null;default:false" json:"is_occupied"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PgBed) TableName() string { return "pg_beds" }

// Info is the resolved view of an asset: who owns it right now, what to call
// it in notifications, and whether it can take a new tenant.
type Info struct {
	Ref       Ref
	OwnerID   string
	Title     string
	Available bool
}
