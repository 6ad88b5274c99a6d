package asset

import "context"

// Repository is the occupancy capability of the listing layer. Rent
// properties flip between FOR_RENT and RENTED; beds flip their occupied flag.
type Repository interface {
	Get(ctx context.Context, ref Ref) (*Info, error)
	// Locks the asset row; approvals of the same asset serialize on it.
	GetForUpdate(ctx context.Context, ref Ref) (*Info, error)
	MarkOccupied(ctx context.Context, ref Ref) error
	MarkAvailable(ctx context.Context, ref Ref) error
}
