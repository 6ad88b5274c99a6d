package assetmock

import (
	"context"

	domain "rentflow/internal/domain/asset"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset GetForUpdateFn falls back to GetFn.
type Repo struct {
	GetFn           func(ctx context.Context, ref domain.Ref) (*domain.Info, error)
	GetForUpdateFn  func(ctx context.Context, ref domain.Ref) (*domain.Info, error)
	MarkOccupiedFn  func(ctx context.Context, ref domain.Ref) error
	MarkAvailableFn func(ctx context.Context, ref domain.Ref) error
}

func (m *Repo) Get(ctx context.Context, ref domain.Ref) (*domain.Info, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, ref)
	}
	return nil, context.Canceled
}

func (m *Repo) GetForUpdate(ctx context.Context, ref domain.Ref) (*domain.Info, error) {
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx, ref)
	}
	return m.Get(ctx, ref)
}

func (m *Repo) MarkOccupied(ctx context.Context, ref domain.Ref) error {
	if m.MarkOccupiedFn != nil {
		return m.MarkOccupiedFn(ctx, ref)
	}
	return nil
}

func (m *Repo) MarkAvailable(ctx context.Context, ref domain.Ref) error {
	if m.MarkAvailableFn != nil {
		return m.MarkAvailableFn(ctx, ref)
	}
	return nil
}
