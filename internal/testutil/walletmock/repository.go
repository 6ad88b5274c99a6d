package walletmock

import (
	"context"

	domain "rentflow/internal/domain/wallet"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	GetByUserIDFn          func(ctx context.Context, userID string) (*domain.Wallet, error)
	GetByUserIDForUpdateFn func(ctx context.Context, userID string) (*domain.Wallet, error)
	CreateFn               func(ctx context.Context, w *domain.Wallet) error
	CreateIfAbsentFn       func(ctx context.Context, userID string) error
	SaveFn                 func(ctx context.Context, w *domain.Wallet) error
	CreateTransactionFn    func(ctx context.Context, t *domain.Transaction) error
	ListTransactionsFn     func(ctx context.Context, walletID uint64, limit int) ([]domain.Transaction, error)
}

func (m *Repo) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByUserIDForUpdate(ctx context.Context, userID string) (*domain.Wallet, error) {
	if m.GetByUserIDForUpdateFn != nil {
		return m.GetByUserIDForUpdateFn(ctx, userID)
	}
	return nil, context.Canceled
}

func (m *Repo) Create(ctx context.Context, w *domain.Wallet) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, w)
	}
	return nil
}

func (m *Repo) CreateIfAbsent(ctx context.Context, userID string) error {
	if m.CreateIfAbsentFn != nil {
		return m.CreateIfAbsentFn(ctx, userID)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, w *domain.Wallet) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, w)
	}
	return nil
}

func (m *Repo) CreateTransaction(ctx context.Context, t *domain.Transaction) error {
	if m.CreateTransactionFn != nil {
		return m.CreateTransactionFn(ctx, t)
	}
	return nil
}

func (m *Repo) ListTransactions(ctx context.Context, walletID uint64, limit int) ([]domain.Transaction, error) {
	if m.ListTransactionsFn != nil {
		return m.ListTransactionsFn(ctx, walletID, limit)
	}
	return nil, nil
}
