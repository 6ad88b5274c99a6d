package wallet

import "context"

type Repository interface {
	GetByUserID(ctx context.Context, userID string) (*Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, userID string) (*Wallet, error)
	Create(ctx context.Context, w *Wallet) error
	// CreateIfAbsent inserts an empty wallet for userID; an existing one is
	// left untouched and is not an error.
	CreateIfAbsent(ctx context.Context, userID string) error
	Save(ctx context.Context, w *Wallet) error

	CreateTransaction(ctx context.Context, t *Transaction) error
	// Newest first; limit <= 0 means no limit.
	ListTransactions(ctx context.Context, walletID uint64, limit int) ([]Transaction, error)
}
