package gormstore

import (
	"context"

	walletDomain "rentflow/internal/domain/wallet"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WalletRepository struct{ db *gorm.DB }

func NewWalletRepository(db *gorm.DB) *WalletRepository { return &WalletRepository{db: db} }

func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*walletDomain.Wallet, error) {
	return r.first(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *WalletRepository) GetByUserIDForUpdate(ctx context.Context, userID string) (*walletDomain.Wallet, error) {
	return r.first(r.db.WithContext(ctx).Clauses(forUpdate).Where("user_id = ?", userID))
}

func (r *WalletRepository) first(q *gorm.DB) (*walletDomain.Wallet, error) {
	var out walletDomain.Wallet
	if err := q.First(&out).Error; err != nil {
		return nil, notFound(err, walletDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *WalletRepository) Create(ctx context.Context, w *walletDomain.Wallet) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *WalletRepository) CreateIfAbsent(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&walletDomain.Wallet{UserID: userID, Balance: decimal.Zero}).Error
}

func (r *WalletRepository) Save(ctx context.Context, w *walletDomain.Wallet) error {
	return r.db.WithContext(ctx).Save(w).Error
}

func (r *WalletRepository) CreateTransaction(ctx context.Context, t *walletDomain.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *WalletRepository) ListTransactions(ctx context.Context, walletID uint64, limit int) ([]walletDomain.Transaction, error) {
	var out []walletDomain.Transaction
	q := r.db.WithContext(ctx).Where("wallet_id = ?", walletID).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
