package wallet

import (
	"errors"
	"time"

	"rentflow/internal/domain/errs"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("wallet not found")

type TxnType string

const (
	TxnCredit TxnType = "CREDIT"
	TxnDebit  TxnType = "DEBIT"
)

// Table: wallets
type Wallet struct {
	ID        uint64          `gorm:"primaryKey;column:id" json:"-"`
	UserID    string          `gorm:"size:32;not null;uniqueIndex:ux_wallets_user_id" json:"user_id"`
	Balance   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"balance"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Wallet) TableName() string { return "wallets" }

// Table: wallet_transactions
type Transaction struct {
	ID           uint64          `gorm:"primaryKey;column:id" json:"-"`
	TxnID        string          `gorm:"size:32;not null;uniqueIndex:ux_wallet_txn_txn_id" json:"txn_id"`
	WalletID     uint64          `gorm:"not null;index:idx_wallet_txn_wallet" json:"-"`
	Type         TxnType         `gorm:"size:8;not null" json:"type"`
	Amount       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Description  string          `gorm:"size:255" json:"description"`
	ReferenceID  *string         `gorm:"size:64" json:"reference_id,omitempty"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"balance_after"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Transaction) TableName() string { return "wallet_transactions" }

// Apply moves the balance and returns the ledger line describing the move.
// The wallet is left untouched on error.
func (w *Wallet) Apply(typ TxnType, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return w.Balance, errs.Validation("amount must be positive")
	}
	switch typ {
	case TxnCredit:
		w.Balance = w.Balance.Add(amount)
	case TxnDebit:
		if w.Balance.LessThan(amount) {
			return w.Balance, errs.InsufficientFunds(amount, "wallet balance %s is below %s",
				w.Balance.StringFixed(2), amount.StringFixed(2))
		}
		w.Balance = w.Balance.Sub(amount)
	default:
		return w.Balance, errs.Validation("unknown transaction type %q", typ)
	}
	return w.Balance, nil
}

// Signed is +amount for credits, -amount for debits.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == TxnDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}
