package wallet

import (
	"time"

	domain "rentflow/internal/domain/wallet"

	"github.com/shopspring/decimal"
)

type MoveInput struct {
	UserID      string
	Amount      decimal.Decimal
	Description string
	ReferenceID *string
}

type TransactionDTO struct {
	TxnID        string          `json:"txn_id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	ReferenceID  *string         `json:"reference_id,omitempty"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}

type BalanceDTO struct {
	UserID  string          `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}

func toDTO(t *domain.Transaction) TransactionDTO {
	return TransactionDTO{
		TxnID:        t.TxnID,
		Type:         string(t.Type),
		Amount:       t.Amount,
		Description:  t.Description,
		ReferenceID:  t.ReferenceID,
		BalanceAfter: t.BalanceAfter,
		CreatedAt:    t.CreatedAt,
	}
}
