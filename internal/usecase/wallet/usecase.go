package wallet

import (
	"context"
	"errors"

	"rentflow/internal/domain/actor"
	"rentflow/internal/domain/errs"
	"rentflow/internal/domain/uow"
	domain "rentflow/internal/domain/wallet"
	"rentflow/pkg/id"

	"github.com/shopspring/decimal"
)

const defaultHistoryLimit = 50

type Usecase struct {
	wallets domain.Repository
	uow     uow.UnitOfWork
}

func NewUsecase(wallets domain.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{wallets: wallets, uow: tx}
}

func (u *Usecase) Credit(ctx context.Context, by actor.Actor, in MoveInput) (*TransactionDTO, error) {
	return u.move(ctx, by, domain.TxnCredit, in)
}

func (u *Usecase) Debit(ctx context.Context, by actor.Actor, in MoveInput) (*TransactionDTO, error) {
	return u.move(ctx, by, domain.TxnDebit, in)
}

func (u *Usecase) move(ctx context.Context, by actor.Actor, typ domain.TxnType, in MoveInput) (*TransactionDTO, error) {
	if err := authorize(by, in.UserID); err != nil {
		return nil, err
	}
	var dto TransactionDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		t, err := ApplyInTx(ctx, r.Wallets, typ, in)
		if err != nil {
			return err
		}
		dto = toDTO(t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func (u *Usecase) Balance(ctx context.Context, by actor.Actor, userID string) (*BalanceDTO, error) {
	if err := authorize(by, userID); err != nil {
		return nil, err
	}
	w, err := u.wallets.GetByUserID(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return &BalanceDTO{UserID: userID, Balance: decimal.Zero}, nil
	case err != nil:
		return nil, err
	}
	return &BalanceDTO{UserID: userID, Balance: w.Balance}, nil
}

func (u *Usecase) Transactions(ctx context.Context, by actor.Actor, userID string, limit int) ([]TransactionDTO, error) {
	if err := authorize(by, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	w, err := u.wallets.GetByUserID(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return []TransactionDTO{}, nil
	case err != nil:
		return nil, err
	}
	txns, err := u.wallets.ListTransactions(ctx, w.ID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]TransactionDTO, 0, len(txns))
	for i := range txns {
		out = append(out, toDTO(&txns[i]))
	}
	return out, nil
}

// ApplyInTx moves money on in.UserID's wallet within the caller's
// transaction, creating the wallet on first use. The wallet row is locked
// before the balance is read, so the balance and the ledger line are written
// atomically.
func ApplyInTx(ctx context.Context, wallets domain.Repository, typ domain.TxnType, in MoveInput) (*domain.Transaction, error) {
	if in.UserID == "" {
		return nil, errs.Validation("user id is required")
	}
	if !in.Amount.IsPositive() {
		return nil, errs.Validation("amount must be positive")
	}
	w, err := lockWallet(ctx, wallets, in.UserID)
	if err != nil {
		return nil, err
	}

	after, err := w.Apply(typ, in.Amount)
	if err != nil {
		return nil, err
	}
	if err := wallets.Save(ctx, w); err != nil {
		return nil, err
	}
	t := &domain.Transaction{
		TxnID:        id.NewID32(),
		WalletID:     w.ID,
		Type:         typ,
		Amount:       in.Amount,
		Description:  in.Description,
		ReferenceID:  in.ReferenceID,
		BalanceAfter: after,
	}
	if err := wallets.CreateTransaction(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// lockWallet returns userID's wallet under a row lock, inserting it first
// when missing. A missing row is never read with a locking read, and two
// first uses racing on the insert both end up locking the same row.
func lockWallet(ctx context.Context, wallets domain.Repository, userID string) (*domain.Wallet, error) {
	_, err := wallets.GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		err = wallets.CreateIfAbsent(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return wallets.GetByUserIDForUpdate(ctx, userID)
}

func authorize(by actor.Actor, userID string) error {
	if by.IsAdmin() || by.Role == actor.RoleSystem || by.Is(userID) {
		return nil
	}
	return errs.Forbidden("not allowed to access wallet of %s", userID)
}
