package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
	"github.com/tradeworks-payout-ledger/internal/domain/wallet"
)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func walletWithBalance(t *testing.T, balance string) *wallet.Wallet {
	t.Helper()
	w := wallet.NewWallet(uuid.New())
	if balance != "0" {
		require.NoError(t, w.Credit(amt(balance)))
	}
	return w
}

func TestNewCredit(t *testing.T) {
	t.Run("first entry balance_after equals amount", func(t *testing.T) {
		w := walletWithBalance(t, "0")
		refID := uuid.New()

		entry, err := NewCredit(w, amt("600.00"), "Payment for job", shared.ReferenceKindEligibility, refID)
		require.NoError(t, err)

		assert.Equal(t, w.ID, entry.WalletID)
		assert.Equal(t, shared.EntryKindCredit, entry.Kind)
		assert.Equal(t, shared.EntryStatusCompleted, entry.Status)
		assert.True(t, entry.BalanceAfter.Equal(amt("600.00")))
		require.NotNil(t, entry.ReferenceID)
		assert.Equal(t, refID, *entry.ReferenceID)
	})

	t.Run("balance_after chains from current balance", func(t *testing.T) {
		w := walletWithBalance(t, "150.25")

		entry, err := NewCredit(w, amt("100.00"), "Payment for job", shared.ReferenceKindEligibility, uuid.New())
		require.NoError(t, err)
		assert.True(t, entry.BalanceAfter.Equal(amt("250.25")))
	})

	t.Run("non-positive amount", func(t *testing.T) {
		w := walletWithBalance(t, "0")
		_, err := NewCredit(w, decimal.Zero, "x", shared.ReferenceKindEligibility, uuid.New())
		assert.ErrorIs(t, err, wallet.ErrInvalidAmount)
	})
}

func TestNewDebit(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		w := walletWithBalance(t, "600.00")

		entry, err := NewDebit(w, amt("500.00"), "Payout withdrawal", shared.ReferenceKindPayoutRequest, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, shared.EntryKindDebit, entry.Kind)
		assert.True(t, entry.BalanceAfter.Equal(amt("100.00")))
	})

	t.Run("insufficient funds", func(t *testing.T) {
		w := walletWithBalance(t, "100.00")
		_, err := NewDebit(w, amt("100.01"), "Payout withdrawal", shared.ReferenceKindPayoutRequest, uuid.New())
		assert.ErrorIs(t, err, wallet.ErrInsufficientFunds)
	})
}

func TestEntry_Signed(t *testing.T) {
	w := walletWithBalance(t, "600.00")

	credit, err := NewCredit(w, amt("25.00"), "x", shared.ReferenceKindEligibility, uuid.New())
	require.NoError(t, err)
	assert.True(t, credit.Signed().Equal(amt("25.00")))

	debit, err := NewDebit(w, amt("25.00"), "x", shared.ReferenceKindPayoutRequest, uuid.New())
	require.NoError(t, err)
	assert.True(t, debit.Signed().Equal(amt("-25.00")))
}
