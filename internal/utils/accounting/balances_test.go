package accounting_test

import (
	"testing"

	"github.com/hisaab-app/hisaab_backend/internal/apperrors"
	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
	"github.com/hisaab-app/hisaab_backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func entry(id int64, debtor, creditor, amount string) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:    id,
		DebtorID:   debtor,
		CreditorID: creditor,
		Amount:     dec(amount),
	}
}

func TestNetBalancesCollapsesOpposingDebts(t *testing.T) {
	// B owes A 500, A owes B 200: collapses to B owes A 300.
	entries := []domain.LedgerEntry{
		entry(1, "B", "A", "500"),
		entry(2, "A", "B", "200"),
	}

	balances, err := accounting.NetBalances(entries)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "B", balances[0].DebtorID)
	assert.Equal(t, "A", balances[0].CreditorID)
	assert.True(t, balances[0].Amount.Equal(dec("300")))
}

func TestNetBalancesOmitsZeroPairs(t *testing.T) {
	entries := []domain.LedgerEntry{
		entry(1, "B", "A", "250"),
		entry(2, "A", "B", "250"),
	}

	balances, err := accounting.NetBalances(entries)
	require.NoError(t, err)
	assert.Empty(t, balances)
}

func TestNetBalancesDeterministicOrder(t *testing.T) {
	entries := []domain.LedgerEntry{
		entry(1, "C", "A", "10"),
		entry(2, "B", "A", "20"),
		entry(3, "C", "B", "5"),
	}

	balances, err := accounting.NetBalances(entries)
	require.NoError(t, err)
	require.Len(t, balances, 3)
	assert.Equal(t, "B", balances[0].DebtorID)
	assert.Equal(t, "C", balances[1].DebtorID)
	assert.Equal(t, "A", balances[1].CreditorID)
	assert.Equal(t, "C", balances[2].DebtorID)
	assert.Equal(t, "B", balances[2].CreditorID)
}

func TestNetBalancesRejectsCorruptEntries(t *testing.T) {
	_, err := accounting.NetBalances([]domain.LedgerEntry{entry(1, "A", "A", "10")})
	assert.ErrorIs(t, err, apperrors.ErrArithmeticInvariant)

	_, err = accounting.NetBalances([]domain.LedgerEntry{entry(1, "A", "B", "0")})
	assert.ErrorIs(t, err, apperrors.ErrArithmeticInvariant)
}

func TestNetPositionsZeroSum(t *testing.T) {
	balances := []domain.PairBalance{
		{DebtorID: "B", CreditorID: "A", Amount: dec("300")},
		{DebtorID: "C", CreditorID: "A", Amount: dec("300")},
	}

	positions, err := accounting.NetPositions(balances)
	require.NoError(t, err)
	require.Len(t, positions, 3)

	assert.Equal(t, "A", positions[0].UserID)
	assert.True(t, positions[0].Amount.Equal(dec("600")))
	assert.True(t, positions[1].Amount.Equal(dec("-300")))
	assert.True(t, positions[2].Amount.Equal(dec("-300")))

	total := decimal.Zero
	for _, p := range positions {
		total = total.Add(p.Amount)
	}
	assert.True(t, total.IsZero())
}

func TestTotalsForUser(t *testing.T) {
	balances := []domain.PairBalance{
		{DebtorID: "B", CreditorID: "A", Amount: dec("300")},
		{DebtorID: "A", CreditorID: "C", Amount: dec("100")},
	}

	owedToUser, userOwes := accounting.TotalsForUser("A", balances)
	assert.True(t, owedToUser.Equal(dec("300")))
	assert.True(t, userOwes.Equal(dec("100")))
}
