package accounting_test

import (
	"fmt"
	"testing"

	"github.com/hisaab-app/hisaab_backend/internal/apperrors"
	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
	"github.com/hisaab-app/hisaab_backend/internal/utils/accounting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(userID, amount string) domain.NetPosition {
	return domain.NetPosition{UserID: userID, Amount: dec(amount)}
}

func TestSimplifyDebtsThreeWayDinner(t *testing.T) {
	// A paid 900 split equally: B and C each owe A 300.
	positions := []domain.NetPosition{
		pos("A", "600"),
		pos("B", "-300"),
		pos("C", "-300"),
	}

	plan, err := accounting.SimplifyDebts(positions)
	require.NoError(t, err)
	require.Len(t, plan, 2)

	assert.Equal(t, "B", plan[0].FromUserID)
	assert.Equal(t, "A", plan[0].ToUserID)
	assert.True(t, plan[0].Amount.Equal(dec("300")))
	assert.Equal(t, "C", plan[1].FromUserID)
	assert.Equal(t, "A", plan[1].ToUserID)
	assert.True(t, plan[1].Amount.Equal(dec("300")))

	assert.True(t, accounting.VerifyPlan(positions, plan))
}

func TestSimplifyDebtsCollapsesChains(t *testing.T) {
	// A owes B, B owes C, same amount: one transfer A -> C suffices.
	positions := []domain.NetPosition{
		pos("A", "-300"),
		pos("C", "300"),
	}

	plan, err := accounting.SimplifyDebts(positions)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "A", plan[0].FromUserID)
	assert.Equal(t, "C", plan[0].ToUserID)
	assert.True(t, plan[0].Amount.Equal(dec("300")))
}

func TestSimplifyDebtsSettlesCycleFromEntries(t *testing.T) {
	// A owes B 500, B owes C 500, C owes A 200. Folding the entries leaves
	// A down 300 and C up 300; a single transfer settles the whole cycle.
	entries := []domain.LedgerEntry{
		entry(1, "A", "B", "500"),
		entry(2, "B", "C", "500"),
		entry(3, "C", "A", "200"),
	}

	balances, err := accounting.NetBalances(entries)
	require.NoError(t, err)
	positions, err := accounting.NetPositions(balances)
	require.NoError(t, err)

	plan, err := accounting.SimplifyDebts(positions)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "A", plan[0].FromUserID)
	assert.Equal(t, "C", plan[0].ToUserID)
	assert.True(t, plan[0].Amount.Equal(dec("300")))
	assert.True(t, accounting.VerifyPlan(positions, plan))
}

func TestSimplifyDebtsEmptyInput(t *testing.T) {
	plan, err := accounting.SimplifyDebts(nil)
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestSimplifyDebtsDeterministicTieBreak(t *testing.T) {
	// Two creditors with identical magnitude: the lower user ID is paid first.
	positions := []domain.NetPosition{
		pos("creditor-a", "100"),
		pos("creditor-b", "100"),
		pos("debtor-x", "-200"),
	}

	plan, err := accounting.SimplifyDebts(positions)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "creditor-a", plan[0].ToUserID)
	assert.Equal(t, "creditor-b", plan[1].ToUserID)

	// Same input again must yield the identical plan.
	again, err := accounting.SimplifyDebts(positions)
	require.NoError(t, err)
	assert.Equal(t, plan, again)
}

func TestSimplifyDebtsTransferBound(t *testing.T) {
	// N non-zero positions settle in at most N-1 transfers.
	const n = 10
	positions := make([]domain.NetPosition, 0, n)
	for i := 0; i < n-1; i++ {
		positions = append(positions, pos(fmt.Sprintf("debtor-%02d", i), "-10"))
	}
	positions = append(positions, pos("creditor", fmt.Sprintf("%d", 10*(n-1))))

	plan, err := accounting.SimplifyDebts(positions)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(plan), n-1)
	assert.True(t, accounting.VerifyPlan(positions, plan))
}

func TestSimplifyDebtsFractionalAmounts(t *testing.T) {
	positions := []domain.NetPosition{
		pos("A", "66.67"),
		pos("B", "-33.34"),
		pos("C", "-33.33"),
	}

	plan, err := accounting.SimplifyDebts(positions)
	require.NoError(t, err)
	assert.True(t, accounting.VerifyPlan(positions, plan), "plan must settle to exact zero, no epsilon")
}

func TestSimplifyDebtsRejectsNonZeroTotal(t *testing.T) {
	_, err := accounting.SimplifyDebts([]domain.NetPosition{pos("A", "10")})
	assert.ErrorIs(t, err, apperrors.ErrArithmeticInvariant)
}

func TestVerifyPlanDetectsBadPlan(t *testing.T) {
	positions := []domain.NetPosition{pos("A", "100"), pos("B", "-100")}
	badPlan := []domain.Transfer{{FromUserID: "B", ToUserID: "A", Amount: dec("99")}}
	assert.False(t, accounting.VerifyPlan(positions, badPlan))
}
