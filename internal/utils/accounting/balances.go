package accounting

import (
	"fmt"
	"sort"

	"github.com/hisaab-app/hisaab_backend/internal/apperrors"
	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// NetBalances folds the full entry set into collapsed pairwise balances.
// For each unordered pair {A, B} it computes raw = Σ(A owes B) − Σ(B owes A)
// and emits a single PairBalance oriented so the amount is positive; pairs
// that net to exactly zero are omitted. The result is sorted by
// (DebtorID, CreditorID) so identical histories always produce identical output.
func NetBalances(entries []domain.LedgerEntry) ([]domain.PairBalance, error) {
	type pair struct {
		low, high string
	}

	// raw[p] holds the signed amount low owes high.
	raw := make(map[pair]decimal.Decimal)
	for _, e := range entries {
		if e.Amount.Sign() <= 0 {
			return nil, fmt.Errorf("%w: entry %d has non-positive amount %s",
				apperrors.ErrArithmeticInvariant, e.EntryID, e.Amount.String())
		}
		if e.DebtorID == e.CreditorID {
			return nil, fmt.Errorf("%w: entry %d has identical debtor and creditor %s",
				apperrors.ErrArithmeticInvariant, e.EntryID, e.DebtorID)
		}
		p := pair{low: e.DebtorID, high: e.CreditorID}
		amt := e.Amount
		if p.low > p.high {
			p.low, p.high = p.high, p.low
			amt = amt.Neg()
		}
		raw[p] = raw[p].Add(amt)
	}

	balances := make([]domain.PairBalance, 0, len(raw))
	for p, amt := range raw {
		switch amt.Sign() {
		case 0:
			continue
		case 1:
			balances = append(balances, domain.PairBalance{DebtorID: p.low, CreditorID: p.high, Amount: amt})
		default:
			balances = append(balances, domain.PairBalance{DebtorID: p.high, CreditorID: p.low, Amount: amt.Neg()})
		}
	}

	sort.Slice(balances, func(i, j int) bool {
		if balances[i].DebtorID != balances[j].DebtorID {
			return balances[i].DebtorID < balances[j].DebtorID
		}
		return balances[i].CreditorID < balances[j].CreditorID
	})

	if err := checkZeroSum(balances); err != nil {
		return nil, err
	}
	return balances, nil
}

// NetPositions expands pair balances into per-user net positions, dropping
// users whose position is zero. Output is sorted by user ID.
func NetPositions(balances []domain.PairBalance) ([]domain.NetPosition, error) {
	byUser := make(map[string]decimal.Decimal)
	for _, b := range balances {
		byUser[b.CreditorID] = byUser[b.CreditorID].Add(b.Amount)
		byUser[b.DebtorID] = byUser[b.DebtorID].Sub(b.Amount)
	}

	positions := make([]domain.NetPosition, 0, len(byUser))
	total := decimal.Zero
	for userID, amt := range byUser {
		total = total.Add(amt)
		if amt.Sign() == 0 {
			continue
		}
		positions = append(positions, domain.NetPosition{UserID: userID, Amount: amt})
	}
	if !total.IsZero() {
		return nil, fmt.Errorf("%w: net positions sum to %s, expected zero",
			apperrors.ErrArithmeticInvariant, total.String())
	}

	sort.Slice(positions, func(i, j int) bool {
		return positions[i].UserID < positions[j].UserID
	})
	return positions, nil
}

// TotalsForUser sums both directions of every pair involving the user.
func TotalsForUser(userID string, balances []domain.PairBalance) (owedToUser, userOwes decimal.Decimal) {
	owedToUser = decimal.Zero
	userOwes = decimal.Zero
	for _, b := range balances {
		switch userID {
		case b.CreditorID:
			owedToUser = owedToUser.Add(b.Amount)
		case b.DebtorID:
			userOwes = userOwes.Add(b.Amount)
		}
	}
	return owedToUser, userOwes
}

// checkZeroSum verifies the ledger-wide invariant: expanding every pair
// balance per user as (credit − debit) must sum to zero.
func checkZeroSum(balances []domain.PairBalance) error {
	perUser := make(map[string]decimal.Decimal)
	for _, b := range balances {
		if b.Amount.Sign() <= 0 {
			return fmt.Errorf("%w: collapsed pair (%s,%s) has non-positive amount %s",
				apperrors.ErrArithmeticInvariant, b.DebtorID, b.CreditorID, b.Amount.String())
		}
		perUser[b.CreditorID] = perUser[b.CreditorID].Add(b.Amount)
		perUser[b.DebtorID] = perUser[b.DebtorID].Sub(b.Amount)
	}
	sum := decimal.Zero
	for _, net := range perUser {
		sum = sum.Add(net)
	}
	if !sum.IsZero() {
		return fmt.Errorf("%w: pairwise balances sum to %s, expected zero",
			apperrors.ErrArithmeticInvariant, sum.String())
	}
	return nil
}
