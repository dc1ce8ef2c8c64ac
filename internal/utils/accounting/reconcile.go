package accounting

import (
	"fmt"

	"github.com/hisaab-app/hisaab_backend/internal/apperrors"
	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SimplifyDebts converts per-user net positions into a settling transfer plan
// using greedy extremal pairing: repeatedly match the largest creditor with
// the largest debtor and transfer min(credit, debt). Each step zeroes at
// least one participant, so the plan never exceeds N−1 transfers for N
// non-zero positions. Ties on magnitude break toward the lower user ID, which
// makes the output fully deterministic.
//
// Finding the provably minimal transfer count is a partition-style
// optimization; this greedy plan is exact (applying it drives every balance
// to zero) and bounded, but not guaranteed count-optimal.
//
// The input is not mutated. An empty input yields an empty plan.
func SimplifyDebts(positions []domain.NetPosition) ([]domain.Transfer, error) {
	type pos struct {
		userID string
		amount decimal.Decimal
	}

	total := decimal.Zero
	var creditors, debtors []pos
	for _, p := range positions {
		total = total.Add(p.Amount)
		switch p.Amount.Sign() {
		case 1:
			creditors = append(creditors, pos{userID: p.UserID, amount: p.Amount})
		case -1:
			debtors = append(debtors, pos{userID: p.UserID, amount: p.Amount.Neg()})
		}
	}
	if !total.IsZero() {
		return nil, fmt.Errorf("%w: positions sum to %s, cannot reconcile",
			apperrors.ErrArithmeticInvariant, total.String())
	}

	// largest returns the index of the entry with the greatest amount,
	// preferring the lower user ID on equal magnitude.
	largest := func(ps []pos) int {
		best := 0
		for i := 1; i < len(ps); i++ {
			switch ps[i].amount.Cmp(ps[best].amount) {
			case 1:
				best = i
			case 0:
				if ps[i].userID < ps[best].userID {
					best = i
				}
			}
		}
		return best
	}

	transfers := make([]domain.Transfer, 0, len(positions))
	for len(creditors) > 0 && len(debtors) > 0 {
		ci := largest(creditors)
		di := largest(debtors)

		amount := decimal.Min(creditors[ci].amount, debtors[di].amount)
		transfers = append(transfers, domain.Transfer{
			FromUserID: debtors[di].userID,
			ToUserID:   creditors[ci].userID,
			Amount:     amount,
		})

		creditors[ci].amount = creditors[ci].amount.Sub(amount)
		debtors[di].amount = debtors[di].amount.Sub(amount)
		if creditors[ci].amount.IsZero() {
			creditors = append(creditors[:ci], creditors[ci+1:]...)
		}
		if debtors[di].amount.IsZero() {
			debtors = append(debtors[:di], debtors[di+1:]...)
		}
	}

	// Both sides start with equal totals and shrink in lockstep, so neither
	// can be exhausted before the other.
	if len(creditors) != 0 || len(debtors) != 0 {
		return nil, fmt.Errorf("%w: reconciliation left unmatched positions", apperrors.ErrArithmeticInvariant)
	}
	return transfers, nil
}

// VerifyPlan applies every transfer in the plan to the given positions and
// reports whether all of them reach exactly zero.
func VerifyPlan(positions []domain.NetPosition, plan []domain.Transfer) bool {
	residual := make(map[string]decimal.Decimal, len(positions))
	for _, p := range positions {
		residual[p.UserID] = p.Amount
	}
	for _, t := range plan {
		residual[t.FromUserID] = residual[t.FromUserID].Add(t.Amount)
		residual[t.ToUserID] = residual[t.ToUserID].Sub(t.Amount)
	}
	for _, amt := range residual {
		if !amt.IsZero() {
			return false
		}
	}
	return true
}
