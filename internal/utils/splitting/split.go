// Package splitting expands a split specification (equal, exact, percentage,
// or shares) into exact per-participant amounts. All arithmetic happens in
// integer minor units so the shares always sum to the total to the last paisa;
// remainders go to the earliest participants in the order given.
package splitting

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Mode selects how an expense is divided among participants.
type Mode string

const (
	ModeEqual      Mode = "EQUAL"
	ModeExact      Mode = "EXACT"
	ModePercentage Mode = "PERCENTAGE"
	ModeShares     Mode = "SHARES"
)

// minorUnitExponent is the number of decimal places in the ledger currency
// (paise for INR, cents for most others).
const minorUnitExponent = 2

var (
	ErrNoParticipants     = errors.New("at least one participant is required")
	ErrNonPositiveTotal   = errors.New("total amount must be positive")
	ErrPrecisionExceeded  = errors.New("amount has more precision than the currency minor unit")
	ErrDuplicateUser      = errors.New("duplicate participant")
	ErrPercentSumMismatch = errors.New("percentages must sum to exactly 100")
	ErrNoShares           = errors.New("total shares must be greater than zero")
)

// Share is the computed amount owed by one participant.
type Share struct {
	UserID string
	Amount decimal.Decimal
}

// Equal divides total evenly across participantIDs, giving any leftover minor
// units to the earliest participants.
func Equal(total decimal.Decimal, participantIDs []string) ([]Share, error) {
	if len(participantIDs) == 0 {
		return nil, ErrNoParticipants
	}
	if err := checkDistinct(participantIDs); err != nil {
		return nil, err
	}
	totalMinor, err := toMinorUnits(total)
	if err != nil {
		return nil, err
	}

	n := int64(len(participantIDs))
	base := totalMinor / n
	remainder := totalMinor % n

	shares := make([]Share, len(participantIDs))
	for i, userID := range participantIDs {
		amt := base
		if int64(i) < remainder {
			amt++
		}
		shares[i] = Share{UserID: userID, Amount: fromMinorUnits(amt)}
	}
	return shares, nil
}

// Exact validates caller-provided amounts: they must be positive, currency-
// precise, and sum to exactly the total.
func Exact(total decimal.Decimal, shares []Share) ([]Share, error) {
	if len(shares) == 0 {
		return nil, ErrNoParticipants
	}
	ids := make([]string, len(shares))
	for i, s := range shares {
		ids[i] = s.UserID
	}
	if err := checkDistinct(ids); err != nil {
		return nil, err
	}
	if _, err := toMinorUnits(total); err != nil {
		return nil, err
	}

	sum := decimal.Zero
	for _, s := range shares {
		if s.Amount.Sign() <= 0 {
			return nil, fmt.Errorf("share for %s must be positive, got %s", s.UserID, s.Amount.String())
		}
		if !s.Amount.Truncate(minorUnitExponent).Equal(s.Amount) {
			return nil, fmt.Errorf("%w: share for %s is %s", ErrPrecisionExceeded, s.UserID, s.Amount.String())
		}
		sum = sum.Add(s.Amount)
	}
	if !sum.Equal(total) {
		return nil, fmt.Errorf("split amounts sum to %s but total is %s", sum.String(), total.String())
	}
	return shares, nil
}

// Percentage divides total by per-participant percentages, which must sum to
// exactly 100. Rounding residue goes to the earliest participants.
func Percentage(total decimal.Decimal, userIDs []string, percents []decimal.Decimal) ([]Share, error) {
	if len(userIDs) == 0 {
		return nil, ErrNoParticipants
	}
	if len(userIDs) != len(percents) {
		return nil, fmt.Errorf("got %d participants but %d percentages", len(userIDs), len(percents))
	}
	if err := checkDistinct(userIDs); err != nil {
		return nil, err
	}
	totalMinor, err := toMinorUnits(total)
	if err != nil {
		return nil, err
	}

	hundred := decimal.NewFromInt(100)
	pctSum := decimal.Zero
	for i, pct := range percents {
		if pct.Sign() <= 0 {
			return nil, fmt.Errorf("percentage for %s must be positive, got %s", userIDs[i], pct.String())
		}
		pctSum = pctSum.Add(pct)
	}
	if !pctSum.Equal(hundred) {
		return nil, fmt.Errorf("%w: got %s", ErrPercentSumMismatch, pctSum.String())
	}

	totalDec := decimal.NewFromInt(totalMinor)
	minor := make([]int64, len(userIDs))
	assigned := int64(0)
	for i, pct := range percents {
		m := totalDec.Mul(pct).Div(hundred).RoundDown(0).IntPart()
		minor[i] = m
		assigned += m
	}
	// Distribute the rounding residue, one minor unit at a time.
	for i := 0; assigned < totalMinor; i = (i + 1) % len(minor) {
		minor[i]++
		assigned++
	}

	shares := make([]Share, len(userIDs))
	for i, userID := range userIDs {
		shares[i] = Share{UserID: userID, Amount: fromMinorUnits(minor[i])}
	}
	return shares, nil
}

// Shares divides total proportionally to integer share counts (e.g. a couple
// taking 2 shares against a single person's 1).
func Shares(total decimal.Decimal, userIDs []string, counts []int64) ([]Share, error) {
	if len(userIDs) == 0 {
		return nil, ErrNoParticipants
	}
	if len(userIDs) != len(counts) {
		return nil, fmt.Errorf("got %d participants but %d share counts", len(userIDs), len(counts))
	}
	if err := checkDistinct(userIDs); err != nil {
		return nil, err
	}
	totalMinor, err := toMinorUnits(total)
	if err != nil {
		return nil, err
	}

	totalShares := int64(0)
	for i, c := range counts {
		if c <= 0 {
			return nil, fmt.Errorf("share count for %s must be positive, got %d", userIDs[i], c)
		}
		totalShares += c
	}
	if totalShares == 0 {
		return nil, ErrNoShares
	}

	minor := make([]int64, len(userIDs))
	assigned := int64(0)
	for i, c := range counts {
		m := totalMinor * c / totalShares
		minor[i] = m
		assigned += m
	}
	for i := 0; assigned < totalMinor; i = (i + 1) % len(minor) {
		minor[i]++
		assigned++
	}

	shares := make([]Share, len(userIDs))
	for i, userID := range userIDs {
		shares[i] = Share{UserID: userID, Amount: fromMinorUnits(minor[i])}
	}
	return shares, nil
}

func toMinorUnits(amount decimal.Decimal) (int64, error) {
	if amount.Sign() <= 0 {
		return 0, ErrNonPositiveTotal
	}
	// Trailing zeros are fine; only non-zero sub-paisa digits are rejected.
	if !amount.Truncate(minorUnitExponent).Equal(amount) {
		return 0, fmt.Errorf("%w: %s", ErrPrecisionExceeded, amount.String())
	}
	return amount.Shift(minorUnitExponent).IntPart(), nil
}

func fromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -minorUnitExponent)
}

func checkDistinct(userIDs []string) error {
	seen := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateUser, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
