package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hisaab-app/hisaab_backend/internal/apperrors"
	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
	portsrepo "github.com/hisaab-app/hisaab_backend/internal/core/ports/repositories"
	portssvc "github.com/hisaab-app/hisaab_backend/internal/core/ports/services"
	"github.com/hisaab-app/hisaab_backend/internal/dto"
	"github.com/hisaab-app/hisaab_backend/internal/middleware"
	"github.com/hisaab-app/hisaab_backend/internal/utils/splitting"
)

var (
	ErrInvalidSplit      = errors.New("split amounts do not sum to the expense total")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrUnknownUser       = errors.New("unknown participant")
	ErrAlreadyReversed   = errors.New("transaction has already been reversed")
	ErrSelfSettlement    = errors.New("settlement debtor and creditor must differ")
	ErrNoCounterparts    = errors.New("expense needs at least one participant besides the payer")
)

// ledgerService owns the append-only write path of the ledger.
type ledgerService struct {
	ledgerRepo   portsrepo.LedgerRepositoryFacade
	userRepo     portsrepo.UserReader
	currencyCode string
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, userRepo portsrepo.UserReader, currencyCode string) portssvc.LedgerSvcFacade {
	return &ledgerService{
		ledgerRepo:   ledgerRepo,
		userRepo:     userRepo,
		currencyCode: currencyCode,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// RecordExpense validates the split, expands it to exact per-participant
// amounts, and appends one entry per non-payer participant. Nothing is
// written unless the whole transaction validates.
func (s *ledgerService) RecordExpense(ctx context.Context, req dto.RecordExpenseRequest, creatorUserID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: expense description is required", apperrors.ErrValidation)
	}
	if req.TotalAmount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: total is %s", ErrNonPositiveAmount, req.TotalAmount.String())
	}

	shares, err := s.resolveSplits(req)
	if err != nil {
		return nil, err
	}

	// Re-validate the precondition regardless of how the shares were produced.
	sum := decimal.Zero
	for _, share := range shares {
		if share.Amount.Sign() <= 0 {
			return nil, fmt.Errorf("%w: share for %s is %s", ErrNonPositiveAmount, share.UserID, share.Amount.String())
		}
		sum = sum.Add(share.Amount)
	}
	if !sum.Equal(req.TotalAmount) {
		return nil, fmt.Errorf("%w: shares sum to %s, total is %s", ErrInvalidSplit, sum.String(), req.TotalAmount.String())
	}

	participantIDs := make([]string, 0, len(shares)+1)
	participantIDs = append(participantIDs, req.PayerID)
	for _, share := range shares {
		participantIDs = append(participantIDs, share.UserID)
	}
	if err := s.requireKnownUsers(ctx, participantIDs); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	transactionID := uuid.NewString()

	entries := make([]domain.LedgerEntry, 0, len(shares))
	for _, share := range shares {
		if share.UserID == req.PayerID {
			continue // the payer's own share nets out
		}
		entries = append(entries, domain.LedgerEntry{
			TransactionID: transactionID,
			DebtorID:      share.UserID,
			CreditorID:    req.PayerID,
			Amount:        share.Amount,
			CurrencyCode:  s.currencyCode,
			Kind:          domain.EntryExpenseShare,
			Description:   req.Description,
			CreatedAt:     now,
		})
	}
	if len(entries) == 0 {
		return nil, ErrNoCounterparts
	}

	txn := domain.Transaction{
		TransactionID: transactionID,
		Kind:          domain.TxnExpense,
		Description:   req.Description,
		TotalAmount:   req.TotalAmount,
		CurrencyCode:  s.currencyCode,
		PayerID:       req.PayerID,
		Status:        domain.Posted,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.ledgerRepo.SaveTransaction(ctx, txn, entries); err != nil {
		logger.Error("Failed to save expense transaction", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}

	logger.Info("Expense recorded",
		slog.String("transaction_id", transactionID),
		slog.String("payer_id", req.PayerID),
		slog.Int("entry_count", len(entries)),
	)
	txn.Entries = entries
	return &txn, nil
}

// RecordSettlement appends a single debtor→creditor entry.
func (s *ledgerService) RecordSettlement(ctx context.Context, req dto.RecordSettlementRequest, creatorUserID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: got %s", ErrNonPositiveAmount, req.Amount.String())
	}
	if req.FromUserID == req.ToUserID {
		return nil, ErrSelfSettlement
	}
	if err := s.requireKnownUsers(ctx, []string{req.FromUserID, req.ToUserID}); err != nil {
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = "Settlement"
	}

	now := time.Now().UTC()
	transactionID := uuid.NewString()

	entry := domain.LedgerEntry{
		TransactionID: transactionID,
		DebtorID:      req.FromUserID,
		CreditorID:    req.ToUserID,
		Amount:        req.Amount,
		CurrencyCode:  s.currencyCode,
		Kind:          domain.EntrySettlement,
		Description:   description,
		CreatedAt:     now,
	}
	txn := domain.Transaction{
		TransactionID: transactionID,
		Kind:          domain.TxnSettlement,
		Description:   description,
		TotalAmount:   req.Amount,
		CurrencyCode:  s.currencyCode,
		PayerID:       req.FromUserID,
		Status:        domain.Posted,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.ledgerRepo.SaveTransaction(ctx, txn, []domain.LedgerEntry{entry}); err != nil {
		logger.Error("Failed to save settlement", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save settlement: %w", err)
	}

	logger.Info("Settlement recorded",
		slog.String("transaction_id", transactionID),
		slog.String("from_user_id", req.FromUserID),
		slog.String("to_user_id", req.ToUserID),
	)
	txn.Entries = []domain.LedgerEntry{entry}
	return &txn, nil
}

// ReverseTransaction appends a compensating transaction: every entry of the
// original reappears with debtor and creditor swapped. The original is marked
// REVERSED in the same atomic append; a transaction can only be reversed
// once. Reversals are themselves ordinary POSTED transactions, so reversing a
// reversal restores the original balances.
func (s *ledgerService) ReverseTransaction(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.ledgerRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to fetch transaction for reversal", slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	if original.Status == domain.Reversed {
		return nil, fmt.Errorf("%w: transaction %s", ErrAlreadyReversed, transactionID)
	}

	now := time.Now().UTC()
	reversalID := uuid.NewString()

	entries := make([]domain.LedgerEntry, len(original.Entries))
	for i, orig := range original.Entries {
		entries[i] = domain.LedgerEntry{
			TransactionID: reversalID,
			DebtorID:      orig.CreditorID,
			CreditorID:    orig.DebtorID,
			Amount:        orig.Amount,
			CurrencyCode:  orig.CurrencyCode,
			Kind:          domain.EntryReversal,
			Description:   "Reversal: " + orig.Description,
			CreatedAt:     now,
		}
	}

	reversal := domain.Transaction{
		TransactionID:         reversalID,
		Kind:                  domain.TxnReversal,
		Description:           "Reversal of: " + original.Description,
		TotalAmount:           original.TotalAmount,
		CurrencyCode:          original.CurrencyCode,
		PayerID:               original.PayerID,
		Status:                domain.Posted,
		OriginalTransactionID: &original.TransactionID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.ledgerRepo.SaveReversal(ctx, reversal, entries, original.TransactionID); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// A concurrent reversal won the race; same outcome as reversing twice.
			return nil, fmt.Errorf("%w: transaction %s", ErrAlreadyReversed, transactionID)
		}
		logger.Error("Failed to save reversal", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save reversal: %w", err)
	}

	logger.Info("Transaction reversed",
		slog.String("transaction_id", transactionID),
		slog.String("reversal_transaction_id", reversalID),
	)
	reversal.Entries = entries
	return &reversal, nil
}

// ListEntriesForUser pages through the user's entries in insertion order.
func (s *ledgerService) ListEntriesForUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	if err := s.requireKnownUsers(ctx, []string{userID}); err != nil {
		return nil, nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.ledgerRepo.ListEntriesForUser(ctx, userID, limit, nextToken)
}

// resolveSplits expands the request's split specification into exact shares.
// When no mode is given, the shape of the splits decides it: amounts mean
// EXACT, percents mean PERCENTAGE, share counts mean SHARES, bare user IDs
// mean EQUAL. A split field the active mode does not use is rejected rather
// than silently dropped.
func (s *ledgerService) resolveSplits(req dto.RecordExpenseRequest) ([]splitting.Share, error) {
	mode := splitting.Mode(strings.ToUpper(req.SplitMode))
	if req.SplitMode == "" {
		mode = inferSplitMode(req.Splits)
	}
	if err := rejectUnusedSplitFields(mode, req.Splits); err != nil {
		return nil, err
	}

	userIDs := make([]string, len(req.Splits))
	for i, split := range req.Splits {
		userIDs[i] = split.UserID
	}

	var (
		shares []splitting.Share
		err    error
	)
	switch mode {
	case splitting.ModeEqual:
		shares, err = splitting.Equal(req.TotalAmount, userIDs)
	case splitting.ModeExact:
		exact := make([]splitting.Share, len(req.Splits))
		for i, split := range req.Splits {
			if split.Amount == nil {
				return nil, fmt.Errorf("%w: exact split for %s is missing an amount", apperrors.ErrValidation, split.UserID)
			}
			exact[i] = splitting.Share{UserID: split.UserID, Amount: *split.Amount}
		}
		shares, err = splitting.Exact(req.TotalAmount, exact)
	case splitting.ModePercentage:
		percents := make([]decimal.Decimal, len(req.Splits))
		for i, split := range req.Splits {
			if split.Percent == nil {
				return nil, fmt.Errorf("%w: percentage split for %s is missing a percent", apperrors.ErrValidation, split.UserID)
			}
			percents[i] = *split.Percent
		}
		shares, err = splitting.Percentage(req.TotalAmount, userIDs, percents)
	case splitting.ModeShares:
		counts := make([]int64, len(req.Splits))
		for i, split := range req.Splits {
			if split.Shares == nil {
				return nil, fmt.Errorf("%w: shares split for %s is missing a share count", apperrors.ErrValidation, split.UserID)
			}
			counts[i] = *split.Shares
		}
		shares, err = splitting.Shares(req.TotalAmount, userIDs, counts)
	default:
		return nil, fmt.Errorf("%w: unknown split mode %q", apperrors.ErrValidation, req.SplitMode)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSplit, err.Error())
	}
	return shares, nil
}

// inferSplitMode picks the split mode from the first optional field any split
// carries. Bare user IDs mean an equal split.
func inferSplitMode(splits []dto.ExpenseSplitInput) splitting.Mode {
	for _, split := range splits {
		switch {
		case split.Amount != nil:
			return splitting.ModeExact
		case split.Percent != nil:
			return splitting.ModePercentage
		case split.Shares != nil:
			return splitting.ModeShares
		}
	}
	return splitting.ModeEqual
}

// rejectUnusedSplitFields fails when a split carries a field the active mode
// would ignore. Discarding caller-supplied amounts and recording different
// shares would be a silent misrecording.
func rejectUnusedSplitFields(mode splitting.Mode, splits []dto.ExpenseSplitInput) error {
	for _, split := range splits {
		if split.Amount != nil && mode != splitting.ModeExact {
			return fmt.Errorf("%w: split for %s carries an amount but the mode is %s", apperrors.ErrValidation, split.UserID, mode)
		}
		if split.Percent != nil && mode != splitting.ModePercentage {
			return fmt.Errorf("%w: split for %s carries a percent but the mode is %s", apperrors.ErrValidation, split.UserID, mode)
		}
		if split.Shares != nil && mode != splitting.ModeShares {
			return fmt.Errorf("%w: split for %s carries a share count but the mode is %s", apperrors.ErrValidation, split.UserID, mode)
		}
	}
	return nil
}

// requireKnownUsers fails with ErrUnknownUser unless every ID names an active user.
func (s *ledgerService) requireKnownUsers(ctx context.Context, userIDs []string) error {
	unique := uniqueStrings(userIDs)
	found, err := s.userRepo.FindUsersByIDs(ctx, unique)
	if err != nil {
		return fmt.Errorf("failed to look up participants: %w", err)
	}
	for _, id := range unique {
		if _, ok := found[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownUser, id)
		}
	}
	return nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
