// Package services orchestrates domain operations over the repository:
// daily-balance recalculation, transaction entry, account and card
// management.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"kakeibo/internal/core"
	"kakeibo/internal/storage"
)

// RecalcService recomputes daily-balance snapshots for a date range.
type RecalcService struct {
	repo        *storage.Repository
	parallelism int
}

// NewRecalcService creates the service. parallelism caps how many
// accounts recalculate concurrently; within an account, dates always run
// sequentially because each day's balance seeds the next.
func NewRecalcService(repo *storage.Repository, parallelism int) *RecalcService {
	if parallelism < 1 {
		parallelism = 1
	}
	return &RecalcService{repo: repo, parallelism: parallelism}
}

// RecalcRequest selects what to recalculate. An empty AccountID means all
// accounts.
type RecalcRequest struct {
	UserID    string
	StartDate core.Date
	EndDate   core.Date
	AccountID string
}

// AccountResult is one account's recalculation summary. A non-empty Error
// means the account failed; its other fields are then meaningless.
type AccountResult struct {
	AccountID     string          `json:"accountId"`
	AccountName   string          `json:"accountName"`
	ProcessedDays int             `json:"processedDays"`
	FinalBalance  decimal.Decimal `json:"finalBalance"`
	Error         string          `json:"error,omitempty"`
}

// RecalcReport aggregates per-account results. ProcessedAccounts counts
// successes only: one account failing does not discard the others'
// completed work.
type RecalcReport struct {
	Results           []AccountResult `json:"results"`
	ProcessedAccounts int             `json:"processedAccounts"`
}

// Recalculate resolves the target accounts and recomputes their snapshots
// over the inclusive request range.
func (s *RecalcService) Recalculate(ctx context.Context, req RecalcRequest) (*RecalcReport, error) {
	accounts, err := s.ListAccounts(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	if req.AccountID != "" {
		filtered := accounts[:0]
		for _, acc := range accounts {
			if acc.AccountID == req.AccountID {
				filtered = append(filtered, acc)
			}
		}
		if len(filtered) == 0 {
			return nil, fmt.Errorf("account %s: %w", req.AccountID, core.ErrNotFound)
		}
		accounts = filtered
	}

	slog.InfoContext(ctx, "Recalculating daily balances",
		"user_id", req.UserID,
		"start_date", req.StartDate.ISO(),
		"end_date", req.EndDate.ISO(),
		"accounts", len(accounts))

	// Accounts carry no data dependency on each other, so they may run
	// concurrently; each goroutine keeps its own dates strictly ordered.
	results := make([]AccountResult, len(accounts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for i, acc := range accounts {
		g.Go(func() error {
			res, err := s.recalculateAccount(gctx, req.UserID, acc, req.StartDate, req.EndDate)
			if err != nil {
				// Report the failure alongside the other accounts'
				// completed results instead of aborting the whole batch.
				slog.ErrorContext(gctx, "Account recalculation failed",
					"account_id", acc.AccountID, "error", err)
				results[i] = AccountResult{
					AccountID:   acc.AccountID,
					AccountName: acc.AccountName,
					Error:       err.Error(),
				}
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &RecalcReport{Results: results}
	for _, r := range results {
		if r.Error == "" {
			report.ProcessedAccounts++
		}
	}
	return report, nil
}

// ListAccounts synthesizes the full account set: the cash account is
// always present with the owner's stored opening balance, then one
// account per bank record and credit card. Missing collections degrade to
// an empty slice, never an error.
func (s *RecalcService) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	accounts := []core.Account{{
		AccountID:      core.CashAccountID,
		AccountType:    core.AccountCash,
		AccountName:    "Cash",
		InitialBalance: decimal.Zero,
	}}

	if profile, err := s.repo.UserProfile(ctx, userID); err != nil {
		return nil, fmt.Errorf("load user profile: %w", err)
	} else if profile != nil {
		accounts[0].InitialBalance = profile.InitialBalance
	}

	banks, err := s.repo.ListBankAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bank accounts: %w", err)
	}
	for _, bank := range banks {
		accounts = append(accounts, core.Account{
			AccountID:   core.BankAccountPrefix + bank.AccountID,
			AccountType: core.AccountBank,
			AccountName: bank.BankName,
			OriginalID:  bank.AccountID,
			// Bank balances start from prior snapshots, not an opening value.
			InitialBalance: decimal.Zero,
		})
	}

	cards, err := s.repo.ListCreditCards(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list credit cards: %w", err)
	}
	for _, card := range cards {
		accounts = append(accounts, core.Account{
			AccountID:      core.CreditAccountPrefix + card.CardID,
			AccountType:    core.AccountCredit,
			AccountName:    card.CardName,
			OriginalID:     card.CardID,
			InitialBalance: decimal.Zero,
		})
	}

	return accounts, nil
}

// DailyBalancesByDate returns every account's snapshot for one date.
func (s *RecalcService) DailyBalancesByDate(ctx context.Context, userID string, date core.Date) ([]core.DailyBalance, error) {
	return s.repo.DailyBalancesByDate(ctx, userID, date)
}

// AccountDailyBalances returns one account's snapshots ascending by date,
// optionally bounded by start and end.
func (s *RecalcService) AccountDailyBalances(ctx context.Context, userID, accountID string, start, end core.Date) ([]core.DailyBalance, error) {
	return s.repo.AccountDailyBalances(ctx, userID, accountID, start, end)
}

func (s *RecalcService) recalculateAccount(ctx context.Context, userID string, acc core.Account, start, end core.Date) (AccountResult, error) {
	txs, err := s.fetchTransactions(ctx, userID, acc, start, end)
	if err != nil {
		return AccountResult{}, fmt.Errorf("fetch transactions: %w", err)
	}

	seed, err := s.resolveSeed(ctx, userID, acc, start)
	if err != nil {
		return AccountResult{}, fmt.Errorf("resolve seed balance: %w", err)
	}

	days, final := core.AccumulateBalances(acc.AccountType, seed, txs)

	for _, day := range days {
		snapshot := core.DailyBalance{
			UserID:           userID,
			AccountID:        acc.AccountID,
			Date:             day.Date,
			Balance:          day.Balance,
			TransactionCount: day.TransactionCount,
			UpdatedAt:        time.Now().UTC(),
		}
		if err := s.repo.SaveDailyBalance(ctx, snapshot); err != nil {
			return AccountResult{}, fmt.Errorf("save snapshot %s/%s: %w", acc.AccountID, day.Date.ISO(), err)
		}
	}

	slog.InfoContext(ctx, "Account recalculated",
		"account_id", acc.AccountID,
		"processed_days", len(days),
		"final_balance", final)

	return AccountResult{
		AccountID:     acc.AccountID,
		AccountName:   acc.AccountName,
		ProcessedDays: len(days),
		FinalBalance:  final,
	}, nil
}

// fetchTransactions returns the account's transactions inside the range,
// in stable store order; the accumulator imposes date order later.
func (s *RecalcService) fetchTransactions(ctx context.Context, userID string, acc core.Account, start, end core.Date) ([]core.Transaction, error) {
	inRange, err := s.repo.TransactionsInRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	matched := make([]core.Transaction, 0, len(inRange))
	for _, tx := range inRange {
		if acc.Matches(tx) {
			matched = append(matched, tx)
		}
	}
	return matched, nil
}

// resolveSeed looks up the snapshot for the day before the range and uses
// its balance; absent that, the account's initial balance. A range that
// does not abut a previously recalculated one therefore loses any
// carried-forward balance.
func (s *RecalcService) resolveSeed(ctx context.Context, userID string, acc core.Account, start core.Date) (decimal.Decimal, error) {
	prev, err := s.repo.DailyBalance(ctx, userID, acc.AccountID, start.Prev())
	if err != nil {
		return decimal.Zero, err
	}
	if prev != nil {
		return prev.Balance, nil
	}
	return acc.InitialBalance, nil
}
