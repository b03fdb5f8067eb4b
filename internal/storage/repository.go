package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"kakeibo/internal/core"
)

// Repository is the typed access layer over a Store. All reads and writes
// are scoped to an owner: the owner id is the partition key of every
// record.
type Repository struct {
	store Store
}

func NewRepository(store Store) *Repository {
	return &Repository{store: store}
}

func skUserProfile() string {
	return KindUser + "#profile"
}

func skBankAccount(accountID string) string {
	return KindBankAccount + "#" + accountID
}

func skCreditCard(cardID string) string {
	return KindCreditCard + "#" + cardID
}

func skTransaction(transactionID string) string {
	return KindTransaction + "#" + transactionID
}

func skDailyBalance(accountID string, date core.Date) string {
	return KindDailyBalance + "#" + accountID + "#" + date.ISO()
}

func (r *Repository) put(ctx context.Context, pk, sk, kind string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", kind, err)
	}
	return r.store.Put(ctx, Record{
		PK:        pk,
		SK:        sk,
		Kind:      kind,
		Data:      data,
		UpdatedAt: time.Now().UTC(),
	})
}

// --- user profile ---

func (r *Repository) SaveUserProfile(ctx context.Context, p core.UserProfile) error {
	return r.put(ctx, p.UserID, skUserProfile(), KindUser, p)
}

// UserProfile returns the owner's profile, or nil when none is stored yet.
func (r *Repository) UserProfile(ctx context.Context, userID string) (*core.UserProfile, error) {
	rec, err := r.store.Get(ctx, userID, skUserProfile())
	if err != nil || rec == nil {
		return nil, err
	}
	var p core.UserProfile
	if err := json.Unmarshal(rec.Data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal user profile: %w", err)
	}
	return &p, nil
}

// --- bank accounts ---

func (r *Repository) SaveBankAccount(ctx context.Context, b core.BankAccount) error {
	return r.put(ctx, b.UserID, skBankAccount(b.AccountID), KindBankAccount, b)
}

func (r *Repository) BankAccount(ctx context.Context, userID, accountID string) (*core.BankAccount, error) {
	rec, err := r.store.Get(ctx, userID, skBankAccount(accountID))
	if err != nil || rec == nil {
		return nil, err
	}
	var b core.BankAccount
	if err := json.Unmarshal(rec.Data, &b); err != nil {
		return nil, fmt.Errorf("unmarshal bank account: %w", err)
	}
	return &b, nil
}

// ListBankAccounts walks the whole table with a kind filter. A missing
// collection degrades to an empty list. O(table size), which is fine at
// household scale.
func (r *Repository) ListBankAccounts(ctx context.Context, userID string) ([]core.BankAccount, error) {
	recs, err := r.store.Scan(ctx, func(rec Record) bool {
		return rec.Kind == KindBankAccount && rec.PK == userID
	})
	if err != nil {
		return nil, err
	}
	out := make([]core.BankAccount, 0, len(recs))
	for _, rec := range recs {
		var b core.BankAccount
		if err := json.Unmarshal(rec.Data, &b); err != nil {
			return nil, fmt.Errorf("unmarshal bank account %s: %w", rec.SK, err)
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}

func (r *Repository) DeleteBankAccount(ctx context.Context, userID, accountID string) error {
	return r.store.Delete(ctx, userID, skBankAccount(accountID))
}

// --- credit cards ---

func (r *Repository) SaveCreditCard(ctx context.Context, c core.CreditCard) error {
	return r.put(ctx, c.UserID, skCreditCard(c.CardID), KindCreditCard, c)
}

func (r *Repository) CreditCard(ctx context.Context, userID, cardID string) (*core.CreditCard, error) {
	rec, err := r.store.Get(ctx, userID, skCreditCard(cardID))
	if err != nil || rec == nil {
		return nil, err
	}
	var c core.CreditCard
	if err := json.Unmarshal(rec.Data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal credit card: %w", err)
	}
	return &c, nil
}

// ListCreditCards scans with a kind filter, like ListBankAccounts.
func (r *Repository) ListCreditCards(ctx context.Context, userID string) ([]core.CreditCard, error) {
	recs, err := r.store.Scan(ctx, func(rec Record) bool {
		return rec.Kind == KindCreditCard && rec.PK == userID
	})
	if err != nil {
		return nil, err
	}
	out := make([]core.CreditCard, 0, len(recs))
	for _, rec := range recs {
		var c core.CreditCard
		if err := json.Unmarshal(rec.Data, &c); err != nil {
			return nil, fmt.Errorf("unmarshal credit card %s: %w", rec.SK, err)
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CardID < out[j].CardID })
	return out, nil
}

func (r *Repository) DeleteCreditCard(ctx context.Context, userID, cardID string) error {
	return r.store.Delete(ctx, userID, skCreditCard(cardID))
}

// --- transactions ---

func (r *Repository) SaveTransaction(ctx context.Context, tx core.Transaction) error {
	return r.put(ctx, tx.UserID, skTransaction(tx.TransactionID), KindTransaction, tx)
}

// ListTransactions returns the owner's transactions, newest first.
func (r *Repository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	txs, err := r.queryTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].CreatedAt.After(txs[j].CreatedAt) })
	return txs, nil
}

// TransactionsInRange returns the owner's transactions with a date inside
// the inclusive [start, end] range, in stable store order. Account
// matching is the caller's concern.
func (r *Repository) TransactionsInRange(ctx context.Context, userID string, start, end core.Date) ([]core.Transaction, error) {
	txs, err := r.queryTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	from, to := start.ISO(), end.ISO()
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if d := tx.Date.ISO(); d >= from && d <= to {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *Repository) queryTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	recs, err := r.store.Query(ctx, userID, QueryOptions{Prefix: KindTransaction + "#"})
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(recs))
	for _, rec := range recs {
		var tx core.Transaction
		if err := json.Unmarshal(rec.Data, &tx); err != nil {
			return nil, fmt.Errorf("unmarshal transaction %s: %w", rec.SK, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

func (r *Repository) Transaction(ctx context.Context, userID, transactionID string) (*core.Transaction, error) {
	rec, err := r.store.Get(ctx, userID, skTransaction(transactionID))
	if err != nil || rec == nil {
		return nil, err
	}
	var tx core.Transaction
	if err := json.Unmarshal(rec.Data, &tx); err != nil {
		return nil, fmt.Errorf("unmarshal transaction: %w", err)
	}
	return &tx, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	return r.store.Delete(ctx, userID, skTransaction(transactionID))
}

// --- daily balances ---

// SaveDailyBalance is an unconditional upsert on (owner, accountId, date).
// Last writer wins; there is no merge with a previous snapshot.
func (r *Repository) SaveDailyBalance(ctx context.Context, b core.DailyBalance) error {
	return r.put(ctx, b.UserID, skDailyBalance(b.AccountID, b.Date), KindDailyBalance, b)
}

// DailyBalance is the point lookup used for seed resolution. A miss is
// (nil, nil), indistinguishable from "never recalculated".
func (r *Repository) DailyBalance(ctx context.Context, userID, accountID string, date core.Date) (*core.DailyBalance, error) {
	rec, err := r.store.Get(ctx, userID, skDailyBalance(accountID, date))
	if err != nil || rec == nil {
		return nil, err
	}
	var b core.DailyBalance
	if err := json.Unmarshal(rec.Data, &b); err != nil {
		return nil, fmt.Errorf("unmarshal daily balance: %w", err)
	}
	return &b, nil
}

// AccountDailyBalances returns an account's snapshots ascending by date.
// Zero start/end dates leave that side of the range open.
func (r *Repository) AccountDailyBalances(ctx context.Context, userID, accountID string, start, end core.Date) ([]core.DailyBalance, error) {
	recs, err := r.store.Query(ctx, userID, QueryOptions{
		Prefix: KindDailyBalance + "#" + accountID + "#",
	})
	if err != nil {
		return nil, err
	}
	out := make([]core.DailyBalance, 0, len(recs))
	for _, rec := range recs {
		var b core.DailyBalance
		if err := json.Unmarshal(rec.Data, &b); err != nil {
			return nil, fmt.Errorf("unmarshal daily balance %s: %w", rec.SK, err)
		}
		if !start.IsZero() && b.Date.ISO() < start.ISO() {
			continue
		}
		if !end.IsZero() && b.Date.ISO() > end.ISO() {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// DailyBalancesByDate returns every account's snapshot for one date. This
// is a filtered scan: snapshots are keyed per account, so no single
// partition prefix covers "all accounts on date d".
func (r *Repository) DailyBalancesByDate(ctx context.Context, userID string, date core.Date) ([]core.DailyBalance, error) {
	suffix := "#" + date.ISO()
	recs, err := r.store.Scan(ctx, func(rec Record) bool {
		return rec.Kind == KindDailyBalance && rec.PK == userID && strings.HasSuffix(rec.SK, suffix)
	})
	if err != nil {
		return nil, err
	}
	out := make([]core.DailyBalance, 0, len(recs))
	for _, rec := range recs {
		var b core.DailyBalance
		if err := json.Unmarshal(rec.Data, &b); err != nil {
			return nil, fmt.Errorf("unmarshal daily balance %s: %w", rec.SK, err)
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}

// --- categories ---

func (r *Repository) SaveCategory(ctx context.Context, c core.Category) error {
	return r.put(ctx, c.UserID, KindCategory+"#"+c.CategoryID, KindCategory, c)
}

func (r *Repository) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	recs, err := r.store.Query(ctx, userID, QueryOptions{Prefix: KindCategory + "#"})
	if err != nil {
		return nil, err
	}
	out := make([]core.Category, 0, len(recs))
	for _, rec := range recs {
		var c core.Category
		if err := json.Unmarshal(rec.Data, &c); err != nil {
			return nil, fmt.Errorf("unmarshal category %s: %w", rec.SK, err)
		}
		out = append(out, c)
	}
	return out, nil
}
