package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DailyResult is one day's outcome of a balance recalculation.
type DailyResult struct {
	Date             Date            `json:"date"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int             `json:"transactionCount"`
}

// AccumulateBalances walks the given transactions in calendar order and
// computes the running balance per day, starting from seed.
//
// Transactions are grouped by date and the distinct dates processed in
// ascending order; within a day the input order is preserved. Sign rules:
// cash and bank balances go up on income and down on expense; a credit
// balance is a liability that only grows, on expense; income entries
// against a credit account leave it untouched.
//
// One DailyResult is emitted per date that has at least one transaction.
// Dates in range without transactions produce nothing: callers reading a
// day's balance must fall back to the nearest earlier snapshot.
func AccumulateBalances(accountType AccountType, seed decimal.Decimal, txs []Transaction) ([]DailyResult, decimal.Decimal) {
	byDate := make(map[string][]Transaction)
	for _, tx := range txs {
		key := tx.Date.ISO()
		byDate[key] = append(byDate[key], tx)
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	balance := seed
	results := make([]DailyResult, 0, len(dates))
	for _, date := range dates {
		day := byDate[date]
		for _, tx := range day {
			balance = applyTransaction(accountType, balance, tx)
		}
		d, _ := ParseDate(date)
		results = append(results, DailyResult{
			Date:             d,
			Balance:          balance,
			TransactionCount: len(day),
		})
	}

	return results, balance
}

func applyTransaction(accountType AccountType, balance decimal.Decimal, tx Transaction) decimal.Decimal {
	switch accountType {
	case AccountCash, AccountBank:
		if tx.Type == Income {
			return balance.Add(tx.Amount)
		}
		return balance.Sub(tx.Amount)
	case AccountCredit:
		if tx.Type == Expense {
			return balance.Add(tx.Amount)
		}
	}
	return balance
}
