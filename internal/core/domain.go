package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// CashAccountID is the synthetic account id for the single cash account.
	CashAccountID = "cash"

	// Prefixes for account ids derived from stored bank / credit records.
	BankAccountPrefix   = "bank-"
	CreditAccountPrefix = "credit-"
)

const (
	AccountCash   AccountType = "cash"
	AccountBank   AccountType = "bank"
	AccountCredit AccountType = "credit"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	AccountType     string
	TransactionType string

	// Date is a calendar date. Its ISO form (YYYY-MM-DD) is what gets
	// persisted and compared, so lexicographic order equals chronological
	// order everywhere dates are sorted.
	Date struct {
		time.Time
	}

	// Account is synthesized at recalculation time, not stored as its own
	// record: one cash account plus one entry per bank account and credit
	// card record.
	Account struct {
		AccountID      string          `json:"accountId"`
		AccountType    AccountType     `json:"accountType"`
		AccountName    string          `json:"accountName"`
		OriginalID     string          `json:"originalId,omitempty"`
		InitialBalance decimal.Decimal `json:"initialBalance"`
	}

	Transaction struct {
		UserID        string          `json:"userId"`
		TransactionID string          `json:"transactionId"`
		Type          TransactionType `json:"type"`
		Amount        decimal.Decimal `json:"amount"`
		Category      string          `json:"category"`
		Subcategory   string          `json:"subcategory,omitempty"`
		Memo          string          `json:"memo,omitempty"`
		AccountType   AccountType     `json:"accountType"`
		AccountID     string          `json:"accountId,omitempty"`
		Date          Date            `json:"date"`
		CreatedAt     time.Time       `json:"createdAt"`
	}

	BankAccount struct {
		UserID    string          `json:"userId"`
		AccountID string          `json:"accountId"`
		BankName  string          `json:"bankName"`
		Balance   decimal.Decimal `json:"balance"`
		CreatedAt time.Time       `json:"createdAt"`
		UpdatedAt time.Time       `json:"updatedAt,omitempty"`
	}

	CreditCard struct {
		UserID              string    `json:"userId"`
		CardID              string    `json:"cardId"`
		CardName            string    `json:"cardName"`
		WithdrawalAccountID string    `json:"withdrawalAccountId"`
		ClosingDay          int       `json:"closingDay"`
		WithdrawalMonth     string    `json:"withdrawalMonth"`
		WithdrawalDay       int       `json:"withdrawalDay"`
		CreatedAt           time.Time `json:"createdAt"`
		UpdatedAt           time.Time `json:"updatedAt"`
	}

	// UserProfile carries per-owner settings, currently just the opening
	// cash balance.
	UserProfile struct {
		UserID         string          `json:"userId"`
		InitialBalance decimal.Decimal `json:"initialBalance"`
		UpdatedAt      time.Time       `json:"updatedAt"`
	}

	// DailyBalance is a persisted running-balance snapshot for one account
	// on one calendar date. At most one exists per (owner, accountId, date);
	// recalculation overwrites it whole.
	DailyBalance struct {
		UserID           string          `json:"userId"`
		AccountID        string          `json:"accountId"`
		Date             Date            `json:"date"`
		Balance          decimal.Decimal `json:"balance"`
		TransactionCount int             `json:"transactionCount"`
		UpdatedAt        time.Time       `json:"updatedAt"`
	}

	Category struct {
		UserID        string          `json:"userId"`
		CategoryID    string          `json:"categoryId"`
		Type          TransactionType `json:"type"`
		Name          string          `json:"name"`
		Subcategories []string        `json:"subcategories,omitempty"`
		CreatedAt     time.Time       `json:"createdAt"`
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyName          = errors.New("empty name")
)

const isoDate = "2006-01-02"

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(isoDate, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ISO returns the date in YYYY-MM-DD form.
func (d Date) ISO() string {
	return d.Format(isoDate)
}

// Prev returns the previous calendar day.
func (d Date) Prev() Date {
	return Date{Time: d.AddDate(0, 0, -1)}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.ISO() < other.ISO()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Matches reports whether tx belongs to this account: the cash account
// owns every cash-typed transaction, bank and credit accounts own the
// transactions recorded against their underlying record id. Matching is
// exact equality, never partial.
func (a Account) Matches(tx Transaction) bool {
	switch a.AccountType {
	case AccountCash:
		return tx.AccountType == AccountCash
	case AccountBank, AccountCredit:
		return tx.AccountID == a.OriginalID
	}
	return false
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

func (a AccountType) Validate() error {
	switch a {
	case AccountCash, AccountBank, AccountCredit:
		return nil
	}
	return ErrInvalidAccountType
}

func (tx Transaction) Validate() error {
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if err := tx.AccountType.Validate(); err != nil {
		return err
	}
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	if tx.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(tx.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (b BankAccount) Validate() error {
	if strings.TrimSpace(b.BankName) == "" {
		return ErrEmptyName
	}
	return nil
}

func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.CardName) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(c.WithdrawalAccountID) == "" {
		return fmt.Errorf("missing withdrawal account: %w", ErrValidation)
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 {
		return fmt.Errorf("closing day out of range: %w", ErrValidation)
	}
	if c.WithdrawalDay < 1 || c.WithdrawalDay > 31 {
		return fmt.Errorf("withdrawal day out of range: %w", ErrValidation)
	}
	if c.WithdrawalMonth == "" {
		return fmt.Errorf("missing withdrawal month: %w", ErrValidation)
	}
	return nil
}

func (c Category) Validate() error {
	if err := c.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}
