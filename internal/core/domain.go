package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Type = "income"
	Expense Type = "expense"
	Savings Type = "savings"
)

const (
	Work           Category = "Work"
	Housing        Category = "Housing"
	Food           Category = "Food"
	Transportation Category = "Transportation"
	Utilities      Category = "Utilities"
	Shopping       Category = "Shopping"
	Health         Category = "Health"
	Fun            Category = "Fun"
	SavingsGoal    Category = "Savings"
	Other          Category = "Other"
)

// DateLayout is the calendar date layout used by forms and query strings.
const DateLayout = "2006-01-02"

type (
	// Type classifies a transaction and decides its sign.
	Type string

	Category string

	// Date is a calendar date. Only year, month and day are meaningful.
	Date struct {
		time.Time
	}

	// Transaction is one immutable ledger record. Amount is signed:
	// expenses are negative, income and savings are non-negative.
	Transaction struct {
		Timestamp   time.Time       `json:"timestamp"`
		Description string          `json:"description"`
		Category    Category        `json:"category"`
		Amount      decimal.Decimal `json:"amount"`
		Type        Type            `json:"type"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrUnknownType     = errors.New("unknown transaction type")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidDate     = errors.New("invalid date")
)

// Types lists the transaction types in the order the input form offers them.
func Types() []Type {
	return []Type{Income, Expense, Savings}
}

// Categories lists the fixed category set.
func Categories() []Category {
	return []Category{Work, Housing, Food, Transportation, Utilities, Shopping, Health, Fun, SavingsGoal, Other}
}

// ParseType trims and lower-cases s. The result is not checked against Types.
func ParseType(s string) Type {
	return Type(strings.ToLower(strings.TrimSpace(s)))
}

func (t Type) String() string {
	return string(t)
}

// IsKnown reports whether t is one of income, expense or savings.
func (t Type) IsKnown() bool {
	switch t {
	case Income, Expense, Savings:
		return true
	default:
		return false
	}
}

// Validate returns ErrUnknownType for values outside the enumeration.
func (t Type) Validate() error {
	if !t.IsKnown() {
		return ErrUnknownType
	}
	return nil
}

func (c Category) String() string {
	return string(c)
}

// IsKnown reports whether c is part of the fixed category set.
func (c Category) IsKnown() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) Validate() error {
	if !c.IsKnown() {
		return ErrUnknownCategory
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to
// or after other, looking at the calendar date only.
func (d Date) Compare(other Date) int {
	a, b := d.key(), other.key()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (d Date) key() int {
	y, m, day := d.Time.Date()
	return y*10000 + int(m)*100 + day
}

// IsEmpty returns true if the date is zero (for optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Date returns the calendar date of the transaction timestamp.
func (t Transaction) Date() Date {
	return DateOf(t.Timestamp)
}

// Validate checks the invariants every persisted transaction must satisfy:
// a timestamp, a non-empty type and a sign that matches the type.
func (t Transaction) Validate() error {
	if t.Timestamp.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(string(t.Type)) == "" {
		return ErrUnknownType
	}
	if t.Type == Expense && t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if t.Type != Expense && t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// MarshalJSON encodes the date as "YYYY-MM-DD", or null when empty.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD", an empty string or null.
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
