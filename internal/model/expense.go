package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies an expense. The set is closed and mirrored by the
// ENUM column on the expenses table.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryEntertainment Category = "Entertainment"
	CategoryBills         Category = "Bills"
	CategoryShopping      Category = "Shopping"
	CategoryOthers        Category = "Others"
)

// Categories returns every valid expense category.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransport,
		CategoryEntertainment,
		CategoryBills,
		CategoryShopping,
		CategoryOthers,
	}
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryEntertainment,
		CategoryBills, CategoryShopping, CategoryOthers:
		return true
	}
	return false
}

// Expense represents an expense record in the database. Date is the
// user-supplied effective date, distinct from CreatedAt.
type Expense struct {
	ID          int64
	UserID      int64
	Amount      decimal.Decimal
	Description string
	Category    Category
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ExpenseRequest represents the body of a create or update expense request.
// Date is optional; when empty the effective date defaults to the current time.
type ExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        string          `json:"date,omitempty"`
}

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CategoryTotal is one row of a per-category aggregation.
type CategoryTotal struct {
	Name  Category        `json:"name"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// MonthlyTotal is one row of a per-month aggregation with a numeric month.
type MonthlyTotal struct {
	Month int             `json:"month"`
	Year  int             `json:"year"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// NamedMonthTotal is a per-month total with the month rendered as an
// English month name, as the dashboard expects.
type NamedMonthTotal struct {
	Month string          `json:"month"`
	Year  int             `json:"year"`
	Total decimal.Decimal `json:"total"`
}

// DailyTotal is one row of a per-day aggregation within a single month.
type DailyTotal struct {
	Day   int             `json:"day"`
	Total decimal.Decimal `json:"total"`
}
