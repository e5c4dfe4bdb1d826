package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"github.com/spendtrack/spendtrack-go/internal/model"
)

// MonthlyOrder selects the ordering of a per-month aggregation.
type MonthlyOrder int

const (
	// MonthlyOrderRecent orders months newest first.
	MonthlyOrderRecent MonthlyOrder = iota
	// MonthlyOrderChronological orders months oldest first.
	MonthlyOrderChronological
	// MonthlyOrderTotalDesc orders months by total spend, highest first.
	MonthlyOrderTotalDesc
)

func (o MonthlyOrder) clause() string {
	switch o {
	case MonthlyOrderChronological:
		return "year, month"
	case MonthlyOrderTotalDesc:
		return "total DESC"
	default:
		return "year DESC, month DESC"
	}
}

// ReportRepository computes read-side aggregations over the expenses table.
// Every query is scoped to one user and computed on demand; nothing here is
// cached or materialized.
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// CategoryTotals groups a user's expenses by category, summing amounts and
// counting records, ordered by total descending. A month/year pair of (0, 0)
// disables date filtering, and a limit of 0 disables the row limit.
func (r *ReportRepository) CategoryTotals(ctx context.Context, userID int64, month, year, limit int) ([]model.CategoryTotal, error) {
	query := `SELECT category, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count
		FROM expenses
		WHERE user_id = ?`
	args := []any{userID}

	if month != 0 && year != 0 {
		query += ` AND MONTH(date) = ? AND YEAR(date) = ?`
		args = append(args, month, year)
	}

	query += ` GROUP BY category ORDER BY total DESC`

	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []model.CategoryTotal
	for rows.Next() {
		var t model.CategoryTotal
		if err := rows.Scan(&t.Name, &t.Total, &t.Count); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}

	return totals, rows.Err()
}

// MonthlyTotals groups a user's expenses by (year, month) of the effective
// date, summing amounts and counting records. A limit of 0 disables the row
// limit.
func (r *ReportRepository) MonthlyTotals(ctx context.Context, userID int64, order MonthlyOrder, limit int) ([]model.MonthlyTotal, error) {
	query := `SELECT YEAR(date) AS year, MONTH(date) AS month, SUM(amount) AS total, COUNT(*) AS count
		FROM expenses
		WHERE user_id = ?
		GROUP BY YEAR(date), MONTH(date)
		ORDER BY ` + order.clause()
	args := []any{userID}

	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []model.MonthlyTotal
	for rows.Next() {
		var t model.MonthlyTotal
		if err := rows.Scan(&t.Year, &t.Month, &t.Total, &t.Count); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}

	return totals, rows.Err()
}

// DailyTotals sums a user's expenses per day of the effective date within the
// given month. Only days with at least one expense produce a row; the service
// layer fills in the remaining calendar days.
func (r *ReportRepository) DailyTotals(ctx context.Context, userID int64, year, month int) ([]model.DailyTotal, error) {
	query := `SELECT DAY(date) AS day, SUM(amount) AS total
		FROM expenses
		WHERE user_id = ? AND YEAR(date) = ? AND MONTH(date) = ?
		GROUP BY DAY(date)
		ORDER BY day`

	rows, err := r.db.QueryContext(ctx, query, userID, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []model.DailyTotal
	for rows.Next() {
		var t model.DailyTotal
		if err := rows.Scan(&t.Day, &t.Total); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}

	return totals, rows.Err()
}

// MonthTotal returns the total spend for a user in the given month, zero when
// the month has no expenses.
func (r *ReportRepository) MonthTotal(ctx context.Context, userID int64, year, month int) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE user_id = ? AND YEAR(date) = ? AND MONTH(date) = ?`

	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, userID, year, month).Scan(&total); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}
