package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendtrack/spendtrack-go/internal/model"
	"github.com/spendtrack/spendtrack-go/internal/repository"
)

// ErrInvalidMonth reports a month outside 1-12 or a month/year filter with
// only one of the two values present.
var ErrInvalidMonth = errors.New("please provide a valid month and year")

// DefaultRecentLimit is the number of expenses in the recent feed.
const DefaultRecentLimit = 5

// ReportStore is the aggregation contract the report service depends on.
type ReportStore interface {
	CategoryTotals(ctx context.Context, userID int64, month, year, limit int) ([]model.CategoryTotal, error)
	MonthlyTotals(ctx context.Context, userID int64, order repository.MonthlyOrder, limit int) ([]model.MonthlyTotal, error)
	DailyTotals(ctx context.Context, userID int64, year, month int) ([]model.DailyTotal, error)
	MonthTotal(ctx context.Context, userID int64, year, month int) (decimal.Decimal, error)
}

// ReportService shapes on-demand aggregations over a single user's expenses.
// A user with no expenses always yields empty collections or nil "top"
// results, never an error.
type ReportService struct {
	store ReportStore
	now   func() time.Time
}

// NewReportService creates a new ReportService.
func NewReportService(store ReportStore) *ReportService {
	return &ReportService{store: store, now: time.Now}
}

// CategoryTotals groups a user's expenses by category, ordered by total
// descending. month and year of 0 disable the date filter; providing only one
// of the two is rejected.
func (s *ReportService) CategoryTotals(ctx context.Context, userID int64, month, year int) ([]model.CategoryTotal, error) {
	if err := checkMonthFilter(month, year); err != nil {
		return nil, err
	}

	totals, err := s.store.CategoryTotals(ctx, userID, month, year, 0)
	if err != nil {
		return nil, err
	}

	if totals == nil {
		totals = []model.CategoryTotal{}
	}
	for i := range totals {
		totals[i].Total = totals[i].Total.Round(2)
	}
	return totals, nil
}

// TopCategory returns the single highest-spending category for a user, or nil
// when the user has no expenses.
func (s *ReportService) TopCategory(ctx context.Context, userID int64) (*model.CategoryTotal, error) {
	totals, err := s.store.CategoryTotals(ctx, userID, 0, 0, 1)
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return nil, nil
	}

	top := totals[0]
	top.Total = top.Total.Round(2)
	return &top, nil
}

// MonthlyTotals returns per-month totals and counts for every month with
// expenses, most recent month first.
func (s *ReportService) MonthlyTotals(ctx context.Context, userID int64) ([]model.MonthlyTotal, error) {
	totals, err := s.store.MonthlyTotals(ctx, userID, repository.MonthlyOrderRecent, 0)
	if err != nil {
		return nil, err
	}

	if totals == nil {
		totals = []model.MonthlyTotal{}
	}
	for i := range totals {
		totals[i].Total = totals[i].Total.Round(2)
	}
	return totals, nil
}

// MonthlySummary returns the chronological month-by-month spend series for
// the trend chart, with English month names.
func (s *ReportService) MonthlySummary(ctx context.Context, userID int64) ([]model.NamedMonthTotal, error) {
	totals, err := s.store.MonthlyTotals(ctx, userID, repository.MonthlyOrderChronological, 0)
	if err != nil {
		return nil, err
	}

	series := make([]model.NamedMonthTotal, len(totals))
	for i, t := range totals {
		series[i] = namedMonthTotal(t)
	}
	return series, nil
}

// HighestSpendingMonth returns the month with the largest total spend, or nil
// when the user has no expenses.
func (s *ReportService) HighestSpendingMonth(ctx context.Context, userID int64) (*model.NamedMonthTotal, error) {
	totals, err := s.store.MonthlyTotals(ctx, userID, repository.MonthlyOrderTotalDesc, 1)
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return nil, nil
	}

	top := namedMonthTotal(totals[0])
	return &top, nil
}

// CurrentMonthTotal returns the total spend for the current calendar month.
func (s *ReportService) CurrentMonthTotal(ctx context.Context, userID int64) (decimal.Decimal, error) {
	now := s.now()
	total, err := s.store.MonthTotal(ctx, userID, now.Year(), int(now.Month()))
	if err != nil {
		return decimal.Zero, err
	}
	return total.Round(2), nil
}

// DailySeries returns one row per calendar day of the given month. Days
// without expenses carry a zero total, so the series always has exactly as
// many rows as the month has days.
func (s *ReportService) DailySeries(ctx context.Context, userID int64, month, year int) ([]model.DailyTotal, error) {
	if month < 1 || month > 12 || year == 0 {
		return nil, ErrInvalidMonth
	}

	rows, err := s.store.DailyTotals(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}

	byDay := make(map[int]decimal.Decimal, len(rows))
	for _, row := range rows {
		byDay[row.Day] = row.Total
	}

	series := make([]model.DailyTotal, daysIn(year, month))
	for i := range series {
		day := i + 1
		series[i] = model.DailyTotal{Day: day, Total: byDay[day].Round(2)}
	}
	return series, nil
}

func checkMonthFilter(month, year int) error {
	if month == 0 && year == 0 {
		return nil
	}
	if month < 1 || month > 12 || year == 0 {
		return ErrInvalidMonth
	}
	return nil
}

// daysIn returns the number of calendar days in the given month, leap years
// included.
func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func namedMonthTotal(t model.MonthlyTotal) model.NamedMonthTotal {
	return model.NamedMonthTotal{
		Month: time.Month(t.Month).String(),
		Year:  t.Year,
		Total: t.Total.Round(2),
	}
}
