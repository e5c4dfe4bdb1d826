package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendtrack/spendtrack-go/internal/model"
	"github.com/spendtrack/spendtrack-go/internal/repository"
)

// memUserStore is an in-memory UserStore for service tests. It returns the
// same sentinel errors as the MySQL repository.
type memUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[int64]model.User)}
}

func (s *memUserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) || strings.EqualFold(u.Username, user.Username) {
			return repository.ErrDuplicateUser
		}
	}

	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = *user
	return nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

// memExpenseStore is an in-memory expense store implementing both
// ExpenseStore and ReportStore, so expense and aggregation semantics can be
// exercised without MySQL.
type memExpenseStore struct {
	mu       sync.Mutex
	nextID   int64
	expenses map[int64]model.Expense
}

func newMemExpenseStore() *memExpenseStore {
	return &memExpenseStore{expenses: make(map[int64]model.Expense)}
}

func (s *memExpenseStore) Create(_ context.Context, e *model.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	e.ID = s.nextID
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	s.expenses[e.ID] = *e
	return nil
}

func (s *memExpenseStore) GetByID(_ context.Context, id, userID int64) (*model.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenses[id]
	if !ok || e.UserID != userID {
		return nil, repository.ErrExpenseNotFound
	}
	return &e, nil
}

func (s *memExpenseStore) Update(_ context.Context, in *model.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenses[in.ID]
	if !ok || e.UserID != in.UserID {
		return repository.ErrExpenseNotFound
	}

	e.Amount = in.Amount
	e.Description = in.Description
	e.Category = in.Category
	e.Date = in.Date
	e.UpdatedAt = time.Now()
	s.expenses[in.ID] = e
	return nil
}

func (s *memExpenseStore) Delete(_ context.Context, id, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenses[id]
	if !ok || e.UserID != userID {
		return repository.ErrExpenseNotFound
	}
	delete(s.expenses, id)
	return nil
}

func (s *memExpenseStore) ListByUser(_ context.Context, userID int64) ([]model.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(userID), nil
}

func (s *memExpenseStore) ListRecent(_ context.Context, userID int64, n int) ([]model.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.listLocked(userID)
	if len(list) > n {
		list = list[:n]
	}
	return list, nil
}

func (s *memExpenseStore) listLocked(userID int64) []model.Expense {
	var list []model.Expense
	for _, e := range s.expenses {
		if e.UserID == userID {
			list = append(list, e)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].ID > list[j].ID
	})
	return list
}

func (s *memExpenseStore) CategoryTotals(_ context.Context, userID int64, month, year, limit int) ([]model.CategoryTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byCategory := make(map[model.Category]*model.CategoryTotal)
	for _, e := range s.expenses {
		if e.UserID != userID {
			continue
		}
		if month != 0 && year != 0 && (int(e.Date.Month()) != month || e.Date.Year() != year) {
			continue
		}
		t, ok := byCategory[e.Category]
		if !ok {
			t = &model.CategoryTotal{Name: e.Category}
			byCategory[e.Category] = t
		}
		t.Total = t.Total.Add(e.Amount)
		t.Count++
	}

	var totals []model.CategoryTotal
	for _, t := range byCategory {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Total.GreaterThan(totals[j].Total)
	})
	if limit > 0 && len(totals) > limit {
		totals = totals[:limit]
	}
	return totals, nil
}

func (s *memExpenseStore) MonthlyTotals(_ context.Context, userID int64, order repository.MonthlyOrder, limit int) ([]model.MonthlyTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type ym struct{ year, month int }
	byMonth := make(map[ym]*model.MonthlyTotal)
	for _, e := range s.expenses {
		if e.UserID != userID {
			continue
		}
		key := ym{e.Date.Year(), int(e.Date.Month())}
		t, ok := byMonth[key]
		if !ok {
			t = &model.MonthlyTotal{Year: key.year, Month: key.month}
			byMonth[key] = t
		}
		t.Total = t.Total.Add(e.Amount)
		t.Count++
	}

	var totals []model.MonthlyTotal
	for _, t := range byMonth {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool {
		a, b := totals[i], totals[j]
		switch order {
		case repository.MonthlyOrderChronological:
			if a.Year != b.Year {
				return a.Year < b.Year
			}
			return a.Month < b.Month
		case repository.MonthlyOrderTotalDesc:
			return a.Total.GreaterThan(b.Total)
		default:
			if a.Year != b.Year {
				return a.Year > b.Year
			}
			return a.Month > b.Month
		}
	})
	if limit > 0 && len(totals) > limit {
		totals = totals[:limit]
	}
	return totals, nil
}

func (s *memExpenseStore) DailyTotals(_ context.Context, userID int64, year, month int) ([]model.DailyTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byDay := make(map[int]decimal.Decimal)
	for _, e := range s.expenses {
		if e.UserID != userID || e.Date.Year() != year || int(e.Date.Month()) != month {
			continue
		}
		byDay[e.Date.Day()] = byDay[e.Date.Day()].Add(e.Amount)
	}

	var totals []model.DailyTotal
	for day, total := range byDay {
		totals = append(totals, model.DailyTotal{Day: day, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Day < totals[j].Day })
	return totals, nil
}

func (s *memExpenseStore) MonthTotal(_ context.Context, userID int64, year, month int) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, e := range s.expenses {
		if e.UserID == userID && e.Date.Year() == year && int(e.Date.Month()) == month {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}
