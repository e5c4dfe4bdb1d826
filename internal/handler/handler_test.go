package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/spendtrack/spendtrack-go/internal/crypto"
	"github.com/spendtrack/spendtrack-go/internal/middleware"
	"github.com/spendtrack/spendtrack-go/internal/model"
	"github.com/spendtrack/spendtrack-go/internal/repository"
	"github.com/spendtrack/spendtrack-go/internal/service"
)

type memUserStore struct {
	mu     sync.Mutex
	users  map[int64]model.User
	nextID int64
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[int64]model.User)}
}

func (s *memUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return repository.ErrDuplicateUser
		}
	}

	s.nextID++
	u.ID = s.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = *u
	return nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
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
		if u.Username == username {
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

// memExpenseStore stores CRUD rows for real and serves canned aggregation
// results so envelope shapes can be pinned per test.
type memExpenseStore struct {
	mu       sync.Mutex
	expenses map[int64]model.Expense
	nextID   int64

	categoryTotals []model.CategoryTotal
	monthlyTotals  []model.MonthlyTotal
	dailyTotals    []model.DailyTotal
	monthTotal     decimal.Decimal
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

	var out []model.Expense
	for _, e := range s.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *memExpenseStore) ListRecent(ctx context.Context, userID int64, n int) ([]model.Expense, error) {
	out, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *memExpenseStore) CategoryTotals(_ context.Context, _ int64, _, _, limit int) ([]model.CategoryTotal, error) {
	out := s.categoryTotals
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memExpenseStore) MonthlyTotals(_ context.Context, _ int64, _ repository.MonthlyOrder, limit int) ([]model.MonthlyTotal, error) {
	out := s.monthlyTotals
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memExpenseStore) DailyTotals(_ context.Context, _ int64, _, _ int) ([]model.DailyTotal, error) {
	return s.dailyTotals, nil
}

func (s *memExpenseStore) MonthTotal(_ context.Context, _ int64, _, _ int) (decimal.Decimal, error) {
	return s.monthTotal, nil
}

// testEnv wires the handlers over in-memory stores with the same routes the
// server mounts.
type testEnv struct {
	router   *chi.Mux
	users    *memUserStore
	expenses *memExpenseStore
}

func newTestEnv() *testEnv {
	users := newMemUserStore()
	expenses := newMemExpenseStore()
	tokens := crypto.NewTokenManager("test-secret", "spendtrack", "spendtrack-api", time.Hour)

	auth := NewAuthHandler(service.NewAuthService(users, tokens))
	crud := NewExpenseHandler(service.NewExpenseService(expenses))
	reports := NewReportHandler(service.NewReportService(expenses))

	r := chi.NewRouter()
	r.Post("/auth/register", auth.HandleRegister)
	r.Post("/auth/login", auth.HandleLogin)
	r.Get("/auth/me", auth.HandleMe)

	r.Get("/expenses", crud.HandleList)
	r.Post("/expenses", crud.HandleCreate)
	r.Put("/expenses/{id}", crud.HandleUpdate)
	r.Delete("/expenses/{id}", crud.HandleDelete)

	r.Get("/expenses/recent", crud.HandleRecent)
	r.Get("/expenses/categories", reports.HandleCategories)
	r.Get("/expenses/top-category", reports.HandleTopCategory)
	r.Get("/expenses/monthly", reports.HandleMonthly)
	r.Get("/expenses/monthly-summary", reports.HandleMonthlySummary)
	r.Get("/expenses/monthly-totals", reports.HandleMonthlyTotals)
	r.Get("/expenses/current-month-total", reports.HandleCurrentMonthTotal)
	r.Get("/expenses/daily", reports.HandleDaily)

	return &testEnv{router: r, users: users, expenses: expenses}
}

// do issues a request against the test router. A non-zero userID is injected
// into the request context the way the auth middleware does after validating
// a token.
func (e *testEnv) do(t *testing.T, method, target string, userID int64, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, reader)
	if userID != 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decodeInto(t, rec, &body)
	return body["message"]
}
