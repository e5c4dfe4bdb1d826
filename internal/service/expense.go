package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendtrack/spendtrack-go/internal/model"
	"github.com/spendtrack/spendtrack-go/internal/repository"
)

var (
	ErrInvalidAmount       = errors.New("please provide a valid amount")
	ErrDescriptionRequired = errors.New("please provide a description")
	ErrInvalidCategory     = errors.New("please provide a valid category")
	ErrInvalidDate         = errors.New("please provide a valid date")
	ErrExpenseNotFound     = errors.New("expense not found or unauthorized")
)

// ExpenseStore is the expense persistence contract the service depends on.
// All reads and mutations are owner-scoped.
type ExpenseStore interface {
	Create(ctx context.Context, e *model.Expense) error
	GetByID(ctx context.Context, id, userID int64) (*model.Expense, error)
	Update(ctx context.Context, e *model.Expense) error
	Delete(ctx context.Context, id, userID int64) error
	ListByUser(ctx context.Context, userID int64) ([]model.Expense, error)
	ListRecent(ctx context.Context, userID int64, n int) ([]model.Expense, error)
}

// ExpenseService handles expense CRUD business logic.
type ExpenseService struct {
	store ExpenseStore
	now   func() time.Time
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(store ExpenseStore) *ExpenseService {
	return &ExpenseService{store: store, now: time.Now}
}

// Create validates and persists a new expense for a user.
func (s *ExpenseService) Create(ctx context.Context, userID int64, req model.ExpenseRequest) (model.ExpenseResponse, error) {
	fields, err := s.validate(req)
	if err != nil {
		return model.ExpenseResponse{}, err
	}

	expense := &model.Expense{
		UserID:      userID,
		Amount:      fields.amount,
		Description: fields.description,
		Category:    fields.category,
		Date:        fields.date,
	}

	if err := s.store.Create(ctx, expense); err != nil {
		return model.ExpenseResponse{}, err
	}

	// Re-read the row so the response carries the store-assigned timestamps.
	created, err := s.store.GetByID(ctx, expense.ID, userID)
	if err != nil {
		return model.ExpenseResponse{}, err
	}

	return expenseResponse(created), nil
}

// Update validates and fully replaces the four mutable fields of an expense.
// An expense owned by another user reports ErrExpenseNotFound.
func (s *ExpenseService) Update(ctx context.Context, userID, id int64, req model.ExpenseRequest) (model.ExpenseResponse, error) {
	fields, err := s.validate(req)
	if err != nil {
		return model.ExpenseResponse{}, err
	}

	expense := &model.Expense{
		ID:          id,
		UserID:      userID,
		Amount:      fields.amount,
		Description: fields.description,
		Category:    fields.category,
		Date:        fields.date,
	}

	if err := s.store.Update(ctx, expense); err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return model.ExpenseResponse{}, ErrExpenseNotFound
		}
		return model.ExpenseResponse{}, err
	}

	updated, err := s.store.GetByID(ctx, id, userID)
	if err != nil {
		return model.ExpenseResponse{}, err
	}

	return expenseResponse(updated), nil
}

// Delete removes an expense owned by the given user.
func (s *ExpenseService) Delete(ctx context.Context, userID, id int64) error {
	err := s.store.Delete(ctx, id, userID)
	if errors.Is(err, repository.ErrExpenseNotFound) {
		return ErrExpenseNotFound
	}
	return err
}

// List returns all expenses for a user, newest effective date first.
func (s *ExpenseService) List(ctx context.Context, userID int64) ([]model.ExpenseResponse, error) {
	expenses, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return expensesToResponse(expenses), nil
}

// Recent returns the latest n expenses for a user.
func (s *ExpenseService) Recent(ctx context.Context, userID int64, n int) ([]model.ExpenseResponse, error) {
	expenses, err := s.store.ListRecent(ctx, userID, n)
	if err != nil {
		return nil, err
	}

	return expensesToResponse(expenses), nil
}

type expenseFields struct {
	amount      decimal.Decimal
	description string
	category    model.Category
	date        time.Time
}

// validate enforces the expense invariants before any write: a strictly
// positive amount normalized to two fractional digits, a non-empty trimmed
// description and a category from the closed set.
func (s *ExpenseService) validate(req model.ExpenseRequest) (expenseFields, error) {
	if !req.Amount.IsPositive() {
		return expenseFields{}, ErrInvalidAmount
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return expenseFields{}, ErrDescriptionRequired
	}

	category := model.Category(strings.TrimSpace(req.Category))
	if !category.Valid() {
		return expenseFields{}, ErrInvalidCategory
	}

	date := s.now()
	if req.Date != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			return expenseFields{}, ErrInvalidDate
		}
		date = parsed
	}

	return expenseFields{
		amount:      req.Amount.Round(2),
		description: description,
		category:    category,
		date:        date,
	}, nil
}

// parseDate accepts RFC 3339 timestamps and bare dates.
func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

func expenseResponse(e *model.Expense) model.ExpenseResponse {
	return model.ExpenseResponse{
		ID:          e.ID,
		UserID:      e.UserID,
		Amount:      e.Amount,
		Description: e.Description,
		Category:    e.Category,
		Date:        e.Date,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func expensesToResponse(expenses []model.Expense) []model.ExpenseResponse {
	result := make([]model.ExpenseResponse, len(expenses))
	for i := range expenses {
		result[i] = expenseResponse(&expenses[i])
	}
	return result
}
