package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/spendtrack/spendtrack-go/internal/model"
)

var ErrExpenseNotFound = errors.New("expense not found")

const expenseColumns = `id, user_id, amount, description, category, date, created_at, updated_at`

// ExpenseRepository handles expense persistence operations. Every read and
// mutation is scoped by owner id; a row owned by another user is
// indistinguishable from a missing row.
type ExpenseRepository struct {
	db *sql.DB
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create inserts a new expense and sets the generated ID on the expense struct.
func (r *ExpenseRepository) Create(ctx context.Context, e *model.Expense) error {
	query := `INSERT INTO expenses (user_id, amount, description, category, date) VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, e.UserID, e.Amount, e.Description, string(e.Category), e.Date)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	e.ID = id
	return nil
}

// GetByID retrieves an expense by id, scoped to its owner.
func (r *ExpenseRepository) GetByID(ctx context.Context, id, userID int64) (*model.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ? AND user_id = ?`

	e := &model.Expense{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&e.ID, &e.UserID, &e.Amount, &e.Description, &e.Category, &e.Date, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}

	return e, nil
}

// Update replaces the amount, description, category and effective date of an
// expense in a single owner-scoped statement. The pool connects with
// clientFoundRows, so RowsAffected counts matched rows and an update that
// rewrites identical values still succeeds.
func (r *ExpenseRepository) Update(ctx context.Context, e *model.Expense) error {
	query := `UPDATE expenses SET amount = ?, description = ?, category = ?, date = ?
		WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query, e.Amount, e.Description, string(e.Category), e.Date, e.ID, e.UserID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrExpenseNotFound
	}

	return nil
}

// Delete removes an expense in a single owner-scoped statement.
func (r *ExpenseRepository) Delete(ctx context.Context, id, userID int64) error {
	query := `DELETE FROM expenses WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrExpenseNotFound
	}

	return nil
}

// ListByUser retrieves all expenses for a user, newest effective date first.
func (r *ExpenseRepository) ListByUser(ctx context.Context, userID int64) ([]model.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE user_id = ? ORDER BY date DESC, id DESC`

	return r.list(ctx, query, userID)
}

// ListRecent retrieves the latest n expenses for a user by effective date.
func (r *ExpenseRepository) ListRecent(ctx context.Context, userID int64, n int) ([]model.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE user_id = ? ORDER BY date DESC, id DESC LIMIT ?`

	return r.list(ctx, query, userID, n)
}

func (r *ExpenseRepository) list(ctx context.Context, query string, args ...any) ([]model.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Amount, &e.Description, &e.Category, &e.Date, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}
