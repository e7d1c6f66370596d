package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/expenso-app/expenso-backend/internal/model"
	"github.com/expenso-app/expenso-backend/internal/store"
)

// ErrInvalidInput marks caller errors on transaction creation.
var ErrInvalidInput = errors.New("invalid input")

// FinanceService handles transaction CRUD and dashboard aggregation.
type FinanceService struct {
	store store.Store
	now   func() time.Time
}

func NewFinanceService(st store.Store) *FinanceService {
	return &FinanceService{
		store: st,
		now:   time.Now,
	}
}

// AddTransaction validates and persists a new transaction for the user.
func (s *FinanceService) AddTransaction(ctx context.Context, userID string, input model.TransactionInput) (*model.Transaction, error) {
	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %.2f", ErrInvalidInput, input.Amount)
	}
	if !input.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidInput, input.Type)
	}
	if input.Category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	if _, err := time.Parse(model.DateLayout, input.Date); err != nil {
		return nil, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidInput, input.Date)
	}

	txn := &model.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Amount:      input.Amount,
		Type:        input.Type,
		Category:    input.Category,
		Date:        input.Date,
		Description: input.Description,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return txn, nil
}

// ListTransactions returns all of the user's transactions, newest first.
func (s *FinanceService) ListTransactions(ctx context.Context, userID string) ([]*model.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

// DeleteTransaction removes a transaction if it belongs to the user.
// Deletion is hard; there is no undo.
func (s *FinanceService) DeleteTransaction(ctx context.Context, userID, id string) error {
	txn, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if txn.UserID != userID {
		return store.ErrNotFound
	}
	return s.store.DeleteTransaction(ctx, id)
}

// GetDashboard aggregates the user's full transaction history into
// totals, category breakdown, top spending categories, and monthly
// income/expense trends.
func (s *FinanceService) GetDashboard(ctx context.Context, userID string) (*model.DashboardSummary, error) {
	txns, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	summary := &model.DashboardSummary{
		ByCategory:    []model.CategoryAmount{},
		TopCategories: []model.CategoryAmount{},
		MonthlyTrends: []model.MonthlyTrend{},
	}
	byCategory := make(map[string]float64)
	type trend struct {
		income  float64
		expense float64
	}
	byMonth := make(map[string]*trend)

	for _, txn := range txns {
		if len(txn.Date) >= 7 {
			month := txn.Date[:7]
			t, ok := byMonth[month]
			if !ok {
				t = &trend{}
				byMonth[month] = t
			}
			if txn.Type == model.TransactionTypeIncome {
				t.income += txn.Amount
			} else {
				t.expense += txn.Amount
			}
		}
		switch txn.Type {
		case model.TransactionTypeIncome:
			summary.TotalIncome += txn.Amount
		case model.TransactionTypeExpense:
			summary.TotalExpenses += txn.Amount
			byCategory[txn.Category] += txn.Amount
		}
	}

	summary.Balance = summary.TotalIncome - summary.TotalExpenses
	if summary.TotalIncome > 0 {
		rate := int(math.Round((summary.TotalIncome - summary.TotalExpenses) / summary.TotalIncome * 100))
		if rate < 0 {
			rate = 0
		}
		if rate > 100 {
			rate = 100
		}
		summary.SavingsRate = rate
	}

	for category, amount := range byCategory {
		summary.ByCategory = append(summary.ByCategory, model.CategoryAmount{
			Category: category,
			Amount:   amount,
		})
	}
	sort.Slice(summary.ByCategory, func(i, j int) bool {
		if summary.ByCategory[i].Amount != summary.ByCategory[j].Amount {
			return summary.ByCategory[i].Amount > summary.ByCategory[j].Amount
		}
		return summary.ByCategory[i].Category < summary.ByCategory[j].Category
	})
	if len(summary.ByCategory) > 5 {
		summary.TopCategories = summary.ByCategory[:5]
	} else {
		summary.TopCategories = summary.ByCategory
	}

	for month, t := range byMonth {
		summary.MonthlyTrends = append(summary.MonthlyTrends, model.MonthlyTrend{
			Month:   month,
			Income:  t.income,
			Expense: t.expense,
		})
	}
	sort.Slice(summary.MonthlyTrends, func(i, j int) bool {
		return summary.MonthlyTrends[i].Month < summary.MonthlyTrends[j].Month
	})

	return summary, nil
}
