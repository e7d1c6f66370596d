package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/expenso-app/expenso-backend/internal/model"
)

// ErrInvalidBudget rejects pacing or forecast computation with a
// non-positive weekly budget.
var ErrInvalidBudget = errors.New("weekly budget must be positive")

// ComputeWeeklyPacing derives the current week's spending state from a
// user's transactions. The week starts Sunday at midnight; daysElapsed
// counts the reference day itself, so a Sunday reference yields 1 and a
// Saturday yields 7.
//
// Velocity normalizes the spent fraction of the budget by the elapsed
// fraction of the week: a value of 1.0 means spending exactly on pace,
// 2.0 means burning the budget twice as fast as the week is passing.
func ComputeWeeklyPacing(txns []*model.Transaction, weeklyBudget float64, referenceDate time.Time) (model.PacingState, error) {
	if weeklyBudget <= 0 {
		return model.PacingState{}, fmt.Errorf("%w, got %.2f", ErrInvalidBudget, weeklyBudget)
	}

	ref := referenceDate
	weekStart := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	weekStart = weekStart.AddDate(0, 0, -int(weekStart.Weekday()))
	daysElapsed := int(ref.Weekday()) + 1

	var total float64
	for _, txn := range txns {
		if txn.Type != model.TransactionTypeExpense {
			continue
		}
		date, err := time.ParseInLocation(model.DateLayout, txn.Date, ref.Location())
		if err != nil {
			continue
		}
		if date.Before(weekStart) {
			continue
		}
		total += txn.Amount
	}

	state := model.PacingState{
		WeeklyExpenseTotal: total,
		DaysElapsedInWeek:  daysElapsed,
	}
	if total > 0 {
		state.Velocity = (total / weeklyBudget) / (float64(daysElapsed) / 7.0)
	}
	return state, nil
}

// WeekStart returns the Sunday-midnight boundary of the week containing t.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -int(day.Weekday()))
}
