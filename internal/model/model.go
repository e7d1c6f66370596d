// Package model defines the domain types shared across the Expenso backend.
package model

import "time"

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction is a single logged income or expense. Transactions are
// immutable once created; the only mutation is deletion.
type Transaction struct {
	ID          string          `json:"id" firestore:"Id"`
	UserID      string          `json:"userId" firestore:"UserId"`
	Amount      float64         `json:"amount" firestore:"Amount"`
	Type        TransactionType `json:"type" firestore:"Type"`
	Category    string          `json:"category" firestore:"Category"`
	Date        string          `json:"date" firestore:"Date"` // ISO calendar date, no time component
	Description string          `json:"description,omitempty" firestore:"Description"`
	CreatedAt   time.Time       `json:"createdAt" firestore:"CreatedAt"`
}

// DateLayout is the calendar date format transactions carry.
const DateLayout = "2006-01-02"

// TransactionInput is the caller-supplied portion of a new transaction.
// ID and CreatedAt are store-assigned.
type TransactionInput struct {
	Amount      float64         `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	Description string          `json:"description,omitempty"`
}

// PacingState describes how fast the current week's budget is being consumed.
// Velocity 1.0 means spending is exactly on pace to use the whole weekly
// budget by the end of the week.
type PacingState struct {
	WeeklyExpenseTotal float64 `json:"weeklyExpenseTotal"`
	DaysElapsedInWeek  int     `json:"daysElapsedInWeek"`
	Velocity           float64 `json:"velocity"`
}

// CategoryPrediction is one predicted spending category in a forecast.
type CategoryPrediction struct {
	Category        string  `json:"category"`
	PredictedAmount float64 `json:"predictedAmount"`
}

// BudgetForecast is a 7-day spending prediction. It is derived and
// ephemeral: recomputed on demand, never persisted.
type BudgetForecast struct {
	PredictedTotal         float64              `json:"predictedTotal"`
	Confidence             float64              `json:"confidence"`
	TopPredictedCategories []CategoryPrediction `json:"topPredictedCategories"`
	Insights               []string             `json:"insights"`
}

// Personality selects the instruction style for advisory prompts. It only
// changes the wording of the instruction, never the computation.
type Personality string

const (
	PersonalityNeutral   Personality = "neutral"
	PersonalityStrict    Personality = "strict"
	PersonalitySarcastic Personality = "sarcastic"
)

// Currency is the display currency for amounts in advisory text.
type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
)

// Symbol returns the display symbol for the currency.
func (c Currency) Symbol() string {
	if c == CurrencyINR {
		return "₹"
	}
	return "$"
}

// AdvisorSettings carries the per-call presentation options threaded through
// every advisory operation. Passed by value; never ambient state.
type AdvisorSettings struct {
	Personality Personality `json:"personality"`
	Currency    Currency    `json:"currency"`
}

// NotificationType identifies what event produced a notification.
type NotificationType string

const (
	NotificationTypePacingAlert   NotificationType = "pacing_alert"
	NotificationTypeDailyReminder NotificationType = "daily_reminder"
)

// Notification is an in-app alert record. Push delivery, when enabled, is
// best-effort on top of this record.
type Notification struct {
	ID            string            `json:"id" firestore:"Id"`
	UserID        string            `json:"userId" firestore:"UserId"`
	Type          NotificationType  `json:"type" firestore:"Type"`
	Title         string            `json:"title" firestore:"Title"`
	Message       string            `json:"message" firestore:"Message"`
	IsRead        bool              `json:"isRead" firestore:"IsRead"`
	ReferenceID   string            `json:"referenceId,omitempty" firestore:"ReferenceId"`
	ReferenceType string            `json:"referenceType,omitempty" firestore:"ReferenceType"`
	CreatedAt     time.Time         `json:"createdAt" firestore:"CreatedAt"`
	Metadata      map[string]string `json:"metadata,omitempty" firestore:"Metadata"`
}

// NotificationPreferences controls which alerts a user receives and how.
type NotificationPreferences struct {
	UserID        string `json:"userId" firestore:"UserId"`
	BudgetAlerts  bool   `json:"budgetAlerts" firestore:"BudgetAlerts"`
	DailyReminder bool   `json:"dailyReminder" firestore:"DailyReminder"`
	PushEnabled   bool   `json:"pushEnabled" firestore:"PushEnabled"`
	FCMToken      string `json:"fcmToken,omitempty" firestore:"FcmToken"`
}

// CategoryAmount is a category total used in dashboard breakdowns.
type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// MonthlyTrend is one month's income/expense totals.
type MonthlyTrend struct {
	Month   string  `json:"month"` // "2006-01"
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// DashboardSummary aggregates a user's transaction history for display.
type DashboardSummary struct {
	TotalIncome    float64          `json:"totalIncome"`
	TotalExpenses  float64          `json:"totalExpenses"`
	Balance        float64          `json:"balance"`
	SavingsRate    int              `json:"savingsRate"` // percent, clamped to [0,100]
	ByCategory     []CategoryAmount `json:"byCategory"`
	TopCategories  []CategoryAmount `json:"topCategories"`
	MonthlyTrends  []MonthlyTrend   `json:"monthlyTrends"`
}
