package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/expenso-app/expenso-backend/internal/advisor"
	"github.com/expenso-app/expenso-backend/internal/model"
	"github.com/expenso-app/expenso-backend/internal/store"
)

const (
	// advisoryCallBudget bounds each advisory operation end to end,
	// including backoff delays between retries.
	advisoryCallBudget = 15 * time.Second

	quotaMessage   = "You've reached the daily limit for AI advice. Please try again tomorrow."
	apologyMessage = "I'm sorry, I'm having trouble analyzing your finances right now. Please try again later."

	// localWarningVelocity gates the degraded local insight. Stricter than
	// the remote instruction's 1.0 so the heuristic under-alerts rather
	// than over-alerts when the model is unavailable.
	localWarningVelocity = 1.2
)

// AdvisoryService produces conversational advice, pacing insights, and
// spending forecasts from a user's transactions. Remote failures degrade
// to fixed messages, a local heuristic, or nil; they never propagate.
type AdvisoryService struct {
	store   store.Store
	advisor advisor.RemoteAdvisor
	now     func() time.Time

	// Retry policies are fields so tests can shrink the delays.
	adviceRetry  advisor.RetryConfig
	insightRetry advisor.RetryConfig
}

func NewAdvisoryService(st store.Store, remote advisor.RemoteAdvisor) *AdvisoryService {
	return &AdvisoryService{
		store:        st,
		advisor:      remote,
		now:          time.Now,
		adviceRetry:  advisor.DefaultRetryConfig,
		insightRetry: advisor.InsightRetryConfig,
	}
}

// GetAdvice answers a free-form question about the user's finances.
// It always returns a displayable string once inputs validate: on remote
// exhaustion the result is a quota notice or a generic apology.
func (s *AdvisoryService) GetAdvice(ctx context.Context, userID, userMessage string, weeklyBudget float64, settings model.AdvisorSettings) (string, error) {
	pacing, txns, err := s.loadPacing(ctx, userID, weeklyBudget)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, advisoryCallBudget)
	defer cancel()

	instruction := adviceSystemInstruction(settings, weeklyBudget, pacing, txns)
	text, err := advisor.WithRetry(ctx, s.adviceRetry, func(ctx context.Context) (string, error) {
		return s.advisor.Generate(ctx, instruction, userMessage, &advisor.GenerateOptions{
			ThinkingLevel: advisor.ThinkingLow,
		})
	})
	if err != nil {
		log.Printf("[Advisory] advice failed for user %s: %v", userID, err)
		if advisor.IsRateLimited(err) {
			return quotaMessage, nil
		}
		return apologyMessage, nil
	}
	return strings.TrimSpace(text), nil
}

// GetPacingInsight returns a short warning when the user is overspending,
// or an empty string when there is nothing to report. The remote model is
// asked first (single retry, to bound latency of a background check); on
// any remote failure a deterministic local rule takes over.
func (s *AdvisoryService) GetPacingInsight(ctx context.Context, userID string, weeklyBudget float64, settings model.AdvisorSettings) (string, error) {
	pacing, _, err := s.loadPacing(ctx, userID, weeklyBudget)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, advisoryCallBudget)
	defer cancel()

	instruction := insightSystemInstruction(settings, weeklyBudget, pacing)
	text, err := advisor.WithRetry(ctx, s.insightRetry, func(ctx context.Context) (string, error) {
		return s.advisor.Generate(ctx, instruction, "How is my spending pace this week?", &advisor.GenerateOptions{
			ThinkingLevel: advisor.ThinkingLow,
		})
	})
	if err != nil {
		log.Printf("[Advisory] insight remote failed for user %s, using local rule: %v", userID, err)
		return s.localInsight(pacing, weeklyBudget, settings.Currency), nil
	}
	return strings.TrimSpace(text), nil
}

// localInsight is the degraded pacing check. It only fires above
// localWarningVelocity; between 1.0 and 1.2 it stays silent even though
// the remote model would have warned.
func (s *AdvisoryService) localInsight(pacing model.PacingState, weeklyBudget float64, currency model.Currency) string {
	if pacing.Velocity <= localWarningVelocity {
		return ""
	}
	pct := int(math.Round(pacing.WeeklyExpenseTotal / weeklyBudget * 100))
	return fmt.Sprintf("Heads up: you've used %d%% of your %s weekly budget in %d day(s). At this pace you'll run out before the week ends.",
		pct, FormatAmount(currency, weeklyBudget), pacing.DaysElapsedInWeek)
}

type forecastPayload struct {
	PredictedTotal         float64 `json:"predictedTotal"`
	Confidence             float64 `json:"confidence"`
	TopPredictedCategories []struct {
		Category        string  `json:"category"`
		PredictedAmount float64 `json:"predictedAmount"`
	} `json:"topPredictedCategories"`
	Insights []string `json:"insights"`
}

// GetForecast predicts the next 7 days of spending. There is no local
// substitute: on remote exhaustion or an unparseable response it returns
// nil, which callers must read as "forecast unavailable".
func (s *AdvisoryService) GetForecast(ctx context.Context, userID string, weeklyBudget float64, currency model.Currency) (*model.BudgetForecast, error) {
	if weeklyBudget <= 0 {
		return nil, fmt.Errorf("%w, got %.2f", ErrInvalidBudget, weeklyBudget)
	}
	txns, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, advisoryCallBudget)
	defer cancel()

	prompt := forecastPrompt(txns, weeklyBudget, currency)
	text, err := advisor.WithRetry(ctx, s.adviceRetry, func(ctx context.Context) (string, error) {
		return s.advisor.Generate(ctx, "", prompt, &advisor.GenerateOptions{
			ResponseSchema: forecastSchema(),
			ThinkingLevel:  advisor.ThinkingHigh,
		})
	})
	if err != nil {
		log.Printf("[Advisory] forecast failed for user %s: %v", userID, err)
		return nil, nil
	}

	var payload forecastPayload
	if err := advisor.ExtractJSON(text, &payload); err != nil {
		log.Printf("[Advisory] forecast response unparseable for user %s: %v", userID, err)
		return nil, nil
	}

	forecast := &model.BudgetForecast{
		PredictedTotal: payload.PredictedTotal,
		Confidence:     payload.Confidence,
		Insights:       payload.Insights,
	}
	for i, c := range payload.TopPredictedCategories {
		if i == 3 {
			break
		}
		forecast.TopPredictedCategories = append(forecast.TopPredictedCategories, model.CategoryPrediction{
			Category:        c.Category,
			PredictedAmount: c.PredictedAmount,
		})
	}
	return forecast, nil
}

// loadPacing fetches the user's transactions and computes the current
// week's pacing state. Budget validation happens here so every advisory
// operation fails fast on a non-positive budget.
func (s *AdvisoryService) loadPacing(ctx context.Context, userID string, weeklyBudget float64) (model.PacingState, []*model.Transaction, error) {
	if weeklyBudget <= 0 {
		return model.PacingState{}, nil, fmt.Errorf("%w, got %.2f", ErrInvalidBudget, weeklyBudget)
	}
	txns, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return model.PacingState{}, nil, fmt.Errorf("list transactions: %w", err)
	}
	pacing, err := ComputeWeeklyPacing(txns, weeklyBudget, s.now())
	if err != nil {
		return model.PacingState{}, nil, err
	}
	return pacing, txns, nil
}
