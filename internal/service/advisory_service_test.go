package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/expenso-app/expenso-backend/internal/advisor"
	"github.com/expenso-app/expenso-backend/internal/model"
	"github.com/expenso-app/expenso-backend/internal/store"
)

// stubAdvisor scripts remote behavior per test.
type stubAdvisor struct {
	attempts int
	generate func(attempt int) (string, error)
}

func (s *stubAdvisor) Generate(ctx context.Context, systemInstruction, userContent string, opts *advisor.GenerateOptions) (string, error) {
	s.attempts++
	return s.generate(s.attempts)
}

func rateLimited() error {
	return &advisor.Error{
		Code:      advisor.ErrRateLimited,
		Message:   "quota exceeded (HTTP 429)",
		Retryable: true,
	}
}

func unavailable() error {
	return &advisor.Error{
		Code:    advisor.ErrUnavailable,
		Message: "service down",
	}
}

func newTestAdvisoryService(t *testing.T, stub *stubAdvisor, txns []*model.Transaction, now time.Time) *AdvisoryService {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	mockStore.EXPECT().
		ListTransactions(gomock.Any(), "user-123").
		Return(txns, nil).
		AnyTimes()

	svc := NewAdvisoryService(mockStore, stub)
	svc.now = func() time.Time { return now }
	svc.adviceRetry = advisor.RetryConfig{
		MaxRetries:    3,
		InitialDelay:  10 * time.Millisecond,
		MaxDelay:      100 * time.Millisecond,
		BackoffFactor: 2.0,
	}
	svc.insightRetry = advisor.RetryConfig{
		MaxRetries:    1,
		InitialDelay:  10 * time.Millisecond,
		MaxDelay:      100 * time.Millisecond,
		BackoffFactor: 2.0,
	}
	return svc
}

var defaultSettings = model.AdvisorSettings{
	Personality: model.PersonalityNeutral,
	Currency:    model.CurrencyUSD,
}

func TestGetAdvice_Success(t *testing.T) {
	stub := &stubAdvisor{generate: func(int) (string, error) {
		return "  Cut back on eating out.  ", nil
	}}
	svc := newTestAdvisoryService(t, stub, nil, wednesday)

	advice, err := svc.GetAdvice(context.Background(), "user-123", "how am I doing?", 500, defaultSettings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if advice != "Cut back on eating out." {
		t.Errorf("expected trimmed model text, got %q", advice)
	}
	if stub.attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", stub.attempts)
	}
}

func TestGetAdvice_RetriesRateLimitThenSucceeds(t *testing.T) {
	stub := &stubAdvisor{generate: func(attempt int) (string, error) {
		if attempt <= 2 {
			return "", rateLimited()
		}
		return "You're doing fine.", nil
	}}
	svc := newTestAdvisoryService(t, stub, nil, wednesday)

	advice, err := svc.GetAdvice(context.Background(), "user-123", "how am I doing?", 500, defaultSettings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if advice != "You're doing fine." {
		t.Errorf("expected success value after retries, got %q", advice)
	}
	if stub.attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", stub.attempts)
	}
}

func TestGetAdvice_QuotaExhaustion(t *testing.T) {
	stub := &stubAdvisor{generate: func(int) (string, error) {
		return "", rateLimited()
	}}
	svc := newTestAdvisoryService(t, stub, nil, wednesday)

	advice, err := svc.GetAdvice(context.Background(), "user-123", "how am I doing?", 500, defaultSettings)
	if err != nil {
		t.Fatalf("GetAdvice must not fail on remote exhaustion: %v", err)
	}
	if advice != quotaMessage {
		t.Errorf("expected quota message, got %q", advice)
	}
	// 1 initial attempt plus 3 retries.
	if stub.attempts != 4 {
		t.Errorf("expected 4 attempts, got %d", stub.attempts)
	}
}

func TestGetAdvice_NonQuotaFailureApologizes(t *testing.T) {
	stub := &stubAdvisor{generate: func(int) (string, error) {
		return "", unavailable()
	}}
	svc := newTestAdvisoryService(t, stub, nil, wednesday)

	advice, err := svc.GetAdvice(context.Background(), "user-123", "how am I doing?", 500, defaultSettings)
	if err != nil {
		t.Fatalf("GetAdvice must not fail on remote errors: %v", err)
	}
	if advice != apologyMessage {
		t.Errorf("expected apology, got %q", advice)
	}
	// Non-rate-limit errors are not retried.
	if stub.attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", stub.attempts)
	}
}

func TestGetAdvice_InvalidBudget(t *testing.T) {
	stub := &stubAdvisor{generate: func(int) (string, error) {
		t.Error("remote advisor must not be called with an invalid budget")
		return "", nil
	}}
	svc := newTestAdvisoryService(t, stub, nil, wednesday)

	if _, err := svc.GetAdvice(context.Background(), "user-123", "hello", 0, defaultSettings); err == nil {
		t.Fatal("expected error for zero budget")
	}
	if _, err := svc.GetAdvice(context.Background(), "user-123", "hello", -50, defaultSettings); err == nil {
		t.Fatal("expected error for negative budget")
	}
}

func TestGetPacingInsight_RemoteSuccess(t *testing.T) {
	stub := &stubAdvisor{generate: func(int) (string, error) {
		return "You'll blow the budget by Friday.\n", nil
	}}
	svc := newTestAdvisoryService(t, stub, []*model.Transaction{expense("2025-03-03", 300)}, tuesday)

	insight, err := svc.GetPacingInsight(context.Background(), "user-123", 500, defaultSettings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insight != "You'll blow the budget by Friday." {
		t.Errorf("expected remote text, got %q", insight)
	}
}

func TestGetPacingInsight_SingleRetryThenLocalFallback(t *testing.T) {
	stub := &stubAdvisor{generate: func(int) (string, error) {
		return "", rateLimited()
	}}
	// $300 spent by Tuesday against a $500 budget: velocity 1.4, 60% used.
	svc := newTestAdvisoryService(t, stub, []*model.Transaction{expense("2025-03-03", 300)}, tuesday)

	insight, err := svc.GetPacingInsight(context.Background(), "user-123", 500, defaultSettings)
	if err != nil {
		t.Fatalf("GetPacingInsight must not fail on remote errors: %v", err)
	}
	// 1 initial attempt plus 1 retry: the background check stays cheap.
	if stub.attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", stub.attempts)
	}
	if !strings.Contains(insight, "60%") {
		t.Errorf("expected local warning to mention 60%% of budget used, got %q", insight)
	}
	if !strings.Contains(insight, "3 day") {
		t.Errorf("expected local warning to mention days elapsed, got %q", insight)
	}
}

func TestGetPacingInsight_LocalThresholdStricterThanRemote(t *testing.T) {
	stub := &stubAdvisor{generate: func(int) (string, error) {
		return "", unavailable()
	}}
	// $550 spent by Saturday against $500: velocity 1.1. The remote model
	// would warn above 1.0, but the degraded local rule stays silent until
	// 1.2 to avoid over-alerting.
	svc := newTestAdvisoryService(t, stub, []*model.Transaction{expense("2025-03-07", 550)}, saturday)

	insight, err := svc.GetPacingInsight(context.Background(), "user-123", 500, defaultSettings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insight != "" {
		t.Errorf("expected silent local fallback at velocity 1.1, got %q", insight)
	}
}

func TestGetPacingInsight_OnPaceSilence(t *testing.T) {
	stub := &stubAdvisor{generate: func(int) (string, error) {
		return "", unavailable()
	}}
	svc := newTestAdvisoryService(t, stub, []*model.Transaction{expense("2025-03-03", 50)}, wednesday)

	insight, err := svc.GetPacingInsight(context.Background(), "user-123", 500, defaultSettings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insight != "" {
		t.Errorf("expected empty insight when on pace, got %q", insight)
	}
}

func TestGetForecast_Success(t *testing.T) {
	stub := &stubAdvisor{generate: func(int) (string, error) {
		return `{
			"predictedTotal": 420.50,
			"confidence": 0.8,
			"topPredictedCategories": [
				{"category": "Food", "predictedAmount": 200},
				{"category": "Transport", "predictedAmount": 120},
				{"category": "Entertainment", "predictedAmount": 60},
				{"category": "Misc", "predictedAmount": 40}
			],
			"insights": ["Food dominates your spending.", "Weekend spikes are consistent."]
		}`, nil
	}}
	svc := newTestAdvisoryService(t, stub, []*model.Transaction{expense("2025-03-03", 300)}, wednesday)

	forecast, err := svc.GetForecast(context.Background(), "user-123", 500, model.CurrencyUSD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if forecast == nil {
		t.Fatal("expected a forecast")
	}
	if forecast.PredictedTotal != 420.50 {
		t.Errorf("expected predictedTotal 420.50, got %v", forecast.PredictedTotal)
	}
	if forecast.Confidence != 0.8 {
		t.Errorf("expected confidence 0.8, got %v", forecast.Confidence)
	}
	if len(forecast.TopPredictedCategories) != 3 {
		t.Errorf("expected top categories capped at 3, got %d", len(forecast.TopPredictedCategories))
	}
	if len(forecast.Insights) != 2 {
		t.Errorf("expected 2 insights, got %d", len(forecast.Insights))
	}
}

func TestGetForecast_ExhaustionReturnsNil(t *testing.T) {
	stub := &stubAdvisor{generate: func(int) (string, error) {
		return "", rateLimited()
	}}
	svc := newTestAdvisoryService(t, stub, nil, wednesday)

	forecast, err := svc.GetForecast(context.Background(), "user-123", 500, model.CurrencyUSD)
	if err != nil {
		t.Fatalf("GetForecast must not fail on remote exhaustion: %v", err)
	}
	if forecast != nil {
		t.Errorf("expected nil forecast, got %+v", forecast)
	}
	if stub.attempts != 4 {
		t.Errorf("expected 4 attempts, got %d", stub.attempts)
	}
}

func TestGetForecast_MalformedResponseReturnsNil(t *testing.T) {
	stub := &stubAdvisor{generate: func(int) (string, error) {
		return "I am unable to produce structured output today.", nil
	}}
	svc := newTestAdvisoryService(t, stub, nil, wednesday)

	forecast, err := svc.GetForecast(context.Background(), "user-123", 500, model.CurrencyUSD)
	if err != nil {
		t.Fatalf("malformed forecast must not surface an error: %v", err)
	}
	if forecast != nil {
		t.Errorf("expected nil forecast for malformed response, got %+v", forecast)
	}
}

func TestGetForecast_InvalidBudget(t *testing.T) {
	stub := &stubAdvisor{generate: func(int) (string, error) {
		t.Error("remote advisor must not be called with an invalid budget")
		return "", nil
	}}
	svc := newTestAdvisoryService(t, stub, nil, wednesday)

	if _, err := svc.GetForecast(context.Background(), "user-123", 0, model.CurrencyUSD); err == nil {
		t.Fatal("expected error for zero budget")
	}
}
