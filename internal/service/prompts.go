package service

import (
	"fmt"
	"strings"

	"github.com/expenso-app/expenso-backend/internal/model"
)

var personalityPresets = map[model.Personality]string{
	model.PersonalityNeutral:   "You are a helpful, pragmatic budgeting assistant. Be concise and factual.",
	model.PersonalityStrict:    "You are a strict financial coach. Be direct about overspending and push the user to stay on budget.",
	model.PersonalitySarcastic: "You are a witty, lightly sarcastic budgeting assistant. Tease the user about bad spending habits, but keep the advice genuinely useful.",
}

func personaFor(p model.Personality) string {
	if preset, ok := personalityPresets[p]; ok {
		return preset
	}
	return personalityPresets[model.PersonalityNeutral]
}

// transactionSnapshot renders transactions one per line for prompt
// context, most recent first as the store returns them.
func transactionSnapshot(txns []*model.Transaction) string {
	if len(txns) == 0 {
		return "(no transactions recorded)"
	}
	var b strings.Builder
	for _, txn := range txns {
		fmt.Fprintf(&b, "- %s | %s | %s | %.2f | %s\n", txn.Date, txn.Type, txn.Category, txn.Amount, txn.Description)
	}
	return b.String()
}

func adviceSystemInstruction(settings model.AdvisorSettings, weeklyBudget float64, pacing model.PacingState, txns []*model.Transaction) string {
	return fmt.Sprintf(`%s

The user's weekly budget is %s. So far this week they have spent %s across %d day(s). Their spending velocity is %.2f (1.0 means exactly on pace).

Their transactions (date | type | category | amount | description):
%s
Answer the user's question about their finances in 2-4 sentences. Use %s as the currency symbol. Do not invent transactions you were not given.`,
		personaFor(settings.Personality),
		FormatAmount(settings.Currency, weeklyBudget),
		FormatAmount(settings.Currency, pacing.WeeklyExpenseTotal),
		pacing.DaysElapsedInWeek, pacing.Velocity,
		transactionSnapshot(txns),
		settings.Currency.Symbol())
}

func insightSystemInstruction(settings model.AdvisorSettings, weeklyBudget float64, pacing model.PacingState) string {
	return fmt.Sprintf(`%s

The user's weekly budget is %s. So far this week they have spent %s across %d day(s). Their spending velocity is %.2f (1.0 means exactly on pace).

If the velocity is above 1.0, produce a single short warning sentence telling the user they are spending too fast and roughly when the budget will run out. If the velocity is 1.0 or below, respond with an empty string and nothing else.`,
		personaFor(settings.Personality),
		FormatAmount(settings.Currency, weeklyBudget),
		FormatAmount(settings.Currency, pacing.WeeklyExpenseTotal),
		pacing.DaysElapsedInWeek, pacing.Velocity)
}

func forecastPrompt(txns []*model.Transaction, weeklyBudget float64, currency model.Currency) string {
	var b strings.Builder
	for _, txn := range txns {
		if txn.Type != model.TransactionTypeExpense {
			continue
		}
		fmt.Fprintf(&b, "- %s | %s | %.2f | %s\n", txn.Date, txn.Category, txn.Amount, txn.Description)
	}
	expenses := b.String()
	if expenses == "" {
		expenses = "(no expenses recorded)\n"
	}

	return fmt.Sprintf(`You are a personal finance forecasting engine. Given a user's recent expenses, predict their total spending for the next 7 days.

Weekly budget: %s

Recent expenses (date | category | amount | description):
%s
Respond with JSON only, matching the provided schema. predictedTotal is the expected spend for the next 7 days. confidence is between 0 and 1. topPredictedCategories lists up to 3 categories with their predicted amounts. insights contains 2-3 short observations about the user's spending patterns.`,
		FormatAmount(currency, weeklyBudget), expenses)
}

// forecastSchema constrains the model to the BudgetForecast shape.
func forecastSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"predictedTotal": map[string]any{"type": "number"},
			"confidence":     map[string]any{"type": "number"},
			"topPredictedCategories": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"category":        map[string]any{"type": "string"},
						"predictedAmount": map[string]any{"type": "number"},
					},
					"required": []string{"category", "predictedAmount"},
				},
			},
			"insights": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"predictedTotal", "confidence", "topPredictedCategories", "insights"},
	}
}
