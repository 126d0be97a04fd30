package view

import (
	"time"

	"github.com/gosuda/pulse/internal/domain"
)

// modelPrice is USD per million tokens.
type modelPrice struct {
	input  float64
	output float64
}

// Unrecognized models fall back to the default tier.
var modelPricing = map[string]modelPrice{
	"claude-opus-4-6":   {input: 15.00, output: 75.00},
	"claude-sonnet-4-6": {input: 3.00, output: 15.00},
	"claude-haiku-4-5":  {input: 0.80, output: 4.00},
}

var defaultPricing = modelPrice{input: 3.00, output: 15.00}

// burnWindowMs is the trailing window for the burn rate.
const burnWindowMs = 60_000

type BurnReport struct {
	TotalCostUSD      float64            `json:"total_cost_usd"`
	CostBySession     map[string]float64 `json:"cost_by_session"`
	BurnRatePerMinute float64            `json:"burn_rate_per_minute"`
}

func tokensToUSD(inputTokens, outputTokens int64, model string) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		pricing = defaultPricing
	}
	return float64(inputTokens)/1e6*pricing.input + float64(outputTokens)/1e6*pricing.output
}

// TokenBurn converts token counts carried in event payloads to dollar cost:
// total, per session, and a trailing sixty-second burn rate. Token counts
// are coerced to non-negative integers; garbage counts cost nothing.
func TokenBurn(events []*domain.Event, now time.Time) *BurnReport {
	report := &BurnReport{CostBySession: make(map[string]float64)}
	windowStart := now.UnixMilli() - burnWindowMs

	for _, e := range events {
		inputTokens := payloadInt(e.Payload, "input_tokens")
		outputTokens := payloadInt(e.Payload, "output_tokens")
		if inputTokens == 0 && outputTokens == 0 {
			continue
		}

		model := payloadString(e.Payload, "model", "default")
		cost := tokensToUSD(inputTokens, outputTokens, model)

		report.TotalCostUSD += cost
		report.CostBySession[e.SessionID] += cost
		if e.Timestamp >= windowStart {
			report.BurnRatePerMinute += cost
		}
	}

	return report
}
