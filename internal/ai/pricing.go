package ai

import "quest-forge/internal/model"

// modelRates holds USD prices per million tokens.
type modelRates struct {
	Input  float64
	Output float64
}

// modelPricing is the static rate table. An unrecognized model id falls back
// to the default model's rates rather than failing.
var modelPricing = map[string]modelRates{
	model.ModelSonnet: {Input: 3.0, Output: 15.0},
	model.ModelHaiku:  {Input: 0.8, Output: 4.0},
}

// estimateCost computes the estimated cost of a call in USD.
func estimateCost(modelID string, inputTokens, outputTokens int) float64 {
	rates, ok := modelPricing[modelID]
	if !ok {
		rates = modelPricing[model.ModelSonnet]
	}
	return (float64(inputTokens)*rates.Input + float64(outputTokens)*rates.Output) / 1_000_000.0
}
