package domain

import "strings"

// ReasoningTemperature is the only temperature reasoning models accept.
const ReasoningTemperature = 1.0

// ModelInfo describes a generation model users can switch to.
type ModelInfo struct {
	// ID is the provider's model identifier.
	ID string `json:"id"`

	// Provider serves the model.
	Provider AIProvider `json:"provider"`

	// Family groups models for display, e.g. "GPT-4o".
	Family string `json:"family"`

	// Description is a one-line summary.
	Description string `json:"description"`
}

// Reasoning reports whether the model is in the reasoning family.
func (m ModelInfo) Reasoning() bool {
	return IsReasoningModel(m.ID)
}

// ModelCatalogue lists the generation models offered for switching.
func ModelCatalogue() []ModelInfo {
	return []ModelInfo{
		{ID: "gpt-5", Provider: AIProviderOpenAI, Family: "GPT-5", Description: "Most capable GPT-5 model"},
		{ID: "gpt-5-mini", Provider: AIProviderOpenAI, Family: "GPT-5", Description: "Efficient GPT-5"},
		{ID: "gpt-5-nano", Provider: AIProviderOpenAI, Family: "GPT-5", Description: "Fastest GPT-5, low latency"},
		{ID: "gpt-5-chat-latest", Provider: AIProviderOpenAI, Family: "GPT-5", Description: "Conversational GPT-5"},
		{ID: "gpt-4o", Provider: AIProviderOpenAI, Family: "GPT-4o", Description: "Multimodal flagship"},
		{ID: "gpt-4o-mini", Provider: AIProviderOpenAI, Family: "GPT-4o", Description: "Fast and efficient"},
		{ID: "o1", Provider: AIProviderOpenAI, Family: "Reasoning", Description: "Deep reasoning"},
		{ID: "o1-mini", Provider: AIProviderOpenAI, Family: "Reasoning", Description: "Efficient reasoning"},
		{ID: "o3-mini", Provider: AIProviderOpenAI, Family: "Reasoning", Description: "Latest compact reasoning"},
		{ID: "o4-mini", Provider: AIProviderOpenAI, Family: "Reasoning", Description: "Fast reasoning"},
		{ID: "gpt-4-turbo", Provider: AIProviderOpenAI, Family: "GPT-4", Description: "High performance"},
		{ID: "gpt-4", Provider: AIProviderOpenAI, Family: "GPT-4", Description: "Original GPT-4"},
		{ID: "gpt-3.5-turbo", Provider: AIProviderOpenAI, Family: "GPT-3.5", Description: "Budget-friendly"},
		{ID: "claude-3-5-sonnet-latest", Provider: AIProviderAnthropic, Family: "Claude", Description: "Balanced Claude model"},
		{ID: "claude-3-5-haiku-latest", Provider: AIProviderAnthropic, Family: "Claude", Description: "Fast Claude model"},
		{ID: "llama3.2", Provider: AIProviderOllama, Family: "Local", Description: "Llama 3.2 via Ollama"},
		{ID: "mistral", Provider: AIProviderOllama, Family: "Local", Description: "Mistral 7B via Ollama"},
		{ID: "qwen2.5", Provider: AIProviderOllama, Family: "Local", Description: "Qwen 2.5 via Ollama"},
	}
}

// LookupModel finds a model in the catalogue.
func LookupModel(id string) (ModelInfo, bool) {
	for _, m := range ModelCatalogue() {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// IsReasoningModel reports whether the model only accepts ReasoningTemperature.
// This covers the o-series and GPT-5, except the GPT-5 chat variants.
func IsReasoningModel(model string) bool {
	m := strings.ToLower(model)
	switch {
	case strings.HasPrefix(m, "o1"), strings.HasPrefix(m, "o3"), strings.HasPrefix(m, "o4"):
		return true
	case strings.HasPrefix(m, "gpt-5"):
		return !strings.HasPrefix(m, "gpt-5-chat")
	default:
		return false
	}
}

// EffectiveTemperature returns the temperature to send for model.
// Reasoning models get ReasoningTemperature; others get requested unchanged.
func EffectiveTemperature(model string, requested float64) float64 {
	if IsReasoningModel(model) {
		return ReasoningTemperature
	}
	return requested
}
