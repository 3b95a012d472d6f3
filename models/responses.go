package models

import "encoding/json"

// Tolerant decoding of AI response payloads. The model is instructed to
// return specific shapes but frequently wraps lists in envelope objects or
// vice versa; unrecognized shapes normalize to empty values so the workflow
// keeps moving on a degraded response.

// NormalizeQuestions accepts either a bare question array or an object with
// a "questions" array. Anything else yields an empty list, not an error.
func NormalizeQuestions(raw json.RawMessage) []InterviewQuestion {
	var bare []InterviewQuestion
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare
	}
	var wrapped struct {
		Questions []InterviewQuestion `json:"questions"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Questions != nil {
		return wrapped.Questions
	}
	return []InterviewQuestion{}
}

// DimensionSpec is one analysis dimension proposed by the model
type DimensionSpec struct {
	ID        int    `json:"id"`
	Dimension string `json:"dimension"`
	Icon      string `json:"icon"`
}

// DimensionsResponse carries the proposed dimension set for a thinking model
type DimensionsResponse struct {
	ThinkingModel string          `json:"thinkingModel"`
	Dimensions    []DimensionSpec `json:"dimensions"`
}

// NormalizeDimensions accepts either a bare dimension array or an object
// with a "dimensions" array plus an optional model display name.
func NormalizeDimensions(raw json.RawMessage) DimensionsResponse {
	var bare []DimensionSpec
	if err := json.Unmarshal(raw, &bare); err == nil {
		return DimensionsResponse{Dimensions: bare}
	}
	var wrapped DimensionsResponse
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Dimensions != nil {
		return wrapped
	}
	return DimensionsResponse{Dimensions: []DimensionSpec{}}
}

// RecommendModelsResponse is the stage-2 model recommendation payload
type RecommendModelsResponse struct {
	RecommendedModels []string          `json:"recommendedModels"`
	Reasons           map[string]string `json:"reasons"`
}

// CardContent is the analysis payload for a single dimension
type CardContent struct {
	Phenomenon    string `json:"phenomenon"`
	Cause         string `json:"cause"`
	Impact        string `json:"impact"`
	HiddenFactors string `json:"hiddenFactors"`
}

// MergeInto copies the generated content onto the card, leaving identity
// fields (id, dimension, icon) untouched.
func (c CardContent) MergeInto(card *AnalysisCard) {
	card.Phenomenon = c.Phenomenon
	card.Cause = c.Cause
	card.Impact = c.Impact
	card.HiddenFactors = c.HiddenFactors
}

// SolutionsResponse is the stage-3 solution generation payload
type SolutionsResponse struct {
	Solutions      []Solution      `json:"solutions"`
	Recommendation *Recommendation `json:"recommendation"`
}
