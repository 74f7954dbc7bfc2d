package model

// Engine records which extraction strategies produced a result.
type Engine string

const (
	EnginePattern           Engine = "pattern"
	EnginePatternGenerative Engine = "pattern+generative"
)

// ExtractionResult is the final answer for one document. The embedded
// FieldSet serializes flat, next to the engine label.
type ExtractionResult struct {
	FieldSet
	Engine Engine `json:"engine"`
}

// Escalated reports whether the generative fallback was attempted.
func (r ExtractionResult) Escalated() bool {
	return r.Engine == EnginePatternGenerative
}
