package extraction

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/ordex/internal/config"
	"github.com/agenthands/ordex/internal/core/common"
	"github.com/agenthands/ordex/internal/core/model"
	"github.com/agenthands/ordex/internal/llm"
)

// Result is the outcome of one generative extraction. A failed call carries
// Err and an all-absent FieldSet.
type Result struct {
	Fields   model.FieldSet
	Raw      string
	Err      error
	Duration time.Duration
}

func (r Result) OK() bool {
	return r.Err == nil
}

type Extractor struct {
	LLM         llm.Client
	Prompts     config.GenerativePrompts
	Temperature float32
	MaxChars    int
	Logger      *zap.Logger
}

func NewExtractor(llmClient llm.Client, cfg config.ExtractionConfig, temperature float32, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = config.DefaultMaxChars
	}
	return &Extractor{
		LLM:         llmClient,
		Prompts:     withDefaults(cfg.Prompts),
		Temperature: temperature,
		MaxChars:    maxChars,
		Logger:      logger,
	}
}

// Extract asks the model for the six fields of text. It makes exactly one
// call and never returns an error directly; failures are carried in Result.
func (e *Extractor) Extract(ctx context.Context, text string, modelID string) Result {
	start := time.Now()
	log := common.Logger(ctx, e.Logger)

	if e.LLM == nil {
		return Result{Err: fmt.Errorf("no generative client configured"), Duration: time.Since(start)}
	}

	truncated := Truncate(text, e.MaxChars)
	req := llm.Request{
		Model:       modelID,
		System:      e.Prompts.System,
		Prompt:      buildUserPrompt(e.Prompts.User, truncated),
		Temperature: e.Temperature,
		JSON:        true,
	}

	log.Debug("generative extraction start",
		zap.String("model", modelID),
		zap.Int("text_len", len(text)),
		zap.Int("prompt_len", len(req.Prompt)),
	)

	raw, err := e.LLM.Generate(ctx, req)
	if err != nil {
		return Result{Err: fmt.Errorf("failed to generate fields: %w", err), Duration: time.Since(start)}
	}

	fields, dropped, err := ParseFields(raw)
	if len(dropped) > 0 {
		log.Warn("generative response had unknown keys", zap.Strings("dropped", dropped))
	}
	if err != nil {
		return Result{Raw: raw, Err: err, Duration: time.Since(start)}
	}

	return Result{Fields: fields, Raw: raw, Duration: time.Since(start)}
}
